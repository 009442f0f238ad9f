package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Format decodes raw bytes of one file type into header + rows.
type Format interface {
	CanDecode(name string) bool
	Decode(data []byte, opt Options, h Handler) error
}

// Handler receives the header once, then every data row in order.
type Handler struct {
	Header func(header []string) error
	Row    func(row []string) error
}

var registry []Format

// Register adds a format implementation to the registry. Later registrations win.
func Register(f Format) {
	registry = append([]Format{f}, registry...)
}

func formatFor(name string) Format {
	for _, f := range registry {
		if f.CanDecode(name) {
			return f
		}
	}
	// Fallback to comma separated text
	return csvFormat{}
}

func init() {
	Register(csvFormat{})
	Register(xlsxFormat{})
}

// ErrEmpty indicates the input had no header row.
var ErrEmpty = errors.New("empty dataset: no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvFormat struct{}

func (csvFormat) CanDecode(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".csv") || strings.HasSuffix(n, ".tsv") || strings.HasSuffix(n, ".txt")
}

func (csvFormat) Decode(data []byte, opt Options, h Handler) error {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return errors.New("input is not valid UTF-8")
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = opt.Delimiter

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmpty
		}
		return fmt.Errorf("read header: %w", err)
	}
	if err := h.Header(append([]string(nil), header...)); err != nil {
		return err
	}
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		if err := h.Row(rec); err != nil {
			return err
		}
	}
}

type xlsxFormat struct{}

func (xlsxFormat) CanDecode(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx")
}

func (xlsxFormat) Decode(data []byte, opt Options, h Handler) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheet := opt.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return ErrEmpty
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return ErrEmpty
	}
	if err := h.Header(rows[0]); err != nil {
		return err
	}
	for _, row := range rows[1:] {
		if err := h.Row(row); err != nil {
			return err
		}
	}
	return nil
}

func delimiterFor(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}

// Decode parses data (named name, used for format and delimiter selection) into a Table.
func Decode(name string, data []byte, opt Options) (*Table, error) {
	if opt.Delimiter == 0 {
		opt.Delimiter = delimiterFor(name)
	}
	t := &Table{Name: filepath.Base(name)}
	var cols columnIndex
	err := formatFor(name).Decode(data, opt, Handler{
		Header: func(header []string) error {
			t.Header = make([]string, len(header))
			for i, h := range header {
				t.Header[i] = strings.TrimSpace(h)
			}
			c, err := resolveColumns(t.Header)
			if err != nil {
				return err
			}
			cols = c
			return nil
		},
		Row: func(row []string) error {
			if isBlank(row) {
				return nil
			}
			t.Records = append(t.Records, Record{
				Index:      len(t.Records),
				DietType:   cell(row, cols.diet),
				RecipeName: cell(row, cols.recipe),
				Cuisine:    cell(row, cols.cuisine),
				Protein:    parseNumeric(cell(row, cols.protein), opt),
				Carbs:      parseNumeric(cell(row, cols.carbs), opt),
				Fat:        parseNumeric(cell(row, cols.fat), opt),
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
