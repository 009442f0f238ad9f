// Package chart renders the aggregates into an XLSX workbook with native charts:
// one column chart per macronutrient average, a heatmap of averages and a scatter
// of the top protein recipes per diet type.
package chart

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dietloom-cli/internal/analysis"
	"github.com/KaramelBytes/dietloom-cli/internal/apperr"
	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
	"github.com/KaramelBytes/dietloom-cli/internal/utils"
)

// StageCharts labels chart rendering failures.
const StageCharts = "charts"

// DefaultFile is the workbook name under the output directory.
const DefaultFile = "charts.xlsx"

// Sheet names double as artifact names.
const (
	SheetData    = "data"
	SheetTop     = "top_protein"
	SheetProtein = "avg_protein"
	SheetCarbs   = "avg_carbs"
	SheetFat     = "avg_fat"
	SheetHeatmap = "heatmap"
	SheetScatter = "scatter_protein"
)

// heatmap color scale bounds, grams
const (
	heatMin = 0
	heatMax = 150
)

var barSheets = []struct {
	sheet string
	col   string
	label string
}{
	{SheetProtein, "B", "Protein"},
	{SheetCarbs, "C", "Carbs"},
	{SheetFat, "D", "Fat"},
}

// Renderer writes chart workbooks.
type Renderer struct {
	Logger *slog.Logger
}

// NewRenderer returns a renderer logging to logger (slog.Default when nil).
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{Logger: logger}
}

// Render writes the workbook to path atomically and returns the names of the artifacts
// it contains. With no averages only the data sheets are written.
func (r *Renderer) Render(path string, avg analysis.Averages, sel analysis.Selection) ([]string, error) {
	f := excelize.NewFile()
	defer f.Close()

	artifacts, err := r.build(f, avg, sel)
	if err != nil {
		return nil, apperr.WriteError(StageCharts, err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperr.WriteError(StageCharts, fmt.Errorf("encode workbook: %w", err))
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return nil, apperr.WriteError(StageCharts, err)
	}
	r.Logger.Info("rendered charts", slog.String("path", path), slog.Any("artifacts", artifacts))
	return artifacts, nil
}

func (r *Renderer) build(f *excelize.File, avg analysis.Averages, sel analysis.Selection) ([]string, error) {
	if err := f.SetSheetName("Sheet1", SheetData); err != nil {
		return nil, err
	}
	if err := writeAverages(f, SheetData, avg); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetTop); err != nil {
		return nil, err
	}
	spans, err := writeTop(f, sel, avg.Keys())
	if err != nil {
		return nil, err
	}
	if len(avg) == 0 {
		r.Logger.Warn("no diet groups, skipping charts")
		return []string{SheetData, SheetTop}, nil
	}

	last := len(avg) + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", SheetData, last)
	artifacts := []string{}
	for _, b := range barSheets {
		if _, err := f.NewSheet(b.sheet); err != nil {
			return nil, err
		}
		err := f.AddChart(b.sheet, "A1", &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$%s$1", SheetData, b.col),
				Categories: categories,
				Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SheetData, b.col, b.col, last),
			}},
			Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("Average %s by Diet Type", b.label)}},
			Legend:    excelize.ChartLegend{Position: "none"},
			YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Average %s (g)", b.label)}}},
			Dimension: excelize.ChartDimension{Width: 800, Height: 480},
		})
		if err != nil {
			return nil, fmt.Errorf("%s chart: %w", b.sheet, err)
		}
		artifacts = append(artifacts, b.sheet)
	}

	if err := writeHeatmap(f, avg); err != nil {
		return nil, err
	}
	artifacts = append(artifacts, SheetHeatmap)

	if len(spans) > 0 {
		if err := writeScatter(f, spans); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, SheetScatter)
	}
	return artifacts, nil
}

func writeAverages(f *excelize.File, sheet string, avg analysis.Averages) error {
	header := []any{"Diet_type", dataset.Protein.Column(), dataset.Carbs.Column(), dataset.Fat.Column()}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, m := range avg {
		row := []any{m.DietType, m.Protein, m.Carbs, m.Fat}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

// span is the row range of one diet type on the top sheet.
type span struct {
	diet       string
	first, end int
}

func writeTop(f *excelize.File, sel analysis.Selection, order []string) ([]span, error) {
	header := []any{"Diet_type", "Recipe_name", sel.Field.Column(), "Diet_index"}
	if err := f.SetSheetRow(SheetTop, "A1", &header); err != nil {
		return nil, err
	}
	var spans []span
	row := 2
	for gi, diet := range order {
		recs := sel.Lookup(diet)
		if len(recs) == 0 {
			continue
		}
		s := span{diet: diet, first: row}
		for _, rec := range recs {
			vals := []any{diet, rec.RecipeName, rec.Get(sel.Field).V, gi + 1}
			if err := f.SetSheetRow(SheetTop, fmt.Sprintf("A%d", row), &vals); err != nil {
				return nil, err
			}
			row++
		}
		s.end = row - 1
		spans = append(spans, s)
	}
	return spans, nil
}

func writeHeatmap(f *excelize.File, avg analysis.Averages) error {
	if _, err := f.NewSheet(SheetHeatmap); err != nil {
		return err
	}
	if err := writeAverages(f, SheetHeatmap, avg); err != nil {
		return err
	}
	rng := fmt.Sprintf("B2:D%d", len(avg)+1)
	style, err := f.NewStyle(&excelize.Style{NumFmt: 1})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetHeatmap, "B2", fmt.Sprintf("D%d", len(avg)+1), style); err != nil {
		return err
	}
	return f.SetConditionalFormat(SheetHeatmap, rng, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MinValue: fmt.Sprint(heatMin),
		MidType:  "num",
		MidValue: fmt.Sprint((heatMin + heatMax) / 2),
		MaxType:  "num",
		MaxValue: fmt.Sprint(heatMax),
		MinColor: "#3B4CC0",
		MidColor: "#DDDDDD",
		MaxColor: "#B40426",
	}})
}

func writeScatter(f *excelize.File, spans []span) error {
	if _, err := f.NewSheet(SheetScatter); err != nil {
		return err
	}
	series := make([]excelize.ChartSeries, 0, len(spans))
	for _, s := range spans {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$A$%d", SheetTop, s.first),
			Categories: fmt.Sprintf("%s!$D$%d:$D$%d", SheetTop, s.first, s.end),
			Values:     fmt.Sprintf("%s!$C$%d:$C$%d", SheetTop, s.first, s.end),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 10},
			Line:       excelize.ChartLine{Type: excelize.ChartLineNone},
		})
	}
	return f.AddChart(SheetScatter, "A1", &excelize.Chart{
		Type:      excelize.Scatter,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: "Top protein-rich recipes and their distribution across diet types"}},
		Legend:    excelize.ChartLegend{Position: "right"},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Diet type"}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Protein(g)"}}},
		Dimension: excelize.ChartDimension{Width: 960, Height: 480},
	})
}
