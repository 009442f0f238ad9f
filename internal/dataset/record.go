package dataset

import "fmt"

// Value is an optional numeric cell. OK is false when the cell was empty or malformed.
type Value struct {
	V  float64
	OK bool
}

// Some returns a present value.
func Some(v float64) Value { return Value{V: v, OK: true} }

// Missing is the absent value.
var Missing = Value{}

func (v Value) String() string {
	if !v.OK {
		return "NaN"
	}
	return fmt.Sprintf("%g", v.V)
}

// Field names one of the macronutrient columns.
type Field int

const (
	Protein Field = iota
	Carbs
	Fat
)

// Fields lists the macronutrient columns in report order.
var Fields = []Field{Protein, Carbs, Fat}

// Column returns the source column header for f.
func (f Field) Column() string {
	switch f {
	case Protein:
		return "Protein(g)"
	case Carbs:
		return "Carbs(g)"
	case Fat:
		return "Fat(g)"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField resolves a column or short name ("protein", "Protein(g)") to a Field.
func ParseField(s string) (Field, error) {
	base, _ := splitUnits(s)
	switch normalizeKey(base) {
	case "protein":
		return Protein, nil
	case "carbs":
		return Carbs, nil
	case "fat":
		return Fat, nil
	}
	return 0, fmt.Errorf("unknown macronutrient field %q", s)
}

// Record is one row of the source table.
type Record struct {
	// Index is the 0-based position of the row in the source, header excluded.
	Index      int
	DietType   string
	RecipeName string
	Cuisine    string
	Protein    Value
	Carbs      Value
	Fat        Value
}

// Get returns the value of field f.
func (r Record) Get(f Field) Value {
	switch f {
	case Protein:
		return r.Protein
	case Carbs:
		return r.Carbs
	case Fat:
		return r.Fat
	}
	return Missing
}

// Complete reports whether every macronutrient is present.
func (r Record) Complete() bool {
	return r.Protein.OK && r.Carbs.OK && r.Fat.OK
}

// Table is an in-memory dataset. Records keep source order.
type Table struct {
	Name    string
	Header  []string
	Records []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}
