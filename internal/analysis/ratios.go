package analysis

import (
	"math"
	"strconv"

	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
)

// Ratio is a derived metric. Defined is false when the numerator or denominator
// is missing or the denominator is zero; such ratios encode as JSON null.
type Ratio struct {
	Value   float64
	Defined bool
}

// Undefined is the marker for a ratio that has no value.
var Undefined = Ratio{}

// Divide returns num/den, or Undefined.
func Divide(num, den dataset.Value) Ratio {
	if !num.OK || !den.OK || den.V == 0 {
		return Undefined
	}
	v := num.V / den.V
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return Undefined
	}
	return Ratio{Value: v, Defined: true}
}

func (r Ratio) String() string {
	if !r.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(r.Value, 'g', 4, 64)
}

// MarshalJSON encodes undefined ratios as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(r.Value, 'g', -1, 64)), nil
}

// RatioRow is a source record augmented with its derived ratios.
type RatioRow struct {
	dataset.Record
	ProteinToCarbs Ratio
	CarbsToFat     Ratio
}

// DeriveRatios computes protein/carbs and carbs/fat for every record of the raw table.
func DeriveRatios(raw *dataset.Table) []RatioRow {
	if raw == nil {
		return nil
	}
	out := make([]RatioRow, len(raw.Records))
	for i, r := range raw.Records {
		out[i] = RatioRow{
			Record:         r,
			ProteinToCarbs: Divide(r.Protein, r.Carbs),
			CarbsToFat:     Divide(r.Carbs, r.Fat),
		}
	}
	return out
}
