package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
)

// MacroAverages holds the mean macronutrients of one diet type.
type MacroAverages struct {
	DietType string
	Count    int
	Protein  float64
	Carbs    float64
	Fat      float64
}

// Get returns the average of field f.
func (m MacroAverages) Get(f dataset.Field) float64 {
	switch f {
	case dataset.Protein:
		return m.Protein
	case dataset.Carbs:
		return m.Carbs
	case dataset.Fat:
		return m.Fat
	}
	return 0
}

// Averages is ordered by diet type.
type Averages []MacroAverages

// Keys returns the diet types in iteration order.
func (a Averages) Keys() []string {
	keys := make([]string, len(a))
	for i, m := range a {
		keys[i] = m.DietType
	}
	return keys
}

// Lookup finds the averages of one diet type.
func (a Averages) Lookup(diet string) (MacroAverages, bool) {
	i := sort.Search(len(a), func(i int) bool { return a[i].DietType >= diet })
	if i < len(a) && a[i].DietType == diet {
		return a[i], true
	}
	return MacroAverages{}, false
}

// GroupAverages computes per-diet means of protein, carbs and fat over a cleaned table.
//
// Values are summed in ascending order within each group so the result does not
// depend on the order of the input records.
func GroupAverages(cleaned *dataset.Table) Averages {
	keys, groups := partition(cleaned)
	out := make(Averages, 0, len(keys))
	for _, k := range keys {
		recs := groups[k]
		m := MacroAverages{DietType: k}
		for _, f := range dataset.Fields {
			vals := make([]float64, 0, len(recs))
			for _, r := range recs {
				if v := r.Get(f); v.OK {
					vals = append(vals, v.V)
				}
			}
			mean := meanOf(vals)
			switch f {
			case dataset.Protein:
				m.Protein = mean
			case dataset.Carbs:
				m.Carbs = mean
			case dataset.Fat:
				m.Fat = mean
			}
		}
		m.Count = len(recs)
		out = append(out, m)
	}
	return out
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	n := float64(len(sorted))
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	if !math.IsInf(sum, 0) {
		return sum / n
	}
	// the sum overflowed; scaled terms stay within the range of the inputs
	var mean float64
	for _, v := range sorted {
		mean += v / n
	}
	return mean
}
