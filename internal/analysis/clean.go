// Package analysis is the aggregation engine: cleaning, per-diet averages,
// top-N selection and derived ratios over a dataset.Table.
//
// Every function is pure. Inputs are never mutated and bad cells never surface as
// errors: a record whose macronutrients are missing or malformed is excluded.
package analysis

import (
	"sort"

	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
)

// Clean returns a new table holding only the records with protein, carbs and fat present.
func Clean(t *dataset.Table) *dataset.Table {
	out := &dataset.Table{}
	if t == nil {
		return out
	}
	out.Name = t.Name
	out.Header = append([]string(nil), t.Header...)
	out.Records = make([]dataset.Record, 0, len(t.Records))
	for _, r := range t.Records {
		if r.Complete() {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// partition groups records by diet type, preserving source order inside each group.
// Records without a diet type are left out. Keys are returned sorted.
func partition(t *dataset.Table) ([]string, map[string][]dataset.Record) {
	groups := make(map[string][]dataset.Record)
	if t == nil {
		return nil, groups
	}
	for _, r := range t.Records {
		if r.DietType == "" {
			continue
		}
		groups[r.DietType] = append(groups[r.DietType], r)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, groups
}
