package analysis

import (
	"sort"

	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
)

// DefaultTopN is the number of recipes kept per diet type.
const DefaultTopN = 5

// Ranked is the selection for one diet type, highest value first.
type Ranked struct {
	DietType string
	Records  []dataset.Record
}

// Selection is the top-N result, groups ordered by diet type.
type Selection struct {
	Field  dataset.Field
	N      int
	Groups []Ranked
}

// Lookup returns the ranked records of one diet type.
func (s Selection) Lookup(diet string) []dataset.Record {
	for _, g := range s.Groups {
		if g.DietType == diet {
			return g.Records
		}
	}
	return nil
}

// Len returns the total number of selected records.
func (s Selection) Len() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Records)
	}
	return n
}

// TopNPerGroup keeps, for each diet type, the n records with the highest value of field.
// Sorting is stable so equal values keep their source order. Missing values rank last.
// n <= 0 selects DefaultTopN.
func TopNPerGroup(t *dataset.Table, field dataset.Field, n int) Selection {
	if n <= 0 {
		n = DefaultTopN
	}
	sel := Selection{Field: field, N: n}
	keys, groups := partition(t)
	sel.Groups = make([]Ranked, 0, len(keys))
	for _, k := range keys {
		recs := make([]dataset.Record, len(groups[k]))
		copy(recs, groups[k])
		sort.SliceStable(recs, func(i, j int) bool {
			a, b := recs[i].Get(field), recs[j].Get(field)
			if a.OK != b.OK {
				return a.OK
			}
			return a.V > b.V
		})
		if len(recs) > n {
			recs = recs[:n]
		}
		sel.Groups = append(sel.Groups, Ranked{DietType: k, Records: recs})
	}
	return sel
}
