package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
)

// Summary bundles the aggregation results of one run for console output.
type Summary struct {
	Name     string
	Raw      *dataset.Table
	Cleaned  *dataset.Table
	Averages Averages
	Top      Selection
	Ratios   []RatioRow
	// TopRows caps the printed top recipes; 0 prints all.
	TopRows int
	// RatioRows caps the printed ratio rows; 0 hides the section.
	RatioRows int
}

// Summarize runs the whole engine over a raw table: clean, averages, top-N by protein, ratios.
func Summarize(raw *dataset.Table, topN int) *Summary {
	cleaned := Clean(raw)
	return &Summary{
		Name:     raw.Name,
		Raw:      raw,
		Cleaned:  cleaned,
		Averages: GroupAverages(cleaned),
		Top:      TopNPerGroup(cleaned, dataset.Protein, topN),
		Ratios:   DeriveRatios(raw),
		TopRows:  20,
	}
}

// Markdown renders the summary as compact tables.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d (complete %d, excluded %d)\n", s.Raw.Len(), s.Cleaned.Len(), s.Raw.Len()-s.Cleaned.Len()))
	b.WriteString(fmt.Sprintf("Diet types: %d\n", len(s.Averages)))

	b.WriteString("\n[AVERAGE MACRONUTRIENTS]\n")
	if len(s.Averages) == 0 {
		b.WriteString("(no complete records)\n")
	} else {
		b.WriteString("| Diet_type | n | Protein(g) | Carbs(g) | Fat(g) |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, m := range s.Averages {
			b.WriteString(fmt.Sprintf("| %s | %d | %.2f | %.2f | %.2f |\n", safeVal(m.DietType), m.Count, m.Protein, m.Carbs, m.Fat))
		}
	}

	b.WriteString(fmt.Sprintf("\n[TOP %d %s RECIPES]\n", s.Top.N, strings.ToUpper(strings.TrimSuffix(s.Top.Field.Column(), "(g)"))))
	if s.Top.Len() == 0 {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(fmt.Sprintf("| Diet_type | Recipe_name | %s |\n", s.Top.Field.Column()))
		b.WriteString("| --- | --- | --- |\n")
		printed := 0
	groups:
		for _, g := range s.Top.Groups {
			for _, r := range g.Records {
				if s.TopRows > 0 && printed >= s.TopRows {
					b.WriteString(fmt.Sprintf("... %d more\n", s.Top.Len()-printed))
					break groups
				}
				b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", safeVal(g.DietType), safeVal(truncate(r.RecipeName, 80)), r.Get(s.Top.Field)))
				printed++
			}
		}
	}

	if s.RatioRows > 0 && len(s.Ratios) > 0 {
		b.WriteString("\n[DERIVED RATIOS]\n")
		b.WriteString("| Diet_type | Recipe_name | Protein_to_Carbs_ratio | Carbs_to_Fat_ratio |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		undefined := 0
		for i, r := range s.Ratios {
			if !r.ProteinToCarbs.Defined || !r.CarbsToFat.Defined {
				undefined++
			}
			if i < s.RatioRows {
				b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", safeVal(r.DietType), safeVal(truncate(r.RecipeName, 80)), r.ProteinToCarbs, r.CarbsToFat))
			}
		}
		if undefined > 0 {
			b.WriteString(fmt.Sprintf("\n[NOTES]\n- %d row(s) with an undefined ratio (missing value or zero denominator)\n", undefined))
		}
	}
	return b.String()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
