package dataset

import (
	"fmt"
	"regexp"
	"strings"
)

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*?)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Protein(g)
	{regexp.MustCompile(`^(.*?)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Protein [g]
	{regexp.MustCompile(`^(.*?)[_\s-]+(g|mg|kcal)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

// normalizeKey lowercases and drops separators so "Diet_type", "diet type" and "DietType" match.
func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r == '_' || r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// columnIndex maps the logical columns to header positions. -1 means absent.
type columnIndex struct {
	diet, recipe, cuisine, protein, carbs, fat int
}

func resolveColumns(header []string) (columnIndex, error) {
	idx := columnIndex{-1, -1, -1, -1, -1, -1}
	for i, h := range header {
		base, _ := splitUnits(h)
		switch normalizeKey(base) {
		case "diettype", "diet":
			if idx.diet < 0 {
				idx.diet = i
			}
		case "recipename", "recipe":
			if idx.recipe < 0 {
				idx.recipe = i
			}
		case "cuisinetype", "cuisine":
			if idx.cuisine < 0 {
				idx.cuisine = i
			}
		case "protein":
			if idx.protein < 0 {
				idx.protein = i
			}
		case "carbs", "carbohydrates":
			if idx.carbs < 0 {
				idx.carbs = i
			}
		case "fat":
			if idx.fat < 0 {
				idx.fat = i
			}
		}
	}
	var missing []string
	if idx.diet < 0 {
		missing = append(missing, "Diet_type")
	}
	if idx.recipe < 0 {
		missing = append(missing, "Recipe_name")
	}
	if idx.protein < 0 {
		missing = append(missing, Protein.Column())
	}
	if idx.carbs < 0 {
		missing = append(missing, Carbs.Column())
	}
	if idx.fat < 0 {
		missing = append(missing, Fat.Column())
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
