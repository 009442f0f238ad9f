package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// groupedNumbers matches digits grouped by a thousands separator, keyed by {thousands, decimal}.
var groupedNumbers = map[[2]rune]*regexp.Regexp{}

func init() {
	for _, dec := range []rune{'.', ','} {
		for _, sep := range []rune{',', '.', ' '} {
			if sep == dec {
				continue
			}
			groupedNumbers[[2]rune{sep, dec}] = regexp.MustCompile(
				`^[+-]?\d{1,3}(` + regexp.QuoteMeta(string(sep)) + `\d{3})+(` + regexp.QuoteMeta(string(dec)) + `\d+)?$`)
		}
	}
}

// parseNumeric parses a macronutrient cell. Empty, non-finite and unparsable cells are missing.
// A thousands separator is only accepted between complete groups of three digits.
func parseNumeric(s string, opt Options) Value {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return Missing
	}
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep == dec || !strings.ContainsRune(raw, sep) {
			continue
		}
		re, ok := groupedNumbers[[2]rune{sep, dec}]
		if !ok || !re.MatchString(raw) {
			return Missing
		}
		raw = strings.ReplaceAll(raw, string(sep), "")
		break
	}
	if strings.ContainsAny(raw, " \t") {
		return Missing
	}
	if dec != '.' {
		if strings.ContainsRune(raw, '.') {
			return Missing
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Some(f)
}
