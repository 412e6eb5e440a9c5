package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PriceConstraint is an inclusive price bound derived from a query.
type PriceConstraint struct {
	Min float64
	Max float64
}

// Unconstrained returns the bound applied when a query names no price.
func Unconstrained() PriceConstraint {
	return PriceConstraint{Min: 0, Max: math.Inf(1)}
}

// Allows reports whether price lies within [Min, Max].
func (c PriceConstraint) Allows(price float64) bool {
	return price >= c.Min && price <= c.Max
}

// IsUnconstrained reports whether the bound excludes nothing.
func (c PriceConstraint) IsUnconstrained() bool {
	return c.Min <= 0 && math.IsInf(c.Max, 1)
}

// tighten intersects c with [lo, hi].
func (c PriceConstraint) tighten(lo, hi float64) PriceConstraint {
	return PriceConstraint{Min: math.Max(c.Min, lo), Max: math.Min(c.Max, hi)}
}

var (
	// "between 100 and 400" is matched as one pattern so both numerals come from the same phrase.
	betweenPattern = regexp.MustCompile(`\bbetween\s+(\S+)\s+and\s+(\S+)`)
	upperPattern   = regexp.MustCompile(`\b(?:below|under|less\s+than)\b\s*(\S+)?`)
	lowerPattern   = regexp.MustCompile(`\b(?:over|above|more\s+than)\b\s*(\S+)?`)
	nonNumeric     = regexp.MustCompile(`[^0-9.]`)
)

// ExtractPriceConstraint scans text for price phrases and intersects their bounds.
// Phrases whose numeral does not parse are skipped.
func ExtractPriceConstraint(text string) PriceConstraint {
	lower := strings.ToLower(text)
	c := Unconstrained()

	for _, m := range betweenPattern.FindAllStringSubmatch(lower, -1) {
		lo, okLo := parseNumeral(m[1])
		hi, okHi := parseNumeral(m[2])
		if !okLo || !okHi {
			continue
		}
		c = c.tighten(lo, hi)
	}

	for _, m := range upperPattern.FindAllStringSubmatch(lower, -1) {
		if n, ok := parseNumeral(m[1]); ok {
			c = c.tighten(0, n)
		}
	}

	for _, m := range lowerPattern.FindAllStringSubmatch(lower, -1) {
		if n, ok := parseNumeral(m[1]); ok {
			c = c.tighten(n, math.Inf(1))
		}
	}

	return c
}

// parseNumeral strips currency symbols and separators, then parses a decimal.
func parseNumeral(s string) (float64, bool) {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
