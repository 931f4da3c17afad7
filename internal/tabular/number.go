package tabular

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber converts locale-formatted numeric text to a float64, returning NaN when the text holds no
// finite number. A trailing percent sign is dropped and the magnitude kept. Currency symbols, spaces and
// letters are ignored. A lone comma without a period is a decimal comma ("12,5"). When both separators
// appear the last one is the decimal point ("1.234,56" and "1,234.56" are both 1234.56).
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN()
	}
	s = strings.TrimSuffix(s, "%")

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	s = normalizeSeparators(s)
	if s == "" {
		return math.NaN()
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return math.NaN()
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func normalizeSeparators(s string) string {
	comma := strings.LastIndex(s, ",")
	period := strings.LastIndex(s, ".")

	switch {
	case comma < 0:
		return s
	case period < 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case comma > period:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}

// IsNaN reports whether v is the not-a-number marker
func IsNaN(v float64) bool {
	return math.IsNaN(v)
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
