package exporter

import (
	"fmt"
	"strconv"
	"strings"
)

// formatRaw formats a float with full precision and no exponent so exported
// magnitudes parse back identically.
func formatRaw(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatPercent renders a fraction as a percentage string with the given
// number of decimal places, e.g. 0.25 -> "25.0%".
func formatPercent(fraction float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, fraction*100)
}

// formatThousands renders a value with comma thousands separators, matching
// how spreadsheet tools display locale numbers. Fractional parts keep two
// decimal places; whole numbers carry none.
func formatThousands(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f != float64(int64(f)) {
		s = strconv.FormatFloat(f, 'f', 2, 64)
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String()
	if hasFrac {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
