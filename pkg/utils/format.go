// Package utils provides small formatting helpers shared across the CLI and
// action summaries.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatMoney renders a USD amount with thousands separators and two
// decimals, e.g. 50000 -> "$50,000.00".
func FormatMoney(v float64) string {
	neg := v < 0
	s := fmt.Sprintf("%.2f", math.Abs(v))
	parts := strings.SplitN(s, ".", 2)
	whole := addThousands(parts[0])
	out := "$" + whole + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// FormatAmount renders an asset quantity, trimming trailing zeros so crypto
// amounts stay precise and share counts stay short.
func FormatAmount(v float64) string {
	s := fmt.Sprintf("%.8f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// FormatPercent renders a ratio as a percentage with up to two decimals,
// e.g. 0.045 -> "4.5%".
func FormatPercent(ratio float64) string {
	s := fmt.Sprintf("%.2f", ratio*100)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + "%"
}

func addThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
