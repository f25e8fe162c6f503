package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatUSD formats a price with thousands separators ($1,234.56).
func FormatUSD(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	s := fmt.Sprintf("%.2f", amount)
	intPart, dec := s[:len(s)-3], s[len(s)-3:]
	return sign + "$" + groupThousands(intPart) + dec
}

// FormatCost formats a metered cost with four decimal places ($0.0042).
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.4f", usd)
}

// FormatScore formats a sentiment score with an explicit sign (+0.35).
func FormatScore(score float64) string {
	if score == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%+.2f", score)
}

// FormatPercent formats a 0-100 value (62.5%).
func FormatPercent(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
