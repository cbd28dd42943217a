package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount with two decimals and Indian digit grouping, e.g. ₹12,34,567.50.
func FormatINR(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(whole))
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
