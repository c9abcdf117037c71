// Package convert provides lenient parsing for the string-typed numeric
// fields the brokerage and crawler feeds return.
package convert

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ToInt parses a string as an integer, tolerating surrounding whitespace and
// a trailing decimal part ("500.000" parses as 500). Returns 0 on failure.
func ToInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// ToInt64 is ToInt for 64-bit volumes.
func ToInt64(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// ToDecimal parses a price field. Empty and malformed values (the quote feed
// uses "-" for suspended instruments) yield decimal zero.
func ToDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
