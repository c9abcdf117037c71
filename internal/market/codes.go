// Package market crawls the instrument roster and quote snapshots from the
// public market-data endpoints.
package market

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GetFullCode prefixes a bare 6-digit code with its exchange.
func GetFullCode(code string) string {
	return Exchange(code) + code
}

// Exchange resolves the exchange of a bare code: Shanghai listings start
// with 6, 9 or 5, everything else trades in Shenzhen.
func Exchange(code string) string {
	if code == "" {
		return "sz"
	}
	switch code[0] {
	case '6', '9', '5':
		return "sh"
	default:
		return "sz"
	}
}

// IsAShare reports whether a bare code is a main-board/ChiNext A share.
func IsAShare(code string) bool {
	return strings.HasPrefix(code, "60") ||
		strings.HasPrefix(code, "00") ||
		strings.HasPrefix(code, "30")
}

// transient display prefixes the quote feed attaches to names: new listings
// (N/C) and ex-dividend markers (XD/XR/DR). A crawled name carrying one is
// not the instrument's real name, so it must not drive a rename.
var transientNamePrefixes = []string{"XD", "XR", "DR", "N ", "C "}

// IsOriginalName reports whether a crawled name looks like a real instrument
// name rather than feed noise. Used as the default rename-validity filter.
func IsOriginalName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, p := range transientNamePrefixes {
		if strings.HasPrefix(name, p) {
			return false
		}
	}
	return true
}

// ChangeRate returns (current-base)/base, zero when base is zero.
func ChangeRate(current, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return current.Sub(base).Div(base)
}
