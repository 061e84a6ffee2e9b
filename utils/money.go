package utils

import "github.com/shopspring/decimal"

// FormatJOD formats an amount as a string like "3.50 JOD".
// Catalog prices are entered with 2 fractional digits, so display rounds to
// 2 even though the dinar officially subdivides to 3.
func FormatJOD(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " JOD"
}
