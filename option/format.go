package option

import "github.com/shopspring/decimal"

// FormatPremium renders a premium rounded half away from zero to cents.
func FormatPremium(p float64) string {
	return decimal.NewFromFloat(p).Round(2).StringFixed(2)
}
