package shared

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var nairaPrinter = message.NewPrinter(language.English)

// FormatNaira renders a monetary amount with locale grouping and the "₦" prefix.
func FormatNaira(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return nairaPrinter.Sprintf("₦%.2f", f)
}

// FormatQuantity renders a cement quantity with its unit discriminator.
func FormatQuantity(qty float64, unit string) string {
	return nairaPrinter.Sprintf("%v %s", qty, unit)
}
