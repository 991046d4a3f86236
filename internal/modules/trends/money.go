package trends

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// moneyFormatter renders an amount for narrative text.
type moneyFormatter func(amount float64) string

// ParseCurrency validates an ISO 4217 code and returns it upper-cased.
func ParseCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return unit.String(), nil
}

// newMoneyFormatter formats amounts as the currency symbol followed by a
// grouped two-decimal number. Unknown codes fall back to "<amount> <code>".
func newMoneyFormatter(code string) moneyFormatter {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return func(amount float64) string {
			return fmt.Sprintf("%.2f %s", amount, code)
		}
	}
	printer := message.NewPrinter(language.English)
	symbol := printer.Sprint(currency.Symbol(unit))
	return func(amount float64) string {
		return printer.Sprintf("%s%.2f", symbol, amount)
	}
}
