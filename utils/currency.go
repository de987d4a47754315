package utils

import (
	"fmt"
	"strings"

	"github.com/KowsickReddy/TravelGo/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

var amountPrinter = message.NewPrinter(language.English)

// FormatCurrency renders an amount with digit grouping and its currency
// symbol, e.g. "₹2,000.00". Currencies without a known symbol are suffixed
// with their code: "2,000.00 AED".
func FormatCurrency(amount models.Amount, currency string) string {
	minor := amount.Minor()
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	grouped := amountPrinter.Sprintf("%d", minor/100) + fmt.Sprintf(".%02d", minor%100)

	code := strings.ToUpper(currency)
	if code == "" {
		code = models.DefaultCurrency
	}
	if symbol, ok := currencySymbols[code]; ok {
		return sign + symbol + grouped
	}
	return sign + grouped + " " + code
}

// FormatINR is FormatCurrency for rupees.
func FormatINR(amount models.Amount) string {
	return FormatCurrency(amount, "INR")
}
