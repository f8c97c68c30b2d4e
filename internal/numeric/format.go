package numeric

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display defaults.
const (
	DefaultCurrencySymbol = "₱"
	DefaultLocale         = "en"
)

// Formatter renders amounts with a currency glyph and the grouping rules of
// a locale.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter returns a Formatter for the given currency symbol and BCP 47
// locale tag. An unparsable tag falls back to DefaultLocale.
func NewFormatter(symbol, locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

var defaultFormatter = NewFormatter(DefaultCurrencySymbol, DefaultLocale)

// FormatCurrency formats amount with the default symbol and locale.
func FormatCurrency(amount float64) string {
	return defaultFormatter.Currency(amount)
}

// FormatPercent formats a percentage with the default locale.
func FormatPercent(pct float64) string {
	return defaultFormatter.Percent(pct)
}

// Currency renders amount with exactly two fraction digits and thousands
// separators, prefixed with the currency symbol. Non-finite amounts render
// as zero.
func (f *Formatter) Currency(amount float64) string {
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		amount = 0
	}
	rounded := decimal.NewFromFloat(amount).Round(2).InexactFloat64()
	return f.symbol + f.printer.Sprintf("%.2f", rounded)
}

// Percent renders pct rounded to one decimal place with trailing zeros
// dropped, followed by a percent sign: 40%, 12.5%.
func (f *Formatter) Percent(pct float64) string {
	if math.IsInf(pct, 0) || math.IsNaN(pct) {
		pct = 0
	}
	return decimal.NewFromFloat(pct).Round(1).String() + "%"
}
