package domain

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money is an amount in minor units of a currency (cents, rupiah, ...).
type Money struct {
	Amount   int64
	Currency string
}

// Format renders the amount with the locale grouping and fraction digits the
// currency calls for, e.g. "USD 1,500.50" or "IDR 150,000". Unknown currency
// codes fall back to a plain minor-unit rendering.
func (m Money) Format() string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return fmt.Sprintf("%s %d", m.Currency, m.Amount)
	}
	scale, _ := currency.Cash.Rounding(unit)
	value := float64(m.Amount) / math.Pow10(scale)
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v %v", unit, number.Decimal(value, number.Scale(scale)))
}
