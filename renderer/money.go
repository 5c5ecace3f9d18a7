package renderer

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatEUR displays an amount the way it is entered on the form, e.g. €14.22.
func FormatEUR(amount decimal.Decimal) string {
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, money.EUR).Currency()
	cents := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(cents.IntPart())
}
