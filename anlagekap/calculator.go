// Package anlagekap derives the Anlage KAP figures from an extracted
// activity statement.
package anlagekap

import (
	"strings"

	"github.com/aqlanhadi/kapreport/extractor/common"
	"github.com/aqlanhadi/kapreport/extractor/ibkr_activity"
	"github.com/shopspring/decimal"
)

const (
	germanTaxMarker      = "- DE Tax"
	creditInterestMarker = "Credit Interest"
)

// Abgeltungssteuer plus the 5.5% Solidaritätszuschlag on top of it.
var germanTaxFactor = decimal.RequireFromString("1.055")

// Calculation holds the amounts for the five reported lines, rounded to cents.
type Calculation struct {
	Line7  decimal.Decimal `json:"line7"`
	Line19 decimal.Decimal `json:"line19"`
	Line37 decimal.Decimal `json:"line37"`
	Line38 decimal.Decimal `json:"line38"`
	Line41 decimal.Decimal `json:"line41"`
}

// Calculate never fails. Missing totals count as zero.
func Calculate(s common.Statement) Calculation {
	line37, line38 := splitGermanTax(s)
	return Calculation{
		Line7:  roundCents(sumDividends(line7Dividends(s))),
		Line19: roundCents(totalInterest(s)),
		Line37: roundCents(line37),
		Line38: roundCents(line38),
		Line41: roundCents(sumWithholding(line41Entries(s)).Neg()),
	}
}

// splitGermanTax divides the withheld German tax into Abgeltungssteuer and
// Solidaritätszuschlag. Line 38 is the remainder so both add up to the total
// before rounding.
func splitGermanTax(s common.Statement) (decimal.Decimal, decimal.Decimal) {
	total := sumWithholding(germanTaxEntries(s)).Neg()
	abgeltungssteuer := total.Div(germanTaxFactor)
	return abgeltungssteuer, total.Sub(abgeltungssteuer)
}

func totalInterest(s common.Statement) decimal.Decimal {
	if s.TotalInterestEUR == nil {
		return decimal.Zero
	}
	return *s.TotalInterestEUR
}

// Dividends paid in EUR have already been taxed in Germany.
func line7Dividends(s common.Statement) []common.DividendEntry {
	var out []common.DividendEntry
	for _, d := range s.Dividends {
		if d.Currency == "EUR" {
			out = append(out, d)
		}
	}
	return out
}

func germanTaxEntries(s common.Statement) []common.WithholdingTaxEntry {
	return filterWithholding(s.WithholdingTax, isGermanTax)
}

// line41Entries picks the foreign withholding tax. Statements with a USD
// subtotal carry it as a single synthesized entry; older statements only
// have the EUR withholding on credit interest.
func line41Entries(s common.Statement) []common.WithholdingTaxEntry {
	if HasUSDSubtotal(s) {
		return filterWithholding(s.WithholdingTax, isUSDSubtotal)
	}
	return filterWithholding(s.WithholdingTax, func(w common.WithholdingTaxEntry) bool {
		return !isGermanTax(w) && w.Currency == "EUR" && strings.Contains(w.Description, creditInterestMarker)
	})
}

// HasUSDSubtotal reports whether the statement had a converted USD
// withholding tax subtotal.
func HasUSDSubtotal(s common.Statement) bool {
	for _, w := range s.WithholdingTax {
		if isUSDSubtotal(w) {
			return true
		}
	}
	return false
}

func isGermanTax(w common.WithholdingTaxEntry) bool {
	return strings.Contains(w.Description, germanTaxMarker)
}

func isUSDSubtotal(w common.WithholdingTaxEntry) bool {
	return w.Description == ibkr_activity.USDWithholdingTaxDescription
}

func filterWithholding(entries []common.WithholdingTaxEntry, keep func(common.WithholdingTaxEntry) bool) []common.WithholdingTaxEntry {
	var out []common.WithholdingTaxEntry
	for _, w := range entries {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func sumDividends(entries []common.DividendEntry) decimal.Decimal {
	total := decimal.Zero
	for _, d := range entries {
		total = total.Add(d.Amount)
	}
	return total
}

func sumWithholding(entries []common.WithholdingTaxEntry) decimal.Decimal {
	total := decimal.Zero
	for _, w := range entries {
		total = total.Add(w.Amount)
	}
	return total
}

// roundCents rounds half away from zero.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
