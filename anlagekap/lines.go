package anlagekap

import (
	"encoding/json"

	"github.com/aqlanhadi/kapreport/extractor/common"
	"github.com/shopspring/decimal"
)

// Line describes one reported line of the Anlage KAP form.
type Line struct {
	Number string
	Label  string
	// Tone is used by renderers to color the amount.
	Tone string
}

var lines = []Line{
	{Number: "7", Label: "Kapitalerträge, bei denen Steuer einbehalten wurde", Tone: "positive"},
	{Number: "19", Label: "Andere Kapitalerträge ohne Steuerabzug", Tone: "neutral"},
	{Number: "37", Label: "Einbehaltene Kapitalertragsteuer", Tone: "tax"},
	{Number: "38", Label: "Darauf entfallender Solidaritätszuschlag", Tone: "tax"},
	{Number: "41", Label: "Ausländische Quellensteuer", Tone: "foreign-tax"},
}

// Lines returns the reported lines in form order.
func Lines() []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// Amount returns the calculated amount for a line number, zero for
// unknown lines.
func (c Calculation) Amount(number string) decimal.Decimal {
	switch number {
	case "7":
		return c.Line7
	case "19":
		return c.Line19
	case "37":
		return c.Line37
	case "38":
		return c.Line38
	case "41":
		return c.Line41
	}
	return decimal.Zero
}

// MarshalJSON writes every line with exactly two decimals.
func (c Calculation) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"line7":  c.Line7.StringFixed(2),
		"line19": c.Line19.StringFixed(2),
		"line37": c.Line37.StringFixed(2),
		"line38": c.Line38.StringFixed(2),
		"line41": c.Line41.StringFixed(2),
	})
}

// InterestSummaryDescription labels the line 19 row taken from IBKR's total.
const InterestSummaryDescription = "Total Interest in EUR (from IBKR summary)"

// InterestRow is the line 19 source row.
type InterestRow struct {
	Description string          `json:"description"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	LineNumber  int             `json:"line_number"`
}

// LineEntries groups the statement entries behind each reported line.
type LineEntries struct {
	Line7    []common.DividendEntry       `json:"line7"`
	Line19   []InterestRow                `json:"line19"`
	Line3738 []common.WithholdingTaxEntry `json:"line37_38"`
	Line41   []common.WithholdingTaxEntry `json:"line41"`
}

// EntriesByLine uses the same selection as Calculate.
func EntriesByLine(s common.Statement) LineEntries {
	entries := LineEntries{
		Line7:    line7Dividends(s),
		Line3738: germanTaxEntries(s),
		Line41:   line41Entries(s),
	}
	if s.TotalInterestEUR != nil && s.TotalInterestEUR.IsPositive() {
		entries.Line19 = []InterestRow{{
			Description: InterestSummaryDescription,
			Currency:    "EUR",
			Amount:      *s.TotalInterestEUR,
			LineNumber:  s.TotalInterestEURLineNumber,
		}}
	}
	return entries
}
