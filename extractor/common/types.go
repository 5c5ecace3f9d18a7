package common

import (
	"github.com/shopspring/decimal"
)

// Statement is everything extracted from one activity statement.
type Statement struct {
	Source                     string                `json:"source,omitempty"`
	Dividends                  []DividendEntry       `json:"dividends"`
	WithholdingTax             []WithholdingTaxEntry `json:"withholding_tax"`
	TotalWithholdingTaxEUR     *decimal.Decimal      `json:"total_withholding_tax_eur,omitempty"`
	TotalInterestEUR           *decimal.Decimal      `json:"total_interest_eur,omitempty"`
	TotalInterestEURLineNumber int                   `json:"total_interest_eur_line_number,omitempty"`
	ParsedReport               ParsedReport          `json:"parsed_report"`
}

// ParsedReport is the structured part of a Statement without the scalar summaries.
type ParsedReport struct {
	Dividends      []DividendEntry       `json:"dividends"`
	WithholdingTax []WithholdingTaxEntry `json:"withholding_tax"`
	Metadata       Metadata              `json:"metadata"`
}

type Metadata struct {
	Account       *string `json:"account,omitempty"`
	Period        *string `json:"period,omitempty"`
	GeneratedDate *string `json:"generated_date,omitempty"`
}

type DividendEntry struct {
	Currency    string          `json:"currency"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	LineNumber  int             `json:"line_number"`
}

// WithholdingTaxEntry is tax withheld at source. Amounts are negative.
type WithholdingTaxEntry struct {
	Currency    string          `json:"currency"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	LineNumber  int             `json:"line_number"`
}
