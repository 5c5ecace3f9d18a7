package ibkr_activity

import (
	"fmt"
	"io"
	"strings"

	"github.com/aqlanhadi/kapreport/extractor/common"
	"github.com/shopspring/decimal"
)

// USDWithholdingTaxDescription marks the entry synthesized from the
// "Total in EUR" withholding tax subtotal.
const USDWithholdingTaxDescription = "USD Withholding Tax (value according to IBKR)"

// Column 0 and 1 of every row
const (
	colSection = 0
	colRowType = 1
)

// Data columns, counted after the section and row type
const (
	dataCurrency    = 0
	dataDate        = 1
	dataDescription = 2
	dataAmount      = 3
)

type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionStatement
	sectionAccountInformation
	sectionDividends
	sectionWithholdingTax
	sectionInterest
	sectionOther
)

func kindOf(name string) sectionKind {
	switch name {
	case "Statement":
		return sectionStatement
	case "Account Information":
		return sectionAccountInformation
	case "Dividends":
		return sectionDividends
	case "Withholding Tax":
		return sectionWithholdingTax
	case "Interest":
		return sectionInterest
	}
	return sectionOther
}

// extraction is the mutable state of a single Extract call.
type extraction struct {
	sectionName string
	section     sectionKind

	metadata       common.Metadata
	dividends      []common.DividendEntry
	withholdingTax []common.WithholdingTaxEntry

	totalWithholdingTaxEUR *decimal.Decimal
	totalInterestEUR       *decimal.Decimal
	totalInterestLine      int

	usdWithholdingTaxEUR     *decimal.Decimal
	usdWithholdingTaxEURLine int
}

// ExtractReader reads an activity statement CSV and extracts it. Only
// read errors are returned, malformed content degrades.
func ExtractReader(reader io.Reader) (common.Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return common.Statement{}, fmt.Errorf("failed to read activity statement: %w", err)
	}
	return Extract(string(content)), nil
}

// Extract parses the text of an IBKR activity statement. It never fails:
// missing columns become empty strings, unreadable amounts become zero and
// summaries that are not in the file stay nil.
func Extract(content string) common.Statement {
	e := &extraction{
		dividends:      []common.DividendEntry{},
		withholdingTax: []common.WithholdingTaxEntry{},
	}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "\ufeff")
		e.processLine(common.SplitCSVLine(line), i+1)
	}

	if e.usdWithholdingTaxEUR != nil {
		e.withholdingTax = append(e.withholdingTax, common.WithholdingTaxEntry{
			Currency:    "EUR",
			Date:        common.PeriodEndDate(e.metadata.Period),
			Description: USDWithholdingTaxDescription,
			Amount:      *e.usdWithholdingTaxEUR,
			LineNumber:  e.usdWithholdingTaxEURLine,
		})
	}

	return common.Statement{
		Dividends:                  e.dividends,
		WithholdingTax:             e.withholdingTax,
		TotalWithholdingTaxEUR:     e.totalWithholdingTaxEUR,
		TotalInterestEUR:           e.totalInterestEUR,
		TotalInterestEURLineNumber: e.totalInterestLine,
		ParsedReport: common.ParsedReport{
			Dividends:      e.dividends,
			WithholdingTax: e.withholdingTax,
			Metadata:       e.metadata,
		},
	}
}

func (e *extraction) processLine(columns []string, lineNumber int) {
	if len(columns) < 2 {
		return
	}

	sectionName := columns[colSection]
	switch columns[colRowType] {
	case "Header":
		e.sectionName = sectionName
		e.section = kindOf(sectionName)
	case "Data":
		if e.section == sectionNone || sectionName != e.sectionName {
			return
		}
		e.processData(dataRow(columns[2:]), lineNumber)
	}
}

// dataRow returns empty strings for columns the row does not have.
type dataRow []string

func (d dataRow) at(i int) string {
	if i < len(d) {
		return d[i]
	}
	return ""
}

func (e *extraction) processData(data dataRow, lineNumber int) {
	first := data.at(dataCurrency)

	switch e.section {
	case sectionStatement:
		switch first {
		case "Period":
			e.metadata.Period = stringPtr(data.at(1))
		case "WhenGenerated":
			e.metadata.GeneratedDate = stringPtr(data.at(1))
		}

	case sectionAccountInformation:
		if first == "Account" {
			e.metadata.Account = stringPtr(data.at(1))
		}

	case sectionDividends:
		if first == "Total" || first == "" {
			return
		}
		e.dividends = append(e.dividends, common.DividendEntry{
			Currency:    first,
			Date:        data.at(dataDate),
			Description: data.at(dataDescription),
			Amount:      common.ParseAmount(data.at(dataAmount)),
			LineNumber:  lineNumber,
		})

	case sectionWithholdingTax:
		e.processWithholdingTax(data, lineNumber)

	case sectionInterest:
		// Per-currency interest rows are ignored, IBKR's EUR total is used as is.
		if first == "Total Interest in EUR" {
			total := common.ParseAmount(data.at(dataAmount))
			e.totalInterestEUR = &total
			e.totalInterestLine = lineNumber
		}
	}
}

func (e *extraction) processWithholdingTax(data dataRow, lineNumber int) {
	first := data.at(dataCurrency)
	amount := data.at(dataAmount)

	switch {
	case first == "Total Withholding Tax in EUR":
		total := common.ParseAmount(amount).Abs()
		e.totalWithholdingTaxEUR = &total

	case first == "Total in EUR":
		// Converted subtotal of the USD rows, turned into an entry after the scan.
		if amount == "" {
			return
		}
		subtotal := common.ParseAmount(amount)
		e.usdWithholdingTaxEUR = &subtotal
		e.usdWithholdingTaxEURLine = lineNumber

	case first == "Total" || first == "":
		return

	case strings.Contains(data.at(dataDescription), "Total"):
		return

	case first == "USD":
		// Covered by the "Total in EUR" subtotal.
		return

	default:
		e.withholdingTax = append(e.withholdingTax, common.WithholdingTaxEntry{
			Currency:    first,
			Date:        data.at(dataDate),
			Description: data.at(dataDescription),
			Amount:      common.ParseAmount(amount),
			LineNumber:  lineNumber,
		})
	}
}

func stringPtr(s string) *string {
	return &s
}
