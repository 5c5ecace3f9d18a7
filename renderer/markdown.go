package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/aqlanhadi/kapreport/anlagekap"
	"github.com/aqlanhadi/kapreport/extractor/common"
	md "github.com/nao1215/markdown"
)

const Title = "German Tax Report - Anlage KAP"

const ProjectURL = "https://github.com/aqlanhadi/kapreport"

// Disclaimer is printed with every report.
var Disclaimer = []string{
	"This tool provides calculations for informational purposes only",
	"This is NOT tax advice",
	"No warranty or guarantee is provided",
	"You are responsible for verifying all calculations",
	"Consult a qualified tax professional for guidance",
}

// Document is everything a report shows.
type Document struct {
	FileName    string
	Metadata    common.Metadata
	Calculation anlagekap.Calculation
	Entries     anlagekap.LineEntries

	DividendCount       int
	WithholdingTaxCount int
}

// NewDocument prepares a statement and its calculation for rendering.
func NewDocument(s common.Statement, c anlagekap.Calculation, fileName string) Document {
	return Document{
		FileName:            fileName,
		Metadata:            s.ParsedReport.Metadata,
		Calculation:         c,
		Entries:             anlagekap.EntriesByLine(s),
		DividendCount:       len(s.Dividends),
		WithholdingTaxCount: len(s.WithholdingTax),
	}
}

// MarkdownOptions controls the optional parts of the markdown report.
type MarkdownOptions struct {
	Details bool // append the per-line transaction tables
}

// Markdown renders the complete report.
func Markdown(d Document, opts MarkdownOptions) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(Title)
	writeInformation(doc, d)
	writeSummary(doc, d)

	doc.H2("Summary")
	doc.BulletList(
		fmt.Sprintf("%d dividend payments processed", d.DividendCount),
		fmt.Sprintf("%d withholding tax entries processed", d.WithholdingTaxCount),
	)
	doc.PlainText("Copy these values to your German tax return (Anlage KAP).")

	if opts.Details {
		writeDetails(doc, d)
	}

	doc.H2("⚠️ IMPORTANT DISCLAIMER")
	doc.BulletList(Disclaimer...)
	doc.PlainText(fmt.Sprintf("Please read the README and review the source code: %s", ProjectURL))

	return doc.String()
}

// DetailsMarkdown renders only the per-line transaction tables.
func DetailsMarkdown(d Document) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	writeDetails(doc, d)
	return doc.String()
}

func writeInformation(doc *md.Markdown, d Document) {
	var info []string
	if d.FileName != "" {
		info = append(info, "Source File: "+d.FileName)
	}
	if d.Metadata.Account != nil {
		info = append(info, "Account: "+*d.Metadata.Account)
	}
	if d.Metadata.Period != nil {
		info = append(info, "Period: "+*d.Metadata.Period)
	}
	if d.Metadata.GeneratedDate != nil {
		info = append(info, "Generated: "+*d.Metadata.GeneratedDate)
	}
	if len(info) == 0 {
		return
	}
	doc.H2("Report Information")
	doc.BulletList(info...)
}

func writeSummary(doc *md.Markdown, d Document) {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignRight},
		Header:    []string{"Line", "Description", "Amount (EUR)"},
		Rows:      [][]string{},
	}
	for _, line := range anlagekap.Lines() {
		table.Rows = append(table.Rows, []string{
			line.Number,
			line.Label,
			FormatEUR(d.Calculation.Amount(line.Number)),
		})
	}
	doc.H2("Tax Summary")
	doc.Table(table)
}

func writeDetails(doc *md.Markdown, d Document) {
	doc.H2("Transaction Details")

	if len(d.Entries.Line7) > 0 {
		doc.H3("Line 7: Dividends Subject to German Tax")
		table := entryTable("Amount")
		for _, e := range d.Entries.Line7 {
			table.Rows = append(table.Rows, entryRow(e.LineNumber, e.Date, e.Description, e.Currency, FormatEUR(e.Amount)))
		}
		doc.Table(table)
	}

	if len(d.Entries.Line19) > 0 {
		doc.H3("Line 19: Interest Income")
		doc.Blockquote(`This amount comes from IBKR's "Total Interest in EUR" summary line`)
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"CSV Line", "Description", "Currency", "Amount"},
			Rows:      [][]string{},
		}
		for _, e := range d.Entries.Line19 {
			table.Rows = append(table.Rows, []string{
				lineNumber(e.LineNumber), cell(e.Description), cell(e.Currency), FormatEUR(e.Amount),
			})
		}
		doc.Table(table)
	}

	if len(d.Entries.Line3738) > 0 {
		doc.H3("Lines 37 & 38: German Tax Withheld")
		doc.Blockquote("Total German tax is split into Abgeltungssteuer (25%, Line 37) and Solidaritätszuschlag (5.5% of Abgeltungssteuer, Line 38)")
		doc.Table(withholdingTable(d.Entries.Line3738))
	}

	if len(d.Entries.Line41) > 0 {
		doc.H3("Line 41: Foreign Withholding Tax")
		doc.Table(withholdingTable(d.Entries.Line41))
	}
}

func entryTable(amountHeader string) md.TableSet {
	return md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"CSV Line", "Date", "Description", "Currency", amountHeader},
		Rows:      [][]string{},
	}
}

func withholdingTable(entries []common.WithholdingTaxEntry) md.TableSet {
	table := entryTable("Amount Withheld")
	for _, e := range entries {
		table.Rows = append(table.Rows, entryRow(e.LineNumber, e.Date, e.Description, e.Currency, FormatEUR(e.Amount)))
	}
	return table
}

func entryRow(line int, date, description, currency, amount string) []string {
	return []string{lineNumber(line), cell(date), cell(description), cell(currency), amount}
}

func lineNumber(n int) string {
	if n <= 0 {
		return "—"
	}
	return strconv.Itoa(n)
}

// cell keeps broker text from breaking the table layout.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
