package common

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var numericPrefixRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount reads the longest numeric prefix of text as a decimal.
// Text without a numeric prefix is zero.
func ParseAmount(text string) decimal.Decimal {
	prefix := numericPrefixRegex.FindString(strings.TrimSpace(text))
	if prefix == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(strings.TrimPrefix(prefix, "+"))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// SplitCSVLine splits a line on commas outside double quotes. Quotes only
// toggle the quoted state, there is no escape handling.
func SplitCSVLine(line string) []string {
	var columns []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			columns = append(columns, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	columns = append(columns, strings.TrimSpace(current.String()))

	for i, col := range columns {
		columns[i] = strings.TrimSuffix(strings.TrimPrefix(col, `"`), `"`)
	}
	return columns
}

// periodLayouts are the end-date spellings seen in statement periods.
var periodLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"2006-01-02",
	"01/02/2006",
}

// PeriodEndDate returns the end of a period such as
// "January 1, 2024 - December 31, 2024" as YYYY-MM-DD, or "" when the
// period is missing or the date cannot be read.
func PeriodEndDate(period *string) string {
	if period == nil {
		return ""
	}
	end := *period
	if i := strings.LastIndex(end, " - "); i >= 0 {
		end = end[i+len(" - "):]
	}
	end = strings.TrimSpace(end)

	for _, layout := range periodLayouts {
		if t, err := ParseDate(layout, end); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// ParseDate parses a date string using a layout, handling common issues
func ParseDate(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, time.UTC)
}
