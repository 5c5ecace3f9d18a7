package extractor

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aqlanhadi/kapreport/anlagekap"
	"github.com/aqlanhadi/kapreport/extractor/common"
	"github.com/aqlanhadi/kapreport/extractor/ibkr_activity"
)

// ErrNoCSVFiles is returned when a folder has no statement to offer.
var ErrNoCSVFiles = errors.New("no CSV files found")

// FindCSVFiles lists the *.csv files directly inside dir, sorted by name.
func FindCSVFiles(dir string) ([]string, error) {
	log.Println("📂 Scanning ", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCSVFiles, dir)
	}
	return files, nil
}

// ProcessFile extracts the statement stored at path.
func ProcessFile(path string) (common.Statement, error) {
	log.Println("📄 Scanning ", path)

	f, err := os.Open(path)
	if err != nil {
		return common.Statement{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ProcessReader(f, path)
}

// ProcessReader extracts a statement and records where it came from.
func ProcessReader(reader io.Reader, filename string) (common.Statement, error) {
	statement, err := ibkr_activity.ExtractReader(reader)
	if err != nil {
		return common.Statement{}, err
	}
	statement.Source = sourceName(filename)

	log.Printf("\t📄 Extracted %d dividends and %d withholding tax entries from %s",
		len(statement.Dividends), len(statement.WithholdingTax), filename)
	return statement, nil
}

func sourceName(filename string) string {
	if filename == "" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// Output is the JSON shape shared by the CLI and the API.
type Output struct {
	Source      string                `json:"source"`
	Metadata    common.Metadata       `json:"metadata"`
	Calculation anlagekap.Calculation `json:"calculation"`
	Entries     anlagekap.LineEntries `json:"entries"`
	Summary     Summary               `json:"summary"`
}

type Summary struct {
	Dividends      int `json:"dividends"`
	WithholdingTax int `json:"withholding_tax"`
}

// CreateFinalOutput calculates the statement and bundles it for output.
func CreateFinalOutput(statement common.Statement) Output {
	return Output{
		Source:      statement.Source,
		Metadata:    statement.ParsedReport.Metadata,
		Calculation: anlagekap.Calculate(statement),
		Entries:     anlagekap.EntriesByLine(statement),
		Summary: Summary{
			Dividends:      len(statement.Dividends),
			WithholdingTax: len(statement.WithholdingTax),
		},
	}
}
