package extractor

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aqlanhadi/kapreport/extractor/common"
	"github.com/shopspring/decimal"
)

const sampleCSV = `Statement,Header,Field Name,Field Value
Statement,Data,Period,"January 1, 2024 - December 31, 2024"
Account Information,Header,Field Name,Field Value
Account Information,Data,Account,U1234567
Dividends,Header,Currency,Date,Description,Amount
Dividends,Data,EUR,2024-06-15,XYZ Cash Dividend,100
Withholding Tax,Header,Currency,Date,Description,Amount,Code
Withholding Tax,Data,EUR,2024-06-15,XYZ Cash Dividend - DE Tax,-15,
Withholding Tax,Data,Total in EUR,,,-9.5,
Interest,Header,Currency,Date,Description,Amount
Interest,Data,Total Interest in EUR,,,18.25
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func TestFindCSVFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "")
	writeFile(t, dir, "a.CSV", "")
	writeFile(t, dir, "notes.txt", "")
	if err := os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := FindCSVFiles(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d: %v", len(files), files)
	}
	if files[0] != "a.CSV" || files[1] != "b.csv" {
		t.Errorf("Expected sorted [a.CSV b.csv], got %v", files)
	}
}

func TestFindCSVFiles_Empty(t *testing.T) {
	_, err := FindCSVFiles(t.TempDir())
	if !errors.Is(err, ErrNoCSVFiles) {
		t.Errorf("Expected ErrNoCSVFiles, got %v", err)
	}
}

func TestFindCSVFiles_MissingFolder(t *testing.T) {
	_, err := FindCSVFiles(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("Expected error for missing folder")
	}
	if errors.Is(err, ErrNoCSVFiles) {
		t.Error("Missing folder should not be reported as an empty folder")
	}
}

func TestProcessFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "U1234567_2024.csv", sampleCSV)

	statement, err := ProcessFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if statement.Source != "U1234567_2024" {
		t.Errorf("Expected source 'U1234567_2024', got '%s'", statement.Source)
	}
	if len(statement.Dividends) != 1 {
		t.Errorf("Expected 1 dividend, got %d", len(statement.Dividends))
	}
	if len(statement.WithholdingTax) != 2 {
		t.Errorf("Expected 2 withholding tax entries, got %d", len(statement.WithholdingTax))
	}
}

func TestProcessFile_Missing(t *testing.T) {
	_, err := ProcessFile(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestProcessReader_NoFilename(t *testing.T) {
	statement, err := ProcessReader(strings.NewReader(sampleCSV), "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if statement.Source != "" {
		t.Errorf("Expected empty source, got '%s'", statement.Source)
	}
}

func TestCreateFinalOutput(t *testing.T) {
	statement, err := ProcessReader(strings.NewReader(sampleCSV), "upload.csv")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output := CreateFinalOutput(statement)

	if output.Source != "upload" {
		t.Errorf("Expected source 'upload', got '%s'", output.Source)
	}
	if output.Metadata.Account == nil || *output.Metadata.Account != "U1234567" {
		t.Errorf("Expected account U1234567, got %v", output.Metadata.Account)
	}
	if output.Calculation.Line7.StringFixed(2) != "100.00" {
		t.Errorf("Expected line 7 100.00, got %s", output.Calculation.Line7.StringFixed(2))
	}
	if output.Calculation.Line41.StringFixed(2) != "9.50" {
		t.Errorf("Expected line 41 9.50, got %s", output.Calculation.Line41.StringFixed(2))
	}
	if output.Summary.Dividends != 1 || output.Summary.WithholdingTax != 2 {
		t.Errorf("Unexpected summary %+v", output.Summary)
	}
	if len(output.Entries.Line19) != 1 {
		t.Errorf("Expected 1 interest row, got %d", len(output.Entries.Line19))
	}
}

func TestCreateFinalOutput_JSON(t *testing.T) {
	statement := common.Statement{
		Source: "test_statement",
		Dividends: []common.DividendEntry{
			{Currency: "EUR", Date: "2024-01-01", Description: "D", Amount: decimal.NewFromInt(100), LineNumber: 3},
		},
	}

	as_json, err := json.Marshal(CreateFinalOutput(statement))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var outputMap map[string]interface{}
	if err := json.Unmarshal(as_json, &outputMap); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}

	if outputMap["source"] != "test_statement" {
		t.Errorf("Expected source 'test_statement', got '%v'", outputMap["source"])
	}
	calculation, ok := outputMap["calculation"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected calculation object")
	}
	if calculation["line7"] != "100.00" {
		t.Errorf("Expected line7 '100.00', got '%v'", calculation["line7"])
	}
	metadata, ok := outputMap["metadata"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected metadata object")
	}
	if _, exists := metadata["account"]; exists {
		t.Error("Expected absent account to be omitted")
	}
}
