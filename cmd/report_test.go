package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aqlanhadi/kapreport/extractor"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSelector struct {
	choice string
	err    error
	items  []string
}

func (s *stubSelector) Select(label string, items []string) (string, error) {
	s.items = items
	return s.choice, s.err
}

func fixtureDir(t *testing.T, names ...string) string {
	t.Helper()
	content, err := os.ReadFile("../anlagekap/testdata/activity_2024.csv")
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
	}
	return dir
}

func TestRunReport_JSON(t *testing.T) {
	dir := fixtureDir(t, "activity_2024.csv")

	var out bytes.Buffer
	err := runReport(&out, reportOptions{Folder: dir, Format: "json"}, &stubSelector{})
	require.NoError(t, err)

	var result struct {
		Source      string            `json:"source"`
		Calculation map[string]string `json:"calculation"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "activity_2024", result.Source)
	assert.Equal(t, "185.00", result.Calculation["line7"])
	assert.Equal(t, "9.87", result.Calculation["line19"])
	assert.Equal(t, "46.25", result.Calculation["line37"])
	assert.Equal(t, "2.54", result.Calculation["line38"])
	assert.Equal(t, "3.47", result.Calculation["line41"])
}

func TestRunReport_Table(t *testing.T) {
	dir := fixtureDir(t, "activity_2024.csv")

	var out bytes.Buffer
	err := runReport(&out, reportOptions{Folder: dir, Format: "table", Style: "notty", Width: 120}, &stubSelector{})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Anlage KAP")
}

func TestRunReport_HTMLDefaultsNextToCSV(t *testing.T) {
	dir := fixtureDir(t, "activity_2024.csv")

	var out bytes.Buffer
	err := runReport(&out, reportOptions{Folder: dir, Format: "html"}, &stubSelector{})
	require.NoError(t, err)

	expected := filepath.Join(dir, "activity_2024.html")
	assert.Contains(t, out.String(), expected)

	content, err := os.ReadFile(expected)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<!DOCTYPE html>")
	assert.Contains(t, string(content), "€46.25")
}

func TestRunReport_HTMLOutputFlag(t *testing.T) {
	dir := fixtureDir(t, "activity_2024.csv")
	target := filepath.Join(t.TempDir(), "report.html")

	var out bytes.Buffer
	err := runReport(&out, reportOptions{Folder: dir, Format: "html", Output: target}, &stubSelector{})
	require.NoError(t, err)

	assert.FileExists(t, target)
	assert.NoFileExists(t, filepath.Join(dir, "activity_2024.html"))
}

func TestRunReport_UnsupportedFormat(t *testing.T) {
	dir := fixtureDir(t, "activity_2024.csv")

	err := runReport(&bytes.Buffer{}, reportOptions{Folder: dir, Format: "pdf"}, &stubSelector{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRunReport_NoCSVFiles(t *testing.T) {
	err := runReport(&bytes.Buffer{}, reportOptions{Folder: t.TempDir(), Format: "json"}, &stubSelector{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, extractor.ErrNoCSVFiles))
}

func TestResolveFile_AsksWhenSeveral(t *testing.T) {
	dir := fixtureDir(t, "b.csv", "a.csv")
	selector := &stubSelector{choice: "b.csv"}

	path, err := resolveFile(reportOptions{Folder: dir}, selector)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "b.csv"), path)
	assert.Equal(t, []string{"a.csv", "b.csv"}, selector.items)
}

func TestResolveFile_SingleFileSkipsPrompt(t *testing.T) {
	dir := fixtureDir(t, "only.csv")
	selector := &stubSelector{err: errors.New("should not be asked")}

	path, err := resolveFile(reportOptions{Folder: dir}, selector)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "only.csv"), path)
	assert.Nil(t, selector.items)
}

func TestResolveFile_YesTakesFirst(t *testing.T) {
	dir := fixtureDir(t, "2024.csv", "2023.csv")
	selector := &stubSelector{err: errors.New("should not be asked")}

	path, err := resolveFile(reportOptions{Folder: dir, Yes: true}, selector)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "2023.csv"), path)
}

func TestResolveFile_SelectionAborted(t *testing.T) {
	dir := fixtureDir(t, "a.csv", "b.csv")

	_, err := resolveFile(reportOptions{Folder: dir}, &stubSelector{err: errors.New("^C")})

	assert.Error(t, err)
}

func TestResolveFile_ExplicitFile(t *testing.T) {
	dir := fixtureDir(t, "a.csv", "b.csv")

	path, err := resolveFile(reportOptions{Folder: dir, File: "b.csv"}, &stubSelector{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.csv"), path)

	abs := filepath.Join(dir, "a.csv")
	path, err = resolveFile(reportOptions{Folder: "elsewhere", File: abs}, &stubSelector{})
	require.NoError(t, err)
	assert.Equal(t, abs, path)
}

func TestHTMLOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "U123_2024.html"), htmlOutputPath(filepath.Join("data", "U123_2024.csv"), ""))
	assert.Equal(t, "out.html", htmlOutputPath("statement.csv", "out.html"))
}

func TestReadDefaultConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, readDefaultConfig())

	opts := reportOptionsFromConfig()
	assert.Equal(t, ".", opts.Folder)
	assert.Equal(t, "table", opts.Format)
	assert.Equal(t, "auto", opts.Style)
	assert.Equal(t, 100, opts.Width)
	assert.False(t, opts.Details)
	assert.Equal(t, "8080", viper.GetString("server.port"))
}

func TestServerConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, readDefaultConfig())
	viper.Set("server.port", "9090")
	viper.Set("server.max_upload_mb", 2)

	cfg := serverConfig()
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, int64(2), cfg.MaxUploadMB)
	assert.Equal(t, "SERVER: ", cfg.LogPrefix)
}
