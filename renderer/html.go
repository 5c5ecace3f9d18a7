package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/aqlanhadi/kapreport/anlagekap"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/report.html templates/report.css
var templates embed.FS

var (
	reportTemplate = template.Must(template.ParseFS(templates, "templates/report.html"))

	detailsMarkdown = goldmark.New(
		goldmark.WithExtensions(
			extension.NewTable(extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute)),
		),
	)

	detailsPolicy = newDetailsPolicy()
)

func newDetailsPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("align").Matching(bluemonday.CellAlign).OnElements("th", "td")
	return p
}

// reportLocation is where the report generation time is shown.
var reportLocation = loadLocation("Europe/Berlin")

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

type htmlLine struct {
	anlagekap.Line
	Amount string
}

type htmlPage struct {
	Title         string
	CSS           template.CSS
	FileName      string
	Account       string
	Period        string
	GeneratedDate string
	GeneratedAt   string
	Lines         []htmlLine
	Details       template.HTML
	Disclaimer    []string
	ProjectURL    string
}

// HTML writes the report as a self-contained HTML document.
func HTML(w io.Writer, d Document, generatedAt time.Time) error {
	css, err := templates.ReadFile("templates/report.css")
	if err != nil {
		return fmt.Errorf("failed to read stylesheet: %w", err)
	}

	details, err := DetailsHTML(d)
	if err != nil {
		return err
	}

	page := htmlPage{
		Title:         Title,
		CSS:           template.CSS(css),
		FileName:      d.FileName,
		Account:       deref(d.Metadata.Account),
		Period:        deref(d.Metadata.Period),
		GeneratedDate: deref(d.Metadata.GeneratedDate),
		GeneratedAt:   generatedAt.In(reportLocation).Format("02.01.2006, 15:04:05"),
		Details:       details,
		Disclaimer:    Disclaimer,
		ProjectURL:    ProjectURL,
	}
	for _, line := range anlagekap.Lines() {
		page.Lines = append(page.Lines, htmlLine{Line: line, Amount: FormatEUR(d.Calculation.Amount(line.Number))})
	}

	if err := reportTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}

// DetailsHTML converts the per-line tables to sanitized HTML.
func DetailsHTML(d Document) (template.HTML, error) {
	var buf bytes.Buffer
	if err := detailsMarkdown.Convert([]byte(DetailsMarkdown(d)), &buf); err != nil {
		return "", fmt.Errorf("failed to convert transaction details: %w", err)
	}
	return template.HTML(detailsPolicy.SanitizeBytes(buf.Bytes())), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
