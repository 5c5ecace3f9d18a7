package renderer

import (
	"fmt"
	"io"
	"log"

	"github.com/charmbracelet/glamour"
)

// ConsoleOptions configures terminal output.
type ConsoleOptions struct {
	Style   string // glamour style name, "auto" detects the terminal
	Width   int    // word wrap, 0 keeps glamour's default
	Details bool
}

// DefaultConsoleOptions returns the options used when nothing is configured.
func DefaultConsoleOptions() ConsoleOptions {
	return ConsoleOptions{Style: "auto", Width: 100}
}

// Console writes the report for a terminal. If the markdown cannot be
// styled the raw markdown is written instead.
func Console(w io.Writer, d Document, opts ConsoleOptions) error {
	source := Markdown(d, MarkdownOptions{Details: opts.Details})

	out, err := styleMarkdown(source, opts)
	if err != nil {
		log.Printf("Warning: could not style report, printing markdown: %v", err)
		out = source
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func styleMarkdown(source string, opts ConsoleOptions) (string, error) {
	termOpts := []glamour.TermRendererOption{}
	switch opts.Style {
	case "", "auto":
		termOpts = append(termOpts, glamour.WithAutoStyle())
	default:
		termOpts = append(termOpts, glamour.WithStandardStyle(opts.Style))
	}
	if opts.Width > 0 {
		termOpts = append(termOpts, glamour.WithWordWrap(opts.Width))
	}

	r, err := glamour.NewTermRenderer(termOpts...)
	if err != nil {
		return "", err
	}
	return r.Render(source)
}
