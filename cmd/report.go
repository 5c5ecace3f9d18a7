package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aqlanhadi/kapreport/anlagekap"
	"github.com/aqlanhadi/kapreport/extractor"
	"github.com/aqlanhadi/kapreport/renderer"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Calculates Anlage KAP values for a statement",
	Long: `Calculates the Anlage KAP values for an IBKR activity statement.
This command scans the folder for CSV exports, asks which one to use
when there is more than one, and prints the report as a table, an HTML
document or JSON.`,
	Args: cobra.NoArgs,
	Run:  handler,
}

func handler(cmd *cobra.Command, args []string) {
	opts := reportOptionsFromConfig()
	if err := runReport(cmd.OutOrStdout(), opts, promptSelector{}); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("folder", "f", ".", "Folder in which kapreport will scan for CSV files")
	reportCmd.Flags().String("file", "", "CSV file to use instead of asking")
	reportCmd.Flags().String("format", "table", "Output format: table, html or json")
	reportCmd.Flags().StringP("output", "o", "", "HTML output path (default is next to the CSV)")
	reportCmd.Flags().Bool("details", false, "Include the transactions behind each line")
	reportCmd.Flags().BoolP("yes", "y", false, "Use the first CSV file without asking")

	for _, name := range []string{"folder", "file", "format", "output", "details", "yes"} {
		viper.BindPFlag(name, reportCmd.Flags().Lookup(name))
	}
}

type reportOptions struct {
	Folder  string
	File    string
	Format  string
	Output  string
	Details bool
	Yes     bool
	Style   string
	Width   int
}

func reportOptionsFromConfig() reportOptions {
	return reportOptions{
		Folder:  viper.GetString("folder"),
		File:    viper.GetString("file"),
		Format:  viper.GetString("format"),
		Output:  viper.GetString("output"),
		Details: viper.GetBool("details"),
		Yes:     viper.GetBool("yes"),
		Style:   viper.GetString("style"),
		Width:   viper.GetInt("width"),
	}
}

// fileSelector picks one of the discovered statements.
type fileSelector interface {
	Select(label string, items []string) (string, error)
}

type promptSelector struct{}

func (promptSelector) Select(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}
	_, choice, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("file selection aborted: %w", err)
	}
	return choice, nil
}

func runReport(w io.Writer, opts reportOptions, selector fileSelector) error {
	path, err := resolveFile(opts, selector)
	if err != nil {
		return err
	}

	statement, err := extractor.ProcessFile(path)
	if err != nil {
		return err
	}

	switch opts.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(extractor.CreateFinalOutput(statement)); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
		return nil
	case "html":
		doc := renderer.NewDocument(statement, anlagekap.Calculate(statement), filepath.Base(path))
		return writeHTML(w, doc, htmlOutputPath(path, opts.Output))
	case "table", "":
		doc := renderer.NewDocument(statement, anlagekap.Calculate(statement), filepath.Base(path))
		return renderer.Console(w, doc, renderer.ConsoleOptions{
			Style:   opts.Style,
			Width:   opts.Width,
			Details: opts.Details,
		})
	default:
		return fmt.Errorf("unsupported format %q (use table, html or json)", opts.Format)
	}
}

func resolveFile(opts reportOptions, selector fileSelector) (string, error) {
	if opts.File != "" {
		if filepath.IsAbs(opts.File) {
			return opts.File, nil
		}
		candidate := filepath.Join(opts.Folder, opts.File)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		return opts.File, nil
	}

	files, err := extractor.FindCSVFiles(opts.Folder)
	if err != nil {
		return "", err
	}

	if len(files) == 1 || opts.Yes {
		log.Printf("Using %s", files[0])
		return filepath.Join(opts.Folder, files[0]), nil
	}

	choice, err := selector.Select("Select an IBKR activity statement", files)
	if err != nil {
		return "", err
	}
	return filepath.Join(opts.Folder, choice), nil
}

func htmlOutputPath(csvPath, output string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".html"
}

func writeHTML(w io.Writer, doc renderer.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := renderer.HTML(f, doc, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(w, "HTML report saved to %s\n", path)
	return nil
}
