package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/repo-scout/internal/ingestion"
	"github.com/spf13/cobra"
)

var ingestSOWCmd = &cobra.Command{
	Use:   "ingest-sow",
	Short: "Ingest a statement of work from a file or URL",
	Long:  "Ingest a statement-of-work document from either a local file (pdf, html, or plain text) or a URL, clean the content, and output cleaned text with metadata.",
	RunE:  runIngestSOW,
}

var (
	ingestFile       string
	ingestURL        string
	ingestFormat     string
	ingestOutDir     string
	ingestUseBrowser bool
	ingestVerbose    bool
)

func init() {
	ingestSOWCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "Path to statement-of-work document")
	ingestSOWCmd.Flags().StringVarP(&ingestURL, "url", "u", "", "URL to fetch the statement of work from")
	ingestSOWCmd.Flags().StringVar(&ingestFormat, "format", "", "Document format override: pdf, html, or txt (default: sniffed from content)")
	ingestSOWCmd.Flags().StringVarP(&ingestOutDir, "out", "o", "", "Output directory (required)")
	ingestSOWCmd.Flags().BoolVar(&ingestUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	ingestSOWCmd.Flags().BoolVarP(&ingestVerbose, "verbose", "v", false, "Print detailed debug information")

	ingestSOWCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(ingestSOWCmd)
}

func runIngestSOW(_ *cobra.Command, _ []string) error {
	// Validate mutually exclusive flags
	if ingestFile == "" && ingestURL == "" {
		return fmt.Errorf("either --file or --url must be provided")
	}
	if ingestFile != "" && ingestURL != "" {
		return fmt.Errorf("--file and --url are mutually exclusive; provide only one")
	}

	switch ingestFormat {
	case "", "pdf", "html", "txt":
	default:
		return fmt.Errorf("--format must be one of pdf, html, txt")
	}

	var cleanedText string
	var metadata *ingestion.Metadata
	var err error

	if ingestFile != "" {
		cleanedText, metadata, err = ingestion.IngestFromFile(ingestFile, ingestion.Format(ingestFormat))
		if err != nil {
			return fmt.Errorf("failed to ingest from file: %w", err)
		}
	} else {
		cleanedText, metadata, err = ingestion.IngestFromURL(context.Background(), ingestURL, ingestUseBrowser, ingestVerbose)
		if err != nil {
			return fmt.Errorf("failed to ingest from URL: %w", err)
		}
	}

	// Write output files
	if err := ingestion.WriteOutput(ingestOutDir, cleanedText, metadata); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Successfully ingested statement of work\n")
	fmt.Fprintf(os.Stdout, "Cleaned text: %s/sow.cleaned.txt\n", ingestOutDir)
	fmt.Fprintf(os.Stdout, "Metadata: %s/sow.cleaned.meta.json\n", ingestOutDir)

	return nil
}
