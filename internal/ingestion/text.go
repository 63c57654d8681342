package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jonathan/repo-scout/internal/fetch"
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// 1. Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	// 2. Split into lines for processing
	lines := strings.Split(content, "\n")

	// 3. Process each line
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned := cleanLine(line)
		cleanedLines = append(cleanedLines, cleaned)
	}

	// 4. Join lines
	result := strings.Join(cleanedLines, "\n")

	// 5. Remove excessive blank lines (max 2 consecutive)
	result = removeExcessiveBlankLines(result)

	// 6. Trim leading/trailing whitespace from entire content
	result = strings.TrimSpace(result)

	return result
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	// Trim trailing whitespace
	line = strings.TrimRight(line, " \t")

	// Handle empty lines
	if strings.TrimSpace(line) == "" {
		return ""
	}

	// Preserve headings (Markdown # or ## etc.)
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		// Keep markdown headings as-is, normalize leading spaces to 0
		return trimmed
	}

	// Preserve bullet lists (Markdown - or *)
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		// Preserve indentation before bullet, but normalize
		indent := len(line) - len(trimmed)
		if indent > 0 {
			return strings.Repeat(" ", indent) + trimmed
		}
		return trimmed
	}

	// For regular lines, normalize multiple spaces to single space
	// but preserve intentional indentation at start of line
	leadingSpace := len(line) - len(trimmed)
	content := strings.TrimSpace(line)
	// Normalize spaces in content (multiple spaces → single)
	content = regexp.MustCompile(`\s+`).ReplaceAllString(content, " ")
	if leadingSpace > 0 {
		return strings.Repeat(" ", leadingSpace) + content
	}
	return content
}

// removeExcessiveBlankLines reduces consecutive blank lines to max 2
func removeExcessiveBlankLines(content string) string {
	// Replace 3+ consecutive newlines with 2 newlines
	re := regexp.MustCompile(`\n\n\n+`)
	return re.ReplaceAllString(content, "\n\n")
}

// ExtractText converts raw document bytes to plain text based on format.
func ExtractText(data []byte, format Format) (string, error) {
	switch format {
	case FormatPDF:
		return extractPDFText(data)
	case FormatHTML:
		return extractHTMLText(string(data))
	default:
		return string(data), nil
	}
}

// extractHTMLText pulls the main body text out of an HTML document. Local
// files carry no host information, so only the generic selectors apply.
func extractHTMLText(html string) (string, error) {
	noiseSelectors := fetch.PlatformNoiseSelectors(fetch.PlatformUnknown)
	text, err := fetch.ExtractMainText(html, fetch.DocumentSelectors(), noiseSelectors...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	return text, nil
}

// IngestFromFile reads a document, extracts its text, cleans it, and
// returns the cleaned text with metadata. An empty format triggers
// content sniffing.
func IngestFromFile(path string, format Format) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	if format == "" {
		format = DetectFormat(content, path)
	}

	text, err := ExtractText(content, format)
	if err != nil {
		return "", nil, err
	}

	cleanedText := CleanText(text)
	if cleanedText == "" {
		return "", nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}

	metadata := NewMetadata(cleanedText, "")
	metadata.Format = string(format)
	mergeSidecar(path, metadata)

	return cleanedText, metadata, nil
}

// mergeSidecar merges the source URL and platform from a previously written
// metadata sidecar, if one sits next to the ingested file. Re-ingesting a
// downloaded document keeps its provenance this way.
func mergeSidecar(path string, metadata *Metadata) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	sidecarBytes, err := os.ReadFile(base + ".meta.json")
	if err != nil {
		return
	}

	var sidecar Metadata
	if err := json.Unmarshal(sidecarBytes, &sidecar); err != nil {
		return
	}

	if sidecar.URL != "" {
		metadata.URL = sidecar.URL
	}
	if sidecar.Platform != "" {
		metadata.Platform = sidecar.Platform
	}
}

// WriteOutput writes the cleaned text and metadata sidecar to output files
func WriteOutput(outDir string, cleanedText string, metadata *Metadata) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cleanedPath := filepath.Join(outDir, "sow.cleaned.txt")
	if err := os.WriteFile(cleanedPath, []byte(cleanedText), 0644); err != nil {
		return fmt.Errorf("failed to write cleaned text file: %w", err)
	}

	metaPath := filepath.Join(outDir, "sow.cleaned.meta.json")
	metaJSON, err := metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}
