package ingestion

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies the source format of an ingested document.
type Format string

const (
	// FormatPDF is a PDF document
	FormatPDF Format = "pdf"
	// FormatHTML is an HTML page
	FormatHTML Format = "html"
	// FormatText is plain text or Markdown
	FormatText Format = "txt"
)

// sniffWindow is how many leading bytes format sniffing inspects.
const sniffWindow = 256

// DetectFormat sniffs the document format from its content, falling back
// to the file extension. Plain text is the default.
func DetectFormat(data []byte, path string) Format {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return FormatPDF
	}

	head := data
	if len(head) > sniffWindow {
		head = head[:sniffWindow]
	}
	lower := strings.ToLower(string(bytes.TrimSpace(head)))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return FormatHTML
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".html", ".htm":
		return FormatHTML
	}

	return FormatText
}
