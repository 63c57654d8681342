package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat_ContentSniffing(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		path     string
		expected Format
	}{
		{"PDF magic bytes", "%PDF-1.4\nbinary stuff", "document", FormatPDF},
		{"PDF magic beats txt extension", "%PDF-1.7\n", "sow.txt", FormatPDF},
		{"html doctype", "<!DOCTYPE html><html></html>", "document", FormatHTML},
		{"html doctype uppercase", "<!DOCTYPE HTML>", "document", FormatHTML},
		{"html tag", "<html><body></body></html>", "document", FormatHTML},
		{"html tag with leading whitespace", "\n\n  <html>", "document", FormatHTML},
		{"plain text", "Statement of Work\n\nDeliverables", "document", FormatText},
		{"markdown", "# Statement of Work", "sow.md", FormatText},
		{"empty content", "", "document", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectFormat([]byte(tt.data), tt.path))
		})
	}
}

func TestDetectFormat_ExtensionFallback(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected Format
	}{
		{"pdf extension", "sow.pdf", FormatPDF},
		{"pdf extension uppercase", "SOW.PDF", FormatPDF},
		{"html extension", "sow.html", FormatHTML},
		{"htm extension", "sow.htm", FormatHTML},
		{"txt extension", "sow.txt", FormatText},
		{"no extension", "sow", FormatText},
	}

	// Content that matches no magic bytes, so only the extension decides
	content := []byte("ambiguous content")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectFormat(content, tt.path))
		})
	}
}
