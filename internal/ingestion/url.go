package ingestion

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/repo-scout/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the HTTP request fails
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
	// ErrEmptyDocument is returned when a document yields no usable text
	ErrEmptyDocument = fmt.Errorf("document contains no extractable text")
)

// IngestFromURL fetches a statement of work from a URL, extracts its text,
// cleans it, and returns the cleaned text with metadata. Host detection
// picks content selectors for known document platforms. If useBrowser is
// true, short content falls back to headless browser rendering for
// client-side rendered hosts. If verbose is true, the extraction steps
// are logged.
func IngestFromURL(ctx context.Context, urlStr string, useBrowser bool, verbose bool) (string, *Metadata, error) {
	// Detect the document host for host-specific selectors
	platform := fetch.DetectPlatform(urlStr)
	if verbose {
		log.Printf("[VERBOSE] URL: %s", urlStr)
		log.Printf("[VERBOSE] Detected platform: %s", platform)
	}

	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	if verbose {
		log.Printf("[VERBOSE] Fetched HTML: %d bytes", len(result.HTML))
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	textContent, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	if verbose {
		log.Printf("[VERBOSE] Extracted text: %d chars", len(textContent))
	}

	// Check if we should use browser fallback for client-rendered hosts
	if useBrowser && fetch.ShouldUseBrowser(textContent) {
		if verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), falling back to browser rendering...",
				len(textContent), fetch.MinContentLength)
		}

		browserHTML, browserErr := fetch.BrowserSimple(ctx, urlStr, verbose)
		if browserErr != nil {
			if verbose {
				log.Printf("[VERBOSE] Browser rendering failed: %v, using HTTP content", browserErr)
			}
			// Continue with HTTP content if the browser fails
		} else {
			rendered, renderErr := fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...)
			if renderErr != nil {
				if verbose {
					log.Printf("[VERBOSE] Browser content extraction failed: %v", renderErr)
				}
			} else {
				textContent = rendered
				if verbose {
					log.Printf("[VERBOSE] Browser extracted text: %d chars", len(textContent))
				}
			}
		}
	}

	cleanedText := CleanText(textContent)
	if verbose {
		log.Printf("[VERBOSE] Cleaned text: %d chars", len(cleanedText))
	}
	if cleanedText == "" {
		return "", nil, fmt.Errorf("%w: %s", ErrEmptyDocument, urlStr)
	}

	metadata := NewMetadata(cleanedText, urlStr)
	metadata.Platform = string(platform)
	metadata.Format = string(FormatHTML)

	return cleanedText, metadata, nil
}
