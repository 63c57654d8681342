// Package fetch - platform.go provides document host detection and
// host-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known document hosting platform.
type Platform string

const (
	// PlatformNotion is a public Notion page
	PlatformNotion Platform = "notion"
	// PlatformGoogleDocs is a published Google Docs document
	PlatformGoogleDocs Platform = "google-docs"
	// PlatformConfluence is an Atlassian Confluence page
	PlatformConfluence Platform = "confluence"
	// PlatformUnknown is an unrecognized host
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the document hosting platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	// Notion patterns
	if strings.Contains(host, "notion.so") ||
		strings.Contains(host, "notion.site") {
		return PlatformNotion
	}

	// Google Docs patterns
	if strings.Contains(host, "docs.google.com") {
		return PlatformGoogleDocs
	}

	// Confluence patterns
	if strings.Contains(host, "atlassian.net") ||
		strings.Contains(host, "confluence.") {
		return PlatformConfluence
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific host.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformNotion:
		return []string{
			".notion-page-content", // Primary Notion selector
			".notion-page-block",   // Fallback
			"[data-block-id]",      // Block level
			"main",                 // Generic fallback
		}
	case PlatformGoogleDocs:
		return []string{
			".doc-content",
			"#contents",
			".kix-appview-editor",
			"main",
		}
	case PlatformConfluence:
		return []string{
			"#main-content",
			".wiki-content",
			"#content",
			"main",
		}
	default:
		return DocumentSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific host.
func PlatformNoiseSelectors(platform Platform) []string {
	// Common noise selectors for all hosts
	common := []string{
		// Comments and discussion threads
		".comments",
		"#comments",
		".comment-thread",
		"[data-testid='comments']",

		// Share and collaboration chrome
		".share-dialog",
		".share-buttons",
		".collaborator-list",
		".presence-indicator",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",

		// Generic navigation already handled in fetch.go
	}

	// Host-specific noise selectors
	switch platform {
	case PlatformNotion:
		return append(common,
			".notion-topbar",
			".notion-sidebar",
			".notion-overlay-container",
			".notion-peek-renderer",
		)
	case PlatformGoogleDocs:
		return append(common,
			"#docs-chrome",
			".docs-ml-header",
			".docs-butterbar-container",
		)
	case PlatformConfluence:
		return append(common,
			"#footer",
			".page-metadata",
			".like-section",
			".label-list",
		)
	default:
		return common
	}
}
