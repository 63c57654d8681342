// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Document source
	SOW    string `json:"sow,omitempty"`     // Path to statement-of-work document
	SOWURL string `json:"sow_url,omitempty"` // URL to fetch the statement of work from
	Format string `json:"format,omitempty"`  // Document format override (pdf, html, txt)

	// Search limits
	MinStars      int `json:"min_stars,omitempty"`       // Minimum star qualifier for repository search
	PerQueryLimit int `json:"per_query_limit,omitempty"` // Maximum results requested per search query

	// Behavior
	APIKey             string `json:"api_key,omitempty"`              // Gemini API key
	GitHubToken        string `json:"github_token,omitempty"`         // GitHub token for authenticated search
	CallTimeoutSeconds int    `json:"call_timeout_seconds,omitempty"` // Per-model-call timeout in seconds
	UseBrowser         bool   `json:"use_browser,omitempty"`          // Use headless browser for SPA sites
	Verbose            bool   `json:"verbose,omitempty"`              // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.SOW != "" && c.SOWURL != "" {
		return fmt.Errorf("config error: 'sow' and 'sow_url' are mutually exclusive")
	}

	switch c.Format {
	case "", "pdf", "html", "txt":
	default:
		return fmt.Errorf("config error: 'format' must be one of pdf, html, txt")
	}

	// Validate numeric ranges
	if c.MinStars < 0 {
		return fmt.Errorf("config error: 'min_stars' must be non-negative")
	}
	if c.PerQueryLimit < 0 {
		return fmt.Errorf("config error: 'per_query_limit' must be non-negative")
	}
	if c.CallTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'call_timeout_seconds' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.SOW != "" {
		if _, err := os.Stat(c.SOW); os.IsNotExist(err) {
			return fmt.Errorf("config error: statement-of-work file not found: %s", c.SOW)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.SOW == "" {
		result.SOW = defaults.SOW
	}
	if result.SOWURL == "" {
		result.SOWURL = defaults.SOWURL
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.GitHubToken == "" {
		result.GitHubToken = defaults.GitHubToken
	}

	// Int fields: use default if zero
	if result.MinStars == 0 {
		result.MinStars = defaults.MinStars
	}
	if result.PerQueryLimit == 0 {
		result.PerQueryLimit = defaults.PerQueryLimit
	}

	if result.CallTimeoutSeconds == 0 {
		if defaults.CallTimeoutSeconds > 0 {
			result.CallTimeoutSeconds = defaults.CallTimeoutSeconds
		} else {
			result.CallTimeoutSeconds = 30 // Default per-call timeout
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
