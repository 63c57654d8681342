package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jonathan/repo-scout/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort        int
	serveMinStars    int
	serveLimit       int
	serveCallTimeout int
	serveUseBrowser  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running the scouting pipeline, with progress streamed over SSE.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().IntVar(&serveMinStars, "min-stars", 50, "Minimum star qualifier for repository search")
	serveCmd.Flags().IntVar(&serveLimit, "limit", 5, "Maximum results requested per search query")
	serveCmd.Flags().IntVar(&serveCallTimeout, "call-timeout", 30, "Per-model-call timeout in seconds")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	// Get API key from environment
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	// GitHub token is optional; unauthenticated search has tighter rate limits
	githubToken := os.Getenv("GITHUB_TOKEN")

	cfg := server.Config{
		Port:          servePort,
		APIKey:        apiKey,
		GitHubToken:   githubToken,
		MinStars:      serveMinStars,
		PerQueryLimit: serveLimit,
		CallTimeout:   time.Duration(serveCallTimeout) * time.Second,
		UseBrowser:    serveUseBrowser,
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
