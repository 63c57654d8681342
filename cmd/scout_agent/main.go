// Package main provides the entry point for the Repo Scout CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scout_agent",
	Short: "Repo Scout statement-of-work analyzer",
	Long:  "Repo Scout turns a statement-of-work document into a ranked list of open-source repositories that could serve as the project's starting point, via CLI steps or REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
