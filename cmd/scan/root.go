package main

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	backendURL  string
	outputJSON  bool
	scanTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "shield-scan",
	Short: "Scan web pages for AI-generated content",
	Long: `shield-scan extracts content blocks from web pages, scores them
against a Content Shield API server and reports a page-level analysis.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "http://localhost:8000", "detection API base URL")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().DurationVar(&scanTimeout, "timeout", 30*time.Second, "per-page scan timeout")
}
