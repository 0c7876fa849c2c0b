// ABOUTME: CLI entry point for the page scanner
// ABOUTME: Runs one-shot scans and colly-driven crawls against a detection API

package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
