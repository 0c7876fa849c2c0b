package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"content-shield-api/client/shield"
	"content-shield-api/core/aggregate"
	"content-shield-api/core/domain"
	"content-shield-api/core/extract"
	"content-shield-api/core/fingerprint"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url|file>",
	Short: "Scan a single page",
	Long: `Fetches a URL (or reads a local HTML file), extracts content blocks,
scores each against the detection API and prints the page analysis.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
		defer cancel()

		doc, pageURL, err := loadDocument(ctx, args[0])
		if err != nil {
			return err
		}

		analysis, err := scanPage(ctx, doc, pageURL)
		if err != nil {
			return err
		}

		return printAnalysis(cmd, analysis)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// loadDocument fetches a URL or reads a local file into a parsed document
func loadDocument(ctx context.Context, target string) (*goquery.Document, string, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("fetch %s: %w", target, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, "", fmt.Errorf("parse %s: %w", target, err)
		}
		return doc, target, nil
	}

	f, err := os.Open(target)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", target, err)
	}
	return doc, "", nil
}

// scanPage extracts, scores and aggregates one document
func scanPage(ctx context.Context, doc *goquery.Document, pageURL string) (domain.PageAnalysis, error) {
	extractor := extract.New(nil)
	blocks := extractor.Extract(doc, extract.Options{URL: pageURL}, fingerprint.NewSet(), fingerprint.NewRefTable())

	if len(blocks) == 0 {
		return domain.PageAnalysis{URL: pageURL}, nil
	}

	client := shield.New(shield.WithBaseURL(backendURL), shield.WithTimeout(scanTimeout))

	items := make([]domain.ScoredItem, 0, len(blocks))
	for _, block := range blocks {
		result, err := client.Detect(ctx, block)
		if err != nil {
			return domain.PageAnalysis{}, fmt.Errorf("score block %s: %w", block.ID, err)
		}
		items = append(items, domain.NewScoredItem(block.ID, domain.ContentText, result, block.Preview()))
	}

	return aggregate.BuildPageAnalysis(items, pageURL, false), nil
}

func printAnalysis(cmd *cobra.Command, analysis domain.PageAnalysis) error {
	if outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "URL:\t%s\n", analysis.URL)
	fmt.Fprintf(w, "Overall score:\t%.1f\n", analysis.OverallScore)
	fmt.Fprintf(w, "AI density:\t%.1f%%\n", analysis.AIDensity)
	fmt.Fprintf(w, "Items:\t%d\n", len(analysis.Items))
	fmt.Fprintln(w)
	if len(analysis.Items) > 0 {
		fmt.Fprintln(w, "SCORE\tTIER\tPREVIEW")
		for _, item := range analysis.Items {
			preview := item.Preview
			if runes := []rune(preview); len(runes) > 60 {
				preview = string(runes[:60]) + "..."
			}
			fmt.Fprintf(w, "%.1f\t%s\t%s\n", item.Score, item.Tier, preview)
		}
	}
	return w.Flush()
}
