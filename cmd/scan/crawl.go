package main

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"github.com/spf13/cobra"

	"content-shield-api/client/shield"
	"content-shield-api/core/bus"
	"content-shield-api/core/domain"
	"content-shield-api/core/extract"
	"content-shield-api/core/scan"
)

var (
	crawlMaxPages int
	crawlDepth    int
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Crawl a site and scan every visited page",
	Long: `Walks a site starting from the given URL, staying on the same host.
Each fetched page is fed into the scan controller as a navigation event, so
every page gets a fresh scan session exactly like a browser page transition.`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 10, "maximum pages to scan")
	crawlCmd.Flags().IntVar(&crawlDepth, "depth", 2, "maximum link depth")
	rootCmd.AddCommand(crawlCmd)
}

// crawlSource holds the page most recently fetched by the crawler and hands
// it to the controller on the next extraction pass.
type crawlSource struct {
	mu  sync.Mutex
	doc *goquery.Document
	url string
}

func (s *crawlSource) set(doc *goquery.Document, pageURL string) {
	s.mu.Lock()
	s.doc = doc
	s.url = pageURL
	s.mu.Unlock()
}

func (s *crawlSource) Snapshot(ctx context.Context) (*goquery.Document, extract.Options, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, extract.Options{}, fmt.Errorf("no page loaded")
	}
	return s.doc, extract.Options{URL: s.url}, nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	start, err := url.Parse(args[0])
	if err != nil {
		return fmt.Errorf("parse start URL: %w", err)
	}

	source := &crawlSource{}
	detector := shield.New(shield.WithBaseURL(backendURL), shield.WithTimeout(scanTimeout))
	b := bus.New(nil)

	// Each published analysis (nil on session reset) lands on this channel.
	results := make(chan *domain.PageAnalysis, 16)
	b.Handle(bus.AnalysisResult, func(msg bus.Message) interface{} {
		analysis, _ := msg.Payload.(*domain.PageAnalysis)
		select {
		case results <- analysis:
		default:
		}
		return nil
	})

	controller := scan.NewController(source, detector, extract.New(nil), b, nil, scan.Config{
		// Debounces sized for a batch crawl, not interactive browsing.
		MutationDebounce:   10 * time.Millisecond,
		NavigationDebounce: 10 * time.Millisecond,
		Settings: scan.Settings{
			Threshold:      70,
			PrivacyConsent: true,
		},
	})
	controller.Start()
	defer controller.Stop()

	collector := colly.NewCollector(
		colly.AllowedDomains(start.Hostname()),
		colly.MaxDepth(crawlDepth),
	)

	visited := 0
	var crawlErr error

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if visited < crawlMaxPages {
			e.Request.Visit(e.Attr("href"))
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		if visited >= crawlMaxPages || crawlErr != nil {
			return
		}
		visited++
		pageURL := r.Request.URL.String()

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skip %s: %v\n", pageURL, err)
			return
		}

		source.set(doc, pageURL)
		controller.Dispatch(scan.EventNavigation)

		ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
		analysis, status, err := awaitScan(ctx, controller, results)
		cancel()
		if err != nil {
			crawlErr = fmt.Errorf("scan %s: %w", pageURL, err)
			return
		}

		if analysis == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n\n", pageURL, status)
			return
		}
		if err := printAnalysis(cmd, *analysis); err != nil {
			crawlErr = err
			return
		}
		fmt.Fprintln(cmd.OutOrStdout())
	})

	if err := collector.Visit(start.String()); err != nil {
		return fmt.Errorf("start crawl: %w", err)
	}
	collector.Wait()

	if crawlErr != nil {
		return crawlErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Crawled %d pages\n", visited)
	return nil
}

// awaitScan waits for the session reset triggered by the navigation event and
// then for its scan to settle: a published analysis, or a neutral/error status
// for pages with nothing scorable.
func awaitScan(ctx context.Context, controller *scan.Controller, results <-chan *domain.PageAnalysis) (*domain.PageAnalysis, scan.Status, error) {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	resetSeen := false
	for {
		select {
		case analysis := <-results:
			if analysis == nil {
				resetSeen = true
				continue
			}
			if resetSeen {
				return analysis, scan.StatusIdle, nil
			}
			// Late publish from the previous page; drop it.

		case <-ticker.C:
			if !resetSeen {
				continue
			}
			if _, status := controller.Result(); status == scan.StatusNeutral || status == scan.StatusError {
				return nil, status, nil
			}

		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}
}
