// ABOUTME: Per-site extraction strategies for known document editors and social feeds
// ABOUTME: Strategies swap selectors and relax the viewport filter or word-count floor

package extract

import (
	"net/url"
	"strings"
)

// siteStrategy overrides the default extraction rules for one domain.
// Zero-valued fields keep the defaults.
type siteStrategy struct {
	selectors    []string
	skipViewport bool
	minChars     int
	minWords     int
}

// Document editors render text in virtualized containers the generic
// selectors never match; social feeds carry meaningful posts well below the
// default word floor.
var siteStrategies = map[string]*siteStrategy{
	"docs.google.com": {
		selectors:    []string{".kix-paragraphrenderer", ".kix-lineview"},
		skipViewport: true,
		minChars:     40,
		minWords:     8,
	},
	"notion.so": {
		selectors:    []string{"[data-block-id] .notranslate"},
		skipViewport: true,
		minChars:     40,
		minWords:     8,
	},
	"twitter.com": {
		selectors: []string{"[data-testid='tweetText']"},
		minChars:  40,
		minWords:  8,
	},
	"x.com": {
		selectors: []string{"[data-testid='tweetText']"},
		minChars:  40,
		minWords:  8,
	},
	"reddit.com": {
		selectors: []string{"[data-testid='comment'] p", ".usertext-body p", "[slot='text-body'] p"},
		minChars:  60,
		minWords:  15,
	},
	"linkedin.com": {
		selectors: []string{".feed-shared-update-v2__description", ".update-components-text"},
		minChars:  60,
		minWords:  15,
	},
	"facebook.com": {
		selectors: []string{"[data-ad-preview='message']", "[data-ad-comet-preview='message']"},
		minChars:  60,
		minWords:  15,
	},
}

// strategyFor resolves the strategy for a page URL, matching the host with
// and without its www prefix. Returns nil for unknown sites.
func strategyFor(pageURL string) *siteStrategy {
	if pageURL == "" {
		return nil
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	host := strings.ToLower(u.Hostname())
	if s, ok := siteStrategies[host]; ok {
		return s
	}
	if s, ok := siteStrategies[strings.TrimPrefix(host, "www.")]; ok {
		return s
	}
	return nil
}
