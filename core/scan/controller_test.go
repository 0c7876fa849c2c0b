package scan

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-shield-api/core/bus"
	"content-shield-api/core/domain"
	"content-shield-api/core/extract"
)

var (
	paraOne = strings.TrimSpace(strings.Repeat("alpha beta gamma delta epsilon ", 20))
	paraTwo = strings.TrimSpace(strings.Repeat("zeta eta theta iota kappa ", 20))
)

func pageHTML(paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body><article>")
	for _, p := range paragraphs {
		sb.WriteString("<p>" + p + "</p>")
	}
	sb.WriteString("</article></body></html>")
	return sb.String()
}

type fakeSource struct {
	mu   sync.Mutex
	html string
	url  string
	err  error
}

func (s *fakeSource) Snapshot(ctx context.Context) (*goquery.Document, extract.Options, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, extract.Options{}, s.err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.html))
	if err != nil {
		return nil, extract.Options{}, err
	}
	return doc, extract.Options{URL: s.url}, nil
}

func (s *fakeSource) set(html string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.html = html
	s.err = err
}

type fakeDetector struct {
	mu    sync.Mutex
	score float64
	err   error
	calls int
}

func (d *fakeDetector) Detect(ctx context.Context, block domain.ContentBlock) (domain.DetectionResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return domain.DetectionResult{}, d.err
	}
	return domain.DetectionResult{Score: d.score, Provider: "stub"}, nil
}

func (d *fakeDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func (d *fakeDetector) setError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func newTestController(t *testing.T, source *fakeSource, detector *fakeDetector) (*Controller, *bus.Bus) {
	t.Helper()
	b := bus.New(nil)
	c := NewController(source, detector, extract.New(nil), b, nil, Config{
		MutationDebounce:   5 * time.Millisecond,
		NavigationDebounce: 5 * time.Millisecond,
		Settings:           Settings{PrivacyConsent: true, Threshold: 70},
	})
	c.Start()
	t.Cleanup(c.Stop)
	return c, b
}

func waitForAnalysis(t *testing.T, c *Controller) *domain.PageAnalysis {
	t.Helper()
	var analysis *domain.PageAnalysis
	require.Eventually(t, func() bool {
		analysis, _ = c.Result()
		return analysis != nil
	}, 2*time.Second, 5*time.Millisecond)
	return analysis
}

func TestController_MutationTriggersScan(t *testing.T) {
	source := &fakeSource{html: pageHTML(paraOne, paraTwo), url: "https://example.com/a"}
	detector := &fakeDetector{score: 0.8}
	c, _ := newTestController(t, source, detector)

	c.Dispatch(EventMutation)

	analysis := waitForAnalysis(t, c)
	assert.Len(t, analysis.Items, 2)
	assert.InDelta(t, 80.0, analysis.OverallScore, 0.001)
	assert.Equal(t, domain.TierHigh, analysis.Items[0].Tier)
	assert.Equal(t, "https://example.com/a", analysis.URL)
	assert.Equal(t, 2, detector.callCount())
}

func TestController_RapidMutationsCoalesceIntoOneScan(t *testing.T) {
	source := &fakeSource{html: pageHTML(paraOne, paraTwo), url: "https://example.com/a"}
	detector := &fakeDetector{score: 0.5}
	c, _ := newTestController(t, source, detector)

	for i := 0; i < 10; i++ {
		c.Dispatch(EventMutation)
	}

	waitForAnalysis(t, c)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, detector.callCount(), "one debounced scan, one call per block")
}

func TestController_NoNewContentSettlesNeutral(t *testing.T) {
	source := &fakeSource{html: pageHTML(paraOne), url: "https://example.com/a"}
	detector := &fakeDetector{score: 0.5}
	c, _ := newTestController(t, source, detector)

	c.Dispatch(EventMutation)
	waitForAnalysis(t, c)
	before := detector.callCount()

	c.Dispatch(EventMutation)
	require.Eventually(t, func() bool {
		_, status := c.Result()
		return status == StatusNeutral
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, before, detector.callCount(), "duplicate content must not go to the network")
}

func TestController_WithoutConsentNothingLeavesTheMachine(t *testing.T) {
	source := &fakeSource{html: pageHTML(paraOne), url: "https://example.com/a"}
	detector := &fakeDetector{score: 0.5}
	b := bus.New(nil)
	c := NewController(source, detector, extract.New(nil), b, nil, Config{
		MutationDebounce:   5 * time.Millisecond,
		NavigationDebounce: 5 * time.Millisecond,
		Settings:           Settings{PrivacyConsent: false},
	})
	c.Start()
	t.Cleanup(c.Stop)

	c.Dispatch(EventMutation)

	require.Eventually(t, func() bool {
		_, status := c.Result()
		return status == StatusNeutral
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, detector.callCount())
}

func TestController_FailedScanKeepsPriorAnalysis(t *testing.T) {
	source := &fakeSource{html: pageHTML(paraOne), url: "https://example.com/a"}
	detector := &fakeDetector{score: 0.3}
	c, _ := newTestController(t, source, detector)

	c.Dispatch(EventMutation)
	first := waitForAnalysis(t, c)

	detector.setError(errors.New("backend down"))
	source.set(pageHTML(paraOne, paraTwo), nil)
	c.Dispatch(EventMutation)

	require.Eventually(t, func() bool {
		_, status := c.Result()
		return status == StatusError
	}, 2*time.Second, 5*time.Millisecond)

	analysis, _ := c.Result()
	assert.Equal(t, first, analysis, "a failed round trip must not clobber the last good analysis")
}

func TestController_NavigationResetsSessionAndReusesCache(t *testing.T) {
	source := &fakeSource{html: pageHTML(paraOne, paraTwo), url: "https://example.com/a"}
	detector := &fakeDetector{score: 0.6}
	c, _ := newTestController(t, source, detector)

	c.Dispatch(EventMutation)
	waitForAnalysis(t, c)
	require.Equal(t, 2, detector.callCount())

	// Same page content after the reset: fingerprints were cleared so the
	// blocks extract again, but the scored batch comes from the cache.
	c.Dispatch(EventNavigation)
	var analysis *domain.PageAnalysis
	require.Eventually(t, func() bool {
		analysis, _ = c.Result()
		return analysis != nil && analysis.Cached
	}, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, analysis.Items, 2)
	assert.Equal(t, 2, detector.callCount(), "cached batch must not be rescored")
}

func TestController_BusServesResultAndSettings(t *testing.T) {
	source := &fakeSource{html: pageHTML(paraOne), url: "https://example.com/a"}
	detector := &fakeDetector{score: 0.9}
	c, b := newTestController(t, source, detector)

	c.Dispatch(EventMutation)
	waitForAnalysis(t, c)

	resp := b.Send(bus.Message{Kind: bus.GetResult})
	analysis, ok := resp.(*domain.PageAnalysis)
	require.True(t, ok)
	assert.Len(t, analysis.Items, 1)

	b.Send(bus.Message{Kind: bus.UpdateSettings, Payload: Settings{PrivacyConsent: false, Threshold: 50}})
	assert.False(t, c.currentSettings().PrivacyConsent)
	assert.Equal(t, 50.0, c.currentSettings().Threshold)
}

func TestController_HighlightMessagesForFlaggedItems(t *testing.T) {
	source := &fakeSource{html: pageHTML(paraOne), url: "https://example.com/a"}
	detector := &fakeDetector{score: 0.95}
	b := bus.New(nil)

	var mu sync.Mutex
	var highlighted []string
	b.Handle(bus.HighlightItem, func(msg bus.Message) interface{} {
		mu.Lock()
		defer mu.Unlock()
		if id, ok := msg.Payload.(string); ok {
			highlighted = append(highlighted, id)
		}
		return nil
	})

	c := NewController(source, detector, extract.New(nil), b, nil, Config{
		MutationDebounce:   5 * time.Millisecond,
		NavigationDebounce: 5 * time.Millisecond,
		Settings:           Settings{PrivacyConsent: true, AutoBlur: true, Threshold: 70},
	})
	c.Start()
	t.Cleanup(c.Stop)

	c.Dispatch(EventMutation)
	waitForAnalysis(t, c)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, highlighted, 1)
	assert.True(t, strings.HasPrefix(highlighted[0], "block-"))
}