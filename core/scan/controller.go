// ABOUTME: Navigation-aware scan controller owning all per-session analysis state
// ABOUTME: One event-loop goroutine serializes debounce, reset and scan scheduling

package scan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"

	"content-shield-api/core/aggregate"
	"content-shield-api/core/bus"
	"content-shield-api/core/domain"
	"content-shield-api/core/extract"
	"content-shield-api/core/fingerprint"
	"content-shield-api/core/interfaces"
)

// Status is the controller's user-visible scan state
type Status string

const (
	StatusIdle              Status = "idle"
	StatusScanning          Status = "scanning"
	StatusNeutral           Status = "neutral"
	StatusError             Status = "error"
	StatusNavigationPending Status = "navigation_pending"
)

// EventKind is one page event fed into the controller
type EventKind int

const (
	// EventMutation signals DOM content changed
	EventMutation EventKind = iota

	// EventScroll signals the viewport moved
	EventScroll

	// EventNavigation signals a page transition; the session resets after
	// the navigation debounce settles.
	EventNavigation
)

// DocumentSource supplies the current page snapshot for an extraction pass
type DocumentSource interface {
	Snapshot(ctx context.Context) (*goquery.Document, extract.Options, error)
}

// Detector scores one extracted block; implemented by the shield API client
type Detector interface {
	Detect(ctx context.Context, block domain.ContentBlock) (domain.DetectionResult, error)
}

// Settings are the user-tunable scan preferences
type Settings struct {
	// Threshold is the 0-100 score at or above which items get flagged
	Threshold float64

	// AutoBlur emits highlight messages for flagged items
	AutoBlur bool

	// ElderMode lowers the flag threshold for vulnerable-user deployments
	ElderMode bool

	// PrivacyConsent gates all network activity; without it every scan
	// settles as neutral.
	PrivacyConsent bool
}

// Config tunes the controller's timing and caching
type Config struct {
	// MutationDebounce delays a scan after mutation or scroll events
	MutationDebounce time.Duration

	// NavigationDebounce delays the session reset after navigation
	NavigationDebounce time.Duration

	// CacheTTL bounds how long scored batches are reusable
	CacheTTL time.Duration

	// Settings are the initial scan preferences
	Settings Settings
}

func (c *Config) applyDefaults() {
	if c.MutationDebounce <= 0 {
		c.MutationDebounce = 1200 * time.Millisecond
	}
	if c.NavigationDebounce <= 0 {
		c.NavigationDebounce = 800 * time.Millisecond
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 10 * time.Minute
	}
	if c.Settings.Threshold <= 0 {
		c.Settings.Threshold = 70
	}
}

// Controller schedules extraction and scoring in response to page events.
// All session state lives on the event-loop goroutine; readers only touch
// the published analysis under the mutex.
type Controller struct {
	source    DocumentSource
	detector  Detector
	extractor *extract.Extractor
	bus       *bus.Bus
	logger    interfaces.Logger
	cfg       Config

	events chan EventKind
	done   chan struct{}
	wg     sync.WaitGroup

	// session state, owned by the event loop and the single in-flight scan
	seen  *fingerprint.Set
	refs  *fingerprint.RefTable
	cache *gocache.Cache
	epoch atomic.Int64

	isAnalyzing atomic.Bool
	rescan      atomic.Bool

	mu       sync.Mutex
	settings Settings
	items    []domain.ScoredItem
	analysis *domain.PageAnalysis
	status   Status
}

// NewController wires a controller; call Start to begin processing events
func NewController(source DocumentSource, detector Detector, extractor *extract.Extractor, b *bus.Bus, logger interfaces.Logger, cfg Config) *Controller {
	cfg.applyDefaults()

	c := &Controller{
		source:    source,
		detector:  detector,
		extractor: extractor,
		bus:       b,
		logger:    logger,
		cfg:       cfg,
		events:    make(chan EventKind, 64),
		done:      make(chan struct{}),
		seen:      fingerprint.NewSet(),
		refs:      fingerprint.NewRefTable(),
		cache:     gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		settings:  cfg.Settings,
		status:    StatusIdle,
	}

	if b != nil {
		b.Handle(bus.GetResult, func(msg bus.Message) interface{} {
			analysis, _ := c.Result()
			return analysis
		})
		b.Handle(bus.UpdateSettings, func(msg bus.Message) interface{} {
			if s, ok := msg.Payload.(Settings); ok {
				c.UpdateSettings(s)
			}
			return nil
		})
		b.Handle(bus.AnalyzeRequest, func(msg bus.Message) interface{} {
			c.Dispatch(EventMutation)
			return nil
		})
	}

	return c
}

// Start launches the event loop
func (c *Controller) Start() {
	c.wg.Add(1)
	go c.run()
}

// Stop shuts the event loop down and waits for it to drain
func (c *Controller) Stop() {
	close(c.done)
	c.wg.Wait()
}

// Dispatch feeds one page event into the controller. Never blocks; when the
// queue is full the event is dropped, which is safe because a later event
// always reschedules the same work.
func (c *Controller) Dispatch(kind EventKind) {
	select {
	case c.events <- kind:
	default:
	}
}

// Result returns the last published analysis (nil before the first scan)
// and the current status.
func (c *Controller) Result() (*domain.PageAnalysis, Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analysis, c.status
}

// UpdateSettings swaps the scan preferences
func (c *Controller) UpdateSettings(s Settings) {
	if s.Threshold <= 0 {
		s.Threshold = 70
	}
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
}

func (c *Controller) currentSettings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

func (c *Controller) run() {
	defer c.wg.Done()

	scanTimer := newStoppedTimer()
	navTimer := newStoppedTimer()

	for {
		select {
		case kind := <-c.events:
			switch kind {
			case EventMutation, EventScroll:
				resetTimer(scanTimer, c.cfg.MutationDebounce)
			case EventNavigation:
				c.setStatus(StatusNavigationPending)
				// A pending scan targets the page being left behind.
				stopTimer(scanTimer)
				resetTimer(navTimer, c.cfg.NavigationDebounce)
			}

		case <-scanTimer.C:
			c.triggerScan()

		case <-navTimer.C:
			c.resetSession()
			c.triggerScan()

		case <-c.done:
			return
		}
	}
}

// triggerScan launches one analysis unless one is already in flight, in
// which case a single trailing rescan is remembered instead of queueing.
func (c *Controller) triggerScan() {
	if !c.currentSettings().PrivacyConsent {
		c.setStatus(StatusNeutral)
		return
	}

	if !c.isAnalyzing.CompareAndSwap(false, true) {
		c.rescan.Store(true)
		return
	}

	c.setStatus(StatusScanning)
	epoch := c.epoch.Load()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.analyze(epoch)
		c.isAnalyzing.Store(false)
		if c.rescan.Swap(false) {
			c.Dispatch(EventMutation)
		}
	}()
}

// resetSession discards everything tied to the departing page view
func (c *Controller) resetSession() {
	c.epoch.Add(1)
	c.seen.Reset()
	c.refs.Reset()

	c.mu.Lock()
	c.items = nil
	c.analysis = nil
	c.status = StatusIdle
	c.mu.Unlock()

	if c.bus != nil {
		// Consumers drop highlights and overlays for the torn-down page.
		c.bus.Send(bus.Message{Kind: bus.AnalysisResult, Payload: nil})
	}

	if c.logger != nil {
		c.logger.Debug("Scan session reset", map[string]interface{}{
			"epoch": c.epoch.Load(),
		})
	}
}

// analyze runs one extraction and scoring pass for the given epoch
func (c *Controller) analyze(epoch int64) {
	ctx := context.Background()

	doc, opts, err := c.source.Snapshot(ctx)
	if err != nil {
		c.fail(epoch, "snapshot failed", err)
		return
	}

	blocks := c.extractor.Extract(doc, opts, c.seen, c.refs)
	if len(blocks) == 0 {
		if c.epoch.Load() == epoch {
			c.setStatus(StatusNeutral)
		}
		return
	}

	key := batchKey(opts.URL, blocks)
	items, cached := c.cachedItems(key)
	if !cached {
		items, err = c.scoreBlocks(ctx, blocks)
		if err != nil {
			c.fail(epoch, "scoring failed", err)
			return
		}
		c.cache.Set(key, items, gocache.DefaultExpiration)
	}

	// A navigation reset between extraction and now makes these items
	// belong to a dead session; drop them.
	if c.epoch.Load() != epoch {
		return
	}

	c.publish(items, opts.URL, cached)
}

func (c *Controller) scoreBlocks(ctx context.Context, blocks []domain.ContentBlock) ([]domain.ScoredItem, error) {
	items := make([]domain.ScoredItem, 0, len(blocks))
	for _, block := range blocks {
		result, err := c.detector.Detect(ctx, block)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.NewScoredItem(block.ID, domain.ContentText, result, block.Preview()))
	}
	return items, nil
}

// publish merges new items into the session analysis and notifies consumers
func (c *Controller) publish(newItems []domain.ScoredItem, url string, cached bool) {
	settings := c.currentSettings()
	threshold := settings.Threshold
	if settings.ElderMode {
		threshold = domain.TierLowMax
	}

	c.mu.Lock()
	c.items = append(c.items, newItems...)
	analysis := aggregate.BuildPageAnalysis(c.items, url, cached)
	c.analysis = &analysis
	c.status = StatusIdle
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.Send(bus.Message{Kind: bus.AnalysisResult, Payload: &analysis})
		if settings.AutoBlur {
			for _, item := range newItems {
				if item.Score >= threshold {
					c.bus.Send(bus.Message{Kind: bus.HighlightItem, Payload: item.ID})
				}
			}
		}
	}
}

// fail records a failed round trip; the previously published analysis
// stays untouched so the page keeps its last good state.
func (c *Controller) fail(epoch int64, msg string, err error) {
	if c.logger != nil {
		c.logger.Warn("Scan failed", map[string]interface{}{
			"reason": msg,
			"error":  err.Error(),
		})
	}
	if c.epoch.Load() == epoch {
		c.setStatus(StatusError)
	}
}

func (c *Controller) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Controller) cachedItems(key string) ([]domain.ScoredItem, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	items, ok := v.([]domain.ScoredItem)
	return items, ok
}

// batchKey derives a reuse key from the page URL and the first blocks of
// the batch; identical leading content maps repeat scans onto one entry.
func batchKey(url string, blocks []domain.ContentBlock) string {
	var sb strings.Builder
	for i, block := range blocks {
		if i >= 3 {
			break
		}
		sb.WriteString(block.Text)
	}
	return fmt.Sprintf("%s:%016x", url, xxhash.Sum64String(sb.String()))
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	stopTimer(t)
	return t
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	stopTimer(t)
	t.Reset(d)
}
