// ABOUTME: Typed in-process message dispatch for the extension-internal protocol
// ABOUTME: Every send gets a response (possibly nil); handler panics never reach the caller

package bus

import (
	"sync"

	"content-shield-api/core/interfaces"
)

// Kind identifies a message type in the internal protocol
type Kind string

const (
	ExtractContent        Kind = "EXTRACT_CONTENT"
	AnalysisResult        Kind = "ANALYSIS_RESULT"
	AnalyzeRequest        Kind = "ANALYZE_REQUEST"
	GetResult             Kind = "GET_RESULT"
	UpdateSettings        Kind = "UPDATE_SETTINGS"
	OpenSidePanel         Kind = "OPEN_SIDE_PANEL"
	ExtractContentTrigger Kind = "EXTRACT_CONTENT_TRIGGER"
	HighlightItem         Kind = "HIGHLIGHT_ITEM"
)

// Message is one typed message with its payload
type Message struct {
	Kind    Kind
	Payload interface{}
}

// Handler processes one message kind and returns a response, which may be nil
type Handler func(msg Message) interface{}

// Bus routes messages to registered handlers. Each kind has at most one
// handler; sending to an unhandled kind returns nil.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
	logger   interfaces.Logger
}

// New creates an empty bus
func New(logger interfaces.Logger) *Bus {
	return &Bus{
		handlers: make(map[Kind]Handler),
		logger:   logger,
	}
}

// Handle registers the handler for a message kind, replacing any previous one
func (b *Bus) Handle(kind Kind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = h
}

// Send dispatches a message and returns the handler's response.
// A panicking handler degrades to a nil response.
func (b *Bus) Send(msg Message) (resp interface{}) {
	b.mu.RLock()
	h, ok := b.handlers[msg.Kind]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			if b.logger != nil {
				b.logger.Error("Message handler panicked", map[string]interface{}{
					"kind":  string(msg.Kind),
					"panic": r,
				})
			}
			resp = nil
		}
	}()

	return h(msg)
}
