package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_SendReturnsHandlerResponse(t *testing.T) {
	b := New(nil)
	b.Handle(GetResult, func(msg Message) interface{} {
		return "analysis-42"
	})

	resp := b.Send(Message{Kind: GetResult})

	assert.Equal(t, "analysis-42", resp)
}

func TestBus_SendPassesPayload(t *testing.T) {
	b := New(nil)
	b.Handle(HighlightItem, func(msg Message) interface{} {
		return msg.Payload
	})

	resp := b.Send(Message{Kind: HighlightItem, Payload: "block-ab12"})

	assert.Equal(t, "block-ab12", resp)
}

func TestBus_UnhandledKindReturnsNil(t *testing.T) {
	b := New(nil)

	assert.Nil(t, b.Send(Message{Kind: OpenSidePanel}))
}

func TestBus_PanickingHandlerDegradesToNil(t *testing.T) {
	b := New(nil)
	b.Handle(AnalyzeRequest, func(msg Message) interface{} {
		panic("handler blew up")
	})

	assert.NotPanics(t, func() {
		resp := b.Send(Message{Kind: AnalyzeRequest})
		assert.Nil(t, resp)
	})
}

func TestBus_HandlerReplacement(t *testing.T) {
	b := New(nil)
	b.Handle(UpdateSettings, func(msg Message) interface{} { return 1 })
	b.Handle(UpdateSettings, func(msg Message) interface{} { return 2 })

	assert.Equal(t, 2, b.Send(Message{Kind: UpdateSettings}))
}
