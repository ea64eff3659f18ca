package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// captureSink 记录收到的事件名
type captureSink struct {
	mu     sync.Mutex
	events []string
}

func (c *captureSink) Publish(ctx context.Context, event string, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

func TestNewEnvelope(t *testing.T) {
	before := time.Now().Unix()
	envelope := NewEnvelope("new_alert", map[string]int{"id": 42})
	after := time.Now().Unix()

	assert.Equal(t, "new_alert", envelope.Event)
	assert.Equal(t, map[string]int{"id": 42}, envelope.Payload)
	assert.GreaterOrEqual(t, envelope.Timestamp, before)
	assert.LessOrEqual(t, envelope.Timestamp, after)
}
