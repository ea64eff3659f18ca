package broadcast

import (
	"context"
	"time"
)

// Sink 事件下游
// Publish 为"发后即忘"语义：不保证送达、不阻塞调用方主流程，失败只记日志
// 核心管线不感知事件最终走 WebSocket、消息队列还是进程内分发
type Sink interface {
	Publish(ctx context.Context, event string, payload interface{})
}

// Envelope 发往外部通道（Streams/MQTT/Webhook）的事件信封
type Envelope struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

// NewEnvelope 构建事件信封
func NewEnvelope(event string, payload interface{}) Envelope {
	return Envelope{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}
}

// Fanout 组合多个下游，逐一转发
type Fanout []Sink

// Publish 向所有下游转发事件；单个下游失败不影响其余下游
func (f Fanout) Publish(ctx context.Context, event string, payload interface{}) {
	for _, sink := range f {
		sink.Publish(ctx, event, payload)
	}
}
