package broadcast

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookSink 将事件以 JSON POST 到配置的回调地址
// 用于对接外部告警通知系统（值班系统、短信网关等）
type WebhookSink struct {
	client *resty.Client
	urls   []string
	// 事件过滤集合；为 nil 时转发全部事件
	events map[string]struct{}
	logger *zap.Logger
}

// NewWebhookSink 创建 Webhook 下游
// events 非空时只转发集合内的事件（通常只转发告警类事件，不转发读数）
func NewWebhookSink(urls []string, events []string, timeout time.Duration, logger *zap.Logger) *WebhookSink {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json")

	var filter map[string]struct{}
	if len(events) > 0 {
		filter = make(map[string]struct{}, len(events))
		for _, e := range events {
			filter[e] = struct{}{}
		}
	}

	return &WebhookSink{
		client: client,
		urls:   urls,
		events: filter,
		logger: logger,
	}
}

// Publish 实现 Sink 接口
// HTTP 调用有重试且可能耗时，放到 goroutine 里执行
func (s *WebhookSink) Publish(ctx context.Context, event string, payload interface{}) {
	if s.events != nil {
		if _, ok := s.events[event]; !ok {
			return
		}
	}

	envelope := NewEnvelope(event, payload)
	for _, url := range s.urls {
		url := url
		go func() {
			resp, err := s.client.R().
				SetBody(envelope).
				Post(url)
			if err != nil {
				s.logger.Error("Failed to deliver webhook",
					zap.String("url", url),
					zap.String("event", event),
					zap.Error(err),
				)
				return
			}
			if resp.IsError() {
				s.logger.Warn("Webhook endpoint returned error status",
					zap.String("url", url),
					zap.String("event", event),
					zap.Int("status", resp.StatusCode()),
				)
			}
		}()
	}
}
