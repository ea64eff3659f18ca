package broadcast

import (
	"context"

	pkgredis "aquawatch-monitor/pkg/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StreamSink 将事件写入 Redis Streams
// 供外部 WebSocket 网关或其它服务通过消费者组订阅
type StreamSink struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewStreamSink 创建 Redis Streams 下游
func NewStreamSink(client *redis.Client, stream string, logger *zap.Logger) *StreamSink {
	return &StreamSink{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Publish 实现 Sink 接口；写入失败只记日志，不向上传播
func (s *StreamSink) Publish(ctx context.Context, event string, payload interface{}) {
	_, err := pkgredis.PublishToStream(ctx, s.client, s.stream, map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		s.logger.Error("Failed to publish event to stream",
			zap.String("stream", s.stream),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}
