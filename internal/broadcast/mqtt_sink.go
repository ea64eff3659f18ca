package broadcast

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// MQTTPublisher MQTT 发布端抽象（pkg/mqtt.Client 实现；测试中用 fake 替换）
type MQTTPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTSink 将事件发布到 MQTT 主题 <prefix><event>
// SCADA 集成侧通过订阅 aquawatch/events/# 接入
type MQTTSink struct {
	publisher   MQTTPublisher
	topicPrefix string
	qos         byte
	logger      *zap.Logger
}

// NewMQTTSink 创建 MQTT 下游
func NewMQTTSink(publisher MQTTPublisher, topicPrefix string, qos byte, logger *zap.Logger) *MQTTSink {
	return &MQTTSink{
		publisher:   publisher,
		topicPrefix: topicPrefix,
		qos:         qos,
		logger:      logger,
	}
}

// Publish 实现 Sink 接口
// MQTT 发布会等待 broker 确认，放到 goroutine 里避免拖慢采样循环
func (s *MQTTSink) Publish(ctx context.Context, event string, payload interface{}) {
	body, err := json.Marshal(NewEnvelope(event, payload))
	if err != nil {
		s.logger.Error("Failed to marshal event for MQTT",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	topic := s.topicPrefix + event
	go func() {
		if err := s.publisher.Publish(topic, s.qos, false, body); err != nil {
			s.logger.Error("Failed to publish event to MQTT",
				zap.String("topic", topic),
				zap.String("event", event),
				zap.Error(err),
			)
		}
	}()
}
