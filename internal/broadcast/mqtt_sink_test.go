package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"aquawatch-monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishedMessage struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeMQTTPublisher 把发布的消息写入通道（发布在 goroutine 里执行，需要同步点）
type fakeMQTTPublisher struct {
	messages chan publishedMessage
	err      error
}

func newFakeMQTTPublisher() *fakeMQTTPublisher {
	return &fakeMQTTPublisher{messages: make(chan publishedMessage, 8)}
}

func (f *fakeMQTTPublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.messages <- publishedMessage{topic: topic, qos: qos, payload: payload}
	return f.err
}

func (f *fakeMQTTPublisher) receive(t *testing.T) publishedMessage {
	t.Helper()
	select {
	case msg := <-f.messages:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for MQTT publish")
		return publishedMessage{}
	}
}

func TestMQTTSink_Publish(t *testing.T) {
	publisher := newFakeMQTTPublisher()
	sink := NewMQTTSink(publisher, "aquawatch/events/", 1, zap.NewNop())

	sink.Publish(context.Background(), models.EventNewAlert, models.NewAlertEvent{
		ID:       42,
		Type:     models.AlertTypeLowPressure,
		Severity: models.SeverityCritical,
	})

	msg := publisher.receive(t)
	assert.Equal(t, "aquawatch/events/new_alert", msg.topic)
	assert.Equal(t, byte(1), msg.qos)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	assert.Equal(t, models.EventNewAlert, envelope.Event)
	assert.NotZero(t, envelope.Timestamp)

	payload := envelope.Payload.(map[string]interface{})
	assert.Equal(t, float64(42), payload["id"])
	assert.Equal(t, "low_pressure", payload["type"])
}

func TestMQTTSink_PublishErrorIsSwallowed(t *testing.T) {
	publisher := newFakeMQTTPublisher()
	publisher.err = errors.New("broker unavailable")
	sink := NewMQTTSink(publisher, "aquawatch/events/", 0, zap.NewNop())

	// 发后即忘：broker 失败不影响调用方
	sink.Publish(context.Background(), models.EventSensorReading, models.SensorReadingEvent{SensorID: 7})
	publisher.receive(t)
}

func TestMQTTSink_UnmarshalableAlertSkipsPublish(t *testing.T) {
	publisher := newFakeMQTTPublisher()
	sink := NewMQTTSink(publisher, "aquawatch/events/", 0, zap.NewNop())

	// 无法 JSON 序列化的负载：不发布
	sink.Publish(context.Background(), models.EventNewAlert, make(chan int))

	select {
	case msg := <-publisher.messages:
		t.Fatalf("unexpected publish to %s", msg.topic)
	case <-time.After(20 * time.Millisecond):
	}
}
