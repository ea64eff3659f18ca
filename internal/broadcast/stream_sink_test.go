package broadcast

import (
	"context"
	"encoding/json"
	"testing"

	"aquawatch-monitor/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStreamSink_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewStreamSink(client, "aquawatch:events", zap.NewNop())

	payload := models.NewAlertEvent{
		ID:       42,
		Type:     models.AlertTypeLowPressure,
		Severity: models.SeverityCritical,
		Title:    "CRITICAL: PRESSURE sensor 7 reading extremely low (15.00)",
	}
	sink.Publish(context.Background(), models.EventNewAlert, payload)

	entries, err := client.XRange(context.Background(), "aquawatch:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	assert.Equal(t, models.EventNewAlert, values["event"])

	// 结构体负载以 JSON 字符串形式入流
	var decoded models.NewAlertEvent
	require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &decoded))
	assert.Equal(t, 42, decoded.ID)
	assert.Equal(t, models.AlertTypeLowPressure, decoded.Type)
}

func TestStreamSink_PublishAppendsInOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewStreamSink(client, "aquawatch:events", zap.NewNop())
	ctx := context.Background()

	sink.Publish(ctx, models.EventSensorReading, models.SensorReadingEvent{SensorID: 1, Value: 43.5})
	sink.Publish(ctx, models.EventNewAlert, models.NewAlertEvent{ID: 42})

	entries, err := client.XRange(ctx, "aquawatch:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.EventSensorReading, entries[0].Values["event"])
	assert.Equal(t, models.EventNewAlert, entries[1].Values["event"])
}

func TestStreamSink_PublishFailureDoesNotPanic(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewStreamSink(client, "aquawatch:events", zap.NewNop())

	// Redis 不可达：发后即忘，只记日志
	mr.Close()
	sink.Publish(context.Background(), models.EventNewAlert, models.NewAlertEvent{ID: 42})
}
