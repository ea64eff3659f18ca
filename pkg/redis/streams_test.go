package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPublishToStream_ValueStringification(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id, err := PublishToStream(ctx, client, "test:stream", map[string]interface{}{
		"str":    "hello",
		"int":    42,
		"float":  3.5,
		"bool":   true,
		"struct": map[string]int{"a": 1},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := client.XRange(ctx, "test:stream", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	assert.Equal(t, "hello", values["str"])
	assert.Equal(t, "42", values["int"])
	assert.Equal(t, "3.500000", values["float"])
	assert.Equal(t, "true", values["bool"])
	assert.JSONEq(t, `{"a":1}`, values["struct"].(string))
}

func TestPublishJSONToStream(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	type sample struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	_, err := PublishJSONToStream(ctx, client, "test:stream", sample{Name: "pump-a", Count: 3})
	require.NoError(t, err)

	entries, err := client.XRange(ctx, "test:stream", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var decoded sample
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["data"].(string)), &decoded))
	assert.Equal(t, "pump-a", decoded.Name)
	assert.Equal(t, 3, decoded.Count)
	assert.NotEmpty(t, entries[0].Values["timestamp"])
}
