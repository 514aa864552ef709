package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestBotEvent_JSON(t *testing.T) {
	event := &BotEvent{
		Type:       EventSubscribed,
		TelegramID: 123456,
		PlanID:     "pro",
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "subscribed", decoded["type"])
	assert.Equal(t, float64(123456), decoded["telegram_id"])
	assert.Equal(t, "pro", decoded["plan_id"])

	// 空字段省略
	_, hasJobID := decoded["job_id"]
	assert.False(t, hasJobID)
}

func TestPublisher_PublishEvent(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	publisher := NewPublisher(client)

	// 先订阅再发布
	sub := client.Subscribe(ctx, ChannelBotEvents)
	defer sub.Close()

	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = publisher.PublishEvent(ctx, &BotEvent{
		Type:       EventQuotaDenied,
		TelegramID: 42,
		Action:     "image_generations",
	})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		var event BotEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, EventQuotaDenied, event.Type)
		assert.Equal(t, int64(42), event.TelegramID)
		assert.Equal(t, "image_generations", event.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestSubscriber_Subscribe(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	publisher := NewPublisher(client)
	subscriber := NewSubscriber(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *BotEvent, 1)
	go func() {
		subscriber.Subscribe(ctx, func(event *BotEvent) {
			received <- event
		})
	}()

	// 等待订阅建立
	time.Sleep(100 * time.Millisecond)

	err := publisher.PublishEvent(ctx, &BotEvent{
		Type:  EventJobCompleted,
		JobID: 7,
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, EventJobCompleted, event.Type)
		assert.Equal(t, int64(7), event.JobID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscribed event")
	}

	// 取消后订阅退出
	cancel()
}
