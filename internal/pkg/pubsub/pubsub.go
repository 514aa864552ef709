package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelBotEvents = "bot_events"
)

// 事件类型常量
const (
	EventUpdateReceived  = "update_received"
	EventMessageSaved    = "message_saved"
	EventPaymentReceived = "payment_received"
	EventSubscribed      = "subscribed"
	EventQuotaDenied     = "quota_denied"
	EventJobQueued       = "job_queued"
	EventJobCompleted    = "job_completed"
	EventJobFailed       = "job_failed"
)

// BotEvent 机器人运行事件，供管理后台实时查看
type BotEvent struct {
	Type       string `json:"type"`
	TelegramID int64  `json:"telegram_id,omitempty"`
	JobID      int64  `json:"job_id,omitempty"`
	PlanID     string `json:"plan_id,omitempty"`
	Action     string `json:"action,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishEvent 发布事件，失败不影响主流程，由调用方决定是否忽略
func (p *Publisher) PublishEvent(ctx context.Context, event *BotEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal bot event: %w", err)
	}

	return p.client.Publish(ctx, ChannelBotEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅事件流
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*BotEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelBotEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event BotEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
