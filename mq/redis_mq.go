// Package mq 通过 Redis 频道在多个实例之间转发投票事件
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/service"
)

// DefaultChannel 投票事件频道名
const DefaultChannel = "poll_events"

const (
	eventUpdated = "poll_updated"
	eventDeleted = "poll_deleted"

	publishTimeout = time.Second
)

type envelope struct {
	Origin string           `json:"origin"`
	Type   string           `json:"type"`
	PollID string           `json:"poll_id"`
	Poll   *models.PollView `json:"poll,omitempty"`
}

// RedisBus 实现 service.Publisher。事件先交给本地订阅者，再广播到频道；
// 其他实例收到后转发给各自的本地订阅者，自己发出的事件会被忽略
type RedisBus struct {
	log     *slog.Logger
	client  *redis.Client
	channel string
	origin  string
	local   service.Publisher
}

func NewRedisBus(log *slog.Logger, client *redis.Client, channel string, local service.Publisher) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	origin := uuid.NewString()
	return &RedisBus{
		log:     log.With(slog.String("component", "redis-bus"), slog.String("origin", origin)),
		client:  client,
		channel: channel,
		origin:  origin,
		local:   local,
	}
}

func (b *RedisBus) PublishPoll(view models.PollView) {
	b.local.PublishPoll(view)
	b.send(envelope{Type: eventUpdated, PollID: view.ID, Poll: &view})
}

func (b *RedisBus) PublishPollDeleted(pollID string) {
	b.local.PublishPollDeleted(pollID)
	b.send(envelope{Type: eventDeleted, PollID: pollID})
}

// send 广播失败只影响其他实例的推送，记录后忽略
func (b *RedisBus) send(env envelope) {
	env.Origin = b.origin

	payload, err := json.Marshal(env)
	if err != nil {
		b.log.Error("failed to encode event", slog.String("poll_id", env.PollID), logger.Err(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.log.Warn("failed to publish event", slog.String("poll_id", env.PollID), logger.Err(err))
	}
}

// Run 订阅频道并转发其他实例的事件，ctx 取消后返回 nil
func (b *RedisBus) Run(ctx context.Context) error {
	const op = "mq.RedisBus.Run"

	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	b.log.Info("subscribed", slog.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(m.Payload)
		}
	}
}

func (b *RedisBus) handle(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.log.Warn("dropping malformed event", logger.Err(err))
		return
	}
	if env.Origin == b.origin {
		return
	}

	switch env.Type {
	case eventUpdated:
		if env.Poll == nil {
			b.log.Warn("update event without poll", slog.String("poll_id", env.PollID))
			return
		}
		b.local.PublishPoll(*env.Poll)
	case eventDeleted:
		b.local.PublishPollDeleted(env.PollID)
	default:
		b.log.Warn("unknown event type", slog.String("type", env.Type))
	}
}
