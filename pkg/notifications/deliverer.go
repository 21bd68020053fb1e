package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/transitionkit/pkg/logger"
)

// Deliverer pushes a stored notification to the recipient in real time.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

// NoOpDeliverer drops every notification.
type NoOpDeliverer struct{}

func (NoOpDeliverer) Deliver(context.Context, Notification) error { return nil }

// MultiDeliverer fans a notification out to several channels. A failing
// channel is logged and skipped.
type MultiDeliverer struct {
	deliverers []Deliverer
	logger     *slog.Logger
}

func NewMultiDeliverer(log *slog.Logger, deliverers ...Deliverer) *MultiDeliverer {
	if log == nil {
		log = logger.Discard()
	}
	return &MultiDeliverer{deliverers: deliverers, logger: log}
}

func (m *MultiDeliverer) Deliver(ctx context.Context, n Notification) error {
	for i, d := range m.deliverers {
		if err := d.Deliver(ctx, n); err != nil {
			m.logger.ErrorContext(ctx, "failed to deliver notification",
				slog.String("notification_id", n.ID),
				logger.RecipientID(n.UserID),
				slog.Int("deliverer_index", i),
				logger.Error(err),
			)
		}
	}
	return nil
}

// RedisDeliverer publishes notifications on a per-recipient pub/sub
// channel, "<prefix>:<user id>".
type RedisDeliverer struct {
	client redis.Cmdable
	prefix string
}

func NewRedisDeliverer(client redis.Cmdable, channelPrefix string) *RedisDeliverer {
	if channelPrefix == "" {
		channelPrefix = "notifications:live"
	}
	return &RedisDeliverer{client: client, prefix: channelPrefix}
}

// Channel returns the pub/sub channel for userID.
func (d *RedisDeliverer) Channel(userID string) string {
	return d.prefix + ":" + userID
}

func (d *RedisDeliverer) Deliver(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	if err := d.client.Publish(ctx, d.Channel(n.UserID), payload).Err(); err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	return nil
}
