package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps each recipient's notifications in a hash keyed by
// notification ID next to a set of unread IDs.
type RedisStorage struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// RedisStorageOption configures a RedisStorage.
type RedisStorageOption func(*RedisStorage)

// WithKeyPrefix sets the key namespace. Defaults to "notifications".
func WithKeyPrefix(prefix string) RedisStorageOption {
	return func(s *RedisStorage) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRetention expires a recipient's keys ttl after their last write.
func WithRetention(ttl time.Duration) RedisStorageOption {
	return func(s *RedisStorage) {
		s.ttl = ttl
	}
}

func NewRedisStorage(client redis.Cmdable, opts ...RedisStorageOption) *RedisStorage {
	s := &RedisStorage{
		client: client,
		prefix: "notifications",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStorage) itemsKey(userID string) string  { return s.prefix + ":" + userID + ":items" }
func (s *RedisStorage) unreadKey(userID string) string { return s.prefix + ":" + userID + ":unread" }

func (s *RedisStorage) Create(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrStorageFailed, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.itemsKey(n.UserID), n.ID, data)
		if !n.Read {
			pipe.SAdd(ctx, s.unreadKey(n.UserID), n.ID)
		}
		if s.ttl > 0 {
			for _, key := range []string{s.itemsKey(n.UserID), s.unreadKey(n.UserID)} {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}

func (s *RedisStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	raw, err := s.client.HGetAll(ctx, s.itemsKey(userID)).Result()
	if err != nil {
		return nil, errors.Join(ErrStorageFailed, err)
	}

	all := make([]Notification, 0, len(raw))
	for _, v := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(v), &n); err != nil {
			return nil, fmt.Errorf("%w: unmarshal: %w", ErrStorageFailed, err)
		}
		all = append(all, n)
	}
	return opts.apply(all), nil
}

func (s *RedisStorage) MarkRead(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	values, err := s.client.HMGet(ctx, s.itemsKey(userID), ids...).Result()
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}

	updated := make(map[string]any, len(ids))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotificationNotFound, ids[i])
		}
		var n Notification
		if err := json.Unmarshal([]byte(str), &n); err != nil {
			return fmt.Errorf("%w: unmarshal: %w", ErrStorageFailed, err)
		}
		if n.Read {
			continue
		}
		n.MarkAsRead(s.now())
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("%w: marshal: %w", ErrStorageFailed, err)
		}
		updated[n.ID] = data
	}
	if len(updated) == 0 {
		return nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.itemsKey(userID), updated)
		members := make([]any, 0, len(updated))
		for id := range updated {
			members = append(members, id)
		}
		pipe.SRem(ctx, s.unreadKey(userID), members...)
		return nil
	})
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}

func (s *RedisStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := s.client.SCard(ctx, s.unreadKey(userID)).Result()
	if err != nil {
		return 0, errors.Join(ErrStorageFailed, err)
	}
	return int(n), nil
}
