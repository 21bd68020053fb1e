package notifications

import (
	"context"
	"errors"
	"slices"
	"time"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrStorageFailed        = errors.New("notification storage failed")
	ErrDeliveryFailed       = errors.New("notification delivery failed")
)

// Storage persists notifications per recipient.
type Storage interface {
	Create(ctx context.Context, n Notification) error
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)
	MarkRead(ctx context.Context, userID string, ids ...string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions filters and paginates List results. Zero Limit means no limit.
type ListOptions struct {
	Limit      int
	Offset     int
	OnlyUnread bool
	Categories []Category
	SourceType string
	Since      *time.Time
}

func (o ListOptions) match(n Notification) bool {
	if o.OnlyUnread && n.Read {
		return false
	}
	if len(o.Categories) > 0 && !slices.Contains(o.Categories, n.Category) {
		return false
	}
	if o.SourceType != "" && n.SourceType != o.SourceType {
		return false
	}
	if o.Since != nil && !n.CreatedAt.After(*o.Since) {
		return false
	}
	return true
}

// apply sorts newest first, filters and paginates.
func (o ListOptions) apply(all []Notification) []Notification {
	slices.SortStableFunc(all, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	out := make([]Notification, 0, len(all))
	for _, n := range all {
		if o.match(n) {
			out = append(out, n)
		}
	}

	if o.Offset > 0 {
		if o.Offset >= len(out) {
			return []Notification{}
		}
		out = out[o.Offset:]
	}
	if o.Limit > 0 && len(out) > o.Limit {
		out = out[:o.Limit]
	}
	return out
}
