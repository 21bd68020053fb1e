package audit

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/transitionkit/pkg/logger"
)

// Recorder turns transition facts into audit entries and stages them on a
// session. It never commits.
type Recorder struct {
	session Session
	filter  *MetadataFilter
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

func WithLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFilter replaces the default metadata filter. Passing nil disables
// filtering.
func WithFilter(f *MetadataFilter) RecorderOption {
	return func(r *Recorder) {
		r.filter = f
	}
}

func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the uuid generator used for entry IDs.
func WithIDGenerator(fn func() string) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewRecorder creates a recorder staging entries on session. A nil session
// is accepted: Record then logs and drops entries.
func NewRecorder(session Session, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		session: session,
		filter:  NewMetadataFilter(),
		logger:  logger.Discard(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record completes entry with an ID and timestamp, strips sensitive extra
// data and stages it.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if r.session == nil {
		r.logger.WarnContext(ctx, "audit storage unavailable, entry dropped",
			logger.Entity(entry.EntityType, entry.EntityID),
			logger.ActionType(entry.ActionType),
		)
		return nil
	}

	if entry.ID == "" {
		entry.ID = r.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}
	if r.filter != nil {
		entry.ExtraData = r.filter.Filter(entry.ExtraData)
	} else {
		entry.ExtraData = maps.Clone(entry.ExtraData)
	}

	if err := entry.Validate(); err != nil {
		return err
	}
	if err := r.session.Stage(ctx, entry); err != nil {
		return fmt.Errorf("%w: %w", ErrStageFailed, err)
	}
	return nil
}
