package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/dmitrymomot/transitionkit/pkg/logger"
)

// Message carries the facts of one completed transition.
type Message struct {
	EntityType string
	EntityID   string
	EntityName string
	From       string
	To         string
	ActorID    string
	ActorName  string
	Comment    string
	Data       map[string]any
}

func (m Message) displayName() string {
	if m.EntityName != "" {
		return m.EntityName
	}
	if m.EntityID != "" {
		return "#" + m.EntityID
	}
	return ""
}

func (m Message) actorLabel() string {
	if m.ActorName != "" {
		return m.ActorName
	}
	return m.ActorID
}

// Request asks the dispatcher to notify every user behind Roles.
type Request struct {
	Roles    []string
	Template string
	Resolver RecipientResolver
	Message  Message
}

var ErrNoResolver = errors.New("notification request has no recipient resolver")

// Dispatcher resolves recipient roles and sends one notification per
// distinct recipient through a Sender.
type Dispatcher struct {
	sender    Sender
	templates Templates
	logger    *slog.Logger
	skipActor bool
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

func WithTemplates(t Templates) DispatcherOption {
	return func(d *Dispatcher) {
		d.templates = t
	}
}

func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSkipActor stops the dispatcher from notifying the user who performed
// the transition.
func WithSkipActor() DispatcherOption {
	return func(d *Dispatcher) {
		d.skipActor = true
	}
}

func NewDispatcher(sender Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender:    sender,
		templates: Templates{},
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolve returns the de-duplicated recipients of roles in first-seen order.
func (d *Dispatcher) Resolve(resolver RecipientResolver, roles []string, actorID string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, role := range roles {
		for _, id := range resolver.Recipients(role) {
			if id == "" {
				continue
			}
			if d.skipActor && id == actorID {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Dispatch sends the rendered notification to each recipient. A failed send
// is logged and the loop continues; the returned flag is false if any send
// failed. Resolving to nobody is a success.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (bool, error) {
	if req.Resolver == nil {
		return false, ErrNoResolver
	}

	msg := req.Message
	recipients := d.Resolve(req.Resolver, req.Roles, msg.ActorID)
	if len(recipients) == 0 {
		d.logger.DebugContext(ctx, "no notification recipients resolved",
			logger.Entity(msg.EntityType, msg.EntityID),
			slog.Any("roles", req.Roles),
		)
		return true, nil
	}

	tpl := d.templates.Lookup(req.Template)
	title, content, link := tpl.Render(msg)

	data := maps.Clone(msg.Data)
	if data == nil {
		data = make(map[string]any, 4)
	}
	data["from_state"] = msg.From
	data["to_state"] = msg.To
	if msg.ActorID != "" {
		data["actor_id"] = msg.ActorID
	}
	if msg.Comment != "" {
		data["comment"] = msg.Comment
	}

	var errs []error
	for _, userID := range recipients {
		n := Notification{
			UserID:     userID,
			Category:   tpl.Category,
			Priority:   tpl.Priority,
			Title:      title,
			Content:    content,
			SourceType: msg.EntityType,
			SourceID:   msg.EntityID,
			LinkURL:    link,
			Data:       maps.Clone(data),
		}
		if n.Category == "" {
			n.Category = CategoryWorkflow
		}

		if err := d.safeSend(ctx, n); err != nil {
			d.logger.WarnContext(ctx, "failed to send transition notification",
				logger.RecipientID(userID),
				logger.Entity(msg.EntityType, msg.EntityID),
				logger.Transition(msg.From, msg.To),
				logger.Error(err),
			)
			errs = append(errs, fmt.Errorf("recipient %s: %w", userID, err))
		}
	}

	if len(errs) > 0 {
		return false, errors.Join(errs...)
	}
	return true, nil
}

func (d *Dispatcher) safeSend(ctx context.Context, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return d.sender.Send(ctx, n)
}
