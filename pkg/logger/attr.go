package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ActorID records the identifier of the caller performing a transition.
// Empty ids produce an empty Attr.
func ActorID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("actor_id", id)
}

// RecipientID records a notification recipient under the key "recipient_id".
func RecipientID(id string) slog.Attr {
	return slog.String("recipient_id", id)
}

// Entity groups the entity type and id under the key "entity".
func Entity(entityType, id string) slog.Attr {
	return Group("entity",
		slog.String("type", entityType),
		slog.String("id", id),
	)
}

// Transition groups the source and target states under the key "transition".
func Transition(from, to string) slog.Attr {
	return Group("transition",
		slog.String("from", from),
		slog.String("to", to),
	)
}

// Machine records the state machine name under the key "machine".
func Machine(name string) slog.Attr {
	return slog.String("machine", name)
}

// Hook records the hook kind ("before" or "after") and its position.
func Hook(kind string, index int) slog.Attr {
	return Group("hook",
		slog.String("kind", kind),
		slog.Int("index", index),
	)
}

// ActionType records the audit action tag under the key "action_type".
func ActionType(action string) slog.Attr {
	return slog.String("action_type", action)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
