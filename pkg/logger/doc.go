// Package logger builds *slog.Logger instances for transitionkit services and
// provides attribute helpers that keep key names consistent across the
// state machine engine, the audit recorder and the notification dispatcher.
//
// New applies functional options (format, level, static attributes, context
// extractors) and wraps the resulting handler with LogHandlerDecorator, which
// injects request-scoped attributes from context.Context on every record.
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "workflow-api"),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//	log.WarnContext(ctx, "after hook failed",
//	    logger.Entity("change_notice", "42"),
//	    logger.Transition("DRAFT", "PENDING_REVIEW"),
//	    logger.Error(err),
//	)
//
// Error and ActorID return an empty slog.Attr for zero values so callers can
// pass them unconditionally.
package logger
