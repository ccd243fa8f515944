// Package logger builds context-aware *slog.Logger instances.
//
// New applies functional options (format, level, static attributes, context
// extractors, per-environment defaults) and wraps the chosen slog handler with
// LogHandlerDecorator, which injects request-scoped values such as the request
// id into every record.
//
// Attribute helpers in attr.go (Error, UserID, NotificationID, Channel, ...)
// keep key names consistent across the service. Helpers taking an identifier
// return an empty slog.Attr for empty input, so they can be passed
// unconditionally:
//
//	log.LogAttrs(ctx, slog.LevelWarn, "delivery hand-off failed",
//	    logger.NotificationID(n.ID),
//	    logger.UserID(n.UserID),
//	    logger.Error(err),
//	)
package logger
