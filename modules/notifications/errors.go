package notifications

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/notifyhub/handler"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	notify "github.com/dmitrymomot/notifyhub/pkg/notifications"
	"github.com/dmitrymomot/notifyhub/pkg/requestid"
)

// Error codes returned in the JSON error envelope.
const (
	CodeSubscriptionNotFound = "subscription_not_found"
	CodeNotificationNotFound = "notification_not_found"
	CodeInvalidTransition    = "invalid_transition"
)

// errorDetailFor maps domain errors to an error envelope and status code.
// Anything it does not recognise falls through to handler.ErrorDetailFor.
func errorDetailFor(err error) (*handler.ErrorDetail, int) {
	if reason, ok := notify.RejectionReason(err); ok {
		return &handler.ErrorDetail{Code: string(reason), Message: err.Error()}, http.StatusBadRequest
	}

	switch {
	case errors.Is(err, notify.ErrSubscriptionNotFound):
		return &handler.ErrorDetail{Code: CodeSubscriptionNotFound, Message: err.Error()}, http.StatusNotFound
	case errors.Is(err, notify.ErrNotificationNotFound):
		return &handler.ErrorDetail{Code: CodeNotificationNotFound, Message: err.Error()}, http.StatusNotFound
	case errors.Is(err, notify.ErrInvalidTransition):
		return &handler.ErrorDetail{Code: CodeInvalidTransition, Message: err.Error()}, http.StatusConflict
	}

	return handler.ErrorDetailFor(err)
}

// errorResponse logs err and renders it. Client errors log at warn,
// everything else at error.
func errorResponse(ctx handler.Context, log *slog.Logger, err error) handler.Response {
	detail, status := errorDetailFor(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	r := ctx.Request()
	log.LogAttrs(ctx, level, "request failed",
		logger.RequestID(requestid.FromContext(ctx)),
		logger.Error(err),
		slog.Int("status_code", status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	return handler.JSONError(detail, handler.WithJSONStatus(status))
}
