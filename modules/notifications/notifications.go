package notifications

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifyhub/binder"
	"github.com/dmitrymomot/notifyhub/handler"
	notify "github.com/dmitrymomot/notifyhub/pkg/notifications"
	"github.com/dmitrymomot/notifyhub/pkg/validator"
)

// History page bounds.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// NotificationService exposes dispatch, history and outcome reporting over HTTP.
type NotificationService struct {
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

func NewNotificationService(dispatcher *notify.Dispatcher, opts ...Option) *NotificationService {
	o := newOptions(opts)
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     o.logger,
	}
}

type DispatchRequest struct {
	UserID  string         `json:"userId"`
	Type    string         `json:"type"`
	Channel notify.Channel `json:"channel"`
	Content map[string]any `json:"content"`
}

type HistoryRequest struct {
	UserID string `path:"userId" query:"-"`
	Limit  *int   `path:"-" query:"limit"`
	Offset int    `path:"-" query:"offset"`
}

type RecordOutcomeRequest struct {
	ID     string        `path:"id" json:"-"`
	Status notify.Status `json:"status"`
	SentAt *time.Time    `json:"sentAt"`
}

func (s *NotificationService) Handle() http.Handler {
	r := chi.NewRouter()
	errorHandler := handler.NewErrorHandler(s.logger)

	r.Post("/", handler.Wrap(s.dispatch,
		handler.WithBinders[handler.Context, DispatchRequest](binder.BindJSON()),
		handler.WithErrorHandler[handler.Context, DispatchRequest](errorHandler),
	))
	r.Get("/{userId}", handler.Wrap(s.history,
		handler.WithBinders[handler.Context, HistoryRequest](
			binder.Path(chi.URLParam),
			binder.BindQuery(),
		),
		handler.WithErrorHandler[handler.Context, HistoryRequest](errorHandler),
	))
	r.Post("/{id}/outcome", handler.Wrap(s.recordOutcome,
		handler.WithBinders[handler.Context, RecordOutcomeRequest](
			binder.Path(chi.URLParam),
			binder.BindJSON(),
		),
		handler.WithErrorHandler[handler.Context, RecordOutcomeRequest](errorHandler),
	))

	return r
}

func (s *NotificationService) dispatch(ctx handler.Context, req DispatchRequest) handler.Response {
	n, err := s.dispatcher.Dispatch(ctx, notify.DispatchRequest{
		UserID:  req.UserID,
		Type:    req.Type,
		Channel: req.Channel,
		Content: req.Content,
	})
	if err != nil {
		return errorResponse(ctx, s.logger, err)
	}
	return handler.JSON(n, handler.WithJSONStatus(http.StatusCreated))
}

func (s *NotificationService) history(ctx handler.Context, req HistoryRequest) handler.Response {
	limit := DefaultHistoryLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	if err := validator.Apply(
		validator.MinNum("limit", limit, 1),
		validator.MaxNum("limit", limit, MaxHistoryLimit),
		validator.MinNum("offset", req.Offset, 0),
	); err != nil {
		return errorResponse(ctx, s.logger, err)
	}

	list, err := s.dispatcher.History(ctx, req.UserID, notify.ListOptions{Limit: limit, Offset: req.Offset})
	if err != nil {
		return errorResponse(ctx, s.logger, err)
	}

	return handler.JSON(list, handler.WithJSONMeta(map[string]any{
		"limit":  limit,
		"offset": req.Offset,
		"count":  len(list),
	}))
}

func (s *NotificationService) recordOutcome(ctx handler.Context, req RecordOutcomeRequest) handler.Response {
	if _, err := s.dispatcher.RecordOutcome(ctx, req.ID, req.Status, req.SentAt); err != nil {
		return errorResponse(ctx, s.logger, err)
	}
	return handler.Empty()
}
