package notifications

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifyhub/binder"
	"github.com/dmitrymomot/notifyhub/handler"
	notify "github.com/dmitrymomot/notifyhub/pkg/notifications"
)

// SubscriptionService exposes subscription preferences over HTTP.
type SubscriptionService struct {
	manager *notify.SubscriptionManager
	logger  *slog.Logger
}

func NewSubscriptionService(manager *notify.SubscriptionManager, opts ...Option) *SubscriptionService {
	o := newOptions(opts)
	return &SubscriptionService{
		manager: manager,
		logger:  o.logger,
	}
}

type CreateSubscriptionRequest struct {
	UserID      string                   `json:"userId"`
	Channels    []notify.Channel         `json:"channels"`
	Preferences *notify.PreferencesPatch `json:"preferences"`
}

type UpdateSubscriptionRequest struct {
	UserID      string                   `path:"userId" json:"-"`
	Channels    []notify.Channel         `json:"channels"`
	Preferences *notify.PreferencesPatch `json:"preferences"`
}

type GetSubscriptionRequest struct {
	UserID string `path:"userId"`
}

func (s *SubscriptionService) Handle() http.Handler {
	r := chi.NewRouter()
	errorHandler := handler.NewErrorHandler(s.logger)

	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, CreateSubscriptionRequest](binder.BindJSON()),
		handler.WithErrorHandler[handler.Context, CreateSubscriptionRequest](errorHandler),
	))
	r.Get("/{userId}", handler.Wrap(s.get,
		handler.WithBinders[handler.Context, GetSubscriptionRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, GetSubscriptionRequest](errorHandler),
	))
	r.Patch("/{userId}", handler.Wrap(s.update,
		handler.WithBinders[handler.Context, UpdateSubscriptionRequest](
			binder.Path(chi.URLParam),
			binder.BindJSON(),
		),
		handler.WithErrorHandler[handler.Context, UpdateSubscriptionRequest](errorHandler),
	))

	return r
}

func (s *SubscriptionService) create(ctx handler.Context, req CreateSubscriptionRequest) handler.Response {
	sub, err := s.manager.CreateOrUpdate(ctx, notify.SubscriptionInput{
		UserID:      req.UserID,
		Channels:    req.Channels,
		Preferences: req.Preferences,
	})
	if err != nil {
		return errorResponse(ctx, s.logger, err)
	}
	return handler.JSON(sub, handler.WithJSONStatus(http.StatusCreated))
}

func (s *SubscriptionService) update(ctx handler.Context, req UpdateSubscriptionRequest) handler.Response {
	sub, err := s.manager.CreateOrUpdate(ctx, notify.SubscriptionInput{
		UserID:      req.UserID,
		Channels:    req.Channels,
		Preferences: req.Preferences,
	})
	if err != nil {
		return errorResponse(ctx, s.logger, err)
	}
	return handler.JSON(sub)
}

func (s *SubscriptionService) get(ctx handler.Context, req GetSubscriptionRequest) handler.Response {
	sub, err := s.manager.Get(ctx, req.UserID)
	if err != nil {
		return errorResponse(ctx, s.logger, err)
	}
	return handler.JSON(sub)
}
