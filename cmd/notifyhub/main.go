package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/notifyhub/modules/notifications"
	"github.com/dmitrymomot/notifyhub/pkg/clientip"
	"github.com/dmitrymomot/notifyhub/pkg/config"
	"github.com/dmitrymomot/notifyhub/pkg/email"
	"github.com/dmitrymomot/notifyhub/pkg/httpserver"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/mongo"
	notify "github.com/dmitrymomot/notifyhub/pkg/notifications"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/pkg/redis"
	"github.com/dmitrymomot/notifyhub/pkg/requestid"
	"github.com/dmitrymomot/notifyhub/pkg/webhook"
)

func main() {
	config.LoadEnv()

	var cfg appConfig
	config.MustLoad(&cfg)

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			slog.Error("invalid LOG_LEVEL", logger.Error(err))
			os.Exit(1)
		}
		logOpts = append(logOpts, logger.WithLevel(level))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("service stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	var (
		mongoCfg  mongo.Config
		redisCfg  redis.Config
		emailCfg  email.Config
		queueCfg  queue.Config
		serverCfg httpserver.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&mongoCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&emailCfg) },
		func() error { return config.Load(&queueCfg) },
		func() error { return config.Load(&serverCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	db, err := mongo.NewWithDatabase(ctx, mongoCfg)
	if err != nil {
		return err
	}
	serverOpts := []httpserver.Option{
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook(db.Client().Disconnect),
	}
	checks := []httpserver.Check{{Name: "mongodb", Fn: mongo.Healthcheck(db.Client())}}

	subscriptionStore := notify.NewMongoSubscriptionStore(db)
	notificationStore := notify.NewMongoStorage(db)
	taskStore := queue.NewMongoStorage(db.Collection(queueCfg.Collection))
	for _, idx := range []interface{ EnsureIndexes(context.Context) error }{
		subscriptionStore, notificationStore, taskStore,
	} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			return err
		}
	}

	var subscriptions notify.SubscriptionStore = subscriptionStore
	if redisCfg.Enabled() {
		rdb, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		subscriptions = notify.NewCachedSubscriptionStore(subscriptionStore, rdb,
			notify.WithCacheTTL(cfg.CacheTTL),
			notify.WithCacheLogger(log),
		)
		serverOpts = append(serverOpts, httpserver.WithShutdownHook(func(context.Context) error { return rdb.Close() }))
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)})
	} else {
		log.Info("redis not configured, subscription cache disabled")
	}

	mailer, err := email.New(emailCfg)
	if err != nil {
		return err
	}
	senders := notify.ChannelRouter{
		notify.ChannelEmail: notify.NewEmailSender(mailer),
	}
	gateways := webhook.NewSender()
	if cfg.SMSGatewayURL != "" {
		senders[notify.ChannelSMS] = notify.NewGatewaySender(gateways, cfg.SMSGatewayURL, cfg.GatewaySecret, cfg.GatewayTimeout)
	}
	if cfg.PushGatewayURL != "" {
		senders[notify.ChannelPush] = notify.NewGatewaySender(gateways, cfg.PushGatewayURL, cfg.GatewaySecret, cfg.GatewayTimeout)
	}

	enqueuer, err := queue.NewEnqueuer(taskStore, queue.WithDefaultQueue(notify.DeliveryQueue))
	if err != nil {
		return err
	}
	worker, err := queue.NewWorker(taskStore,
		queue.WithConfig(queueCfg),
		queue.WithQueues(notify.DeliveryQueue),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}

	metrics := notify.NewMetrics(prometheus.DefaultRegisterer)
	manager := notify.NewSubscriptionManager(subscriptions, notify.WithSubscriptionLogger(log))
	dispatcher := notify.NewDispatcher(manager, notificationStore, notify.NewQueueDeliverer(enqueuer),
		notify.WithDispatcherLogger(log),
		notify.WithDispatcherMetrics(metrics),
	)

	worker.RegisterHandlers(notify.NewDeliveryHandler(dispatcher, senders,
		notify.WithDeliveryLogger(log),
		notify.WithDeliveryMetrics(metrics),
	))
	if err := worker.Start(ctx); err != nil {
		return err
	}
	// Hooks run in registration order; the worker stops before connections close.
	serverOpts = append([]httpserver.Option{
		httpserver.WithShutdownHook(func(context.Context) error { return worker.Stop() }),
	}, serverOpts...)

	router := newRouter(log, cfg, checks,
		notifications.NewSubscriptionService(manager, notifications.WithLogger(log)),
		notifications.NewNotificationService(dispatcher, notifications.WithLogger(log)),
	)

	return httpserver.NewFromConfig(serverCfg, serverOpts...).Run(ctx, router)
}

func newRouter(log *slog.Logger, cfg appConfig, checks []httpserver.Check, subs, notifs notifications.Mountable) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, requestid.Middleware, clientip.Middleware)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, cfg.ReadinessTimeout, checks...))
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/api", notifications.Router(notifications.RouterOptions{
		Subscriptions: subs,
		Notifications: notifs,
	}))

	return r
}
