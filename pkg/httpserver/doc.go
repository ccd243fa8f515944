// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run listens on the configured address and blocks until the context is
// cancelled or the process receives SIGINT/SIGTERM. It then drains in-flight
// requests within the shutdown timeout and runs the registered shutdown hooks,
// which is where background workers are stopped and database clients closed.
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithShutdownHook(func(ctx context.Context) error { return client.Disconnect(ctx) }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler serve the /healthz and /readyz probes.
package httpserver
