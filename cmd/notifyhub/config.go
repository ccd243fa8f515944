package main

import "time"

// appConfig holds process-level settings. Infrastructure packages load their
// own Config structs from the same environment.
type appConfig struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	ServiceName      string        `env:"SERVICE_NAME" envDefault:"notifyhub"`
	LogLevel         string        `env:"LOG_LEVEL"`
	SMSGatewayURL    string        `env:"SMS_GATEWAY_URL"`
	PushGatewayURL   string        `env:"PUSH_GATEWAY_URL"`
	GatewaySecret    string        `env:"GATEWAY_SECRET"`
	GatewayTimeout   time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	CacheTTL         time.Duration `env:"SUBSCRIPTION_CACHE_TTL" envDefault:"5m"`
	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"2s"`
}
