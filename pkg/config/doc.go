// Package config loads typed configuration from environment variables.
//
// It combines github.com/joho/godotenv, which seeds the environment from a
// .env file, with github.com/caarlos0/env/v11, which parses the environment
// into structs tagged with `env`, `envDefault` and `envPrefix`. Each
// configuration type is parsed once and cached for the process lifetime.
package config
