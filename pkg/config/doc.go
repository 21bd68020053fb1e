// Package config loads typed configuration from environment variables and
// dotenv files.
//
// Structs declare their variables with caarlos0/env tags. Load resolves
// each variable from explicit overrides, then the process environment, then
// dotenv files read with joho/godotenv, then the `envDefault` tag.
//
//	cfg, err := config.Load[runtime.Config](config.WithEnvFiles(".env.local"))
package config
