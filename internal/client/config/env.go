package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// envConfig is an intermediate DTO for environment variables. Only fields
// that were actually set are copied onto the runtime Config.
type envConfig struct {
	ServerEndpointAddr string        `env:"MEDIAGATE_CLI_SERVER"`
	AccessToken        string        `env:"MEDIAGATE_CLI_TOKEN"`
	VerifyEndpointAddr string        `env:"MEDIAGATE_CLI_VERIFY_ENDPOINT"`
	SiteKey            string        `env:"MEDIAGATE_CLI_SITE_KEY"`
	SignedViewTTL      time.Duration `env:"MEDIAGATE_CLI_SIGNED_VIEW_TTL"`
}

// parseEnv overlays environment variables onto config. A local .env file
// is honored when present; a missing file is not an error.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	e := envConfig{}
	if err := env.Parse(&e); err != nil {
		panic(err)
	}

	if e.ServerEndpointAddr != "" {
		config.ServerEndpointAddr = e.ServerEndpointAddr
	}
	if e.AccessToken != "" {
		config.AccessToken = e.AccessToken
	}
	if e.VerifyEndpointAddr != "" {
		config.VerifyEndpointAddr = e.VerifyEndpointAddr
	}
	if e.SiteKey != "" {
		config.SiteKey = e.SiteKey
	}
	if e.SignedViewTTL != 0 {
		config.SignedViewTTL = e.SignedViewTTL
	}
}
