package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// envConfig is an intermediate DTO for environment variables. Only fields
// that were actually set are copied onto the runtime Config.
type envConfig struct {
	EndpointAddrHTTP string        `env:"MEDIAGATE_ADDR"`
	DatabaseDSN      string        `env:"MEDIAGATE_DATABASE_DSN"`
	SecretKey        string        `env:"MEDIAGATE_SECRET_KEY"`
	VerifyEndpoint   string        `env:"MEDIAGATE_VERIFY_ENDPOINT"`
	VerifySecret     string        `env:"MEDIAGATE_VERIFY_SECRET"`
	PermitUses       int           `env:"MEDIAGATE_PERMIT_USES"`
	PermitTTL        time.Duration `env:"MEDIAGATE_PERMIT_TTL"`
	S3RootUser       string        `env:"MEDIAGATE_S3_USER"`
	S3RootPassword   string        `env:"MEDIAGATE_S3_PASSWORD"`
	S3Bucket         string        `env:"MEDIAGATE_S3_BUCKET"`
	S3Region         string        `env:"MEDIAGATE_S3_REGION"`
	S3BaseEndpoint   string        `env:"MEDIAGATE_S3_ENDPOINT"`
	UploadTicketTTL  time.Duration `env:"MEDIAGATE_UPLOAD_TICKET_TTL"`
	SignedViewTTL    time.Duration `env:"MEDIAGATE_SIGNED_VIEW_TTL"`
}

// parseEnv overlays environment variables onto config. A local .env file
// is honored when present; a missing file is not an error.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	e := envConfig{}
	if err := env.Parse(&e); err != nil {
		panic(err)
	}

	if e.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = e.EndpointAddrHTTP
	}
	if e.DatabaseDSN != "" {
		config.DatabaseDSN = e.DatabaseDSN
	}
	if e.SecretKey != "" {
		config.SecretKey = e.SecretKey
	}
	if e.VerifyEndpoint != "" {
		config.VerifyEndpoint = e.VerifyEndpoint
	}
	if e.VerifySecret != "" {
		config.VerifySecret = e.VerifySecret
	}
	if e.PermitUses != 0 {
		config.PermitUses = e.PermitUses
	}
	if e.PermitTTL != 0 {
		config.PermitTTL = e.PermitTTL
	}
	if e.S3RootUser != "" {
		config.S3RootUser = e.S3RootUser
	}
	if e.S3RootPassword != "" {
		config.S3RootPassword = e.S3RootPassword
	}
	if e.S3Bucket != "" {
		config.S3Bucket = e.S3Bucket
	}
	if e.S3Region != "" {
		config.S3Region = e.S3Region
	}
	if e.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = e.S3BaseEndpoint
	}
	if e.UploadTicketTTL != 0 {
		config.UploadTicketTTL = e.UploadTicketTTL
	}
	if e.SignedViewTTL != 0 {
		config.SignedViewTTL = e.SignedViewTTL
	}
}
