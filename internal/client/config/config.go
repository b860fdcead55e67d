// Package config loads runtime settings for the media pipeline CLI.
package config

import "time"

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the pipeline API server.
//   - AccessToken: bearer token identifying the operator session.
//   - VerifyEndpointAddr: base URL of the challenge provider.
//   - SiteKey: site key registered with the challenge provider.
//   - SignedViewTTL: how long signed view URLs stay cached client-side.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	VerifyEndpointAddr string
	SiteKey            string
	SignedViewTTL      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.VerifyEndpointAddr = "http://127.0.0.1:8090"
	c.SignedViewTTL = 1 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, JSON (if present) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
