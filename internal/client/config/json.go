package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/9r89uf8/mediagate/internal/flagx"
	"github.com/9r89uf8/mediagate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify intervals either as strings like
// "1h" or as integer nanoseconds. After parsing, values are copied into
// the runtime Config.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	AccessToken        string         `json:"access_token"`
	VerifyEndpointAddr string         `json:"verify_endpoint_addr"`
	SiteKey            string         `json:"site_key"`
	SignedViewTTL      timex.Duration `json:"signed_view_ttl"`
}

// parseJson overlays Config with values loaded from a JSON file. The
// file path comes from the -c/-config flags via flagx.JsonConfigFlags();
// when no path is given the function returns without touching cfg.
// Intended usage is: defaults -> env -> parseJson -> parseFlags, where
// later stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.AccessToken != "" {
		cfg.AccessToken = jc.AccessToken
	}
	if jc.VerifyEndpointAddr != "" {
		cfg.VerifyEndpointAddr = jc.VerifyEndpointAddr
	}
	if jc.SiteKey != "" {
		cfg.SiteKey = jc.SiteKey
	}
	if jc.SignedViewTTL.Duration != 0 {
		cfg.SignedViewTTL = time.Duration(jc.SignedViewTTL.Duration)
	}
}
