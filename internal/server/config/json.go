package config

import (
	"encoding/json"
	"os"

	"github.com/9r89uf8/mediagate/internal/flagx"
	"github.com/9r89uf8/mediagate/internal/timex"
)

// JsonConfig is an intermediate DTO for JSON configuration files. It uses
// timex.Duration for interval fields, which allows parsing both string
// values such as "15m" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	VerifyEndpoint   string         `json:"verify_endpoint"`
	VerifySecret     string         `json:"verify_secret"`
	PermitUses       int            `json:"permit_uses"`
	PermitTTL        timex.Duration `json:"permit_ttl"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	UploadTicketTTL  timex.Duration `json:"upload_ticket_ttl"`
	SignedViewTTL    timex.Duration `json:"signed_view_ttl"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; when
// neither is set no JSON file is loaded. An unreadable or malformed file
// panics: a config file that was asked for but cannot be used is fatal.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.VerifyEndpoint != "" {
		config.VerifyEndpoint = c.VerifyEndpoint
	}
	if c.VerifySecret != "" {
		config.VerifySecret = c.VerifySecret
	}
	if c.PermitUses != 0 {
		config.PermitUses = c.PermitUses
	}
	if c.PermitTTL.Duration != 0 {
		config.PermitTTL = c.PermitTTL.Duration
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.UploadTicketTTL.Duration != 0 {
		config.UploadTicketTTL = c.UploadTicketTTL.Duration
	}
	if c.SignedViewTTL.Duration != 0 {
		config.SignedViewTTL = c.SignedViewTTL.Duration
	}
}
