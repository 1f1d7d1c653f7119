package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/drawersync/internal/flagx"
	"github.com/dmitrijs2005/drawersync/internal/timex"
)

// JsonConfig is the JSON form of Config. Durations use timex.Duration.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	Storage               string         `json:"storage"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	CORSAllowedOrigins    []string       `json:"cors_allowed_origins"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	S3Prefix              string         `json:"s3_prefix"`
	LogLevel              string         `json:"log_level"`
}

// parseJson overlays Config with the fields present in the file given via
// -c or -config. Read and decode errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
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

	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&config.HTTPAddr, c.HTTPAddr},
		{&config.Storage, c.Storage},
		{&config.DatabaseDSN, c.DatabaseDSN},
		{&config.SecretKey, c.SecretKey},
		{&config.S3RootUser, c.S3RootUser},
		{&config.S3RootPassword, c.S3RootPassword},
		{&config.S3Bucket, c.S3Bucket},
		{&config.S3Region, c.S3Region},
		{&config.S3BaseEndpoint, c.S3BaseEndpoint},
		{&config.S3Prefix, c.S3Prefix},
		{&config.LogLevel, c.LogLevel},
	} {
		if f.v != "" {
			*f.dst = f.v
		}
	}

	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}
