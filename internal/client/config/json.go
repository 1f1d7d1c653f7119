package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/drawersync/internal/flagx"
	"github.com/dmitrijs2005/drawersync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// use timex.Duration, so "3s" and integer nanoseconds are both accepted.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	Token               string         `json:"token"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	ResyncInterval      timex.Duration `json:"resync_interval"`
	PushDelay           timex.Duration `json:"push_delay"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	SyncPolicy          string         `json:"sync_policy"`
	LogFile             string         `json:"log_file"`
	LogLevel            string         `json:"log_level"`
	ClientID            string         `json:"client_id"`
}

// parseJson overlays Config with the fields present in the JSON file given
// via -c or -config. Nothing happens when neither flag is set. Read and
// decode errors panic.
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

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.Token, jc.Token)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.SyncPolicy, jc.SyncPolicy)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.ClientID, jc.ClientID)

	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.ResyncInterval.Duration > 0 {
		cfg.ResyncInterval = jc.ResyncInterval.Duration
	}
	if jc.PushDelay.Duration > 0 {
		cfg.PushDelay = jc.PushDelay.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
