package config

import "time"

// Config holds runtime settings of the drawer client.
type Config struct {
	ServerURL string
	// Token is sent as a bearer token; empty means no Authorization header.
	Token        string
	DatabasePath string

	OnlineCheckInterval time.Duration
	ResyncInterval      time.Duration
	PushDelay           time.Duration
	RequestTimeout      time.Duration

	// SyncPolicy is "merge" or "lww".
	SyncPolicy string

	LogFile  string
	LogLevel string

	// ClientID tags outgoing requests; empty means a random id per run.
	ClientID string
	// Passphrase enables end-to-end encryption of values sent to the server.
	Passphrase string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "drawer.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.ResyncInterval = 60 * time.Second
	c.PushDelay = 500 * time.Millisecond
	c.RequestTimeout = 5 * time.Second
	c.SyncPolicy = "merge"
	c.LogFile = "drawer.log"
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then JSON (if present), then the environment
// (after loading an optional .env), then command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
