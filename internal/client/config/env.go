package config

import (
	"github.com/dmitrijs2005/drawersync/internal/envx"
	"github.com/dmitrijs2005/drawersync/internal/flagx"
)

// parseEnv overlays Config with DRAWER_* environment variables. A dotenv
// file given via -env (or ./.env) is loaded first.
func parseEnv(cfg *Config) {
	if err := envx.Load(flagx.EnvFileFlags()); err != nil {
		panic(err)
	}

	cfg.ServerURL = envx.String("DRAWER_SERVER_URL", cfg.ServerURL)
	cfg.Token = envx.String("DRAWER_TOKEN", cfg.Token)
	cfg.DatabasePath = envx.String("DRAWER_DB", cfg.DatabasePath)
	cfg.OnlineCheckInterval = envx.Duration("DRAWER_ONLINE_CHECK_INTERVAL", cfg.OnlineCheckInterval)
	cfg.ResyncInterval = envx.Duration("DRAWER_RESYNC_INTERVAL", cfg.ResyncInterval)
	cfg.SyncPolicy = envx.String("DRAWER_SYNC_POLICY", cfg.SyncPolicy)
	cfg.LogFile = envx.String("DRAWER_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = envx.String("DRAWER_LOG_LEVEL", cfg.LogLevel)
	cfg.ClientID = envx.String("DRAWER_CLIENT_ID", cfg.ClientID)
	cfg.Passphrase = envx.String("DRAWER_PASSPHRASE", cfg.Passphrase)
}
