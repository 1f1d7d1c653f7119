package config

import (
	"github.com/dmitrijs2005/drawersync/internal/envx"
	"github.com/dmitrijs2005/drawersync/internal/flagx"
)

// parseEnv overlays Config with environment variables, after loading the
// dotenv file given via -env (or ./.env when present).
func parseEnv(cfg *Config) {
	if err := envx.Load(flagx.EnvFileFlags()); err != nil {
		panic(err)
	}

	cfg.HTTPAddr = envx.String("HTTP_ADDR", cfg.HTTPAddr)
	cfg.Storage = envx.String("KV_STORAGE", cfg.Storage)
	cfg.DatabaseDSN = envx.String("DATABASE_URL", cfg.DatabaseDSN)
	cfg.SecretKey = envx.String("JWT_SECRET", cfg.SecretKey)
	cfg.TokenValidityDuration = envx.Duration("TOKEN_VALIDITY", cfg.TokenValidityDuration)
	if origins := envx.List("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		cfg.CORSAllowedOrigins = origins
	}
	cfg.S3RootUser = envx.String("S3_ACCESS_KEY", cfg.S3RootUser)
	cfg.S3RootPassword = envx.String("S3_SECRET_KEY", cfg.S3RootPassword)
	cfg.S3Bucket = envx.String("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = envx.String("S3_REGION", cfg.S3Region)
	cfg.S3BaseEndpoint = envx.String("S3_ENDPOINT", cfg.S3BaseEndpoint)
	cfg.S3Prefix = envx.String("S3_PREFIX", cfg.S3Prefix)
	cfg.LogLevel = envx.String("LOG_LEVEL", cfg.LogLevel)
}
