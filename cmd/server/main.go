package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/drawersync/internal/buildinfo"
	"github.com/dmitrijs2005/drawersync/internal/logging"
	"github.com/dmitrijs2005/drawersync/internal/server"
	"github.com/dmitrijs2005/drawersync/internal/server/auth"
	"github.com/dmitrijs2005/drawersync/internal/server/config"
)

func main() {

	cfg := config.LoadConfig()

	if cfg.IssueToken != "" {
		if cfg.SecretKey == "" {
			log.Fatal("a secret key (-s or JWT_SECRET) is required to issue tokens")
		}
		token, err := auth.GenerateToken(cfg.IssueToken, []byte(cfg.SecretKey), cfg.TokenValidityDuration)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(token)
		return
	}

	buildinfo.PrintBuildData(os.Stdout)

	logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: true})

	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
