package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/drawersync/internal/buildinfo"
	"github.com/dmitrijs2005/drawersync/internal/client/cli"
	"github.com/dmitrijs2005/drawersync/internal/client/config"
	"github.com/dmitrijs2005/drawersync/internal/filex"
	"github.com/dmitrijs2005/drawersync/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	logFile := cfg.LogFile
	if logFile != "" {
		var err error
		if logFile, err = filex.EnsureParentDir(logFile); err != nil {
			log.Fatalf("%v", err)
		}
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: logFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
