package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophfarm/internal/config"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/server"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := server.NewApp(cfg, logger).Run(context.Background()); err != nil {
		os.Exit(1)
	}
}
