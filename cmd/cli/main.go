package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophtasks/internal/client/cli"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

func main() {

	ctx := context.Background()

	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	app, err := cli.NewApp(cfg, logger)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
