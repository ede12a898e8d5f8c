// Command server runs the gophtasks REST API.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/gophtasks/internal/server"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("task server: startup failed: %v", err)
	}

	app.Run(context.Background())
}
