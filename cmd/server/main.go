// Command server runs the Evently dev backend the client logs in against.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/evently-client/internal/server"
	"github.com/dmitrijs2005/evently-client/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
