// Command client is the interactive Evently CLI.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/evently-client/internal/client/cli"
	"github.com/dmitrijs2005/evently-client/internal/client/client"
	"github.com/dmitrijs2005/evently-client/internal/client/config"
	"github.com/dmitrijs2005/evently-client/internal/client/services"
	"github.com/dmitrijs2005/evently-client/internal/client/session"
	"github.com/dmitrijs2005/evently-client/internal/client/storage"
	"github.com/dmitrijs2005/evently-client/internal/client/tokens"
	"github.com/dmitrijs2005/evently-client/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.New(os.Stderr, cfg.LogLevel, "text")

	store, err := storage.Open(ctx, cfg.DatabasePath())
	if err != nil {
		log.Fatalf("open session storage: %v", err)
	}
	defer store.Close()

	jar, err := client.NewFileJar(cfg.CookiePath())
	if err != nil {
		log.Fatalf("open cookie jar: %v", err)
	}

	tokenStore := tokens.New(store)

	api, err := client.NewHTTPClient(cfg, tokenStore, jar, logger)
	if err != nil {
		log.Fatalf("init api client: %v", err)
	}

	auth := services.NewAuthService(api, tokenStore, session.New(), logger)

	app := cli.NewApp(cfg, auth, api, logger, os.Stdin, os.Stdout)
	app.Root(ctx)
}
