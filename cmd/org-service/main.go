// cmd/org-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orgsvc/internal/orgs"
	"orgsvc/internal/partition"
	"orgsvc/internal/registry"
	"orgsvc/internal/token"
	"orgsvc/pkg/config"
	"orgsvc/pkg/db"
	"orgsvc/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	var (
		reg   registry.Registry
		parts partition.Manager
	)
	if cfg.MongoURI != "" {
		cli := db.MustConnect(cfg, log)
		defer db.Close(cli, log)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := registry.EnsureIndexes(ctx, cli, cfg.MasterDBName)
		cancel()
		if err != nil {
			log.Fatalw("ensure indexes", "err", err)
		}

		reg = registry.NewMongoRegistry(cli, cfg.MasterDBName, log)
		parts = partition.NewMongoManager(cli, cfg.MasterDBName, log)
	} else {
		reg = registry.NewMemoryRegistry()
		parts = partition.NewMemoryManager()
	}

	tokens := token.NewService(cfg.TokenSecret, cfg.TokenTTL)
	svc := orgs.NewService(reg, parts, tokens, log)
	app := orgs.NewApp(log, svc, tokens)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: app.Handler()}
	go func() {
		log.Infow("org-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("org-service stopped")
}
