// pkg/db/db.go
package db

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"orgsvc/pkg/config"
)

// MustConnect opens the master-store client and verifies the connection.
// Fatal on failure: the service cannot do anything without its store.
func MustConnect(cfg config.Config, log *zap.SugaredLogger) *mongo.Client {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(5 * time.Second)
	cli, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		log.Fatalw("mongo connect", "err", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx, nil); err != nil {
		log.Fatalw("mongo ping", "err", err)
	}
	log.Infow("mongo ready", "uri", redactURI(cfg.MongoURI), "db", cfg.MasterDBName)
	return cli
}

// Close disconnects the client, bounded so shutdown cannot hang.
func Close(cli *mongo.Client, log *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Disconnect(ctx); err != nil {
		log.Warnw("mongo disconnect", "err", err)
	}
}

func redactURI(uri string) string {
	if i := strings.Index(uri, "@"); i > 0 {
		return "***@" + uri[i+1:]
	}
	return uri
}
