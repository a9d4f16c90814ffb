// internal/partition/mongo.go
package partition

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Mongo server error codes for namespace collisions.
const (
	codeNamespaceExists   = 48
	codeNamespaceNotFound = 26
)

type mongoManager struct {
	cli *mongo.Client
	db  string
	log *zap.SugaredLogger
}

// NewMongoManager returns a Manager operating on dynamic collections of
// the named master database.
func NewMongoManager(cli *mongo.Client, dbName string, log *zap.SugaredLogger) Manager {
	return &mongoManager{cli: cli, db: dbName, log: log}
}

func (m *mongoManager) Create(ctx context.Context, partitionID string) error {
	if err := m.cli.Database(m.db).CreateCollection(ctx, partitionID); err != nil {
		return m.classify(err)
	}
	return nil
}

func (m *mongoManager) Rename(ctx context.Context, oldID, newID string) error {
	// renameCollection is an admin-database command.
	cmd := bson.D{
		{Key: "renameCollection", Value: m.db + "." + oldID},
		{Key: "to", Value: m.db + "." + newID},
	}
	if err := m.cli.Database("admin").RunCommand(ctx, cmd).Err(); err != nil {
		return m.classify(err)
	}
	return nil
}

func (m *mongoManager) Drop(ctx context.Context, partitionID string) error {
	// The driver swallows "namespace not found" on Drop, but a missing
	// partition means metadata and store disagree, so check explicitly.
	names, err := m.cli.Database(m.db).ListCollectionNames(ctx, bson.M{"name": partitionID})
	if err != nil {
		return m.classify(err)
	}
	if len(names) == 0 {
		return ErrNotFound
	}
	if err := m.cli.Database(m.db).Collection(partitionID).Drop(ctx); err != nil {
		return m.classify(err)
	}
	return nil
}

// classify maps driver errors onto the package's error contract.
func (m *mongoManager) classify(err error) error {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case codeNamespaceExists:
			return ErrAlreadyExists
		case codeNamespaceNotFound:
			return ErrNotFound
		}
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.log.Warnw("unclassified partition store error", "err", err)
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
