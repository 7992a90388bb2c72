package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gogotex/docshare/internal/config"
	"github.com/gogotex/docshare/internal/database"
	"github.com/gogotex/docshare/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the single logical collection (or table) of documents.
const CollectionName = "documents"

// Open connects the configured backend with the startup retry budget,
// prepares its schema once, and returns the repository with a close func.
func Open(ctx context.Context, cfg *config.Config) (Repository, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		var client *mongo.Client
		err := database.Retry(ctx, "mongo connect", cfg.Store.StartupRetries, cfg.Store.StartupRetryDelay, func(ctx context.Context) error {
			c, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if err != nil {
				return err
			}
			client = c
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo after %d attempts: %w", cfg.Store.StartupRetries, err)
		}
		repo := NewMongoRepo(client.Database(cfg.MongoDB.Database).Collection(CollectionName))
		ictx, cancel := context.WithTimeout(ctx, cfg.Store.OperationTimeout)
		defer cancel()
		if err := repo.EnsureIndexes(ictx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		logger.Infof("using MongoDB store (database=%s)", cfg.MongoDB.Database)
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil

	case config.BackendSQLite:
		var db *sql.DB
		err := database.Retry(ctx, "sqlite open", cfg.Store.StartupRetries, cfg.Store.StartupRetryDelay, func(ctx context.Context) error {
			d, err := database.OpenSQLite(ctx, cfg.SQLite.Path, cfg.Store.OperationTimeout)
			if err != nil {
				return err
			}
			db = d
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite after %d attempts: %w", cfg.Store.StartupRetries, err)
		}
		repo := NewSQLiteRepo(db)
		mctx, cancel := context.WithTimeout(ctx, cfg.Store.OperationTimeout)
		defer cancel()
		if err := repo.Migrate(mctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Infof("using SQLite store (path=%s)", cfg.SQLite.Path)
		return repo, func() { _ = db.Close() }, nil

	case config.BackendMemory:
		logger.Warnf("using in-memory store; documents are lost on restart")
		return NewMemoryRepo(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
