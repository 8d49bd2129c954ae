package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/floworc/floworc/config"
)

// Stores bundles the opened persistence backends.
type Stores struct {
	Workflows  WorkflowStore
	Executions ExecutionStore

	// MongoDB handle when the mongo backend is in use; nil otherwise.
	// Shared with the vector store provisioner.
	MongoDB *mongo.Database

	closers []func(context.Context) error
}

// Close releases every backend connection.
func (s *Stores) Close(ctx context.Context) error {
	var firstErr error
	for _, closer := range s.closers {
		if err := closer(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open builds the stores selected by the configuration. The execution
// backend defaults to the workflow backend unless overridden.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "store"))

	stores := &Stores{}

	var (
		mongoDB  *mongo.Database
		sqliteDB *gorm.DB
	)

	openMongo := func() (*mongo.Database, error) {
		if mongoDB != nil {
			return mongoDB, nil
		}
		opts := options.Client().ApplyURI(cfg.Mongo.URI)
		if cfg.Mongo.Timeout > 0 {
			opts = opts.SetConnectTimeout(cfg.Mongo.Timeout)
		}
		client, err := mongo.Connect(opts)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		stores.closers = append(stores.closers, client.Disconnect)
		mongoDB = client.Database(cfg.Mongo.Database)
		stores.MongoDB = mongoDB
		logger.Info("mongo connected", zap.String("database", cfg.Mongo.Database))
		return mongoDB, nil
	}

	openSQLite := func() (*gorm.DB, error) {
		if sqliteDB != nil {
			return sqliteDB, nil
		}
		db, err := OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		sqliteDB = db
		logger.Info("sqlite opened", zap.String("path", cfg.SQLite.Path))
		return db, nil
	}

	switch cfg.Backend {
	case "", "memory":
		stores.Workflows = NewMemoryWorkflowStore()
	case "mongo":
		db, err := openMongo()
		if err != nil {
			return nil, err
		}
		stores.Workflows = NewMongoWorkflowStore(db)
	case "sqlite":
		db, err := openSQLite()
		if err != nil {
			return nil, err
		}
		stores.Workflows = NewSQLiteWorkflowStore(db)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}

	execBackend := cfg.ExecutionBackend
	if execBackend == "" {
		execBackend = cfg.Backend
	}
	switch execBackend {
	case "", "memory":
		stores.Executions = NewMemoryExecutionStore()
	case "mongo":
		db, err := openMongo()
		if err != nil {
			return nil, err
		}
		stores.Executions = NewMongoExecutionStore(db)
	case "sqlite":
		db, err := openSQLite()
		if err != nil {
			return nil, err
		}
		stores.Executions = NewSQLiteExecutionStore(db)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		stores.closers = append(stores.closers, func(context.Context) error {
			return client.Close()
		})
		stores.Executions = NewRedisExecutionStore(client, cfg.Redis.KeyPrefix)
		logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	default:
		return nil, fmt.Errorf("unknown execution store backend: %s", execBackend)
	}

	return stores, nil
}
