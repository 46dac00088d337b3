package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/chatfield/chatfield-go/checkpoint"
	"github.com/chatfield/chatfield-go/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// setupStore builds the configured checkpoint backend. The returned
// close function releases the backend's connections.
func setupStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (checkpoint.Store, func(), error) {
	switch cfg.StoreCfg.Backend {
	case config.StoreMemory:
		logger.Info("using in-memory checkpoint store",
			zap.Duration("ttl", cfg.StoreCfg.TTL),
		)
		return checkpoint.NewMemoryStore(cfg.StoreCfg.TTL), func() {}, nil
	case config.StorePostgres:
		return setupPostgresStore(ctx, &cfg.StoreCfg, logger)
	case config.StoreRedis:
		return setupRedisStore(ctx, &cfg.StoreCfg, logger)
	case config.StoreMongo:
		return setupMongoStore(ctx, &cfg.StoreCfg, logger)
	default:
		return nil, nil, fmt.Errorf("unknown checkpoint backend %q", cfg.StoreCfg.Backend)
	}
}

func setupPostgresStore(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) (checkpoint.Store, func(), error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("postgres connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
	)

	// Migrations open their own connection over database/sql; the pool
	// stays dedicated to checkpoint traffic.
	if err := checkpoint.RunMigrations(cfg.DatabaseURL); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("checkpoint migrations applied")

	return checkpoint.NewPostgresStore(pool), pool.Close, nil
}

func setupRedisStore(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) (checkpoint.Store, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("redis connection established",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
	)

	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.Error("redis close failed", zap.Error(err))
		}
	}
	return checkpoint.NewRedisStore(client, cfg.TTL), closeClient, nil
}

func setupMongoStore(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) (checkpoint.Store, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("mongo connection established",
		zap.String("database", cfg.MongoDatabase),
	)

	disconnect := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			logger.Error("mongo disconnect failed", zap.Error(err))
		}
	}
	return checkpoint.NewMongoStore(client.Database(cfg.MongoDatabase)), disconnect, nil
}
