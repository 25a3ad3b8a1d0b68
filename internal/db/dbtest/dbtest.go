// Package dbtest connects integration tests to the databases named by
// TEST_MONGO_URI and TEST_POSTGRES_DSN. When the variable is unset the
// returned handle is nil and the caller skips its tests.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Mongo opens a fresh database called name. cleanup drops it and
// disconnects.
func Mongo(ctx context.Context, name string) (*mongo.Database, func(), error) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		return nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to test mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping test mongo: %w", err)
	}

	db := client.Database(name)
	if err := db.Drop(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to reset test database %s: %w", name, err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	}

	return db, cleanup, nil
}

// Postgres opens a small pool on TEST_POSTGRES_DSN and applies the given
// migration files, paths relative to the test's package directory.
func Postgres(ctx context.Context, migrations ...string) (*pgxpool.Pool, func(), error) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		return nil, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse TEST_POSTGRES_DSN: %w", err)
	}
	poolConfig.MaxConns = 5

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to test postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping test postgres: %w", err)
	}

	for _, path := range migrations {
		schema, err := os.ReadFile(path)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to read migration %s: %w", path, err)
		}
		if _, err := pool.Exec(ctx, string(schema)); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to apply migration %s: %w", path, err)
		}
	}

	return pool, pool.Close, nil
}
