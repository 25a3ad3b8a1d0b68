package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresBackend struct {
	db DB
}

func NewPostgresBackend(db DB) Backend {
	return &postgresBackend{db: db}
}

func (p *postgresBackend) Get(ctx context.Context, scope, key string) ([]byte, error) {
	query := `SELECT value FROM kv_entries WHERE scope = $1 AND key = $2`

	var value string
	err := p.db.QueryRow(ctx, query, scope, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select kv entry %s/%s: %w", scope, key, err)
	}

	return []byte(value), nil
}

func (p *postgresBackend) Put(ctx context.Context, scope, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (scope, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := p.db.Exec(ctx, query, scope, key, string(value)); err != nil {
		return fmt.Errorf("repository: failed to upsert kv entry %s/%s: %w", scope, key, err)
	}

	return nil
}

func (p *postgresBackend) Delete(ctx context.Context, scope, key string) error {
	query := `DELETE FROM kv_entries WHERE scope = $1 AND key = $2`
	if _, err := p.db.Exec(ctx, query, scope, key); err != nil {
		return fmt.Errorf("repository: failed to delete kv entry %s/%s: %w", scope, key, err)
	}

	return nil
}

func (p *postgresBackend) PurgeIdle(ctx context.Context, before time.Time, keep ...string) (int64, error) {
	if keep == nil {
		keep = []string{}
	}

	query := `
		DELETE FROM kv_entries
		WHERE scope <> ALL($2)
		  AND scope IN (
			SELECT scope FROM kv_entries
			GROUP BY scope
			HAVING MAX(updated_at) < $1
		  )
	`
	tag, err := p.db.Exec(ctx, query, before, keep)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to purge idle kv scopes: %w", err)
	}

	return tag.RowsAffected(), nil
}
