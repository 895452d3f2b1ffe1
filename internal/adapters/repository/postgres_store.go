package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/giapha/core/internal/infrastructure/database"
	"github.com/giapha/core/internal/ports"
)

// PostgresStore keeps blobs in the site_blobs table created by the embedded
// migrations.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Driver() string { return "postgres" }

func (s *PostgresStore) Put(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO site_blobs (blob_key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (blob_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, key, data); err != nil {
			return fmt.Errorf("failed to upsert blob %s: %w", key, err)
		}
		return nil
	})
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.DB.GetContext(ctx, &payload, `SELECT payload FROM site_blobs WHERE blob_key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ports.ErrBlobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %s: %w", key, err)
	}
	return payload, nil
}

// Stats reports the connection pool.
func (s *PostgresStore) Stats() map[string]interface{} {
	return s.db.GetConnectionInfo()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
