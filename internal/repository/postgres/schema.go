package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables and indexes if they don't exist.
// Sections are stored as JSON rather than JSONB so key order survives.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				title VARCHAR(255) NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				sections JSON,
				status VARCHAR(50) NOT NULL DEFAULT 'draft',
				template VARCHAR(50) NOT NULL DEFAULT 'standard',
				github_repo VARCHAR(500),
				created_by VARCHAR(255),
				metadata JSONB,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.Prds),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				prd_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				role VARCHAR(20) NOT NULL,
				content TEXT NOT NULL,
				timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				metadata JSONB
			)
		`, tables.Conversations, tables.Prds),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sprds_status ON %s(status)`, tables.Prefix, tables.Prds),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sprds_created_at ON %s(created_at DESC)`, tables.Prefix, tables.Prds),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sconversations_prd_ts ON %s(prd_id, timestamp)`, tables.Prefix, tables.Conversations),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the tables in reverse dependency order
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	all := tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+all[i]+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
	}
	return nil
}

// ClearData deletes every document; turns go with them by cascade
func ClearData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Prds); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}
