package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"redspec/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Prefix        string
	Prds          string
	Conversations string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Prefix:        prefix,
		Prds:          fmt.Sprintf("%sprds", prefix),
		Conversations: fmt.Sprintf("%sconversations", prefix),
	}
}

// All returns the table names in creation order
func (t *TableNames) All() []string {
	return []string{t.Prds, t.Conversations}
}

// PoolConfig sizes the connection pool
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// DefaultPoolConfig is used by the server and the seed command
var DefaultPoolConfig = PoolConfig{MaxConns: 25, MinConns: 5}

// CreateConnectionPool creates a pgx pool and verifies it with a ping.
//
// PgBouncer in transaction pooling mode (port 6543 on Supabase) does not
// support prepared statements, so that port switches to
// QueryExecModeCacheDescribe unless default_query_exec_mode was set
// explicitly in the URL. Table prefixes are interpolated before statements
// reach the server, so each environment gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string, poolCfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = poolCfg.MaxConns
	config.MinConns = poolCfg.MinConns

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there is none
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
