package prd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"redspec/internal/domain"
	models "redspec/internal/domain/models/prd"
	prdRepo "redspec/internal/domain/repositories/prd"
	"redspec/internal/repository/postgres"
)

// PostgresTurnRepository implements the TurnRepository interface
type PostgresTurnRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTurnRepository creates a new turn repository
func NewTurnRepository(config *postgres.RepositoryConfig) prdRepo.TurnRepository {
	return &PostgresTurnRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts one turn
func (r *PostgresTurnRepository) Create(ctx context.Context, turn *models.Turn) error {
	return r.CreateBatch(ctx, []models.Turn{*turn})
}

// CreateBatch inserts turns in a single statement. Rows whose id already
// exists are skipped, which makes retried flushes safe.
func (r *PostgresTurnRepository) CreateBatch(ctx context.Context, turns []models.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, prd_id, role, content, timestamp, metadata)
		VALUES
	`, r.tables.Conversations)

	// 6 parameters per turn
	args := make([]interface{}, 0, len(turns)*6)
	for i, turn := range turns {
		if turn.Timestamp.IsZero() {
			turn.Timestamp = time.Now()
		}
		if i > 0 {
			query += ","
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", i*6+1, i*6+2, i*6+3, i*6+4, i*6+5, i*6+6)

		args = append(args,
			turn.ID,
			turn.DocumentID,
			turn.Role,
			turn.Content,
			turn.Timestamp,
			turn.Metadata, // pgx handles struct -> JSONB (nil becomes NULL)
		)
	}
	query += " ON CONFLICT (id) DO NOTHING"

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, args...); err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("prd %s: %w", turns[0].DocumentID, domain.ErrNotFound)
		}
		return postgres.WrapError("create turns", err)
	}

	return nil
}

// ListByDocument returns turns in timestamp order
func (r *PostgresTurnRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]models.Turn, error) {
	query := fmt.Sprintf(`
		SELECT id, prd_id, role, content, timestamp, metadata
		FROM %s
		WHERE prd_id = $1
		ORDER BY timestamp ASC, id ASC
	`, r.tables.Conversations)
	args := []interface{}{documentID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("prd %s: %w", documentID, domain.ErrNotFound)
		}
		return nil, postgres.WrapError("list turns", err)
	}
	defer rows.Close()

	turns := []models.Turn{}
	for rows.Next() {
		var turn models.Turn
		if err := rows.Scan(
			&turn.ID,
			&turn.DocumentID,
			&turn.Role,
			&turn.Content,
			&turn.Timestamp,
			&turn.Metadata, // pgx handles JSONB -> struct (NULL stays nil)
		); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if turn.Metadata != nil {
			turn.Question = turn.Metadata.Question
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

// ListRecent returns the latest turn of each document joined with its title
func (r *PostgresTurnRepository) ListRecent(ctx context.Context, limit int) ([]models.RecentConversation, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.title, p.created_at, p.updated_at, c.content, c.role, c.timestamp
		FROM %s p
		INNER JOIN (
			SELECT DISTINCT ON (prd_id) prd_id, content, role, timestamp
			FROM %s
			ORDER BY prd_id, timestamp DESC
		) c ON c.prd_id = p.id
		ORDER BY c.timestamp DESC
		LIMIT $1
	`, r.tables.Prds, r.tables.Conversations)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, limit)
	if err != nil {
		return nil, postgres.WrapError("list recent conversations", err)
	}
	defer rows.Close()

	recent := []models.RecentConversation{}
	for rows.Next() {
		var rc models.RecentConversation
		if err := rows.Scan(
			&rc.DocumentID,
			&rc.Title,
			&rc.CreatedAt,
			&rc.UpdatedAt,
			&rc.LastMessage,
			&rc.LastMessageRole,
			&rc.LastMessageTime,
		); err != nil {
			return nil, fmt.Errorf("scan recent conversation: %w", err)
		}
		recent = append(recent, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent conversations: %w", err)
	}

	return recent, nil
}
