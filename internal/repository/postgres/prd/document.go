package prd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"redspec/internal/domain"
	models "redspec/internal/domain/models/prd"
	prdRepo "redspec/internal/domain/repositories/prd"
	"redspec/internal/repository/postgres"
)

const documentColumns = `id, title, content, sections, status, template, github_repo, created_by, metadata, created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) prdRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	sections, err := encodeSections(doc.Sections)
	if err != nil {
		return postgres.WrapError("create document", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, content, sections, status, template, github_repo, created_by, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, r.tables.Prds)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		doc.ID,
		doc.Title,
		doc.Content,
		sections, // json.RawMessage keeps key order (nil becomes NULL)
		doc.Status,
		doc.Template,
		doc.GithubRepo,
		doc.CreatedBy,
		doc.Metadata, // pgx handles map -> JSONB (nil becomes NULL)
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("prd '%s' already exists", doc.ID),
				ResourceType: "prd",
				ResourceID:   doc.ID,
			}
		}
		return postgres.WrapError("create document", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, r.tables.Prds)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("prd %s: %w", id, domain.ErrNotFound)
		}
		return nil, postgres.WrapError("get document", err)
	}

	return doc, nil
}

// List returns documents matching the filter, newest first
func (r *PostgresDocumentRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Document, error) {
	filter.ApplyDefaults()

	var where []string
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		where = append(where, fmt.Sprintf("created_by = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, documentColumns, r.tables.Prds)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.WrapError("list documents", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// Update writes every mutable column
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	sections, err := encodeSections(doc.Sections)
	if err != nil {
		return postgres.WrapError("update document", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content = $2, sections = $3, status = $4, template = $5,
		    github_repo = $6, metadata = $7, updated_at = $8
		WHERE id = $9
	`, r.tables.Prds)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.Title,
		doc.Content,
		sections,
		doc.Status,
		doc.Template,
		doc.GithubRepo,
		doc.Metadata,
		doc.UpdatedAt,
		doc.ID,
	)
	if err != nil {
		return postgres.WrapError("update document", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("prd %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdateContent writes title, content and sections only
func (r *PostgresDocumentRepository) UpdateContent(ctx context.Context, doc *models.Document) error {
	sections, err := encodeSections(doc.Sections)
	if err != nil {
		return postgres.WrapError("update document content", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content = $2, sections = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Prds)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, doc.Title, doc.Content, sections, doc.UpdatedAt, doc.ID)
	if err != nil {
		return postgres.WrapError("update document content", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("prd %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a document; its turns are removed by cascade
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Prds)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("prd %s: %w", id, domain.ErrNotFound)
		}
		return postgres.WrapError("delete document", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("prd %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// scanner is implemented by both pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row scanner) (*models.Document, error) {
	var doc models.Document
	var sections json.RawMessage
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Content,
		&sections, // JSON -> raw bytes, decoded below to keep order
		&doc.Status,
		&doc.Template,
		&doc.GithubRepo,
		&doc.CreatedBy,
		&doc.Metadata, // pgx handles JSONB -> map
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sections != nil {
		decoded, err := models.DecodeSections(sections)
		if err != nil {
			return nil, fmt.Errorf("prd %s: %w", doc.ID, err)
		}
		doc.Sections = decoded
	}

	return &doc, nil
}

// encodeSections returns nil for a nil mapping so the column stays NULL
func encodeSections(s *models.Sections) (json.RawMessage, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode sections: %w", err)
	}
	return data, nil
}
