package prd

import (
	"context"

	"redspec/internal/domain/models/prd"
)

// TurnRepository defines data access operations for conversation turns
type TurnRepository interface {
	// Create inserts one turn
	Create(ctx context.Context, turn *prd.Turn) error

	// CreateBatch inserts turns in order. Turns that already exist (same ID)
	// are skipped so a retried flush never duplicates rows.
	CreateBatch(ctx context.Context, turns []prd.Turn) error

	// ListByDocument returns turns of a document in timestamp order.
	// limit <= 0 returns all turns.
	ListByDocument(ctx context.Context, documentID string, limit int) ([]prd.Turn, error)

	// ListRecent returns the latest turn of each document, most recent first
	ListRecent(ctx context.Context, limit int) ([]prd.RecentConversation, error)
}
