package memory

import (
	"context"
	"fmt"
	"sort"

	"redspec/internal/domain"
	models "redspec/internal/domain/models/prd"
)

type turnRepository struct {
	store *Store
}

func (r *turnRepository) Create(ctx context.Context, turn *models.Turn) error {
	return r.CreateBatch(ctx, []models.Turn{*turn})
}

func (r *turnRepository) CreateBatch(ctx context.Context, turns []models.Turn) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range turns {
		if _, ok := r.store.docs[t.DocumentID]; !ok {
			return fmt.Errorf("prd %s: %w", t.DocumentID, domain.ErrNotFound)
		}
	}
	for _, t := range turns {
		if r.store.seen[t.ID] {
			continue
		}
		r.store.seen[t.ID] = true
		t.Display = ""
		r.store.turns[t.DocumentID] = append(r.store.turns[t.DocumentID], t)
	}
	return nil
}

func (r *turnRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]models.Turn, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	turns := make([]models.Turn, len(r.store.turns[documentID]))
	copy(turns, r.store.turns[documentID])
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].Timestamp.Before(turns[j].Timestamp)
	})
	if limit > 0 && len(turns) > limit {
		turns = turns[:limit]
	}
	for i := range turns {
		if turns[i].Metadata != nil {
			turns[i].Question = turns[i].Metadata.Question
		}
	}
	return turns, nil
}

func (r *turnRepository) ListRecent(ctx context.Context, limit int) ([]models.RecentConversation, error) {
	if limit <= 0 {
		limit = 10
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	recent := []models.RecentConversation{}
	for docID, turns := range r.store.turns {
		if len(turns) == 0 {
			continue
		}
		last := turns[0]
		for _, t := range turns[1:] {
			if !t.Timestamp.Before(last.Timestamp) {
				last = t
			}
		}
		doc := r.store.docs[docID]
		recent = append(recent, models.RecentConversation{
			DocumentID:      docID,
			Title:           doc.Title,
			CreatedAt:       doc.CreatedAt,
			UpdatedAt:       doc.UpdatedAt,
			LastMessage:     last.Content,
			LastMessageRole: last.Role,
			LastMessageTime: last.Timestamp,
		})
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].LastMessageTime.After(recent[j].LastMessageTime)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}
