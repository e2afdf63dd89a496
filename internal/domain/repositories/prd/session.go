package prd

import (
	"context"

	"redspec/internal/domain/models/prd"
)

// SessionStore caches the working state of documents between exchanges.
// It is a cache hydrated from and flushed to the document store, except for
// pending turns, which live only here until a flush succeeds.
type SessionStore interface {
	// Get returns the session for a document, or nil when none is cached
	Get(ctx context.Context, documentID string) (*prd.Session, error)

	// Put stores the session, replacing any previous one
	Put(ctx context.Context, session *prd.Session) error

	// Delete drops the session for a document
	Delete(ctx context.Context, documentID string) error
}
