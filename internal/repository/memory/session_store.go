package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	models "redspec/internal/domain/models/prd"
	prdRepo "redspec/internal/domain/repositories/prd"
)

// SessionStore keeps sessions in process memory.
// Sessions are stored as JSON snapshots so callers never share state with it.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewSessionStore creates an empty in-memory session store
func NewSessionStore() prdRepo.SessionStore {
	return &SessionStore{sessions: make(map[string][]byte)}
}

// Get returns a copy of the stored session, or nil
func (s *SessionStore) Get(ctx context.Context, documentID string) (*models.Session, error) {
	s.mu.RLock()
	data, ok := s.sessions[documentID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", documentID, err)
	}
	return &session, nil
}

// Put stores a snapshot of session
func (s *SessionStore) Put(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.DocumentID, err)
	}

	s.mu.Lock()
	s.sessions[session.DocumentID] = data
	s.mu.Unlock()
	return nil
}

// Delete drops a session
func (s *SessionStore) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	delete(s.sessions, documentID)
	s.mu.Unlock()
	return nil
}
