package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	models "redspec/internal/domain/models/prd"
	prdRepo "redspec/internal/domain/repositories/prd"
)

// SessionStore keeps sessions in Redis as JSON values with a sliding TTL
type SessionStore struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store. Keys are
// "<prefix>prd-session:<document id>".
func NewSessionStore(client *goredis.Client, prefix string, ttl time.Duration) prdRepo.SessionStore {
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

// NewClient parses a redis:// URL and verifies the connection
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *SessionStore) key(documentID string) string {
	return fmt.Sprintf("%sprd-session:%s", s.prefix, documentID)
}

// Get returns the session, or nil when the key is missing or expired
func (s *SessionStore) Get(ctx context.Context, documentID string) (*models.Session, error) {
	data, err := s.client.Get(ctx, s.key(documentID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session %s: %w", documentID, err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", documentID, err)
	}
	return &session, nil
}

// Put stores the session and refreshes its TTL. Sessions holding pending
// turns are stored without expiry.
func (s *SessionStore) Put(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.DocumentID, err)
	}

	ttl := s.ttl
	if session.Dirty() {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(session.DocumentID), data, ttl).Err(); err != nil {
		return fmt.Errorf("put session %s: %w", session.DocumentID, err)
	}
	return nil
}

// Delete drops the session
func (s *SessionStore) Delete(ctx context.Context, documentID string) error {
	if err := s.client.Del(ctx, s.key(documentID)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", documentID, err)
	}
	return nil
}
