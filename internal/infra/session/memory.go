// Package session provides a process-local wizard session store. It backs
// single-instance deployments and unit tests; multi-instance deployments use
// the Redis store instead.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
)

type entry struct {
	sess      model.WizardSession
	expiresAt time.Time
}

type MemoryStore struct {
	mu    sync.Mutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

var _ repository.WizardSessionRepository = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func key(adminID, chatID int64) string {
	return fmt.Sprintf("%d:%d", adminID, chatID)
}

func (s *MemoryStore) Get(ctx context.Context, adminID, chatID int64) (*model.WizardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key(adminID, chatID)]
	if !ok {
		return nil, domain.ErrNoSession
	}
	if s.now().After(e.expiresAt) {
		delete(s.items, key(adminID, chatID))
		return nil, domain.ErrNoSession
	}
	cp := e.sess
	return &cp, nil
}

// Set stores the session and restarts its TTL. Every wizard transition goes
// through here, so the TTL is sliding.
func (s *MemoryStore) Set(ctx context.Context, sess *model.WizardSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key(sess.AdminID, sess.ChatID)] = entry{
		sess:      *sess,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, adminID, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key(adminID, chatID))
	return nil
}
