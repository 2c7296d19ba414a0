package repository

import (
	"context"
	"sync"
	"time"

	"app/internal/clock"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// SessionMemoryRepositoryは開発・テスト用のインメモリ実装。
// 契約（TTLの遅延失効含む）は他のバックエンドと同じ。
type SessionMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	clk      clock.Clock
	ttl      time.Duration
}

func NewSessionMemoryRepository(clk clock.Clock, ttl time.Duration) *SessionMemoryRepository {
	return &SessionMemoryRepository{
		sessions: map[string]model.Session{},
		clk:      clk,
		ttl:      ttl,
	}
}

func (r *SessionMemoryRepository) Get(ctx context.Context, customerID string) (model.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[customerID]
	r.mu.RUnlock()

	if !ok {
		return model.Session{}, repo.ErrNotFound
	}
	if s.Expired(r.clk.Now(), r.ttl) {
		return model.Session{}, repo.ErrNotFound
	}
	return s, nil
}

func (r *SessionMemoryRepository) Set(ctx context.Context, customerID string, state model.SessionState, data model.SessionData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[customerID] = model.Session{
		State:     state,
		Data:      data,
		UpdatedAt: r.clk.Now(),
	}
	return nil
}

func (r *SessionMemoryRepository) Clear(ctx context.Context, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, customerID)
	return nil
}
