package repository

import (
	"context"

	"app/internal/domain/model"
)

// 会話セッションの保管。TTL切れは実装側で吸収し、呼び出し側には
// ErrNotFound として見せる（期限切れの行を信用させない）。
type SessionRepository interface {
	Get(ctx context.Context, customerID string) (model.Session, error)
	Set(ctx context.Context, customerID string, state model.SessionState, data model.SessionData) error
	// Clear は Set(customerID, IDLE, {}) と論理的に同じ
	Clear(ctx context.Context, customerID string) error
}
