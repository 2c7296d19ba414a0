package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/clock"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/redis/go-redis/v9"
)

// session:{customer_id} -> JSON。失効はredisのTTLに任せる。
const sessionKeyFormat = "session:%s"

type SessionRedisRepository struct {
	rdb *redis.Client
	clk clock.Clock
	ttl time.Duration
}

func NewSessionRedisRepository(rdb *redis.Client, clk clock.Clock, ttl time.Duration) *SessionRedisRepository {
	return &SessionRedisRepository{rdb: rdb, clk: clk, ttl: ttl}
}

type sessionValue struct {
	State     model.SessionState `json:"state"`
	Data      model.SessionData  `json:"data"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (r *SessionRedisRepository) Get(ctx context.Context, customerID string) (model.Session, error) {
	b, err := r.rdb.Get(ctx, sessionKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Session{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Session{}, err
	}

	var v sessionValue
	if err := json.Unmarshal(b, &v); err != nil {
		return model.Session{}, repo.ErrNotFound
	}

	s := model.Session{State: v.State, Data: v.Data, UpdatedAt: v.UpdatedAt}
	// TTLはredisが持つが、時計ずれに備えて自前でも見る
	if s.Expired(r.clk.Now(), r.ttl) {
		return model.Session{}, repo.ErrNotFound
	}
	return s, nil
}

func (r *SessionRedisRepository) Set(ctx context.Context, customerID string, state model.SessionState, data model.SessionData) error {
	v := sessionValue{State: state, Data: data, UpdatedAt: r.clk.Now()}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKey(customerID), b, r.ttl).Err()
}

func (r *SessionRedisRepository) Clear(ctx context.Context, customerID string) error {
	return r.rdb.Del(ctx, sessionKey(customerID)).Err()
}

func sessionKey(customerID string) string {
	return fmt.Sprintf(sessionKeyFormat, customerID)
}
