package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"app/internal/clock"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionGormRepository struct {
	db  *gorm.DB
	clk clock.Clock
	ttl time.Duration
}

func NewSessionGormRepository(db *gorm.DB, clk clock.Clock, ttl time.Duration) *SessionGormRepository {
	return &SessionGormRepository{db: db, clk: clk, ttl: ttl}
}

// GetはTTL切れの行を ErrNotFound として隠す（遅延失効）
func (r *SessionGormRepository) Get(ctx context.Context, customerID string) (model.Session, error) {
	var rec model.SessionRecord
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Session{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Session{}, err
	}

	s := model.Session{
		State:     model.SessionState(rec.State),
		UpdatedAt: rec.UpdatedAt,
	}
	if s.Expired(r.clk.Now(), r.ttl) {
		return model.Session{}, repo.ErrNotFound
	}

	if rec.Data != "" {
		if err := json.Unmarshal([]byte(rec.Data), &s.Data); err != nil {
			// 壊れたdataは空セッション扱い
			return model.Session{}, repo.ErrNotFound
		}
	}
	return s, nil
}

func (r *SessionGormRepository) Set(ctx context.Context, customerID string, state model.SessionState, data model.SessionData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	rec := model.SessionRecord{
		CustomerID: customerID,
		State:      string(state),
		Data:       string(b),
		UpdatedAt:  r.clk.Now(),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "data", "updated_at"}),
		}).
		Create(&rec).Error
}

func (r *SessionGormRepository) Clear(ctx context.Context, customerID string) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&model.SessionRecord{}).Error
}
