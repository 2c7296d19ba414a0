package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// Createは同じconfirmation_tokenの行が既にあればそれを返す（行は増やさない）。
// 同時に来た二重確定はtokenの一意制約に衝突させてから既存行を引き直す。
// 空tokenは冪等性の対象外で、照合せずそのまま作る。
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (bool, model.Order, error) {
	if order.ConfirmationToken == "" {
		if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
			return false, model.Order{}, err
		}
		return true, order, nil
	}

	var created bool
	var stored model.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Order
		err := tx.Where("confirmation_token = ?", order.ConfirmationToken).First(&existing).Error
		if err == nil {
			stored = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&order).Error; err != nil {
			// レースに負けた側は既存行を返す
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if err2 := tx.Where("confirmation_token = ?", order.ConfirmationToken).
					First(&existing).Error; err2 == nil {
					stored = existing
					return nil
				}
			}
			return err
		}

		created = true
		stored = order
		return nil
	})
	if err != nil {
		return false, model.Order{}, err
	}
	return created, stored, nil
}

func (r *OrderGormRepository) FindByToken(ctx context.Context, token string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("confirmation_token = ?", token).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindByOrderID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var items []model.Order
	err := r.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
