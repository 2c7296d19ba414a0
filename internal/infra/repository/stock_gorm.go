package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockGormRepository struct {
	db *gorm.DB
}

func NewStockGormRepository(db *gorm.DB) *StockGormRepository {
	return &StockGormRepository{db: db}
}

func (r *StockGormRepository) List(ctx context.Context) ([]model.StockEntry, error) {
	var items []model.StockEntry
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *StockGormRepository) Find(ctx context.Context, color string, size string) (model.StockEntry, error) {
	var e model.StockEntry
	err := r.db.WithContext(ctx).
		Where("LOWER(color) = ? AND UPPER(size) = ?", model.NormColor(color), model.NormSize(size)).
		First(&e).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.StockEntry{}, repo.ErrNotFound
	}
	if err != nil {
		return model.StockEntry{}, err
	}
	return e, nil
}

// 新しい在庫値を書き込む。読み→判定→書きの直列化はusecase側のキーロック前提。
func (r *StockGormRepository) UpdateStock(ctx context.Context, color string, size string, stock int64) error {
	res := r.db.WithContext(ctx).Model(&model.StockEntry{}).
		Where("LOWER(color) = ? AND UPPER(size) = ?", model.NormColor(color), model.NormSize(size)).
		Update("stock", stock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 管理者の在庫登録・上書き。
// 列は正規化して書く。"navy"と"Navy"が別行になると、正規化キーで
// 照合するFind/UpdateStockが1論理キー複数行を踏んでしまうため。
func (r *StockGormRepository) Upsert(ctx context.Context, entry model.StockEntry) error {
	entry = normalizeEntry(entry)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "color"}, {Name: "size"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock", "price", "updated_at"}),
		}).
		Create(&entry).Error
}

func normalizeEntry(entry model.StockEntry) model.StockEntry {
	entry.Color = model.NormColor(entry.Color)
	entry.Size = model.NormSize(entry.Size)
	return entry
}
