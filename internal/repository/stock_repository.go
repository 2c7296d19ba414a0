package repository

import (
	"context"

	"app/internal/domain/model"
)

// 在庫台帳。(color, size) 1行に対する読み書きだけを約束する。
// 行単位の直列化は呼び出し側（usecase）のキーロックが担う。
type StockRepository interface {
	List(ctx context.Context) ([]model.StockEntry, error)
	// 見つからないときは ErrNotFound
	Find(ctx context.Context, color string, size string) (model.StockEntry, error)
	UpdateStock(ctx context.Context, color string, size string, stock int64) error
	Upsert(ctx context.Context, entry model.StockEntry) error
}
