package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	// 同じconfirmation_tokenなら既存行を返す（冪等）。createdは新規作成したかどうか。
	Create(ctx context.Context, order model.Order) (created bool, stored model.Order, err error)
	FindByToken(ctx context.Context, token string) (model.Order, error)
	FindByOrderID(ctx context.Context, orderID string) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
}
