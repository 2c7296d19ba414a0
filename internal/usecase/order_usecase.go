package usecase

import (
	"context"
	"strings"

	"app/internal/clock"
	"app/internal/domain/model"
	"app/internal/repository"
)

// 注文IDとトークンの採番を差し替え可能にする
type IDGenerator interface {
	NewID() string
}

type OrderUsecase struct {
	repo repository.OrderRepository
	ids  IDGenerator
	clk  clock.Clock
}

func NewOrderUsecase(repo repository.OrderRepository, ids IDGenerator, clk clock.Clock) *OrderUsecase {
	return &OrderUsecase{repo: repo, ids: ids, clk: clk}
}

type PlaceOrderInput struct {
	CustomerID string
	Data       model.SessionData
}

// PlaceOrderはconfirmation_tokenをキーに冪等な注文作成を行う。
// 既存tokenなら既存注文、createdはfalse。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (model.Order, bool, error) {
	d := in.Data

	order := model.Order{
		OrderID:           u.newOrderID(),
		CustomerID:        in.CustomerID,
		ConfirmationToken: d.ConfirmationToken,
		Color:             d.Color,
		Size:              d.Size,
		Qty:               d.Qty,
		Price:             d.Price,
		// 作成時点で total == qty * price を保証する
		Total:     d.Qty * d.Price,
		Name:      d.Name,
		Phone:     d.Phone,
		Address:   d.Address,
		Status:    model.OrderStatusNew,
		CreatedAt: u.clk.Now(),
	}

	created, stored, err := u.repo.Create(ctx, order)
	if err != nil {
		return model.Order{}, false, err
	}
	return stored, created, nil
}

func (u *OrderUsecase) FindByToken(ctx context.Context, token string) (model.Order, error) {
	return u.repo.FindByToken(ctx, token)
}

func (u *OrderUsecase) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	return u.repo.ListRecent(ctx, limit)
}

// Closeは発送・入金確認後の手動クローズ。見つからなければErrNotFound。
func (u *OrderUsecase) Close(ctx context.Context, orderID string) error {
	return u.repo.UpdateStatus(ctx, orderID, model.OrderStatusClosed)
}

// 注文IDは元システムのHDプレフィックスを踏襲する
func (u *OrderUsecase) newOrderID() string {
	raw := strings.ToUpper(strings.ReplaceAll(u.ids.NewID(), "-", ""))
	if len(raw) > 10 {
		raw = raw[:10]
	}
	return "HD" + raw
}
