package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"app/internal/clock"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/repository"
)

// AdminUsecaseは運用者向けREST APIの裏側。
// ログインは単一運用者アカウント（bcryptハッシュを環境変数で渡す）。
type AdminUsecase struct {
	cfg    config.Config
	orders *OrderUsecase
	stock  *StockUsecase
	clk    clock.Clock
}

func NewAdminUsecase(cfg config.Config, orders *OrderUsecase, stock *StockUsecase, clk clock.Clock) *AdminUsecase {
	return &AdminUsecase{cfg: cfg, orders: orders, stock: stock, clk: clk}
}

// Loginはパスワードを照合してアクセストークンを返す
func (u *AdminUsecase) Login(ctx context.Context, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(u.cfg.AdminPasswordHash), []byte(password)); err != nil {
		return "", NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := u.clk.Now()
	claims := jwt.MapClaims{
		"sub":  "operator",
		"role": "ADMIN",
		"iat":  now.Unix(),
		"exp":  now.Add(12 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (u *AdminUsecase) ListOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ListRecent(ctx, limit)
}

func (u *AdminUsecase) CloseOrder(ctx context.Context, orderID string) error {
	err := u.orders.Close(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "order not found")
	}
	return err
}

type SetStockInput struct {
	Color string
	Size  string
	Stock int64
	Price int64
}

// SetStockは台帳の1行を作成または上書きする
func (u *AdminUsecase) SetStock(ctx context.Context, in SetStockInput) error {
	if in.Color == "" || in.Size == "" {
		return NewHTTPError(http.StatusBadRequest, "color and size are required")
	}
	if !u.knownSize(in.Size) {
		return NewHTTPError(http.StatusBadRequest, "unknown size")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must not be negative")
	}
	if in.Price <= 0 {
		in.Price = u.cfg.DefaultPrice
	}
	return u.stock.Upsert(ctx, in.Color, in.Size, in.Stock, in.Price)
}

func (u *AdminUsecase) ListStock(ctx context.Context) ([]model.StockEntry, error) {
	return u.stock.List(ctx)
}

// サイズは設定されたサイズ集合に限る（色は台帳側で自由に増やせる）
func (u *AdminUsecase) knownSize(size string) bool {
	for _, s := range u.cfg.Sizes {
		if model.NormSize(s) == model.NormSize(size) {
			return true
		}
	}
	return false
}
