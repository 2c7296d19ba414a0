package handler_test

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"app/internal/clock"
	"app/internal/config"
	"app/internal/domain/chat"
	"app/internal/domain/model"
	"app/internal/handler"
	infraRepo "app/internal/infra/repository"
	"app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	testChannelSecret = "test-channel-secret"
	testJWTSecret     = "test-jwt-secret"
)

type memStockRepo struct {
	mu      sync.Mutex
	entries map[string]model.StockEntry
	order   []string
}

func newMemStockRepo(entries ...model.StockEntry) *memStockRepo {
	r := &memStockRepo{entries: map[string]model.StockEntry{}}
	for _, e := range entries {
		key := model.StockKey(e.Color, e.Size)
		r.entries[key] = e
		r.order = append(r.order, key)
	}
	return r
}

func (r *memStockRepo) List(ctx context.Context) ([]model.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StockEntry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key])
	}
	return out, nil
}

func (r *memStockRepo) Find(ctx context.Context, color string, size string) (model.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[model.StockKey(color, size)]
	if !ok {
		return model.StockEntry{}, repository.ErrNotFound
	}
	return e, nil
}

func (r *memStockRepo) UpdateStock(ctx context.Context, color string, size string, stock int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := model.StockKey(color, size)
	e, ok := r.entries[key]
	if !ok {
		return repository.ErrNotFound
	}
	e.Stock = stock
	r.entries[key] = e
	return nil
}

func (r *memStockRepo) Upsert(ctx context.Context, entry model.StockEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := model.StockKey(entry.Color, entry.Size)
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = entry
	return nil
}

type memOrderRepo struct {
	mu      sync.Mutex
	seq     int64
	byToken map[string]model.Order
	byID    map[string]model.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{byToken: map[string]model.Order{}, byID: map[string]model.Order{}}
}

// 空tokenは冪等照合の対象外（GORM実装と同じ契約）
func (r *memOrderRepo) Create(ctx context.Context, order model.Order) (bool, model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ConfirmationToken != "" {
		if existing, ok := r.byToken[order.ConfirmationToken]; ok {
			return false, existing, nil
		}
	}
	r.seq++
	order.ID = r.seq
	if order.ConfirmationToken != "" {
		r.byToken[order.ConfirmationToken] = order
	}
	r.byID[order.OrderID] = order
	return true, order, nil
}

func (r *memOrderRepo) FindByToken(ctx context.Context, token string) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byToken[token]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) FindByOrderID(ctx context.Context, orderID string) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	r.byID[orderID] = o
	r.byToken[o.ConfirmationToken] = o
	return nil
}

func (r *memOrderRepo) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Order, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o)
	}
	return out, nil
}

type nullMessenger struct{}

func (nullMessenger) Reply(ctx context.Context, replyToken string, msgs []chat.Message) error {
	return nil
}

func (nullMessenger) Push(ctx context.Context, to string, msgs []chat.Message) error {
	return nil
}

type fixedIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *fixedIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return string(rune('a'+g.n%26)) + "0000000000"
}

type testEnv struct {
	e        *echo.Echo
	sessions repository.SessionRepository
	orders   *memOrderRepo
	stock    *memStockRepo
	clk      *clock.Fixed
}

func newTestEnv(passwordHash string) *testEnv {
	cfg := config.Config{
		Colors:            []string{"Dark Coffee", "Navy"},
		Sizes:             []string{"XS", "S", "M", "L", "XL", "XXL"},
		DefaultPrice:      1290,
		SessionTTLSeconds: 1800,
		LowStockAlert:     3,
		LineChannelSecret: testChannelSecret,
		JWTSecret:         testJWTSecret,
		AdminPasswordHash: passwordHash,
		GoEnv:             "test",
	}

	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sessions := infraRepo.NewSessionMemoryRepository(clk, 30*time.Minute)
	stockRepo := newMemStockRepo(
		model.StockEntry{Color: "Navy", Size: "M", Stock: 5, Price: 1390},
	)
	orderRepo := newMemOrderRepo()
	logger := log.New(io.Discard, "", 0)

	stockUC := usecase.NewStockUsecase(stockRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, &fixedIDGen{}, clk)
	convUC := usecase.NewConversationUsecase(cfg, sessions, stockUC, orderUC, nullMessenger{}, &fixedIDGen{}, logger)
	adminUC := usecase.NewAdminUsecase(cfg, orderUC, stockUC, clk)

	e := server.New(cfg, handler.NewWebhookHandler(cfg.LineChannelSecret, convUC, logger), handler.NewAdminHandler(adminUC))
	return &testEnv{e: e, sessions: sessions, orders: orderRepo, stock: stockRepo, clk: clk}
}
