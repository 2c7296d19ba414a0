package usecase

import (
	"context"
	"sync"
	"testing"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 台帳のインメモリfake。contractはGORM実装と同じ。
type fakeStockRepo struct {
	mu      sync.Mutex
	entries map[string]model.StockEntry
	order   []string
}

func newFakeStockRepo(entries ...model.StockEntry) *fakeStockRepo {
	r := &fakeStockRepo{entries: map[string]model.StockEntry{}}
	for _, e := range entries {
		key := model.StockKey(e.Color, e.Size)
		r.entries[key] = e
		r.order = append(r.order, key)
	}
	return r
}

func (r *fakeStockRepo) List(ctx context.Context) ([]model.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StockEntry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key])
	}
	return out, nil
}

func (r *fakeStockRepo) Find(ctx context.Context, color string, size string) (model.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[model.StockKey(color, size)]
	if !ok {
		return model.StockEntry{}, repository.ErrNotFound
	}
	return e, nil
}

func (r *fakeStockRepo) UpdateStock(ctx context.Context, color string, size string, stock int64) error {
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

func (r *fakeStockRepo) Upsert(ctx context.Context, entry model.StockEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := model.StockKey(entry.Color, entry.Size)
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = entry
	return nil
}

func testLedger() *fakeStockRepo {
	return newFakeStockRepo(
		model.StockEntry{Color: "Dark Coffee", Size: "M", Stock: 3, Price: 1290},
		model.StockEntry{Color: "Dark Coffee", Size: "L", Stock: 0, Price: 1290},
		model.StockEntry{Color: "Navy", Size: "M", Stock: 2, Price: 1390},
		model.StockEntry{Color: "Navy", Size: "XL", Stock: 5, Price: 1390},
	)
}

func TestAvailableColors(t *testing.T) {
	uc := NewStockUsecase(testLedger())

	colors, err := uc.AvailableColors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Dark Coffee", "Navy"}, colors)
}

func TestAvailableColorsSkipsSoldOut(t *testing.T) {
	uc := NewStockUsecase(newFakeStockRepo(
		model.StockEntry{Color: "Dark Coffee", Size: "M", Stock: 0, Price: 1290},
		model.StockEntry{Color: "Navy", Size: "M", Stock: 1, Price: 1390},
	))

	colors, err := uc.AvailableColors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Navy"}, colors)
}

func TestAvailableSizes(t *testing.T) {
	uc := NewStockUsecase(testLedger())

	//在庫0のLは出ない。色は大文字小文字を区別しない。
	sizes, err := uc.AvailableSizes(context.Background(), "dark coffee")
	require.NoError(t, err)
	assert.Equal(t, []string{"M"}, sizes)

	sizes, err = uc.AvailableSizes(context.Background(), "Navy")
	require.NoError(t, err)
	assert.Equal(t, []string{"M", "XL"}, sizes)
}

func TestStockAndPriceUnknownPair(t *testing.T) {
	uc := NewStockUsecase(testLedger())
	ctx := context.Background()

	stock, err := uc.Stock(ctx, "Olive", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock)

	price, err := uc.Price(ctx, "Olive", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(0), price)
}

func TestDeduct(t *testing.T) {
	uc := NewStockUsecase(testLedger())
	ctx := context.Background()

	ok, remaining, err := uc.Deduct(ctx, "Navy", "M", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), remaining)

	//在庫不足は何も書かずに現在値を返す
	ok, remaining, err = uc.Deduct(ctx, "Navy", "M", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), remaining)

	stock, err := uc.Stock(ctx, "Navy", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stock)
}

func TestDeductInvalidQty(t *testing.T) {
	uc := NewStockUsecase(testLedger())
	ctx := context.Background()

	ok, _, err := uc.Deduct(ctx, "Navy", "M", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _, err = uc.Deduct(ctx, "Navy", "M", -1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeductUnknownPair(t *testing.T) {
	uc := NewStockUsecase(testLedger())

	ok, remaining, err := uc.Deduct(context.Background(), "Olive", "M", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), remaining)
}

func TestDeductConcurrent(t *testing.T) {
	uc := NewStockUsecase(newFakeStockRepo(
		model.StockEntry{Color: "Navy", Size: "M", Stock: 100, Price: 1390},
	))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := uc.Deduct(ctx, "Navy", "M", 1)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	stock, err := uc.Stock(ctx, "Navy", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock)
}

func TestDeductRaceLastPiece(t *testing.T) {
	//在庫2を2人が同時に2本ずつ要求 → 成功はちょうど1人
	uc := NewStockUsecase(newFakeStockRepo(
		model.StockEntry{Color: "Navy", Size: "M", Stock: 2, Price: 1390},
	))
	ctx := context.Background()

	results := make(chan bool, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := uc.Deduct(ctx, "Navy", "M", 2)
			assert.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	stock, err := uc.Stock(ctx, "Navy", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock)
}

func TestUpsert(t *testing.T) {
	uc := NewStockUsecase(testLedger())
	ctx := context.Background()

	require.NoError(t, uc.Upsert(ctx, "Olive", "M", 10, 1490))

	stock, err := uc.Stock(ctx, "Olive", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock)

	price, err := uc.Price(ctx, "Olive", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(1490), price)
}
