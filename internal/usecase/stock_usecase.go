package usecase

import (
	"context"
	"errors"
	"sort"

	"app/internal/domain/model"
	"app/internal/lock"
	"app/internal/repository"
)

// StockUsecaseは在庫台帳の読みと安全なdeductを提供する。
// バックエンドの行ストアには複文トランザクションが無い前提なので、
// deductは(color,size)キーのロックで直列化した読み→判定→書きで行う。
type StockUsecase struct {
	repo  repository.StockRepository
	locks *lock.KeyedMutex
}

func NewStockUsecase(repo repository.StockRepository) *StockUsecase {
	return &StockUsecase{repo: repo, locks: lock.New()}
}

func (u *StockUsecase) List(ctx context.Context) ([]model.StockEntry, error) {
	return u.repo.List(ctx)
}

// Upsertは管理APIからの台帳書き換え。進行中のdeductと衝突しないよう
// 同じキーロックの中で行う。
func (u *StockUsecase) Upsert(ctx context.Context, color string, size string, stock int64, price int64) error {
	key := model.StockKey(color, size)
	u.locks.Lock(key)
	defer u.locks.Unlock(key)

	return u.repo.Upsert(ctx, model.StockEntry{
		Color: color,
		Size:  size,
		Stock: stock,
		Price: price,
	})
}

// 在庫が1つでもあるサイズを持つ色
func (u *StockUsecase) AvailableColors(ctx context.Context) ([]string, error) {
	entries, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var colors []string
	for _, e := range entries {
		if e.Stock <= 0 {
			continue
		}
		key := model.NormColor(e.Color)
		if !seen[key] {
			seen[key] = true
			colors = append(colors, e.Color)
		}
	}
	sort.Strings(colors)
	return colors, nil
}

// 指定色で在庫>0のサイズ（台帳の行順）
func (u *StockUsecase) AvailableSizes(ctx context.Context, color string) ([]string, error) {
	entries, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var sizes []string
	for _, e := range entries {
		if model.NormColor(e.Color) != model.NormColor(color) {
			continue
		}
		if e.Stock > 0 {
			sizes = append(sizes, e.Size)
		}
	}
	return sizes, nil
}

// 不明な(color,size)は0
func (u *StockUsecase) Stock(ctx context.Context, color string, size string) (int64, error) {
	e, err := u.repo.Find(ctx, color, size)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return e.Stock, nil
}

func (u *StockUsecase) Price(ctx context.Context, color string, size string) (int64, error) {
	e, err := u.repo.Find(ctx, color, size)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return e.Price, nil
}

// Deductは在庫を減らす。足りない場合は (false, 現在値) で何も書かない。
// 同一(color,size)への呼び出しはキーロックで厳密に順序づけられる。
func (u *StockUsecase) Deduct(ctx context.Context, color string, size string, qty int64) (bool, int64, error) {
	key := model.StockKey(color, size)
	u.locks.Lock(key)
	defer u.locks.Unlock(key)

	e, err := u.repo.Find(ctx, color, size)
	if errors.Is(err, repository.ErrNotFound) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}

	if qty <= 0 || e.Stock < qty {
		return false, e.Stock, nil
	}

	remaining := e.Stock - qty
	if err := u.repo.UpdateStock(ctx, color, size, remaining); err != nil {
		return false, e.Stock, err
	}
	return true, remaining, nil
}
