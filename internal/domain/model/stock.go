package model

import "time"

// 在庫台帳の1行。(color, size) が論理キーで、列は正規化済み
// （color小文字・size大文字）で保存する。
type StockEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	Color     string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_color_size,priority:1" json:"color"`
	Size      string    `gorm:"type:varchar(16);not null;uniqueIndex:ux_color_size,priority:2" json:"size"`
	Stock     int64     `gorm:"not null" json:"stock"`
	Price     int64     `gorm:"not null" json:"price"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (StockEntry) TableName() string { return "stock_entries" }
