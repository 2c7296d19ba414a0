package model

import "time"

type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "NEW"
	OrderStatusClosed   OrderStatus = "CLOSED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

type Order struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID    string `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_id"`
	CustomerID string `gorm:"type:varchar(64);not null;index" json:"customer_id"`
	// 確定の二重送信をはじく冪等キー。空は冪等性の対象外なので一意制約から外す。
	ConfirmationToken string      `gorm:"type:varchar(64);not null;uniqueIndex:ux_orders_token,where:confirmation_token <> ''" json:"-"`
	Color             string      `gorm:"type:varchar(64);not null" json:"color"`
	Size              string      `gorm:"type:varchar(16);not null" json:"size"`
	Qty               int64       `gorm:"not null" json:"qty"`
	Price             int64       `gorm:"not null" json:"price"`
	Total             int64       `gorm:"not null" json:"total"`
	Name              string      `gorm:"type:varchar(255);not null" json:"name"`
	Phone             string      `gorm:"type:varchar(16);not null" json:"phone"`
	Address           string      `gorm:"type:text;not null" json:"address"`
	Status            OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt         time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
