package model

import (
	"strings"
	"time"
)

// SessionStateは「次に何の入力を待っているか」を表す
type SessionState string

const (
	StateIdle             SessionState = "IDLE"
	StateWaitColor        SessionState = "WAIT_COLOR"
	StateWaitSize         SessionState = "WAIT_SIZE"
	StateWaitQty          SessionState = "WAIT_QTY"
	StateWaitItemConfirm  SessionState = "WAIT_ITEM_CONFIRM"
	StateWaitName         SessionState = "WAIT_NAME"
	StateWaitPhone        SessionState = "WAIT_PHONE"
	StateWaitAddress      SessionState = "WAIT_ADDRESS"
	StateWaitFinalConfirm SessionState = "WAIT_FINAL_CONFIRM"
	StateAdminChat        SessionState = "ADMIN_CHAT"
)

// SessionDataは注文フローで集めた途中経過
type SessionData struct {
	Color             string `json:"color,omitempty"`
	Size              string `json:"size,omitempty"`
	Qty               int64  `json:"qty,omitempty"`
	Price             int64  `json:"price,omitempty"`
	Total             int64  `json:"total,omitempty"`
	Name              string `json:"name,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	ConfirmationToken string `json:"confirmation_token,omitempty"`
	ConfirmationLock  bool   `json:"confirmation_lock,omitempty"`
}

type Session struct {
	State     SessionState
	Data      SessionData
	UpdatedAt time.Time
}

// TTLを過ぎたセッションは「無い」扱い（物理削除はしない）
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.UpdatedAt) > ttl
}

// sessionsテーブルの1行
type SessionRecord struct {
	CustomerID string    `gorm:"primaryKey;type:varchar(64)" json:"customer_id"`
	State      string    `gorm:"type:varchar(32);not null" json:"state"`
	Data       string    `gorm:"type:text;not null" json:"-"`
	UpdatedAt  time.Time `gorm:"not null;index" json:"updated_at"`
}

func (SessionRecord) TableName() string { return "sessions" }

// 色・サイズの正規化キー（大文字小文字と前後空白を吸収）
func StockKey(color string, size string) string {
	return NormColor(color) + "|" + NormSize(size)
}

func NormColor(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

func NormSize(size string) string {
	return strings.ToUpper(strings.TrimSpace(size))
}
