package model

import "time"

// 1ユーザーにつきカートは1つ。注文後も明細だけ消して使い回す。
// SessionIDは未ログイン用（注文には使わない）
type Cart struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *int64     `gorm:"uniqueIndex" json:"user_id"`
	SessionID *string    `gorm:"type:varchar(100);index" json:"-"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
