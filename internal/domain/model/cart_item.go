package model

import "time"

// カートの明細
// 価格は保存しない（表示・注文時に商品から計算する）
type CartItem struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64  `gorm:"not null;index" json:"cart_id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	VariantID *int64 `gorm:"index" json:"variant_id"`
	Quantity  int64  `gorm:"not null" json:"quantity"`

	Product Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
	Variant *ProductVariant `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE" json:"variant,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
