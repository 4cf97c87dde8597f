package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 注文時点の商品情報のスナップショット。
// 商品側があとで変わっても、ここは変えない。
type OrderItem struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"not null;index" json:"order_id"`

	//商品が削除されたらNULL
	ProductID *int64   `gorm:"index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"-"`

	ProductName    string          `gorm:"type:varchar(200);not null" json:"product_name"`
	ProductVariant *string         `gorm:"type:varchar(100)" json:"product_variant"`
	ProductSKU     string          `gorm:"column:product_sku;type:varchar(50);not null" json:"product_sku"`
	Quantity       int64           `gorm:"not null;default:1" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 小計は外から渡された値を信用せず、毎回計算し直す
func (it *OrderItem) RecalculateSubtotal() {
	it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}

func (it *OrderItem) BeforeSave(tx *gorm.DB) error {
	it.RecalculateSubtotal()
	return nil
}
