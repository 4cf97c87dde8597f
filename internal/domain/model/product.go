package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  int64  `gorm:"not null;index" json:"category_id"`
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	Slug        string `gorm:"type:varchar(220);not null;uniqueIndex" json:"slug"`
	SKU         string `gorm:"column:sku;type:varchar(20);not null;uniqueIndex" json:"sku"`
	Description string `gorm:"type:text" json:"description"`

	//通常価格
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	//セール価格（NULLならセールなし）
	SalePrice decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"sale_price"`

	IsNew      bool  `gorm:"not null;default:false" json:"is_new"`
	IsFeatured bool  `gorm:"not null;default:false" json:"is_featured"`
	IsActive   bool  `gorm:"not null;default:true" json:"is_active"`
	InStock    bool  `gorm:"not null;default:true" json:"in_stock"`
	StockQty   int64 `gorm:"not null;default:0" json:"stock_qty"`

	Images   []ProductImage   `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 商品バリエーション（容量・色など）
type ProductVariant struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	SKU       string `gorm:"column:sku;type:varchar(20);not null;uniqueIndex" json:"sku"`

	//商品価格への加算額（マイナスも可）
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_adjustment"`

	StockQty  int64     `gorm:"not null;default:0" json:"stock_qty"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 画像のメタ情報のみ（ファイル本体は外部ストレージ）
type ProductImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"column:url;type:varchar(500);not null" json:"url"`
	AltText   string    `gorm:"type:varchar(200)" json:"alt_text"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
