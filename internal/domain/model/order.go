package model

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// キャンセルできるのはこの2つだけ
var CancellableOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusProcessing}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

func (s OrderStatus) Cancellable() bool {
	for _, c := range CancellableOrderStatuses {
		if s == c {
			return true
		}
	}
	return false
}

// 画面表示用
func (s OrderStatus) Display() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"type:varchar(20);not null;uniqueIndex" json:"order_number"`
	UserID      *int64 `gorm:"index" json:"user_id"`

	//住所が消されても注文は残す（NULLになる）
	ShippingAddressID *int64   `gorm:"index" json:"shipping_address_id"`
	ShippingAddress   *Address `gorm:"foreignKey:ShippingAddressID;constraint:OnDelete:SET NULL" json:"shipping_address,omitempty"`
	BillingAddressID  *int64   `gorm:"index" json:"billing_address_id"`
	BillingAddress    *Address `gorm:"foreignKey:BillingAddressID;constraint:OnDelete:SET NULL" json:"billing_address,omitempty"`

	//作成時点で確定した金額（あとから再計算しない）
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	ShippingPrice decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"shipping_price"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"tax_amount"`

	Status         OrderStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`
	PaymentMethod  *string     `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentID      *string     `gorm:"type:varchar(100)" json:"payment_id"`
	IsPaid         bool        `gorm:"not null;default:false" json:"is_paid"`
	PaidAt         *time.Time  `json:"paid_at"`
	Notes          *string     `gorm:"type:text" json:"notes"`
	TrackingNumber *string     `gorm:"type:varchar(100)" json:"tracking_number"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 注文番号は最初の保存時に1回だけ採番する
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber == "" {
		o.OrderNumber = NewOrderNumber()
	}
	return nil
}

// ORD- + 12桁の16進（大文字）
func NewOrderNumber() string {
	id := uuid.New()
	return "ORD-" + strings.ToUpper(hex.EncodeToString(id[:])[:12])
}
