package event

import "time"

const TopicOrderCreated = "order.created"

type OrderCreatedItem struct {
	ProductID *int64 `json:"product_id"`
	SKU       string `json:"sku"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// 注文確定後に1回だけ送る
type OrderCreated struct {
	OrderID     int64              `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	UserID      int64              `json:"user_id"`
	TotalPrice  string             `json:"total_price"`
	Items       []OrderCreatedItem `json:"items"`
	Timestamp   time.Time          `json:"timestamp"`
}
