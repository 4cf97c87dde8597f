package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/event"
)

// 注文イベントの送信先（Kafkaなど）
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, ev event.OrderCreated) error
}

// 業務メトリクス
type Metrics interface {
	OrderCreated(ctx context.Context, total float64)
	OrderCancelled(ctx context.Context, from string)
	CartMutated(ctx context.Context, op string)
}

type Clock interface {
	Now() time.Time
}

type NopMetrics struct{}

func (NopMetrics) OrderCreated(context.Context, float64) {}
func (NopMetrics) OrderCancelled(context.Context, string) {}
func (NopMetrics) CartMutated(context.Context, string)    {}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
