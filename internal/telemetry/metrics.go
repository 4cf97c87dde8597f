package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Prometheus exporter付きのMeterProvider。/metrics用のhandlerを返す
func InitMeterProvider(serviceName string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(serviceName)),
	)
	otel.SetMeterProvider(mp)

	// GC・goroutine数など
	if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, nil, err
	}

	return promhttp.Handler(), mp.Shutdown, nil
}

// 業務カウンタ（注文作成・キャンセル・カート更新）
type StoreMetrics struct {
	ordersCreated   metric.Int64Counter
	ordersCancelled metric.Int64Counter
	orderRevenue    metric.Float64Counter
	cartMutations   metric.Int64Counter
}

func NewStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {
	created, err := meter.Int64Counter("storefront.orders.created",
		metric.WithDescription("Number of orders placed"))
	if err != nil {
		return nil, err
	}
	cancelled, err := meter.Int64Counter("storefront.orders.cancelled",
		metric.WithDescription("Number of orders cancelled by their owner"))
	if err != nil {
		return nil, err
	}
	revenue, err := meter.Float64Counter("storefront.orders.revenue",
		metric.WithDescription("Sum of order totals"))
	if err != nil {
		return nil, err
	}
	cart, err := meter.Int64Counter("storefront.cart.mutations",
		metric.WithDescription("Cart add/update/remove/clear operations"))
	if err != nil {
		return nil, err
	}
	return &StoreMetrics{
		ordersCreated:   created,
		ordersCancelled: cancelled,
		orderRevenue:    revenue,
		cartMutations:   cart,
	}, nil
}

func (m *StoreMetrics) OrderCreated(ctx context.Context, total float64) {
	m.ordersCreated.Add(ctx, 1)
	m.orderRevenue.Add(ctx, total)
}

func (m *StoreMetrics) OrderCancelled(ctx context.Context, from string) {
	m.ordersCancelled.Add(ctx, 1, metric.WithAttributes(attribute.String("from_status", from)))
}

func (m *StoreMetrics) CartMutated(ctx context.Context, op string) {
	m.cartMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
