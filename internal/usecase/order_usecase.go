package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/domain/event"
	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	calc      pricing.Calculator
	publisher OrderEventPublisher
	metrics   Metrics
	clock     Clock
	logger    *slog.Logger
}

type OrderDeps struct {
	// nilならイベント送信しない
	Publisher OrderEventPublisher
	Metrics   Metrics
	Clock     Clock
	Logger    *slog.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, calc pricing.Calculator, deps OrderDeps) *OrderUsecase {
	u := &OrderUsecase{
		tx:        tx,
		orders:    orders,
		calc:      calc,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		logger:    deps.Logger,
	}
	if u.metrics == nil {
		u.metrics = NopMetrics{}
	}
	if u.clock == nil {
		u.clock = SystemClock{}
	}
	if u.logger == nil {
		u.logger = slog.Default()
	}
	return u
}

type CreateOrderInput struct {
	ShippingAddressID int64
	BillingAddressID  int64
	PaymentMethod     *string
	Notes             *string
}

type OrderItemOutput struct {
	ID             int64   `json:"id"`
	ProductID      *int64  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	ProductVariant *string `json:"product_variant"`
	ProductSKU     string  `json:"product_sku"`
	Quantity       int64   `json:"quantity"`
	UnitPrice      string  `json:"unit_price"`
	Subtotal       string  `json:"subtotal"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"order_number"`
	Status          string            `json:"status"`
	StatusDisplay   string            `json:"status_display"`
	TotalPrice      string            `json:"total_price"`
	ShippingPrice   string            `json:"shipping_price"`
	TaxAmount       string            `json:"tax_amount"`
	PaymentMethod   *string           `json:"payment_method"`
	IsPaid          bool              `json:"is_paid"`
	PaidAt          *time.Time        `json:"paid_at"`
	Notes           *string           `json:"notes"`
	TrackingNumber  *string           `json:"tracking_number"`
	ShippingAddress *AddressDTO       `json:"shipping_address"`
	BillingAddress  *AddressDTO       `json:"billing_address"`
	Items           []OrderItemOutput `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// CreateOrder はカートから注文を作る。
// カート取得から明細作成・カートを空にするまでを1トランザクションで行い、
// 途中で失敗したら全部ロールバックする（リトライはしない）。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorized()
	}
	if in.ShippingAddressID <= 0 {
		return OrderOutput{}, validation("shipping_address_id is required")
	}
	if in.BillingAddressID <= 0 {
		return OrderOutput{}, validation("billing_address_id is required")
	}

	var created model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カートは行ロック
		cart, err := r.Carts().FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return emptyCart()
		}
		if err != nil {
			return dbError(err)
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return dbError(err)
		}
		if len(cartItems) == 0 {
			return emptyCart()
		}

		//住所は本人のものだけ
		shipping, err := r.Addresses().FindByIDAndUserID(ctx, in.ShippingAddressID, userID)
		if err != nil {
			return lookupError(err, "shipping address not found")
		}
		billing, err := r.Addresses().FindByIDAndUserID(ctx, in.BillingAddressID, userID)
		if err != nil {
			return lookupError(err, "billing address not found")
		}

		totals := u.calc.OrderTotals(pricing.CartTotal(cartItems))

		uid := userID
		order := &model.Order{
			UserID:            &uid,
			ShippingAddressID: &shipping.ID,
			BillingAddressID:  &billing.ID,
			TotalPrice:        totals.Total,
			ShippingPrice:     totals.Shipping,
			TaxAmount:         totals.Tax,
			Status:            model.OrderStatusPending,
			IsPaid:            false,
			PaymentMethod:     trimmedOrNil(in.PaymentMethod),
			Notes:             trimmedOrNil(in.Notes),
		}
		if err := r.Orders().Create(ctx, order); err != nil {
			return dbError(err)
		}

		//この時点の商品情報をスナップショット（カートの追加順）
		snapshots := make([]model.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			if ci.Product.ID == 0 {
				return notFound(fmt.Sprintf("product %d not found", ci.ProductID))
			}
			productID := ci.ProductID
			it := model.OrderItem{
				ProductID:   &productID,
				ProductName: ci.Product.Name,
				ProductSKU:  ci.Product.SKU,
				Quantity:    ci.Quantity,
				UnitPrice:   pricing.UnitPrice(ci.Product, ci.Variant),
			}
			if ci.Variant != nil {
				name := ci.Variant.Name
				it.ProductVariant = &name
			}
			snapshots = append(snapshots, it)
		}

		saved, err := r.OrderItems().CreateBulk(ctx, order.ID, snapshots)
		if err != nil {
			return dbError(err)
		}

		//カートは残して明細だけ消す
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return dbError(err)
		}

		order.Items = saved
		order.ShippingAddress = &shipping
		order.BillingAddress = &billing
		created = *order
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.OrderCreated(ctx, created.TotalPrice.InexactFloat64())
	u.publishOrderCreated(ctx, userID, created)

	return toOrderOutput(created), nil
}

// コミット後のベストエフォート。失敗してもリクエストは成功扱い
func (u *OrderUsecase) publishOrderCreated(ctx context.Context, userID int64, o model.Order) {
	if u.publisher == nil {
		return
	}

	ev := event.OrderCreated{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      userID,
		TotalPrice:  money(o.TotalPrice),
		Items:       make([]event.OrderCreatedItem, 0, len(o.Items)),
		Timestamp:   u.clock.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, event.OrderCreatedItem{
			ProductID: it.ProductID,
			SKU:       it.ProductSKU,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
		})
	}

	if err := u.publisher.PublishOrderCreated(ctx, ev); err != nil {
		u.logger.WarnContext(ctx, "failed to publish order.created",
			slog.String("order_number", o.OrderNumber),
			slog.String("error", err.Error()),
		)
	}
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, unauthorized()
	}
	if page < 1 {
		return OrderListOutput{}, validation("invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, validation("invalid limit")
	}

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, dbError(err)
	}

	out := OrderListOutput{Items: make([]OrderOutput, 0, len(orders)), Total: total, Page: page, Limit: limit}
	for _, o := range orders {
		out.Items = append(out.Items, toOrderOutput(o))
	}
	return out, nil
}

// 他人の注文は「存在しない扱い」にする
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, validation("invalid id")
	}

	o, err := u.orders.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		return OrderOutput{}, lookupError(err, "order not found")
	}
	return toOrderOutput(o), nil
}

// pending / processing のときだけキャンセルできる。在庫戻し・返金はしない
func (u *OrderUsecase) CancelOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, validation("invalid id")
	}

	var (
		out  model.Order
		from model.OrderStatus
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDAndUserID(ctx, orderID, userID)
		if err != nil {
			return lookupError(err, "order not found")
		}
		if !o.Status.Cancellable() {
			return invalidTransition(fmt.Sprintf("cannot cancel order in status %q", o.Status))
		}

		//読んだ後に状態が変わっていたら更新されない
		ok, err := r.Orders().UpdateStatusFrom(ctx, orderID, model.CancellableOrderStatuses, model.OrderStatusCancelled)
		if err != nil {
			return dbError(err)
		}
		if !ok {
			return invalidTransition("order status changed, cannot cancel")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  userID,
			Action:       model.AuditActionCancelOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   statusJSON(o.Status),
			AfterJSON:    statusJSON(model.OrderStatusCancelled),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(err)
		}

		from = o.Status
		o.Status = model.OrderStatusCancelled
		out = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.OrderCancelled(ctx, string(from))
	return toOrderOutput(out), nil
}

func lookupError(err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound(msg)
	}
	return dbError(err)
}

func statusJSON(s model.OrderStatus) string {
	return `{"status":"` + string(s) + `"}`
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func toOrderOutput(o model.Order) OrderOutput {
	out := OrderOutput{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         string(o.Status),
		StatusDisplay:  o.Status.Display(),
		TotalPrice:     money(o.TotalPrice),
		ShippingPrice:  money(o.ShippingPrice),
		TaxAmount:      money(o.TaxAmount),
		PaymentMethod:  o.PaymentMethod,
		IsPaid:         o.IsPaid,
		PaidAt:         o.PaidAt,
		Notes:          o.Notes,
		TrackingNumber: o.TrackingNumber,
		Items:          make([]OrderItemOutput, 0, len(o.Items)),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.ShippingAddress != nil {
		a := toAddressDTO(o.ShippingAddress)
		out.ShippingAddress = &a
	}
	if o.BillingAddress != nil {
		a := toAddressDTO(o.BillingAddress)
		out.BillingAddress = &a
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItemOutput{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			ProductVariant: it.ProductVariant,
			ProductSKU:     it.ProductSKU,
			Quantity:       it.Quantity,
			UnitPrice:      money(it.UnitPrice),
			Subtotal:       money(pricing.Subtotal(it.UnitPrice, it.Quantity)),
		})
	}
	return out
}
