package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// テスト用のインメモリDB。WithinTxでfnがerrorを返したら状態を巻き戻す
type memStore struct {
	mu sync.Mutex

	nextID     int64
	categories []model.Category
	products   map[int64]model.Product
	variants   map[int64]model.ProductVariant
	carts      map[int64]model.Cart
	cartItems  []model.CartItem
	addresses  map[int64]model.Address
	orders     map[int64]model.Order
	orderItems []model.OrderItem
	auditLogs  []model.AuditLog

	// 注文明細の保存を失敗させる
	failOrderItems error
}

func newMemStore() *memStore {
	return &memStore{
		nextID:    100,
		products:  map[int64]model.Product{},
		variants:  map[int64]model.ProductVariant{},
		carts:     map[int64]model.Cart{},
		addresses: map[int64]model.Address{},
		orders:    map[int64]model.Order{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	nextID     int64
	carts      map[int64]model.Cart
	cartItems  []model.CartItem
	addresses  map[int64]model.Address
	orders     map[int64]model.Order
	orderItems []model.OrderItem
	auditLogs  []model.AuditLog
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		nextID:     s.nextID,
		carts:      cloneMap(s.carts),
		cartItems:  append([]model.CartItem(nil), s.cartItems...),
		addresses:  cloneMap(s.addresses),
		orders:     cloneMap(s.orders),
		orderItems: append([]model.OrderItem(nil), s.orderItems...),
		auditLogs:  append([]model.AuditLog(nil), s.auditLogs...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.nextID = snap.nextID
	s.carts = snap.carts
	s.cartItems = snap.cartItems
	s.addresses = snap.addresses
	s.orders = snap.orders
	s.orderItems = snap.orderItems
	s.auditLogs = snap.auditLogs
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ---- seed helpers ----

func (s *memStore) addProduct(p model.Product) model.Product {
	if p.ID == 0 {
		p.ID = s.id()
	}
	if p.SKU == "" {
		p.SKU = "SKU-" + p.Name
	}
	p.IsActive = true
	s.products[p.ID] = p
	return p
}

func (s *memStore) addVariant(v model.ProductVariant) model.ProductVariant {
	if v.ID == 0 {
		v.ID = s.id()
	}
	v.IsActive = true
	s.variants[v.ID] = v
	return v
}

func (s *memStore) addAddress(a model.Address) model.Address {
	a.ID = s.id()
	if a.AddressType == "" {
		a.AddressType = model.AddressTypeShipping
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	s.addresses[a.ID] = a
	return a
}

func (s *memStore) itemsOfUser(userID int64) []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.carts {
		if c.UserID != nil && *c.UserID == userID {
			var out []model.CartItem
			for _, it := range s.cartItems {
				if it.CartID == c.ID {
					out = append(out, it)
				}
			}
			return out
		}
	}
	return nil
}

// ---- TransactionManager ----

type memTx struct{ s *memStore }

func (t memTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	snap := t.s.snapshot()
	if err := fn(memRepos{s: t.s}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type memRepos struct{ s *memStore }

func (r memRepos) Orders() repo.OrderRepository         { return memOrders{r.s} }
func (r memRepos) OrderItems() repo.OrderItemRepository { return memOrderItems{r.s} }
func (r memRepos) Carts() repo.CartRepository           { return memCarts{r.s} }
func (r memRepos) CartItems() repo.CartItemRepository   { return memCarts{r.s} }
func (r memRepos) Addresses() repo.AddressRepository    { return memAddresses{r.s} }
func (r memRepos) AuditLogs() repo.AuditLogRepository   { return memAudit{r.s} }

// ---- catalog ----

type memProducts struct{ s *memStore }

func (m memProducts) ListCategories(ctx context.Context) ([]model.Category, error) {
	return m.s.categories, nil
}

func (m memProducts) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range m.s.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := m.s.products[id]
	if !ok || !p.IsActive {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (m memProducts) FindVariant(ctx context.Context, variantID int64, productID int64) (model.ProductVariant, error) {
	v, ok := m.s.variants[variantID]
	if !ok || v.ProductID != productID {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	return v, nil
}

// ---- carts ----

type memCarts struct{ s *memStore }

func (m memCarts) findCart(userID int64) (model.Cart, bool) {
	for _, c := range m.s.carts {
		if c.UserID != nil && *c.UserID == userID {
			return c, true
		}
	}
	return model.Cart{}, false
}

func (m memCarts) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	if c, ok := m.findCart(userID); ok {
		return c, nil
	}
	uid := userID
	c := model.Cart{ID: m.s.id(), UserID: &uid, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.s.carts[c.ID] = c
	return c, nil
}

func (m memCarts) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	if c, ok := m.findCart(userID); ok {
		return c, nil
	}
	return model.Cart{}, repo.ErrNotFound
}

func (m memCarts) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	return m.FindByUserID(ctx, userID)
}

func (m memCarts) Clear(ctx context.Context, cartID int64) error {
	kept := m.s.cartItems[:0:0]
	for _, it := range m.s.cartItems {
		if it.CartID != cartID {
			kept = append(kept, it)
		}
	}
	m.s.cartItems = kept
	return nil
}

func (m memCarts) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	out := []model.CartItem{}
	for _, it := range m.s.cartItems {
		if it.CartID != cartID {
			continue
		}
		it.Product = m.s.products[it.ProductID]
		if it.VariantID != nil {
			v := m.s.variants[*it.VariantID]
			it.Variant = &v
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memCarts) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, variantID *int64, addQty int64) error {
	for i, it := range m.s.cartItems {
		if it.CartID == cartID && it.ProductID == productID && sameVariant(it.VariantID, variantID) {
			m.s.cartItems[i].Quantity += addQty
			return nil
		}
	}
	m.s.cartItems = append(m.s.cartItems, model.CartItem{
		ID:        m.s.id(),
		CartID:    cartID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  addQty,
	})
	return nil
}

func sameVariant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m memCarts) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	for i, it := range m.s.cartItems {
		if it.ID == cartItemID {
			m.s.cartItems[i].Quantity = qty
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m memCarts) DeleteByID(ctx context.Context, cartItemID int64) error {
	for i, it := range m.s.cartItems {
		if it.ID == cartItemID {
			m.s.cartItems = append(m.s.cartItems[:i:i], m.s.cartItems[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m memCarts) FindByIDAndCartID(ctx context.Context, cartItemID int64, cartID int64) (model.CartItem, error) {
	for _, it := range m.s.cartItems {
		if it.ID == cartItemID && it.CartID == cartID {
			return it, nil
		}
	}
	return model.CartItem{}, repo.ErrNotFound
}

// ---- addresses ----

type memAddresses struct{ s *memStore }

func (m memAddresses) clearDefault(userID int64, t model.AddressType) {
	for id, a := range m.s.addresses {
		if a.UserID == userID && a.AddressType == t && a.IsDefault {
			a.IsDefault = false
			m.s.addresses[id] = a
		}
	}
}

func (m memAddresses) Create(ctx context.Context, a model.Address) (model.Address, error) {
	if a.IsDefault {
		m.clearDefault(a.UserID, a.AddressType)
	}
	a.ID = m.s.id()
	m.s.addresses[a.ID] = a
	return a, nil
}

func (m memAddresses) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var out []model.Address
	for _, a := range m.s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memAddresses) FindByIDAndUserID(ctx context.Context, addressID int64, userID int64) (model.Address, error) {
	a, ok := m.s.addresses[addressID]
	if !ok || a.UserID != userID {
		return model.Address{}, repo.ErrNotFound
	}
	return a, nil
}

func (m memAddresses) Update(ctx context.Context, a model.Address) error {
	cur, ok := m.s.addresses[a.ID]
	if !ok || cur.UserID != a.UserID {
		return repo.ErrNotFound
	}
	if a.IsDefault {
		m.clearDefault(a.UserID, a.AddressType)
	}
	m.s.addresses[a.ID] = a
	return nil
}

func (m memAddresses) Delete(ctx context.Context, addressID int64, userID int64) error {
	a, ok := m.s.addresses[addressID]
	if !ok || a.UserID != userID {
		return repo.ErrNotFound
	}
	delete(m.s.addresses, addressID)
	// ON DELETE SET NULL
	for id, o := range m.s.orders {
		if o.ShippingAddressID != nil && *o.ShippingAddressID == addressID {
			o.ShippingAddressID = nil
		}
		if o.BillingAddressID != nil && *o.BillingAddressID == addressID {
			o.BillingAddressID = nil
		}
		m.s.orders[id] = o
	}
	return nil
}

func (m memAddresses) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	a, ok := m.s.addresses[addressID]
	if !ok || a.UserID != userID {
		return repo.ErrNotFound
	}
	m.clearDefault(userID, a.AddressType)
	a.IsDefault = true
	m.s.addresses[addressID] = a
	return nil
}

// ---- orders ----

type memOrders struct{ s *memStore }

func (m memOrders) withDetail(o model.Order) model.Order {
	o.Items = nil
	for _, it := range m.s.orderItems {
		if it.OrderID == o.ID {
			o.Items = append(o.Items, it)
		}
	}
	if o.ShippingAddressID != nil {
		if a, ok := m.s.addresses[*o.ShippingAddressID]; ok {
			o.ShippingAddress = &a
		}
	}
	if o.BillingAddressID != nil {
		if a, ok := m.s.addresses[*o.BillingAddressID]; ok {
			o.BillingAddress = &a
		}
	}
	return o
}

func (m memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := m.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return m.withDetail(o), nil
}

func (m memOrders) FindByIDAndUserID(ctx context.Context, orderID int64, userID int64) (model.Order, error) {
	o, ok := m.s.orders[orderID]
	if !ok || o.UserID == nil || *o.UserID != userID {
		return model.Order{}, repo.ErrNotFound
	}
	return m.withDetail(o), nil
}

func (m memOrders) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var all []model.Order
	for _, o := range m.s.orders {
		if o.UserID != nil && *o.UserID == userID {
			all = append(all, m.withDetail(o))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []model.Order{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m memOrders) Create(ctx context.Context, o *model.Order) error {
	_ = o.BeforeCreate(nil)
	o.ID = m.s.id()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	stored.Items = nil
	stored.ShippingAddress = nil
	stored.BillingAddress = nil
	m.s.orders[o.ID] = stored
	return nil
}

func (m memOrders) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	o, ok := m.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	m.s.orders[orderID] = o
	return nil
}

func (m memOrders) UpdateStatusFrom(ctx context.Context, orderID int64, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	o, ok := m.s.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if o.Status == f {
			o.Status = to
			m.s.orders[orderID] = o
			return true, nil
		}
	}
	return false, nil
}

func (m memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	var all []model.Order
	for _, o := range m.s.orders {
		if f.Status == "" || string(o.Status) == f.Status {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, int64(len(all)), nil
}

type memOrderItems struct{ s *memStore }

func (m memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error) {
	out := make([]model.OrderItem, 0, len(items))
	for i, it := range items {
		// 2件目以降で失敗させて途中まで書いた状態を作る
		if m.s.failOrderItems != nil && i > 0 {
			return nil, m.s.failOrderItems
		}
		it.ID = m.s.id()
		it.OrderID = orderID
		_ = it.BeforeSave(nil)
		m.s.orderItems = append(m.s.orderItems, it)
		out = append(out, it)
	}
	if m.s.failOrderItems != nil {
		return nil, m.s.failOrderItems
	}
	return out, nil
}

func (m memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	out := []model.OrderItem{}
	for _, it := range m.s.orderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

type memAudit struct{ s *memStore }

func (m memAudit) Create(ctx context.Context, log model.AuditLog) error {
	log.ID = m.s.id()
	m.s.auditLogs = append(m.s.auditLogs, log)
	return nil
}
