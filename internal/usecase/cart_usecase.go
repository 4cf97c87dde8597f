package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カートの読み書きは全部トランザクション内（カート行をロックする）
type CartUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
	metrics     Metrics
}

func NewCartUsecase(tx repo.TransactionManager, productRepo repo.ProductRepository, metrics Metrics) *CartUsecase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &CartUsecase{tx: tx, productRepo: productRepo, metrics: metrics}
}

type CartProductSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	SKU       string  `json:"sku"`
	Price     string  `json:"price"`
	SalePrice *string `json:"sale_price"`
}

type CartVariantSummary struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	PriceAdjustment string `json:"price_adjustment"`
}

type CartItemResponse struct {
	ID        int64               `json:"id"`
	Product   CartProductSummary  `json:"product"`
	Variant   *CartVariantSummary `json:"variant"`
	Quantity  int64               `json:"quantity"`
	UnitPrice string              `json:"unit_price"`
	Subtotal  string              `json:"subtotal"`
}

type CartResponse struct {
	ID         int64              `json:"id"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice string             `json:"total_price"`
	ItemCount  int                `json:"item_count"`
}

type AddCartItemInput struct {
	ProductID int64
	VariantID *int64
	// nilなら1
	Quantity *int64
}

type UpdateCartItemInput struct {
	ItemID int64
	//省略時は1。0以下は削除
	Quantity *int64
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		out, err = buildCartResponse(ctx, r.CartItems(), cart.ID)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// AddItem はカートに追加（同一の商品＋バリエーションは数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}
	if in.ProductID <= 0 {
		return CartResponse{}, validation("product_id is required")
	}
	qty := int64(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return CartResponse{}, validation("quantity must be at least 1")
	}

	// 商品チェック（公開のみ）
	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, notFound("product not found")
		}
		return CartResponse{}, dbError(err)
	}

	// バリエーションはその商品のものだけ
	if in.VariantID != nil {
		if _, err := u.productRepo.FindVariant(ctx, *in.VariantID, in.ProductID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return CartResponse{}, notFound("variant not found")
			}
			return CartResponse{}, dbError(err)
		}
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// カート行をロックしてから加算（同時追加でも数量が消えない）
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		if err := r.CartItems().UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.VariantID, qty); err != nil {
			return dbError(err)
		}
		out, err = buildCartResponse(ctx, r.CartItems(), cart.ID)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}

	u.metrics.CartMutated(ctx, "add")
	return out, nil
}

// 数量変更。0以下なら削除
func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}
	if in.ItemID <= 0 {
		return CartResponse{}, validation("item_id is required")
	}
	qty := int64(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}

		//自分のカートの明細か
		if _, err := r.CartItems().FindByIDAndCartID(ctx, in.ItemID, cart.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("cart item not found")
			}
			return dbError(err)
		}

		if qty <= 0 {
			err = r.CartItems().DeleteByID(ctx, in.ItemID)
		} else {
			err = r.CartItems().UpdateQuantity(ctx, in.ItemID, qty)
		}
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("cart item not found")
		}
		if err != nil {
			return dbError(err)
		}

		out, err = buildCartResponse(ctx, r.CartItems(), cart.ID)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}

	u.metrics.CartMutated(ctx, "update")
	return out, nil
}

// 明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, itemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}
	if itemID <= 0 {
		return CartResponse{}, validation("item_id is required")
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}

		if _, err := r.CartItems().FindByIDAndCartID(ctx, itemID, cart.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("cart item not found")
			}
			return dbError(err)
		}
		if err := r.CartItems().DeleteByID(ctx, itemID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("cart item not found")
			}
			return dbError(err)
		}

		out, err = buildCartResponse(ctx, r.CartItems(), cart.ID)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}

	u.metrics.CartMutated(ctx, "remove")
	return out, nil
}

// 空のカートでも成功
func (u *CartUsecase) Clear(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return dbError(err)
		}
		out = CartResponse{ID: cart.ID, Items: []CartItemResponse{}, TotalPrice: zeroMoney}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	u.metrics.CartMutated(ctx, "clear")
	return out, nil
}

func buildCartResponse(ctx context.Context, items repo.CartItemRepository, cartID int64) (CartResponse, error) {
	list, err := items.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, dbError(err)
	}
	return toCartResponse(cartID, list), nil
}

func toCartResponse(cartID int64, list []model.CartItem) CartResponse {
	out := CartResponse{
		ID:         cartID,
		Items:      make([]CartItemResponse, 0, len(list)),
		TotalPrice: money(pricing.CartTotal(list)),
		ItemCount:  len(list),
	}
	for _, it := range list {
		unit := pricing.UnitPrice(it.Product, it.Variant)
		row := CartItemResponse{
			ID: it.ID,
			Product: CartProductSummary{
				ID:        it.Product.ID,
				Name:      it.Product.Name,
				Slug:      it.Product.Slug,
				SKU:       it.Product.SKU,
				Price:     money(it.Product.Price),
				SalePrice: nullMoney(it.Product.SalePrice),
			},
			Quantity:  it.Quantity,
			UnitPrice: money(unit),
			Subtotal:  money(pricing.Subtotal(unit, it.Quantity)),
		}
		if it.Variant != nil {
			row.Variant = &CartVariantSummary{
				ID:              it.Variant.ID,
				Name:            it.Variant.Name,
				SKU:             it.Variant.SKU,
				PriceAdjustment: money(it.Variant.PriceAdjustment),
			}
		}
		out.Items = append(out.Items, row)
	}
	return out
}
