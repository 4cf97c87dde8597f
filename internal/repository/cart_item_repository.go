package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	//追加順。Product/Variantをpreloadして返す
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同じ(商品, バリエーション)は数量をプラス
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, variantID *int64, addQty int64) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	//そのカートの明細だけを返す
	FindByIDAndCartID(ctx context.Context, cartItemID int64, cartID int64) (model.CartItem, error)
}
