package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	//無ければ作る。行ロック（FOR UPDATE）付き
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	//注文確定用。トランザクション内で呼ぶこと
	FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error)
	//明細を全削除（カート自体は残す）
	Clear(ctx context.Context, cartID int64) error
}
