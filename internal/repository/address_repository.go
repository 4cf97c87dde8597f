package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//作成後はaddress（IDなどが埋まったもの）を返す
	//IsDefault=trueなら同じ種類の他の住所のdefaultを外す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//ユーザーが持つ住所一覧を返す
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	//本人の住所だけを1件取得（他人の住所はErrNotFound）
	FindByIDAndUserID(ctx context.Context, addressID int64, userID int64) (model.Address, error)

	//住所の更新（本人のもののみ）
	Update(ctx context.Context, address model.Address) error

	//住所の削除（本人のもののみ）
	Delete(ctx context.Context, addressID int64, userID int64) error

	//同じ種類の中でdefaultを切り替える
	SetDefault(ctx context.Context, userID int64, addressID int64) error
}
