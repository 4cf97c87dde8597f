package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// 保存・取得を約束
// 見つからない場合は (nil, nil) を返す
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 最終ログインなど
	Update(ctx context.Context, user *model.User) error
	//指定された項目だけ更新
	UpdateProfile(ctx context.Context, userID int64, in ProfileUpdate) error
	UpdatePreferredLanguage(ctx context.Context, userID int64, lang string) error
	//パスワード更新と同時にtoken_versionを+1（既存トークンを失効）
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}
