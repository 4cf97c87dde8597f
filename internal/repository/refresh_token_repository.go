package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// DBにはtokenのhashだけを持つ
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)

	//usedIDを使用済みにしてnextを保存する（1Tx）。
	//usedIDが使用済み・失効・存在しない時はErrRefreshTokenNotFound
	Rotate(ctx context.Context, usedID string, next *model.RefreshToken) error

	DeleteAllByUserID(ctx context.Context, userID int64) error
	DeleteByID(ctx context.Context, tokenID string) error
}
