package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")
	//ユニーク制約違反
	ErrDuplicate = errors.New("duplicate")
)

// 一覧（公開商品のみ・ページング）
type ProductListQuery struct {
	Page  int
	Limit int
	//空なら全カテゴリ
	CategorySlug string
}

// カタログ（カテゴリ・商品・バリエーション）の読み取り
type ProductRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)

	//公開中の商品を1件（画像・バリエーション付き）
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//その商品に属するバリエーションだけを返す
	FindVariant(ctx context.Context, variantID int64, productID int64) (model.ProductVariant, error)
}
