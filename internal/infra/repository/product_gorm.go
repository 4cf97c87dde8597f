package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開中のカテゴリ（名前順）
func (r *ProductGormRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&list).Error; err != nil {
		return []model.Category{}, err
	}
	return list, nil
}

// 公開商品のみをページング付きで返す。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{}).Where("products.is_active = ?", true)

	if q.CategorySlug != "" {
		tx = tx.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ? AND categories.is_active = ?", q.CategorySlug, true)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("is_primary desc, id asc") }).
		Order("products.created_at desc").Order("products.id desc").
		Offset(offset).Limit(q.Limit).
		Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// IDで公開商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("is_primary desc, id asc") }).
		Preload("Variants", "is_active = ?", true).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		return model.Product{}, mapNotFound(err)
	}
	return p, nil
}

// 他の商品のバリエーションはNotFound扱い
func (r *ProductGormRepository) FindVariant(ctx context.Context, variantID int64, productID int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ? AND is_active = ?", variantID, productID, true).
		First(&v).Error
	if err != nil {
		return model.ProductVariant{}, mapNotFound(err)
	}
	return v, nil
}
