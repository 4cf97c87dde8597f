package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

type CategoryDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type ProductImageDTO struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
}

type ProductVariantDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	PriceAdjustment string `json:"price_adjustment"`
	//この商品価格に加算した単価
	UnitPrice string `json:"unit_price"`
}

type ProductDTO struct {
	ID          int64               `json:"id"`
	CategoryID  int64               `json:"category_id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	SKU         string              `json:"sku"`
	Description string              `json:"description"`
	Price       string              `json:"price"`
	SalePrice   *string             `json:"sale_price"`
	FinalPrice  string              `json:"final_price"`
	IsNew       bool                `json:"is_new"`
	IsFeatured  bool                `json:"is_featured"`
	InStock     bool                `json:"in_stock"`
	Images      []ProductImageDTO   `json:"images"`
	Variants    []ProductVariantDTO `json:"variants,omitempty"`
}

type ProductListOutput struct {
	Items []ProductDTO `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// 公開カタログの読み取り
type CatalogUsecase struct {
	products repo.ProductRepository
}

func NewCatalogUsecase(products repo.ProductRepository) *CatalogUsecase {
	return &CatalogUsecase{products: products}
}

func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	list, err := u.products.ListCategories(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	out := make([]CategoryDTO, 0, len(list))
	for _, c := range list {
		out = append(out, CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description})
	}
	return out, nil
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, q repo.ProductListQuery) (ProductListOutput, error) {
	if q.Page < 1 {
		return ProductListOutput{}, validation("invalid page")
	}
	if q.Limit < 1 || q.Limit > 100 {
		return ProductListOutput{}, validation("invalid limit")
	}
	q.CategorySlug = strings.TrimSpace(q.CategorySlug)

	list, total, err := u.products.ListPublic(ctx, q)
	if err != nil {
		return ProductListOutput{}, dbError(err)
	}

	out := ProductListOutput{Items: make([]ProductDTO, 0, len(list)), Total: total, Page: q.Page, Limit: q.Limit}
	for i := range list {
		out.Items = append(out.Items, toProductDTO(&list[i]))
	}
	return out, nil
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, id int64) (ProductDTO, error) {
	if id <= 0 {
		return ProductDTO{}, validation("invalid id")
	}
	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return ProductDTO{}, lookupError(err, "product not found")
	}
	return toProductDTO(&p), nil
}

func toProductDTO(p *model.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		SKU:         p.SKU,
		Description: p.Description,
		Price:       money(p.Price),
		SalePrice:   nullMoney(p.SalePrice),
		FinalPrice:  money(pricing.UnitPrice(*p, nil)),
		IsNew:       p.IsNew,
		IsFeatured:  p.IsFeatured,
		InStock:     p.InStock,
		Images:      make([]ProductImageDTO, 0, len(p.Images)),
	}
	for _, img := range p.Images {
		dto.Images = append(dto.Images, ProductImageDTO{URL: img.URL, AltText: img.AltText, IsPrimary: img.IsPrimary})
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		dto.Variants = append(dto.Variants, ProductVariantDTO{
			ID:              v.ID,
			Name:            v.Name,
			SKU:             v.SKU,
			PriceAdjustment: money(v.PriceAdjustment),
			UnitPrice:       money(pricing.UnitPrice(*p, v)),
		})
	}
	return dto
}
