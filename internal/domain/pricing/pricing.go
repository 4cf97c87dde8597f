// Package pricing は価格計算をまとめたもの。DBもI/Oも触らない。
// 金額はすべて decimal で扱い、float は使わない。
package pricing

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 単価 = (セール価格 or 通常価格) + バリエーション加算額
func UnitPrice(p model.Product, v *model.ProductVariant) decimal.Decimal {
	base := p.Price
	if p.SalePrice.Valid {
		base = p.SalePrice.Decimal
	}
	if v != nil {
		base = base.Add(v.PriceAdjustment)
	}
	return base
}

// 小計 = 単価 × 数量
func Subtotal(unit decimal.Decimal, qty int64) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(qty))
}

func LineSubtotal(p model.Product, v *model.ProductVariant, qty int64) decimal.Decimal {
	return Subtotal(UnitPrice(p, v), qty)
}

// カート合計（明細はProduct/Variantがpreload済みであること）
func CartTotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineSubtotal(it.Product, it.Variant, it.Quantity))
	}
	return total
}

// 注文確定時の金額内訳
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

type Calculator struct {
	taxRate  decimal.Decimal
	shipping decimal.Decimal
}

func NewCalculator(taxRate decimal.Decimal, shipping decimal.Decimal) Calculator {
	return Calculator{taxRate: taxRate, shipping: shipping}
}

func (c Calculator) TaxRate() decimal.Decimal { return c.taxRate }

// 税額は小数2桁に丸める（DBの decimal(…,2) に合わせる）
func (c Calculator) OrderTotals(cartTotal decimal.Decimal) Totals {
	tax := cartTotal.Mul(c.taxRate).Round(2)
	return Totals{
		Subtotal: cartTotal,
		Shipping: c.shipping,
		Tax:      tax,
		Total:    cartTotal.Add(c.shipping).Add(tax),
	}
}
