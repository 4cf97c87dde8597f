package pricing_test

import (
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestUnitPrice_UsesPriceWithoutSale(t *testing.T) {
	p := model.Product{Price: dec("999.00")}

	assert.True(t, dec("999.00").Equal(pricing.UnitPrice(p, nil)))
}

func TestUnitPrice_SalePriceWins(t *testing.T) {
	p := model.Product{
		Price:     dec("999.00"),
		SalePrice: decimal.NewNullDecimal(dec("899.50")),
	}

	assert.True(t, dec("899.50").Equal(pricing.UnitPrice(p, nil)))
}

func TestUnitPrice_AddsVariantAdjustment(t *testing.T) {
	p := model.Product{
		Price:     dec("999.00"),
		SalePrice: decimal.NewNullDecimal(dec("899.00")),
	}
	v := &model.ProductVariant{PriceAdjustment: dec("100.00")}

	assert.True(t, dec("999.00").Equal(pricing.UnitPrice(p, v)))
}

func TestUnitPrice_NegativeAdjustment(t *testing.T) {
	p := model.Product{Price: dec("50.00")}
	v := &model.ProductVariant{PriceAdjustment: dec("-5.25")}

	assert.True(t, dec("44.75").Equal(pricing.UnitPrice(p, v)))
}

// 0.1 を何度足しても誤差が出ないこと
func TestCartTotal_NoRoundingDrift(t *testing.T) {
	p := model.Product{Price: dec("0.10")}

	items := make([]model.CartItem, 0, 30)
	for i := 0; i < 30; i++ {
		items = append(items, model.CartItem{Product: p, Quantity: 3})
	}

	assert.Equal(t, "9.00", pricing.CartTotal(items).StringFixed(2))
}

func TestCartTotal_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(pricing.CartTotal(nil)))
}

func TestCalculator_OrderTotals_PhoneScenario(t *testing.T) {
	p := model.Product{Name: "Phone X", Price: dec("999.00")}
	v := &model.ProductVariant{Name: "256GB", PriceAdjustment: dec("100.00")}
	items := []model.CartItem{{Product: p, Variant: v, Quantity: 2}}

	calc := pricing.NewCalculator(dec("0.05"), decimal.Zero)
	totals := calc.OrderTotals(pricing.CartTotal(items))

	assert.Equal(t, "2198.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "109.90", totals.Tax.StringFixed(2))
	assert.Equal(t, "0.00", totals.Shipping.StringFixed(2))
	assert.Equal(t, "2307.90", totals.Total.StringFixed(2))
}

func TestCalculator_OrderTotals_TaxRoundedToCents(t *testing.T) {
	calc := pricing.NewCalculator(dec("0.05"), dec("4.99"))
	totals := calc.OrderTotals(dec("10.11"))

	// 10.11 * 0.05 = 0.5055 -> 0.51
	assert.Equal(t, "0.51", totals.Tax.StringFixed(2))
	assert.Equal(t, "15.61", totals.Total.StringFixed(2))
}
