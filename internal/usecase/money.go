package usecase

import "github.com/shopspring/decimal"

const zeroMoney = "0.00"

// 金額は小数2桁の文字列で返す
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}
