// Package money は十進通貨額と最小単位（セント）整数表現の相互変換を提供する。
// divisibilityは通貨の小数桁数を表す（例: USDは2、JPYは0）。
package money

import "github.com/shopspring/decimal"

// ToCents は十進金額を最小単位の整数に変換する。
// 乗算は十進で正確に行い、整数部の切り捨てで変換する。
// 負のdivisibilityはプログラミングエラーとしてpanicする。
func ToCents(amount decimal.Decimal, divisibility int) int64 {
	if divisibility < 0 {
		panic("money: divisibility must be non-negative")
	}
	return amount.Shift(int32(divisibility)).IntPart()
}

// FromCents は最小単位の整数を十進金額に戻す。
// 負のdivisibilityはプログラミングエラーとしてpanicする。
func FromCents(cents int64, divisibility int) decimal.Decimal {
	if divisibility < 0 {
		panic("money: divisibility must be non-negative")
	}
	return decimal.NewFromInt(cents).Shift(int32(-divisibility))
}
