package cbpro

import (
	"strings"
)

// 产品标识，交易所以"基础币种-报价币种"的形式命名产品，如BTC-USD
type CurrencyPair struct {
	Base  Currency `json:"base"`
	Quote Currency `json:"quote"`
}

func NewCurrencyPair(base, quote Currency) CurrencyPair {
	return CurrencyPair{base, quote}
}

// 从产品名解析，如"BTC-USD"；解析失败返回UNKNOWN_PAIR
func NewCurrencyPairFromString(product string) CurrencyPair {
	symbols := strings.Split(product, "-")
	if len(symbols) != 2 {
		return UNKNOWN_PAIR
	}

	return CurrencyPair{NewCurrency(symbols[0]), NewCurrency(symbols[1])}
}

func (pair CurrencyPair) String() string {
	return pair.ToProductID()
}

func (pair CurrencyPair) Equal(p2 CurrencyPair) bool {
	return pair.String() == p2.String()
}

func (pair CurrencyPair) ToSymbol(sep string) string {
	return pair.Base.Symbol() + sep + pair.Quote.Symbol()
}

func (pair CurrencyPair) ToLowerSymbol(sep string) string {
	return strings.ToLower(pair.ToSymbol(sep))
}

// 交易所使用的产品id
func (pair CurrencyPair) ToProductID() string {
	return pair.ToSymbol("-")
}

func (pair CurrencyPair) Reverse() CurrencyPair {
	return CurrencyPair{pair.Quote, pair.Base}
}
