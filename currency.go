package cbpro

import "strings"

func NewCurrency(name string) Currency {
	return Currency{Name: strings.ToUpper(name)}
}

type Currency struct {
	Name string `json:"name"`
}

func (c Currency) Symbol() string {
	return c.Name
}

func (c Currency) LowerSymbol() string {
	return strings.ToLower(c.Name)
}

func (c Currency) Equal(c2 Currency) bool {
	return c.Name == c2.Symbol()
}

func (c Currency) String() string {
	return c.Symbol()
}

var (
	UNKNOWN = Currency{"UNKNOWN"}
	USD     = Currency{"USD"}
	EUR     = Currency{"EUR"}
	GBP     = Currency{"GBP"}
	USDC    = Currency{"USDC"}
	BTC     = Currency{"BTC"}
	ETH     = Currency{"ETH"}
	LTC     = Currency{"LTC"}

	UNKNOWN_PAIR = CurrencyPair{UNKNOWN, UNKNOWN}
)
