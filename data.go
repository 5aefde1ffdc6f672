package cbpro

import (
	"fmt"
	"strconv"
)

// 产品基本信息
type Product struct {
	ID             string  `json:"id"`                     // 产品id，如BTC-USD
	BaseCurrency   string  `json:"base_currency"`          // 基础币种
	QuoteCurrency  string  `json:"quote_currency"`         // 报价币种
	BaseMinSize    float64 `json:"base_min_size,string"`   // 最小下单量
	BaseMaxSize    float64 `json:"base_max_size,string"`   // 最大下单量
	QuoteIncrement float64 `json:"quote_increment,string"` // 价格最小变动单位
	DisplayName    string  `json:"display_name"`
	Status         string  `json:"status"`
	StatusMessage  string  `json:"status_message"`
	MarginEnabled  bool    `json:"margin_enabled"`
	MinMarketFunds string  `json:"min_market_funds"`
	MaxMarketFunds string  `json:"max_market_funds"`
	PostOnly       bool    `json:"post_only"`
	LimitOnly      bool    `json:"limit_only"`
	CancelOnly     bool    `json:"cancel_only"`
}

// 深度里的一档。1、2挡位第三个元素是档内订单数，3挡位是订单id
type BookEntry struct {
	Price     float64
	Size      float64
	NumOrders int64
	OrderID   string
}

func (e *BookEntry) UnmarshalJSON(data []byte) error {
	var entry []interface{}
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	if len(entry) != 3 {
		return fmt.Errorf("book entry must have 3 elements, got %v", len(entry))
	}

	e.Price = toFloat64(entry[0])
	e.Size = toFloat64(entry[1])
	switch v := entry[2].(type) {
	case string:
		e.OrderID = v
	default:
		e.NumOrders = int64(toFloat64(v))
	}
	return nil
}

type OrderBook struct {
	Sequence int64       `json:"sequence"`
	Bids     []BookEntry `json:"bids"` // 按价格从高到低
	Asks     []BookEntry `json:"asks"` // 按价格从低到高
}

type Ticker struct {
	TradeID int64   `json:"trade_id"`
	Price   float64 `json:"price,string"`
	Size    float64 `json:"size,string"`
	Bid     float64 `json:"bid,string"`
	Ask     float64 `json:"ask,string"`
	Volume  float64 `json:"volume,string"`
	Time    string  `json:"time"`
}

// 成交记录，side为吃掉的挂单方向
type Trade struct {
	Time    string  `json:"time"`
	TradeID int64   `json:"trade_id"`
	Price   float64 `json:"price,string"`
	Size    float64 `json:"size,string"`
	Side    string  `json:"side"`
}

// K线，线上格式是数组[time, low, high, open, close, volume]
type Candle struct {
	TS     int64   // 开盘时间，单位为秒(second)
	Low    float64 // 最低价
	High   float64 // 最高价
	Open   float64 // 开盘价
	Close  float64 // 收盘价
	Volume float64 // 成交量
}

func (c *Candle) UnmarshalJSON(data []byte) error {
	var bucket []float64
	if err := json.Unmarshal(data, &bucket); err != nil {
		return err
	}
	if len(bucket) != 6 {
		return fmt.Errorf("candle must have 6 elements, got %v", len(bucket))
	}

	c.TS = int64(bucket[0])
	c.Low = bucket[1]
	c.High = bucket[2]
	c.Open = bucket[3]
	c.Close = bucket[4]
	c.Volume = bucket[5]
	return nil
}

// 24小时统计
type Stats24Hour struct {
	Open        float64 `json:"open,string"`
	High        float64 `json:"high,string"`
	Low         float64 `json:"low,string"`
	Last        float64 `json:"last,string"`
	Volume      float64 `json:"volume,string"`
	Volume30Day float64 `json:"volume_30day,string"`
}

// 币种信息
type CurrencyInfo struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	MinSize float64 `json:"min_size,string"`
	Status  string  `json:"status"`
	Message string  `json:"message"`
}

type ServerTime struct {
	ISO   string  `json:"iso"`
	Epoch float64 `json:"epoch"`
}

// 账户余额
type Account struct {
	ID             string  `json:"id"`
	Currency       string  `json:"currency"`
	Balance        float64 `json:"balance,string"`   // 总余额
	Available      float64 `json:"available,string"` // 可用余额
	Hold           float64 `json:"hold,string"`      // 冻结余额
	ProfileID      string  `json:"profile_id"`
	TradingEnabled bool    `json:"trading_enabled"`
}

// 账本流水
type LedgerEntry struct {
	ID        int64                  `json:"id"`
	CreatedAt string                 `json:"created_at"`
	Amount    float64                `json:"amount,string"`
	Balance   float64                `json:"balance,string"`
	Type      string                 `json:"type"` // transfer/match/fee/rebate
	Details   map[string]interface{} `json:"details"`
}

// 冻结明细
type Hold struct {
	ID        string  `json:"id"`
	AccountID string  `json:"account_id"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	Amount    float64 `json:"amount,string"`
	Type      string  `json:"type"` // order或transfer
	Ref       string  `json:"ref"`  // 关联的订单id或转账id
}

type Order struct {
	ID             string  `json:"id"`
	ClientOID      string  `json:"client_oid,omitempty"`
	Price          float64 `json:"price,string"`
	Size           float64 `json:"size,string"`
	ProductID      string  `json:"product_id"`
	Side           string  `json:"side"`
	Stp            string  `json:"stp"`
	Type           string  `json:"type"`
	TimeInForce    string  `json:"time_in_force"`
	PostOnly       bool    `json:"post_only"`
	CreatedAt      string  `json:"created_at"`
	DoneAt         string  `json:"done_at,omitempty"`
	DoneReason     string  `json:"done_reason,omitempty"`
	FillFees       float64 `json:"fill_fees,string"`
	FilledSize     float64 `json:"filled_size,string"`
	ExecutedValue  float64 `json:"executed_value,string"`
	Status         string  `json:"status"`
	Settled        bool    `json:"settled"`
	Funds          string  `json:"funds,omitempty"`
	SpecifiedFunds string  `json:"specified_funds,omitempty"`
	Stop           string  `json:"stop,omitempty"`
	StopPrice      string  `json:"stop_price,omitempty"`
}

// 成交明细
type Fill struct {
	TradeID   int64   `json:"trade_id"`
	ProductID string  `json:"product_id"`
	OrderID   string  `json:"order_id"`
	CreatedAt string  `json:"created_at"`
	Price     float64 `json:"price,string"`
	Size      float64 `json:"size,string"`
	Fee       float64 `json:"fee,string"`
	Liquidity string  `json:"liquidity"` // M挂单成交，T吃单成交
	Settled   bool    `json:"settled"`
	Side      string  `json:"side"`
	USDVolume float64 `json:"usd_volume,string"`
}

// 30天成交量
type Volume struct {
	ProductID      string  `json:"product_id"`
	ExchangeVolume float64 `json:"exchange_volume,string"`
	Volume         float64 `json:"volume,string"`
	RecordedAt     string  `json:"recorded_at"`
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
