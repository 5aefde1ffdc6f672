package cbpro

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Coinbase Pro REST客户端。凭据构造后只读，各方法可并发调用
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	credentials *Credentials
	errHandler  func(resp *http.Response, body []byte) error
}

// 公共接口客户端，只能访问不需要鉴权的行情接口
func NewClient(client *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = URL
	}

	return &Client{
		httpClient: client,
		baseURL:    baseURL,
		userAgent:  DefaultUserAgent,
		errHandler: classifyError,
	}
}

// 鉴权客户端。key、secret、passphrase缺一不可，缺失在构造时报错，
// 不会等到发请求时才失败
func NewAuthenticatedClient(client *http.Client, baseURL, key, secret, passphrase string) (*Client, error) {
	if key == "" || secret == "" || passphrase == "" {
		return nil, fmt.Errorf("auth requires key, secret, and passphrase")
	}

	c := NewClient(client, baseURL)
	c.credentials = &Credentials{Key: key, Secret: secret, Passphrase: passphrase}
	return c, nil
}

func (client *Client) SetURL(exurl string) {
	client.baseURL = exurl
}

func (client *Client) GetURL() string {
	return client.baseURL
}

func (client *Client) SetUserAgent(ua string) {
	client.userAgent = ua
}

// 是否配置了鉴权凭据
func (client *Client) Authenticated() bool {
	return client.credentials.complete()
}

// 获取全部产品
func (client *Client) Products(ctx context.Context) (products []Product, err error) {
	err = client.get(ctx, "/products", nil, false, &products)
	return products, err
}

// 获取深度。挡位只支持1、2、3，1为最优买卖价，2为前50档聚合，3为全量
func (client *Client) OrderBook(ctx context.Context, pair CurrencyPair, level int) (*OrderBook, error) {
	if level < BOOK_LEVEL_BEST || level > BOOK_LEVEL_FULL {
		return nil, fmt.Errorf("level must be 1, 2, or 3")
	}

	params := url.Values{}
	params.Set("level", strconv.Itoa(level))

	book := &OrderBook{}
	err := client.get(ctx, fmt.Sprintf("/products/%v/book", pair.ToProductID()), params, false, book)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// 获取最新成交行情
func (client *Client) Ticker(ctx context.Context, pair CurrencyPair) (*Ticker, error) {
	ticker := &Ticker{}
	err := client.get(ctx, fmt.Sprintf("/products/%v/ticker", pair.ToProductID()), nil, false, ticker)
	if err != nil {
		return nil, err
	}
	return ticker, nil
}

// 获取最近成交，分页接口
func (client *Client) Trades(ctx context.Context, pair CurrencyPair, limit int, cursor Cursor) (trades []Trade, next Cursor, err error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	next, err = client.page(ctx, fmt.Sprintf("/products/%v/trades", pair.ToProductID()), params, cursor, false, &trades)
	return trades, next, err
}

// 获取K线，按时间从新到旧排列。granularity只能是60/300/900/3600/21600/86400。
// start和stop必须成对传，只传一个会被忽略。服务器返回的数据为准，
// 客户端不做二次过滤
func (client *Client) HistoricRates(ctx context.Context, pair CurrencyPair, granularity int, start, stop time.Time) (candles []Candle, err error) {
	if _, ok := validGranularities[granularity]; !ok {
		return nil, fmt.Errorf("invalid granularity %v", granularity)
	}

	params := url.Values{}
	params.Set("granularity", strconv.Itoa(granularity))
	if !start.IsZero() && !stop.IsZero() {
		params.Set("start", start.UTC().Format(time.RFC3339))
		params.Set("stop", stop.UTC().Format(time.RFC3339))
	}

	err = client.get(ctx, fmt.Sprintf("/products/%v/candles", pair.ToProductID()), params, false, &candles)
	return candles, err
}

// 获取24小时统计
func (client *Client) Stats24Hour(ctx context.Context, pair CurrencyPair) (*Stats24Hour, error) {
	stats := &Stats24Hour{}
	err := client.get(ctx, fmt.Sprintf("/products/%v/stats", pair.ToProductID()), nil, false, stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// 获取支持的币种
func (client *Client) Currencies(ctx context.Context) (currencies []CurrencyInfo, err error) {
	err = client.get(ctx, "/currencies", nil, false, &currencies)
	return currencies, err
}

// 获取服务器时间，签名时间戳偏差大时可用来校准
func (client *Client) ServerTime(ctx context.Context) (*ServerTime, error) {
	st := &ServerTime{}
	err := client.get(ctx, "/time", nil, false, st)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// 获取全部账户余额
func (client *Client) Accounts(ctx context.Context) (accounts []Account, err error) {
	err = client.get(ctx, "/accounts", nil, true, &accounts)
	return accounts, err
}

// 获取单个账户余额
func (client *Client) Account(ctx context.Context, accountID string) (*Account, error) {
	account := &Account{}
	err := client.get(ctx, fmt.Sprintf("/accounts/%v", accountID), nil, true, account)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// 获取账本流水，分页接口
func (client *Client) AccountHistory(ctx context.Context, accountID string, limit int, cursor Cursor) (entries []LedgerEntry, next Cursor, err error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	next, err = client.page(ctx, fmt.Sprintf("/accounts/%v/ledger", accountID), params, cursor, true, &entries)
	return entries, next, err
}

// 获取冻结明细，分页接口
func (client *Client) Holds(ctx context.Context, accountID string, limit int, cursor Cursor) (holds []Hold, next Cursor, err error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	next, err = client.page(ctx, fmt.Sprintf("/accounts/%v/holds", accountID), params, cursor, true, &holds)
	return holds, next, err
}

// 下单参数。字段间的约束见Validate
type OrderRequest struct {
	Side        string `json:"side"`
	ProductID   string `json:"product_id"`
	Type        string `json:"type"`
	Price       string `json:"price,omitempty"`
	Size        string `json:"size,omitempty"`
	Funds       string `json:"funds,omitempty"`
	TimeInForce string `json:"time_in_force,omitempty"`
	CancelAfter string `json:"cancel_after,omitempty"` // min/hour/day，仅GTT有效
	PostOnly    bool   `json:"post_only,omitempty"`
	Stop        string `json:"stop,omitempty"`       // loss或entry
	StopPrice   string `json:"stop_price,omitempty"` // 与Stop成对出现
	ClientOID   string `json:"client_oid,omitempty"`
	Stp         string `json:"stp,omitempty"`
}

// 校验下单参数，所有校验都在网络调用之前完成
func (req *OrderRequest) Validate() error {
	if req.Side != SIDE_BUY && req.Side != SIDE_SELL {
		return fmt.Errorf("invalid side: %v, must be either buy or sell", req.Side)
	}

	if req.Type != ORDER_TYPE_LIMIT && req.Type != ORDER_TYPE_MARKET {
		return fmt.Errorf("invalid order type: %v, must be either limit or market", req.Type)
	}

	if req.Stop != "" && req.Stop != STOP_LOSS && req.Stop != STOP_ENTRY {
		return fmt.Errorf("invalid stop: %v, must be either loss or entry", req.Stop)
	}

	if req.Stop != "" && req.StopPrice == "" {
		return fmt.Errorf("stop orders must have stop_price set")
	}

	switch req.Stp {
	case "", STP_DECREASE_CANCEL, STP_CANCEL_OLDEST, STP_CANCEL_NEWEST, STP_CANCEL_BOTH:
	default:
		return fmt.Errorf("invalid stp: %v, must be dc, co, cn, or cb", req.Stp)
	}

	if req.Type == ORDER_TYPE_LIMIT {
		if req.Price == "" || req.Size == "" {
			return fmt.Errorf("limit orders must have both price and size set")
		}

		switch req.TimeInForce {
		case "", TIF_GTC, TIF_GTT, TIF_IOC, TIF_FOK:
		default:
			return fmt.Errorf("time_in_force must be GTC, GTT, IOC or FOK")
		}

		if req.CancelAfter != "" {
			if req.TimeInForce != TIF_GTT {
				return fmt.Errorf("cancel_after requires time_in_force to be GTT")
			}
			if req.CancelAfter != "min" && req.CancelAfter != "hour" && req.CancelAfter != "day" {
				return fmt.Errorf("cancel_after must be min, hour, or day")
			}
		}

		if req.PostOnly && (req.TimeInForce == TIF_IOC || req.TimeInForce == TIF_FOK) {
			return fmt.Errorf("post_only is invalid with time_in_force IOC or FOK")
		}
	} else {
		if req.Size == "" && req.Funds == "" {
			return fmt.Errorf("market orders must have funds or size set")
		}
		if req.Size != "" && req.Funds != "" {
			return fmt.Errorf("market orders can't have both funds and size set")
		}
		if req.Price != "" {
			return fmt.Errorf("market orders can't have price set")
		}
	}

	return nil
}

// 下单。ClientOID为空时自动生成一个uuid，方便调用方在成交回报里关联订单
func (client *Client) PlaceOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.ClientOID == "" {
		req.ClientOID = uuid.New().String()
	}

	order := &Order{}
	err := client.post(ctx, "/orders", req, true, order)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// 限价买入
func (client *Client) LimitBuy(ctx context.Context, pair CurrencyPair, price, size string) (*Order, error) {
	return client.PlaceOrder(ctx, &OrderRequest{
		Side:      SIDE_BUY,
		ProductID: pair.ToProductID(),
		Type:      ORDER_TYPE_LIMIT,
		Price:     price,
		Size:      size,
	})
}

// 限价卖出
func (client *Client) LimitSell(ctx context.Context, pair CurrencyPair, price, size string) (*Order, error) {
	return client.PlaceOrder(ctx, &OrderRequest{
		Side:      SIDE_SELL,
		ProductID: pair.ToProductID(),
		Type:      ORDER_TYPE_LIMIT,
		Price:     price,
		Size:      size,
	})
}

// 市价买入，funds为买入金额，单位为报价币种
func (client *Client) MarketBuy(ctx context.Context, pair CurrencyPair, funds string) (*Order, error) {
	return client.PlaceOrder(ctx, &OrderRequest{
		Side:      SIDE_BUY,
		ProductID: pair.ToProductID(),
		Type:      ORDER_TYPE_MARKET,
		Funds:     funds,
	})
}

// 市价卖出，size为卖出数量，单位为基础币种
func (client *Client) MarketSell(ctx context.Context, pair CurrencyPair, size string) (*Order, error) {
	return client.PlaceOrder(ctx, &OrderRequest{
		Side:      SIDE_SELL,
		ProductID: pair.ToProductID(),
		Type:      ORDER_TYPE_MARKET,
		Size:      size,
	})
}

// 撤单，orderID为服务器分配的订单id
func (client *Client) CancelOrder(ctx context.Context, orderID string) error {
	return client.delete(ctx, fmt.Sprintf("/orders/%v", orderID), nil, true, nil)
}

// 撤销全部订单，pair非nil时只撤该产品的订单。返回撤掉的订单id
func (client *Client) CancelAll(ctx context.Context, pair *CurrencyPair) (canceled []string, err error) {
	params := url.Values{}
	if pair != nil {
		params.Set("product_id", pair.ToProductID())
	}

	err = client.delete(ctx, "/orders", params, true, &canceled)
	return canceled, err
}

// 获取订单列表，分页接口。status可传active/all/open/pending，空为默认(未完结订单)
func (client *Client) Orders(ctx context.Context, status string, pair *CurrencyPair, limit int, cursor Cursor) (orders []Order, next Cursor, err error) {
	switch status {
	case "", "active", "all", "open", "pending":
	default:
		return nil, Cursor{}, fmt.Errorf("invalid status: %v", status)
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if status != "" {
		params.Set("status", status)
	}
	if pair != nil {
		params.Set("product_id", pair.ToProductID())
	}

	next, err = client.page(ctx, "/orders", params, cursor, true, &orders)
	return orders, next, err
}

// 获取订单详情
func (client *Client) Order(ctx context.Context, orderID string) (*Order, error) {
	order := &Order{}
	err := client.get(ctx, fmt.Sprintf("/orders/%v", orderID), nil, true, order)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// 获取成交明细，分页接口。orderID和pair必须传且只传一个
func (client *Client) Fills(ctx context.Context, orderID string, pair *CurrencyPair, limit int, cursor Cursor) (fills []Fill, next Cursor, err error) {
	if orderID == "" && pair == nil {
		return nil, Cursor{}, fmt.Errorf("either order_id or product_id must be defined")
	}
	if orderID != "" && pair != nil {
		return nil, Cursor{}, fmt.Errorf("order_id and product_id cannot both be sent")
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if orderID != "" {
		params.Set("order_id", orderID)
	}
	if pair != nil {
		params.Set("product_id", pair.ToProductID())
	}

	next, err = client.page(ctx, "/fills", params, cursor, true, &fills)
	return fills, next, err
}

// 获取30天成交量
func (client *Client) TrailingVolume(ctx context.Context) (volumes []Volume, err error) {
	err = client.get(ctx, "/users/self/trailing-volume", nil, true, &volumes)
	return volumes, err
}
