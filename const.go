package cbpro

// REST接口地址
const (
	URL        = "https://api.pro.coinbase.com"
	SandboxURL = "https://api-public.sandbox.pro.coinbase.com"
)

// websocket行情地址
const (
	FeedURL        = "wss://ws-feed.pro.coinbase.com"
	SandboxFeedURL = "wss://ws-feed-public.sandbox.pro.coinbase.com"
)

// 默认UA，可通过Client.SetUserAgent替换
const DefaultUserAgent = "cbpro-go/1.0"

// 订阅频道常量
const (
	CHANNEL_HEARTBEAT = "heartbeat"
	CHANNEL_TICKER    = "ticker"
	CHANNEL_LEVEL2    = "level2"
	CHANNEL_FULL      = "full"
	CHANNEL_MATCHES   = "matches"
	CHANNEL_USER      = "user"
)

var validChannels = map[string]struct{}{
	CHANNEL_HEARTBEAT: {},
	CHANNEL_TICKER:    {},
	CHANNEL_LEVEL2:    {},
	CHANNEL_FULL:      {},
	CHANNEL_MATCHES:   {},
	CHANNEL_USER:      {},
}

// 交易方向
const (
	SIDE_BUY  = "buy"
	SIDE_SELL = "sell"
)

// 订单类型
const (
	ORDER_TYPE_LIMIT  = "limit"
	ORDER_TYPE_MARKET = "market"
)

// 限价单有效期策略
const (
	TIF_GTC = "GTC" // 一直有效直到撤单
	TIF_GTT = "GTT" // 有效至cancel_after指定时刻
	TIF_IOC = "IOC" // 立即成交，剩余撤销
	TIF_FOK = "FOK" // 全部成交或全部撤销
)

// 止损单方向
const (
	STOP_LOSS  = "loss"
	STOP_ENTRY = "entry"
)

// 自成交保护策略
const (
	STP_DECREASE_CANCEL = "dc"
	STP_CANCEL_OLDEST   = "co"
	STP_CANCEL_NEWEST   = "cn"
	STP_CANCEL_BOTH     = "cb"
)

// K线周期，单位为秒，服务器只接受这六种
var validGranularities = map[int]struct{}{
	60:    {},
	300:   {},
	900:   {},
	3600:  {},
	21600: {},
	86400: {},
}

// 深度挡位
const (
	BOOK_LEVEL_BEST = 1 // 只返回最优买卖价
	BOOK_LEVEL_TOP  = 2 // 前50档聚合深度
	BOOK_LEVEL_FULL = 3 // 全量深度，轮询会被限流
)
