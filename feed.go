package cbpro

import (
	"errors"
	"fmt"
	"sync"
)

// 行情连接状态
type FeedState int32

const (
	StateConnecting FeedState = iota // 初始态，尚未完成握手
	StateOpen                        // 已连接，订阅帧已发出
	StateClosing                     // 正在关闭，排空在途发送
	StateClosed                      // 终态，重连需要新建Feed
)

func (s FeedState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// 控制帧动作
const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

// 订阅/退订控制帧
type controlFrame struct {
	Type     string           `json:"type"`
	Channels []channelMessage `json:"channels"`
}

// 连接断开时通过错误回调上报
var ErrConnectionLost = errors.New("feed connection lost")

// 行情消息回调，按接收顺序逐条调用
type MessageHandler func(msg map[string]interface{})

// 一条行情长连接。注册表可以在Feed之外长期存活，新连接建立时
// 会把注册表的完整快照重放给服务器。
// Feed本身是一次性的：进入Closed后不能复用，重连要新建实例
type Feed struct {
	feedURL  string
	proxyURL string
	registry *ChannelRegistry

	mu    sync.Mutex
	state FeedState
	conn  *Connection

	handlers []MessageHandler
	onError  func(error)

	done     chan struct{}
	doneOnce sync.Once
}

// 构造行情连接。registry传nil时内部新建一个空注册表
func NewFeed(feedURL, proxyURL string, registry *ChannelRegistry) *Feed {
	if feedURL == "" {
		feedURL = FeedURL
	}
	if registry == nil {
		registry = NewChannelRegistry()
	}

	return &Feed{
		feedURL:  feedURL,
		proxyURL: proxyURL,
		registry: registry,
		state:    StateConnecting,
		done:     make(chan struct{}),
	}
}

// 注册消息回调，须在Connect之前调用。回调按注册顺序、消息按接收顺序执行
func (feed *Feed) AddMessageHandler(h MessageHandler) {
	feed.mu.Lock()
	defer feed.mu.Unlock()
	feed.handlers = append(feed.handlers, h)
}

// 设置错误回调。解析失败的帧和连接断开都会从这里上报
func (feed *Feed) SetErrorHandler(h func(error)) {
	feed.mu.Lock()
	defer feed.mu.Unlock()
	feed.onError = h
}

// 订阅注册表。当前订阅集合
func (feed *Feed) Registry() *ChannelRegistry {
	return feed.registry
}

func (feed *Feed) State() FeedState {
	feed.mu.Lock()
	defer feed.mu.Unlock()
	return feed.state
}

// 连接结束时此通道关闭，调用方可据此决定是否重连。
// 重连策略(退避、次数)由调用方自己把握
func (feed *Feed) Done() <-chan struct{} {
	return feed.done
}

// 建立连接。握手完成后立刻把注册表快照打包成订阅帧发出，
// 期间的注册表变更会并入快照而不会产生增量帧
func (feed *Feed) Connect() error {
	feed.mu.Lock()
	if feed.state != StateConnecting {
		state := feed.state
		feed.mu.Unlock()
		return fmt.Errorf("feed is %v, a new feed must be constructed to reconnect", state)
	}
	feed.mu.Unlock()

	conn, err := NewConnectionWithURL(feed.feedURL, feed.proxyURL, feed.handleFrame)
	if err != nil {
		feed.shutdown(nil)
		return err
	}

	feed.mu.Lock()
	if feed.state != StateConnecting {
		// 握手期间连接已经断开
		state := feed.state
		feed.mu.Unlock()
		conn.Close()
		return fmt.Errorf("feed is %v, a new feed must be constructed to reconnect", state)
	}

	feed.conn = conn
	feed.state = StateOpen

	// 初始订阅帧在锁内发送，快照之后的增量订阅只能排在它后面
	snapshot := feed.registry.Snapshot()
	var frameErr error
	if len(snapshot) > 0 {
		frameErr = feed.sendControlFrame(actionSubscribe, snapshot)
	}
	feed.mu.Unlock()
	return frameErr
}

// 订阅频道。连接已打开时只发送本次增量，不重发全量快照
func (feed *Feed) Subscribe(name string, productIDs ...string) error {
	delta, err := NewChannel(name, productIDs...)
	if err != nil {
		return err
	}

	feed.mu.Lock()
	defer feed.mu.Unlock()

	if err := feed.registry.Subscribe(name, productIDs...); err != nil {
		return err
	}

	if feed.state != StateOpen {
		return nil
	}
	return feed.sendControlFrame(actionSubscribe, []Channel{delta.clone()})
}

// 退订频道。不传产品退订整个频道
func (feed *Feed) Unsubscribe(name string, productIDs ...string) error {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	// 退订帧要反映删除前的产品集合
	var channels []Channel
	if len(productIDs) == 0 {
		for _, ch := range feed.registry.Snapshot() {
			if ch.Name == name {
				channels = append(channels, ch)
			}
		}
	} else {
		ch := Channel{Name: name, ProductIDs: make(map[string]struct{})}
		for _, id := range productIDs {
			ch.ProductIDs[id] = struct{}{}
		}
		channels = append(channels, ch)
	}

	if err := feed.registry.Unsubscribe(name, productIDs...); err != nil {
		return err
	}

	if feed.state != StateOpen || len(channels) == 0 {
		return nil
	}
	return feed.sendControlFrame(actionUnsubscribe, channels)
}

// 关闭连接。排空在途发送后关闭套接字，读协程退出后进入Closed
func (feed *Feed) Close() {
	feed.mu.Lock()
	if feed.state == StateClosing || feed.state == StateClosed {
		feed.mu.Unlock()
		return
	}
	feed.state = StateClosing
	conn := feed.conn
	feed.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	feed.shutdown(nil)
}

// 调用方必须持有feed.mu
func (feed *Feed) sendControlFrame(action string, channels []Channel) error {
	frame := controlFrame{Type: action}
	for i := range channels {
		frame.Channels = append(frame.Channels, channels[i].asMessage())
	}
	return feed.conn.SendJSON(frame)
}

// 读协程回调。data为nil表示连接断开。单协程顺序调用，
// 消息分发严格保持接收顺序
func (feed *Feed) handleFrame(data []byte) {
	if data == nil {
		feed.shutdown(ErrConnectionLost)
		return
	}

	var msg map[string]interface{}
	if err := json.Unmarshal(data, &msg); err != nil {
		// 帧解析失败不关闭连接，只上报
		feed.reportError(fmt.Errorf("malformed feed message: %v", err))
		return
	}

	feed.mu.Lock()
	handlers := feed.handlers
	feed.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}

// 进入终态。err非nil且不是主动关闭时上报给错误回调
func (feed *Feed) shutdown(err error) {
	feed.mu.Lock()
	if feed.state == StateClosed {
		feed.mu.Unlock()
		return
	}
	requested := feed.state == StateClosing
	feed.state = StateClosed
	feed.mu.Unlock()

	if err != nil && !requested {
		Error("[feed][%s] %v", feed.feedURL, err)
		feed.reportError(err)
	}

	feed.doneOnce.Do(func() { close(feed.done) })
}

func (feed *Feed) reportError(err error) {
	feed.mu.Lock()
	h := feed.onError
	feed.mu.Unlock()

	if h != nil {
		h(err)
	}
}
