package cbpro

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// 测试用websocket服务器，记录收到的控制帧并暴露连接供测试写入
type feedServer struct {
	server *httptest.Server
	frames chan controlFrame
	conns  chan *websocket.Conn
}

func newFeedServer() *feedServer {
	upgrader := websocket.Upgrader{}
	fs := &feedServer{
		frames: make(chan controlFrame, 16),
		conns:  make(chan *websocket.Conn, 4),
	}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.conns <- conn
		for {
			var frame controlFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			fs.frames <- frame
		}
	}))
	return fs
}

func (fs *feedServer) URL() string {
	return "ws" + strings.TrimPrefix(fs.server.URL, "http")
}

func (fs *feedServer) Close() {
	fs.server.Close()
}

func (fs *feedServer) waitFrame(t *testing.T) controlFrame {
	select {
	case frame := <-fs.frames:
		return frame
	case <-time.After(time.Second * 3):
		t.Fatal("timed out waiting for control frame")
		return controlFrame{}
	}
}

func (fs *feedServer) waitConn(t *testing.T) *websocket.Conn {
	select {
	case conn := <-fs.conns:
		return conn
	case <-time.After(time.Second * 3):
		t.Fatal("timed out waiting for connection")
		return nil
	}
}

// 握手完成后立刻发送完整订阅快照，频道和产品都有确定顺序
func TestFeedInitialSubscribe(t *testing.T) {
	fs := newFeedServer()
	defer fs.Close()

	registry := NewChannelRegistry()
	registry.Subscribe(CHANNEL_TICKER, "ETH-USD", "BTC-USD")
	registry.Subscribe(CHANNEL_HEARTBEAT, "BTC-USD")

	feed := NewFeed(fs.URL(), "", registry)
	err := feed.Connect()
	assert.Equal(t, nil, err)
	defer feed.Close()

	assert.Equal(t, StateOpen, feed.State())

	frame := fs.waitFrame(t)
	assert.Equal(t, "subscribe", frame.Type)
	assert.Equal(t, 2, len(frame.Channels))
	assert.Equal(t, "heartbeat", frame.Channels[0].Name)
	assert.Equal(t, []string{"BTC-USD"}, frame.Channels[0].ProductIDs)
	assert.Equal(t, "ticker", frame.Channels[1].Name)
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, frame.Channels[1].ProductIDs)
}

// 连接打开后的订阅只发增量帧，不重发全量
func TestFeedDeltaFrames(t *testing.T) {
	fs := newFeedServer()
	defer fs.Close()

	feed := NewFeed(fs.URL(), "", nil)
	err := feed.Connect()
	assert.Equal(t, nil, err)
	defer feed.Close()

	err = feed.Subscribe(CHANNEL_MATCHES, "BTC-USD")
	assert.Equal(t, nil, err)
	frame := fs.waitFrame(t)
	assert.Equal(t, "subscribe", frame.Type)
	assert.Equal(t, 1, len(frame.Channels))
	assert.Equal(t, "matches", frame.Channels[0].Name)
	assert.Equal(t, []string{"BTC-USD"}, frame.Channels[0].ProductIDs)

	// 并入已有频道，增量帧只带新产品
	err = feed.Subscribe(CHANNEL_MATCHES, "ETH-USD")
	assert.Equal(t, nil, err)
	frame = fs.waitFrame(t)
	assert.Equal(t, "subscribe", frame.Type)
	assert.Equal(t, []string{"ETH-USD"}, frame.Channels[0].ProductIDs)

	err = feed.Unsubscribe(CHANNEL_MATCHES, "ETH-USD")
	assert.Equal(t, nil, err)
	frame = fs.waitFrame(t)
	assert.Equal(t, "unsubscribe", frame.Type)
	assert.Equal(t, []string{"ETH-USD"}, frame.Channels[0].ProductIDs)

	// 整频道退订，退订帧带删除前的产品集合
	err = feed.Unsubscribe(CHANNEL_MATCHES)
	assert.Equal(t, nil, err)
	frame = fs.waitFrame(t)
	assert.Equal(t, "unsubscribe", frame.Type)
	assert.Equal(t, []string{"BTC-USD"}, frame.Channels[0].ProductIDs)

	assert.Equal(t, 0, feed.Registry().Len())
}

// 订阅校验失败不发帧也不改注册表
func TestFeedSubscribeValidation(t *testing.T) {
	fs := newFeedServer()
	defer fs.Close()

	feed := NewFeed(fs.URL(), "", nil)
	err := feed.Connect()
	assert.Equal(t, nil, err)
	defer feed.Close()

	err = feed.Subscribe("bogus", "BTC-USD")
	assert.NotEqual(t, nil, err)
	err = feed.Subscribe(CHANNEL_TICKER)
	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, feed.Registry().Len())
}

// 消息严格按接收顺序分发
func TestFeedOrdering(t *testing.T) {
	fs := newFeedServer()
	defer fs.Close()

	feed := NewFeed(fs.URL(), "", nil)

	var got []float64
	feed.AddMessageHandler(func(msg map[string]interface{}) {
		got = append(got, msg["seq"].(float64))
	})
	feed.SetErrorHandler(func(err error) {})

	err := feed.Connect()
	assert.Equal(t, nil, err)

	conn := fs.waitConn(t)
	const total = 200
	for i := 0; i < total; i++ {
		err := conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(`{"seq":%d}`, i)))
		assert.Equal(t, nil, err)
	}
	conn.Close()

	<-feed.Done()
	assert.Equal(t, StateClosed, feed.State())

	assert.Equal(t, total, len(got))
	for i := 0; i < total; i++ {
		assert.Equal(t, float64(i), got[i])
	}
}

// 解析失败的帧只上报错误，连接保持打开，后续消息照常分发
func TestFeedMalformedFrame(t *testing.T) {
	fs := newFeedServer()
	defer fs.Close()

	feed := NewFeed(fs.URL(), "", nil)

	recv := make(chan map[string]interface{}, 4)
	errs := make(chan error, 4)
	feed.AddMessageHandler(func(msg map[string]interface{}) { recv <- msg })
	feed.SetErrorHandler(func(err error) { errs <- err })

	err := feed.Connect()
	assert.Equal(t, nil, err)
	defer feed.Close()

	conn := fs.waitConn(t)
	conn.WriteMessage(websocket.TextMessage, []byte(`{not json`))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`))

	select {
	case msg := <-recv:
		assert.Equal(t, "heartbeat", msg["type"])
	case <-time.After(time.Second * 3):
		t.Fatal("timed out waiting for message")
	}

	assert.Equal(t, 1, len(errs))
	assert.Equal(t, StateOpen, feed.State())
}

// 传输层断开进入终态并上报，重连要新建Feed
func TestFeedTransportError(t *testing.T) {
	fs := newFeedServer()
	defer fs.Close()

	feed := NewFeed(fs.URL(), "", nil)
	errs := make(chan error, 4)
	feed.SetErrorHandler(func(err error) { errs <- err })

	err := feed.Connect()
	assert.Equal(t, nil, err)

	conn := fs.waitConn(t)
	conn.Close()

	<-feed.Done()
	assert.Equal(t, StateClosed, feed.State())

	select {
	case err := <-errs:
		assert.Equal(t, ErrConnectionLost, err)
	case <-time.After(time.Second * 3):
		t.Fatal("timed out waiting for error")
	}

	err = feed.Connect()
	assert.NotEqual(t, nil, err)
}

// 主动关闭不算错误，Done通道关闭
func TestFeedClose(t *testing.T) {
	fs := newFeedServer()
	defer fs.Close()

	feed := NewFeed(fs.URL(), "", nil)
	errs := make(chan error, 4)
	feed.SetErrorHandler(func(err error) { errs <- err })

	err := feed.Connect()
	assert.Equal(t, nil, err)

	feed.Close()
	<-feed.Done()
	assert.Equal(t, StateClosed, feed.State())
	assert.Equal(t, 0, len(errs))

	// 重复Close是no-op
	feed.Close()
}

// 连接失败进入终态
func TestFeedDialFailure(t *testing.T) {
	feed := NewFeed("ws://127.0.0.1:1/feed", "", nil)
	err := feed.Connect()
	assert.NotEqual(t, nil, err)
	assert.Equal(t, StateClosed, feed.State())
	<-feed.Done()
}
