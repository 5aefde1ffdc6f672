package cbpro

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// 封装websocket连接。写加互斥锁，读由独立协程驱动。
// 数据帧通过onFrame按接收顺序回调；连接断开时由读协程最后回调一次nil，
// 回调时不持有任何锁
type Connection struct {
	sync.Mutex
	wsConn   *websocket.Conn
	isClosed bool
	onFrame  func([]byte)
}

func connect(wsurl, proxyurl string) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{}

	if proxyurl != "" {
		proxy, err := url.Parse(proxyurl)
		if err != nil {
			return nil, err
		}
		dialer.Proxy = http.ProxyURL(proxy)
	}

	wsConn, resp, err := dialer.Dial(wsurl, nil)
	if err != nil {
		if resp != nil {
			dumpData, _ := httputil.DumpResponse(resp, true)
			Error("[ws][%s] websocket dump connect:%s", wsurl, string(dumpData))
		}
		return nil, err
	}

	return wsConn, nil
}

// 建立长连接并启动读协程
func NewConnectionWithURL(wsurl, proxyurl string, onFrame func([]byte)) (*Connection, error) {
	wsConn, err := connect(wsurl, proxyurl)
	if err != nil {
		return nil, err
	}

	return NewConnection(wsConn, onFrame), nil
}

// 从已有连接构造并启动读协程
func NewConnection(wsConn *websocket.Conn, onFrame func([]byte)) *Connection {
	conn := &Connection{
		wsConn:  wsConn,
		onFrame: onFrame,
	}

	go conn.readLoop()

	return conn
}

// 发送一帧文本数据
func (conn *Connection) SendMessage(data []byte) error {
	conn.Lock()
	if conn.isClosed {
		conn.Unlock()
		return errors.New("connection is closed")
	}

	err := conn.wsConn.WriteMessage(websocket.TextMessage, data)
	conn.Unlock()

	if err != nil {
		conn.markClosed()
	}
	return err
}

// 序列化并发送一帧
func (conn *Connection) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.SendMessage(data)
}

// 关闭连接。在途的写操作完成后套接字才会关闭，读协程随之退出并发出断开通知
func (conn *Connection) Close() {
	conn.markClosed()
}

func (conn *Connection) markClosed() {
	conn.Lock()
	defer conn.Unlock()

	if !conn.isClosed {
		conn.isClosed = true
		conn.wsConn.Close()
	}
}

// 循环读取数据。读出错(含主动关闭)时退出，退出前回调一次nil
func (conn *Connection) readLoop() {
	for {
		_, data, err := conn.wsConn.ReadMessage()
		if err != nil {
			conn.markClosed()
			if conn.onFrame != nil {
				conn.onFrame(nil)
			}
			return
		}

		if conn.onFrame != nil {
			conn.onFrame(data)
		}
	}
}
