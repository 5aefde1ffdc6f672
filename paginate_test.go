package cbpro

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// before和after同时存在必须在发请求前报错
func TestCursorExclusive(t *testing.T) {
	requests := 0
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		requests++
	})
	defer server.Close()

	pair := NewCurrencyPairFromString("BTC-USD")
	_, _, err := client.Trades(context.Background(), pair, 0, Cursor{Before: "1", After: "2"})
	assert.Equal(t, ErrBothCursors, err)
	assert.Equal(t, 0, requests)
}

// 游标从响应头提取，缺失的方向为空串而不是错误
func TestCursorRoundTrip(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("cb-after", "100")
		w.Write([]byte(`[{"time":"2018-09-27T13:18:42.571Z","trade_id":1,"price":"6500.00","size":"0.5","side":"buy"}]`))
	})
	defer server.Close()

	pair := NewCurrencyPairFromString("BTC-USD")
	trades, next, err := client.Trades(context.Background(), pair, 0, Cursor{})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(trades))
	assert.Equal(t, int64(1), trades[0].TradeID)
	assert.Equal(t, 6500.00, trades[0].Price)

	assert.Equal(t, "", next.Before)
	assert.Equal(t, "100", next.After)
}

// 游标和过滤参数合并进同一个查询串，游标原样回传
func TestCursorMergedWithFilters(t *testing.T) {
	var gotQuery string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Cb-Before", "7")
		w.Header().Set("Cb-After", "9")
		w.Write([]byte(`[]`))
	})
	defer server.Close()

	pair := NewCurrencyPairFromString("BTC-USD")
	_, next, err := client.Trades(context.Background(), pair, 5, Cursor{Before: "42"})
	assert.Equal(t, nil, err)
	assert.Equal(t, "before=42&limit=5", gotQuery)
	assert.Equal(t, "7", next.Before)
	assert.Equal(t, "9", next.After)
}

// after方向同样原样回传
func TestCursorAfterPassedThrough(t *testing.T) {
	var gotQuery string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})
	defer server.Close()

	pair := NewCurrencyPairFromString("BTC-USD")
	_, next, err := client.Trades(context.Background(), pair, 0, Cursor{After: "opaque-token"})
	assert.Equal(t, nil, err)
	assert.Equal(t, "after=opaque-token", gotQuery)
	assert.Equal(t, true, next.IsZero())
}
