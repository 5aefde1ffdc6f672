package cbpro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelValidation(t *testing.T) {
	_, err := NewChannel("bogus", "BTC-USD")
	assert.NotEqual(t, nil, err)

	_, err = NewChannel(CHANNEL_TICKER)
	assert.NotEqual(t, nil, err)

	ch, err := NewChannel(CHANNEL_TICKER, "BTC-USD", "ETH-USD", "BTC-USD")
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, ch.Products())
}

// 重复订阅同名频道取并集，不产生重复条目
func TestRegistryMerge(t *testing.T) {
	r := NewChannelRegistry()

	err := r.Subscribe(CHANNEL_TICKER, "BTC-USD")
	assert.Equal(t, nil, err)
	err = r.Subscribe(CHANNEL_TICKER, "ETH-USD")
	assert.Equal(t, nil, err)

	assert.Equal(t, 1, r.Len())

	snapshot := r.Snapshot()
	assert.Equal(t, 1, len(snapshot))
	assert.Equal(t, CHANNEL_TICKER, snapshot[0].Name)
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, snapshot[0].Products())
}

// 校验失败时注册表保持原状
func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewChannelRegistry()

	err := r.Subscribe("bogus", "BTC-USD")
	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, r.Len())

	err = r.Subscribe(CHANNEL_TICKER)
	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, r.Len())
}

// 摘除最后一个产品后频道整个删除，不留空频道
func TestRegistryUnsubscribeToEmpty(t *testing.T) {
	r := NewChannelRegistry()

	err := r.Subscribe(CHANNEL_MATCHES, "BTC-USD")
	assert.Equal(t, nil, err)

	err = r.Unsubscribe(CHANNEL_MATCHES, "BTC-USD")
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, len(r.Snapshot()))
}

func TestRegistryUnsubscribe(t *testing.T) {
	r := NewChannelRegistry()

	r.Subscribe(CHANNEL_TICKER, "BTC-USD", "ETH-USD")
	r.Subscribe(CHANNEL_HEARTBEAT, "BTC-USD")

	// 只摘除部分产品，频道保留
	err := r.Unsubscribe(CHANNEL_TICKER, "ETH-USD")
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, r.Len())

	snapshot := r.Snapshot()
	assert.Equal(t, []string{"BTC-USD"}, snapshot[1].Products())

	// 不传产品时删除整个频道
	err = r.Unsubscribe(CHANNEL_HEARTBEAT)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, r.Len())

	// 未订阅的频道退订是no-op
	err = r.Unsubscribe(CHANNEL_FULL)
	assert.Equal(t, nil, err)

	// 未知频道名仍然报错
	err = r.Unsubscribe("bogus")
	assert.NotEqual(t, nil, err)
}

// 快照按频道名排序，且与注册表内部状态隔离
func TestRegistrySnapshot(t *testing.T) {
	r := NewChannelRegistry()

	r.Subscribe(CHANNEL_USER, "BTC-USD")
	r.Subscribe(CHANNEL_HEARTBEAT, "BTC-USD")
	r.Subscribe(CHANNEL_LEVEL2, "ETH-USD")

	snapshot := r.Snapshot()
	assert.Equal(t, 3, len(snapshot))
	assert.Equal(t, CHANNEL_HEARTBEAT, snapshot[0].Name)
	assert.Equal(t, CHANNEL_LEVEL2, snapshot[1].Name)
	assert.Equal(t, CHANNEL_USER, snapshot[2].Name)

	// 改快照不影响注册表
	snapshot[0].ProductIDs["LTC-USD"] = struct{}{}
	again := r.Snapshot()
	assert.Equal(t, []string{"BTC-USD"}, again[0].Products())
}
