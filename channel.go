package cbpro

import (
	"fmt"
	"sort"
	"sync"
)

// 一个订阅频道：频道名加产品集合
type Channel struct {
	Name       string
	ProductIDs map[string]struct{}
}

// 构造频道。频道名必须是已知的枚举值，产品集合不能为空
func NewChannel(name string, productIDs ...string) (*Channel, error) {
	if _, ok := validChannels[name]; !ok {
		return nil, fmt.Errorf("invalid channel name %q", name)
	}
	if len(productIDs) == 0 {
		return nil, fmt.Errorf("channel %q must include at least one product id", name)
	}

	ch := &Channel{Name: name, ProductIDs: make(map[string]struct{})}
	for _, id := range productIDs {
		ch.ProductIDs[id] = struct{}{}
	}
	return ch, nil
}

// 产品id列表，按字典序排列，保证控制帧内容确定
func (ch *Channel) Products() []string {
	ids := make([]string, 0, len(ch.ProductIDs))
	for id := range ch.ProductIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// 控制帧里channels数组的元素格式
type channelMessage struct {
	Name       string   `json:"name"`
	ProductIDs []string `json:"product_ids"`
}

func (ch *Channel) asMessage() channelMessage {
	return channelMessage{Name: ch.Name, ProductIDs: ch.Products()}
}

func (ch *Channel) clone() Channel {
	products := make(map[string]struct{}, len(ch.ProductIDs))
	for id := range ch.ProductIDs {
		products[id] = struct{}{}
	}
	return Channel{Name: ch.Name, ProductIDs: products}
}

// 订阅集合。每个频道名至多一条记录，重复订阅取产品集合的并集。
// 注册表的生命周期长于单条连接，重连时用快照重放全部订阅
type ChannelRegistry struct {
	mu       sync.Mutex
	channels map[string]*Channel
}

func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{channels: make(map[string]*Channel)}
}

// 订阅。校验失败时注册表保持原状
func (r *ChannelRegistry) Subscribe(name string, productIDs ...string) error {
	ch, err := NewChannel(name, productIDs...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	exist, ok := r.channels[name]
	if !ok {
		r.channels[name] = ch
		return nil
	}

	for id := range ch.ProductIDs {
		exist.ProductIDs[id] = struct{}{}
	}
	return nil
}

// 取消订阅。不传产品时整个频道删除；传产品时只摘除这些产品，
// 产品集合变空后频道一并删除
func (r *ChannelRegistry) Unsubscribe(name string, productIDs ...string) error {
	if _, ok := validChannels[name]; !ok {
		return fmt.Errorf("invalid channel name %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	exist, ok := r.channels[name]
	if !ok {
		return nil
	}

	if len(productIDs) == 0 {
		delete(r.channels, name)
		return nil
	}

	for _, id := range productIDs {
		delete(exist.ProductIDs, id)
	}
	if len(exist.ProductIDs) == 0 {
		delete(r.channels, name)
	}
	return nil
}

// 当前订阅快照，按频道名排序。快照在互斥锁内构造，
// 不会读到改了一半的状态
func (r *ChannelRegistry) Snapshot() []Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	sort.Strings(names)

	channels := make([]Channel, 0, len(names))
	for _, name := range names {
		channels = append(channels, r.channels[name].clone())
	}
	return channels
}

// 订阅的频道数
func (r *ChannelRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}
