package cbpro

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// 分页游标。before指向更新的一页，after指向更老的一页。
// 游标是服务器返回的不透明字符串，客户端只原样回传，不解析、不比较。
type Cursor struct {
	Before string
	After  string
}

var ErrBothCursors = errors.New("before and after cannot both be provided")

func (c Cursor) IsZero() bool {
	return c.Before == "" && c.After == ""
}

// 把游标合入请求参数。before和after同时存在是用法错误
func (c Cursor) apply(params url.Values) error {
	if c.Before != "" && c.After != "" {
		return ErrBothCursors
	}
	if c.Before != "" {
		params.Set("before", c.Before)
	}
	if c.After != "" {
		params.Set("after", c.After)
	}
	return nil
}

// 从响应头提取下一页游标。header缺失表示没有对应方向的页，不算错误。
// http.Header的读取本身就不区分大小写，不同部署环境下头名大小写不一致也没关系
func cursorFromHeader(h http.Header) Cursor {
	return Cursor{
		Before: h.Get("Cb-Before"),
		After:  h.Get("Cb-After"),
	}
}

// 分页GET请求。游标校验在任何网络调用之前完成。
// 本函数不缓存页数据，每次调用都是独立请求
func (client *Client) page(ctx context.Context, path string, params url.Values, cursor Cursor, auth bool, out interface{}) (Cursor, error) {
	if params == nil {
		params = url.Values{}
	}
	if err := cursor.apply(params); err != nil {
		return Cursor{}, err
	}

	headers, data, err := client.do(ctx, http.MethodGet, path, params, "", auth)
	if err != nil {
		return Cursor{}, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return Cursor{}, err
	}

	return cursorFromHeader(headers), nil
}
