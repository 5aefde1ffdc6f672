package cbpro

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// 服务器返回的业务错误，保留原始响应供调用方排查
type APIError struct {
	Message string      // 服务器返回的message字段
	Status  int         // HTTP状态码
	Headers http.Header // 响应头
	Body    []byte      // 原始响应体
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s [%d]", e.Message, e.Status)
}

// 错误响应体不是约定的{"message":...}结构时返回此错误
type MalformedErrorBody struct {
	Status int
	Body   []byte
}

func (e *MalformedErrorBody) Error() string {
	return fmt.Sprintf("malformed error body [%d]: %s", e.Status, string(e.Body))
}

// 状态码>=400时的默认分类逻辑
func classifyError(resp *http.Response, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return &MalformedErrorBody{Status: resp.StatusCode, Body: body}
	}

	return &APIError{
		Message: payload.Message,
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    body,
	}
}

// 设置自定义错误处理函数，状态码>=400时调用。返回nil表示吞掉错误，
// 此时调用方拿到的是原始响应体
func (client *Client) SetErrorHandler(h func(resp *http.Response, body []byte) error) {
	client.errHandler = h
}

// 所有REST请求的公共入口。method只允许GET/POST/DELETE，其它值不发起网络调用
// 直接报错。返回响应头(分页游标从中读取)和原始响应体。
func (client *Client) do(ctx context.Context, method, path string, params url.Values, body string, auth bool) (http.Header, []byte, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, nil, fmt.Errorf("invalid method %q, must be GET, POST or DELETE", method)
	}

	// 请求头每次重新构造，不共享
	headers := map[string]string{"USER-AGENT": client.userAgent}
	if auth {
		h, err := client.credentials.AuthHeaders(path, method, body, 0)
		if err != nil {
			return nil, nil, err
		}
		h["USER-AGENT"] = client.userAgent
		headers = h
	}

	requrl := client.baseURL + path
	if len(params) > 0 {
		requrl += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requrl, reqBody)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode >= 400 && client.errHandler != nil {
		if err := client.errHandler(resp, data); err != nil {
			return resp.Header, data, err
		}
	}

	return resp.Header, data, nil
}

// GET请求并解析JSON响应
func (client *Client) get(ctx context.Context, path string, params url.Values, auth bool, out interface{}) error {
	_, data, err := client.do(ctx, http.MethodGet, path, params, "", auth)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// POST请求，payload序列化一次，签名和发送使用同一份文本
func (client *Client) post(ctx context.Context, path string, payload interface{}, auth bool, out interface{}) error {
	var body string
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = string(data)
	}

	_, data, err := client.do(ctx, http.MethodPost, path, nil, body, auth)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// DELETE请求并解析JSON响应
func (client *Client) delete(ctx context.Context, path string, params url.Values, auth bool, out interface{}) error {
	_, data, err := client.do(ctx, http.MethodDelete, path, params, "", auth)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
