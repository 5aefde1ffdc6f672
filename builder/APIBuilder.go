package builder

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/betterjun/cbpro"
)

type APIBuilder struct {
	client        *http.Client
	httpTimeout   time.Duration
	apiKey        string
	secretkey     string
	apiPassphrase string
	proxyURL      string
	sandbox       bool
}

func NewAPIBuilder() (builder *APIBuilder) {
	_client := &http.Client{
		Timeout: 30 * time.Second,
	}
	transport := &http.Transport{
		MaxIdleConns:    10,
		IdleConnTimeout: 4 * time.Second,
	}
	_client.Transport = transport
	return &APIBuilder{client: _client}
}

func NewCustomAPIBuilder(client *http.Client) (builder *APIBuilder) {
	return &APIBuilder{client: client}
}

func (builder *APIBuilder) APIKey(key string) (_builder *APIBuilder) {
	builder.apiKey = key
	return builder
}

func (builder *APIBuilder) APISecretkey(key string) (_builder *APIBuilder) {
	builder.secretkey = key
	return builder
}

func (builder *APIBuilder) APIPassphrase(passphrase string) (_builder *APIBuilder) {
	builder.apiPassphrase = passphrase
	return builder
}

// 使用沙盒环境，REST和websocket都切到sandbox地址
func (builder *APIBuilder) Sandbox() (_builder *APIBuilder) {
	builder.sandbox = true
	return builder
}

func (builder *APIBuilder) HttpProxy(proxyUrl string) (_builder *APIBuilder) {
	if proxyUrl == "" {
		return builder
	}
	proxy, err := url.Parse(proxyUrl)
	if err != nil {
		return builder
	}
	builder.proxyURL = proxyUrl
	transport, ok := builder.client.Transport.(*http.Transport)
	if ok {
		transport.Proxy = http.ProxyURL(proxy)
	}
	return builder
}

func (builder *APIBuilder) HttpTimeout(timeout time.Duration) (_builder *APIBuilder) {
	builder.httpTimeout = timeout
	builder.client.Timeout = timeout
	transport, ok := builder.client.Transport.(*http.Transport)
	if ok {
		transport.ResponseHeaderTimeout = timeout
		transport.TLSHandshakeTimeout = timeout
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return net.DialTimeout(network, addr, timeout)
		}
	}
	return builder
}

func (builder *APIBuilder) restURL() string {
	if builder.sandbox {
		return cbpro.SandboxURL
	}
	return cbpro.URL
}

func (builder *APIBuilder) feedURL() string {
	if builder.sandbox {
		return cbpro.SandboxFeedURL
	}
	return cbpro.FeedURL
}

// 构建REST客户端。设置了key时构建鉴权客户端，凭据不全会报错
func (builder *APIBuilder) BuildREST() (*cbpro.Client, error) {
	return builder.BuildRESTWithURL(builder.restURL())
}

// 使用自定义地址构建REST客户端
func (builder *APIBuilder) BuildRESTWithURL(baseURL string) (*cbpro.Client, error) {
	if builder.apiKey == "" && builder.secretkey == "" && builder.apiPassphrase == "" {
		return cbpro.NewClient(builder.client, baseURL), nil
	}
	return cbpro.NewAuthenticatedClient(builder.client, baseURL,
		builder.apiKey, builder.secretkey, builder.apiPassphrase)
}

// 构建行情连接，不自动连接，由调用方决定何时Connect
func (builder *APIBuilder) BuildFeed(registry *cbpro.ChannelRegistry) *cbpro.Feed {
	return builder.BuildFeedWithURL(builder.feedURL(), registry)
}

// 使用自定义地址构建行情连接
func (builder *APIBuilder) BuildFeedWithURL(feedURL string, registry *cbpro.ChannelRegistry) *cbpro.Feed {
	return cbpro.NewFeed(feedURL, builder.proxyURL, registry)
}
