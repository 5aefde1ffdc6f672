package cbpro

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 鉴权凭据，构造后不可变
type Credentials struct {
	Key        string
	Secret     string // base64编码的密钥
	Passphrase string
}

var ErrNotAuthenticated = errors.New("client is not properly configured for authorization")

func (c *Credentials) complete() bool {
	return c != nil && c.Key != "" && c.Secret != "" && c.Passphrase != ""
}

// 签名时间戳为秒，带小数部分。整数秒也要带".0"，与服务器校验的十进制格式一致
func formatTimestamp(timestamp float64) string {
	ts := strconv.FormatFloat(timestamp, 'f', -1, 64)
	if !strings.Contains(ts, ".") {
		ts += ".0"
	}
	return ts
}

// 计算请求签名。待签名串为 timestamp+method+path+body 的ASCII字节，
// 密钥为base64解码后的Secret，签名结果再做base64编码。
func (c *Credentials) Sign(timestamp, method, path, body string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(c.Secret)
	if err != nil {
		return "", fmt.Errorf("invalid api secret: %v", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(timestamp + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// 生成鉴权请求头。body必须是实际发送的JSON文本，序列化一次、签名和发送共用，
// 否则签名会失效。timestamp传0使用当前时间，显式传入仅用于测试。
func (c *Credentials) AuthHeaders(path, method, body string, timestamp float64) (map[string]string, error) {
	if !c.complete() {
		return nil, ErrNotAuthenticated
	}

	if timestamp == 0 {
		timestamp = float64(time.Now().UnixNano()) / float64(time.Second)
	}
	ts := formatTimestamp(timestamp)

	sign, err := c.Sign(ts, method, path, body)
	if err != nil {
		return nil, err
	}

	// 每次调用都构造新的map，禁止共享可变的默认请求头
	return map[string]string{
		"USER-AGENT":           DefaultUserAgent,
		"Content-Type":         "application/json",
		"CB-ACCESS-SIGN":       sign,
		"CB-ACCESS-TIMESTAMP":  ts,
		"CB-ACCESS-KEY":        c.Key,
		"CB-ACCESS-PASSPHRASE": c.Passphrase,
	}, nil
}
