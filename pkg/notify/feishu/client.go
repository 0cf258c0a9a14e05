package feishu

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/notify"
)

var _ notify.Notifier = (*Client)(nil)

// Client 飞书自定义机器人
type Client struct {
	config *Config
	client *http.Client
	now    func() time.Time
}

// NewClient 创建飞书客户端
func NewClient(cfg *Config) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: merged,
		client: &http.Client{Timeout: merged.Timeout},
		now:    time.Now,
	}, nil
}

func (c *Client) Name() string { return "feishu" }

// Send 以文本消息发送
func (c *Client) Send(ctx context.Context, msg *notify.Message) error {
	payload := map[string]interface{}{
		"msg_type": "text",
		"content":  map[string]string{"text": msg.Text()},
	}
	if c.config.Secret != "" {
		ts := c.now().Unix()
		payload["timestamp"] = fmt.Sprintf("%d", ts)
		payload["sign"] = c.genSign(ts)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "post webhook"), ErrRequestFailed)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return errors.Mark(errors.Wrapf(err, "status %d", resp.StatusCode), ErrResponseInvalid)
	}
	if result.Code != 0 {
		return errors.Mark(errors.Newf("%s (code=%d)", result.Msg, result.Code), ErrAPIError)
	}
	return nil
}

// genSign timestamp + "\n" + secret 作为 HmacSHA256 的 key，对空串签名
func (c *Client) genSign(timestamp int64) string {
	h := hmac.New(sha256.New, []byte(fmt.Sprintf("%d\n%s", timestamp, c.config.Secret)))
	h.Write([]byte{})
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
