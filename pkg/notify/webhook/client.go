// Package webhook 把通知以 JSON POST 到任意 HTTP 地址
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/pkg/notify"
)

var _ notify.Notifier = (*Client)(nil)

// Config webhook 配置
type Config struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

// Payload 请求体
type Payload struct {
	Title  string            `json:"title"`
	Text   string            `json:"text"`
	Labels map[string]string `json:"labels,omitempty"`
	SentAt time.Time         `json:"sent_at"`
}

// Client webhook 通知器
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient 创建 webhook 通知器
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.Wrap(notify.ErrInvalidConfig, "webhook url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (c *Client) Name() string { return "webhook" }

// Send 2xx 视为成功
func (c *Client) Send(ctx context.Context, msg *notify.Message) error {
	at := msg.At
	if at.IsZero() {
		at = time.Now()
	}
	body, err := json.Marshal(Payload{Title: msg.Title, Text: msg.Body, Labels: msg.Labels, SentAt: at})
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "post webhook"), notify.ErrSendFailed)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.Mark(errors.Newf("webhook returned %d", resp.StatusCode), notify.ErrSendFailed)
	}
	return nil
}
