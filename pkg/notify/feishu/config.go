package feishu

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/pkg/notify"
)

// Config 飞书机器人配置
type Config struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Secret     string        `mapstructure:"secret"` // 可选，配置后附带签名
	Timeout    time.Duration `mapstructure:"timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.WebhookURL == "" {
		return errors.Wrap(notify.ErrInvalidConfig, "webhook_url is required")
	}
	if !strings.HasPrefix(c.WebhookURL, "http://") && !strings.HasPrefix(c.WebhookURL, "https://") {
		return errors.Wrap(notify.ErrInvalidConfig, "webhook_url must start with http:// or https://")
	}
	return nil
}
