package api

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Config 后端客户端配置
type Config struct {
	// BaseURL API 根地址
	BaseURL string `mapstructure:"base_url" json:"base_url" validate:"required,url"`
	// Timeout 单次请求超时
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
	// RateLimit 每秒允许的请求数，<=0 表示不限
	RateLimit float64 `mapstructure:"rate_limit" json:"rate_limit"`
	// Burst 令牌桶容量
	Burst int `mapstructure:"burst" json:"burst"`
	// UserAgent 请求头
	UserAgent string `mapstructure:"user_agent" json:"user_agent"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "http://localhost:8000/api/v1",
		Timeout:   15 * time.Second,
		RateLimit: 20,
		Burst:     10,
		UserAgent: "kidlingo-learner",
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("api: base_url is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return errors.Newf("api: base_url must be http(s), got %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return errors.New("api: timeout must be positive")
	}
	return nil
}
