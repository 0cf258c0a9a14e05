package reminder

import (
	"time"
	_ "time/tzdata"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/pkg/notify"
	"github.com/lk2023060901/kidlingo/pkg/notify/feishu"
	"github.com/lk2023060901/kidlingo/pkg/notify/webhook"
	"github.com/robfig/cron/v3"
)

// Config 复习提醒配置
type Config struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Spec 标准五段 cron 表达式
	Spec     string `mapstructure:"spec" json:"spec"`
	Timezone string `mapstructure:"timezone" json:"timezone"`
	// Timeout 单次检查的超时
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`

	// Notifier 取 webhook / feishu，URL 为空时不发送
	Notifier string         `mapstructure:"notifier" json:"notifier"`
	Webhook  webhook.Config `mapstructure:"webhook" json:"webhook"`
	Feishu   feishu.Config  `mapstructure:"feishu" json:"feishu"`
}

// DefaultConfig 每天 19:00 检查
func DefaultConfig() *Config {
	return &Config{
		Spec:     "0 19 * * *",
		Timezone: "Asia/Ho_Chi_Minh",
		Timeout:  30 * time.Second,
		Notifier: "webhook",
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.Spec); err != nil {
		return errors.Wrapf(err, "reminder: invalid spec %q", c.Spec)
	}
	if _, err := c.location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "reminder: invalid timezone %q", c.Timezone)
	}
	return loc, nil
}

// NewNotifier 按配置创建通知器，未配置地址时返回 notify.Noop
func NewNotifier(c *Config) (notify.Notifier, error) {
	switch c.Notifier {
	case "feishu":
		if c.Feishu.WebhookURL == "" {
			return notify.Noop{}, nil
		}
		return feishu.NewClient(&c.Feishu)
	case "webhook", "":
		if c.Webhook.URL == "" {
			return notify.Noop{}, nil
		}
		return webhook.NewClient(c.Webhook)
	default:
		return nil, errors.Wrapf(notify.ErrInvalidConfig, "unknown notifier %q", c.Notifier)
	}
}
