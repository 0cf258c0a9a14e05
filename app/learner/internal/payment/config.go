package payment

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Config 支付配置
type Config struct {
	// BankAccount 收款账号，写入二维码
	BankAccount string `mapstructure:"bank_account" json:"bank_account"`
	// BankCode 银行代码
	BankCode string `mapstructure:"bank_code" json:"bank_code"`

	PollInterval time.Duration `mapstructure:"poll_interval" json:"poll_interval"`
	// SuccessDelay 确认支付后延迟多久触发成功回调
	SuccessDelay time.Duration `mapstructure:"success_delay" json:"success_delay"`
	MaxAttempts  int           `mapstructure:"max_attempts" json:"max_attempts"`
	// Deadline 轮询总时长上限
	Deadline time.Duration `mapstructure:"deadline" json:"deadline"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		BankCode:     "CTG",
		PollInterval: 3 * time.Second,
		SuccessDelay: 2 * time.Second,
		MaxAttempts:  200,
		Deadline:     10 * time.Minute,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return errors.New("payment: poll_interval must be positive")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("payment: max_attempts must be positive")
	}
	if c.Deadline <= 0 {
		return errors.New("payment: deadline must be positive")
	}
	return nil
}
