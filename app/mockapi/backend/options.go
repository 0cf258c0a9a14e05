package backend

import (
	"time"

	"github.com/lk2023060901/kidlingo/pkg/logger"
)

// Options 假后端选项
type Options struct {
	JWTSecret    string
	TokenTTL     time.Duration
	AutoPayAfter int
	Clock        func() time.Time
	Logger       logger.Logger
	BankAccount  string
	BankCode     string
	PublicURL    string
}

// Option 选项函数
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		JWTSecret:   "kidlingo-mock-secret",
		TokenTTL:    time.Hour,
		Clock:       time.Now,
		BankAccount: "0000123456789",
		BankCode:    "CTG",
		PublicURL:   "http://localhost:8000",
	}
}

// WithJWT 令牌密钥与有效期，测试中可用很短的有效期触发过期
func WithJWT(secret string, ttl time.Duration) Option {
	return func(o *Options) {
		if secret != "" {
			o.JWTSecret = secret
		}
		if ttl > 0 {
			o.TokenTTL = ttl
		}
	}
}

// AutoPayAfter 第 n 次查询订单状态时自动置为已支付，0 表示关闭
func AutoPayAfter(n int) Option {
	return func(o *Options) { o.AutoPayAfter = n }
}

// WithClock 注入时钟
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Clock = now }
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithBank 收款账号，用于生成二维码地址
func WithBank(account, code string) Option {
	return func(o *Options) {
		o.BankAccount = account
		o.BankCode = code
	}
}

// WithPublicURL 上传文件返回地址的前缀
func WithPublicURL(u string) Option {
	return func(o *Options) { o.PublicURL = u }
}
