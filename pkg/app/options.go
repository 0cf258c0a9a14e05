package app

import (
	"time"

	"github.com/lk2023060901/kidlingo/pkg/logger"
)

// Options 应用程序配置选项
type Options struct {
	Name        string
	StopTimeout time.Duration
	Logger      logger.Logger
}

// Option 定义配置函数
type Option func(*Options)

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{
		Name:        AppName,
		StopTimeout: 10 * time.Second,
		Logger:      logger.Default(),
	}
}

func WithLogger(l logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithStopTimeout 设置优雅停止超时时间
func WithStopTimeout(t time.Duration) Option {
	return func(o *Options) { o.StopTimeout = t }
}
