package logger

import (
	"os"
	"sync"
)

var (
	defaultLogger Logger
	defaultMu     sync.RWMutex
)

// InitDefault 初始化默认 logger
func InitDefault(cfg *Config, opts ...Option) (*BaseLogger, error) {
	l, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	SetDefault(l)
	return l, nil
}

// InitDefaultFromEnv 从环境变量初始化默认 logger
// KIDLINGO_LOG_LEVEL / KIDLINGO_LOG_FORMAT / KIDLINGO_LOG_PATH
func InitDefaultFromEnv() (*BaseLogger, error) {
	cfg := &Config{}
	if level := os.Getenv("KIDLINGO_LOG_LEVEL"); level != "" {
		cfg.Level = Level(level)
	}
	if format := os.Getenv("KIDLINGO_LOG_FORMAT"); format != "" {
		cfg.Format = Format(format)
	}
	if path := os.Getenv("KIDLINGO_LOG_PATH"); path != "" {
		cfg.EnableFile = true
		cfg.OutputPath = path
	}
	return InitDefault(cfg)
}

// SetDefault 设置默认 logger
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default 获取默认 logger，未初始化时返回 NoopLogger
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultLogger == nil {
		return NewNoop()
	}
	return defaultLogger
}

// OrNoop 返回 l，l 为 nil 时返回默认 logger
func OrNoop(l Logger) Logger {
	if l == nil {
		return Default()
	}
	return l
}
