// Package session 保存登录令牌，语义与浏览器端名为 token 的 cookie 一致
package session

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"github.com/lk2023060901/kidlingo/pkg/security"
)

// Manager 会话管理器，实现 api.TokenSource
type Manager struct {
	config *Config
	store  Store
	logger logger.Logger
	now    func() time.Time
}

// NewManager 创建会话管理器
func NewManager(cfg *Config, store Store, l logger.Logger) (*Manager, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "merge session config")
	}
	if store == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "store is nil")
	}
	return &Manager{
		config: newCfg,
		store:  store,
		logger: logger.OrNoop(l).Named("session"),
		now:    time.Now,
	}, nil
}

// Set 保存令牌，过期时间取 now+TTL 与令牌 exp 中较早者
func (m *Manager) Set(ctx context.Context, token string) error {
	expires := m.now().Add(m.config.TTL)
	if exp, ok := security.PeekExpiry(token); ok && exp.Before(expires) {
		expires = exp
	}
	return m.store.Save(ctx, &Cookie{
		Name:    m.config.Name,
		Value:   token,
		Path:    m.config.Path,
		Expires: expires,
	})
}

// Token 当前有效令牌，缺失或已过期时返回空串 (过期的顺带清除)
func (m *Manager) Token(ctx context.Context) string {
	c, err := m.store.Load(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "load session failed", "error", err)
		return ""
	}
	if c == nil || c.Value == "" {
		return ""
	}
	if !c.Expires.IsZero() && !m.now().Before(c.Expires) {
		m.logger.InfoContext(ctx, "session expired locally", "expired_at", c.Expires)
		if err := m.store.Clear(ctx); err != nil {
			m.logger.WarnContext(ctx, "clear expired session failed", "error", err)
		}
		return ""
	}
	return c.Value
}

// Expiry 当前会话的过期时间
func (m *Manager) Expiry(ctx context.Context) (time.Time, bool) {
	c, err := m.store.Load(ctx)
	if err != nil || c == nil {
		return time.Time{}, false
	}
	return c.Expires, true
}

// Clear 清除令牌
func (m *Manager) Clear(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// Close 释放存储
func (m *Manager) Close() error {
	return m.store.Close()
}
