package main

import (
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/auth"
	"github.com/lk2023060901/kidlingo/app/learner/internal/chat"
	"github.com/lk2023060901/kidlingo/app/learner/internal/dashboard"
	"github.com/lk2023060901/kidlingo/app/learner/internal/event"
	"github.com/lk2023060901/kidlingo/app/learner/internal/leaderboard"
	"github.com/lk2023060901/kidlingo/app/learner/internal/lesson"
	"github.com/lk2023060901/kidlingo/app/learner/internal/metrics"
	"github.com/lk2023060901/kidlingo/app/learner/internal/payment"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/app/learner/internal/reminder"
	"github.com/lk2023060901/kidlingo/app/learner/internal/report"
	"github.com/lk2023060901/kidlingo/app/learner/internal/review"
	"github.com/lk2023060901/kidlingo/app/learner/internal/session"
	"github.com/lk2023060901/kidlingo/app/learner/internal/shop"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"github.com/lk2023060901/kidlingo/pkg/prometheus"
)

// Learner 命令行用到的全部组件
type Learner struct {
	Config      *Config
	Logger      logger.Logger
	Bus         *event.Bus
	Metrics     *metrics.Metrics
	Exporter    *prometheus.Exporter
	Sessions    *session.Manager
	Store       *profile.Store
	Client      *api.Client
	Auth        *auth.Service
	Profile     *profile.Service
	Lessons     *lesson.Service
	Review      *review.Service
	Shop        *shop.Service
	Payment     *payment.Service
	Dashboard   *dashboard.Service
	Leaderboard *leaderboard.Service
	Report      *report.Service
	Chat        *chat.Service
	Reminder    *reminder.Scheduler
}

// provideAPIConfig 提供后端客户端配置
func provideAPIConfig(cfg *Config) *api.Config {
	return &cfg.API
}

// provideSessionConfig 提供会话配置
func provideSessionConfig(cfg *Config) *session.Config {
	return &cfg.Session
}

// provideMetricsConfig 提供指标配置
func provideMetricsConfig(cfg *Config) *metrics.Config {
	return &cfg.Metrics
}

// providePrometheusConfig 提供 Prometheus 配置
func providePrometheusConfig(cfg *Config) *prometheus.Config {
	return &cfg.Prometheus
}

// providePaymentConfig 提供支付配置
func providePaymentConfig(cfg *Config) *payment.Config {
	return &cfg.Payment
}

// provideReminderConfig 提供复习提醒配置
func provideReminderConfig(cfg *Config) *reminder.Config {
	return &cfg.Reminder
}

// provideExporter 创建导出器并注册 learner 指标
func provideExporter(cfg *prometheus.Config, m *metrics.Metrics, l logger.Logger) (*prometheus.Exporter, error) {
	exporter, err := prometheus.New(cfg, l)
	if err != nil {
		return nil, err
	}
	if err := m.Register(exporter.Registry()); err != nil {
		return nil, err
	}
	return exporter, nil
}

// provideSessionManager 会话管理器，cleanup 时释放存储
func provideSessionManager(cfg *session.Config, l logger.Logger) (*session.Manager, func(), error) {
	store, err := session.NewStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	mgr, err := session.NewManager(cfg, store, l)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := mgr.Close(); err != nil {
			l.Warn("close session store failed", "error", err)
		}
	}
	return mgr, cleanup, nil
}

// provideProfileStore 档案仓库
func provideProfileStore(cfg *Config) *profile.Store {
	return profile.NewStore(cfg.ProfileLogSize)
}

// provideAuthService 认证服务，cleanup 时取消过期事件订阅
func provideAuthService(
	client *api.Client,
	sessions *session.Manager,
	store *profile.Store,
	bus *event.Bus,
	v *config.Validator,
	l logger.Logger,
) (*auth.Service, func()) {
	svc := auth.NewService(client, sessions, store, bus, v, l)
	return svc, svc.Close
}
