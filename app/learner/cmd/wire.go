//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
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
)

func InitLearner(cfg *Config, l logger.Logger) (*Learner, func(), error) {
	panic(wire.Build(
		// 1. 指标
		provideMetricsConfig,
		metrics.New,

		// 2. Prometheus 导出器
		providePrometheusConfig,
		provideExporter,

		// 3. 事件总线
		event.NewBus,

		// 4. 会话
		provideSessionConfig,
		provideSessionManager,
		wire.Bind(new(api.TokenSource), new(*session.Manager)),

		// 5. 后端客户端
		provideAPIConfig,
		api.NewClient,

		// 6. 表单校验
		config.NewValidator,

		// 7. 档案与认证
		provideProfileStore,
		profile.NewService,
		provideAuthService,

		// 8. 学习
		lesson.NewService,
		review.NewService,
		dashboard.NewService,

		// 9. 商店与支付
		shop.NewService,
		providePaymentConfig,
		payment.NewService,
		wire.Bind(new(payment.Refresher), new(*profile.Service)),

		// 10. 社交
		leaderboard.NewService,
		report.NewService,
		chat.NewService,

		// 11. 复习提醒
		provideReminderConfig,
		reminder.New,
		wire.Bind(new(reminder.DueCounter), new(*review.Service)),

		// 12. 组装
		wire.Struct(new(Learner), "*"),
	))
}
