package main

import (
	"time"

	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/metrics"
	"github.com/lk2023060901/kidlingo/app/learner/internal/payment"
	"github.com/lk2023060901/kidlingo/app/learner/internal/reminder"
	"github.com/lk2023060901/kidlingo/app/learner/internal/session"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"github.com/lk2023060901/kidlingo/pkg/prometheus"
)

// AutopilotConfig 脚本流程的重试与超时
type AutopilotConfig struct {
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Config learner 配置
type Config struct {
	Log        logger.Config     `mapstructure:"log"`
	API        api.Config        `mapstructure:"api"`
	Session    session.Config    `mapstructure:"session"`
	Metrics    metrics.Config    `mapstructure:"metrics"`
	Prometheus prometheus.Config `mapstructure:"prometheus"`
	Payment    payment.Config    `mapstructure:"payment"`
	Reminder   reminder.Config   `mapstructure:"reminder"`
	Autopilot  AutopilotConfig   `mapstructure:"autopilot"`

	// ProfileLogSize 档案仓库保留的动作日志条数
	ProfileLogSize int `mapstructure:"profile_log_size"`
	// Origin 邀请链接使用的站点地址
	Origin string `mapstructure:"origin"`
}

// defaultConfig 命令行默认把会话加密写入本地文件，多次调用之间保持登录
func defaultConfig() *Config {
	sess := session.DefaultConfig()
	sess.Backend = session.BackendFile

	log := logger.DefaultConfig()
	log.Level = logger.WarnLevel

	return &Config{
		Log:        *log,
		API:        *api.DefaultConfig(),
		Session:    *sess,
		Metrics:    *metrics.DefaultConfig(),
		Prometheus: *prometheus.DefaultConfig(),
		Payment:    *payment.DefaultConfig(),
		Reminder:   *reminder.DefaultConfig(),
		Autopilot: AutopilotConfig{
			Retries:    2,
			RetryDelay: time.Second,
			Timeout:    15 * time.Second,
		},
		ProfileLogSize: 64,
		Origin:         "http://localhost:3000",
	}
}
