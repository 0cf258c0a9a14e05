package metrics

import (
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
)

// Config 指标配置
type Config struct {
	// Namespace 指标命名空间
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{Namespace: "learner"}
}

// Metrics 学习端客户端指标，nil 接收者上的记录方法均为空操作
type Metrics struct {
	config *Config

	// 后端请求总数
	RequestTotal *prometheus.CounterVec
	// 后端请求延迟
	RequestDuration *prometheus.HistogramVec
	// 当前进行中的请求数
	ActiveRequests prometheus.Gauge
	// 支付轮询次数，按结果分类
	PaymentPolls *prometheus.CounterVec
	// 复习作答次数
	ReviewAnswers *prometheus.CounterVec
}

// New 创建指标
func New(cfg *Config) (*Metrics, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		config: newCfg,

		RequestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "requests_total",
				Help:      "后端请求总数",
			},
			[]string{"endpoint", "result"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: newCfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "后端请求延迟（秒）",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),

		ActiveRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: newCfg.Namespace,
				Name:      "active_requests",
				Help:      "当前进行中的请求数",
			},
		),

		PaymentPolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "payment_polls_total",
				Help:      "订单状态轮询次数",
			},
			[]string{"outcome"},
		),

		ReviewAnswers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "review_answers_total",
				Help:      "复习卡片作答次数",
			},
			[]string{"correct"},
		),
	}, nil
}

// Register 注册指标到 Prometheus Registry
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.RequestTotal,
		m.RequestDuration,
		m.ActiveRequests,
		m.PaymentPolls,
		m.ReviewAnswers,
	}

	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordRequest 记录请求
func (m *Metrics) RecordRequest(endpoint string, success bool, duration float64) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failed"
	}
	m.RequestTotal.WithLabelValues(endpoint, result).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(duration)
}

// IncrActiveRequest 增加活跃请求
func (m *Metrics) IncrActiveRequest() {
	if m != nil {
		m.ActiveRequests.Inc()
	}
}

// DecrActiveRequest 减少活跃请求
func (m *Metrics) DecrActiveRequest() {
	if m != nil {
		m.ActiveRequests.Dec()
	}
}

// RecordPoll outcome 取 pending / paid / error
func (m *Metrics) RecordPoll(outcome string) {
	if m != nil {
		m.PaymentPolls.WithLabelValues(outcome).Inc()
	}
}

// RecordReviewAnswer 记录一次复习作答
func (m *Metrics) RecordReviewAnswer(correct bool) {
	if m == nil {
		return
	}
	label := "false"
	if correct {
		label = "true"
	}
	m.ReviewAnswers.WithLabelValues(label).Inc()
}
