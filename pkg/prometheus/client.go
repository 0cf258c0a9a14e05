package prometheus

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter 独立 Registry 加可选的 /metrics HTTP 服务，实现 app.Server
type Exporter struct {
	config   *Config
	registry *prometheus.Registry
	logger   logger.Logger

	mu     sync.Mutex
	server *http.Server
	addr   string
	closed bool
}

// New 创建 Exporter
func New(cfg *Config, l logger.Logger) (*Exporter, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	if merged.EnableGoCollector {
		reg.MustRegister(collectors.NewGoCollector())
	}
	if merged.EnableProcessCollector {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return &Exporter{
		config:   merged,
		registry: reg,
		logger:   logger.OrNoop(l).Named("prometheus"),
	}, nil
}

// Registry 供各模块注册指标
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler 返回 /metrics handler，可挂到已有的 HTTP 服务
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Start 在 Enabled 时监听独立端口
func (e *Exporter) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrExporterClosed
	}
	if !e.config.Enabled || e.server != nil {
		return nil
	}

	ln, err := net.Listen("tcp", e.config.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", e.config.Addr)
	}

	mux := http.NewServeMux()
	mux.Handle(e.config.Path, e.Handler())
	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  e.config.Timeout,
		WriteTimeout: e.config.Timeout,
	}
	e.server = srv
	e.addr = ln.Addr().String()

	e.logger.Info("metrics exporter listening", "addr", e.addr, "path", e.config.Path)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics exporter stopped", "error", err)
		}
	}()
	return nil
}

// Addr 实际监听地址
func (e *Exporter) Addr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addr
}

// Stop 关闭 HTTP 服务
func (e *Exporter) Stop() error {
	e.mu.Lock()
	srv := e.server
	e.closed = true
	e.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.config.Timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
