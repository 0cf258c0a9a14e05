// mockapi 在本地提供内存版学习平台后端，供 learner 开发联调
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kidlingo/app/mockapi/backend"
	"github.com/lk2023060901/kidlingo/pkg/app"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"github.com/lk2023060901/kidlingo/pkg/prometheus"
	"github.com/lk2023060901/kidlingo/pkg/web"
	"github.com/lk2023060901/kidlingo/pkg/web/middleware"
)

// BackendConfig 假后端行为
type BackendConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	AutoPayAfter int           `mapstructure:"auto_pay_after"`
	BankAccount  string        `mapstructure:"bank_account"`
	BankCode     string        `mapstructure:"bank_code"`
	PublicURL    string        `mapstructure:"public_url"`
}

// Config mockapi 配置
type Config struct {
	Log        logger.Config              `mapstructure:"log"`
	Web        web.Config                 `mapstructure:"web"`
	Prometheus prometheus.Config          `mapstructure:"prometheus"`
	RateLimit  middleware.RateLimitConfig `mapstructure:"rate_limit"`
	// CORS 允许的来源，为空时全部放行
	CORS    []string      `mapstructure:"cors"`
	Backend BackendConfig `mapstructure:"backend"`
}

func defaultConfig() *Config {
	return &Config{
		Log: *logger.DefaultConfig(),
		Web: *web.DefaultConfig(),
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: 200,
			Burst:             400,
			PerIP:             true,
			SkipPaths:         []string{"/health", "/metrics"},
		},
		Backend: BackendConfig{
			TokenTTL:  time.Hour,
			BankCode:  "CTG",
			PublicURL: "http://localhost:8000",
		},
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 1. 加载配置
	cfg := defaultConfig()
	if _, err := app.LoadConfig(cfg, defaultConfig()); err != nil {
		return err
	}

	// 2. 初始化 Logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return err
	}
	logger.SetDefault(l)

	// 3. 指标
	exporter, err := prometheus.New(&cfg.Prometheus, l)
	if err != nil {
		return err
	}

	// 4. 假后端
	opts := []backend.Option{
		backend.WithLogger(l),
		backend.WithJWT(cfg.Backend.JWTSecret, cfg.Backend.TokenTTL),
		backend.AutoPayAfter(cfg.Backend.AutoPayAfter),
		backend.WithPublicURL(cfg.Backend.PublicURL),
	}
	if cfg.Backend.BankAccount != "" {
		opts = append(opts, backend.WithBank(cfg.Backend.BankAccount, cfg.Backend.BankCode))
	}
	b, err := backend.New(opts...)
	if err != nil {
		return err
	}

	// 5. Web Server
	srv, err := web.NewServer(&cfg.Web, l)
	if err != nil {
		return err
	}
	router := srv.Router()
	router.Use(middleware.CORS(cfg.CORS...))

	limiter := middleware.NewRateLimiter(l.Named("ratelimit"), cfg.RateLimit)
	router.Use(middleware.RateLimit(limiter))
	router.Use(middleware.NewHTTPMetrics(exporter.Registry(), "mockapi").Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(exporter.Handler()))
	b.Register(router)

	// 6. 运行
	application := app.NewBaseApp(app.WithName("mockapi"), app.WithLogger(l))
	application.AppendServer(srv, exporter)
	application.AppendCloser(app.CloserFunc(l.Sync))

	l.Info("starting mock api", "addr", cfg.Web.Addr, "auto_pay_after", cfg.Backend.AutoPayAfter)
	return application.Run()
}
