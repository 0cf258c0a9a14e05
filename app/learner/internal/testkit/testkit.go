// Package testkit 在 httptest 上启动内存后端，并组装好 learner 客户端的各个组件
package testkit

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/auth"
	"github.com/lk2023060901/kidlingo/app/learner/internal/event"
	"github.com/lk2023060901/kidlingo/app/learner/internal/metrics"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/app/learner/internal/session"
	"github.com/lk2023060901/kidlingo/app/mockapi/backend"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// Password 测试账号统一密码
const Password = "secret1"

// Env 一套完整的客户端环境
type Env struct {
	Backend   *backend.Backend
	Server    *httptest.Server
	Bus       *event.Bus
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
	Sessions  *session.Manager
	Store     *profile.Store
	Client    *api.Client
	Validator *config.Validator
	Profile   *profile.Service
	Auth      *auth.Service
	Logger    logger.Logger
}

// New 创建环境，测试结束时自动关闭
func New(t testing.TB, opts ...backend.Option) *Env {
	t.Helper()
	l := logger.NewNoop()

	b, err := backend.New(append([]backend.Option{backend.WithLogger(l)}, opts...)...)
	require.NoError(t, err)
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(nil)
	require.NoError(t, err)
	require.NoError(t, m.Register(reg))

	bus := event.NewBus(l)
	sessions, err := session.NewManager(nil, session.NewMemoryStore(), l)
	require.NoError(t, err)

	client, err := api.NewClient(&api.Config{BaseURL: srv.URL + backend.APIPrefix, RateLimit: 1000, Burst: 1000}, sessions, bus, m, l)
	require.NoError(t, err)

	v := config.NewValidator()
	store := profile.NewStore(0)
	env := &Env{
		Backend:   b,
		Server:    srv,
		Bus:       bus,
		Metrics:   m,
		Registry:  reg,
		Sessions:  sessions,
		Store:     store,
		Client:    client,
		Validator: v,
		Profile:   profile.NewService(client, store, v, l),
		Auth:      auth.NewService(client, sessions, store, bus, v, l),
		Logger:    l,
	}
	t.Cleanup(env.Auth.Close)
	return env
}

// Login 建号、登录并加载档案，返回用户 ID
func (e *Env) Login(t testing.TB, email string) int64 {
	t.Helper()
	id, err := e.Backend.CreateUser(email, Password, "Bin")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.Auth.Login(ctx, auth.LoginForm{Email: email, Password: Password}))
	_, err = e.Profile.Refresh(ctx)
	require.NoError(t, err)
	return id
}
