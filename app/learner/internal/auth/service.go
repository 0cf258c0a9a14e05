// Package auth 登录、注册、登出与会话过期处理
package auth

import (
	"context"
	"net/url"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/event"
	"github.com/lk2023060901/kidlingo/app/learner/internal/form"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/app/learner/internal/session"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
)

const (
	msgWrongCredentials = "Email hoặc mật khẩu chưa đúng bé ơi!"
	msgEmailTaken       = "Email này đã được đăng ký rồi bé ơi!"
	// ExpiredMessage 会话过期弹窗文案
	ExpiredMessage = "Phiên đăng nhập đã hết hạn. Bé đăng nhập lại nhé!"
)

var (
	ErrWrongCredentials = errors.New("auth: wrong credentials")
	ErrEmailTaken       = errors.New("auth: email already registered")
	ErrLoginRequired    = errors.WithHint(errors.New("auth: login required"), "Bé cần đăng nhập trước nhé!")
	ErrNoToken          = errors.New("auth: server returned no token")
)

// LoginForm 登录表单
type LoginForm struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm 注册表单
type RegisterForm struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	RefCode  string `json:"ref_code"`
}

var loginMessages = form.Messages{
	"email":    "Vui lòng nhập Email",
	"password": "Vui lòng nhập mật khẩu",
}

var registerMessages = form.Messages{
	"full_name":         "Vui lòng nhập tên",
	"email.required":    "Vui lòng nhập Email",
	"email.email":       "Email chưa đúng định dạng",
	"password.required": "Vui lòng nhập mật khẩu",
	"password.min":      "Mật khẩu ít nhất 6 ký tự nha",
}

// Service 认证服务
type Service struct {
	client    *api.Client
	sessions  *session.Manager
	store     *profile.Store
	validator *config.Validator
	logger    logger.Logger

	mu       sync.Mutex
	expired  bool
	handling bool
	unsub    func()
}

// NewService 创建认证服务并订阅会话过期事件
func NewService(client *api.Client, sessions *session.Manager, store *profile.Store, bus *event.Bus, v *config.Validator, l logger.Logger) *Service {
	s := &Service{
		client:    client,
		sessions:  sessions,
		store:     store,
		validator: v,
		logger:    logger.OrNoop(l).Named("auth"),
	}
	if bus != nil {
		s.unsub = bus.Subscribe(event.SessionExpired, s.onSessionExpired)
	}
	return s
}

// Login 登录并保存令牌，失败时不保存任何令牌
func (s *Service) Login(ctx context.Context, f LoginForm) error {
	if err := form.Check(s.validator, f, loginMessages); err != nil {
		return err
	}

	var tok kidapi.Token
	values := url.Values{"username": {f.Email}, "password": {f.Password}}
	if err := s.client.PostForm(ctx, kidapi.PathLogin, values, &tok, api.Anonymous()); err != nil {
		if api.StatusOf(err) == 400 {
			return errors.WithHint(errors.Mark(err, ErrWrongCredentials), msgWrongCredentials)
		}
		return errors.WithHint(errors.Wrap(err, "login"), api.GenericMessage)
	}
	if tok.AccessToken == "" {
		return errors.WithHint(ErrNoToken, api.GenericMessage)
	}
	if err := s.sessions.Set(ctx, tok.AccessToken); err != nil {
		return errors.Wrap(err, "store session")
	}

	s.mu.Lock()
	s.expired = false
	s.handling = false
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "logged in", "email", f.Email)
	return nil
}

// Register 注册成功后自动登录
func (s *Service) Register(ctx context.Context, f RegisterForm) (*kidapi.User, error) {
	if err := form.Check(s.validator, f, registerMessages); err != nil {
		return nil, err
	}

	req := kidapi.RegisterRequest{Email: f.Email, Password: f.Password, FullName: f.FullName, RefCode: f.RefCode}
	var user kidapi.User
	if err := s.client.Post(ctx, kidapi.PathRegister, req, &user, api.Anonymous()); err != nil {
		if api.StatusOf(err) == 400 {
			return nil, errors.WithHint(errors.Mark(err, ErrEmailTaken), msgEmailTaken)
		}
		return nil, errors.WithHint(errors.Wrap(err, "register"), api.GenericMessage)
	}
	s.logger.InfoContext(ctx, "registered", "user_id", user.ID)

	if err := s.Login(ctx, LoginForm{Email: f.Email, Password: f.Password}); err != nil {
		return &user, err
	}
	return &user, nil
}

// Logout 清除令牌与本地档案
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return errors.Wrap(err, "clear session")
	}
	s.store.Dispatch("logout", profile.Reset{})
	return nil
}

// Authenticated 是否持有有效令牌
func (s *Service) Authenticated(ctx context.Context) bool {
	return s.sessions.Token(ctx) != ""
}

// Require 路由守卫，没有令牌时返回 ErrLoginRequired
func (s *Service) Require(ctx context.Context) error {
	if !s.Authenticated(ctx) {
		return ErrLoginRequired
	}
	return nil
}

// Expired 是否收到过会话过期信号且尚未确认
func (s *Service) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// AcknowledgeExpiry 确认过期提示 (前往登录)，重新允许处理下一次过期
func (s *Service) AcknowledgeExpiry() {
	s.mu.Lock()
	s.handling = false
	s.expired = false
	s.mu.Unlock()
}

// Close 取消事件订阅
func (s *Service) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

// onSessionExpired 同一轮过期只处理一次
func (s *Service) onSessionExpired(e event.Event) {
	s.mu.Lock()
	if s.handling {
		s.mu.Unlock()
		return
	}
	s.handling = true
	s.expired = true
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Error("clear session after expiry failed", "error", err)
	}
	s.store.Dispatch("session_expired", profile.Reset{})
	s.logger.Warn("session expired", "path", e.Payload)
}
