// Package payment 下单、优惠码校验与订单状态轮询
package payment

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/event"
	"github.com/lk2023060901/kidlingo/app/learner/internal/metrics"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
)

var ErrCouponRequired = errors.WithHint(errors.New("payment: coupon code required"), "Vui lòng nhập mã giảm giá")

// Refresher 支付成功后刷新档案
type Refresher interface {
	Refresh(ctx context.Context) (profile.State, error)
}

// Service 支付服务
type Service struct {
	config    *Config
	client    *api.Client
	bus       *event.Bus
	refresher Refresher
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewService 创建支付服务，refresher 可为 nil
func NewService(cfg *Config, client *api.Client, bus *event.Bus, refresher Refresher, m *metrics.Metrics, l logger.Logger) (*Service, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		config:    newCfg,
		client:    client,
		bus:       bus,
		refresher: refresher,
		metrics:   m,
		logger:    logger.OrNoop(l).Named("payment"),
	}, nil
}

// Config 当前配置
func (s *Service) Config() *Config {
	return s.config
}

// CreateOrder 创建通用订单
func (s *Service) CreateOrder(ctx context.Context, req kidapi.OrderRequest) (*kidapi.Order, error) {
	var order kidapi.Order
	if err := s.client.Post(ctx, kidapi.PathOrders, req, &order); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	s.logger.InfoContext(ctx, "order created", "order_id", order.OrderID, "amount", order.Amount)
	return &order, nil
}

// Checkout 按结算单下单
func (s *Service) Checkout(ctx context.Context, c *Checkout) (*kidapi.Order, error) {
	return s.CreateOrder(ctx, c.OrderRequest())
}

// CreateGemOrder 购买后台配置的宝石包
func (s *Service) CreateGemOrder(ctx context.Context, packID int64, coupon string) (*kidapi.GemOrder, error) {
	req := kidapi.GemOrderRequest{GemPackID: packID, CouponCode: strings.TrimSpace(coupon)}
	var order kidapi.GemOrder
	if err := s.client.Post(ctx, kidapi.PathGemOrders, req, &order); err != nil {
		return nil, errors.Wrapf(err, "create gem order for pack %d", packID)
	}
	s.logger.InfoContext(ctx, "gem order created",
		"order_id", order.OrderID,
		"final_amount", order.FinalAmount,
		"total_gems", order.TotalGems,
	)
	return &order, nil
}

// GemPacks 可售宝石包
func (s *Service) GemPacks(ctx context.Context) ([]kidapi.GemPack, error) {
	var packs []kidapi.GemPack
	if err := s.client.Get(ctx, kidapi.PathGemPacks, &packs); err != nil {
		return nil, errors.Wrap(err, "fetch gem packs")
	}
	return packs, nil
}

// ValidateCoupon 校验优惠码，无效时返回 Valid=false 与原因，不视为错误
func (s *Service) ValidateCoupon(ctx context.Context, code string, originalAmount int) (*kidapi.CouponValidateResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponRequired
	}
	req := kidapi.CouponValidateRequest{CouponCode: code, OriginalAmount: originalAmount}
	var resp kidapi.CouponValidateResponse
	if err := s.client.Post(ctx, kidapi.PathValidateCoupon, req, &resp); err != nil {
		return nil, errors.Wrap(err, "validate coupon")
	}
	return &resp, nil
}

// Order 查询订单
func (s *Service) Order(ctx context.Context, orderID string) (*kidapi.Order, error) {
	var order kidapi.Order
	if err := s.client.Get(ctx, kidapi.OrderPath(orderID), &order); err != nil {
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}
	return &order, nil
}
