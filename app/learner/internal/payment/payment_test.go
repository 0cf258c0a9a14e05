package payment

import (
	"context"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/event"
	"github.com/lk2023060901/kidlingo/app/learner/internal/testkit"
	"github.com/lk2023060901/kidlingo/app/mockapi/backend"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *Config {
	return &Config{
		BankAccount:  "0000123456789",
		PollInterval: 5 * time.Millisecond,
		SuccessDelay: 10 * time.Millisecond,
		MaxAttempts:  50,
		Deadline:     5 * time.Second,
	}
}

func newService(t *testing.T, env *testkit.Env, cfg *Config) *Service {
	t.Helper()
	svc, err := NewService(cfg, env.Client, env.Bus, env.Profile, env.Metrics, env.Logger)
	require.NoError(t, err)
	return svc
}

func TestQRURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		orderID string
		wantDes string
		wantBnk string
	}{
		{name: "prefixed id", cfg: &Config{BankAccount: "123"}, orderID: "DH100001", wantDes: "DH100001", wantBnk: "CTG"},
		{name: "bare id", cfg: &Config{BankAccount: "123", BankCode: "VCB"}, orderID: "100001", wantDes: "DH100001", wantBnk: "VCB"},
		{name: "nil config", cfg: nil, orderID: "DH7", wantDes: "DH7", wantBnk: "CTG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(QRURL(tt.cfg, tt.orderID, 45000))
			require.NoError(t, err)
			assert.Equal(t, "qr.sepay.vn", u.Host)
			q := u.Query()
			assert.Equal(t, tt.wantDes, q.Get("des"))
			assert.Equal(t, tt.wantBnk, q.Get("bank"))
			assert.Equal(t, "45000", q.Get("amount"))
			assert.Equal(t, "compact", q.Get("template"))
		})
	}
}

func TestCheckout(t *testing.T) {
	offer, ok := FindOffer(500)
	require.True(t, ok)
	c := &Checkout{Offer: offer}

	req := c.OrderRequest()
	assert.Equal(t, GemPackItemType, req.ItemType)
	assert.Equal(t, "gem_500", req.ItemID)
	assert.Equal(t, 45000, req.Amount)
	assert.Empty(t, req.CouponCode)

	c.ApplyCoupon("KID10", &kidapi.CouponValidateResponse{Valid: true, DiscountAmount: 4500})
	assert.Equal(t, 40500, c.FinalPrice())
	assert.Equal(t, "KID10", c.OrderRequest().CouponCode)

	c.ApplyCoupon("FREE", &kidapi.CouponValidateResponse{Valid: true, DiscountAmount: 1_000_000})
	assert.Zero(t, c.FinalPrice())

	c.ApplyCoupon("OLD", &kidapi.CouponValidateResponse{Valid: false, Message: "Mã giảm giá đã hết hạn"})
	assert.Equal(t, 45000, c.FinalPrice())
	assert.Empty(t, c.OrderRequest().CouponCode)

	_, ok = FindOffer(42)
	assert.False(t, ok)
}

func TestValidateCoupon(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	svc := newService(t, env, fastConfig())
	ctx := context.Background()

	_, err := svc.ValidateCoupon(ctx, "  ", 45000)
	require.ErrorIs(t, err, ErrCouponRequired)

	resp, err := svc.ValidateCoupon(ctx, "KID10", 45000)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, 4500, resp.DiscountAmount)
	assert.Equal(t, 40500, resp.FinalAmount)

	resp, err = svc.ValidateCoupon(ctx, "OLD", 45000)
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Message)
}

func TestCreateOrderWithInvalidCoupon(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	svc := newService(t, env, fastConfig())

	_, err := svc.CreateOrder(context.Background(), kidapi.OrderRequest{Amount: 10000, ItemType: GemPackItemType, CouponCode: "OFF"})
	require.Error(t, err)
	assert.Equal(t, 400, api.StatusOf(err))
}

func TestGemPacksAndGemOrder(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	svc := newService(t, env, fastConfig())
	ctx := context.Background()

	packs, err := svc.GemPacks(ctx)
	require.NoError(t, err)
	require.Len(t, packs, 3)
	assert.Equal(t, int64(1), packs[0].ID)

	order, err := svc.CreateGemOrder(ctx, 2, "FIX5K")
	require.NoError(t, err)
	assert.Equal(t, 45000, order.OriginalPrice)
	assert.Equal(t, 40000, order.FinalAmount)
	assert.Equal(t, 550, order.TotalGems)
	assert.Equal(t, kidapi.OrderPending, order.Status)

	_, err = svc.CreateGemOrder(ctx, 4, "")
	require.Error(t, err)
	assert.Equal(t, 400, api.StatusOf(err))
}

func TestPollerPaidOnFourthPoll(t *testing.T) {
	env := testkit.New(t, backend.AutoPayAfter(4))
	id := env.Login(t, "bin@kid.vn")
	svc := newService(t, env, fastConfig())
	ctx := context.Background()

	var confirmed []any
	unsubscribe := env.Bus.Subscribe(event.PaymentConfirmed, func(e event.Event) {
		confirmed = append(confirmed, e.Payload)
	})
	defer unsubscribe()

	offer, _ := FindOffer(100)
	order, err := svc.Checkout(ctx, &Checkout{Offer: offer})
	require.NoError(t, err)

	var successes atomic.Int32
	p := svc.NewPoller(order.OrderID, func(string) { successes.Add(1) })
	state := p.Run(ctx)

	assert.Equal(t, StatePaid, state)
	assert.Equal(t, StatePaid, p.State())
	assert.Equal(t, 4, p.Attempts())
	assert.Equal(t, 4, env.Backend.OrderPolls(order.OrderID))
	assert.EqualValues(t, 1, successes.Load())
	assert.Equal(t, []any{order.OrderID}, confirmed)

	// 宝石已到账，档案已刷新
	assert.Equal(t, 100, env.Backend.Gems(id))
	assert.Equal(t, 100, env.Store.Snapshot().Gems)

	assert.Equal(t, 3.0, testutil.ToFloat64(env.Metrics.PaymentPolls.WithLabelValues("pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.Metrics.PaymentPolls.WithLabelValues("paid")))
}

func TestPollerUnconfirmedAfterMaxAttempts(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	cfg := fastConfig()
	cfg.MaxAttempts = 3
	svc := newService(t, env, cfg)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, kidapi.OrderRequest{Amount: 10000, ItemType: GemPackItemType, ItemID: "gem_100"})
	require.NoError(t, err)

	called := false
	p := svc.NewPoller(order.OrderID, func(string) { called = true })
	assert.Equal(t, StateUnconfirmed, p.Run(ctx))
	assert.Equal(t, 3, p.Attempts())
	assert.False(t, called)
	assert.True(t, p.State().Terminal())
}

func TestPollerDeadline(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	cfg := fastConfig()
	cfg.MaxAttempts = 100000
	cfg.Deadline = 40 * time.Millisecond
	svc := newService(t, env, cfg)

	order, err := svc.CreateOrder(context.Background(), kidapi.OrderRequest{Amount: 10000})
	require.NoError(t, err)
	assert.Equal(t, StateUnconfirmed, svc.NewPoller(order.OrderID, nil).Run(context.Background()))
}

func TestPollerCancelled(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	svc := newService(t, env, fastConfig())

	order, err := svc.CreateOrder(context.Background(), kidapi.OrderRequest{Amount: 10000})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	p := svc.NewPoller(order.OrderID, nil)
	assert.Equal(t, StateCancelled, p.Run(ctx))
	assert.Equal(t, "Cancelled", p.State().String())
}

func TestPollerKeepsPollingAfterErrors(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	cfg := fastConfig()
	cfg.MaxAttempts = 3
	svc := newService(t, env, cfg)

	p := svc.NewPoller("DH999999", nil)
	assert.Equal(t, StateUnconfirmed, p.Run(context.Background()))
	assert.Equal(t, 3, p.Attempts())
	assert.Equal(t, 3.0, testutil.ToFloat64(env.Metrics.PaymentPolls.WithLabelValues("error")))
}

func TestConfigValidate(t *testing.T) {
	_, err := NewService(&Config{PollInterval: -time.Second}, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}
