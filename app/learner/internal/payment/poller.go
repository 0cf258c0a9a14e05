package payment

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/kidlingo/app/learner/internal/event"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
)

// SuccessMessage 支付成功提示
const SuccessMessage = "Thanh toán thành công! Gems đã được cộng vào ví."

// State 轮询状态
type State int32

const (
	StatePending State = iota
	StatePaid
	// StateUnconfirmed 达到次数或时长上限仍未确认，稍后再查
	StateUnconfirmed
	// StateCancelled 调用方取消
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StatePaid:
		return "Paid"
	case StateUnconfirmed:
		return "Unconfirmed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Terminal 是否终态
func (s State) Terminal() bool {
	return s != StatePending
}

// Poller 订单状态轮询器，一个订单一个实例
type Poller struct {
	svc       *Service
	orderID   string
	onSuccess func(orderID string)

	state    atomic.Int32
	attempts atomic.Int32
	once     sync.Once
}

// NewPoller 创建轮询器，onSuccess 可为 nil
func (s *Service) NewPoller(orderID string, onSuccess func(orderID string)) *Poller {
	return &Poller{svc: s, orderID: orderID, onSuccess: onSuccess}
}

// State 当前状态
func (p *Poller) State() State {
	return State(p.state.Load())
}

// Attempts 已轮询次数
func (p *Poller) Attempts() int {
	return int(p.attempts.Load())
}

// Run 阻塞轮询直到终态
func (p *Poller) Run(ctx context.Context) State {
	cfg := p.svc.config
	l := p.svc.logger.WithFields("order_id", p.orderID)

	runCtx, cancel := context.WithTimeout(ctx, cfg.Deadline)
	defer cancel()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			if ctx.Err() != nil {
				return p.finish(StateCancelled)
			}
			l.Warn("payment not confirmed before deadline", "attempts", p.Attempts())
			return p.finish(StateUnconfirmed)
		case <-ticker.C:
		}

		n := p.attempts.Add(1)
		order, err := p.svc.Order(runCtx, p.orderID)
		switch {
		case err != nil:
			p.svc.metrics.RecordPoll("error")
			l.Warn("poll order status failed", "attempt", n, "error", err)
		case order.Status == kidapi.OrderPaid:
			p.svc.metrics.RecordPoll("paid")
			p.finish(StatePaid)
			p.confirm(ctx)
			return StatePaid
		default:
			p.svc.metrics.RecordPoll("pending")
		}

		if int(n) >= cfg.MaxAttempts {
			l.Warn("payment not confirmed after max attempts", "attempts", n)
			return p.finish(StateUnconfirmed)
		}
	}
}

func (p *Poller) finish(s State) State {
	p.state.Store(int32(s))
	return s
}

// confirm 等待 SuccessDelay 后触发一次成功回调；调用方取消时立即触发
func (p *Poller) confirm(ctx context.Context) {
	if d := p.svc.config.SuccessDelay; d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	p.once.Do(func() {
		svc := p.svc
		svc.logger.Info("payment confirmed", "order_id", p.orderID)
		if svc.bus != nil {
			svc.bus.Publish(event.Event{Topic: event.PaymentConfirmed, Payload: p.orderID})
		}
		if svc.refresher != nil {
			if _, err := svc.refresher.Refresh(context.WithoutCancel(ctx)); err != nil {
				svc.logger.Warn("refresh profile after payment failed", "order_id", p.orderID, "error", err)
			}
		}
		if p.onSuccess != nil {
			p.onSuccess(p.orderID)
		}
	})
}
