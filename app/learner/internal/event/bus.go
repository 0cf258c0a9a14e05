// Package event 进程内事件总线，替代全局字符串事件，依赖通过构造函数显式注入
package event

import (
	"sync"

	"github.com/lk2023060901/kidlingo/pkg/logger"
)

// Topic 事件主题
type Topic string

const (
	// SessionExpired 已认证请求收到 401
	SessionExpired Topic = "session.expired"
	// PaymentConfirmed 订单已支付，Payload 为订单号
	PaymentConfirmed Topic = "payment.confirmed"
	// ProfileChanged 档案仓库状态变更
	ProfileChanged Topic = "profile.changed"
)

// Event 事件
type Event struct {
	Topic   Topic
	Payload any
}

// Handler 事件处理函数
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus 同步事件总线，按订阅顺序投递
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscription
	logger logger.Logger
}

// NewBus 创建事件总线
func NewBus(l logger.Logger) *Bus {
	return &Bus{
		subs:   make(map[Topic][]subscription),
		logger: logger.OrNoop(l).Named("event"),
	}
}

// Subscribe 订阅主题，返回取消订阅函数
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[topic]
			for i, s := range list {
				if s.id == id {
					b.subs[topic] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish 同步投递给所有订阅者，单个处理函数 panic 不影响其余订阅者
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	list := make([]subscription, len(b.subs[e.Topic]))
	copy(list, b.subs[e.Topic])
	b.mu.RUnlock()

	for _, s := range list {
		b.dispatch(s.handler, e)
	}
}

func (b *Bus) dispatch(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "topic", string(e.Topic), "panic", r)
		}
	}()
	h(e)
}
