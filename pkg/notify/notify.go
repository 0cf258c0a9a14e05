package notify

import "context"

// Notifier 通知器接口
type Notifier interface {
	// Send 发送一条通知
	Send(ctx context.Context, msg *Message) error
	// Name 通知器名称，用于日志
	Name() string
}

// Noop 不发送任何内容
type Noop struct{}

func (Noop) Send(ctx context.Context, msg *Message) error { return nil }
func (Noop) Name() string                                 { return "noop" }
