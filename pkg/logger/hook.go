package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Hook 日志钩子
type Hook interface {
	// OnWrite 写入前回调，返回 false 则丢弃该条日志
	OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool
}

// HookFunc 函数式 Hook
type HookFunc func(entry zapcore.Entry, fields []zapcore.Field) bool

func (f HookFunc) OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool {
	return f(entry, fields)
}

// HookedCore 带钩子的 Core
type HookedCore struct {
	zapcore.Core
	hooks []Hook
}

// NewHookedCore 创建带钩子的 Core
func NewHookedCore(core zapcore.Core, hooks ...Hook) zapcore.Core {
	return &HookedCore{Core: core, hooks: hooks}
}

func (h *HookedCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if h.Enabled(entry.Level) {
		return ce.AddCore(entry, h)
	}
	return ce
}

func (h *HookedCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	for _, hook := range h.hooks {
		if !hook.OnWrite(entry, fields) {
			return nil
		}
	}
	return h.Core.Write(entry, fields)
}

// With 的字段同样要经过钩子，否则 WithFields("token", ...) 会绕过脱敏
func (h *HookedCore) With(fields []zapcore.Field) zapcore.Core {
	cloned := make([]zapcore.Field, len(fields))
	copy(cloned, fields)
	for _, hook := range h.hooks {
		hook.OnWrite(zapcore.Entry{}, cloned)
	}
	return &HookedCore{Core: h.Core.With(cloned), hooks: h.hooks}
}

const redacted = "***REDACTED***"

// RedactHook 把指定字段替换成 ***REDACTED***，不论原字段类型
func RedactHook(keys []string) Hook {
	keyMap := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		keyMap[key] = struct{}{}
	}

	return HookFunc(func(entry zapcore.Entry, fields []zapcore.Field) bool {
		for i := range fields {
			if _, ok := keyMap[fields[i].Key]; ok {
				fields[i] = zap.String(fields[i].Key, redacted)
			}
		}
		return true
	})
}
