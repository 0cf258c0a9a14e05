package logger

import "io"

// Option 配置选项
type Option func(*BaseLogger)

// WithName 设置 logger 名称
func WithName(name string) Option {
	return func(l *BaseLogger) {
		l.name = name
	}
}

// WithGlobalFields 添加全局字段
func WithGlobalFields(fields ...interface{}) Option {
	return func(l *BaseLogger) {
		for i := 0; i+1 < len(fields); i += 2 {
			if key, ok := fields[i].(string); ok {
				l.globalFields[key] = fields[i+1]
			}
		}
	}
}

// WithHooks 添加钩子，脱敏钩子总是排在最前
func WithHooks(hooks ...Hook) Option {
	return func(l *BaseLogger) {
		l.hooks = append(l.hooks, hooks...)
	}
}

// WithWriter 额外写入一个 io.Writer
func WithWriter(w io.Writer) Option {
	return func(l *BaseLogger) {
		l.writers = append(l.writers, w)
	}
}

// WithContextExtractor 替换 context 字段提取器
func WithContextExtractor(fn ContextFieldExtractor) Option {
	return func(l *BaseLogger) {
		if fn != nil {
			l.contextExtractor = fn
		}
	}
}

func WithLevel(level Level) Option {
	return func(l *BaseLogger) {
		l.config.Level = level
	}
}
