package prometheus

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("prometheus: invalid config")

	// ErrExporterClosed 已关闭
	ErrExporterClosed = errors.New("prometheus: exporter closed")
)
