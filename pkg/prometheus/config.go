package prometheus

import "time"

// Config 指标导出配置
type Config struct {
	// Enabled 为 false 时只在进程内收集，不监听端口
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`

	Timeout time.Duration `mapstructure:"timeout"`

	EnableGoCollector      bool `mapstructure:"enable_go_collector"`
	EnableProcessCollector bool `mapstructure:"enable_process_collector"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Addr:    "127.0.0.1:9464",
		Path:    "/metrics",
		Timeout: 10 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Enabled && c.Addr == "" {
		return ErrInvalidConfig
	}
	return nil
}
