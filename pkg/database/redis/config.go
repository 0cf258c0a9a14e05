package redis

import "time"

// Config Redis 配置，Standalone 与 Cluster 必须且只能配置一种
type Config struct {
	Standalone *NodeConfig    `mapstructure:"standalone"`
	Cluster    *ClusterConfig `mapstructure:"cluster"`
	Pool       PoolConfig     `mapstructure:"pool"`

	// KeyPrefix 所有键的前缀，例如 "kidlingo:"
	KeyPrefix string `mapstructure:"key_prefix"`
}

// NodeConfig 单节点配置
type NodeConfig struct {
	Addr     string `mapstructure:"addr"` // host:port
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ClusterConfig 集群配置
type ClusterConfig struct {
	Addrs    []string `mapstructure:"addrs"`
	Password string   `mapstructure:"password"`
}

// PoolConfig 连接池配置
type PoolConfig struct {
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	modes := 0
	if c.Standalone != nil && c.Standalone.Addr != "" {
		modes++
	}
	if c.Cluster != nil && len(c.Cluster.Addrs) > 0 {
		modes++
	}
	if modes != 1 {
		return ErrInvalidConfig
	}
	return nil
}
