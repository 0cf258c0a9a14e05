package session

import (
	"time"

	"github.com/lk2023060901/kidlingo/pkg/database/redis"
)

// Backend 令牌存储后端
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
)

// Config 会话配置
type Config struct {
	Backend Backend       `mapstructure:"backend" json:"backend" validate:"oneof=memory file redis"`
	Name    string        `mapstructure:"name" json:"name"`
	Path    string        `mapstructure:"path" json:"path"`
	TTL     time.Duration `mapstructure:"ttl" json:"ttl"`

	// file 后端：hash_key 与 block_key 同时为空时使用 key_file (默认 <file>.key)，首次运行自动生成
	File     string `mapstructure:"file" json:"file"`
	KeyFile  string `mapstructure:"key_file" json:"key_file"`
	HashKey  string `mapstructure:"hash_key" json:"hash_key"`
	BlockKey string `mapstructure:"block_key" json:"block_key"` // 16/24/32 字节

	// redis 后端
	Redis    *redis.Config `mapstructure:"redis" json:"redis"`
	RedisKey string        `mapstructure:"redis_key" json:"redis_key"`
}

// DefaultConfig 与浏览器端 cookie 一致：名为 token，路径 /，约 1 小时
func DefaultConfig() *Config {
	return &Config{
		Backend:  BackendMemory,
		Name:     "token",
		Path:     "/",
		TTL:      time.Hour,
		File:     ".kidlingo/session",
		RedisKey: "session:token",
	}
}
