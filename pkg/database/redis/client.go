package redis

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"
)

// Client 对 go-redis UniversalClient 的薄封装，调用方不直接接触 go-redis 类型
type Client struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewClient 创建客户端，不会立即连接
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &goredis.UniversalOptions{
		PoolSize:     cfg.Pool.PoolSize,
		MinIdleConns: cfg.Pool.MinIdleConns,
		DialTimeout:  cfg.Pool.DialTimeout,
		ReadTimeout:  cfg.Pool.ReadTimeout,
		WriteTimeout: cfg.Pool.WriteTimeout,
	}
	if cfg.Standalone != nil && cfg.Standalone.Addr != "" {
		opts.Addrs = []string{cfg.Standalone.Addr}
		opts.Password = cfg.Standalone.Password
		opts.DB = cfg.Standalone.DB
	} else {
		opts.Addrs = cfg.Cluster.Addrs
		opts.Password = cfg.Cluster.Password
		opts.IsClusterMode = true
	}

	return &Client{rdb: goredis.NewUniversalClient(opts), prefix: cfg.KeyPrefix}, nil
}

func (c *Client) key(k string) string {
	return c.prefix + k
}

// Ping 检查连通性
func (c *Client) Ping(ctx context.Context) error {
	return errors.Wrap(c.rdb.Ping(ctx).Err(), "redis ping")
}

// Get 读取字符串值，键不存在时返回 ErrNil
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, c.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNil
	}
	if err != nil {
		return "", errors.Wrapf(err, "redis get %s", key)
	}
	return v, nil
}

// Set 写入字符串值，ttl 为 0 表示不过期
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.Wrapf(c.rdb.Set(ctx, c.key(key), value, ttl).Err(), "redis set %s", key)
}

// Del 删除键
func (c *Client) Del(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return errors.Wrap(c.rdb.Del(ctx, full...).Err(), "redis del")
}

// TTL 剩余有效期
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := c.rdb.TTL(ctx, c.key(key)).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "redis ttl %s", key)
	}
	return d, nil
}

// Close 关闭连接池
func (c *Client) Close() error {
	return c.rdb.Close()
}
