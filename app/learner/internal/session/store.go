package session

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/securecookie"
	"github.com/lk2023060901/kidlingo/pkg/database/redis"
)

var (
	ErrInvalidConfig = errors.New("session: invalid config")
	ErrCorrupt       = errors.New("session: stored cookie is corrupt")
)

// Cookie 持久化的会话 cookie
type Cookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path"`
	Expires time.Time `json:"expires"`
}

// Store 会话存储，Load 在没有数据时返回 nil, nil
type Store interface {
	Load(ctx context.Context) (*Cookie, error)
	Save(ctx context.Context, c *Cookie) error
	Clear(ctx context.Context) error
	Close() error
}

// NewStore 按配置创建存储后端
func NewStore(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendFile:
		if cfg.File == "" {
			return nil, errors.Wrap(ErrInvalidConfig, "file path is required")
		}
		keys, err := fileKeys(cfg)
		if err != nil {
			return nil, err
		}
		return NewFileStore(cfg.File, cfg.Name, keys.HashKey, keys.BlockKey)
	case BackendRedis:
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			return nil, errors.Wrap(err, "session redis store")
		}
		return NewRedisStore(client, cfg.RedisKey), nil
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown backend %q", cfg.Backend)
	}
}

// MemoryStore 进程内存储
type MemoryStore struct {
	mu     sync.Mutex
	cookie *Cookie
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load(context.Context) (*Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cookie == nil {
		return nil, nil
	}
	c := *s.cookie
	return &c, nil
}

func (s *MemoryStore) Save(_ context.Context, c *Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.cookie = &cp
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.cookie = nil
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// FileStore 把 cookie 以 Set-Cookie 行写入文件，值经 securecookie 签名并加密
type FileStore struct {
	path  string
	name  string
	codec *securecookie.SecureCookie
	mu    sync.Mutex
}

// NewFileStore 两把密钥都不能为空，blockKey 为 16/24/32 字节
func NewFileStore(path, name string, hashKey, blockKey []byte) (*FileStore, error) {
	if path == "" {
		return nil, errors.Wrap(ErrInvalidConfig, "file path is required")
	}
	k := &Keys{HashKey: hashKey, BlockKey: blockKey}
	if !k.valid() {
		return nil, errors.Wrap(ErrInvalidConfig, "file backend needs hash_key and a 16, 24 or 32 byte block_key")
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(0)
	return &FileStore{path: path, name: name, codec: codec}, nil
}

func (s *FileStore) Load(context.Context) (*Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "open session file")
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		hc, err := http.ParseSetCookie(line)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "parse cookie line"), ErrCorrupt)
		}
		if hc.Name != s.name {
			continue
		}
		var value string
		if err := s.codec.Decode(s.name, hc.Value, &value); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "decode cookie"), ErrCorrupt)
		}
		return &Cookie{Name: hc.Name, Value: value, Path: hc.Path, Expires: hc.Expires}, nil
	}
	return nil, errors.Wrap(sc.Err(), "scan session file")
}

func (s *FileStore) Save(_ context.Context, c *Cookie) error {
	encoded, err := s.codec.Encode(s.name, c.Value)
	if err != nil {
		return errors.Wrap(err, "encode cookie")
	}
	hc := &http.Cookie{
		Name:     s.name,
		Value:    encoded,
		Path:     c.Path,
		Expires:  c.Expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(hc.String()+"\n"), 0o600); err != nil {
		return errors.Wrap(err, "write session file")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replace session file")
}

func (s *FileStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove session file")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// RedisStore 多个 CLI 进程共享同一会话
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (*Cookie, error) {
	raw, err := s.client.Get(ctx, s.key)
	if errors.Is(err, redis.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c Cookie
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode cookie"), ErrCorrupt)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c *Cookie) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode cookie")
	}
	ttl := time.Until(c.Expires)
	if ttl <= 0 {
		return s.Clear(ctx)
	}
	return s.client.Set(ctx, s.key, string(raw), ttl)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key)
}

func (s *RedisStore) Close() error { return s.client.Close() }
