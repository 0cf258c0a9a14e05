package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/securecookie"
)

const (
	hashKeyLen  = 64
	blockKeyLen = 32
)

// Keys file 后端的签名与加密密钥
type Keys struct {
	HashKey  []byte `json:"hash_key"`
	BlockKey []byte `json:"block_key"`
}

func (k *Keys) valid() bool {
	switch len(k.BlockKey) {
	case 16, 24, 32:
		return len(k.HashKey) > 0
	}
	return false
}

// LoadOrCreateKeys 读取密钥文件；不存在时随机生成并以 0600 写入
func LoadOrCreateKeys(path string) (*Keys, error) {
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var k Keys
		if err := json.Unmarshal(raw, &k); err != nil || !k.valid() {
			return nil, errors.Wrapf(ErrInvalidConfig, "session key file %s is unreadable, remove it to log in again", path)
		}
		return &k, nil
	case !os.IsNotExist(err):
		return nil, errors.Wrap(err, "read session key file")
	}

	k := &Keys{
		HashKey:  securecookie.GenerateRandomKey(hashKeyLen),
		BlockKey: securecookie.GenerateRandomKey(blockKeyLen),
	}
	if k.HashKey == nil || k.BlockKey == nil {
		return nil, errors.New("session: generate random key failed")
	}
	raw, err = json.Marshal(k)
	if err != nil {
		return nil, errors.Wrap(err, "encode session keys")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "create session dir")
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return nil, errors.Wrap(err, "write session key file")
	}
	return k, nil
}

// fileKeys 配置里两把密钥都给出时直接使用，都没给时用密钥文件，只给一把视为配置错误
func fileKeys(cfg *Config) (*Keys, error) {
	switch {
	case cfg.HashKey != "" && cfg.BlockKey != "":
		k := &Keys{HashKey: []byte(cfg.HashKey), BlockKey: []byte(cfg.BlockKey)}
		if !k.valid() {
			return nil, errors.Wrap(ErrInvalidConfig, "block_key must be 16, 24 or 32 bytes")
		}
		return k, nil
	case cfg.HashKey == "" && cfg.BlockKey == "":
		path := cfg.KeyFile
		if path == "" {
			path = cfg.File + ".key"
		}
		return LoadOrCreateKeys(path)
	default:
		return nil, errors.Wrap(ErrInvalidConfig, "hash_key and block_key must be set together")
	}
}
