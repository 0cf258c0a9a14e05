package config

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// Watcher 把某个配置段解析成 T 并在文件变化时热更新
type Watcher[T any] struct {
	mgr       Manager
	key       string
	mu        sync.RWMutex
	current   *T
	callbacks []func(*T)
	onError   func(error)
}

// NewWatcher 解析 key 对应的配置段 (key 为空时解析整个文件) 并开始监听
func NewWatcher[T any](mgr Manager, key string, onError func(error)) (*Watcher[T], error) {
	w := &Watcher[T]{mgr: mgr, key: key, onError: onError}

	cfg, err := w.load()
	if err != nil {
		return nil, err
	}
	w.current = cfg

	if err := mgr.Watch(w.reload); err != nil {
		return nil, errors.Wrap(err, "watch config")
	}
	return w, nil
}

// Get 当前配置
func (w *Watcher[T]) Get() *T {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange 注册变化回调
func (w *Watcher[T]) OnChange(cb func(*T)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

func (w *Watcher[T]) load() (*T, error) {
	cfg := new(T)
	var err error
	if w.key == "" {
		err = w.mgr.Unmarshal(cfg)
	} else {
		err = w.mgr.UnmarshalKey(w.key, cfg)
	}
	return cfg, err
}

func (w *Watcher[T]) reload() {
	cfg, err := w.load()
	if err != nil {
		if w.onError != nil {
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	w.current = cfg
	callbacks := append([]func(*T){}, w.callbacks...)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}
