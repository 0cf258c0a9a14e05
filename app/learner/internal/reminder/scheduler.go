// Package reminder 定时检查今日待复习单词并发送提醒
package reminder

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"github.com/lk2023060901/kidlingo/pkg/notify"
	"github.com/robfig/cron/v3"
)

// DueCounter 统计今日到期单词
type DueCounter interface {
	Due(ctx context.Context) (int, error)
}

// Scheduler 复习提醒调度器
type Scheduler struct {
	counter DueCounter
	store   *profile.Store
	logger  logger.Logger
	cron    *cron.Cron

	mu       sync.Mutex
	config   *Config
	notifier notify.Notifier
	entry    cron.EntryID
}

// New 创建调度器，store 可为 nil
func New(cfg *Config, counter DueCounter, store *profile.Store, l logger.Logger) (*Scheduler, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}
	loc, _ := newCfg.location()
	n, err := NewNotifier(newCfg)
	if err != nil {
		return nil, err
	}

	l = logger.OrNoop(l).Named("reminder")
	s := &Scheduler{
		counter:  counter,
		store:    store,
		logger:   l,
		config:   newCfg,
		notifier: n,
		cron:     cron.New(cron.WithLocation(loc), cron.WithLogger(cronLogger{l})),
	}
	if err := s.schedule(newCfg.Spec); err != nil {
		return nil, err
	}
	return s, nil
}

// Start 启动 cron
func (s *Scheduler) Start() error {
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "spec", s.Spec(), "notifier", s.Notifier().Name())
	return nil
}

// Stop 停止 cron 并等待正在执行的任务
func (s *Scheduler) Stop() error {
	<-s.cron.Stop().Done()
	return nil
}

// Spec 当前 cron 表达式
func (s *Scheduler) Spec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Spec
}

// Notifier 当前通知器
func (s *Scheduler) Notifier() notify.Notifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier
}

// Reload 热更新表达式与通知器；新配置无效时保持原配置
func (s *Scheduler) Reload(cfg *Config) error {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return err
	}
	if err := newCfg.Validate(); err != nil {
		return err
	}
	n, err := NewNotifier(newCfg)
	if err != nil {
		return err
	}

	if newCfg.Spec != s.Spec() {
		if err := s.schedule(newCfg.Spec); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.config = newCfg
	s.notifier = n
	s.mu.Unlock()
	s.logger.Info("reminder config reloaded", "spec", newCfg.Spec, "notifier", n.Name())
	return nil
}

func (s *Scheduler) schedule(spec string) error {
	id, err := s.cron.AddFunc(spec, s.tick)
	if err != nil {
		return errors.Wrapf(err, "schedule %q", spec)
	}
	s.mu.Lock()
	old := s.entry
	s.entry = id
	s.mu.Unlock()
	if old != 0 {
		s.cron.Remove(old)
	}
	return nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	timeout := s.config.Timeout
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("review reminder failed", "error", err)
	}
}

// RunOnce 立即检查一次，返回到期单词数；为 0 时不发送
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	due, err := s.counter.Due(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count due words")
	}
	if due == 0 {
		s.logger.DebugContext(ctx, "no words due today")
		return 0, nil
	}

	name := profile.DefaultName
	if s.store != nil {
		name = s.store.Snapshot().FullName
	}
	msg := &notify.Message{
		Title:  "Nhắc ôn tập",
		Body:   fmt.Sprintf("%s ơi, hôm nay có %d từ cần ôn tập!", name, due),
		Labels: map[string]string{"due_words": strconv.Itoa(due)},
	}
	n := s.Notifier()
	if err := n.Send(ctx, msg); err != nil {
		return due, errors.Wrapf(err, "send reminder via %s", n.Name())
	}
	s.logger.InfoContext(ctx, "review reminder sent", "due_words", due, "notifier", n.Name())
	return due, nil
}

// cronLogger 把 cron 的日志接到 logger
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
