// Package review 间隔复习：拉取今日到期单词并逐个作答
package review

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/metrics"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
)

// ErrSessionFinished 复习已结束或本来就没有单词
var ErrSessionFinished = errors.New("review: session finished")

// State 复习会话状态
type State int

const (
	StateActive State = iota
	StateEmpty
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateEmpty:
		return "empty"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Summary 复习小结
type Summary struct {
	Reviewed int
	Correct  int
}

// Service 复习服务
type Service struct {
	client  *api.Client
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewService 创建复习服务
func NewService(client *api.Client, m *metrics.Metrics, l logger.Logger) *Service {
	return &Service{
		client:  client,
		metrics: m,
		logger:  logger.OrNoop(l).Named("review"),
	}
}

// Start 拉取今日到期单词，每次调用都重新拉取
func (s *Service) Start(ctx context.Context) (*Session, error) {
	var items []kidapi.WordReview
	if err := s.client.Get(ctx, kidapi.PathReviewToday, &items); err != nil {
		return nil, errors.Wrap(err, "fetch review words")
	}
	sess := &Session{svc: s, items: items, state: StateActive}
	if len(items) == 0 {
		sess.state = StateEmpty
	}
	s.logger.InfoContext(ctx, "review started", "words", len(items))
	return sess, nil
}

// Due 今日到期的单词数
func (s *Service) Due(ctx context.Context) (int, error) {
	var items []kidapi.WordReview
	if err := s.client.Get(ctx, kidapi.PathReviewToday, &items); err != nil {
		return 0, errors.Wrap(err, "fetch review words")
	}
	return len(items), nil
}

// Session 一次复习会话
type Session struct {
	svc *Service

	mu      sync.Mutex
	items   []kidapi.WordReview
	index   int
	correct int
	state   State
}

// State 当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len 本次需要复习的单词数
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Index 当前卡片序号 (从 0 开始)
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current 当前卡片
func (s *Session) Current() (kidapi.WordReview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return kidapi.WordReview{}, false
	}
	return s.items[s.index], true
}

// Answer 提交当前卡片的作答；提交失败只记日志，不回滚也不重试，照常进入下一张
func (s *Session) Answer(ctx context.Context, correct bool) error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return ErrSessionFinished
	}
	item := s.items[s.index]
	if correct {
		s.correct++
	}
	s.index++
	if s.index >= len(s.items) {
		s.state = StateCompleted
	}
	s.mu.Unlock()

	s.svc.metrics.RecordReviewAnswer(correct)
	req := kidapi.WordSubmit{WordID: item.Word.ID, IsCorrect: correct}
	if err := s.svc.client.Post(ctx, kidapi.PathSubmitWord, req, nil); err != nil {
		s.svc.logger.ErrorContext(ctx, "submit word failed", "word_id", item.Word.ID, "error", err)
	}
	return nil
}

// Summary 已复习数与答对数
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{Reviewed: s.index, Correct: s.correct}
}
