// Package chat 与 AI 老师对话，回复以纯文本流式返回
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
)

// DefaultUserID 未加载档案时使用的 user_id
const DefaultUserID int64 = 1

var ErrEmptyMessage = errors.New("chat: empty message")

// QuickQuestions 快捷提问
var QuickQuestions = []string{
	"Kể chuyện cổ tích đi! 📖",
	"Đố thỏ biết 1+1 bằng mấy? 🔢",
	"Tại sao trời lại mưa? 🌧️",
	"Hát một bài hát đi! 🎵",
	"Thỏ thích măm gì nhất? 🥕",
	"Kể chuyện hài cho bé nghe nào 😂",
}

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 对话记录
type Message struct {
	ID      string
	Role    Role
	Content string
	At      time.Time
}

// Service 对话服务，历史只保存在本地
type Service struct {
	client *api.Client
	store  *profile.Store
	logger logger.Logger

	mu      sync.Mutex
	history []Message
}

// NewService 创建对话服务，store 可为 nil
func NewService(client *api.Client, store *profile.Store, l logger.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		logger: logger.OrNoop(l).Named("chat"),
	}
}

// Send 发送消息并流式接收回复，返回整理后的完整回复
func (s *Service) Send(ctx context.Context, message string, onChunk func(string)) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	s.append(RoleUser, message)

	req := kidapi.ChatRequest{Message: message, UserID: s.userID()}
	raw, err := s.client.Stream(ctx, kidapi.PathChat, req, onChunk)
	if err != nil {
		s.logger.WarnContext(ctx, "chat failed", "error", err)
		return "", errors.Wrap(err, "chat")
	}

	reply := Tidy(raw)
	s.append(RoleAssistant, reply)
	return reply, nil
}

// History 对话历史副本
func (s *Service) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.history...)
}

// Clear 清空历史
func (s *Service) Clear() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

func (s *Service) append(role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		At:      time.Now(),
	})
}

func (s *Service) userID() int64 {
	if s.store != nil {
		if id := s.store.Snapshot().UserID; id > 0 {
			return id
		}
	}
	return DefaultUserID
}
