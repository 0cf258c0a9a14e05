// Package lesson 课程详情、完成结算、测验与星级
package lesson

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
)

// Reward 一次完成结算获得的奖励
type Reward struct {
	Gems  int
	Stars int
}

// Zero 没有任何奖励
func (r Reward) Zero() bool {
	return r.Gems <= 0 && r.Stars <= 0
}

// Message 庆祝文案，没有奖励时为空
func (r Reward) Message() string {
	switch {
	case r.Gems > 0 && r.Stars > 0:
		return fmt.Sprintf("Chúc mừng! Con nhận được %d 💎 và %d ⭐", r.Gems, r.Stars)
	case r.Gems > 0:
		return fmt.Sprintf("Tuyệt vời! Con đã hoàn thành bài học và nhận %d 💎", r.Gems)
	case r.Stars > 0:
		return fmt.Sprintf("Xuất sắc! Con trả lời đúng và nhận được %d ⭐", r.Stars)
	}
	return ""
}

// Service 课程服务
type Service struct {
	client *api.Client
	store  *profile.Store
	logger logger.Logger
}

// NewService 创建课程服务
func NewService(client *api.Client, store *profile.Store, l logger.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		logger: logger.OrNoop(l).Named("lesson"),
	}
}

// Get 课程详情
func (s *Service) Get(ctx context.Context, id int64) (*kidapi.Lesson, error) {
	var l kidapi.Lesson
	if err := s.client.Get(ctx, kidapi.LessonPath(id), &l); err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "get lesson %d", id), "Không thể tải bài học. Vui lòng thử lại sau.")
	}
	return &l, nil
}

// VideoEnded 看完视频，以 0/0 提交
func (s *Service) VideoEnded(ctx context.Context, lessonID int64) Reward {
	return s.settle(ctx, lessonID, 0, 0)
}

// QuizCompleted 测验结束
func (s *Service) QuizCompleted(ctx context.Context, lessonID int64, score, total int) Reward {
	return s.settle(ctx, lessonID, score, total)
}

// settle 提交完成进度，失败只记录日志
func (s *Service) settle(ctx context.Context, lessonID int64, score, total int) Reward {
	req := kidapi.ProgressUpdate{LessonID: lessonID, Score: score, TotalQuestions: total}
	var resp kidapi.ProgressResponse
	if err := s.client.Post(ctx, kidapi.PathMarkComplete, req, &resp); err != nil {
		s.logger.ErrorContext(ctx, "save progress failed", "lesson_id", lessonID, "error", err)
		return Reward{}
	}

	r := Reward{Gems: resp.EarnedGems, Stars: resp.EarnedStars}
	if total == 0 {
		// 没有题目的完成不加星
		r.Stars = 0
	}
	if !r.Zero() {
		s.store.Dispatch("lesson_complete", profile.RewardsAdded{Gems: max(r.Gems, 0), Stars: max(r.Stars, 0)})
	}
	s.logger.InfoContext(ctx, "progress saved", "lesson_id", lessonID, "earned_gems", r.Gems, "earned_stars", r.Stars)
	return r
}

// PronunciationTarget 发音练习的目标词：指定词 > 第一题答案 > 标题冒号前部分
func PronunciationTarget(l *kidapi.Lesson) string {
	if l == nil {
		return ""
	}
	if l.PronunciationWord != nil && strings.TrimSpace(*l.PronunciationWord) != "" {
		return strings.TrimSpace(*l.PronunciationWord)
	}
	if len(l.Questions) > 0 && l.Questions[0].CorrectAnswer != "" {
		return l.Questions[0].CorrectAnswer
	}
	head, _, _ := strings.Cut(l.Title, ":")
	return strings.TrimSpace(head)
}
