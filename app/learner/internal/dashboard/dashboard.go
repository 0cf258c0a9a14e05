// Package dashboard 学习路线图与首页
package dashboard

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/lesson"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Path 路线图，锁定状态由服务端计算
type Path struct {
	kidapi.DashboardPath
}

// Lessons 按单元与课程顺序展开
func (p *Path) Lessons() []kidapi.LessonDashboard {
	var out []kidapi.LessonDashboard
	for _, u := range p.Units {
		out = append(out, u.Lessons...)
	}
	return out
}

// Next 第一节已解锁且未完成的课；全部完成时返回 false
func (p *Path) Next() (kidapi.LessonDashboard, bool) {
	for _, l := range p.Lessons() {
		if !l.IsLocked && !l.IsCompleted {
			return l, true
		}
	}
	return kidapi.LessonDashboard{}, false
}

// UnitProgress 单元完成比例，空单元为 0
func (p *Path) UnitProgress(unit kidapi.UnitDashboard) float64 {
	if len(unit.Lessons) == 0 {
		return 0
	}
	done := 0
	for _, l := range unit.Lessons {
		if l.IsCompleted {
			done++
		}
	}
	return float64(done) / float64(len(unit.Lessons))
}

// Stars 课程星级
func (p *Path) Stars(l kidapi.LessonDashboard) int {
	return lesson.Stars(l)
}

// TotalStars 路线图上的星星总数
func (p *Path) TotalStars() int {
	total := 0
	for _, l := range p.Lessons() {
		total += lesson.Stars(l)
	}
	return total
}

// Home 首页数据
type Home struct {
	Path    *Path
	Profile profile.State
}

// Service 路线图服务
type Service struct {
	client  *api.Client
	profile *profile.Service
	logger  logger.Logger
}

// NewService 创建路线图服务
func NewService(client *api.Client, p *profile.Service, l logger.Logger) *Service {
	return &Service{
		client:  client,
		profile: p,
		logger:  logger.OrNoop(l).Named("dashboard"),
	}
}

// Path 拉取路线图
func (s *Service) Path(ctx context.Context) (*Path, error) {
	var dp kidapi.DashboardPath
	if err := s.client.Get(ctx, kidapi.PathDashboard, &dp); err != nil {
		return nil, errors.Wrap(err, "fetch dashboard path")
	}
	return &Path{DashboardPath: dp}, nil
}

// Home 并发加载路线图与档案，任一失败即返回
func (s *Service) Home(ctx context.Context) (*Home, error) {
	g, gctx := errgroup.WithContext(ctx)

	var home Home
	g.Go(func() error {
		p, err := s.Path(gctx)
		home.Path = p
		return err
	})
	g.Go(func() error {
		st, err := s.profile.Refresh(gctx)
		home.Profile = st
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "load home failed", "error", err)
		return nil, err
	}
	return &home, nil
}
