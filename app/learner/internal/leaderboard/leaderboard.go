// Package leaderboard 星星排行榜
package leaderboard

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
)

var ErrUnknownPeriod = errors.New("leaderboard: unknown period")

// Board 排行榜
type Board struct {
	Period kidapi.Period
	kidapi.Leaderboard
}

// Me 当前用户所在行；先看前十，再看服务端单独返回的排名
func (b *Board) Me() (kidapi.LeaderboardEntry, bool) {
	for _, e := range b.TopUsers {
		if e.IsCurrentUser {
			return e, true
		}
	}
	if b.UserRank != nil {
		return *b.UserRank, true
	}
	return kidapi.LeaderboardEntry{}, false
}

// Service 排行榜服务
type Service struct {
	client *api.Client
}

// NewService 创建排行榜服务
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Get 拉取排行榜，period 为空时取本周
func (s *Service) Get(ctx context.Context, period kidapi.Period) (*Board, error) {
	switch period {
	case "":
		period = kidapi.PeriodWeekly
	case kidapi.PeriodWeekly, kidapi.PeriodAllTime:
	default:
		return nil, errors.Wrapf(ErrUnknownPeriod, "%q", period)
	}

	var lb kidapi.Leaderboard
	q := url.Values{"period": {string(period)}}
	if err := s.client.Get(ctx, kidapi.PathLeaderboard, &lb, api.WithQuery(q)); err != nil {
		return nil, errors.Wrapf(err, "fetch %s leaderboard", period)
	}
	return &Board{Period: period, Leaderboard: lb}, nil
}
