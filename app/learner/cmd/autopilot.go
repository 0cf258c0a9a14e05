package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/lk2023060901/kidlingo/app/learner/internal/auth"
	"github.com/lk2023060901/kidlingo/app/learner/internal/dashboard"
	"github.com/lk2023060901/kidlingo/app/learner/internal/leaderboard"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/app/learner/internal/review"
	"github.com/lk2023060901/kidlingo/app/learner/internal/workflow"
)

// autopilot 依次执行登录、档案、学习路径、复习和排行榜，每步按配置重试与超时
func (c *cli) autopilot(ctx context.Context) error {
	wf := c.newAutopilot()
	err := wf.Run(ctx)

	for _, step := range wf.Steps() {
		line := "  " + step.Name + ": " + step.Status().String()
		if step.Attempts() > 1 {
			line += " (" + strconv.Itoa(step.Attempts()) + " lần)"
		}
		c.printf("%s\n", line)
	}
	if err != nil {
		return err
	}

	data := wf.Data()
	if st, ok := workflow.Value[profile.State](data, "profile"); ok {
		c.printf("%s: 💎 %d ⭐ %d\n", st.FullName, st.Gems, st.Stars)
	}
	if path, ok := workflow.Value[*dashboard.Path](data, "path"); ok {
		if next, ok := path.Next(); ok {
			c.printf("Bài tiếp theo: #%d %s\n", next.ID, next.Title)
		}
	}
	if sum, ok := workflow.Value[review.Summary](data, "review"); ok {
		c.printf("Ôn tập: %d/%d\n", sum.Correct, sum.Reviewed)
	}
	if board, ok := workflow.Value[*leaderboard.Board](data, "leaderboard"); ok {
		if me, ok := board.Me(); ok {
			c.printf("Hạng tuần: %d\n", me.Rank)
		}
	}
	return nil
}

func (c *cli) newAutopilot() *workflow.Workflow {
	cfg := c.Config.Autopilot
	retry := workflow.WithRetries(cfg.Retries, cfg.RetryDelay)
	timeout := workflow.WithTimeout(cfg.Timeout)

	wf := workflow.New("autopilot", c.Logger)

	// 1. 登录：已有会话且未指定账号时沿用
	wf.AddStep("login", func(ctx context.Context, _ *workflow.Data) error {
		if c.flags.Email == "" && c.Auth.Authenticated(ctx) {
			return nil
		}
		return c.Auth.Login(ctx, auth.LoginForm{Email: c.flags.Email, Password: c.flags.Password})
	}, retry, timeout)

	// 2. 档案
	wf.AddStep("profile", func(ctx context.Context, data *workflow.Data) error {
		st, err := c.Profile.Refresh(ctx)
		if err != nil {
			return err
		}
		data.Set("profile", st)
		return nil
	}, retry, timeout)

	// 3. 学习路径
	wf.AddStep("path", func(ctx context.Context, data *workflow.Data) error {
		path, err := c.Dashboard.Path(ctx)
		if err != nil {
			return err
		}
		data.Set("path", path)
		return nil
	}, retry, timeout)

	// 4. 复习：只有 --known 里的单词算答对；会话不可重放，所以不重试
	wf.AddStep("review", func(ctx context.Context, data *workflow.Data) error {
		sess, err := c.Review.Start(ctx)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(c.flags.Known))
		for _, w := range c.flags.Known {
			known[strings.ToLower(strings.TrimSpace(w))] = true
		}
		for {
			item, ok := sess.Current()
			if !ok {
				break
			}
			if err := sess.Answer(ctx, known[strings.ToLower(item.Word.Word)]); err != nil {
				return err
			}
		}
		data.Set("review", sess.Summary())
		return nil
	}, timeout, workflow.Optional())

	// 5. 排行榜
	wf.AddStep("leaderboard", func(ctx context.Context, data *workflow.Data) error {
		board, err := c.Leaderboard.Get(ctx, "")
		if err != nil {
			return err
		}
		data.Set("leaderboard", board)
		return nil
	}, retry, timeout, workflow.Optional())

	return wf
}
