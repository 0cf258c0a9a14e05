package main

import (
	"context"

	"github.com/lk2023060901/kidlingo/app/learner/internal/reminder"
	"github.com/lk2023060901/kidlingo/pkg/app"
	"github.com/lk2023060901/kidlingo/pkg/config"
)

// remind 按计划检查到期单词并发送提醒；有配置文件时监听其变化热更新计划
func (c *cli) remind(ctx context.Context) error {
	if c.flags.Now {
		due, err := c.Reminder.RunOnce(ctx)
		if err != nil {
			return err
		}
		c.printf("Hôm nay có %d từ cần ôn tập.\n", due)
		return nil
	}

	if c.mgr != nil && c.mgr.ConfigFile() != "" {
		w, err := config.NewWatcher[reminder.Config](c.mgr, "reminder", func(err error) {
			c.Logger.Warn("reload reminder config failed", "error", err)
		})
		if err != nil {
			return err
		}
		w.OnChange(func(cfg *reminder.Config) {
			if err := c.Reminder.Reload(cfg); err != nil {
				c.Logger.Warn("invalid reminder config, keeping the old one", "error", err)
			}
		})
	}

	application := app.NewBaseApp(app.WithName("learner-remind"), app.WithLogger(c.Logger))
	application.AppendServer(c.Reminder, c.Exporter)
	application.AppendCloser(app.CloserFunc(c.Logger.Sync))

	go func() {
		<-ctx.Done()
		application.Stop()
	}()

	c.printf("Nhắc ôn tập theo lịch %q (%s)\n", c.Reminder.Spec(), c.Reminder.Notifier().Name())
	return application.Run()
}
