// learner 学习端命令行：登录、学习路径、课程、复习、商店、充值、排行榜与 AI 问答
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/auth"
	"github.com/lk2023060901/kidlingo/app/learner/internal/form"
	"github.com/lk2023060901/kidlingo/pkg/app"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"github.com/spf13/pflag"
)

var (
	errUsage          = errors.New("learner: usage")
	errSessionExpired = errors.WithHint(errors.New("learner: session expired"), auth.ExpiredMessage)
)

// flags 各子命令共用的参数
type flags struct {
	Email      string
	Password   string
	Name       string
	Ref        string
	DOB        string
	Current    string
	New        string
	File       string
	Lesson     int64
	Watch      bool
	Answers    []string
	Known      []string
	Item       int64
	Pack       int64
	Gems       int
	Coupon     string
	Amount     int
	NoWait     bool
	Period     string
	XLSX       string
	Message    string
	Transcript string
	Origin     string
	Now        bool
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Email, "email", "", "account email")
	fs.StringVar(&f.Password, "password", "", "account password")
	fs.StringVar(&f.Name, "name", "", "full name")
	fs.StringVar(&f.Ref, "ref", "", "referral code")
	fs.StringVar(&f.DOB, "dob", "", "date of birth (YYYY-MM-DD)")
	fs.StringVar(&f.Current, "current", "", "current password")
	fs.StringVar(&f.New, "new", "", "new password")
	fs.StringVar(&f.File, "file", "", "avatar image to upload")
	fs.Int64Var(&f.Lesson, "lesson", 0, "lesson id")
	fs.BoolVar(&f.Watch, "watch", false, "mark the lesson video as watched")
	fs.StringSliceVar(&f.Answers, "answers", nil, "quiz answers in order")
	fs.StringSliceVar(&f.Known, "known", nil, "words you remember during review")
	fs.Int64Var(&f.Item, "item", 0, "shop item id")
	fs.Int64Var(&f.Pack, "pack", 0, "gem pack id")
	fs.IntVar(&f.Gems, "gems", 0, "quick top-up amount (100, 500, 1000, 2000)")
	fs.StringVar(&f.Coupon, "coupon", "", "coupon code")
	fs.IntVar(&f.Amount, "amount", 0, "order amount in VND")
	fs.BoolVar(&f.NoWait, "no-wait", false, "print the QR code without waiting for payment")
	fs.StringVar(&f.Period, "period", "", "leaderboard period (weekly, all_time)")
	fs.StringVar(&f.XLSX, "xlsx", "", "write the weekly report workbook to this path")
	fs.StringVar(&f.Message, "message", "", "question for the AI tutor")
	fs.StringVar(&f.Transcript, "transcript", "", "what the learner said")
	fs.StringVar(&f.Origin, "origin", "", "site origin for the invite link")
	fs.BoolVar(&f.Now, "now", false, "remind: run the check once and exit")
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, describe(err))
		if errors.Is(err, errSessionExpired) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	// 1. 解析参数与配置
	var f flags
	fs := pflag.NewFlagSet("learner", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	f.register(fs)
	fs.Usage = func() { usage(stderr, fs) }

	cfg := defaultConfig()
	mgr, err := app.LoadConfigFrom(fs, args, cfg, defaultConfig())
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cmd, ok := lookup(fs.Arg(0))
	if !ok {
		usage(stderr, fs)
		return errUsage
	}

	// 2. 初始化 Logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return err
	}
	logger.SetDefault(l)
	defer func() { _ = l.Sync() }()

	// 3. 组装组件
	learner, cleanup, err := InitLearner(cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. 执行子命令
	c := &cli{Learner: learner, flags: &f, out: stdout, mgr: mgr}
	return c.execute(ctx, cmd)
}

// cli 一次命令行调用的上下文
type cli struct {
	*Learner
	flags *flags
	out   io.Writer
	mgr   config.Manager
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *cli) execute(ctx context.Context, cmd command) error {
	if cmd.auth {
		if err := c.Auth.Require(ctx); err != nil {
			return err
		}
		if _, err := c.Profile.Refresh(ctx); err != nil {
			return c.settle(err)
		}
	}
	return c.settle(cmd.run(c, ctx))
}

// settle 命令结束时检查会话是否在途中过期
func (c *cli) settle(err error) error {
	if c.Auth.Expired() {
		c.Auth.AcknowledgeExpiry()
		if err == nil {
			return errSessionExpired
		}
		return errors.WithSecondaryError(errSessionExpired, err)
	}
	return err
}

// describe 面向用户的错误描述
func describe(err error) string {
	var fe *form.Error
	if errors.As(err, &fe) {
		keys := make([]string, 0, len(fe.Fields))
		for k := range fe.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", k, fe.Fields[k]))
		}
		return strings.Join(lines, "\n")
	}
	return api.UserMessage(err)
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: learner [flags] <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", cmd.name, cmd.help)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
