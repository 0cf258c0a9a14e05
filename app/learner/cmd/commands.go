package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/auth"
	"github.com/lk2023060901/kidlingo/app/learner/internal/avatar"
	"github.com/lk2023060901/kidlingo/app/learner/internal/chat"
	"github.com/lk2023060901/kidlingo/app/learner/internal/lesson"
	"github.com/lk2023060901/kidlingo/app/learner/internal/payment"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/app/learner/internal/report"
	"github.com/lk2023060901/kidlingo/app/learner/internal/review"
	"github.com/lk2023060901/kidlingo/app/learner/internal/shop"
	"github.com/lk2023060901/kidlingo/app/learner/internal/speech"
	"github.com/lk2023060901/kidlingo/pkg/app"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
)

var errMissingFlag = errors.New("learner: missing flag")

// command 子命令
type command struct {
	name string
	help string
	// auth 为 true 时先检查登录并加载档案
	auth bool
	run  func(*cli, context.Context) error
}

var commands = []command{
	{"login", "log in with --email and --password", false, (*cli).login},
	{"register", "create an account with --name --email --password [--ref]", false, (*cli).register},
	{"logout", "clear the saved session", false, (*cli).logout},
	{"whoami", "show the profile", true, (*cli).whoami},
	{"profile", "update --name and/or --dob", true, (*cli).updateProfile},
	{"password", "change password with --current and --new", true, (*cli).changePassword},
	{"upload", "upload --file as the profile picture", true, (*cli).uploadAvatar},
	{"path", "show the learning path", true, (*cli).path},
	{"lesson", "open --lesson; --watch ends the video, --answers plays the quiz", true, (*cli).lesson},
	{"review", "review today's words; --known lists the ones you remember", true, (*cli).review},
	{"shop", "list shop items", true, (*cli).shop},
	{"buy", "buy --item", true, (*cli).buy},
	{"equip", "equip --item", true, (*cli).equip},
	{"gems", "list gem packs and quick top-ups", true, (*cli).gems},
	{"topup", "buy gems with --pack or --gems [--coupon], then wait for payment", true, (*cli).topup},
	{"coupon", "check --coupon against --amount", true, (*cli).coupon},
	{"leaderboard", "show the leaderboard for --period", true, (*cli).leaderboard},
	{"report", "weekly report; --xlsx also writes a workbook", true, (*cli).report},
	{"chat", "ask the AI tutor --message", false, (*cli).chat},
	{"say", "pronunciation practice for --lesson with --transcript", true, (*cli).say},
	{"avatar", "show the composed avatar layers", true, (*cli).avatar},
	{"invite", "print the referral link", true, (*cli).invite},
	{"remind", "run the review reminder daemon (--now runs it once)", true, (*cli).remind},
	{"autopilot", "log in and walk through profile, path, review and leaderboard", false, (*cli).autopilot},
	{"version", "print build information", false, (*cli).version},
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func requireFlag(ok bool, flag string) error {
	if ok {
		return nil
	}
	return errors.WithHint(errors.Wrapf(errMissingFlag, "--%s", flag), "Thiếu tham số --"+flag)
}

func (c *cli) login(ctx context.Context) error {
	if err := c.Auth.Login(ctx, auth.LoginForm{Email: c.flags.Email, Password: c.flags.Password}); err != nil {
		return err
	}
	st, err := c.Profile.Refresh(ctx)
	if err != nil {
		return err
	}
	c.printf("Xin chào %s! 💎 %d ⭐ %d\n", st.FullName, st.Gems, st.Stars)
	return nil
}

func (c *cli) register(ctx context.Context) error {
	u, err := c.Auth.Register(ctx, auth.RegisterForm{
		FullName: c.flags.Name,
		Email:    c.flags.Email,
		Password: c.flags.Password,
		RefCode:  c.flags.Ref,
	})
	if err != nil {
		return err
	}
	c.printf("Đăng ký thành công! Mã giới thiệu của bé: %s\n", u.ReferralCode)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	if err := c.Auth.Logout(ctx); err != nil {
		return err
	}
	c.printf("Đã đăng xuất.\n")
	return nil
}

func (c *cli) whoami(context.Context) error {
	c.printState(c.Store.Snapshot())
	return nil
}

func (c *cli) printState(st profile.State) {
	c.printf("%s <%s>\n", st.FullName, st.Email)
	c.printf("💎 %d  ⭐ %d\n", st.Gems, st.Stars)
	if st.ReferralCode != "" {
		c.printf("Mã giới thiệu: %s\n", st.ReferralCode)
	}
	if st.AvatarURL != "" {
		c.printf("Ảnh đại diện: %s\n", st.AvatarURL)
	}
}

func (c *cli) updateProfile(ctx context.Context) error {
	st, err := c.Profile.Update(ctx, profile.UpdateForm{FullName: c.flags.Name, DateOfBirth: c.flags.DOB})
	if err != nil {
		return err
	}
	c.printf("Cập nhật thành công!\n")
	c.printState(st)
	return nil
}

func (c *cli) changePassword(ctx context.Context) error {
	err := c.Profile.ChangePassword(ctx, profile.PasswordForm{
		Current: c.flags.Current,
		New:     c.flags.New,
		Confirm: c.flags.New,
	})
	if err != nil {
		return err
	}
	c.printf("Đổi mật khẩu thành công!\n")
	return nil
}

func (c *cli) uploadAvatar(ctx context.Context) error {
	if err := requireFlag(c.flags.File != "", "file"); err != nil {
		return err
	}
	f, err := os.Open(c.flags.File)
	if err != nil {
		return errors.Wrap(err, "open avatar")
	}
	defer f.Close()

	url, err := c.Profile.UploadAvatar(ctx, filepath.Base(c.flags.File), f)
	if err != nil {
		return err
	}
	if _, err := c.Profile.Update(ctx, profile.UpdateForm{AvatarURL: url}); err != nil {
		return err
	}
	c.printf("Ảnh đại diện mới: %s\n", url)
	return nil
}

func (c *cli) path(ctx context.Context) error {
	home, err := c.Dashboard.Home(ctx)
	if err != nil {
		return err
	}
	c.printf("%s  💎 %d  ⭐ %d\n", home.Profile.FullName, home.Profile.Gems, home.Path.TotalStars())
	for _, unit := range home.Path.Units {
		c.printf("\n%s (%.0f%%)\n", unit.Title, home.Path.UnitProgress(unit)*100)
		for _, l := range unit.Lessons {
			mark := "  "
			switch {
			case l.IsCompleted:
				mark = "✓ "
			case l.IsLocked:
				mark = "🔒"
			}
			c.printf("  %s #%d %s %s\n", mark, l.ID, l.Title, strings.Repeat("⭐", home.Path.Stars(l)))
		}
	}
	if next, ok := home.Path.Next(); ok {
		c.printf("\nBài tiếp theo: #%d %s\n", next.ID, next.Title)
	}
	return nil
}

func (c *cli) lesson(ctx context.Context) error {
	if err := requireFlag(c.flags.Lesson > 0, "lesson"); err != nil {
		return err
	}
	l, err := c.Lessons.Get(ctx, c.flags.Lesson)
	if err != nil {
		return err
	}
	c.printf("#%d %s (%s)\n", l.ID, l.Title, l.LessonType)
	if l.VideoURL != nil {
		c.printf("Video: %s\n", *l.VideoURL)
	}
	c.printf("Câu hỏi: %d\n", len(l.Questions))

	if c.flags.Watch {
		if msg := c.Lessons.VideoEnded(ctx, l.ID).Message(); msg != "" {
			c.printf("%s\n", msg)
		}
	}
	if len(c.flags.Answers) == 0 {
		return nil
	}

	var reward lesson.Reward
	quiz := lesson.NewQuiz(l.Questions, func(score, total int) {
		reward = c.Lessons.QuizCompleted(ctx, l.ID, score, total)
	})
	if !quiz.Active() {
		return errors.WithHint(lesson.ErrQuizInactive, "Bài học này chưa có câu hỏi.")
	}
	for _, answer := range c.flags.Answers {
		q, i, ok := quiz.Current()
		if !ok {
			break
		}
		a, err := quiz.Select(strings.TrimSpace(answer))
		if err != nil {
			return err
		}
		if a.Correct {
			c.printf("%d. %s ✓\n", i+1, q.Text)
		} else {
			c.printf("%d. %s ✗ (đáp án: %s)\n", i+1, q.Text, a.CorrectAnswer)
		}
		if _, err := quiz.Next(); err != nil {
			return err
		}
	}
	res, done := quiz.Result()
	if !done {
		return errors.WithHintf(errors.Wrap(errMissingFlag, "--answers"), "Cần trả lời đủ %d câu.", quiz.Total())
	}
	c.printf("Kết quả: %d/%d\n", res.Score, res.Total)
	if msg := reward.Message(); msg != "" {
		c.printf("%s\n", msg)
	}
	return nil
}

func (c *cli) review(ctx context.Context) error {
	sess, err := c.Review.Start(ctx)
	if err != nil {
		return err
	}
	if sess.State() == review.StateEmpty {
		c.printf("Hôm nay không có từ nào cần ôn tập. Giỏi lắm!\n")
		return nil
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
		correct := known[strings.ToLower(item.Word.Word)]
		mark := "✗"
		if correct {
			mark = "✓"
		}
		c.printf("%d/%d %s - %s %s\n", sess.Index()+1, sess.Len(), item.Word.Word, item.Word.Meaning, mark)
		if err := sess.Answer(ctx, correct); err != nil {
			return err
		}
	}
	sum := sess.Summary()
	c.printf("Đã ôn %d từ, nhớ %d từ.\n", sum.Reviewed, sum.Correct)
	return nil
}

func (c *cli) shop(ctx context.Context) error {
	catalog, err := c.Shop.Catalog(ctx)
	if err != nil {
		return err
	}
	groups := catalog.ByCategory()
	categories := make([]string, 0, len(groups))
	for cat := range groups {
		categories = append(categories, string(cat))
	}
	sort.Strings(categories)
	for _, cat := range categories {
		c.printf("[%s]\n", cat)
		for _, item := range groups[kidapi.ItemCategory(cat)] {
			state := ""
			switch {
			case item.IsEquipped:
				state = " (đang dùng)"
			case item.IsOwned:
				state = " (đã có)"
			}
			c.printf("  #%d %s 💎 %d%s\n", item.ID, item.Name, item.Price, state)
		}
	}
	return nil
}

func (c *cli) buy(ctx context.Context) error {
	if err := requireFlag(c.flags.Item > 0, "item"); err != nil {
		return err
	}
	catalog, err := c.Shop.Catalog(ctx)
	if err != nil {
		return err
	}
	resp, err := c.Shop.Buy(ctx, catalog, c.flags.Item)
	if err != nil {
		return err
	}
	c.printf("%s\n", shop.BuyMessage(resp))
	return nil
}

func (c *cli) equip(ctx context.Context) error {
	if err := requireFlag(c.flags.Item > 0, "item"); err != nil {
		return err
	}
	catalog, err := c.Shop.Catalog(ctx)
	if err != nil {
		return err
	}
	resp, err := c.Shop.Equip(ctx, catalog, c.flags.Item)
	if err != nil {
		return err
	}
	c.printf("%s\n", resp.Message)
	return nil
}

func (c *cli) gems(ctx context.Context) error {
	packs, err := c.Payment.GemPacks(ctx)
	if err != nil {
		return err
	}
	c.printf("Gói Gems:\n")
	for _, p := range packs {
		bonus := ""
		if p.BonusGemPercent > 0 {
			bonus = fmt.Sprintf(" (+%d%%)", p.BonusGemPercent)
		}
		c.printf("  #%d %s: %d 💎%s - %s đ\n", p.ID, p.Name, p.TotalGems, bonus, vnd(p.PriceVND))
	}
	c.printf("Nạp nhanh:\n")
	for _, o := range payment.QuickOffers {
		c.printf("  --gems %d: %s đ\n", o.Gems, vnd(o.Price))
	}
	return nil
}

func (c *cli) topup(ctx context.Context) error {
	var (
		orderID string
		amount  int
	)
	switch {
	case c.flags.Pack > 0:
		order, err := c.Payment.CreateGemOrder(ctx, c.flags.Pack, c.flags.Coupon)
		if err != nil {
			return err
		}
		orderID, amount = order.OrderID, order.FinalAmount
		c.printf("Gói #%d: %d 💎\n", order.GemPackID, order.TotalGems)
	case c.flags.Gems > 0:
		offer, ok := payment.FindOffer(c.flags.Gems)
		if !ok {
			return errors.WithHint(errors.Wrapf(errMissingFlag, "--gems %d", c.flags.Gems), "Chỉ nạp được 100, 500, 1000 hoặc 2000 Gems.")
		}
		checkout := &payment.Checkout{Offer: offer}
		if c.flags.Coupon != "" {
			resp, err := c.Payment.ValidateCoupon(ctx, c.flags.Coupon, offer.Price)
			if err != nil {
				return err
			}
			checkout.ApplyCoupon(c.flags.Coupon, resp)
			c.printf("%s\n", resp.Message)
		}
		order, err := c.Payment.Checkout(ctx, checkout)
		if err != nil {
			return err
		}
		// 服务端的 amount 已扣除优惠
		orderID, amount = order.OrderID, order.Amount
	default:
		return requireFlag(false, "pack")
	}

	qr := payment.QRURL(c.Payment.Config(), orderID, amount)
	c.printf("Mã đơn: %s\nSố tiền: %s đ\nQuét mã QR để thanh toán: %s\n", orderID, vnd(amount), qr)
	if c.flags.NoWait {
		return nil
	}

	c.printf("Đang chờ thanh toán...\n")
	poller := c.Payment.NewPoller(orderID, func(string) {
		c.printf("%s\n", payment.SuccessMessage)
	})
	switch state := poller.Run(ctx); state {
	case payment.StatePaid:
		c.printf("Số Gems hiện tại: %d 💎\n", c.Store.Snapshot().Gems)
		return nil
	case payment.StateCancelled:
		return ctx.Err()
	default:
		c.printf("Chưa nhận được thanh toán cho đơn %s. Bé kiểm tra lại sau nhé!\n", orderID)
		return nil
	}
}

func (c *cli) coupon(ctx context.Context) error {
	if err := requireFlag(c.flags.Amount > 0, "amount"); err != nil {
		return err
	}
	resp, err := c.Payment.ValidateCoupon(ctx, c.flags.Coupon, c.flags.Amount)
	if err != nil {
		return err
	}
	c.printf("%s\n", resp.Message)
	if resp.Valid {
		c.printf("Giảm %s đ, còn %s đ\n", vnd(resp.DiscountAmount), vnd(resp.FinalAmount))
	}
	return nil
}

func (c *cli) leaderboard(ctx context.Context) error {
	board, err := c.Leaderboard.Get(ctx, kidapi.Period(c.flags.Period))
	if err != nil {
		return err
	}
	c.printf("Bảng xếp hạng (%s)\n", board.Period)
	for _, e := range board.TopUsers {
		me := ""
		if e.IsCurrentUser {
			me = " ← bé"
		}
		c.printf("%3d. %s ⭐ %d%s\n", e.Rank, e.FullName, e.Stars, me)
	}
	if me, ok := board.Me(); ok && me.Rank > len(board.TopUsers) {
		c.printf("...\n%3d. %s ⭐ %d ← bé\n", me.Rank, me.FullName, me.Stars)
	}
	return nil
}

func (c *cli) report(ctx context.Context) error {
	r, err := c.Report.Weekly(ctx)
	if err != nil {
		return err
	}
	c.printf("Tuần này: %d bài, %d phút\n", r.LessonsCompleted, r.TotalMinutes)
	c.printf("Từ đã học: %s\n", strings.Join(r.LearnedWords, ", "))
	c.printf("Từ cần luyện: %s\n", strings.Join(r.WeakWords, ", "))
	for _, d := range r.DailyChart {
		c.printf("  %s %s %d\n", d.Date, strings.Repeat("▇", d.Minutes), d.Minutes)
	}
	if c.flags.XLSX == "" {
		return nil
	}

	f, err := os.Create(c.flags.XLSX)
	if err != nil {
		return errors.Wrap(err, "create workbook")
	}
	if err := report.Export(f, r); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close workbook")
	}
	c.printf("Đã lưu báo cáo: %s\n", c.flags.XLSX)
	return nil
}

func (c *cli) chat(ctx context.Context) error {
	if strings.TrimSpace(c.flags.Message) == "" {
		c.printf("Bé có thể hỏi:\n")
		for _, q := range chat.QuickQuestions {
			c.printf("  - %s\n", q)
		}
		return nil
	}
	// 登录时带上用户 ID，未登录按默认用户提问
	if c.Auth.Authenticated(ctx) {
		if _, err := c.Profile.Refresh(ctx); err != nil {
			return err
		}
	}
	reply, err := c.Chat.Send(ctx, c.flags.Message, nil)
	if err != nil {
		return err
	}
	c.printf("%s\n", reply)
	return nil
}

func (c *cli) say(ctx context.Context) error {
	if err := requireFlag(c.flags.Lesson > 0, "lesson"); err != nil {
		return err
	}
	l, err := c.Lessons.Get(ctx, c.flags.Lesson)
	if err != nil {
		return err
	}
	practice := speech.NewPractice(lesson.PronunciationTarget(l), c.Store)
	c.printf("Từ cần đọc: %s\n", practice.Target())
	if c.flags.Transcript == "" {
		return nil
	}
	res := practice.Attempt(c.flags.Transcript)
	if !res.Match {
		c.printf("Bé đọc là \"%s\". Thử lại nhé!\n", res.Spoken)
		return nil
	}
	c.printf("%s 💎 %d\n", speech.SuccessMessage, c.Store.Snapshot().Gems)
	return nil
}

func (c *cli) avatar(ctx context.Context) error {
	catalog, err := c.Shop.Catalog(ctx)
	if err != nil {
		return err
	}
	for _, layer := range avatar.FromCatalog(catalog) {
		c.printf("%d %-10s %-7s %s\n", layer.LayerOrder, layer.Category, layer.Fit, layer.ImageURL)
	}
	return nil
}

func (c *cli) invite(context.Context) error {
	origin := c.flags.Origin
	if origin == "" {
		origin = c.Config.Origin
	}
	link, err := c.Profile.ReferralLink(origin)
	if err != nil {
		return err
	}
	c.printf("%s\n", link)
	return nil
}

func (c *cli) version(context.Context) error {
	info := app.GetInfo()
	info.AppName = "learner"
	c.printf("%s\n", info)
	return nil
}
