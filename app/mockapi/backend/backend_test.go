package backend

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	b       *Backend
	handler http.Handler
	now     time.Time
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(func() time.Time { return h.now })}, opts...)
	b, err := New(opts...)
	require.NoError(t, err)
	h.b = b
	h.handler = b.Handler()
	return h
}

// user 建号并返回 (id, token)
func (h *harness) user(email string) (int64, string) {
	h.t.Helper()
	id, err := h.b.CreateUser(email, "secret1", "Bin")
	require.NoError(h.t, err)
	token, err := h.b.IssueToken(id)
	require.NoError(h.t, err)
	return id, token
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, APIPrefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[kidapi.ErrorBody](t, w).Text()
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.user("bin@kid.vn")

	tests := []struct {
		name     string
		username string
		password string
		wantCode int
	}{
		{name: "ok", username: "bin@kid.vn", password: "secret1", wantCode: http.StatusOK},
		{name: "case insensitive email", username: "BIN@kid.vn", password: "secret1", wantCode: http.StatusOK},
		{name: "wrong password", username: "bin@kid.vn", password: "nope", wantCode: http.StatusBadRequest},
		{name: "unknown user", username: "who@kid.vn", password: "secret1", wantCode: http.StatusBadRequest},
		{name: "missing field", username: "bin@kid.vn", wantCode: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"username": {tt.username}, "password": {tt.password}}
			req := httptest.NewRequest(http.MethodPost, APIPrefix+kidapi.PathLogin, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			h.handler.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			switch tt.wantCode {
			case http.StatusOK:
				tok := decode[kidapi.Token](t, w)
				assert.NotEmpty(t, tok.AccessToken)
				assert.Equal(t, "bearer", tok.TokenType)
			case http.StatusBadRequest:
				assert.Equal(t, "Tài khoản hoặc mật khẩu không đúng", detail(t, w))
			}
		})
	}
}

func TestRegisterReferral(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, kidapi.PathRegister, "", kidapi.RegisterRequest{Email: "an@kid.vn", Password: "secret1", FullName: "An Nguyen"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	inviter := decode[kidapi.User](t, w)
	assert.True(t, strings.HasPrefix(inviter.ReferralCode, "ANN"))
	assert.Len(t, inviter.ReferralCode, 9)

	w = h.do(http.MethodPost, kidapi.PathRegister, "", kidapi.RegisterRequest{Email: "binh@kid.vn", Password: "secret1", FullName: "Bình", RefCode: inviter.ReferralCode})
	require.Equal(t, http.StatusOK, w.Code)
	invited := decode[kidapi.User](t, w)

	assert.Equal(t, referralBonus, h.b.Gems(inviter.ID))
	assert.Equal(t, referralBonus, h.b.Gems(invited.ID))

	w = h.do(http.MethodPost, kidapi.PathRegister, "", kidapi.RegisterRequest{Email: "AN@kid.vn", Password: "secret1", FullName: "An"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Tài khoản đã tồn tại.", detail(t, w))

	w = h.do(http.MethodPost, kidapi.PathRegister, "", kidapi.RegisterRequest{Email: "bad", Password: "1", FullName: "X"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReferralCodeFallback(t *testing.T) {
	code := referralCode("!!")
	assert.True(t, strings.HasPrefix(code, "USER"))
	assert.Len(t, code, 10)
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, kidapi.PathProfile, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodGet, kidapi.PathProfile, "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileAndPassword(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("bin@kid.vn")

	name, dob := "Bin Bin", "2018-04-01"
	w := h.do(http.MethodPut, kidapi.PathProfile, token, kidapi.ProfileUpdate{FullName: &name, DateOfBirth: &dob})
	require.Equal(t, http.StatusOK, w.Code)

	p := decode[kidapi.UserProfile](t, h.do(http.MethodGet, kidapi.PathProfile, token, nil))
	assert.Equal(t, "Bin Bin", p.FullName)
	require.NotNil(t, p.StudentProfile)
	require.NotNil(t, p.StudentProfile.DateOfBirth)
	assert.Equal(t, dob, *p.StudentProfile.DateOfBirth)

	tests := []struct {
		name    string
		req     kidapi.PasswordChange
		code    int
		message string
	}{
		{name: "wrong current", req: kidapi.PasswordChange{CurrentPassword: "nope12", NewPassword: "newpass"}, code: http.StatusBadRequest, message: "Mật khẩu hiện tại không chính xác!"},
		{name: "same as current", req: kidapi.PasswordChange{CurrentPassword: "secret1", NewPassword: "secret1"}, code: http.StatusBadRequest, message: "Mật khẩu mới không nên trùng với mật khẩu hiện tại!"},
		{name: "ok", req: kidapi.PasswordChange{CurrentPassword: "secret1", NewPassword: "newpass"}, code: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(http.MethodPut, kidapi.PathProfilePassword, token, tt.req)
			require.Equal(t, tt.code, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, detail(t, w))
				return
			}
			assert.Equal(t, "Đổi mật khẩu thành công!", decode[kidapi.Message](t, w).Message)
		})
	}
}

func TestDashboardSequentialLock(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("bin@kid.vn")

	locks := func() []bool {
		path := decode[kidapi.DashboardPath](t, h.do(http.MethodGet, kidapi.PathDashboard, token, nil))
		var out []bool
		for _, u := range path.Units {
			for _, l := range u.Lessons {
				out = append(out, l.IsLocked)
			}
		}
		return out
	}
	assert.Equal(t, []bool{false, true, true, true}, locks())

	w := h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []bool{false, false, true, true}, locks())

	h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: 2})
	h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: 3, Score: 4, TotalQuestions: 5})
	// 锁跨单元：第二单元第一课依赖第一单元最后一课
	assert.Equal(t, []bool{false, false, false, false}, locks())

	path := decode[kidapi.DashboardPath](t, h.do(http.MethodGet, kidapi.PathDashboard, token, nil))
	quiz := path.Units[0].Lessons[2]
	require.NotNil(t, quiz.Score)
	assert.Equal(t, 4, *quiz.Score)
	assert.Nil(t, path.Units[1].Lessons[0].Score)
}

func TestMarkCompleteRewards(t *testing.T) {
	tests := []struct {
		name      string
		lessonID  int64
		score     int
		total     int
		wantGems  int
		wantStars int
	}{
		{name: "video only earns gems", lessonID: 1, wantGems: 10},
		{name: "quiz pass", lessonID: 3, score: 3, total: 5, wantGems: 10, wantStars: 3},
		{name: "quiz fail", lessonID: 3, score: 2, total: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			id, token := h.user("bin@kid.vn")

			w := h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: tt.lessonID, Score: tt.score, TotalQuestions: tt.total})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			resp := decode[kidapi.ProgressResponse](t, w)
			assert.True(t, resp.IsCompleted)
			assert.Equal(t, tt.wantGems, resp.EarnedGems)
			assert.Equal(t, tt.wantStars, resp.EarnedStars)
			assert.Equal(t, tt.wantGems, h.b.Gems(id))

			// 重复完成不再发奖
			resp = decode[kidapi.ProgressResponse](t, h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: tt.lessonID}))
			assert.Zero(t, resp.EarnedGems)
			assert.Zero(t, resp.EarnedStars)
		})
	}

	h := newHarness(t)
	_, token := h.user("bin@kid.vn")
	w := h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: 99})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNextReview(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		level     int
		correct   bool
		wantLevel int
		wantDays  int
	}{
		{name: "wrong resets", level: 4, correct: false, wantLevel: 1, wantDays: 1},
		{name: "box 1 to 2", level: 1, correct: true, wantLevel: 2, wantDays: 3},
		{name: "box 3 to 4", level: 3, correct: true, wantLevel: 4, wantDays: 15},
		{name: "capped at 5", level: 5, correct: true, wantLevel: 5, wantDays: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, at := nextReview(tt.level, tt.correct, now)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, now.AddDate(0, 0, tt.wantDays), at)
		})
	}
}

func TestReviewFlow(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("bin@kid.vn")

	due := decode[[]kidapi.WordReview](t, h.do(http.MethodGet, kidapi.PathReviewToday, token, nil))
	assert.Empty(t, due)

	h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: 1})
	due = decode[[]kidapi.WordReview](t, h.do(http.MethodGet, kidapi.PathReviewToday, token, nil))
	require.Len(t, due, 2)
	assert.Equal(t, "cat", due[0].Word.Word)
	assert.Equal(t, 1, due[0].Progress.BoxLevel)

	wp := decode[kidapi.WordProgress](t, h.do(http.MethodPost, kidapi.PathSubmitWord, token, kidapi.WordSubmit{WordID: due[0].Word.ID, IsCorrect: true}))
	assert.Equal(t, 2, wp.BoxLevel)
	assert.True(t, h.now.AddDate(0, 0, 3).Equal(wp.NextReviewAt))
	require.NotNil(t, wp.LastReviewedAt)

	wp = decode[kidapi.WordProgress](t, h.do(http.MethodPost, kidapi.PathSubmitWord, token, kidapi.WordSubmit{WordID: due[1].Word.ID, IsCorrect: false}))
	assert.Equal(t, 1, wp.BoxLevel)

	due = decode[[]kidapi.WordReview](t, h.do(http.MethodGet, kidapi.PathReviewToday, token, nil))
	assert.Empty(t, due)

	h.now = h.now.AddDate(0, 0, 1)
	due = decode[[]kidapi.WordReview](t, h.do(http.MethodGet, kidapi.PathReviewToday, token, nil))
	require.Len(t, due, 1)
	assert.Equal(t, "kitten", due[0].Word.Word)

	w := h.do(http.MethodPost, kidapi.PathSubmitWord, token, kidapi.WordSubmit{WordID: 404, IsCorrect: true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShopBuyAndEquip(t *testing.T) {
	h := newHarness(t)
	id, token := h.user("bin@kid.vn")

	w := h.do(http.MethodPost, kidapi.PathShopBuy, token, kidapi.BuyItemRequest{ItemID: 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Not enough gems", detail(t, w))

	require.NoError(t, h.b.SetGems(id, 200))
	w = h.do(http.MethodPost, kidapi.PathShopBuy, token, kidapi.BuyItemRequest{ItemID: 2})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[kidapi.BuyItemResponse](t, w)
	assert.Equal(t, 150, resp.RemainingGems)
	assert.Equal(t, "Red cap", resp.ItemName)

	w = h.do(http.MethodPost, kidapi.PathShopBuy, token, kidapi.BuyItemRequest{ItemID: 2})
	assert.Equal(t, "You already own this item", detail(t, w))
	w = h.do(http.MethodPost, kidapi.PathShopBuy, token, kidapi.BuyItemRequest{ItemID: 404})
	assert.Equal(t, http.StatusNotFound, w.Code)

	h.do(http.MethodPost, kidapi.PathShopBuy, token, kidapi.BuyItemRequest{ItemID: 3})

	w = h.do(http.MethodPost, kidapi.EquipPath(2), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	eq := decode[kidapi.EquipItemResponse](t, w)
	assert.Equal(t, "Equipped Red cap", eq.Message)
	assert.Nil(t, eq.UnequippedItemID)

	eq = decode[kidapi.EquipItemResponse](t, h.do(http.MethodPost, kidapi.EquipPath(3), token, nil))
	require.NotNil(t, eq.UnequippedItemID)
	assert.EqualValues(t, 2, *eq.UnequippedItemID)
	assert.Equal(t, kidapi.CategoryHat, eq.Category)

	w = h.do(http.MethodPost, kidapi.EquipPath(5), token, nil)
	assert.Equal(t, "Item not found in your inventory", detail(t, w))

	items := decode[[]kidapi.ShopItem](t, h.do(http.MethodGet, kidapi.PathShopItems, token, nil))
	state := map[int64][2]bool{}
	for _, it := range items {
		state[it.ID] = [2]bool{it.IsOwned, it.IsEquipped}
	}
	assert.Equal(t, [2]bool{true, false}, state[2])
	assert.Equal(t, [2]bool{true, true}, state[3])
	assert.Equal(t, [2]bool{false, false}, state[5])
}

func TestValidateCoupon(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		code      string
		amount    int
		valid     bool
		discount  int
		final     int
		wantMatch string
	}{
		{code: "KID10", amount: 45000, valid: true, discount: 4500, final: 40500, wantMatch: "thành công"},
		{code: "FIX5K", amount: 10000, valid: true, discount: 5000, final: 5000},
		{code: "FREE100", amount: 10000, valid: true, discount: 10000, final: 0},
		{code: "NOPE", amount: 10000, final: 10000, wantMatch: "không tồn tại"},
		{code: "OFF", amount: 10000, final: 10000, wantMatch: "không hoạt động"},
		{code: "OLD", amount: 10000, final: 10000, wantMatch: "hết hạn"},
		{code: "USED", amount: 10000, final: 10000, wantMatch: "hết lượt"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := h.do(http.MethodPost, kidapi.PathValidateCoupon, "", kidapi.CouponValidateRequest{CouponCode: tt.code, OriginalAmount: tt.amount})
			require.Equal(t, http.StatusOK, w.Code)
			resp := decode[kidapi.CouponValidateResponse](t, w)
			assert.Equal(t, tt.valid, resp.Valid)
			assert.Equal(t, tt.discount, resp.DiscountAmount)
			assert.Equal(t, tt.final, resp.FinalAmount)
			assert.Contains(t, resp.Message, tt.wantMatch)
		})
	}
}

func TestOrderWebhookSettlement(t *testing.T) {
	h := newHarness(t)
	id, token := h.user("bin@kid.vn")

	w := h.do(http.MethodPost, kidapi.PathOrders, token, kidapi.OrderRequest{Amount: 45000, ItemType: "gem_pack", ItemID: "gem_500", Description: "500 gems", CouponCode: "KID10"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode[kidapi.Order](t, w)
	assert.True(t, strings.HasPrefix(order.OrderID, "DH"))
	assert.Equal(t, 40500, order.Amount)
	assert.Equal(t, 4500, order.DiscountAmount)
	assert.Equal(t, kidapi.OrderPending, order.Status)
	assert.Contains(t, order.QRURL, "des="+order.OrderID)

	hook := func(content string, amount int) map[string]string {
		w := h.do(http.MethodPost, kidapi.PathPaymentWebhook, "", kidapi.PaymentWebhook{Content: content, TransferAmount: amount})
		require.Equal(t, http.StatusOK, w.Code)
		return decode[map[string]string](t, w)
	}
	assert.Equal(t, "ignored", hook("chuyen tien", 40500)["status"])
	assert.Equal(t, "Order not found", hook("DH1 ck", 40500)["reason"])
	assert.Equal(t, "Insufficient amount", hook(order.OrderID+" ck", 100)["reason"])
	assert.Equal(t, "success", hook("CK "+order.OrderID+" FT123", 40500)["status"])
	assert.Equal(t, "Already paid", hook(order.OrderID, 40500)["reason"])

	assert.Equal(t, 500, h.b.Gems(id))
	got := decode[kidapi.Order](t, h.do(http.MethodGet, kidapi.OrderPath(order.OrderID), token, nil))
	assert.Equal(t, kidapi.OrderPaid, got.Status)

	w = h.do(http.MethodPost, kidapi.PathOrders, token, kidapi.OrderRequest{Amount: 10000, CouponCode: "OLD"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Mã giảm giá đã hết hạn.", detail(t, w))

	_, other := h.user("other@kid.vn")
	w = h.do(http.MethodGet, kidapi.OrderPath(order.OrderID), other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGemOrders(t *testing.T) {
	h := newHarness(t)
	id, token := h.user("bin@kid.vn")

	packs := decode[[]kidapi.GemPack](t, h.do(http.MethodGet, kidapi.PathGemPacks, token, nil))
	require.Len(t, packs, 3)
	assert.Equal(t, "Túi nhỏ", packs[0].Name)

	w := h.do(http.MethodPost, kidapi.PathGemOrders, token, kidapi.GemOrderRequest{GemPackID: 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, kidapi.PathGemOrders, token, kidapi.GemOrderRequest{GemPackID: 2, CouponCode: "FIX5K"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode[kidapi.GemOrder](t, w)
	assert.Equal(t, 550, order.TotalGems)
	assert.Equal(t, 45000, order.OriginalPrice)
	assert.Equal(t, 40000, order.FinalAmount)

	require.NoError(t, h.b.MarkPaid(order.OrderID))
	require.NoError(t, h.b.MarkPaid(order.OrderID))
	assert.Equal(t, 550, h.b.Gems(id))
	assert.ErrorIs(t, h.b.MarkPaid("DH0"), ErrOrderNotFound)
}

func TestAutoPayAfter(t *testing.T) {
	h := newHarness(t, AutoPayAfter(3))
	_, token := h.user("bin@kid.vn")
	order := decode[kidapi.Order](t, h.do(http.MethodPost, kidapi.PathOrders, token, kidapi.OrderRequest{Amount: 10000, ItemType: "gem_pack", ItemID: "gem_100"}))

	var statuses []kidapi.OrderStatus
	for i := 0; i < 4; i++ {
		o := decode[kidapi.Order](t, h.do(http.MethodGet, kidapi.OrderPath(order.OrderID), token, nil))
		statuses = append(statuses, o.Status)
	}
	assert.Equal(t, []kidapi.OrderStatus{kidapi.OrderPending, kidapi.OrderPending, kidapi.OrderPaid, kidapi.OrderPaid}, statuses)
	assert.Equal(t, 4, h.b.OrderPolls(order.OrderID))
}

func TestLeaderboard(t *testing.T) {
	h := newHarness(t)
	meID, token := h.user("me@kid.vn")
	for i := 0; i < 11; i++ {
		id, _ := h.user("kid" + string(rune('a'+i)) + "@kid.vn")
		require.NoError(t, h.b.AddStars(id, 10+i))
	}
	require.NoError(t, h.b.AddStars(meID, 5))

	board := decode[kidapi.Leaderboard](t, h.do(http.MethodGet, kidapi.PathLeaderboard+"?period=all_time", token, nil))
	require.Len(t, board.TopUsers, 10)
	assert.Equal(t, 20, board.TopUsers[0].Stars)
	require.NotNil(t, board.UserRank)
	assert.Equal(t, 12, board.UserRank.Rank)
	assert.True(t, board.UserRank.IsCurrentUser)

	// 一周前的星星不计入周榜
	h.now = h.now.AddDate(0, 0, 8)
	require.NoError(t, h.b.AddStars(meID, 1))
	board = decode[kidapi.Leaderboard](t, h.do(http.MethodGet, kidapi.PathLeaderboard+"?period=weekly", token, nil))
	require.Len(t, board.TopUsers, 1)
	assert.Equal(t, 1, board.TopUsers[0].Rank)
	assert.Equal(t, 1, board.UserRank.Stars)

	w := h.do(http.MethodGet, kidapi.PathLeaderboard+"?period=monthly", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestWeeklyReport(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("bin@kid.vn")

	h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: 1, Score: 2, TotalQuestions: 2})
	h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: 4})

	rep := decode[kidapi.WeeklyReport](t, h.do(http.MethodGet, kidapi.PathWeeklyReport, token, nil))
	assert.Equal(t, 2, rep.LessonsCompleted)
	assert.Equal(t, 4+5, rep.TotalMinutes)
	assert.Equal(t, []string{"cat", "red"}, rep.LearnedWords)
	assert.Empty(t, rep.WeakWords)
	require.Len(t, rep.DailyChart, 7)
	assert.Equal(t, "2026-03-02", rep.DailyChart[6].Date)
	assert.Equal(t, 9, rep.DailyChart[6].Minutes)

	h.do(http.MethodPost, kidapi.PathMarkComplete, token, kidapi.ProgressUpdate{LessonID: 1, Score: 0, TotalQuestions: 2})
	rep = decode[kidapi.WeeklyReport](t, h.do(http.MethodGet, kidapi.PathWeeklyReport, token, nil))
	assert.Equal(t, []string{"cat"}, rep.WeakWords)
}

func TestChatStream(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodPost, kidapi.PathChat, "", kidapi.ChatRequest{Message: "apple là gì?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, chatReply("apple là gì?"), w.Body.String())
	assert.Equal(t, 2, h.b.ChatHistory(defaultChatUserID))

	w = h.do(http.MethodPost, kidapi.PathChat, "", kidapi.ChatRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpload(t *testing.T) {
	h := newHarness(t, WithPublicURL("http://cdn.test"))
	_, token := h.user("bin@kid.vn")

	upload := func(name string, data []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, APIPrefix+kidapi.PathUpload, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.handler.ServeHTTP(w, req)
		return w
	}

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	w := upload("me.png", png)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[kidapi.UploadResponse](t, w)
	assert.Equal(t, "me.png", resp.Filename)
	require.True(t, strings.HasPrefix(resp.URL, "http://cdn.test/api/v1/static/"))

	served := h.do(http.MethodGet, strings.TrimPrefix(resp.URL, "http://cdn.test/api/v1"), "", nil)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, png, served.Body.Bytes())

	w = upload("notes.txt", []byte("hello world"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
