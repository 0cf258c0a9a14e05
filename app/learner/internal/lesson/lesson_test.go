package lesson

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/app/learner/internal/testkit"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestRewardMessage(t *testing.T) {
	tests := []struct {
		name   string
		reward Reward
		want   string
	}{
		{name: "gems and stars", reward: Reward{Gems: 10, Stars: 3}, want: "Chúc mừng! Con nhận được 10 💎 và 3 ⭐"},
		{name: "gems only", reward: Reward{Gems: 10}, want: "Tuyệt vời! Con đã hoàn thành bài học và nhận 10 💎"},
		{name: "stars only", reward: Reward{Stars: 2}, want: "Xuất sắc! Con trả lời đúng và nhận được 2 ⭐"},
		{name: "nothing", reward: Reward{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reward.Message())
		})
	}
}

func TestStars(t *testing.T) {
	tests := []struct {
		name   string
		lesson kidapi.LessonDashboard
		want   int
	}{
		{name: "incomplete", lesson: kidapi.LessonDashboard{LessonType: kidapi.LessonVocabulary}, want: 0},
		{name: "video lesson", lesson: kidapi.LessonDashboard{LessonType: kidapi.LessonVocabulary, IsCompleted: true}, want: 3},
		{name: "quiz no score", lesson: kidapi.LessonDashboard{LessonType: kidapi.LessonQuiz, IsCompleted: true}, want: 1},
		{name: "quiz 5", lesson: kidapi.LessonDashboard{LessonType: kidapi.LessonQuiz, IsCompleted: true, Score: ptr(5)}, want: 1},
		{name: "quiz 6", lesson: kidapi.LessonDashboard{LessonType: kidapi.LessonQuiz, IsCompleted: true, Score: ptr(6)}, want: 2},
		{name: "quiz 9", lesson: kidapi.LessonDashboard{LessonType: kidapi.LessonQuiz, IsCompleted: true, Score: ptr(9)}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stars(tt.lesson))
		})
	}
}

func TestPronunciationTarget(t *testing.T) {
	tests := []struct {
		name   string
		lesson *kidapi.Lesson
		want   string
	}{
		{name: "explicit word", lesson: &kidapi.Lesson{Title: "Cat: hi", PronunciationWord: ptr(" cat "), Questions: []kidapi.Question{{CorrectAnswer: "kitten"}}}, want: "cat"},
		{name: "first answer", lesson: &kidapi.Lesson{Title: "Cat: hi", Questions: []kidapi.Question{{CorrectAnswer: "kitten"}}}, want: "kitten"},
		{name: "title head", lesson: &kidapi.Lesson{Title: "Apple : red fruit"}, want: "Apple"},
		{name: "title without colon", lesson: &kidapi.Lesson{Title: "Colors"}, want: "Colors"},
		{name: "nil", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PronunciationTarget(tt.lesson))
		})
	}
}

func TestQuiz(t *testing.T) {
	questions := []kidapi.Question{
		{ID: 1, Options: []string{"cat", "dog"}, CorrectAnswer: "cat"},
		{ID: 2, Options: []string{"cat", "dog"}, CorrectAnswer: "dog"},
		{ID: 3, Options: []string{"cow", "duck"}, CorrectAnswer: "duck"},
	}
	var calls []Result
	q := NewQuiz(questions, func(score, total int) { calls = append(calls, Result{Score: score, Total: total}) })
	require.True(t, q.Active())

	_, err := q.Next()
	assert.ErrorIs(t, err, ErrNotAnswered)

	ans, err := q.Select("cat")
	require.NoError(t, err)
	assert.True(t, ans.Correct)
	_, err = q.Select("dog")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	res, err := q.Next()
	require.NoError(t, err)
	assert.Nil(t, res)

	ans, err = q.Select("cat")
	require.NoError(t, err)
	assert.False(t, ans.Correct)
	assert.Equal(t, "dog", ans.CorrectAnswer)
	_, err = q.Next()
	require.NoError(t, err)

	_, err = q.Select("duck")
	require.NoError(t, err)
	res, err = q.Next()
	require.NoError(t, err)
	assert.Equal(t, &Result{Score: 2, Total: 3}, res)

	_, err = q.Next()
	assert.ErrorIs(t, err, ErrQuizFinished)
	_, err = q.Select("cow")
	assert.ErrorIs(t, err, ErrQuizFinished)
	assert.Equal(t, []Result{{Score: 2, Total: 3}}, calls)

	q.Retry()
	assert.Zero(t, q.Score())
	cur, idx, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.EqualValues(t, 1, cur.ID)
}

func TestInactiveQuiz(t *testing.T) {
	q := NewQuiz(nil, nil)
	assert.False(t, q.Active())
	_, err := q.Select("x")
	assert.ErrorIs(t, err, ErrQuizInactive)
	_, err = q.Next()
	assert.ErrorIs(t, err, ErrQuizInactive)
}

func TestSettlement(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	svc := NewService(env.Client, env.Store, env.Logger)
	ctx := context.Background()

	l, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, l.Questions, 5)

	// 只看视频：有宝石没有星星
	r := svc.VideoEnded(ctx, 1)
	assert.Equal(t, Reward{Gems: 10}, r)
	st := env.Store.Snapshot()
	assert.Equal(t, 10, st.Gems)
	assert.Zero(t, st.Stars)
	assert.Equal(t, "rewards_added", env.Store.Log()[len(env.Store.Log())-1].Action.Name())

	// 重复完成不再发奖，仓库不变
	version := env.Store.Snapshot().Version
	assert.True(t, svc.VideoEnded(ctx, 1).Zero())
	assert.Equal(t, version, env.Store.Snapshot().Version)

	// 测验及格才有星星
	r = svc.QuizCompleted(ctx, 2, 1, 1)
	assert.Equal(t, Reward{Gems: 10, Stars: 3}, r)
	st = env.Store.Snapshot()
	assert.Equal(t, 20, st.Gems)
	assert.Equal(t, 3, st.Stars)

	// 不及格：没有奖励
	assert.True(t, svc.QuizCompleted(ctx, 3, 1, 5).Zero())
	assert.Equal(t, 3, env.Store.Snapshot().Stars)

	// 不存在的课程：吞掉错误，返回零奖励
	assert.True(t, svc.VideoEnded(ctx, 404).Zero())

	_, err = svc.Get(ctx, 404)
	require.Error(t, err)
	assert.Equal(t, "Không thể tải bài học. Vui lòng thử lại sau.", api.UserMessage(err))
}

func TestSettlementWithoutQuestionsKeepsStars(t *testing.T) {
	env := testkit.New(t)
	// 服务端即使对 0/0 报了星星，客户端也不加
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","is_completed":true,"earned_gems":10,"earned_stars":3}`))
	}))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(&api.Config{BaseURL: srv.URL}, env.Sessions, env.Bus, env.Metrics, env.Logger)
	require.NoError(t, err)
	store := profile.NewStore(0)
	svc := NewService(client, store, env.Logger)

	r := svc.VideoEnded(context.Background(), 1)
	assert.Equal(t, Reward{Gems: 10}, r)
	assert.Equal(t, 10, store.Snapshot().Gems)
	assert.Zero(t, store.Snapshot().Stars)

	r = svc.QuizCompleted(context.Background(), 1, 2, 2)
	assert.Equal(t, Reward{Gems: 10, Stars: 3}, r)
	assert.Equal(t, 3, store.Snapshot().Stars)
}
