package review

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/testkit"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptySession(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	svc := NewService(env.Client, env.Metrics, env.Logger)

	sess, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, sess.State())
	_, ok := sess.Current()
	assert.False(t, ok)
	assert.ErrorIs(t, sess.Answer(context.Background(), true), ErrSessionFinished)
}

func TestSessionCompletesAfterNAnswers(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	ctx := context.Background()
	require.NoError(t, env.Client.Post(ctx, kidapi.PathMarkComplete, kidapi.ProgressUpdate{LessonID: 1}, nil))
	require.NoError(t, env.Client.Post(ctx, kidapi.PathMarkComplete, kidapi.ProgressUpdate{LessonID: 2}, nil))

	svc := NewService(env.Client, env.Metrics, env.Logger)
	sess, err := svc.Start(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, sess.Len())

	answers := []bool{true, false, true, true}
	for i, a := range answers {
		require.Equal(t, StateActive, sess.State())
		assert.Equal(t, i, sess.Index())
		_, ok := sess.Current()
		require.True(t, ok)
		require.NoError(t, sess.Answer(ctx, a))
	}
	assert.Equal(t, StateCompleted, sess.State())
	assert.Equal(t, Summary{Reviewed: 4, Correct: 3}, sess.Summary())
	assert.ErrorIs(t, sess.Answer(ctx, true), ErrSessionFinished)

	assert.Equal(t, 3.0, testutil.ToFloat64(env.Metrics.ReviewAnswers.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.Metrics.ReviewAnswers.WithLabelValues("false")))

	// 服务端已推迟所有单词，重新开始为空
	again, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, again.State())
}

func TestSubmitFailureStillAdvances(t *testing.T) {
	var submits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1" + kidapi.PathReviewToday:
			_, _ = w.Write([]byte(`[{"word":{"id":1,"word":"cat"},"progress":{"box_level":1}},{"word":{"id":2,"word":"dog"},"progress":{"box_level":1}}]`))
		default:
			submits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	client, err := api.NewClient(&api.Config{BaseURL: srv.URL + "/api/v1"}, nil, nil, nil, nil)
	require.NoError(t, err)

	sess, err := NewService(client, nil, nil).Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, sess.Answer(context.Background(), true))
	require.NoError(t, sess.Answer(context.Background(), false))

	assert.Equal(t, StateCompleted, sess.State())
	assert.Equal(t, Summary{Reviewed: 2, Correct: 1}, sess.Summary())
	assert.EqualValues(t, 2, submits.Load())
}
