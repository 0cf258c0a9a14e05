package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/event"
	"github.com/lk2023060901/kidlingo/app/learner/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(context.Context) string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, token string) (*Client, *event.Bus) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	bus := event.NewBus(nil)
	c, err := NewClient(&Config{BaseURL: srv.URL + "/api/v1"}, staticToken(token), bus, nil, nil)
	require.NoError(t, err)
	return c, bus
}

func TestGetAttachesTokenAndRequestID(t *testing.T) {
	var auth, rid, path string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		rid = r.Header.Get("X-Request-ID")
		path = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}, "tok-1")

	var out struct{ Message string }
	err := c.Get(context.Background(), "/leaderboard", &out, WithQuery(url.Values{"period": {"weekly"}}))
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Message)
	assert.Equal(t, "Bearer tok-1", auth)
	assert.NotEmpty(t, rid)
	assert.Equal(t, "/api/v1/leaderboard?period=weekly", path)
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{name: "bad request", status: 400, body: `{"detail":"Not enough gems"}`, sentinel: ErrBadRequest, message: "Not enough gems"},
		{name: "not found", status: 404, body: `{"detail":"Lesson not found"}`, sentinel: ErrNotFound, message: "Lesson not found"},
		{name: "forbidden", status: 403, body: `{"detail":"nope"}`, sentinel: ErrForbidden, message: "nope"},
		{name: "server", status: 500, body: `boom`, sentinel: ErrServer, message: GenericMessage},
		{name: "validation", status: 422, body: `{"detail":[{"loc":["body","email"],"msg":"field required","type":"required"}]}`, sentinel: ErrBadRequest, message: "field required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "")
			err := c.Post(context.Background(), "/shop/buy", map[string]int{"item_id": 1}, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Equal(t, tt.status, StatusOf(err))
			assert.Equal(t, tt.message, UserMessage(err))
		})
	}
}

func TestUnauthorizedPublishesSessionExpired(t *testing.T) {
	c, bus := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}, "stale")

	expired := 0
	bus.Subscribe(event.SessionExpired, func(event.Event) { expired++ })

	err := c.Get(context.Background(), "/users/profile", nil)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 1, expired)

	err = c.PostForm(context.Background(), "/auth/login", url.Values{"username": {"a"}}, nil, Anonymous())
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 1, expired, "anonymous calls never signal expiry")
}

func TestUnauthorizedWithoutTokenDoesNotSignal(t *testing.T) {
	c, bus := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}, "")
	expired := 0
	bus.Subscribe(event.SessionExpired, func(event.Event) { expired++ })

	_ = c.Get(context.Background(), "/users/profile", nil)
	assert.Zero(t, expired)
}

func TestPostFormAndMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "be@kid.vn", r.PostForm.Get("username"))
			_, _ = w.Write([]byte(`{"access_token":"t","token_type":"bearer"}`))
		case "/api/v1/storage/upload":
			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			data, _ := io.ReadAll(f)
			assert.Equal(t, "cat.png", hdr.Filename)
			assert.Equal(t, "PNGDATA", string(data))
			_, _ = w.Write([]byte(`{"url":"/static/cat.png","filename":"cat.png"}`))
		}
	}, "tok")

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, c.PostForm(context.Background(), "/auth/login", url.Values{"username": {"be@kid.vn"}}, &tok, Anonymous()))
	assert.Equal(t, "t", tok.AccessToken)

	var up struct{ URL string }
	require.NoError(t, c.PostMultipart(context.Background(), "/storage/upload", "file", "cat.png", strings.NewReader("PNGDATA"), &up))
	assert.Equal(t, "/static/cat.png", up.URL)
}

func TestStream(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		for _, part := range []string{"Hello ", "little ", "friend"} {
			_, _ = w.Write([]byte(part))
			w.(http.Flusher).Flush()
		}
	}, "tok")

	var chunks []string
	full, err := c.Stream(context.Background(), "/chat", map[string]any{"message": "hi"}, func(s string) { chunks = append(chunks, s) })
	require.NoError(t, err)
	assert.Equal(t, "Hello little friend", full)
	assert.Equal(t, full, strings.Join(chunks, ""))
}

func TestTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewClient(&Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil, nil, nil, nil)
	require.NoError(t, err)
	err = c.Get(context.Background(), "/dashboard/path", nil)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, GenericMessage, UserMessage(err))
}

func TestHintWins(t *testing.T) {
	err := errors.WithHint(newStatusError(&Error{Status: 400, Detail: "Incorrect email or password"}), "custom")
	assert.Equal(t, "custom", UserMessage(err))
	assert.Equal(t, "", UserMessage(nil))
}

func TestMetricsRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m, err := metrics.New(nil)
	require.NoError(t, err)
	c, err := NewClient(&Config{BaseURL: srv.URL}, nil, nil, m, nil)
	require.NoError(t, err)

	require.NoError(t, c.Get(context.Background(), "/lessons/7", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET /lessons/:id", "success")))
}

func TestEndpointLabel(t *testing.T) {
	tests := map[string]string{
		"/lessons/12":           "/lessons/:id",
		"/payment/orders/DH123": "/payment/orders/:id",
		"/shop/equip/3":         "/shop/equip/:id",
		"/shop/items":           "/shop/items",
		"/a/1/2":                "/a/:id/:id",
	}
	for in, want := range tests {
		assert.Equal(t, want, endpointLabel(in), in)
	}
}

func TestConfigValidate(t *testing.T) {
	_, err := NewClient(&Config{BaseURL: "localhost:8000"}, nil, nil, nil, nil)
	assert.Error(t, err)
}
