package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporterHandler(t *testing.T) {
	e, err := New(&Config{}, nil)
	require.NoError(t, err)

	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "kidlingo_test_total", Help: "test"})
	e.Registry().MustRegister(c)
	c.Add(3)

	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "kidlingo_test_total 3")
}

func TestExporterServe(t *testing.T) {
	e, err := New(&Config{Enabled: true, Addr: "127.0.0.1:0"}, nil)
	require.NoError(t, err)
	require.NoError(t, e.Start())
	t.Cleanup(func() { _ = e.Stop() })

	resp, err := http.Get("http://" + e.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body)
}

func TestExporterDisabledDoesNotListen(t *testing.T) {
	e, err := New(nil, nil)
	require.NoError(t, err)
	require.NoError(t, e.Start())
	assert.Empty(t, e.Addr())
	require.NoError(t, e.Stop())
	assert.ErrorIs(t, e.Start(), ErrExporterClosed)
}
