package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBufferLogger(t *testing.T, opts ...Option) (*BaseLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append(opts, WithWriter(&buf))
	l, err := New(&Config{Level: DebugLevel, Format: JSONFormat, EnableStacktrace: false}, opts...)
	require.NoError(t, err)
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

// TestNew 测试创建 Logger
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "nil config uses default", config: nil},
		{name: "json console", config: &Config{Format: JSONFormat}},
		{
			name:    "file enabled without path",
			config:  &Config{EnableFile: true},
			wantErr: ErrInvalidOutputPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestKeyValueFields(t *testing.T) {
	l, buf := newBufferLogger(t)

	l.Info("lesson completed", "lesson_id", 7, "earned_gems", 10)
	l.Named("payment").WithFields("order_id", "DH1").Warn("poll failed", zap.Int("attempt", 3))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "lesson completed", lines[0]["msg"])
	assert.EqualValues(t, 7, lines[0]["lesson_id"])
	assert.EqualValues(t, 10, lines[0]["earned_gems"])
	assert.Equal(t, "payment", lines[1]["logger"])
	assert.Equal(t, "DH1", lines[1]["order_id"])
	assert.EqualValues(t, 3, lines[1]["attempt"])
}

func TestRedaction(t *testing.T) {
	l, buf := newBufferLogger(t)

	l.Info("login", "username", "be@kid.vn", "password", "secret123")
	l.WithFields("access_token", "eyJhbGciOi").Info("token stored", "token", 42)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "be@kid.vn", lines[0]["username"])
	assert.Equal(t, redacted, lines[0]["password"])
	assert.Equal(t, redacted, lines[1]["access_token"])
	assert.Equal(t, redacted, lines[1]["token"])
	assert.NotContains(t, buf.String(), "secret123")
	assert.NotContains(t, buf.String(), "eyJhbGciOi")
}

func TestCustomRedactKeys(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Format: JSONFormat, RedactKeys: []string{"coupon_code"}}, WithWriter(&buf))
	require.NoError(t, err)

	l.Info("coupon", "coupon_code", "KID50", "password", "plain")

	line := decodeLines(t, &buf)[0]
	assert.Equal(t, redacted, line["coupon_code"])
	assert.Equal(t, "plain", line["password"])
}

func TestContextFields(t *testing.T) {
	l, buf := newBufferLogger(t)

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), 12)
	l.ErrorContext(ctx, "submit word failed", "word_id", 3)
	l.InfoContext(context.Background(), "no ids")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.EqualValues(t, 12, lines[0]["user_id"])
	assert.NotContains(t, lines[1], "request_id")
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: WarnLevel, Format: JSONFormat}, WithWriter(&buf))
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learner.log")
	l, err := New(&Config{Format: JSONFormat, EnableFile: true, OutputPath: path})
	require.NoError(t, err)
	l.Info("written to file")
	_ = l.Sync()
	assert.FileExists(t, path)
}

func TestDefaultFallsBackToNoop(t *testing.T) {
	SetDefault(nil)
	assert.IsType(t, &NoopLogger{}, Default())
	assert.IsType(t, &NoopLogger{}, OrNoop(nil))

	l := NewNoop()
	assert.Same(t, l, OrNoop(l))
}
