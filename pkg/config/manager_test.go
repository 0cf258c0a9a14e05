package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "learner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type reminderTestConfig struct {
	Schedule string `mapstructure:"schedule"`
	Enabled  bool   `mapstructure:"enabled"`
}

func TestManagerLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
api:
  base_url: http://localhost:8000/api/v1
  timeout: 15s
reminder:
  schedule: "0 19 * * *"
  enabled: true
`)

	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))

	assert.Equal(t, "http://localhost:8000/api/v1", mgr.GetString("api.base_url"))
	assert.True(t, mgr.GetBool("reminder.enabled"))
	assert.Equal(t, path, mgr.ConfigFile())

	var rc reminderTestConfig
	require.NoError(t, mgr.UnmarshalKey("reminder", &rc))
	assert.Equal(t, "0 19 * * *", rc.Schedule)
}

func TestManagerMissingFile(t *testing.T) {
	err := NewManager().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestManagerEnvOverride(t *testing.T) {
	path := writeConfigFile(t, "api:\n  base_url: http://file\n")
	t.Setenv("KIDLINGO_API_BASE_URL", "http://env")

	mgr := NewManager()
	mgr.BindEnv("KIDLINGO")
	require.NoError(t, mgr.LoadFile(path))
	assert.Equal(t, "http://env", mgr.GetString("api.base_url"))
}

func TestManagerDefaults(t *testing.T) {
	mgr := NewManager(WithDefaults(map[string]any{"payment.bank": "CTG"}))
	assert.Equal(t, "CTG", mgr.GetString("payment.bank"))
	assert.False(t, mgr.IsSet("payment.account"))
}

func TestWatcherReload(t *testing.T) {
	path := writeConfigFile(t, "reminder:\n  schedule: \"0 19 * * *\"\n  enabled: true\n")

	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))

	w, err := NewWatcher[reminderTestConfig](mgr, "reminder", nil)
	require.NoError(t, err)
	assert.Equal(t, "0 19 * * *", w.Get().Schedule)

	changed := make(chan *reminderTestConfig, 4)
	w.OnChange(func(c *reminderTestConfig) { changed <- c })

	require.NoError(t, os.WriteFile(path, []byte("reminder:\n  schedule: \"30 18 * * *\"\n  enabled: true\n"), 0o644))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-changed:
			// 编辑器式写入可能先触发一次空文件事件
			if c.Schedule != "30 18 * * *" {
				continue
			}
			assert.Equal(t, "30 18 * * *", w.Get().Schedule)
			return
		case <-deadline:
			t.Skip("file watcher did not fire in time on this platform")
		}
	}
}

func TestWatchRequiresFile(t *testing.T) {
	err := NewManager().Watch(func() {})
	require.ErrorIs(t, err, ErrConfigFileNotFound)
}
