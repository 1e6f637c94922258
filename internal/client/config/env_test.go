package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_ProcessEnvironment(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Setenv("EVENTLY_API_URL", "http://env-api/v1")
	t.Setenv("EVENTLY_STATUS_TIMEOUT", "5s")
	t.Setenv("EVENTLY_CONNECTIVITY_TIMEOUT", "not-a-duration")
	t.Setenv("EVENTLY_STATE_DIR", "")

	cfg := &Config{ConnectivityProbeTimeout: 3 * time.Second, StateDir: "/keep"}
	parseEnv(cfg)

	assert.Equal(t, "http://env-api/v1", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.StatusProbeTimeout)
	assert.Equal(t, 3*time.Second, cfg.ConnectivityProbeTimeout, "malformed duration keeps previous value")
	assert.Equal(t, "/keep", cfg.StateDir, "empty variable keeps previous value")
}

func TestParseEnv_DotenvFileFromFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	// make sure the process env does not shadow the file values
	t.Setenv("EVENTLY_SERVER_STATUS_URL", "")
	require.NoError(t, os.Unsetenv("EVENTLY_SERVER_STATUS_URL"))
	t.Setenv("EVENTLY_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("EVENTLY_LOG_LEVEL"))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("EVENTLY_SERVER_STATUS_URL=http://dotenv/health\nEVENTLY_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("EVENTLY_SERVER_STATUS_URL")
		_ = os.Unsetenv("EVENTLY_LOG_LEVEL")
	})

	os.Args = []string{"testbin", "-e", path}

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "http://dotenv/health", cfg.ServerStatusURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseEnv_MissingDotenvFromFlagPanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env", filepath.Join(t.TempDir(), "absent.env")}

	require.Panics(t, func() { parseEnv(&Config{}) })
}
