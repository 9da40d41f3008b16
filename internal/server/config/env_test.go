package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverlaysVariables(t *testing.T) {
	origArgs, origLoad := os.Args, loadDotEnv
	t.Cleanup(func() { os.Args, loadDotEnv = origArgs, origLoad })

	os.Args = []string{"testbin"}
	loadDotEnv = func(...string) error { return nil }

	t.Setenv(EnvPort, "8080")
	t.Setenv(EnvDatabaseURL, "postgres://env")
	t.Setenv(EnvDBConnectTimeout, "3")
	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvLLMMode, "mock")
	t.Setenv(EnvDeepSeekAPIKey, "sk-test")
	t.Setenv(EnvLLMTimeout, "45s")
	t.Setenv(EnvS3Bucket, "transcripts")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, 3*time.Second, cfg.DatabaseConnectTimeout)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, "mock", cfg.LLMMode)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
	assert.True(t, cfg.ArchiveEnabled())
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CHATRELAY_TEST_ONLY=1\nLOG_LEVEL=debug\n"), 0o600))

	// register cleanup for the variables godotenv is about to set
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(EnvLogLevel))
	t.Setenv("CHATRELAY_TEST_ONLY", "")
	require.NoError(t, os.Unsetenv("CHATRELAY_TEST_ONLY"))

	os.Args = []string{"testbin", "-env", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "1", os.Getenv("CHATRELAY_TEST_ONLY"))
}

func TestParseEnv_MissingDefaultFileIsIgnored(t *testing.T) {
	origArgs, origLoad := os.Args, loadDotEnv
	t.Cleanup(func() { os.Args, loadDotEnv = origArgs, origLoad })

	os.Args = []string{"testbin"}
	loadDotEnv = func(...string) error { return &os.PathError{Op: "open", Path: ".env", Err: os.ErrNotExist} }

	require.NotPanics(t, func() { parseEnv(&Config{}) })

	loadDotEnv = func(...string) error { return errors.New("bad line") }
	require.Panics(t, func() { parseEnv(&Config{}) })
}

func TestLookupDuration(t *testing.T) {
	t.Setenv("CHATRELAY_D", "1500ms")
	d, ok := lookupDuration("CHATRELAY_D")
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, d)

	t.Setenv("CHATRELAY_D", "never")
	_, ok = lookupDuration("CHATRELAY_D")
	assert.False(t, ok)
}
