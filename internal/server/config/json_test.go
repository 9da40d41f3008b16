package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_addr":                ":4000",
		"database_dsn":             "postgres://db",
		"database_connect_timeout": "2s",
		"secret_key":               "my_secret_key",
		"llm_mode":                 "mock",
		"llm_base_url":             "http://llm",
		"llm_api_key":              "k",
		"llm_model":                "deepseek-chat",
		"llm_timeout":              "30s",
		"log_level":                "debug",
		"s3_root_user":             "user",
		"s3_root_password":         "password",
		"s3_bucket":                "bucket",
		"s3_region":                "region",
		"s3_base_endpoint":         "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, ":4000", cfg.HTTPAddr)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, 2*time.Second, cfg.DatabaseConnectTimeout)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "mock", cfg.LLMMode)
		assert.Equal(t, "http://llm", cfg.LLMBaseURL)
		assert.Equal(t, "k", cfg.LLMAPIKey)
		assert.Equal(t, "deepseek-chat", cfg.LLMModel)
		assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("missing keys keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "warn"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, ":3000", cfg.HTTPAddr)
		assert.Equal(t, 5*time.Second, cfg.DatabaseConnectTimeout)
	})

	t.Run("explicit empty dsn", func(t *testing.T) {
		empty := writeTempJSON(t, dir, "empty.json", map[string]any{"database_dsn": ""})
		os.Args = []string{"testbin", "-c", empty}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "", cfg.DatabaseDSN)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{HTTPAddr: "defaults:1234", SecretKey: "key"}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
