package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variable names. PORT, JWT_SECRET and DEEPSEEK_API_KEY keep
// the names existing deployments already export.
const (
	EnvPort             = "PORT"
	EnvDatabaseURL      = "DATABASE_URL"
	EnvDBConnectTimeout = "DB_CONNECT_TIMEOUT"
	EnvJWTSecret        = "JWT_SECRET"
	EnvLLMMode          = "LLM_MODE"
	EnvDeepSeekBaseURL  = "DEEPSEEK_BASE_URL"
	EnvDeepSeekAPIKey   = "DEEPSEEK_API_KEY"
	EnvDeepSeekModel    = "DEEPSEEK_MODEL"
	EnvLLMTimeout       = "LLM_TIMEOUT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvS3RootUser       = "S3_ROOT_USER"
	EnvS3RootPassword   = "S3_ROOT_PASSWORD"
	EnvS3Bucket         = "S3_BUCKET"
	EnvS3Region         = "S3_REGION"
	EnvS3BaseEndpoint   = "S3_BASE_ENDPOINT"
)

// loadDotEnv is a test seam for godotenv.Load.
var loadDotEnv = godotenv.Load

// parseEnv loads the dotenv file (-env, or ./.env when present) into the
// process environment without overriding variables that are already set,
// then overlays every recognised variable onto config.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := loadDotEnv(path); err != nil {
			panic(err)
		}
	} else if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v, ok := lookup(EnvPort); ok {
		if strings.Contains(v, ":") {
			config.HTTPAddr = v
		} else {
			config.HTTPAddr = ":" + v
		}
	}
	if v, ok := os.LookupEnv(EnvDatabaseURL); ok {
		config.DatabaseDSN = strings.TrimSpace(v)
	}
	if d, ok := lookupDuration(EnvDBConnectTimeout); ok {
		config.DatabaseConnectTimeout = d
	}
	lookupInto(&config.SecretKey, EnvJWTSecret)
	lookupInto(&config.LLMMode, EnvLLMMode)
	lookupInto(&config.LLMBaseURL, EnvDeepSeekBaseURL)
	lookupInto(&config.LLMAPIKey, EnvDeepSeekAPIKey)
	lookupInto(&config.LLMModel, EnvDeepSeekModel)
	if d, ok := lookupDuration(EnvLLMTimeout); ok {
		config.LLMTimeout = d
	}
	lookupInto(&config.LogLevel, EnvLogLevel)
	lookupInto(&config.S3RootUser, EnvS3RootUser)
	lookupInto(&config.S3RootPassword, EnvS3RootPassword)
	lookupInto(&config.S3Bucket, EnvS3Bucket)
	lookupInto(&config.S3Region, EnvS3Region)
	lookupInto(&config.S3BaseEndpoint, EnvS3BaseEndpoint)
}

// lookup returns a trimmed, non-empty variable.
func lookup(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	return v, v != ""
}

func lookupInto(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

// lookupDuration accepts Go durations ("5s") or plain seconds ("5").
func lookupDuration(name string) (time.Duration, bool) {
	v, ok := lookup(name)
	if !ok {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if d, err := time.ParseDuration(v + "s"); err == nil {
		return d, true
	}
	return 0, false
}
