package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/chatrelay/internal/flagx"
	"github.com/dmitrijs2005/chatrelay/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration so both "5s" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr               string         `json:"http_addr"`
	DatabaseDSN            *string        `json:"database_dsn"`
	DatabaseConnectTimeout timex.Duration `json:"database_connect_timeout"`
	SecretKey              string         `json:"secret_key"`
	LLMMode                string         `json:"llm_mode"`
	LLMBaseURL             string         `json:"llm_base_url"`
	LLMAPIKey              string         `json:"llm_api_key"`
	LLMModel               string         `json:"llm_model"`
	LLMTimeout             timex.Duration `json:"llm_timeout"`
	LogLevel               string         `json:"log_level"`
	S3RootUser             string         `json:"s3_root_user"`
	S3RootPassword         string         `json:"s3_root_password"`
	S3Bucket               string         `json:"s3_bucket"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Keys missing
// from the file leave the current value untouched; database_dsn may be set
// to "" explicitly to force ephemeral storage. An unreadable or malformed
// file panics, matching the flag layer.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.DatabaseConnectTimeout.Duration > 0 {
		config.DatabaseConnectTimeout = c.DatabaseConnectTimeout.Duration
	}
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LLMMode, c.LLMMode)
	setString(&config.LLMBaseURL, c.LLMBaseURL)
	setString(&config.LLMAPIKey, c.LLMAPIKey)
	setString(&config.LLMModel, c.LLMModel)
	if c.LLMTimeout.Duration > 0 {
		config.LLMTimeout = c.LLMTimeout.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
