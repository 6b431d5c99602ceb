package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "SMARTCARD"

// defaults lists every configuration key. Registering each key with viper is
// what lets AutomaticEnv overrides reach Unmarshal.
var defaults = map[string]interface{}{
	"server.port":                     8000,
	"server.log_level":                "info",
	"server.shutdown_timeout_seconds": 10,

	"output.dir": "output",

	"llm.default_model":           "deepseek-v3-250324",
	"llm.default_temperature":     0.7,
	"llm.summary_temperature":     0.5,
	"llm.ark_api_key":             "",
	"llm.ark_base_url":            "https://ark.cn-beijing.volces.com/api/v3",
	"llm.gemini_api_key":          "",
	"llm.ollama_host":             "",
	"llm.directive_path":          "",
	"llm.count_tokens":            false,
	"llm.request_timeout_seconds": 180,

	"render.backend":         "gotenberg",
	"render.url":             "http://localhost:3000",
	"render.command":         "wkhtmltoimage",
	"render.width":           1080,
	"render.timeout_seconds": 60,

	"task.worker_count": 4,
	"task.queue_size":   64,

	"generation.eager_variant_render": true,

	"jina.api_key":  "",
	"jina.base_url": "https://r.jina.ai/",
}

// LoadDotEnv loads KEY=VALUE pairs from the file named by SMARTCARD_ENV_FILE
// (default ".env") into the process environment. Variables that are already
// set win. A missing file is not an error.
func LoadDotEnv() error {
	path := os.Getenv(EnvPrefix + "_ENV_FILE")
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
