package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables use the CLOUDHIRE_ prefix with
// underscores for nesting (CLOUDHIRE_SERVER_PORT, CLOUDHIRE_AUTH_BEARER_TOKEN)
// and take precedence over file values.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CLOUDHIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional; env-only deployments are the norm.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Viper only knows about keys it has seen; bind every key explicitly so
	// AutomaticEnv resolves them even without a config file.
	for _, key := range configKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_seconds", 10)

	v.SetDefault("database.migrate", true)

	v.SetDefault("queue.provider", "cloudtasks")
	v.SetDefault("queue.queue", "grading-jobs")
	v.SetDefault("queue.redis_queue", "grading-jobs")

	v.SetDefault("llm.grader_mode", "gemini")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "reports")
	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("webhook.key_id", "go-v1")
	v.SetDefault("webhook.max_retries", 5)
	v.SetDefault("webhook.retry_delay_seconds", 1)
	v.SetDefault("webhook.timeout_seconds", 15)
}

func configKeys() []string {
	return []string{
		"server.port",
		"server.log_level",
		"server.shutdown_seconds",
		"auth.bearer_token",
		"database.url",
		"database.migrate",
		"queue.provider",
		"queue.project",
		"queue.location",
		"queue.queue",
		"queue.worker_url",
		"queue.service_account_email",
		"queue.oidc_audience",
		"queue.redis_addr",
		"queue.redis_queue",
		"llm.grader_mode",
		"llm.gemini_api_key",
		"llm.model_name",
		"llm.max_retries",
		"llm.retry_delay_seconds",
		"storage.endpoint",
		"storage.region",
		"storage.bucket",
		"storage.access_key",
		"storage.secret_key",
		"storage.use_ssl",
		"webhook.secret",
		"webhook.key_id",
		"webhook.max_retries",
		"webhook.retry_delay_seconds",
		"webhook.timeout_seconds",
	}
}
