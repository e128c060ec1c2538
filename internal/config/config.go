package config

// Config holds all application configuration.
// It is constructed once at startup and passed by reference to each
// component; no component reads the environment directly.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue"    validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	Webhook  WebhookConfig  `mapstructure:"webhook"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds" validate:"gte=0"`
}

// AuthConfig contains the credentials callers must present.
type AuthConfig struct {
	// BearerToken is the shared secret expected on submission requests.
	BearerToken string `mapstructure:"bearer_token" validate:"required,min=16"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`

	// Migrate controls whether pending schema migrations run on startup.
	Migrate bool `mapstructure:"migrate"`
}

// QueueConfig describes the task queue that delivers grading work to the
// worker endpoint. Provider "cloudtasks" targets Google Cloud Tasks;
// "redis" runs the bundled list-based dispatcher for local development.
type QueueConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=cloudtasks redis"`

	Project             string `mapstructure:"project"               validate:"required_if=Provider cloudtasks"`
	Location            string `mapstructure:"location"              validate:"required_if=Provider cloudtasks"`
	Queue               string `mapstructure:"queue"`
	WorkerURL           string `mapstructure:"worker_url"            validate:"required,url"`
	ServiceAccountEmail string `mapstructure:"service_account_email" validate:"required_if=Provider cloudtasks"`

	// OIDCAudience, when set, turns on verification of the queue's OIDC
	// identity on the internal task endpoint.
	OIDCAudience string `mapstructure:"oidc_audience"`

	RedisAddr  string `mapstructure:"redis_addr"  validate:"required_if=Provider redis"`
	RedisQueue string `mapstructure:"redis_queue"`
}

// LLMConfig contains all grading-model integration settings.
type LLMConfig struct {
	// GraderMode selects the grading backend: "gemini" calls the real API,
	// "dummy" returns a deterministic stub outcome without any network call.
	GraderMode        string `mapstructure:"grader_mode"         validate:"required,oneof=gemini dummy"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required_if=GraderMode gemini"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// StorageConfig describes the S3-compatible bucket that holds report PDFs.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"     validate:"required"`
	Bucket    string `mapstructure:"bucket"     validate:"required"`
	AccessKey string `mapstructure:"access_key" validate:"required"`
	SecretKey string `mapstructure:"secret_key" validate:"required"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// WebhookConfig controls signing and delivery of completion notifications.
type WebhookConfig struct {
	Secret            string `mapstructure:"secret"`
	KeyID             string `mapstructure:"key_id"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"     validate:"gt=0"`
}
