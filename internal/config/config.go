package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Output     OutputConfig     `mapstructure:"output" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Render     RenderConfig     `mapstructure:"render" validate:"required"`
	Task       TaskConfig       `mapstructure:"task" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation"`
	Jina       JinaConfig       `mapstructure:"jina"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// OutputConfig locates the artifact directory.
type OutputConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// LLMConfig contains all LLM integration related settings.
// API keys are optional: a backend without a key is simply not registered.
type LLMConfig struct {
	DefaultModel          string  `mapstructure:"default_model" validate:"required"`
	DefaultTemperature    float64 `mapstructure:"default_temperature" validate:"gte=0,lte=2"`
	SummaryTemperature    float64 `mapstructure:"summary_temperature" validate:"gte=0,lte=2"`
	ArkAPIKey             string  `mapstructure:"ark_api_key"`
	ArkBaseURL            string  `mapstructure:"ark_base_url" validate:"required,url"`
	GeminiAPIKey          string  `mapstructure:"gemini_api_key"`
	OllamaHost            string  `mapstructure:"ollama_host" validate:"omitempty,url"`
	DirectivePath         string  `mapstructure:"directive_path"`
	CountTokens           bool    `mapstructure:"count_tokens"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// RenderConfig selects and parameterizes the HTML-to-raster renderer.
type RenderConfig struct {
	Backend        string `mapstructure:"backend" validate:"required,oneof=gotenberg command"`
	URL            string `mapstructure:"url" validate:"required_if=Backend gotenberg,omitempty,url"`
	Command        string `mapstructure:"command" validate:"required_if=Backend command"`
	Width          int    `mapstructure:"width" validate:"gt=0,lte=8192"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
}

// TaskConfig sizes the worker pool that runs blocking pipeline stages.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}

// GenerationConfig holds pipeline policy switches.
type GenerationConfig struct {
	// EagerVariantRender renders and card-crops every secondary artifact set
	// in comparative mode. When false, secondaries are HTML only.
	EagerVariantRender bool `mapstructure:"eager_variant_render"`
}

// JinaConfig configures the web content fetch proxy.
type JinaConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}
