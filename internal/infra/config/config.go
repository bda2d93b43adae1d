package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Summary    SummaryConfig    `yaml:"summary"`
	LLM        LLMConfig        `yaml:"llm"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	AllowedOrigins  []string        `yaml:"allowedOrigins"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	Retry           RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// SummaryConfig drives chunking and orchestration.
type SummaryConfig struct {
	MaxTokensPerChunk  int           `yaml:"maxTokensPerChunk"`
	EncodingModel      string        `yaml:"encodingModel"`
	PromptTemplatePath string        `yaml:"promptTemplatePath"`
	WatchTemplate      bool          `yaml:"watchTemplate"`
	ChunkFailurePolicy string        `yaml:"chunkFailurePolicy"`
	DefaultEngine      string        `yaml:"defaultEngine"`
	DefaultChoices     ChoicesConfig `yaml:"defaultChoices"`
}

// ChoicesConfig holds the formatting defaults applied to every request.
type ChoicesConfig struct {
	Language    string `yaml:"language"`
	DetailLevel string `yaml:"detailLevel"`
	SummaryType string `yaml:"summaryType"`
	Style       string `yaml:"style"`
	AddEmojis   string `yaml:"addEmojis"`
	AddTables   string `yaml:"addTables"`
}

// LLMConfig groups the generation backends. A backend with no model is disabled.
type LLMConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	Ollama OpenAIConfig `yaml:"ollama"`
	Gemini GeminiConfig `yaml:"gemini"`
}

// OpenAIConfig configures an OpenAI compatible chat endpoint.
type OpenAIConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Stream      bool          `yaml:"stream"`
	Timeout     time.Duration `yaml:"timeout"`
}

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKeys []string      `yaml:"apiKeys"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// TranscriptConfig controls caption fetching and caching.
type TranscriptConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	Languages []string      `yaml:"languages"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cacheTtl"`
	Redis     RedisConfig   `yaml:"redis"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file, a .env file and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("SUMMARY_MAX_TOKENS_PER_CHUNK"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Summary.MaxTokensPerChunk = parsed
		}
	}
	if v := os.Getenv("SUMMARY_ENCODING_MODEL"); v != "" {
		cfg.Summary.EncodingModel = v
	}
	if v := os.Getenv("SUMMARY_PROMPT_TEMPLATE_PATH"); v != "" {
		cfg.Summary.PromptTemplatePath = v
	}
	if v := os.Getenv("SUMMARY_WATCH_TEMPLATE"); v != "" {
		cfg.Summary.WatchTemplate = parseBool(v)
	}
	if v := os.Getenv("SUMMARY_CHUNK_FAILURE_POLICY"); v != "" {
		cfg.Summary.ChunkFailurePolicy = v
	}
	if v := os.Getenv("SUMMARY_DEFAULT_ENGINE"); v != "" {
		cfg.Summary.DefaultEngine = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.LLM.OpenAI.Model = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.LLM.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.LLM.Ollama.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEYS"); v != "" {
		cfg.LLM.Gemini.APIKeys = splitList(v)
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.Gemini.APIKeys = []string{v}
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.LLM.Gemini.Model = v
	}
	if v := os.Getenv("TRANSCRIPT_LANGUAGES"); v != "" {
		cfg.Transcript.Languages = splitList(v)
	}
	if v := os.Getenv("TRANSCRIPT_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Transcript.CacheTTL = parsed
		}
	}
	if v := os.Getenv("TRANSCRIPT_REDIS_ENABLED"); v != "" {
		cfg.Transcript.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("TRANSCRIPT_REDIS_ADDR"); v != "" {
		cfg.Transcript.Redis.Addr = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins: []string{
				"http://localhost:5173",
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/summaries",
					"/api/v1/templates/reload",
				},
			},
		},
		Summary: SummaryConfig{
			MaxTokensPerChunk:  10000,
			EncodingModel:      "gpt-3.5-turbo",
			PromptTemplatePath: "prompts/summary_template.md",
			ChunkFailurePolicy: "abort",
			DefaultEngine:      "openai",
			DefaultChoices: ChoicesConfig{
				Language:    "en",
				DetailLevel: "medium",
				SummaryType: "full",
				Style:       "mixed",
				AddEmojis:   "no",
				AddTables:   "no",
			},
		},
		LLM: LLMConfig{
			OpenAI: OpenAIConfig{
				Model:       "gpt-4o-mini",
				Temperature: 0.2,
				Timeout:     2 * time.Minute,
			},
			Ollama: OpenAIConfig{
				BaseURL:     "http://localhost:11434/v1",
				Temperature: 0.2,
				Timeout:     5 * time.Minute,
			},
			Gemini: GeminiConfig{
				Timeout: 2 * time.Minute,
			},
		},
		Transcript: TranscriptConfig{
			BaseURL:   "https://www.youtube.com",
			Languages: []string{"en", "fr"},
			Timeout:   10 * time.Second,
			CacheTTL:  24 * time.Hour,
			Redis: RedisConfig{
				Prefix: "transcript",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Summary.MaxTokensPerChunk <= 0 {
		return errors.New("summary.maxTokensPerChunk must be positive")
	}
	if strings.TrimSpace(c.Summary.EncodingModel) == "" {
		return errors.New("summary.encodingModel cannot be empty")
	}
	switch c.Summary.ChunkFailurePolicy {
	case "abort", "best-effort":
	default:
		return fmt.Errorf("summary.chunkFailurePolicy %q must be abort or best-effort", c.Summary.ChunkFailurePolicy)
	}
	if c.Summary.WatchTemplate && strings.TrimSpace(c.Summary.PromptTemplatePath) == "" {
		return errors.New("summary.promptTemplatePath cannot be empty when watchTemplate is enabled")
	}
	if c.Transcript.CacheTTL < 0 {
		return errors.New("transcript.cacheTtl cannot be negative")
	}
	if c.Transcript.Redis.Enabled && strings.TrimSpace(c.Transcript.Redis.Addr) == "" {
		return errors.New("transcript.redis.addr cannot be empty when redis cache is enabled")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}
