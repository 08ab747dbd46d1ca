package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Text and image provider names accepted by TEXT_PROVIDER and IMAGE_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
	ProviderQwen   = "qwen"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	TextProvider  string
	ImageProvider string

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiTextModel  string
	GeminiImageModel string
	GeminiEditModel  string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAIOrg     string

	QwenAPIKey  string
	QwenBaseURL string
	QwenModel   string

	AssetWorkers           int
	AssetDispatchPerSecond float64
	AssetTimeout           time.Duration
	BatchRetention         int
	DefaultLocale          string

	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadDotEnv reads .env and .env.local when present. Variables already set in
// the process environment win.
func LoadDotEnv() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: strings.ToLower(os.Getenv("LOG_LEVEL")),

		TextProvider:  strings.ToLower(getEnv("TEXT_PROVIDER", ProviderGemini)),
		ImageProvider: strings.ToLower(getEnv("IMAGE_PROVIDER", ProviderGemini)),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:    os.Getenv("GEMINI_BASE_URL"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		GeminiEditModel:  getEnv("GEMINI_EDIT_MODEL", "gemini-2.5-flash-image"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:     os.Getenv("OPENAI_ORG"),

		QwenAPIKey:  os.Getenv("QWEN_API_KEY"),
		QwenBaseURL: os.Getenv("QWEN_BASE_URL"),
		QwenModel:   os.Getenv("QWEN_MODEL"),

		AssetWorkers:           getEnvInt("ASSET_WORKERS", 4),
		AssetDispatchPerSecond: getEnvFloat("ASSET_DISPATCH_PER_SECOND", 0),
		AssetTimeout:           time.Second * time.Duration(getEnvInt("ASSET_TIMEOUT_SECONDS", 120)),
		BatchRetention:         getEnvInt("BATCH_RETENTION", 256),
		DefaultLocale:          getEnv("DEFAULT_LOCALE", "pt-BR"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	switch cfg.TextProvider {
	case ProviderGemini, ProviderOpenAI, ProviderStatic:
	default:
		return nil, fmt.Errorf("TEXT_PROVIDER %q is not supported", cfg.TextProvider)
	}
	switch cfg.ImageProvider {
	case ProviderGemini, ProviderQwen:
	default:
		return nil, fmt.Errorf("IMAGE_PROVIDER %q is not supported", cfg.ImageProvider)
	}
	if cfg.TextProvider == ProviderOpenAI && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required when TEXT_PROVIDER=openai")
	}
	if cfg.ImageProvider == ProviderQwen && cfg.QwenAPIKey == "" {
		return nil, fmt.Errorf("QWEN_API_KEY is required when IMAGE_PROVIDER=qwen")
	}
	if cfg.AssetWorkers <= 0 {
		return nil, fmt.Errorf("ASSET_WORKERS must be positive")
	}
	if cfg.BatchRetention <= 0 {
		return nil, fmt.Errorf("BATCH_RETENTION must be positive")
	}

	return cfg, nil
}

// Development reports whether the service runs in development mode.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
