package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Admin    AdminConfig
	Chat     ChatConfig
	Scraper  ScraperConfig
	News     NewsConfig
	Metrics  MetricsConfig
	Docs     DocsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	Expiration   time.Duration
	Issuer       string
	AuthRequired bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AdminConfig holds the bootstrap code required by the admin login.
type AdminConfig struct {
	Code string
}

// ProviderConfig describes one remote chat-completion backend.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ChatConfig wires the chat router to its providers.
type ChatConfig struct {
	DefaultProvider string
	Timeout         time.Duration
	OpenRouter      ProviderConfig
	Gemini          ProviderConfig
	HuggingFace     ProviderConfig
	CacheTTL        time.Duration
	TimeZone        string
}

// ScraperConfig tunes the page scraping service and its direct-fetch fallback.
type ScraperConfig struct {
	APIKey       string
	BaseURL      string
	Actor        string
	PollInterval time.Duration
	MaxAttempts  int
	MaxChars     int
	FetchTimeout time.Duration
}

// NewsConfig configures the optional news search API.
type NewsConfig struct {
	APIKey  string
	BaseURL string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// DocsConfig toggles the swagger UI.
type DocsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:       v.GetString("JWT_SECRET"),
		Expiration:   parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:       v.GetString("JWT_ISSUER"),
		AuthRequired: v.GetBool("AUTH_REQUIRED"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Admin = AdminConfig{Code: v.GetString("ADMIN_CODE")}

	cfg.Chat = ChatConfig{
		DefaultProvider: strings.ToLower(v.GetString("CHAT_DEFAULT_PROVIDER")),
		Timeout:         parseDuration(v.GetString("CHAT_PROVIDER_TIMEOUT"), 60*time.Second),
		OpenRouter: ProviderConfig{
			APIKey:  v.GetString("OPENROUTER_API_KEY"),
			BaseURL: v.GetString("OPENROUTER_BASE_URL"),
			Model:   v.GetString("OPENROUTER_MODEL"),
		},
		Gemini: ProviderConfig{
			APIKey:  v.GetString("GEMINI_API_KEY"),
			BaseURL: v.GetString("GEMINI_BASE_URL"),
			Model:   v.GetString("GEMINI_MODEL"),
		},
		HuggingFace: ProviderConfig{
			APIKey:  v.GetString("HF_API_KEY"),
			BaseURL: v.GetString("HF_BASE_URL"),
			Model:   v.GetString("HF_MODEL"),
		},
		CacheTTL: parseDuration(v.GetString("SCRAPE_CACHE_TTL"), 30*time.Minute),
		TimeZone: v.GetString("TIMEZONE"),
	}

	cfg.Scraper = ScraperConfig{
		APIKey:       v.GetString("SCRAPER_API_KEY"),
		BaseURL:      v.GetString("SCRAPER_BASE_URL"),
		Actor:        v.GetString("SCRAPER_ACTOR"),
		PollInterval: parseDuration(v.GetString("SCRAPER_POLL_INTERVAL"), 5*time.Second),
		MaxAttempts:  v.GetInt("SCRAPER_MAX_ATTEMPTS"),
		MaxChars:     v.GetInt("SCRAPER_MAX_CHARS"),
		FetchTimeout: parseDuration(v.GetString("FETCH_TIMEOUT"), 20*time.Second),
	}

	cfg.News = NewsConfig{
		APIKey:  v.GetString("NEWS_API_KEY"),
		BaseURL: v.GetString("NEWS_BASE_URL"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Docs = DocsConfig{Enabled: v.GetBool("ENABLE_DOCS") && cfg.Env != EnvProduction}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3001)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "admissions_crm")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "admissions-crm")
	v.SetDefault("AUTH_REQUIRED", false)

	v.SetDefault("ADMIN_CODE", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CHAT_DEFAULT_PROVIDER", "openrouter")
	v.SetDefault("CHAT_PROVIDER_TIMEOUT", "60s")
	v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("OPENROUTER_MODEL", "meta-llama/llama-3.1-8b-instruct")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("HF_BASE_URL", "https://api-inference.huggingface.co/models")
	v.SetDefault("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.2")
	v.SetDefault("SCRAPE_CACHE_TTL", "30m")
	v.SetDefault("TIMEZONE", "Local")

	v.SetDefault("SCRAPER_BASE_URL", "https://api.apify.com/v2")
	v.SetDefault("SCRAPER_ACTOR", "apify~website-content-crawler")
	v.SetDefault("SCRAPER_POLL_INTERVAL", "5s")
	v.SetDefault("SCRAPER_MAX_ATTEMPTS", 12)
	v.SetDefault("SCRAPER_MAX_CHARS", 8000)
	v.SetDefault("FETCH_TIMEOUT", "20s")

	v.SetDefault("NEWS_BASE_URL", "https://newsapi.org/v2")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_DOCS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
