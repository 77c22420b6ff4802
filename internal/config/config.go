// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

// Valuation modes.
const (
	APIModeReal = "real"
	APIModeMock = "mock"

	AdjustModeLocal  = "local"
	AdjustModeRemote = "remote"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// LLM backends.
const (
	BackendGemini       = "gemini"
	BackendAnthropic    = "anthropic"
	BackendOllama       = "ollama"
	BackendOpenAICompat = "openai_compat"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Provider      ProviderConfig      `yaml:"provider"`
	LLM           LLMConfig           `yaml:"llm"`
	Valuation     ValuationConfig     `yaml:"valuation"`
	Cache         CacheConfig         `yaml:"cache"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings. An empty host turns
// evaluation history off.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a database is configured.
func (d *DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// ProviderConfig defines the CIS salePrice (RapidAPI) settings.
type ProviderConfig struct {
	Host      string          `yaml:"host"`
	BaseURL   string          `yaml:"base_url"` // defaults to https://<host>
	APIKey    string          `yaml:"api_key"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines provider rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// LLMConfig defines LLM backend settings.
type LLMConfig struct {
	Backend      string             `yaml:"backend"` // gemini, anthropic, ollama, openai_compat
	Gemini       GeminiConfig       `yaml:"gemini"`
	Anthropic    AnthropicConfig    `yaml:"anthropic"`
	Ollama       OllamaConfig       `yaml:"ollama"`
	OpenAICompat OpenAICompatConfig `yaml:"openai_compat"`
	Timeout      time.Duration      `yaml:"timeout"`
	Fetch        FetchConfig        `yaml:"fetch"`
}

// GeminiConfig defines Google Gemini API settings.
type GeminiConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// AnthropicConfig defines Anthropic API settings.
type AnthropicConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"` // falls back to ANTHROPIC_API_KEY
}

// OllamaConfig defines Ollama-specific settings.
type OllamaConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// OpenAICompatConfig defines OpenAI-compatible endpoint settings.
type OpenAICompatConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// FetchConfig controls how listing pages are downloaded before extraction.
type FetchConfig struct {
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
}

// ValuationConfig defines the pricing knobs.
type ValuationConfig struct {
	APIMode              string                       `yaml:"api_mode"`          // real, mock
	PriceAdjustMode      string                       `yaml:"price_adjust_mode"` // local, remote
	CurrentYear          int                          `yaml:"current_year"`      // 0 = clock year
	DefaultRegion        string                       `yaml:"default_region"`
	ExpectedMilesPerYear int                          `yaml:"expected_miles_per_year"`
	MileageCapFraction   float64                      `yaml:"mileage_cap_fraction"`
	CPMByBodyType        map[domain.BodyType]float64  `yaml:"cpm_by_body_type"`
	RetentionByAge       map[int]float64              `yaml:"retention_by_age"`
	ConditionFactor      map[domain.Condition]float64 `yaml:"condition_factor"`
}

// AdjustmentConfig converts the valuation section into adjuster parameters.
// Maps are copied so callers cannot mutate the loaded configuration.
func (c *Config) AdjustmentConfig() valuation.AdjustmentConfig {
	v := c.Valuation
	return valuation.AdjustmentConfig{
		ExpectedMilesPerYear: v.ExpectedMilesPerYear,
		CPMByBodyType:        maps.Clone(v.CPMByBodyType),
		RetentionByAge:       maps.Clone(v.RetentionByAge),
		MileageCapFraction:   v.MileageCapFraction,
		ConditionFactor:      maps.Clone(v.ConditionFactor),
	}
}

// CacheConfig defines the baseline/extraction cache.
type CacheConfig struct {
	Backend string        `yaml:"backend"` // none, memory, redis
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig defines Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool     `yaml:"enabled"`
	WebhookURL string   `yaml:"webhook_url"`
	Ratings    []string `yaml:"ratings"` // deal ratings that trigger an alert
}

// ScheduleConfig defines background job cadence.
type ScheduleConfig struct {
	CacheSweepInterval time.Duration `yaml:"cache_sweep_interval"`
	PruneInterval      time.Duration `yaml:"prune_interval"`
	Retention          time.Duration `yaml:"retention"` // 0 keeps evaluations forever
}

// TelemetryConfig defines OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Endpoint    string        `yaml:"endpoint"` // OTLP gRPC host:port
	Insecure    bool          `yaml:"insecure"`
	ServiceName string        `yaml:"service_name"`
	Interval    time.Duration `yaml:"interval"` // metric export interval
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from raw YAML.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyProviderDefaults(&cfg.Provider)
	applyLLMDefaults(&cfg.LLM)
	applyValuationDefaults(&cfg.Valuation)
	applyCacheDefaults(&cfg.Cache)
	applyNotificationDefaults(&cfg.Notifications)
	applyScheduleDefaults(&cfg.Schedule)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 60 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyProviderDefaults(p *ProviderConfig) {
	if p.Host == "" {
		p.Host = "cis-automotive.p.rapidapi.com"
	}
	if p.BaseURL == "" {
		p.BaseURL = "https://" + p.Host
	}
	if p.APIKey == "" {
		p.APIKey = firstEnv("RAPIDAPI_KEY", "CIS_API_KEY")
	}
	if p.Timeout == 0 {
		p.Timeout = 20 * time.Second
	}
	applyRateLimitDefaults(&p.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 2.0
	}
	if r.Burst == 0 {
		r.Burst = 4
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 1000
	}
}

func applyLLMDefaults(l *LLMConfig) {
	if l.Backend == "" {
		l.Backend = BackendGemini
	}
	if l.Gemini.Model == "" {
		l.Gemini.Model = "gemini-1.5-pro"
	}
	if l.Gemini.APIKey == "" {
		l.Gemini.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
	if l.Timeout == 0 {
		l.Timeout = 60 * time.Second
	}
	if l.Fetch.UserAgent == "" {
		l.Fetch.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome Safari"
	}
	if l.Fetch.Timeout == 0 {
		l.Fetch.Timeout = 20 * time.Second
	}
	if l.Fetch.MaxBytes == 0 {
		l.Fetch.MaxBytes = 2 << 20
	}
}

func applyValuationDefaults(v *ValuationConfig) {
	if v.APIMode == "" {
		v.APIMode = APIModeReal
	}
	if v.PriceAdjustMode == "" {
		v.PriceAdjustMode = AdjustModeLocal
	}

	defaults := valuation.DefaultAdjustmentConfig()
	if v.ExpectedMilesPerYear == 0 {
		v.ExpectedMilesPerYear = defaults.ExpectedMilesPerYear
	}
	if v.MileageCapFraction == 0 {
		v.MileageCapFraction = defaults.MileageCapFraction
	}
	if len(v.CPMByBodyType) == 0 {
		v.CPMByBodyType = defaults.CPMByBodyType
	}
	if len(v.RetentionByAge) == 0 {
		v.RetentionByAge = defaults.RetentionByAge
	}
	if len(v.ConditionFactor) == 0 {
		v.ConditionFactor = defaults.ConditionFactor
	}
}

func applyCacheDefaults(c *CacheConfig) {
	if c.Backend == "" {
		c.Backend = CacheMemory
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "vdc:"
	}
}

func applyNotificationDefaults(n *NotificationsConfig) {
	if len(n.Discord.Ratings) == 0 {
		n.Discord.Ratings = []string{string(domain.RatingExcellent)}
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.CacheSweepInterval == 0 {
		s.CacheSweepInterval = 10 * time.Minute
	}
	if s.PruneInterval == 0 {
		s.PruneInterval = 24 * time.Hour
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.ServiceName == "" {
		t.ServiceName = "vehicle-deal-checker"
	}
	if t.Interval == 0 {
		t.Interval = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Enabled() {
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when database.host is set"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when database.host is set"))
		}
	}

	errs = append(errs, validateLLM(&cfg.LLM)...)
	errs = append(errs, validateValuation(cfg)...)

	switch cfg.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf(
			"cache.backend must be one of: none, memory, redis (got %q)", cfg.Cache.Backend,
		))
	}
	if cfg.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative"))
	}

	if cfg.Notifications.Discord.Enabled {
		if cfg.Notifications.Discord.WebhookURL == "" {
			errs = append(errs, fmt.Errorf(
				"notifications.discord.webhook_url is required when discord is enabled",
			))
		}
		for _, r := range cfg.Notifications.Discord.Ratings {
			if !validRating(r) {
				errs = append(errs, fmt.Errorf("notifications.discord.ratings: unknown rating %q", r))
			}
		}
	}

	if cfg.Schedule.Retention < 0 {
		errs = append(errs, fmt.Errorf("schedule.retention must not be negative"))
	}

	return errors.Join(errs...)
}

func validateLLM(l *LLMConfig) []error {
	var errs []error

	switch l.Backend {
	case BackendGemini:
		// API key is checked at call time so mock mode can run without one.
	case BackendAnthropic:
		if l.Anthropic.Model == "" {
			errs = append(errs, fmt.Errorf("llm.anthropic.model is required when backend is anthropic"))
		}
	case BackendOllama:
		if l.Ollama.Endpoint == "" {
			errs = append(errs, fmt.Errorf("llm.ollama.endpoint is required when backend is ollama"))
		}
	case BackendOpenAICompat:
		if l.OpenAICompat.Endpoint == "" {
			errs = append(errs, fmt.Errorf(
				"llm.openai_compat.endpoint is required when backend is openai_compat",
			))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"llm.backend must be one of: gemini, anthropic, ollama, openai_compat (got %q)",
			l.Backend,
		))
	}

	return errs
}

func validateValuation(cfg *Config) []error {
	var errs []error
	v := cfg.Valuation

	switch strings.ToLower(v.APIMode) {
	case APIModeReal, APIModeMock:
	default:
		errs = append(errs, fmt.Errorf("valuation.api_mode must be real or mock (got %q)", v.APIMode))
	}
	switch strings.ToLower(v.PriceAdjustMode) {
	case AdjustModeLocal, AdjustModeRemote:
	default:
		errs = append(errs, fmt.Errorf(
			"valuation.price_adjust_mode must be local or remote (got %q)", v.PriceAdjustMode,
		))
	}
	if v.CurrentYear < 0 {
		errs = append(errs, fmt.Errorf("valuation.current_year must not be negative"))
	}

	adj := cfg.AdjustmentConfig()
	if err := adj.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("valuation: %w", err))
	}

	return errs
}

func validRating(r string) bool {
	return slices.Contains([]domain.DealRatingKind{
		domain.RatingExcellent, domain.RatingGood, domain.RatingFair, domain.RatingOverpriced,
	}, domain.DealRatingKind(r))
}
