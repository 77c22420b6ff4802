package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "empty config uses defaults",
			yaml: ``,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
				assert.False(t, cfg.Database.Enabled())
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "cis-automotive.p.rapidapi.com", cfg.Provider.Host)
				assert.Equal(t, "https://cis-automotive.p.rapidapi.com", cfg.Provider.BaseURL)
				assert.Equal(t, 20*time.Second, cfg.Provider.Timeout)
				assert.InDelta(t, 2.0, cfg.Provider.RateLimit.PerSecond, 1e-9)
				assert.Equal(t, BackendGemini, cfg.LLM.Backend)
				assert.Equal(t, "gemini-1.5-pro", cfg.LLM.Gemini.Model)
				assert.Contains(t, cfg.LLM.Fetch.UserAgent, "Mozilla/5.0")
				assert.Equal(t, APIModeReal, cfg.Valuation.APIMode)
				assert.Equal(t, AdjustModeLocal, cfg.Valuation.PriceAdjustMode)
				assert.Equal(t, 12000, cfg.Valuation.ExpectedMilesPerYear)
				assert.InDelta(t, 0.35, cfg.Valuation.MileageCapFraction, 1e-9)
				assert.Len(t, cfg.Valuation.RetentionByAge, 21)
				assert.Equal(t, CacheMemory, cfg.Cache.Backend)
				assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
				assert.Equal(t, []string{"Excellent Deal"}, cfg.Notifications.Discord.Ratings)
				assert.Equal(t, 10*time.Minute, cfg.Schedule.CacheSweepInterval)
				assert.Equal(t, 24*time.Hour, cfg.Schedule.PruneInterval)
				assert.Equal(t, "vehicle-deal-checker", cfg.Telemetry.ServiceName)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
database:
  host: localhost
  name: vdc
  user: vdc
  password: "${TEST_VDC_DB_PASSWORD}"
provider:
  api_key: "${TEST_VDC_RAPIDAPI_KEY}"
`,
			envVars: map[string]string{
				"TEST_VDC_DB_PASSWORD":  "secret123",
				"TEST_VDC_RAPIDAPI_KEY": "rapid-key",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "secret123", cfg.Database.Password)
				assert.Equal(t, "rapid-key", cfg.Provider.APIKey)
			},
		},
		{
			name: "api keys fall back to well-known env vars",
			yaml: ``,
			envVars: map[string]string{
				"RAPIDAPI_KEY":   "",
				"CIS_API_KEY":    "cis-key",
				"GEMINI_API_KEY": "",
				"GOOGLE_API_KEY": "google-key",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "cis-key", cfg.Provider.APIKey)
				assert.Equal(t, "google-key", cfg.LLM.Gemini.APIKey)
			},
		},
		{
			name: "database host without name or user",
			yaml: `
database:
  host: localhost
`,
			wantErr: "database.name is required when database.host is set",
		},
		{
			name: "invalid llm backend",
			yaml: `
llm:
  backend: invalid_backend
`,
			wantErr: `llm.backend must be one of: gemini, anthropic, ollama, openai_compat (got "invalid_backend")`,
		},
		{
			name: "ollama backend missing endpoint",
			yaml: `
llm:
  backend: ollama
`,
			wantErr: "llm.ollama.endpoint is required when backend is ollama",
		},
		{
			name: "anthropic backend missing model",
			yaml: `
llm:
  backend: anthropic
`,
			wantErr: "llm.anthropic.model is required when backend is anthropic",
		},
		{
			name: "openai_compat backend missing endpoint",
			yaml: `
llm:
  backend: openai_compat
`,
			wantErr: "llm.openai_compat.endpoint is required when backend is openai_compat",
		},
		{
			name: "invalid api mode",
			yaml: `
valuation:
  api_mode: sandbox
`,
			wantErr: `valuation.api_mode must be real or mock (got "sandbox")`,
		},
		{
			name: "invalid adjust mode",
			yaml: `
valuation:
  price_adjust_mode: gemini
`,
			wantErr: "valuation.price_adjust_mode must be local or remote",
		},
		{
			name: "increasing retention rejected",
			yaml: `
valuation:
  retention_by_age: {0: 1.0, 1: 0.9, 2: 0.95, 3: 0.8, 4: 0.7, 5: 0.6, 6: 0.5, 7: 0.45,
    8: 0.4, 9: 0.38, 10: 0.34, 11: 0.31, 12: 0.28, 13: 0.26, 14: 0.24, 15: 0.22,
    16: 0.2, 17: 0.18, 18: 0.16, 19: 0.14, 20: 0.13}
`,
			wantErr: "retention_by_age must not increase with age",
		},
		{
			name: "mileage cap out of range",
			yaml: `
valuation:
  mileage_cap_fraction: 2
`,
			wantErr: "mileage_cap_fraction must be in (0,1]",
		},
		{
			name: "invalid cache backend",
			yaml: `
cache:
  backend: memcached
`,
			wantErr: `cache.backend must be one of: none, memory, redis (got "memcached")`,
		},
		{
			name: "discord enabled without webhook",
			yaml: `
notifications:
  discord:
    enabled: true
`,
			wantErr: "notifications.discord.webhook_url is required",
		},
		{
			name: "discord unknown rating",
			yaml: `
notifications:
  discord:
    enabled: true
    webhook_url: https://discord.com/api/webhooks/123
    ratings: ["Steal"]
`,
			wantErr: `unknown rating "Steal"`,
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 60s
database:
  host: db.example.com
  port: 5433
  name: vdc_prod
  user: admin
  password: pass
  sslmode: require
  pool_size: 20
provider:
  host: cis.example.com
  base_url: http://localhost:8089
  api_key: abc
  timeout: 5s
  rate_limit:
    per_second: 1
    burst: 2
    daily_limit: 500
llm:
  backend: anthropic
  anthropic:
    model: claude-haiku-4-20250514
  timeout: 90s
  fetch:
    user_agent: test-agent
valuation:
  api_mode: mock
  price_adjust_mode: remote
  current_year: 2025
  default_region: REGION_STATE_AZ
  expected_miles_per_year: 10000
  mileage_cap_fraction: 0.25
  cpm_by_body_type: {sedan: 0.07, other: 0.09}
  condition_factor: {excellent: 1.05, good: 1.0, fair: 0.9}
cache:
  backend: redis
  ttl: 1h
  redis:
    addr: redis:6379
    db: 2
notifications:
  discord:
    enabled: true
    webhook_url: https://discord.com/api/webhooks/123
    ratings: ["Excellent Deal", "Good Deal"]
schedule:
  cache_sweep_interval: 1m
  prune_interval: 6h
  retention: 720h
telemetry:
  enabled: true
  endpoint: otel:4317
  insecure: true
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.True(t, cfg.Database.Enabled())
				assert.Equal(t, 20, cfg.Database.PoolSize)
				assert.Equal(t, "http://localhost:8089", cfg.Provider.BaseURL)
				assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
				assert.Equal(t, int64(500), cfg.Provider.RateLimit.DailyLimit)
				assert.Equal(t, BackendAnthropic, cfg.LLM.Backend)
				assert.Equal(t, "test-agent", cfg.LLM.Fetch.UserAgent)
				assert.Equal(t, APIModeMock, cfg.Valuation.APIMode)
				assert.Equal(t, AdjustModeRemote, cfg.Valuation.PriceAdjustMode)
				assert.Equal(t, 2025, cfg.Valuation.CurrentYear)
				assert.Equal(t, "REGION_STATE_AZ", cfg.Valuation.DefaultRegion)
				assert.InDelta(t, 0.07, cfg.Valuation.CPMByBodyType[domain.BodySedan], 1e-9)
				assert.InDelta(t, 1.05, cfg.Valuation.ConditionFactor[domain.ConditionExcellent], 1e-9)
				assert.Equal(t, CacheRedis, cfg.Cache.Backend)
				assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
				assert.Equal(t, 2, cfg.Cache.Redis.DB)
				assert.Equal(t, time.Hour, cfg.Cache.TTL)
				assert.Equal(t, []string{"Excellent Deal", "Good Deal"}, cfg.Notifications.Discord.Ratings)
				assert.Equal(t, 720*time.Hour, cfg.Schedule.Retention)
				assert.True(t, cfg.Telemetry.Enabled)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestConfig_AdjustmentConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
valuation:
  expected_miles_per_year: 10000
  cpm_by_body_type: {sedan: 0.07, other: 0.09}
`))
	require.NoError(t, err)

	adj := cfg.AdjustmentConfig()
	require.NoError(t, adj.Validate())
	assert.Equal(t, 10000, adj.ExpectedMilesPerYear)
	assert.InDelta(t, 0.07, adj.CPMByBodyType[domain.BodySedan], 1e-9)
	assert.InDelta(t, 0.51, adj.Retention(5), 1e-9)

	// The returned maps are copies.
	adj.CPMByBodyType[domain.BodySedan] = 1
	assert.InDelta(t, 0.07, cfg.Valuation.CPMByBodyType[domain.BodySedan], 1e-9)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "basic DSN",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Name:     "vdc",
				User:     "vdc",
				Password: "testpass",
				SSLMode:  "disable",
			},
			want: "host=localhost port=5432 dbname=vdc user=vdc password=testpass sslmode=disable",
		},
		{
			name: "production DSN",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				Name:     "vdc_prod",
				User:     "admin",
				Password: "s3cret",
				SSLMode:  "require",
			},
			want: "host=db.example.com port=5433 dbname=vdc_prod user=admin password=s3cret sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
