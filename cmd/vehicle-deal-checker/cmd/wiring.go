package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/donaldgifford/vehicle-deal-checker/internal/api/handlers"
	"github.com/donaldgifford/vehicle-deal-checker/internal/cache"
	"github.com/donaldgifford/vehicle-deal-checker/internal/config"
	"github.com/donaldgifford/vehicle-deal-checker/internal/engine"
	"github.com/donaldgifford/vehicle-deal-checker/internal/notify"
	"github.com/donaldgifford/vehicle-deal-checker/internal/provider"
	"github.com/donaldgifford/vehicle-deal-checker/internal/store"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/extract"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// app holds the long-lived components built from the config.
type app struct {
	cache       cache.Cache
	sweeper     cache.Sweeper
	rateLimiter *provider.RateLimiter
	extractor   extract.Extractor
	store       store.Store
	engine      *engine.Engine

	checks  map[string]handlers.Pinger
	closers []func()
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires the engine and its collaborators. On error everything built
// so far is closed.
func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{checks: map[string]handlers.Pinger{}}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.buildCache(ctx, cfg, log); err != nil {
		return nil, err
	}
	if err := a.buildStore(ctx, cfg, log); err != nil {
		return nil, err
	}

	backend, err := newLLMBackend(&cfg.LLM)
	if err != nil {
		return nil, err
	}
	a.extractor = extract.NewLLMExtractor(backend,
		extract.WithFetcher(extract.NewHTTPFetcher(
			extract.WithFetchHTTPClient(&http.Client{Timeout: cfg.LLM.Fetch.Timeout}),
			extract.WithUserAgent(cfg.LLM.Fetch.UserAgent),
			extract.WithMaxBytes(cfg.LLM.Fetch.MaxBytes),
		)),
		extract.WithLogger(log),
	)

	a.rateLimiter = provider.NewRateLimiter(
		cfg.Provider.RateLimit.PerSecond,
		cfg.Provider.RateLimit.Burst,
		cfg.Provider.RateLimit.DailyLimit,
	)
	var baselines provider.BaselineProvider = provider.NewSalePriceClient(
		provider.WithHost(cfg.Provider.Host),
		provider.WithBaseURL(cfg.Provider.BaseURL),
		provider.WithAPIKey(cfg.Provider.APIKey),
		provider.WithHTTPClient(&http.Client{Timeout: cfg.Provider.Timeout}),
		provider.WithRateLimiter(a.rateLimiter),
		provider.WithLogger(log),
	)
	baselines = provider.NewCachedProvider(baselines, a.cache, cfg.Cache.TTL, log)

	adjCfg := cfg.AdjustmentConfig()
	var adjuster engine.Adjuster = engine.NewLocalAdjuster(adjCfg)
	if strings.EqualFold(cfg.Valuation.PriceAdjustMode, config.AdjustModeRemote) {
		adjuster = engine.NewRemoteAdjuster(backend, adjCfg, engine.WithRemoteLogger(log))
	}

	opts := []engine.EngineOption{
		engine.WithLogger(log),
		engine.WithAdjuster(adjuster),
		engine.WithExtractor(a.extractor),
		engine.WithNotifier(newNotifier(&cfg.Notifications, log)),
		engine.WithMockMode(strings.EqualFold(cfg.Valuation.APIMode, config.APIModeMock)),
		engine.WithDefaultRegion(cfg.Valuation.DefaultRegion),
		engine.WithAlertRatings(alertRatings(cfg.Notifications.Discord.Ratings)...),
	}
	if a.store != nil {
		opts = append(opts, engine.WithStore(a.store))
	}
	if a.cache != nil {
		opts = append(opts, engine.WithExtractCache(a.cache, cfg.Cache.TTL))
	}
	if cfg.Valuation.CurrentYear > 0 {
		opts = append(opts, engine.WithCurrentYear(cfg.Valuation.CurrentYear))
	}
	a.engine = engine.NewEngine(baselines, opts...)

	log.Info("engine ready",
		"llm_backend", backend.Name(),
		"adjuster", adjuster.Name(),
		"api_mode", cfg.Valuation.APIMode,
		"cache", cfg.Cache.Backend,
		"history", a.store != nil,
	)
	return a, nil
}

func (a *app) buildCache(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		mc := cache.NewMemoryCache()
		a.cache = mc
		a.sweeper = mc
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.cache = rc
		a.checks["cache"] = rc
		a.closers = append(a.closers, func() {
			if err := rc.Close(); err != nil {
				log.Warn("closing redis", "error", err)
			}
		})
	}
	return nil
}

func (a *app) buildStore(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if !cfg.Database.Enabled() {
		log.Info("database not configured, evaluation history disabled")
		return nil
	}

	pg, err := store.NewPostgresStore(ctx, cfg.Database.DSN(), store.WithPoolSize(cfg.Database.PoolSize))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	a.closers = append(a.closers, pg.Close)

	if err := pg.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	a.store = pg
	a.checks["database"] = pg
	return nil
}

// newLLMBackend creates the LLM backend named by the config.
func newLLMBackend(cfg *config.LLMConfig) (extract.LLMBackend, error) {
	hc := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Backend {
	case config.BackendGemini:
		opts := []extract.GeminiOption{
			extract.WithGeminiModel(cfg.Gemini.Model),
			extract.WithGeminiAPIKey(cfg.Gemini.APIKey),
			extract.WithGeminiHTTPClient(hc),
		}
		if cfg.Gemini.Endpoint != "" {
			opts = append(opts, extract.WithGeminiEndpoint(cfg.Gemini.Endpoint))
		}
		return extract.NewGeminiBackend(opts...), nil
	case config.BackendAnthropic:
		opts := []extract.AnthropicOption{
			extract.WithAnthropicModel(cfg.Anthropic.Model),
			extract.WithAnthropicHTTPClient(hc),
		}
		if cfg.Anthropic.APIKey != "" {
			opts = append(opts, extract.WithAnthropicAPIKey(cfg.Anthropic.APIKey))
		}
		return extract.NewAnthropicBackend(opts...), nil
	case config.BackendOllama:
		return extract.NewOllamaBackend(
			cfg.Ollama.Endpoint, cfg.Ollama.Model, extract.WithOllamaHTTPClient(hc),
		), nil
	case config.BackendOpenAICompat:
		opts := []extract.OpenAICompatOption{extract.WithOpenAICompatHTTPClient(hc)}
		if cfg.OpenAICompat.APIKey != "" {
			opts = append(opts, extract.WithOpenAICompatAPIKey(cfg.OpenAICompat.APIKey))
		}
		return extract.NewOpenAICompatBackend(cfg.OpenAICompat.Endpoint, cfg.OpenAICompat.Model, opts...), nil
	default:
		return nil, errors.New("unknown LLM backend: " + cfg.Backend)
	}
}

func newNotifier(cfg *config.NotificationsConfig, log *slog.Logger) notify.Notifier {
	if !cfg.Discord.Enabled {
		return notify.NewNoOpNotifier(log)
	}
	return notify.NewDiscordNotifier(cfg.Discord.WebhookURL)
}

func alertRatings(names []string) []domain.DealRatingKind {
	out := make([]domain.DealRatingKind, 0, len(names))
	for _, n := range names {
		out = append(out, domain.DealRatingKind(n))
	}
	return out
}
