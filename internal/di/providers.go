package di

import (
	"context"
	"fmt"
	"time"

	"TAPull/internal/domain/repository"
	"TAPull/internal/handler/api"
	internalrepo "TAPull/internal/repository"
	"TAPull/internal/service/ratelimit"
	"TAPull/internal/service/stockapi"
	"TAPull/internal/usecase"
	"TAPull/pkg/cache"
	pkgch "TAPull/pkg/clickhouse"
	"TAPull/pkg/config"
	xhttp "TAPull/pkg/http"
	pkgkafka "TAPull/pkg/kafka"
	applogger "TAPull/pkg/logger"
	"TAPull/pkg/metrics"
	"TAPull/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

const initTimeout = 10 * time.Second

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideStockClient creates the historical price API client.
func ProvideStockClient(cfg *config.Config, l *applogger.Logger) *stockapi.Client {
	return stockapi.New(cfg.StockAPI.BaseURL, cfg.StockAPI.Timeout, stockapi.WithLogger(l))
}

func ProvidePriceSource(c *stockapi.Client) repository.PriceSource {
	return c
}

// ProvideCacheService builds the configured cache backend. It returns nil for "none".
func ProvideCacheService(cfg *config.Config) (cache.Service, func(), error) {
	memory := func() *cache.MemoryCache {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
			cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
		)
	}
	redis := func() (*cache.RedisCache, error) {
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx,
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, nil
	}

	var svc cache.Service
	switch cfg.Cache.Backend {
	case "memory":
		svc = memory()
	case "redis":
		rc, err := redis()
		if err != nil {
			return nil, nil, err
		}
		svc = rc
	case "layered":
		rc, err := redis()
		if err != nil {
			return nil, nil, err
		}
		svc = cache.NewLayeredCache(rc, cfg.Cache.TTL, cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
	default:
		return nil, func() {}, nil
	}
	return svc, func() { _ = svc.Close() }, nil
}

// ProvideFrameCache wraps the cache backend, or returns nil when caching is off.
func ProvideFrameCache(svc cache.Service, cfg *config.Config, l *applogger.Logger) repository.FrameCache {
	if svc == nil {
		return nil
	}
	return internalrepo.NewFrameCache(svc, cfg.Cache.TTL, l)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
// The cleanup closes the producer if construction of a later provider fails;
// closing twice is safe.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithBatching(cfg.Kafka.BatchSize, cfg.Kafka.BatchTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvidePublisher creates the Kafka indicator publisher. The use case owns
// and closes it.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, true),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideStorage creates the ClickHouse indicator store and ensures its schema.
func ProvideStorage(client *pkgch.Client, cfg *config.Config, l *applogger.Logger) (repository.Storage, error) {
	if client == nil {
		return nil, nil
	}
	store := internalrepo.NewCHIndicatorStore(client.DB(), cfg.ClickHouse.Database, cfg.ClickHouse.Table, l)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideIndicatorsUseCase creates the fetch-and-compute use case.
func ProvideIndicatorsUseCase(
	source repository.PriceSource,
	fc repository.FrameCache,
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.IndicatorsUseCase {
	return usecase.NewIndicatorsUseCase(source, fc, pub, store, m, l)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

func ProvideIndicatorsHandler(
	l *applogger.Logger,
	uc *usecase.IndicatorsUseCase,
	source repository.PriceSource,
	rl *ratelimit.Limiter,
) *api.IndicatorsEchoHandler {
	return api.NewIndicatorsEchoHandler(l, uc, source, rl)
}

// ProvideHTTPServer builds the Echo server with every handler registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.IndicatorsEchoHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer([]xhttp.Handler{h},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	uc *usecase.IndicatorsUseCase,
	rl *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, srv, uc, rl)
}
