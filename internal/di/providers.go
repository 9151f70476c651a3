package di

import (
	"context"
	"fmt"
	"time"

	domrepo "AssetCast/internal/domain/repository"
	domsvc "AssetCast/internal/domain/service"
	"AssetCast/internal/handler/api"
	internalrepo "AssetCast/internal/repository"
	"AssetCast/internal/services/provider"
	"AssetCast/internal/services/scheduler"
	"AssetCast/internal/usecase"
	"AssetCast/pkg/cache"
	pkgch "AssetCast/pkg/clickhouse"
	"AssetCast/pkg/config"
	xhttp "AssetCast/pkg/http"
	pkgkafka "AssetCast/pkg/kafka"
	applogger "AssetCast/pkg/logger"
	"AssetCast/pkg/metrics"
	"AssetCast/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideDatapointStore creates the configured datapoint backend and ensures
// it is reachable.
func ProvideDatapointStore(cfg *config.Config, l *applogger.Logger) (domrepo.DatapointStore, error) {
	var store domrepo.DatapointStore
	switch cfg.Datapoints.Backend {
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store = internalrepo.NewCHDatapointStore(client, l)
	case "rest":
		store = internalrepo.NewRESTDatapointStore(internalrepo.RESTConfig{
			BaseURL:           cfg.Datapoints.REST.BaseURL,
			Token:             cfg.Datapoints.REST.Token,
			Timeout:           cfg.Datapoints.REST.Timeout,
			RequestsPerSecond: cfg.Datapoints.REST.RequestsPerSecond,
		}, l)
	default:
		return nil, fmt.Errorf("unknown datapoints backend %q", cfg.Datapoints.Backend)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("datapoint store init: %w", err)
	}
	return store, nil
}

// ProvideRedisCache creates a Redis connection when any component needs one,
// nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	needed := cfg.Configs.Backend == "redis" ||
		(cfg.Datapoints.Cache.Enabled && cfg.Redis.Host != "")
	if !needed {
		return nil, nil
	}
	return cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
	)
}

// ProvideConfigStore creates the ModelConfig store backend.
func ProvideConfigStore(rc *cache.RedisCache, cfg *config.Config, l *applogger.Logger) (domrepo.ConfigStore, error) {
	if cfg.Configs.Backend == "redis" {
		if rc == nil {
			return nil, fmt.Errorf("redis config store requires redis connection")
		}
		return internalrepo.NewRedisConfigStore(rc, l), nil
	}
	return internalrepo.NewMemoryConfigStore(), nil
}

// ProvideCacheService builds the historical read cache: layered when Redis is
// available, in-process otherwise, nil when disabled.
func ProvideCacheService(rc *cache.RedisCache, cfg *config.Config) cache.Service {
	if !cfg.Datapoints.Cache.Enabled {
		return nil
	}
	if rc != nil {
		return cache.NewLayeredCache(rc)
	}
	return cache.NewMemoryCache()
}

// ProvideHistoricalSource wraps the datapoint store with the read cache when
// one is configured.
func ProvideHistoricalSource(store domrepo.DatapointStore, svc cache.Service, cfg *config.Config, l *applogger.Logger) domrepo.HistoricalSource {
	if svc == nil {
		return store
	}
	return internalrepo.NewCachedHistoricalSource(store, svc, cfg.Datapoints.Cache.TTL, l)
}

// ProvidePredictedStore exposes the datapoint backend's forecast side.
func ProvidePredictedStore(store domrepo.DatapointStore) domrepo.PredictedStore {
	return store
}

// ProvideEventPublisher creates the Kafka forecast event publisher, nil when
// eventing is disabled.
func ProvideEventPublisher(cfg *config.Config) (domrepo.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideChunker creates the monthly-chunked historical reader.
func ProvideChunker(src domrepo.HistoricalSource, l *applogger.Logger) *usecase.Chunker {
	return usecase.NewChunker(src, l)
}

// ProvideAligner creates the alignment pipeline.
func ProvideAligner(l *applogger.Logger) *usecase.Aligner {
	return usecase.NewAligner(l)
}

// ProvideProviderFactory creates the model service factory.
func ProvideProviderFactory(cfg *config.Config) domsvc.ProviderFactory {
	return provider.NewFactory(cfg.Provider.ServiceURL, cfg.Provider.Timeout)
}

// ProvideRunner creates the per-tick training/forecast executor.
func ProvideRunner(
	chunker *usecase.Chunker,
	aligner *usecase.Aligner,
	predicted domrepo.PredictedStore,
	events domrepo.EventPublisher,
	factory domsvc.ProviderFactory,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.Runner {
	return usecase.NewRunner(chunker, aligner, predicted, events, factory, m, l)
}

// ProvideScheduler creates the reconciling job scheduler.
func ProvideScheduler(
	cfg *config.Config,
	store domrepo.ConfigStore,
	runner *usecase.Runner,
	m domrepo.Metrics,
	l *applogger.Logger,
) *scheduler.Service {
	return scheduler.New(scheduler.Config{
		PollInterval: cfg.Scheduler.PollInterval,
		GracePeriod:  cfg.Scheduler.GracePeriod,
		Realm:        cfg.Scheduler.Realm,
		QueueSize:    cfg.Scheduler.QueueSize,
	}, store, runner, m, l)
}

// ProvideHTTPHandler creates the admin API handler.
func ProvideHTTPHandler(
	store domrepo.ConfigStore,
	predicted domrepo.PredictedStore,
	sched *scheduler.Service,
	l *applogger.Logger,
) xhttp.Handler {
	return api.NewConfigsHandler(store, predicted, sched, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	sched *scheduler.Service,
	store domrepo.DatapointStore,
	events domrepo.EventPublisher,
	handler xhttp.Handler,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, sched, store, events, handler, l)
}
