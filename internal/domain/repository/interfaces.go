package repository

import (
	"context"
	"errors"

	"AssetCast/internal/domain/models"
)

// ErrConfigNotFound is returned by ConfigStore lookups for unknown ids.
var ErrConfigNotFound = errors.New("model config not found")

// ConfigStore is CRUD over persisted ModelConfigs. The scheduler only reads;
// writes come from the admin API.
type ConfigStore interface {
	GetAll(ctx context.Context, realm string) ([]models.ModelConfig, error)
	Get(ctx context.Context, id string) (models.ModelConfig, error)
	Put(ctx context.Context, cfg models.ModelConfig) error
	Delete(ctx context.Context, id string) error
}

// HistoricalSource reads stored attribute datapoints in [from, to).
type HistoricalSource interface {
	GetHistorical(ctx context.Context, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error)
}

// PredictedStore reads and writes forecast datapoints.
type PredictedStore interface {
	GetPredicted(ctx context.Context, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error)
	WritePredicted(ctx context.Context, assetID, attribute string, points []models.Datapoint) error
}

// DatapointStore is a full datapoint backend (REST or ClickHouse).
type DatapointStore interface {
	HistoricalSource
	PredictedStore
	Init(ctx context.Context) error // ensure schema / reachability
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits domain events after forecast writes. Implementations
// must tolerate being nil-configured (publishing disabled).
type EventPublisher interface {
	PublishForecastWritten(ctx context.Context, evt models.ForecastWrittenEvent) error
	Close() error
}

// Metrics is the instrumentation surface used across the scheduler and
// pipeline.
type Metrics interface {
	RecordReconcile(created, replaced, removed int)
	SetJobsLive(n int)
	RecordExecution(kind, outcome string, seconds float64)
	RecordDatapointsWritten(n int)
	RecordError(kind string)
}
