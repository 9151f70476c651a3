package service

import (
	"context"
	"fmt"

	"AssetCast/internal/domain/models"
)

// TrainedModel references a fitted model held by a provider backend.
type TrainedModel struct {
	ID   string
	Kind models.ModelKind
	Meta map[string]string
}

// ModelProvider is the pluggable train/forecast protocol. The scheduler never
// inspects model internals; it only moves aligned frames in and datapoints
// out.
type ModelProvider interface {
	Train(ctx context.Context, data *models.Frame) (*TrainedModel, error)
	Forecast(ctx context.Context, timestamps []int64, regressors *models.Frame) ([]models.Datapoint, error)
	Save(ctx context.Context, m *TrainedModel) error
	Load(ctx context.Context, id string) (*TrainedModel, error)
}

// ProviderFactory builds a provider for a config's variant.
type ProviderFactory interface {
	ProviderFor(cfg models.ModelConfig) (ModelProvider, error)
}

// ConstructionError marks a provider that could not be built for a config.
// It carries the original cause so callers can tell bad config (don't retry)
// from a transient provider bug.
type ConstructionError struct {
	Kind models.ModelKind
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct provider for kind %q: %v", e.Kind, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }
