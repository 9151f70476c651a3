package provider

import (
	"errors"
	"fmt"
	"time"

	"AssetCast/internal/domain/models"
	domsvc "AssetCast/internal/domain/service"
)

// Factory builds HTTP providers against a single model service. One factory
// serves every config; providers themselves are cheap per-call shells.
type Factory struct {
	serviceURL string
	timeout    time.Duration
}

func NewFactory(serviceURL string, timeout time.Duration) *Factory {
	return &Factory{serviceURL: serviceURL, timeout: timeout}
}

// ProviderFor returns a provider for the config's variant. A kind without a
// matching params payload, or an unknown kind, is a construction error: the
// config cannot produce a runnable model until it is edited.
func (f *Factory) ProviderFor(cfg models.ModelConfig) (domsvc.ModelProvider, error) {
	if f.serviceURL == "" {
		return nil, &domsvc.ConstructionError{
			Kind: cfg.Kind, Err: errors.New("model service url not configured"),
		}
	}

	var params interface{}
	switch cfg.Kind {
	case models.ModelKindProphet:
		if cfg.Prophet == nil {
			return nil, &domsvc.ConstructionError{
				Kind: cfg.Kind, Err: errors.New("prophet params missing"),
			}
		}
		params = cfg.Prophet
	case models.ModelKindXGBoost:
		if cfg.XGBoost == nil {
			return nil, &domsvc.ConstructionError{
				Kind: cfg.Kind, Err: errors.New("xgboost params missing"),
			}
		}
		params = cfg.XGBoost
	default:
		return nil, &domsvc.ConstructionError{
			Kind: cfg.Kind, Err: fmt.Errorf("unknown model kind %q", cfg.Kind),
		}
	}

	return &HTTPModelProvider{
		httpBase: newHTTPBase(f.serviceURL, f.timeout),
		kind:     cfg.Kind,
		params:   params,
	}, nil
}

var _ domsvc.ProviderFactory = (*Factory)(nil)
