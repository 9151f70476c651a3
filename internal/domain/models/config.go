package models

import "reflect"

// ModelKind tags a ModelConfig variant.
type ModelKind string

const (
	ModelKindProphet ModelKind = "prophet"
	ModelKindXGBoost ModelKind = "xgboost"
)

// ProphetParams are the Prophet-specific fields of a ModelConfig. Covariates
// are called extra regressors in Prophet's vocabulary.
type ProphetParams struct {
	ExtraRegressors []FeatureRef `json:"extra_regressors,omitempty" yaml:"extra_regressors"`
	SeasonalityMode string       `json:"seasonality_mode,omitempty" yaml:"seasonality_mode"`
	ChangepointN    int          `json:"changepoint_n,omitempty" yaml:"changepoint_n"`
}

// XGBoostParams are the gradient-boosted-tree fields of a ModelConfig.
type XGBoostParams struct {
	Covariates []FeatureRef `json:"covariates,omitempty" yaml:"covariates"`
	Estimators int          `json:"estimators,omitempty" yaml:"estimators"`
	MaxDepth   int          `json:"max_depth,omitempty" yaml:"max_depth"`
	Lags       int          `json:"lags,omitempty" yaml:"lags"`
}

// ModelConfig is one persisted forecasting task. The ID is stable across
// reschedules; scheduling decisions compare whole values via Equal.
// Exactly one variant payload (Prophet or XGBoost) is set, matching Kind.
type ModelConfig struct {
	ID      string    `json:"id"`
	Realm   string    `json:"realm"`
	Name    string    `json:"name"`
	Enabled bool      `json:"enabled"`
	Kind    ModelKind `json:"kind"`

	Target  FeatureRef     `json:"target"`
	Prophet *ProphetParams `json:"prophet,omitempty"`
	XGBoost *XGBoostParams `json:"xgboost,omitempty"`

	// ISO-8601 durations.
	TrainingInterval string `json:"training_interval"`
	ForecastInterval string `json:"forecast_interval"`

	ForecastHorizon   int    `json:"forecast_horizon"`
	ForecastFrequency string `json:"forecast_frequency"`
}

// Regressors normalizes whichever variant is set into a canonical covariate
// list. Nil when the config declares none.
func (c ModelConfig) Regressors() []FeatureRef {
	switch c.Kind {
	case ModelKindProphet:
		if c.Prophet != nil {
			return c.Prophet.ExtraRegressors
		}
	case ModelKindXGBoost:
		if c.XGBoost != nil {
			return c.XGBoost.Covariates
		}
	}
	return nil
}

// Equal is structural value equality, used to detect no-op reschedules.
func (c ModelConfig) Equal(o ModelConfig) bool {
	return reflect.DeepEqual(c, o)
}
