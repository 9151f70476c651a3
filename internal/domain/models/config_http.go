package models

// ConfigRequest is the admin API payload for creating or replacing a
// ModelConfig. Validation rejects a kind without its matching params block.
type ConfigRequest struct {
	ID      string    `json:"id" param:"id" validate:"required,min=1,max=128"`
	Realm   string    `json:"realm" validate:"max=64"`
	Name    string    `json:"name" validate:"max=256"`
	Enabled bool      `json:"enabled" default:"true"`
	Kind    ModelKind `json:"kind" validate:"required,oneof=prophet xgboost"`

	Target  FeatureRef     `json:"target" validate:"required"`
	Prophet *ProphetParams `json:"prophet,omitempty"`
	XGBoost *XGBoostParams `json:"xgboost,omitempty"`

	TrainingInterval string `json:"training_interval" validate:"required"`
	ForecastInterval string `json:"forecast_interval" validate:"required"`

	ForecastHorizon   int    `json:"forecast_horizon" validate:"gt=0,lte=10000" default:"24"`
	ForecastFrequency string `json:"forecast_frequency" validate:"required" default:"1h"`
}

// ToConfig converts the validated request into the domain value.
func (r *ConfigRequest) ToConfig() ModelConfig {
	return ModelConfig{
		ID:                r.ID,
		Realm:             r.Realm,
		Name:              r.Name,
		Enabled:           r.Enabled,
		Kind:              r.Kind,
		Target:            r.Target,
		Prophet:           r.Prophet,
		XGBoost:           r.XGBoost,
		TrainingInterval:  r.TrainingInterval,
		ForecastInterval:  r.ForecastInterval,
		ForecastHorizon:   r.ForecastHorizon,
		ForecastFrequency: r.ForecastFrequency,
	}
}

// ListConfigsRequest filters GET /configs.
type ListConfigsRequest struct {
	Realm string `query:"realm" validate:"max=64"`
}

// PredictionsRequest reads stored forecast datapoints for one attribute.
type PredictionsRequest struct {
	AssetID   string `param:"asset" validate:"required"`
	Attribute string `param:"attribute" validate:"required"`
	From      string `query:"from"`
	To        string `query:"to"`
	Limit     string `query:"limit"`
}
