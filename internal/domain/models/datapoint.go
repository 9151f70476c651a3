package models

// Datapoint is a single observation of an asset attribute. Value is nil when
// the upstream stored an explicit null sample.
type Datapoint struct {
	Timestamp int64    `json:"x"`
	Value     *float64 `json:"y"`
}

// FeatureRef identifies one attribute time series plus the timestamp at which
// its usable history starts.
type FeatureRef struct {
	AssetID   string `json:"asset_id" yaml:"asset_id" validate:"required"`
	Attribute string `json:"attribute" yaml:"attribute" validate:"required"`
	CutoffMs  int64  `json:"cutoff_ms" yaml:"cutoff_ms"`
}

// FeatureSeries is a named list of datapoints; the name is the series identity
// in the aligned frame.
type FeatureSeries struct {
	Name   string
	Points []Datapoint
}

// TrainingSet is the raw input to training alignment.
type TrainingSet struct {
	Target     FeatureSeries
	Regressors []FeatureSeries
}

// ForecastSet carries only regressors; the target is implicit in the
// provider's stored model.
type ForecastSet struct {
	Regressors []FeatureSeries
}

// Float returns a float pointer, for building datapoint literals.
func Float(v float64) *float64 { return &v }
