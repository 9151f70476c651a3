package models

// ForecastWrittenEvent is published after forecast datapoints are written to
// the predicted store.
type ForecastWrittenEvent struct {
	ConfigID  string `json:"config_id"`
	Realm     string `json:"realm"`
	AssetID   string `json:"asset_id"`
	Attribute string `json:"attribute"`
	Count     int    `json:"count"`
	FromMs    int64  `json:"from_ms"`
	ToMs      int64  `json:"to_ms"`
}
