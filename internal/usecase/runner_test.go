package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"AssetCast/internal/domain/models"
	domsvc "AssetCast/internal/domain/service"
)

type stubSource struct {
	data map[string][]models.Datapoint // keyed by assetID/attribute
}

func (s *stubSource) GetHistorical(_ context.Context, assetID, attribute string, _, _ int64) ([]models.Datapoint, error) {
	return s.data[assetID+"/"+attribute], nil
}

type memPredicted struct {
	reads  map[string][]models.Datapoint
	writes map[string][]models.Datapoint
	err    error
}

func newMemPredicted() *memPredicted {
	return &memPredicted{
		reads:  map[string][]models.Datapoint{},
		writes: map[string][]models.Datapoint{},
	}
}

func (m *memPredicted) GetPredicted(_ context.Context, assetID, attribute string, _, _ int64) ([]models.Datapoint, error) {
	return m.reads[assetID+"/"+attribute], nil
}

func (m *memPredicted) WritePredicted(_ context.Context, assetID, attribute string, points []models.Datapoint) error {
	if m.err != nil {
		return m.err
	}
	m.writes[assetID+"/"+attribute] = append(m.writes[assetID+"/"+attribute], points...)
	return nil
}

type fakeProvider struct {
	trained    []*models.Frame
	saved      []*domsvc.TrainedModel
	forecastTs [][]int64
	trainErr   error
}

func (p *fakeProvider) Train(_ context.Context, data *models.Frame) (*domsvc.TrainedModel, error) {
	if p.trainErr != nil {
		return nil, p.trainErr
	}
	p.trained = append(p.trained, data)
	return &domsvc.TrainedModel{ID: "m-1", Kind: models.ModelKindProphet}, nil
}

func (p *fakeProvider) Forecast(_ context.Context, timestamps []int64, _ *models.Frame) ([]models.Datapoint, error) {
	p.forecastTs = append(p.forecastTs, timestamps)
	out := make([]models.Datapoint, len(timestamps))
	for i, ts := range timestamps {
		out[i] = models.Datapoint{Timestamp: ts, Value: models.Float(float64(i))}
	}
	return out, nil
}

func (p *fakeProvider) Save(_ context.Context, m *domsvc.TrainedModel) error {
	p.saved = append(p.saved, m)
	return nil
}

func (p *fakeProvider) Load(context.Context, string) (*domsvc.TrainedModel, error) {
	return nil, errors.New("not implemented")
}

type stubFactory struct {
	provider *fakeProvider
	err      error
}

func (f *stubFactory) ProviderFor(models.ModelConfig) (domsvc.ModelProvider, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.provider, nil
}

type capturePublisher struct {
	events []models.ForecastWrittenEvent
}

func (c *capturePublisher) PublishForecastWritten(_ context.Context, evt models.ForecastWrittenEvent) error {
	c.events = append(c.events, evt)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func runnerConfig() models.ModelConfig {
	return models.ModelConfig{
		ID:      "cfg-1",
		Realm:   "test",
		Enabled: true,
		Kind:    models.ModelKindProphet,
		Target:  models.FeatureRef{AssetID: "plant", Attribute: "power", CutoffMs: msAt(2024, time.June, 1)},
		Prophet: &models.ProphetParams{
			ExtraRegressors: []models.FeatureRef{
				{AssetID: "station", Attribute: "temp", CutoffMs: msAt(2024, time.June, 1)},
			},
		},
		TrainingInterval:  "PT1H",
		ForecastInterval:  "PT1H",
		ForecastHorizon:   6,
		ForecastFrequency: "1h",
	}
}

func fixedRunner(src *stubSource, pred *memPredicted, factory *stubFactory, pub *capturePublisher, now time.Time) *Runner {
	r := NewRunner(NewChunker(src, nil), NewAligner(nil), pred, nil, factory, nil, nil)
	if pub != nil {
		r.events = pub
	}
	r.SetClock(func() time.Time { return now })
	return r
}

func TestRunnerTrainHappyPath(t *testing.T) {
	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(48 * time.Hour)
	src := &stubSource{data: map[string][]models.Datapoint{
		"plant/power":  hourly(start, 48, 100),
		"station/temp": hourly(start, 48, 20),
	}}
	provider := &fakeProvider{}
	r := fixedRunner(src, newMemPredicted(), &stubFactory{provider: provider}, nil, now)

	if err := r.Train(context.Background(), runnerConfig()); err != nil {
		t.Fatalf("train: %v", err)
	}
	if len(provider.trained) != 1 {
		t.Fatalf("expected 1 training run, got %d", len(provider.trained))
	}
	frame := provider.trained[0]
	if frame.Column("power") == nil || frame.Column("temp") == nil {
		t.Fatalf("aligned frame missing columns: %v", frame.Columns)
	}
	if len(provider.saved) != 1 || provider.saved[0].ID != "m-1" {
		t.Fatalf("trained model must be saved, got %+v", provider.saved)
	}
}

func TestRunnerTrainSkipsWithoutData(t *testing.T) {
	now := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	src := &stubSource{data: map[string][]models.Datapoint{}}
	provider := &fakeProvider{}
	r := fixedRunner(src, newMemPredicted(), &stubFactory{provider: provider}, nil, now)

	// A brand-new asset has no history yet; the tick ends quietly.
	if err := r.Train(context.Background(), runnerConfig()); err != nil {
		t.Fatalf("absence of data must not be an error: %v", err)
	}
	if len(provider.trained) != 0 {
		t.Fatalf("provider must not be invoked without data")
	}
}

func TestRunnerTrainProviderConstructionFails(t *testing.T) {
	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	src := &stubSource{data: map[string][]models.Datapoint{
		"plant/power":  hourly(start, 48, 100),
		"station/temp": hourly(start, 48, 20),
	}}
	wantErr := &domsvc.ConstructionError{Kind: models.ModelKindProphet, Err: errors.New("no backend")}
	r := fixedRunner(src, newMemPredicted(), &stubFactory{err: wantErr}, nil, start.Add(48*time.Hour))

	err := r.Train(context.Background(), runnerConfig())
	var ce *domsvc.ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConstructionError, got %v", err)
	}
}

func TestRunnerTrainRejectsInvalidFrequency(t *testing.T) {
	cfg := runnerConfig()
	cfg.ForecastFrequency = "soon"
	r := fixedRunner(&stubSource{}, newMemPredicted(), &stubFactory{provider: &fakeProvider{}}, nil, time.Now())
	if err := r.Train(context.Background(), cfg); err == nil {
		t.Fatalf("invalid frequency must fail the tick")
	}
}

func TestRunnerForecastWritesAndPublishes(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 30, 0, 0, time.UTC)
	cfg := runnerConfig()
	cfg.Prophet = &models.ProphetParams{} // no regressors

	pred := newMemPredicted()
	pub := &capturePublisher{}
	provider := &fakeProvider{}
	r := fixedRunner(&stubSource{}, pred, &stubFactory{provider: provider}, pub, now)

	if err := r.Forecast(context.Background(), cfg); err != nil {
		t.Fatalf("forecast: %v", err)
	}

	if len(provider.forecastTs) != 1 {
		t.Fatalf("expected 1 forecast call, got %d", len(provider.forecastTs))
	}
	ts := provider.forecastTs[0]
	if len(ts) != cfg.ForecastHorizon {
		t.Fatalf("expected %d future timestamps, got %d", cfg.ForecastHorizon, len(ts))
	}
	if ts[0] <= now.UnixMilli() {
		t.Fatalf("first forecast timestamp %d not strictly in the future of %d", ts[0], now.UnixMilli())
	}

	written := pred.writes["plant/power"]
	if len(written) != cfg.ForecastHorizon {
		t.Fatalf("expected %d written datapoints, got %d", cfg.ForecastHorizon, len(written))
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.ConfigID != cfg.ID || evt.Count != cfg.ForecastHorizon {
		t.Fatalf("event mismatch: %+v", evt)
	}
}

func TestRunnerForecastRegressorQualityFatal(t *testing.T) {
	now := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	cfg := runnerConfig()

	// Predicted regressor data lies far beyond the horizon window, so the
	// aligned regressor column is materially incomplete.
	pred := newMemPredicted()
	pred.reads["station/temp"] = hourly(now.Add(1000*time.Hour), 5, 20)
	provider := &fakeProvider{}
	r := fixedRunner(&stubSource{}, pred, &stubFactory{provider: provider}, nil, now)

	err := r.Forecast(context.Background(), cfg)
	var dq *DataQualityError
	if !errors.As(err, &dq) {
		t.Fatalf("expected DataQualityError, got %v", err)
	}
	if len(provider.forecastTs) != 0 {
		t.Fatalf("provider must not run on incomplete regressors")
	}
	if len(pred.writes) != 0 {
		t.Fatalf("nothing must be written on a failed tick")
	}
}

func TestRunnerForecastWriteFailureSurfaces(t *testing.T) {
	now := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	cfg := runnerConfig()
	cfg.Prophet = &models.ProphetParams{}

	pred := newMemPredicted()
	pred.err = errors.New("store unavailable")
	pub := &capturePublisher{}
	r := fixedRunner(&stubSource{}, pred, &stubFactory{provider: &fakeProvider{}}, pub, now)

	if err := r.Forecast(context.Background(), cfg); err == nil {
		t.Fatalf("write failure must fail the tick")
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event may be published when the write failed")
	}
}
