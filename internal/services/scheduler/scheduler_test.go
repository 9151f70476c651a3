package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	"AssetCast/internal/domain/models"
	domrepo "AssetCast/internal/domain/repository"
	domsvc "AssetCast/internal/domain/service"
	"AssetCast/internal/usecase"
)

type fakeConfigStore struct {
	mu      sync.Mutex
	configs map[string]models.ModelConfig
	err     error
}

func newFakeConfigStore(configs ...models.ModelConfig) *fakeConfigStore {
	s := &fakeConfigStore{configs: map[string]models.ModelConfig{}}
	for _, c := range configs {
		s.configs[c.ID] = c
	}
	return s
}

func (s *fakeConfigStore) GetAll(_ context.Context, _ string) ([]models.ModelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.ModelConfig, 0, len(s.configs))
	for _, c := range s.configs {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeConfigStore) Get(_ context.Context, id string) (models.ModelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.configs[id]
	if !ok {
		return models.ModelConfig{}, domrepo.ErrConfigNotFound
	}
	return c, nil
}

func (s *fakeConfigStore) Put(_ context.Context, cfg models.ModelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = cfg
	return nil
}

func (s *fakeConfigStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, id)
	return nil
}

type nopHistorical struct{}

func (nopHistorical) GetHistorical(context.Context, string, string, int64, int64) ([]models.Datapoint, error) {
	return nil, nil
}

type nopPredicted struct{}

func (nopPredicted) GetPredicted(context.Context, string, string, int64, int64) ([]models.Datapoint, error) {
	return nil, nil
}

func (nopPredicted) WritePredicted(context.Context, string, string, []models.Datapoint) error {
	return nil
}

type nopFactory struct{}

func (nopFactory) ProviderFor(models.ModelConfig) (domsvc.ModelProvider, error) {
	return nil, &domsvc.ConstructionError{Kind: "none"}
}

// newTestService wires a Service around fakes and puts it into the running
// state without starting the cron loop, so Reconcile can be driven by hand.
func newTestService(store domrepo.ConfigStore) *Service {
	runner := usecase.NewRunner(
		usecase.NewChunker(nopHistorical{}, nil),
		usecase.NewAligner(nil),
		nopPredicted{},
		nil,
		nopFactory{},
		nil,
		nil,
	)
	s := New(Config{PollInterval: time.Hour, Realm: "test"}, store, runner, nil, nil)
	s.running = true
	s.c = cron.New()
	return s
}

func testConfig(id string) models.ModelConfig {
	return models.ModelConfig{
		ID:                id,
		Realm:             "test",
		Name:              id,
		Enabled:           true,
		Kind:              models.ModelKindProphet,
		Target:            models.FeatureRef{AssetID: "asset-1", Attribute: "power"},
		Prophet:           &models.ProphetParams{},
		TrainingInterval:  "PT1H",
		ForecastInterval:  "PT30M",
		ForecastHorizon:   24,
		ForecastFrequency: "1h",
	}
}

func snapshot(s *Service) map[string]entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]entry{}
	for id, e := range s.jobs {
		out[id] = *e
	}
	return out
}

func TestReconcileCreatesJobPairPerConfig(t *testing.T) {
	store := newFakeConfigStore(testConfig("c1"), testConfig("c2"))
	s := newTestService(store)

	s.Reconcile(context.Background())
	if got := s.JobCount(); got != 4 {
		t.Fatalf("expected 4 jobs for 2 configs, got %d", got)
	}

	jobs := snapshot(s)
	train, ok := jobs[JobID(KindTraining, "c1")]
	if !ok {
		t.Fatalf("training job for c1 missing: %v", jobs)
	}
	if train.seconds != 3600 {
		t.Fatalf("training trigger = %ds, want 3600", train.seconds)
	}
	forecast, ok := jobs[JobID(KindForecast, "c1")]
	if !ok {
		t.Fatalf("forecast job for c1 missing")
	}
	if forecast.seconds != 1800 {
		t.Fatalf("forecast trigger = %ds, want 1800", forecast.seconds)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newFakeConfigStore(testConfig("c1"))
	s := newTestService(store)

	s.Reconcile(context.Background())
	before := snapshot(s)

	// Unchanged configs must survive a second tick with the same triggers.
	s.Reconcile(context.Background())
	after := snapshot(s)

	if len(before) != len(after) {
		t.Fatalf("job count changed: %d -> %d", len(before), len(after))
	}
	for id, b := range before {
		a, ok := after[id]
		if !ok {
			t.Fatalf("job %s disappeared", id)
		}
		if a.cronID != b.cronID {
			t.Fatalf("job %s was rescheduled without a config change", id)
		}
	}
}

func TestReconcileReplacesOnIntervalChange(t *testing.T) {
	cfg := testConfig("c1")
	store := newFakeConfigStore(cfg)
	s := newTestService(store)

	s.Reconcile(context.Background())
	before := snapshot(s)[JobID(KindTraining, "c1")]
	if before.seconds != 3600 {
		t.Fatalf("initial trigger = %ds, want 3600", before.seconds)
	}

	cfg.TrainingInterval = "PT2H"
	_ = store.Put(context.Background(), cfg)
	s.Reconcile(context.Background())

	after, ok := snapshot(s)[JobID(KindTraining, "c1")]
	if !ok {
		t.Fatalf("job must keep its identity across a reschedule")
	}
	if after.seconds != 7200 {
		t.Fatalf("trigger = %ds after change, want 7200", after.seconds)
	}
	if after.cronID == before.cronID {
		t.Fatalf("changed config must re-arm the trigger")
	}
}

func TestReconcileRemovesOrphanedJobs(t *testing.T) {
	store := newFakeConfigStore(testConfig("c1"), testConfig("c2"))
	s := newTestService(store)

	s.Reconcile(context.Background())
	if got := s.JobCount(); got != 4 {
		t.Fatalf("expected 4 jobs, got %d", got)
	}

	_ = store.Delete(context.Background(), "c1")
	s.Reconcile(context.Background())

	jobs := snapshot(s)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs after delete, got %d", len(jobs))
	}
	for _, kind := range []string{KindTraining, KindForecast} {
		if _, ok := jobs[JobID(kind, "c1")]; ok {
			t.Fatalf("%s job for deleted config survived", kind)
		}
	}
}

func TestReconcileRemovesDisabledConfig(t *testing.T) {
	cfg := testConfig("c1")
	store := newFakeConfigStore(cfg)
	s := newTestService(store)

	s.Reconcile(context.Background())
	if got := s.JobCount(); got != 2 {
		t.Fatalf("expected 2 jobs, got %d", got)
	}

	cfg.Enabled = false
	_ = store.Put(context.Background(), cfg)
	s.Reconcile(context.Background())

	if got := s.JobCount(); got != 0 {
		t.Fatalf("disabled config must lose its jobs, still have %d", got)
	}
}

func TestReconcileSkipsInvalidInterval(t *testing.T) {
	bad := testConfig("bad")
	bad.TrainingInterval = "every hour"
	store := newFakeConfigStore(bad, testConfig("ok"))
	s := newTestService(store)

	s.Reconcile(context.Background())

	jobs := snapshot(s)
	if _, ok := jobs[JobID(KindTraining, "bad")]; ok {
		t.Fatalf("unparseable interval must not be scheduled")
	}
	// The valid interval of the same config and the other config still run.
	if _, ok := jobs[JobID(KindForecast, "bad")]; !ok {
		t.Fatalf("valid forecast interval must be scheduled despite bad sibling")
	}
	if _, ok := jobs[JobID(KindTraining, "ok")]; !ok {
		t.Fatalf("healthy config must be unaffected")
	}
}

func TestReconcileToleratesStoreFailure(t *testing.T) {
	store := newFakeConfigStore(testConfig("c1"))
	s := newTestService(store)
	s.Reconcile(context.Background())
	if got := s.JobCount(); got != 2 {
		t.Fatalf("expected 2 jobs, got %d", got)
	}

	// A failed poll keeps the previous schedule instead of tearing it down.
	store.mu.Lock()
	store.err = context.DeadlineExceeded
	store.mu.Unlock()
	s.Reconcile(context.Background())
	if got := s.JobCount(); got != 2 {
		t.Fatalf("failed poll must not drop jobs, have %d", got)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	store := newFakeConfigStore()
	s := New(Config{PollInterval: time.Hour}, store, usecase.NewRunner(
		usecase.NewChunker(nopHistorical{}, nil),
		usecase.NewAligner(nil),
		nopPredicted{}, nil, nopFactory{}, nil, nil,
	), nil, nil)

	s.Start()
	s.Start() // logged and ignored

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	s.Stop(ctx) // no-op

	if got := s.JobCount(); got != 0 {
		t.Fatalf("stopped scheduler holds %d jobs", got)
	}
}
