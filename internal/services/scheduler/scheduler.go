package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"AssetCast/internal/domain/models"
	domrepo "AssetCast/internal/domain/repository"
	"AssetCast/internal/usecase"
	applogger "AssetCast/pkg/logger"
	"AssetCast/pkg/pool"
	"AssetCast/pkg/timeutil"
)

// Job kinds. The scheduler owns one job of each kind per enabled config.
const (
	KindTraining = "training"
	KindForecast = "forecast"
)

const pollJobID = "config-poll"

// JobID derives the deterministic schedule id for a kind/config pair.
func JobID(kind, configID string) string { return kind + ":" + configID }

// Config tunes the scheduler service.
type Config struct {
	PollInterval time.Duration // config reconciliation cadence
	GracePeriod  time.Duration // max lateness before a tick is skipped
	Realm        string        // optional tenant filter for config polling
	QueueSize    int
}

type entry struct {
	cronID  cron.EntryID
	kind    string
	cfg     models.ModelConfig
	seconds int64
}

// Service owns the trigger table and the two execution pools. Configs are
// polled on the I/O pool; training and forecast ticks run on a single-worker
// CPU pool so a slow model run can never starve the poll heartbeat, and at
// most one execution runs at a time system-wide.
type Service struct {
	cfg     Config
	store   domrepo.ConfigStore
	runner  *usecase.Runner
	metrics domrepo.Metrics
	l       *applogger.Logger

	ioPool  *pool.Pool
	cpuPool *pool.Pool

	// mu serializes the diff-and-apply of a poll tick against start/stop.
	mu      sync.Mutex
	c       *cron.Cron
	jobs    map[string]*entry
	running bool
}

func New(cfg Config, store domrepo.ConfigStore, runner *usecase.Runner, metrics domrepo.Metrics, l *applogger.Logger) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = 5 * time.Minute
	}
	if l == nil {
		l = applogger.Nop()
	}
	s := &Service{
		cfg:     cfg,
		store:   store,
		runner:  runner,
		metrics: metrics,
		l:       l,
		jobs:    map[string]*entry{},
	}
	s.ioPool = pool.New(pool.Config{Name: "io", Workers: 1, QueueSize: 4}, l)
	s.cpuPool = pool.New(pool.Config{
		Name:        "cpu",
		Workers:     1,
		QueueSize:   cfg.QueueSize,
		MaxLateness: cfg.GracePeriod,
	}, l)
	return s
}

// Start begins polling and triggering. Starting a running scheduler logs a
// warning and returns.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.l.Warn("scheduler already running, ignoring start")
		return
	}
	s.running = true
	s.jobs = map[string]*entry{}

	s.ioPool.Start()
	s.cpuPool.Start()

	s.c = cron.New()
	s.c.Schedule(cron.Every(s.cfg.PollInterval), cron.FuncJob(s.enqueuePoll))
	s.c.Start()

	// First reconcile without waiting a full poll interval.
	s.enqueuePoll()

	s.l.Info("scheduler started",
		applogger.Duration("poll_interval_ms", s.cfg.PollInterval),
		applogger.Duration("grace_ms", s.cfg.GracePeriod),
		applogger.String("realm", s.cfg.Realm),
	)
}

// Stop halts triggering and lets in-flight work finish within ctx. A poll
// tick in progress completes its diff-and-apply before the lock is taken.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	c := s.c
	s.c = nil
	s.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	s.ioPool.Stop(ctx)
	s.cpuPool.Stop(ctx)
	s.l.Info("scheduler stopped")
}

func (s *Service) enqueuePoll() {
	s.ioPool.Submit(pollJobID, func(ctx context.Context) {
		s.Reconcile(ctx)
	})
}

// Reconcile is one poll tick: read all configs, diff against live jobs, and
// create/replace/remove schedules so that no job exists without a live,
// enabled config backing it. The whole diff-and-apply is atomic with respect
// to start/stop and other ticks.
func (s *Service) Reconcile(ctx context.Context) {
	configs, err := s.store.GetAll(ctx, s.cfg.Realm)
	if err != nil {
		s.l.Error("config poll failed", applogger.Error(err))
		if s.metrics != nil {
			s.metrics.RecordError("config_poll")
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.c == nil {
		return
	}

	type desiredJob struct {
		kind     string
		cfg      models.ModelConfig
		interval string
	}
	desired := map[string]desiredJob{}
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		desired[JobID(KindTraining, cfg.ID)] = desiredJob{KindTraining, cfg, cfg.TrainingInterval}
		desired[JobID(KindForecast, cfg.ID)] = desiredJob{KindForecast, cfg, cfg.ForecastInterval}
	}

	created, replaced, removed := 0, 0, 0
	for id, want := range desired {
		existing, ok := s.jobs[id]
		if ok && existing.cfg.Equal(want.cfg) {
			continue // unchanged config: never tear down a running trigger
		}

		seconds, err := timeutil.ParseDuration(want.interval)
		if err != nil || seconds <= 0 {
			// Misconfiguration is fatal for this config's schedule only.
			s.l.Error("invalid schedule interval, config not scheduled",
				applogger.String("job", id),
				applogger.String("interval", want.interval),
				applogger.Error(err),
			)
			if ok {
				s.c.Remove(existing.cronID)
				delete(s.jobs, id)
				removed++
			}
			continue
		}

		if ok {
			s.c.Remove(existing.cronID)
			replaced++
		} else {
			created++
		}
		kind, cfg, jobID := want.kind, want.cfg, id
		cronID := s.c.Schedule(
			cron.Every(time.Duration(seconds)*time.Second),
			cron.FuncJob(func() { s.dispatch(kind, jobID, cfg) }),
		)
		s.jobs[id] = &entry{cronID: cronID, kind: kind, cfg: cfg, seconds: seconds}
	}

	for id, e := range s.jobs {
		if _, want := desired[id]; !want {
			s.c.Remove(e.cronID)
			delete(s.jobs, id)
			removed++
		}
	}

	if s.metrics != nil {
		s.metrics.RecordReconcile(created, replaced, removed)
		s.metrics.SetJobsLive(len(s.jobs))
	}
	if created+replaced+removed > 0 {
		s.l.Info("schedule reconciled",
			applogger.Int("created", created),
			applogger.Int("replaced", replaced),
			applogger.Int("removed", removed),
			applogger.Int("jobs", len(s.jobs)),
		)
	}
}

// dispatch hands one tick to the CPU pool. Overlapping ticks of the same job
// are coalesced by the pool; results feed metrics but never escalate.
func (s *Service) dispatch(kind, jobID string, cfg models.ModelConfig) {
	s.cpuPool.Submit(jobID, func(ctx context.Context) {
		start := time.Now()
		var err error
		switch kind {
		case KindTraining:
			err = s.runner.Train(ctx, cfg)
		case KindForecast:
			err = s.runner.Forecast(ctx, cfg)
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		if s.metrics != nil {
			s.metrics.RecordExecution(kind, outcome, time.Since(start).Seconds())
		}
	})
}

// JobCount returns the number of live scheduled jobs.
func (s *Service) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
