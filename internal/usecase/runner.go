package usecase

import (
	"context"
	"fmt"
	"time"

	"AssetCast/internal/domain/models"
	domrepo "AssetCast/internal/domain/repository"
	domsvc "AssetCast/internal/domain/service"
	applogger "AssetCast/pkg/logger"
	"AssetCast/pkg/timeutil"
)

// Runner executes a single training or forecast tick for one config. Errors
// it returns are per-execution: the scheduler logs them and waits for the
// next natural tick, never retries within the tick.
type Runner struct {
	chunker   *Chunker
	aligner   *Aligner
	predicted domrepo.PredictedStore
	events    domrepo.EventPublisher // nil disables publishing
	providers domsvc.ProviderFactory
	metrics   domrepo.Metrics
	l         *applogger.Logger
	now       func() time.Time
}

func NewRunner(
	chunker *Chunker,
	aligner *Aligner,
	predicted domrepo.PredictedStore,
	events domrepo.EventPublisher,
	providers domsvc.ProviderFactory,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *Runner {
	if l == nil {
		l = applogger.Nop()
	}
	return &Runner{
		chunker:   chunker,
		aligner:   aligner,
		predicted: predicted,
		events:    events,
		providers: providers,
		metrics:   metrics,
		l:         l,
		now:       time.Now,
	}
}

// Train pulls aligned training data and hands it to the config's provider.
// Absence of data is an expected steady state (a brand-new asset) and ends
// the tick quietly; data-quality and provider failures surface as errors.
func (r *Runner) Train(ctx context.Context, cfg models.ModelConfig) error {
	freq, err := timeutil.ParseFrequency(cfg.ForecastFrequency)
	if err != nil {
		r.l.Error("config has invalid forecast frequency",
			applogger.String("config", cfg.ID),
			applogger.String("frequency", cfg.ForecastFrequency),
			applogger.Error(err),
		)
		return err
	}
	nowMs := r.now().UnixMilli()

	targetPoints, err := r.chunker.GetHistorical(ctx, cfg.Target.AssetID, cfg.Target.Attribute, cfg.Target.CutoffMs, nowMs)
	if err != nil || len(targetPoints) == 0 {
		r.l.Warn("no target data available, skipping training tick",
			applogger.String("config", cfg.ID),
			applogger.String("asset", cfg.Target.AssetID),
			applogger.String("attribute", cfg.Target.Attribute),
			applogger.Error(err),
		)
		return nil
	}

	set := models.TrainingSet{
		Target: models.FeatureSeries{Name: cfg.Target.Attribute, Points: targetPoints},
	}
	for _, reg := range cfg.Regressors() {
		points, err := r.chunker.GetHistorical(ctx, reg.AssetID, reg.Attribute, reg.CutoffMs, nowMs)
		if err != nil {
			// Retrieval failure surfaces as "no data"; alignment drops the
			// empty regressor with its own warning.
			r.l.Warn("regressor retrieval failed",
				applogger.String("config", cfg.ID),
				applogger.String("attribute", reg.Attribute),
				applogger.Error(err),
			)
			points = nil
		}
		set.Regressors = append(set.Regressors, models.FeatureSeries{Name: reg.Attribute, Points: points})
	}

	frame, err := r.aligner.AlignTrainingData(set, freq)
	if err != nil {
		r.l.Error("training data failed quality checks",
			applogger.String("config", cfg.ID),
			applogger.String("kind", string(cfg.Kind)),
			applogger.Error(err),
		)
		return err
	}
	if frame.Empty() {
		r.l.Warn("aligned training frame empty, cannot train",
			applogger.String("config", cfg.ID))
		return nil
	}

	provider, err := r.providers.ProviderFor(cfg)
	if err != nil {
		r.l.Error("provider construction failed",
			applogger.String("config", cfg.ID),
			applogger.String("kind", string(cfg.Kind)),
			applogger.String("interval", cfg.TrainingInterval),
			applogger.Error(err),
		)
		return err
	}
	model, err := provider.Train(ctx, frame)
	if err != nil {
		r.l.Error("model training failed",
			applogger.String("config", cfg.ID),
			applogger.String("kind", string(cfg.Kind)),
			applogger.String("interval", cfg.TrainingInterval),
			applogger.Error(err),
		)
		return err
	}
	if model == nil {
		r.l.Warn("provider returned no model", applogger.String("config", cfg.ID))
		return nil
	}
	if err := provider.Save(ctx, model); err != nil {
		r.l.Error("model save failed",
			applogger.String("config", cfg.ID),
			applogger.String("model", model.ID),
			applogger.Error(err),
		)
		return err
	}
	r.l.Info("model trained",
		applogger.String("config", cfg.ID),
		applogger.String("model", model.ID),
		applogger.Int("rows", frame.NumRows()),
	)
	return nil
}

// Forecast builds the regressor set for the future window, delegates to the
// provider, and writes the result datapoints to the predicted store. A config
// that declares regressors which cannot be aligned fails the tick hard.
func (r *Runner) Forecast(ctx context.Context, cfg models.ModelConfig) error {
	freq, err := timeutil.ParseFrequency(cfg.ForecastFrequency)
	if err != nil {
		r.l.Error("config has invalid forecast frequency",
			applogger.String("config", cfg.ID),
			applogger.String("frequency", cfg.ForecastFrequency),
			applogger.Error(err),
		)
		return err
	}
	now := r.now()
	future := timeutil.FutureTimestamps(now, cfg.ForecastHorizon, freq)
	if len(future) == 0 {
		return fmt.Errorf("config %s: empty forecast horizon", cfg.ID)
	}

	regs := cfg.Regressors()
	var regFrame *models.Frame
	if len(regs) > 0 {
		fs := models.ForecastSet{}
		for _, reg := range regs {
			points, err := r.predicted.GetPredicted(ctx, reg.AssetID, reg.Attribute, now.UnixMilli(), future[len(future)-1])
			if err != nil {
				r.l.Warn("predicted regressor retrieval failed",
					applogger.String("config", cfg.ID),
					applogger.String("attribute", reg.Attribute),
					applogger.Error(err),
				)
				points = nil
			}
			fs.Regressors = append(fs.Regressors, models.FeatureSeries{Name: reg.Attribute, Points: points})
		}
		regFrame, err = r.aligner.AlignForecastData(future, fs, freq)
		if err != nil {
			// Forecasting without declared regressors would be a silent
			// partial result; abort this tick instead.
			r.l.Error("forecast regressor set could not be produced",
				applogger.String("config", cfg.ID),
				applogger.Error(err),
			)
			return err
		}
	}

	provider, err := r.providers.ProviderFor(cfg)
	if err != nil {
		r.l.Error("provider construction failed",
			applogger.String("config", cfg.ID),
			applogger.String("kind", string(cfg.Kind)),
			applogger.String("interval", cfg.ForecastInterval),
			applogger.Error(err),
		)
		return err
	}
	points, err := provider.Forecast(ctx, future, regFrame)
	if err != nil {
		r.l.Error("forecast failed",
			applogger.String("config", cfg.ID),
			applogger.String("kind", string(cfg.Kind)),
			applogger.String("interval", cfg.ForecastInterval),
			applogger.Error(err),
		)
		return err
	}
	if len(points) == 0 {
		r.l.Warn("provider returned no forecast datapoints", applogger.String("config", cfg.ID))
		return nil
	}

	if err := r.predicted.WritePredicted(ctx, cfg.Target.AssetID, cfg.Target.Attribute, points); err != nil {
		r.l.Error("predicted datapoint write failed",
			applogger.String("config", cfg.ID),
			applogger.Int("points", len(points)),
			applogger.Error(err),
		)
		return err
	}
	if r.metrics != nil {
		r.metrics.RecordDatapointsWritten(len(points))
	}
	r.l.Info("forecast written",
		applogger.String("config", cfg.ID),
		applogger.String("asset", cfg.Target.AssetID),
		applogger.String("attribute", cfg.Target.Attribute),
		applogger.Int("points", len(points)),
	)

	if r.events != nil {
		evt := models.ForecastWrittenEvent{
			ConfigID:  cfg.ID,
			Realm:     cfg.Realm,
			AssetID:   cfg.Target.AssetID,
			Attribute: cfg.Target.Attribute,
			Count:     len(points),
			FromMs:    future[0],
			ToMs:      future[len(future)-1],
		}
		if err := r.events.PublishForecastWritten(ctx, evt); err != nil {
			r.l.Warn("forecast event publish failed",
				applogger.String("config", cfg.ID), applogger.Error(err))
		}
	}
	return nil
}

// SetClock overrides the wall clock, for tests.
func (r *Runner) SetClock(now func() time.Time) { r.now = now }
