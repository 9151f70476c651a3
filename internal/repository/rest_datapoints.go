package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"AssetCast/internal/domain/models"
	"AssetCast/internal/service/ratelimit"
	xhttp "AssetCast/pkg/http"
	applogger "AssetCast/pkg/logger"
)

// RESTDatapointStore implements DatapointStore against the upstream asset
// data API. Requests are rate-limited client-side so scheduler bursts never
// trip the upstream quota.
type RESTDatapointStore struct {
	client  *xhttp.Client
	baseURL string
	token   string
	limiter *ratelimit.Limiter
	rps     float64
	l       *applogger.Logger
}

type RESTConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls; 0 disables limiting.
	RequestsPerSecond float64
}

func NewRESTDatapointStore(cfg RESTConfig, l *applogger.Logger) *RESTDatapointStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &RESTDatapointStore{
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		limiter: ratelimit.New(),
		rps:     cfg.RequestsPerSecond,
		l:       l,
	}
}

func (s *RESTDatapointStore) Init(ctx context.Context) error {
	return s.Health(ctx)
}

func (s *RESTDatapointStore) Health(ctx context.Context) error {
	return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     s.baseURL + "/healthz",
		Headers: s.headers(),
	}, nil)
}

func (s *RESTDatapointStore) GetHistorical(ctx context.Context, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error) {
	return s.getRange(ctx, "data", assetID, attribute, fromMs, toMs)
}

func (s *RESTDatapointStore) GetPredicted(ctx context.Context, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error) {
	return s.getRange(ctx, "predictions", assetID, attribute, fromMs, toMs)
}

func (s *RESTDatapointStore) getRange(ctx context.Context, kind, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	var out []models.Datapoint
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     s.endpoint(assetID, attribute, kind),
		Headers: s.headers(),
		QueryParams: map[string][]string{
			"from": {strconv.FormatInt(fromMs, 10)},
			"to":   {strconv.FormatInt(toMs, 10)},
		},
	}, &out)
	if err != nil {
		s.l.Error("datapoint api request failed",
			applogger.String("kind", kind),
			applogger.String("asset", assetID),
			applogger.String("attribute", attribute),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	s.l.Debug("datapoint api request ok",
		applogger.String("kind", kind),
		applogger.String("asset", assetID),
		applogger.String("attribute", attribute),
		applogger.Int("points", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *RESTDatapointStore) WritePredicted(ctx context.Context, assetID, attribute string, points []models.Datapoint) error {
	if len(points) == 0 {
		return nil
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     s.endpoint(assetID, attribute, "predictions"),
		Headers: s.headers(),
		Body:    points,
	}, nil)
	if err != nil {
		return fmt.Errorf("write predictions: %w", err)
	}
	return nil
}

func (s *RESTDatapointStore) Close() error { return nil }

func (s *RESTDatapointStore) endpoint(assetID, attribute, kind string) string {
	return fmt.Sprintf("%s/assets/%s/attributes/%s/%s",
		s.baseURL, url.PathEscape(assetID), url.PathEscape(attribute), kind)
}

func (s *RESTDatapointStore) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if s.token != "" {
		h["Authorization"] = "Bearer " + s.token
	}
	return h
}

// wait blocks until a rate-limit token is available or ctx expires.
func (s *RESTDatapointStore) wait(ctx context.Context) error {
	if s.rps <= 0 {
		return nil
	}
	for !s.limiter.Allow("datapoints", s.rps, s.rps) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}
