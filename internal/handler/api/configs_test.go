package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"AssetCast/internal/domain/models"
	"AssetCast/internal/repository"
)

type stubPredicted struct {
	points []models.Datapoint
}

func (s *stubPredicted) GetPredicted(context.Context, string, string, int64, int64) ([]models.Datapoint, error) {
	return s.points, nil
}

func (s *stubPredicted) WritePredicted(context.Context, string, string, []models.Datapoint) error {
	return nil
}

func setupAPI() (*echo.Echo, *repository.MemoryConfigStore) {
	store := repository.NewMemoryConfigStore()
	h := NewConfigsHandler(store, &stubPredicted{points: []models.Datapoint{{Timestamp: 1000}}}, nil, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, store
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const validConfig = `{
    "id": "c1",
    "kind": "prophet",
    "enabled": true,
    "prophet": {},
    "target": {"asset_id": "plant", "attribute": "power"},
    "training_interval": "PT1H",
    "forecast_interval": "PT30M",
    "forecast_horizon": 24,
    "forecast_frequency": "1h"
}`

func TestConfigsCRUDRoundTrip(t *testing.T) {
	e, store := setupAPI()

	if rec := doJSON(e, http.MethodPost, "/api/configs", validConfig); rec.Code != http.StatusOK {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	if cfg, err := store.Get(context.Background(), "c1"); err != nil || cfg.Kind != models.ModelKindProphet {
		t.Fatalf("stored config wrong: %+v err=%v", cfg, err)
	}

	if rec := doJSON(e, http.MethodGet, "/api/configs/c1", ""); rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodDelete, "/api/configs/c1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/api/configs/c1", ""); !strings.Contains(rec.Body.String(), "ERR_NOT_FOUND") {
		t.Fatalf("get after delete must be not found: %s", rec.Body.String())
	}
}

func TestConfigsRejectBadInterval(t *testing.T) {
	e, store := setupAPI()
	body := strings.Replace(validConfig, "PT1H", "every hour", 1)
	rec := doJSON(e, http.MethodPost, "/api/configs", body)
	if !strings.Contains(rec.Body.String(), "ERR_DURATION") {
		t.Fatalf("expected duration validation error, got %s", rec.Body.String())
	}
	if _, err := store.Get(context.Background(), "c1"); err == nil {
		t.Fatalf("invalid config must not be stored")
	}
}

func TestConfigsRejectMissingVariantParams(t *testing.T) {
	e, _ := setupAPI()
	body := strings.Replace(validConfig, `"prophet": {},`, "", 1)
	rec := doJSON(e, http.MethodPost, "/api/configs", body)
	if !strings.Contains(rec.Body.String(), "ERR_VARIANT") {
		t.Fatalf("expected variant validation error, got %s", rec.Body.String())
	}
}

func TestPredictionsEndpoint(t *testing.T) {
	e, _ := setupAPI()
	rec := doJSON(e, http.MethodGet, "/api/assets/plant/attributes/power/predictions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("predictions: status %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("expected one prediction row, got %s", rec.Body.String())
	}
}
