package provider

import (
	"errors"
	"testing"
	"time"

	"AssetCast/internal/domain/models"
	domsvc "AssetCast/internal/domain/service"
)

func TestFactoryBuildsVariantProviders(t *testing.T) {
	f := NewFactory("http://models:8000", 10*time.Second)

	for _, cfg := range []models.ModelConfig{
		{ID: "p", Kind: models.ModelKindProphet, Prophet: &models.ProphetParams{}},
		{ID: "x", Kind: models.ModelKindXGBoost, XGBoost: &models.XGBoostParams{}},
	} {
		p, err := f.ProviderFor(cfg)
		if err != nil {
			t.Fatalf("%s: %v", cfg.Kind, err)
		}
		hp, ok := p.(*HTTPModelProvider)
		if !ok || hp.kind != cfg.Kind {
			t.Fatalf("%s: wrong provider %T", cfg.Kind, p)
		}
	}
}

func TestFactoryRejectsMismatchedVariant(t *testing.T) {
	f := NewFactory("http://models:8000", 0)

	cases := []models.ModelConfig{
		{ID: "a", Kind: models.ModelKindProphet},                                   // kind without payload
		{ID: "b", Kind: models.ModelKindXGBoost, Prophet: &models.ProphetParams{}}, // wrong payload
		{ID: "c", Kind: "arima"},                                                   // unknown kind
	}
	for _, cfg := range cases {
		_, err := f.ProviderFor(cfg)
		var ce *domsvc.ConstructionError
		if !errors.As(err, &ce) {
			t.Fatalf("config %s: expected ConstructionError, got %v", cfg.ID, err)
		}
		if ce.Kind != cfg.Kind {
			t.Fatalf("config %s: error kind %q, want %q", cfg.ID, ce.Kind, cfg.Kind)
		}
	}
}

func TestFactoryRequiresServiceURL(t *testing.T) {
	f := NewFactory("", 0)
	_, err := f.ProviderFor(models.ModelConfig{Kind: models.ModelKindProphet, Prophet: &models.ProphetParams{}})
	var ce *domsvc.ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConstructionError, got %v", err)
	}
}
