package repository

import (
	"context"
	"errors"
	"testing"

	"AssetCast/internal/domain/models"
	domrepo "AssetCast/internal/domain/repository"
)

func TestMemoryConfigStoreCRUD(t *testing.T) {
	s := NewMemoryConfigStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, domrepo.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}

	cfg := models.ModelConfig{ID: "c1", Realm: "alpha", Kind: models.ModelKindProphet, Enabled: true}
	if err := s.Put(ctx, cfg); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Equal(cfg) {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	// Realm filtering on GetAll.
	_ = s.Put(ctx, models.ModelConfig{ID: "c2", Realm: "beta"})
	all, err := s.GetAll(ctx, "alpha")
	if err != nil {
		t.Fatalf("getall: %v", err)
	}
	if len(all) != 1 || all[0].ID != "c1" {
		t.Fatalf("realm filter failed: %+v", all)
	}
	all, _ = s.GetAll(ctx, "")
	if len(all) != 2 {
		t.Fatalf("empty realm must return everything, got %d", len(all))
	}

	if err := s.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "c1"); !errors.Is(err, domrepo.ErrConfigNotFound) {
		t.Fatalf("deleted config must be gone, got %v", err)
	}
}
