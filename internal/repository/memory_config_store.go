package repository

import (
	"context"
	"sync"

	"AssetCast/internal/domain/models"
	domrepo "AssetCast/internal/domain/repository"
)

// MemoryConfigStore is the non-persistent ConfigStore backend for local runs
// and tests.
type MemoryConfigStore struct {
	mu      sync.RWMutex
	configs map[string]models.ModelConfig
}

func NewMemoryConfigStore() *MemoryConfigStore {
	return &MemoryConfigStore{configs: map[string]models.ModelConfig{}}
}

func (s *MemoryConfigStore) GetAll(_ context.Context, realm string) ([]models.ModelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ModelConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		if realm != "" && cfg.Realm != realm {
			continue
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (s *MemoryConfigStore) Get(_ context.Context, id string) (models.ModelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[id]
	if !ok {
		return models.ModelConfig{}, domrepo.ErrConfigNotFound
	}
	return cfg, nil
}

func (s *MemoryConfigStore) Put(_ context.Context, cfg models.ModelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = cfg
	return nil
}

func (s *MemoryConfigStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, id)
	return nil
}
