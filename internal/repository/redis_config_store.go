package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"AssetCast/internal/domain/models"
	domrepo "AssetCast/internal/domain/repository"
	"AssetCast/pkg/cache"
	applogger "AssetCast/pkg/logger"
)

const configKeyPrefix = "config"

// RedisConfigStore persists ModelConfigs as JSON values in Redis, one key per
// config. Configs have no TTL; deletion is explicit.
type RedisConfigStore struct {
	cache *cache.RedisCache
	l     *applogger.Logger
}

func NewRedisConfigStore(c *cache.RedisCache, l *applogger.Logger) *RedisConfigStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &RedisConfigStore{cache: c, l: l}
}

func (s *RedisConfigStore) GetAll(ctx context.Context, realm string) ([]models.ModelConfig, error) {
	raw, err := s.cache.List(ctx, cache.BuildPattern(configKeyPrefix+":"))
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	out := make([]models.ModelConfig, 0, len(raw))
	for key, val := range raw {
		var cfg models.ModelConfig
		if err := json.Unmarshal([]byte(val), &cfg); err != nil {
			// One corrupt record must not hide the rest.
			s.l.Error("skipping undecodable config record",
				applogger.String("key", key), applogger.Error(err))
			continue
		}
		if realm != "" && cfg.Realm != realm {
			continue
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (s *RedisConfigStore) Get(ctx context.Context, id string) (models.ModelConfig, error) {
	var cfg models.ModelConfig
	err := s.cache.Get(ctx, cache.GenerateKey(configKeyPrefix, id), &cfg)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.ModelConfig{}, domrepo.ErrConfigNotFound
		}
		return models.ModelConfig{}, fmt.Errorf("get config %s: %w", id, err)
	}
	return cfg, nil
}

func (s *RedisConfigStore) Put(ctx context.Context, cfg models.ModelConfig) error {
	if cfg.ID == "" {
		return fmt.Errorf("config id is required")
	}
	if err := s.cache.Set(ctx, cache.GenerateKey(configKeyPrefix, cfg.ID), cfg, 0); err != nil {
		return fmt.Errorf("put config %s: %w", cfg.ID, err)
	}
	return nil
}

func (s *RedisConfigStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, cache.GenerateKey(configKeyPrefix, id)); err != nil {
		return fmt.Errorf("delete config %s: %w", id, err)
	}
	return nil
}
