package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"garage-backend/internal/cache"
	"garage-backend/internal/models"
	"garage-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type SystemSettingService struct {
	Repo *repositories.SettingRepository
}

func NewSystemSettingService(repo *repositories.SettingRepository) *SystemSettingService {
	return &SystemSettingService{Repo: repo}
}

func (s *SystemSettingService) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	return s.Repo.Get(ctx, key)
}

func (s *SystemSettingService) List(ctx context.Context) ([]*models.SystemSetting, error) {
	return s.Repo.List(ctx)
}

func (s *SystemSettingService) Set(ctx context.Context, key, value string) error {
	if key == models.SettingKeyLoyaltyConfig {
		// Reject unparseable config at write time so reads never have to.
		var cfg models.LoyaltyConfig
		if err := json.Unmarshal([]byte(value), &cfg); err != nil {
			return fmt.Errorf("invalid loyalty config: %w", err)
		}
		if cfg.PointsPerCurrencyUnit < 0 {
			return fmt.Errorf("invalid loyalty config: points_per_currency_unit must be >= 0")
		}
	}
	if err := s.Repo.Set(ctx, key, value); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.LoyaltyConfigKey)
	return nil
}

// LoyaltyConfig returns the current loyalty configuration. Absent or
// unreadable settings fall back to the default table so rendering never
// blocks on a missing row. Implements the loyalty service's ConfigSource.
func (s *SystemSettingService) LoyaltyConfig(ctx context.Context) (models.LoyaltyConfig, error) {
	var cfg models.LoyaltyConfig
	if cache.GetJSON(ctx, cache.LoyaltyConfigKey, &cfg) {
		return cfg, nil
	}

	setting, err := s.Repo.Get(ctx, models.SettingKeyLoyaltyConfig)
	if err != nil {
		if err == pgx.ErrNoRows {
			return models.DefaultLoyaltyConfig(), nil
		}
		return models.LoyaltyConfig{}, err
	}

	if err := json.Unmarshal([]byte(setting.Value), &cfg); err != nil {
		// A malformed stored value should not take the loyalty pages down.
		log.Printf("[Settings] Stored loyalty config unreadable, using defaults: %v", err)
		return models.DefaultLoyaltyConfig(), nil
	}
	if cfg.Tiers == nil {
		cfg.Tiers = models.DefaultLoyaltyConfig().Tiers
	}

	cache.SetJSON(ctx, cache.LoyaltyConfigKey, cfg, 10*time.Minute)
	return cfg, nil
}
