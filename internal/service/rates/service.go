// Package rates reads and writes the single active fat and resale rate.
package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
)

var (
	// ErrRateNotConfigured blocks flows that need a rate which is still zero.
	ErrRateNotConfigured = errors.New("rate not set")
	// ErrInvalidRate rejects negative rates.
	ErrInvalidRate = errors.New("rates must not be negative")
)

// Service exposes the rate store to the other services.
type Service struct {
	store  repository.RateStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new rate service instance.
func NewService(store repository.RateStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Get returns the active rate. An unset rate is returned as the zero Rate.
func (s *Service) Get(ctx context.Context) (models.Rate, error) {
	rate, ok, err := s.store.Get(ctx)
	if err != nil {
		return models.Rate{}, fmt.Errorf("load rate: %w", err)
	}
	if !ok {
		return models.Rate{}, nil
	}
	return rate, nil
}

// Set replaces all three rates at once.
func (s *Service) Set(ctx context.Context, rate models.Rate) (models.Rate, error) {
	if rate.BuyingFatRate < 0 || rate.SellingFatRate < 0 || rate.MilkResaleRate < 0 {
		return models.Rate{}, ErrInvalidRate
	}
	rate.UpdatedAt = s.now().UTC()
	if err := s.store.Set(ctx, rate); err != nil {
		return models.Rate{}, fmt.Errorf("store rate: %w", err)
	}
	s.logger.Info("rates updated",
		zap.Float64("buying_fat_rate", rate.BuyingFatRate),
		zap.Float64("selling_fat_rate", rate.SellingFatRate),
		zap.Float64("milk_resale_rate", rate.MilkResaleRate),
	)
	return rate, nil
}

// RequireBuying returns the rate or ErrRateNotConfigured when the buying fat
// rate is unset.
func (s *Service) RequireBuying(ctx context.Context) (models.Rate, error) {
	rate, err := s.Get(ctx)
	if err != nil {
		return models.Rate{}, err
	}
	if !rate.BuyingConfigured() {
		return rate, ErrRateNotConfigured
	}
	return rate, nil
}

// RequireProduction returns the rate or ErrRateNotConfigured when the selling
// fat rate is unset.
func (s *Service) RequireProduction(ctx context.Context) (models.Rate, error) {
	rate, err := s.Get(ctx)
	if err != nil {
		return models.Rate{}, err
	}
	if !rate.ProductionConfigured() {
		return rate, ErrRateNotConfigured
	}
	return rate, nil
}
