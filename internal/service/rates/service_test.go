package rates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository/memory"
)

func TestServiceGetUnset(t *testing.T) {
	svc := NewService(memory.NewRateStore(), nil)

	rate, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Rate{}, rate)

	_, err = svc.RequireBuying(context.Background())
	assert.ErrorIs(t, err, ErrRateNotConfigured)
	_, err = svc.RequireProduction(context.Background())
	assert.ErrorIs(t, err, ErrRateNotConfigured)
}

func TestServiceSet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRateStore(), nil)
	fixed := time.Date(2025, 5, 4, 7, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stored, err := svc.Set(ctx, models.Rate{BuyingFatRate: 7.5, MilkResaleRate: 50})
	require.NoError(t, err)
	assert.Equal(t, fixed, stored.UpdatedAt)

	rate, err := svc.RequireBuying(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7.5, rate.BuyingFatRate)

	_, err = svc.RequireProduction(ctx)
	assert.ErrorIs(t, err, ErrRateNotConfigured)

	_, err = svc.Set(ctx, models.Rate{BuyingFatRate: -1})
	assert.ErrorIs(t, err, ErrInvalidRate)

	rate, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7.5, rate.BuyingFatRate)
}
