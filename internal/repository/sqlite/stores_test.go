package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
)

func newTestStores(t *testing.T) *repository.Stores {
	t.Helper()
	stores, err := NewStores(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close(context.Background()) })
	return stores
}

func TestRateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	_, ok, err := stores.Rates.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	rate := models.Rate{BuyingFatRate: 7.5, SellingFatRate: 8.2, MilkResaleRate: 50}
	require.NoError(t, stores.Rates.Set(ctx, rate))
	require.NoError(t, stores.Rates.Set(ctx, models.Rate{BuyingFatRate: 7.8, SellingFatRate: 8.2, MilkResaleRate: 52}))

	got, ok, err := stores.Rates.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7.8, got.BuyingFatRate)
	assert.Equal(t, 52.0, got.MilkResaleRate)
}

func TestMemberStoreHistory(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	joined := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

	require.NoError(t, stores.Members.Insert(ctx, models.Member{ID: "m2", Name: "ramesh", JoinDate: joined}))
	require.NoError(t, stores.Members.Insert(ctx, models.Member{ID: "m1", Name: "jeet", JoinDate: joined}))

	all, err := stores.Members.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "jeet", all[0].Name)
	assert.Empty(t, all[0].History)

	m, err := stores.Members.FindByName(ctx, "ramesh")
	require.NoError(t, err)
	assert.True(t, joined.Equal(m.JoinDate))

	_, err = stores.Members.FindByName(ctx, "Ramesh")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	m.History = append(m.History, models.CollectionRecord{ID: "r1", Name: "ramesh", MilkQty: 12, FatPercent: 5.6, AmountToPay: 504})
	require.NoError(t, stores.Members.Update(ctx, m))

	m, err = stores.Members.FindByID(ctx, "m2")
	require.NoError(t, err)
	require.Len(t, m.History, 1)
	assert.Equal(t, 504.0, m.History[0].AmountToPay)

	require.NoError(t, stores.Members.ClearHistory(ctx, "m2"))
	m, err = stores.Members.FindByID(ctx, "m2")
	require.NoError(t, err)
	assert.Empty(t, m.History)

	require.NoError(t, stores.Members.Delete(ctx, "m2"))
	assert.ErrorIs(t, stores.Members.Delete(ctx, "m2"), repository.ErrNotFound)
	assert.ErrorIs(t, stores.Members.Update(ctx, m), repository.ErrNotFound)
}

func TestSessionStoreFactoryEntry(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	older := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	newer := older.Add(12 * time.Hour)

	first := models.CollectionSession{ID: "s1", Timestamp: older, Records: []models.CollectionRecord{{ID: "r1", Name: "jeet", MilkQty: 10}}}
	second := models.CollectionSession{ID: "s2", Timestamp: newer, IsNight: true}
	require.NoError(t, stores.Sessions.Insert(ctx, first))
	require.NoError(t, stores.Sessions.Insert(ctx, second))

	all, err := stores.Sessions.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "s2", all[0].ID)
	assert.True(t, all[0].IsNight)
	assert.Nil(t, all[0].FactoryEntry)

	first.FactoryEntry = &models.CollectionRecord{ID: "f1", Name: "factory", MilkQty: 9, FatPercent: 4}
	require.NoError(t, stores.Sessions.Update(ctx, first))

	got, err := stores.Sessions.GetByID(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.FactoryEntry)
	assert.Equal(t, 9.0, got.FactoryEntry.MilkQty)
	require.Len(t, got.Records, 1)

	got.FactoryEntry = nil
	require.NoError(t, stores.Sessions.Update(ctx, got))
	got, err = stores.Sessions.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got.FactoryEntry)

	require.NoError(t, stores.Sessions.Delete(ctx, "s1"))
	_, err = stores.Sessions.GetByID(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordStoreNewestFirst(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	base := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

	require.NoError(t, stores.Records.Insert(ctx, models.CollectionRecord{ID: "a", Name: "jeet", Timestamp: base}))
	require.NoError(t, stores.Records.Insert(ctx, models.CollectionRecord{ID: "b", Name: "ramesh", Timestamp: base.Add(time.Minute), IsNight: true}))

	records, err := stores.Records.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
	assert.True(t, records[0].IsNight)
}
