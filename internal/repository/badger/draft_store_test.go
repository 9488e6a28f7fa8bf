package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairy/internal/domain/models"
)

func TestDraftStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rows, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	draft := []models.RowState{
		{SerialNo: 1, Name: "jeet", FatRate: "5.6", MilkQty: "12", Amount: 504},
		{SerialNo: 2, Name: "ramesh"},
	}
	require.NoError(t, store.Save(ctx, draft))

	rows, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, draft, rows)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	rows, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDraftStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, []models.RowState{{SerialNo: 1, Name: "kamla", MilkQty: "8"}}))
	require.NoError(t, store.Close())

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	rows, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kamla", rows[0].Name)
}
