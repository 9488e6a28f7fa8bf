package members

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
	"github.com/mamadbah2/dairy/internal/repository/memory"
)

func newTestService() (*Service, *repository.Stores) {
	stores := memory.NewStores()
	return NewService(stores.Members, stores.Sessions, nil), stores
}

func TestAddListRemove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Add(ctx, "   ")
	assert.ErrorIs(t, err, ErrBlankName)

	ramesh, err := svc.Add(ctx, "  ramesh ")
	require.NoError(t, err)
	assert.Equal(t, "ramesh", ramesh.Name)
	assert.NotEmpty(t, ramesh.ID)
	assert.Empty(t, ramesh.History)

	_, err = svc.Add(ctx, "jeet")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "jeet", list[0].Name)

	require.NoError(t, svc.Remove(ctx, ramesh.ID))
	_, err = svc.Get(ctx, ramesh.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, stores := newTestService()

	_, err := src.Add(ctx, "jeet")
	require.NoError(t, err)
	session := models.CollectionSession{
		ID:        "s1",
		Timestamp: time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC),
		Records:   []models.CollectionRecord{{ID: "r1", Name: "jeet", MilkQty: 10, FatPercent: 5, AmountToPay: 375}},
	}
	require.NoError(t, stores.Sessions.Insert(ctx, session))

	var buf bytes.Buffer
	require.NoError(t, src.ExportAll(ctx, &buf))

	var archive map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &archive))
	assert.Contains(t, archive, "entries")
	assert.Contains(t, archive, "members")

	dst, dstStores := newTestService()
	res, err := dst.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{MembersAdded: 1, SessionsAdded: 1, HistoryAppended: 1}, res)

	jeet, err := dstStores.Members.FindByName(ctx, "jeet")
	require.NoError(t, err)
	require.Len(t, jeet.History, 1)
	assert.Equal(t, 375.0, jeet.History[0].AmountToPay)

	got, err := dstStores.Sessions.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got.Records, 1)
}

func TestImportSameArchiveTwice(t *testing.T) {
	ctx := context.Background()
	svc, stores := newTestService()
	archive := `{"members":[{"id":"m1","name":"jeet"}],` +
		`"entries":[{"id":"s1","timestamp":"2025-03-01T06:00:00Z","list_of_entry":[{"id":"r1","name":"jeet","milk_qty":10}]}]}`

	_, err := svc.Import(ctx, strings.NewReader(archive))
	require.NoError(t, err)

	res, err := svc.Import(ctx, strings.NewReader(archive))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{MembersSkipped: 1, SessionsAdded: 1, HistoryAppended: 1}, res)

	sessions, err := stores.Sessions.All(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestImportMembersOnlyDedupsByName(t *testing.T) {
	ctx := context.Background()
	svc, stores := newTestService()
	_, err := svc.Add(ctx, "jeet")
	require.NoError(t, err)

	input := `  [{"id":"x1","name":"jeet","date_of_join":"2025-01-01T00:00:00Z","history":[]},{"name":"kamla"}]`
	res, err := svc.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, res.MembersAdded)
	assert.Equal(t, 1, res.MembersSkipped)

	all, err := stores.Members.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	kamla, err := stores.Members.FindByName(ctx, "kamla")
	require.NoError(t, err)
	assert.NotEmpty(t, kamla.ID)
	assert.False(t, kamla.JoinDate.IsZero())
}

func TestImportRejections(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Import(ctx, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyArchive)

	_, err = svc.Import(ctx, strings.NewReader(`{"entries":[],"members":[]}`))
	assert.ErrorIs(t, err, ErrEmptyArchive)

	_, err = svc.Import(ctx, strings.NewReader("name,milk\njeet,10"))
	assert.ErrorIs(t, err, ErrUnrecognizedArchive)

	_, err = svc.Import(ctx, strings.NewReader(`[{"name": `))
	assert.ErrorIs(t, err, ErrUnrecognizedArchive)
}

func TestExportMembers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	_, err := svc.Add(ctx, "jeet")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportMembers(ctx, &buf))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "["))

	assert.ErrorIs(t, svc.ClearHistory(ctx, "missing"), repository.ErrNotFound)
}
