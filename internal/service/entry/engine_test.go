package entry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository/memory"
	"github.com/mamadbah2/dairy/internal/service/rates"
)

type fixture struct {
	engine   *Engine
	rates    *rates.Service
	members  *memory.MemberStore
	records  *memory.RecordStore
	sessions *memory.SessionStore
	drafts   *memory.DraftStore
}

func newFixture(t *testing.T, buyingRate float64, memberNames ...string) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		rates:    rates.NewService(memory.NewRateStore(), nil),
		members:  memory.NewMemberStore(),
		records:  memory.NewRecordStore(),
		sessions: memory.NewSessionStore(),
		drafts:   memory.NewDraftStore(),
	}
	if buyingRate > 0 {
		_, err := f.rates.Set(ctx, models.Rate{BuyingFatRate: buyingRate})
		require.NoError(t, err)
	}
	joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range memberNames {
		require.NoError(t, f.members.Insert(ctx, models.Member{ID: name, Name: name, JoinDate: joined.Add(time.Duration(i) * time.Hour)}))
	}

	saver := NewSaver(f.records, f.members, f.sessions, nil)
	f.engine = NewEngine(f.rates, f.members, f.drafts, saver, time.UTC, nil)
	return f
}

func setRow(fat, milk string) func(models.RowState) models.RowState {
	return func(r models.RowState) models.RowState {
		r.FatRate = fat
		r.MilkQty = milk
		return r
	}
}

func TestProcessSpokenInputCreatesRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7.5)

	res := f.engine.ProcessSpokenInput(ctx, "ramesh 12, 5.6")
	require.True(t, res.Applied)
	assert.True(t, res.Created)

	snap := f.engine.Snapshot(ctx)
	require.Len(t, snap.Rows, 1)
	row := snap.Rows[0]
	assert.Equal(t, 1, row.SerialNo)
	assert.Equal(t, "ramesh", row.Name)
	assert.Equal(t, "12", row.MilkQty)
	assert.Equal(t, "5.6", row.FatRate)
	assert.Equal(t, 504.0, row.Amount)
}

func TestProcessSpokenInputOverwritesMatchedRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7.5, "jeet", "ramesh")
	_, err := f.engine.InitializeFromStore(ctx)
	require.NoError(t, err)

	res := f.engine.ProcessSpokenInput(ctx, "rameshh 12, 5.6")
	require.True(t, res.Applied)
	assert.False(t, res.Created)
	assert.Equal(t, 1, res.Index)

	res = f.engine.ProcessSpokenInput(ctx, "ramesh 10")
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, "10", res.Row.MilkQty)
	assert.Equal(t, "5.6", res.Row.FatRate, "fat is kept when none was spoken")
	assert.Equal(t, 420.0, res.Row.Amount)

	res = f.engine.ProcessSpokenInput(ctx, "dudh 12, 4")
	assert.False(t, res.Applied)

	res = f.engine.ProcessSpokenInput(ctx, "xyz123longname 3")
	assert.True(t, res.Created)
	assert.Equal(t, 3, res.Row.SerialNo)

	assert.Len(t, f.engine.Snapshot(ctx).Rows, 3)
}

func TestProcessSpokenInputSkipsBlankRows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7.5)
	f.engine.AddEmptyRow(ctx)

	res := f.engine.ProcessSpokenInput(ctx, "ram 5, 4")
	require.True(t, res.Applied)
	assert.True(t, res.Created)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, "ram", res.Row.Name)

	rows := f.engine.Snapshot(ctx).Rows
	require.Len(t, rows, 2)
	assert.Equal(t, models.RowState{SerialNo: 1}, rows[0])
}

func TestInitializeAndAddRows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7.5, "ramesh", "jeet")

	snap, err := f.engine.InitializeFromStore(ctx)
	require.NoError(t, err)
	assert.True(t, snap.InitFromMembers)
	assert.True(t, snap.RateConfigured)
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, models.RowState{SerialNo: 1, Name: "jeet"}, snap.Rows[0])
	assert.Equal(t, models.RowState{SerialNo: 2, Name: "ramesh"}, snap.Rows[1])

	row := f.engine.AddEmptyRow(ctx)
	assert.Equal(t, 3, row.SerialNo)

	draft, err := f.drafts.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, draft, 3)
}

func TestUpdateRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.engine.AddEmptyRow(ctx)

	row, err := f.engine.UpdateRow(ctx, 0, setRow("5", "10"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, row.Amount, "amount stays zero without a rate")

	_, err = f.rates.Set(ctx, models.Rate{BuyingFatRate: 7.3})
	require.NoError(t, err)

	row, err = f.engine.UpdateRow(ctx, 0, setRow("4.1", "3.3"))
	require.NoError(t, err)
	assert.Equal(t, 98.77, row.Amount)

	row, err = f.engine.UpdateRow(ctx, 0, setRow("oops", "3.3"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, row.Amount)

	_, err = f.engine.UpdateRow(ctx, 1, setRow("1", "1"))
	assert.ErrorIs(t, err, ErrRowIndexOutOfRange)
	_, err = f.engine.UpdateRow(ctx, -1, setRow("1", "1"))
	assert.ErrorIs(t, err, ErrRowIndexOutOfRange)
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	for i := 0; i < 3; i++ {
		f.engine.AddEmptyRow(ctx)
	}
	_, _ = f.engine.UpdateRow(ctx, 0, setRow("4", "10"))
	_, _ = f.engine.UpdateRow(ctx, 1, setRow("", "8"))
	_, _ = f.engine.UpdateRow(ctx, 2, setRow("6", "abc"))

	totals := f.engine.Totals()
	assert.Equal(t, 18.0, totals.TotalMilk)
	assert.Equal(t, 5.0, totals.AvgFat)

	var sum float64
	for _, r := range f.engine.Snapshot(ctx).Rows {
		sum += r.Amount
	}
	assert.Equal(t, sum, totals.TotalAmount)
	assert.Equal(t, 80.0, totals.TotalAmount)

	require.NoError(t, f.engine.Discard(ctx))
	assert.Equal(t, models.RowTotals{}, f.engine.Totals())
}

func TestSaveRequiresRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.engine.ProcessSpokenInput(ctx, "ramesh 12, 5.6")

	_, err := f.engine.Save(ctx)
	assert.ErrorIs(t, err, rates.ErrRateNotConfigured)
	assert.Len(t, f.engine.Snapshot(ctx).Rows, 1)
}

func TestSaveEmptyCreatesNoSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7.5)

	res, err := f.engine.Save(ctx)
	require.NoError(t, err)
	assert.Nil(t, res.Session)

	sessions, err := f.sessions.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSavePartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7.5, "jeet", "ramesh")
	f.records.FailOn = "ramesh"
	f.engine.now = func() time.Time { return time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC) }

	_, err := f.engine.InitializeFromStore(ctx)
	require.NoError(t, err)
	f.engine.AddEmptyRow(ctx)
	_, err = f.engine.UpdateRow(ctx, 0, setRow("5.6", "12"))
	require.NoError(t, err)
	_, err = f.engine.UpdateRow(ctx, 1, setRow("4", "10"))
	require.NoError(t, err)

	res, err := f.engine.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Saved)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, res.SessionStored)
	require.NotNil(t, res.Session)
	assert.True(t, res.Session.IsNight)
	require.Len(t, res.Session.Records, 3, "blank rows are kept")

	blank := res.Session.Records[2]
	assert.Equal(t, 0.0, blank.MilkQty)
	assert.Equal(t, 0.0, blank.AmountToPay)

	stored, err := f.sessions.GetByID(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Records, 3)

	records, err := f.records.All(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	jeet, err := f.members.FindByID(ctx, "jeet")
	require.NoError(t, err)
	require.Len(t, jeet.History, 1)
	assert.Equal(t, 504.0, jeet.History[0].AmountToPay)

	ramesh, err := f.members.FindByID(ctx, "ramesh")
	require.NoError(t, err)
	assert.Empty(t, ramesh.History)

	assert.Empty(t, f.engine.Snapshot(ctx).Rows)
	draft, err := f.drafts.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, draft)
}

func TestSaveHistoryNeedsExactName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7.5, "jeet")
	f.engine.now = func() time.Time { return time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC) }

	f.engine.AddEmptyRow(ctx)
	_, err := f.engine.UpdateRow(ctx, 0, func(r models.RowState) models.RowState {
		r.Name = "Jeet"
		r.FatRate = "5"
		r.MilkQty = "2"
		return r
	})
	require.NoError(t, err)

	res, err := f.engine.Save(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.False(t, res.Session.IsNight)

	jeet, err := f.members.FindByID(ctx, "jeet")
	require.NoError(t, err)
	assert.Empty(t, jeet.History)
}

func TestSaveSessionFailureStillClearsDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7.5)
	f.sessions.FailInsert = true
	f.engine.ProcessSpokenInput(ctx, "ramesh 12, 5.6")

	res, err := f.engine.Save(ctx)
	require.NoError(t, err)
	assert.False(t, res.SessionStored)
	assert.Equal(t, 1, res.Saved)

	draft, err := f.drafts.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, draft)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("from draft", func(t *testing.T) {
		f := newFixture(t, 7.5, "jeet")
		require.NoError(t, f.drafts.Save(ctx, []models.RowState{{SerialNo: 1, Name: "kamla", MilkQty: "4"}}))

		require.NoError(t, f.engine.Restore(ctx))
		snap := f.engine.Snapshot(ctx)
		require.Len(t, snap.Rows, 1)
		assert.Equal(t, "kamla", snap.Rows[0].Name)
		assert.False(t, snap.InitFromMembers)
	})

	t.Run("from members", func(t *testing.T) {
		f := newFixture(t, 7.5, "jeet", "ramesh")

		require.NoError(t, f.engine.Restore(ctx))
		snap := f.engine.Snapshot(ctx)
		require.Len(t, snap.Rows, 2)
		assert.True(t, snap.InitFromMembers)
	})
}

func TestIsNightShift(t *testing.T) {
	assert.False(t, IsNightShift(time.Date(2025, 1, 1, 11, 59, 0, 0, time.UTC)))
	assert.True(t, IsNightShift(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)))
}
