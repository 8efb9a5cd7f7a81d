package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorsportcal/internal/merge"
	"motorsportcal/internal/model"
	"motorsportcal/internal/series"
	"motorsportcal/internal/store"
)

type fakeProvider struct {
	series model.Series
	events []model.Event
	err    error
	calls  int
}

func (p *fakeProvider) Series() model.Series { return p.series }

func (p *fakeProvider) Events(context.Context, int) ([]model.Event, error) {
	p.calls++
	return p.events, p.err
}

var _ series.Provider = (*fakeProvider)(nil)

func fixedEvents() []model.Event {
	return []model.Event{
		{
			Title:       "Bahrain Grand Prix",
			StartDate:   time.Date(2024, 2, 29, 11, 30, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 3, 2, 17, 0, 0, 0, time.UTC),
			IsConfirmed: true,
		},
	}
}

func TestRunWritesSnapshotsAndLedger(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	p := New(st, merge.StrategyNotEnded)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	f1 := &fakeProvider{series: model.SeriesFormula1, events: fixedEvents()}
	wrc := &fakeProvider{series: model.SeriesWRC, events: []model.Event{}}

	results, err := p.Run(context.Background(), []series.Provider{f1, wrc}, 2024)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, model.SeriesFormula1, results[0].Series)
	assert.True(t, results[0].Updated)
	assert.True(t, results[1].Updated)

	decoded, _, err := st.ReadSnapshot(model.SeriesFormula1, 2024)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Bahrain Grand Prix", decoded[0].Title)

	ledger := st.ReadLedger(now.Add(time.Hour))
	assert.Equal(t, now, ledger.Updates[model.LedgerKey(model.SeriesFormula1, 2024)])
	assert.Equal(t, now, ledger.Updates[model.LedgerKey(model.SeriesWRC, 2024)])
}

func TestRunSecondPassIsNoop(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	p := New(st, merge.StrategyNotEnded)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	f1 := &fakeProvider{series: model.SeriesFormula1, events: fixedEvents()}
	providers := []series.Provider{f1}

	_, err := p.Run(context.Background(), providers, 2024)
	require.NoError(t, err)

	snapshotPath := st.SnapshotPath(model.SeriesFormula1, 2024)
	first, err := os.ReadFile(snapshotPath)
	require.NoError(t, err)

	results, err := p.Run(context.Background(), providers, 2024)
	require.NoError(t, err)
	assert.False(t, results[0].Updated)
	assert.Equal(t, 2, f1.calls)

	second, err := os.ReadFile(snapshotPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunFailingSeriesDoesNotBlockOthers(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	p := New(st, merge.StrategyNotEnded)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	boom := errors.New("feed unavailable")
	broken := &fakeProvider{series: model.SeriesWRC, err: boom}
	f1 := &fakeProvider{series: model.SeriesFormula1, events: fixedEvents()}

	results, err := p.Run(context.Background(), []series.Provider{broken, f1}, 2024)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "wrc")

	assert.ErrorIs(t, results[0].Err, boom)
	assert.False(t, results[0].Updated)
	assert.True(t, results[1].Updated)

	// The healthy series still persisted its snapshot.
	decoded, _, readErr := st.ReadSnapshot(model.SeriesFormula1, 2024)
	require.NoError(t, readErr)
	assert.Len(t, decoded, 1)
}

func TestRunRejectsInvalidEvents(t *testing.T) {
	st := store.New(t.TempDir())
	p := New(st, merge.StrategyNotEnded)

	invalid := &fakeProvider{series: model.SeriesWEC, events: []model.Event{
		{
			Title:     "Backwards",
			StartDate: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}}

	results, err := p.Run(context.Background(), []series.Provider{invalid}, 2024)
	require.Error(t, err)
	assert.False(t, results[0].Updated)

	// Nothing was persisted for the failed series.
	events, raw, readErr := st.ReadSnapshot(model.SeriesWEC, 2024)
	require.NoError(t, readErr)
	assert.Nil(t, events)
	assert.Nil(t, raw)
}

func TestRunNoUpdatesLeavesLedgerUntouched(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	p := New(st, merge.StrategyNotEnded)

	broken := &fakeProvider{series: model.SeriesWRC, err: errors.New("down")}

	_, err := p.Run(context.Background(), []series.Provider{broken}, 2024)
	require.Error(t, err)

	_, statErr := os.Stat(dir + "/info.json")
	assert.True(t, os.IsNotExist(statErr))
}
