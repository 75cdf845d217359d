package store

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/optsim/errs"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "closes.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='closes'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "closes", name)
}

func TestSQLitePutAndCloses(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, []Close{
		{Symbol: "^TWII", Day: day(2024, 1, 3), Close: 101},
		{Symbol: "^TWII", Day: day(2024, 1, 2), Close: 100},
		{Symbol: "2330.TW", Day: day(2024, 1, 2), Close: 590},
	}))

	got, err := s.Closes(ctx, "^TWII", day(2024, 1, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Day.Equal(day(2024, 1, 2)))
	assert.Equal(t, 100.0, got[0].Close)
	assert.Equal(t, 101.0, got[1].Close)

	// upsert replaces the close for an existing day
	require.NoError(t, s.Put(ctx, []Close{{Symbol: "^TWII", Day: day(2024, 1, 3), Close: 102}}))
	got, err = s.Closes(ctx, "^TWII", day(2024, 1, 3))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 102.0, got[0].Close)
}

func TestSQLitePutRejectsNonPositive(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	err := s.Put(context.Background(), []Close{
		{Symbol: "X", Day: day(2024, 1, 2), Close: 10},
		{Symbol: "X", Day: day(2024, 1, 3), Close: 0},
	})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	got, err := s.Closes(context.Background(), "X", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLitePutRejectsNonFinite(t *testing.T) {
	t.Parallel()

	for _, bad := range []float64{math.Inf(1), math.NaN()} {
		s, _ := newTestSQLite(t)
		err := s.Put(context.Background(), []Close{
			{Symbol: "X", Day: day(2024, 1, 2), Close: 10},
			{Symbol: "X", Day: day(2024, 1, 3), Close: bad},
		})
		assert.ErrorIs(t, err, errs.ErrInvalidArgument, "close=%v", bad)

		got, err := s.Closes(context.Background(), "X", time.Time{})
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestSQLiteFetch(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, []Close{
		{Symbol: "^TWII", Day: day(2022, 6, 1), Close: 1},
		{Symbol: "^TWII", Day: day(2024, 6, 26), Close: 100},
		{Symbol: "^TWII", Day: day(2024, 6, 27), Close: 110},
		{Symbol: "^TWII", Day: day(2024, 6, 28), Close: 99},
	}))

	q, err := s.Fetch(ctx, "^TWII")
	require.NoError(t, err)
	assert.Equal(t, 99.0, q.LastPrice)
	assert.Equal(t, 3, q.Observations)
	assert.InDelta(t, 0.1*math.Sqrt(252), q.Volatility, 1e-12)
	assert.True(t, q.AsOf.Equal(day(2024, 6, 28)))
}

func TestSQLiteFetchUnknownSymbol(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	_, err := s.Fetch(context.Background(), "NOPE")
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
}

func TestSQLiteFetchSingleClose(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	require.NoError(t, s.Put(context.Background(), []Close{{Symbol: "ONE", Day: day(2024, 1, 2), Close: 5}}))

	_, err := s.Fetch(context.Background(), "ONE")
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
}

func TestReadCSV(t *testing.T) {
	in := "date,close\n2024-01-02,100.5\n2024-01-03T00:00:00Z, 101\n"

	got, err := ReadCSV(strings.NewReader(in), "^TWII")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "^TWII", got[0].Symbol)
	assert.True(t, got[0].Day.Equal(day(2024, 1, 2)))
	assert.Equal(t, 100.5, got[0].Close)
	assert.True(t, got[1].Day.Equal(day(2024, 1, 3)))
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"short row", "2024-01-02\n"},
		{"bad date", "01/02/2024,100\n"},
		{"bad close", "2024-01-02,abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), "X")
			assert.Error(t, err)
		})
	}
}
