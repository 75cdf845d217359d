package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Len(t, next, 26)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestAtStampsTime(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 8_000_000, time.UTC)

	got, err := ulid.ParseStrict(At(ts))
	require.NoError(t, err)
	assert.True(t, ulid.Time(got.Time()).Equal(ts))
}

func TestAtSameMillisecondIsSortable(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	a, b := At(ts), At(ts)
	assert.Less(t, a, b)
}
