package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedClock(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewFixed(start)

	assert.Equal(t, start, c.Now())
	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())
}

func TestSystemClockIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, New().Now().Location())
}

func TestUTC(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2024, 1, 1, 15, 0, 0, 0, zone)

	got := UTC(local)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 10, got.Hour())
	assert.True(t, UTC(time.Time{}).IsZero())
	assert.Nil(t, UTCPtr(nil))
}

func TestParse(t *testing.T) {
	t.Run("naive value is coerced to UTC", func(t *testing.T) {
		got, err := Parse("2024-05-10T08:30:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC), got)
	})

	t.Run("offset value is converted", func(t *testing.T) {
		got, err := Parse("2024-05-10T08:30:00+02:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 10, 6, 30, 0, 0, time.UTC), got)
	})

	t.Run("date only", func(t *testing.T) {
		got, err := Parse("2024-05-10")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Parse("yesterday")
		assert.Error(t, err)
	})
}
