package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockUntimed(t *testing.T) {
	c := NewClock(nil)

	assert.False(t, c.Timed())
	_, ok := c.Remaining(White)
	assert.False(t, ok)
	assert.False(t, c.Flagged(White))
	assert.False(t, c.Flagged(Black))

	// Deltas are ignored entirely
	c.Delta(White, -1000)
	assert.False(t, c.Flagged(White))
}

func TestClockDelta(t *testing.T) {
	seconds := 300
	c := NewClock(&seconds)

	require.True(t, c.Timed())
	w, ok := c.Remaining(White)
	require.True(t, ok)
	assert.Equal(t, 300, w)

	c.Delta(White, -60)
	w, _ = c.Remaining(White)
	assert.Equal(t, 240, w)

	// Black's clock is independent
	b, _ := c.Remaining(Black)
	assert.Equal(t, 300, b)

	c.Delta(White, 30)
	w, _ = c.Remaining(White)
	assert.Equal(t, 270, w)
}

func TestClockClampsAtZero(t *testing.T) {
	seconds := 60
	c := NewClock(&seconds)

	c.Delta(White, -1000)
	w, _ := c.Remaining(White)
	assert.Equal(t, 0, w)
	assert.True(t, c.Flagged(White))
	assert.False(t, c.Flagged(Black))
}

func TestClockAtZeroIgnoresDeltas(t *testing.T) {
	seconds := 10
	c := NewClock(&seconds)

	c.Delta(Black, -10)
	require.True(t, c.Flagged(Black))

	// A flagged clock cannot be revived
	c.Delta(Black, 60)
	b, _ := c.Remaining(Black)
	assert.Equal(t, 0, b)
	assert.True(t, c.Flagged(Black))
}
