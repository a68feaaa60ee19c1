package game

// Clock tracks the remaining time for both sides of a timed match, in whole
// seconds. An untimed match carries a clock that ignores every delta.
//
// The clock never consumes wall-clock time itself: the transport layer applies
// a signed delta once per move. Reaching zero is a terminal signal consumed by
// the match's result derivation, not enforced here.
type Clock struct {
	timed     bool
	remaining map[Side]int
}

// NewClock creates a clock granting each side secondsPerSide seconds. A nil
// value means the match is untimed.
func NewClock(secondsPerSide *int) *Clock {
	c := &Clock{remaining: map[Side]int{}}
	if secondsPerSide != nil {
		c.timed = true
		c.remaining[White] = *secondsPerSide
		c.remaining[Black] = *secondsPerSide
	}
	return c
}

// Timed reports whether the match has time controls at all.
func (c *Clock) Timed() bool { return c.timed }

// Remaining returns the seconds left for a side. The second return value is
// false for untimed matches.
func (c *Clock) Remaining(side Side) (int, bool) {
	if !c.timed {
		return 0, false
	}
	return c.remaining[side], true
}

// Flagged reports whether a side's clock has hit zero.
func (c *Clock) Flagged(side Side) bool {
	return c.timed && c.remaining[side] == 0
}

// Delta adds seconds (positive or negative) to a side's remaining time.
// No-op for untimed matches and for sides already at zero. A decrement that
// would drive the counter negative clamps it to exactly zero.
func (c *Clock) Delta(side Side, seconds int) {
	if !c.timed {
		return
	}
	if c.remaining[side] == 0 {
		return
	}
	if seconds < 0 && c.remaining[side]+seconds < 0 {
		c.remaining[side] = 0
		return
	}
	c.remaining[side] += seconds
}

// setRemaining is used when restoring a match from a snapshot.
func (c *Clock) setRemaining(side Side, seconds int) {
	if c.timed {
		c.remaining[side] = seconds
	}
}
