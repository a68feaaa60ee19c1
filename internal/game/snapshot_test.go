package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotDerivedFields(t *testing.T) {
	seconds := 600
	m, err := NewMatch("snap-match", "alice", &seconds)
	require.NoError(t, err)
	require.NoError(t, m.AddPlayer("alice", White))
	applyMoves(t, m, "e4")

	snap := m.Snapshot()

	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.Equal(t, "snap-match", snap.ID)
	assert.Equal(t, "alice", snap.Creator)
	assert.Equal(t, 1, snap.FreeSlots)
	assert.True(t, snap.InProgress)
	assert.Equal(t, ResultInProgress, snap.Result)
	assert.Equal(t, Black, snap.Turn)
	assert.Equal(t, 1, snap.PlyCount)
	assert.Equal(t, "1. e4", snap.PGN)
	assert.Contains(t, snap.FEN, " b ")
	require.NotNil(t, snap.RemainingTime[White])
	assert.Equal(t, 600, *snap.RemainingTime[White])
}

func TestSnapshotRoundTrip(t *testing.T) {
	seconds := 600
	m, err := NewMatch("snap-match", "alice", &seconds)
	require.NoError(t, err)
	require.NoError(t, m.AddPlayer("alice", White))
	require.NoError(t, m.AddPlayer("bob", Black))
	applyMoves(t, m, "e4", "e5", "Nf3")
	m.TimeDelta(White, -45)
	m.OfferDraw(Black)

	// Through JSON, the way the stores persist it
	raw, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	restored, err := FromSnapshot(&snap)
	require.NoError(t, err)

	assert.Equal(t, m.ID(), restored.ID())
	assert.Equal(t, m.Creator(), restored.Creator())
	assert.Equal(t, m.FEN(), restored.FEN())
	assert.Equal(t, m.PGN(), restored.PGN())
	assert.Equal(t, m.PlyCount(), restored.PlyCount())
	assert.Equal(t, m.Turn(), restored.Turn())
	assert.Equal(t, m.History(), restored.History())
	assert.Equal(t, "alice", restored.Player(White).UserID)
	assert.Equal(t, "bob", restored.Player(Black).UserID)
	assert.True(t, restored.DrawOffer(Black).Made)

	w, ok := restored.Clock().Remaining(White)
	require.True(t, ok)
	assert.Equal(t, 555, w)
	b, _ := restored.Clock().Remaining(Black)
	assert.Equal(t, 600, b)
}

func TestSnapshotRoundTripTerminated(t *testing.T) {
	m := newTestMatch(t)
	applyMoves(t, m, "f3", "e5", "g4", "Qh4#")

	restored, err := FromSnapshot(m.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, ResultBlackWins, restored.Result())
	assert.Equal(t, ReasonCheckmate, restored.GameOver().Reason)
	assert.False(t, restored.InProgress())
}

func TestSnapshotRoundTripUntimed(t *testing.T) {
	m := newTestMatch(t)
	snap := m.Snapshot()

	assert.Nil(t, snap.TimeControls)
	assert.Nil(t, snap.RemainingTime[White])

	restored, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.False(t, restored.Clock().Timed())
}

func TestFromSnapshotRejectsInconsistentHistory(t *testing.T) {
	m := newTestMatch(t)
	applyMoves(t, m, "e4", "e5")

	snap := m.Snapshot()
	snap.PlyCount = 3

	_, err := FromSnapshot(snap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestFromSnapshotRejectsCorruptMoves(t *testing.T) {
	m := newTestMatch(t)
	applyMoves(t, m, "e4")

	snap := m.Snapshot()
	snap.History[0].SAN = "e5"

	_, err := FromSnapshot(snap)
	require.Error(t, err)
}
