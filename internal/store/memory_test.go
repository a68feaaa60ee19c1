package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeper-blue/negativei2-server/internal/controller"
	"github.com/deeper-blue/negativei2-server/internal/game"
)

func newMatch(t *testing.T, id string, sans ...string) *game.Match {
	t.Helper()
	m, err := game.NewMatch(id, "alice", nil)
	require.NoError(t, err)
	require.NoError(t, m.AddPlayer("alice", game.White))
	require.NoError(t, m.AddPlayer("bob", game.Black))
	for _, san := range sans {
		_, err := m.ApplyMove(san)
		require.NoError(t, err)
	}
	return m
}

func TestMemoryMatchRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	m := newMatch(t, "match-1", "e4", "e5")
	require.NoError(t, s.SaveMatch(ctx, m))

	loaded, err := s.Match(ctx, "match-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, m.FEN(), loaded.FEN())
	assert.Equal(t, m.PlyCount(), loaded.PlyCount())
	assert.Equal(t, "alice", loaded.Player(game.White).UserID)
}

func TestMemoryMatchUnknown(t *testing.T) {
	s := NewMemory()

	loaded, err := s.Match(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryLoadsAreIndependent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.SaveMatch(ctx, newMatch(t, "match-1")))

	a, err := s.Match(ctx, "match-1")
	require.NoError(t, err)
	_, err = a.ApplyMove("e4")
	require.NoError(t, err)

	// Mutating a loaded copy does not leak into the store
	b, err := s.Match(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, 0, b.PlyCount())
}

func TestMemoryListOpenMatches(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	open, err := game.NewMatch("open-1", "alice", nil)
	require.NoError(t, err)
	require.NoError(t, open.AddPlayer("alice", game.White))
	require.NoError(t, s.SaveMatch(ctx, open))

	full := newMatch(t, "full-1")
	require.NoError(t, s.SaveMatch(ctx, full))

	over, err := game.NewMatch("over-1", "carol", nil)
	require.NoError(t, err)
	require.NoError(t, over.AddPlayer("carol", game.White))
	over.Resign(game.White)
	require.NoError(t, s.SaveMatch(ctx, over))

	snaps, err := s.ListOpenMatches(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "open-1", snaps[0].ID)
}

func TestMemoryRegistrationRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	loaded, err := s.Registration(ctx, "board-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	reg := &controller.Registration{
		BoardID:       "board-1",
		BoardVersion:  "1.0.0",
		LastSeen:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		AssignedMatch: "match-1",
		LastPlyCount:  3,
	}
	require.NoError(t, s.SaveRegistration(ctx, reg))

	loaded, err = s.Registration(ctx, "board-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, *reg, *loaded)
}
