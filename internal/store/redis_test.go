package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeper-blue/negativei2-server/internal/controller"
	"github.com/deeper-blue/negativei2-server/internal/game"
)

func newRedisStore(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisFromClient(client)
}

func TestRedisMatchRoundTrip(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	seconds := 600
	m, err := game.NewMatch("match-1", "alice", &seconds)
	require.NoError(t, err)
	require.NoError(t, m.AddPlayer("alice", game.White))
	require.NoError(t, m.AddPlayer("bob", game.Black))
	_, err = m.ApplyMove("e4")
	require.NoError(t, err)
	m.TimeDelta(game.White, -30)

	require.NoError(t, s.SaveMatch(ctx, m))

	loaded, err := s.Match(ctx, "match-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, m.FEN(), loaded.FEN())
	assert.Equal(t, m.History(), loaded.History())
	w, ok := loaded.Clock().Remaining(game.White)
	require.True(t, ok)
	assert.Equal(t, 570, w)
}

func TestRedisMatchUnknown(t *testing.T) {
	s := newRedisStore(t)

	loaded, err := s.Match(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisSaveIsUpsert(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	m := newMatch(t, "match-1")
	require.NoError(t, s.SaveMatch(ctx, m))

	_, err := m.ApplyMove("e4")
	require.NoError(t, err)
	require.NoError(t, s.SaveMatch(ctx, m))

	loaded, err := s.Match(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.PlyCount())
}

func TestRedisListOpenMatches(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	open, err := game.NewMatch("open-1", "alice", nil)
	require.NoError(t, err)
	require.NoError(t, s.SaveMatch(ctx, open))

	full := newMatch(t, "full-1")
	require.NoError(t, s.SaveMatch(ctx, full))

	snaps, err := s.ListOpenMatches(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "open-1", snaps[0].ID)
}

func TestRedisRegistrationRoundTrip(t *testing.T) {
	s := newRedisStore(t)
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
	assert.Equal(t, reg.BoardID, loaded.BoardID)
	assert.Equal(t, reg.AssignedMatch, loaded.AssignedMatch)
	assert.Equal(t, reg.LastPlyCount, loaded.LastPlyCount)
	assert.True(t, reg.LastSeen.Equal(loaded.LastSeen))
}
