package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/deeper-blue/negativei2-server/internal/controller"
	"github.com/deeper-blue/negativei2-server/internal/game"
)

const (
	keyMatchPrefix      = "game:"
	keyControllerPrefix = "controller:"
	keyMatchIndex       = "games"
)

// Redis stores JSON snapshots under "game:<id>" and "controller:<boardID>",
// with a set of known match IDs for discovery scans.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects to addr and verifies the connection with a ping.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// NewRedisFromClient wraps an existing client, used by tests.
func NewRedisFromClient(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (s *Redis) Close() error { return s.rdb.Close() }

func (s *Redis) Match(ctx context.Context, id string) (*game.Match, error) {
	raw, err := s.rdb.Get(ctx, keyMatchPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading match %q: %w", id, err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decoding match %q: %w", id, err)
	}
	return game.FromSnapshot(&snap)
}

func (s *Redis) SaveMatch(ctx context.Context, m *game.Match) error {
	raw, err := json.Marshal(m.Snapshot())
	if err != nil {
		return fmt.Errorf("encoding match %q: %w", m.ID(), err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyMatchPrefix+m.ID(), raw, 0)
	pipe.SAdd(ctx, keyMatchIndex, m.ID())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving match %q: %w", m.ID(), err)
	}
	return nil
}

func (s *Redis) ListOpenMatches(ctx context.Context) ([]*game.Snapshot, error) {
	ids, err := s.rdb.SMembers(ctx, keyMatchIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	open := []*game.Snapshot{}
	for _, id := range ids {
		raw, err := s.rdb.Get(ctx, keyMatchPrefix+id).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading match %q: %w", id, err)
		}
		var snap game.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("decoding match %q: %w", id, err)
		}
		if snap.InProgress && snap.FreeSlots > 0 {
			open = append(open, &snap)
		}
	}
	return open, nil
}

func (s *Redis) Registration(ctx context.Context, boardID string) (*controller.Registration, error) {
	raw, err := s.rdb.Get(ctx, keyControllerPrefix+boardID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading registration %q: %w", boardID, err)
	}
	var reg controller.Registration
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("decoding registration %q: %w", boardID, err)
	}
	return &reg, nil
}

func (s *Redis) SaveRegistration(ctx context.Context, reg *controller.Registration) error {
	raw, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encoding registration %q: %w", reg.BoardID, err)
	}
	if err := s.rdb.Set(ctx, keyControllerPrefix+reg.BoardID, raw, 0).Err(); err != nil {
		return fmt.Errorf("saving registration %q: %w", reg.BoardID, err)
	}
	return nil
}
