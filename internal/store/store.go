// Package store defines the persistence boundary for matches and controller
// registrations, with an in-memory implementation for tests and single-node
// use and a redis implementation for deployments that must survive restarts.
//
// There is no process-wide registry: whoever orchestrates requests gets a
// Store injected.
package store

import (
	"context"
	"errors"

	"github.com/deeper-blue/negativei2-server/internal/controller"
	"github.com/deeper-blue/negativei2-server/internal/game"
)

// ErrNotFound is returned by loads that must resolve.
var ErrNotFound = errors.New("not found")

// MatchStore persists match snapshots by ID. Match reconstructs the aggregate
// from its stored snapshot; a nil match with a nil error means the ID is
// unknown.
type MatchStore interface {
	Match(ctx context.Context, id string) (*game.Match, error)
	SaveMatch(ctx context.Context, m *game.Match) error

	// ListOpenMatches returns snapshots of matches that are not over and
	// still have a free slot, for discovery.
	ListOpenMatches(ctx context.Context) ([]*game.Snapshot, error)
}

// ControllerStore persists controller registrations by board ID.
type ControllerStore interface {
	Registration(ctx context.Context, boardID string) (*controller.Registration, error)
	SaveRegistration(ctx context.Context, reg *controller.Registration) error
}

// Store is the full persistence surface the server needs.
type Store interface {
	MatchStore
	ControllerStore
}
