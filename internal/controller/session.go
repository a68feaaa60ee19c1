// Package controller implements registration and poll reconciliation for the
// physical board controllers. A controller is a low-bandwidth client: it
// registers once, then polls with the highest ply it has executed, and the
// server answers with the slice of move history it has not yet seen.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deeper-blue/negativei2-server/internal/game"
)

// DefaultTimeout is how long a registration stays fresh without a poll.
const DefaultTimeout = 60 * time.Second

var (
	// ErrUnknownController is returned when polling without a registration.
	ErrUnknownController = errors.New("controller is not registered")

	// ErrAlreadyRegistered is returned when registering a board whose
	// existing registration is still fresh.
	ErrAlreadyRegistered = errors.New("controller already registered")

	// ErrTimedOut is returned when polling on a stale registration.
	ErrTimedOut = errors.New("controller registration timed out")

	// ErrValidation covers out-of-range poll parameters.
	ErrValidation = errors.New("validation failed")
)

// Registration is the stored state for one physical board. BoardID and
// BoardVersion are immutable after registration; LastSeen is refreshed by
// every successful register or poll.
type Registration struct {
	BoardID      string    `json:"board_id"`
	BoardVersion string    `json:"board_version"`
	LastSeen     time.Time `json:"last_seen"`
	AssignedMatch string   `json:"game_id,omitempty"`
	LastPlyCount int       `json:"last_ply_count"`
}

// RegistrationStore persists controller registrations by board ID. A nil
// registration with a nil error means the board is unknown.
type RegistrationStore interface {
	Registration(ctx context.Context, boardID string) (*Registration, error)
	SaveRegistration(ctx context.Context, reg *Registration) error
}

// MatchSource loads the match a controller is assigned to. A nil match with a
// nil error means the ID resolves to nothing.
type MatchSource interface {
	Match(ctx context.Context, id string) (*game.Match, error)
}

// Notifier receives the signals a poll can surface: the controller finished
// executing a move, or it reports a fault code.
type Notifier interface {
	ControllerFinished(matchID string, plyCount int)
	ControllerError(matchID string, code int)
}

// PollResponse is the catch-up payload for a controller.
type PollResponse struct {
	GameOver game.GameOverStatus   `json:"game_over"`
	History  []game.MoveDescriptor `json:"history"`
}

// Service mediates between controllers, stored registrations and matches.
type Service struct {
	registrations RegistrationStore
	matches       MatchSource
	notifier      Notifier
	timeout       time.Duration
	now           func() time.Time
}

func NewService(registrations RegistrationStore, matches MatchSource, notifier Notifier, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		registrations: registrations,
		matches:       matches,
		notifier:      notifier,
		timeout:       timeout,
		now:           time.Now,
	}
}

// Register creates or refreshes a board's registration. It fails while an
// existing registration is still fresh; a stale registration is overwritten,
// preserving the assigned match and acknowledged ply so a rebooted controller
// does not lose its game.
func (s *Service) Register(ctx context.Context, boardID, boardVersion string) (*Registration, error) {
	existing, err := s.registrations.Registration(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("loading registration %q: %w", boardID, err)
	}

	now := s.now()
	reg := &Registration{
		BoardID:      boardID,
		BoardVersion: boardVersion,
		LastSeen:     now,
	}
	if existing != nil {
		if now.Sub(existing.LastSeen) < s.timeout {
			return nil, fmt.Errorf("%w: board %q", ErrAlreadyRegistered, boardID)
		}
		reg.AssignedMatch = existing.AssignedMatch
		reg.LastPlyCount = existing.LastPlyCount
	}

	if err := s.registrations.SaveRegistration(ctx, reg); err != nil {
		return nil, fmt.Errorf("saving registration %q: %w", boardID, err)
	}
	return reg, nil
}

// Assign points a board at a match. Used by the match-creation flow; the poll
// path never clears an assignment, only overwrites it.
func (s *Service) Assign(ctx context.Context, boardID, matchID string) error {
	reg, err := s.registrations.Registration(ctx, boardID)
	if err != nil {
		return fmt.Errorf("loading registration %q: %w", boardID, err)
	}
	if reg == nil {
		return fmt.Errorf("%w: board %q", ErrUnknownController, boardID)
	}
	reg.AssignedMatch = matchID
	reg.LastPlyCount = 0
	if err := s.registrations.SaveRegistration(ctx, reg); err != nil {
		return fmt.Errorf("saving registration %q: %w", boardID, err)
	}
	return nil
}

// Poll reconciles a controller against its assigned match's history.
//
// plyCount is the highest ply the controller has executed; errCode, when
// non-nil, is a fault report. The response carries every descriptor with
// index >= plyCount, so delivery is at-least-once: a controller reporting a
// lower ply than before is treated as an idempotent replay and simply has
// the earlier moves re-delivered.
func (s *Service) Poll(ctx context.Context, boardID string, plyCount int, errCode *int) (*PollResponse, error) {
	reg, err := s.registrations.Registration(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("loading registration %q: %w", boardID, err)
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: board %q", ErrUnknownController, boardID)
	}

	now := s.now()
	if now.Sub(reg.LastSeen) > s.timeout {
		return nil, fmt.Errorf("%w: board %q last seen %s ago", ErrTimedOut, boardID, now.Sub(reg.LastSeen))
	}

	var match *game.Match
	if reg.AssignedMatch != "" {
		match, err = s.matches.Match(ctx, reg.AssignedMatch)
		if err != nil {
			return nil, fmt.Errorf("loading match %q: %w", reg.AssignedMatch, err)
		}
	}

	if plyCount < 0 {
		return nil, fmt.Errorf("%w: negative ply count %d", ErrValidation, plyCount)
	}
	if match != nil && plyCount > match.PlyCount() {
		return nil, fmt.Errorf("%w: ply count %d exceeds match ply count %d", ErrValidation, plyCount, match.PlyCount())
	}
	if errCode != nil && *errCode > plyCount {
		return nil, fmt.Errorf("%w: error ply %d exceeds ply count %d", ErrValidation, *errCode, plyCount)
	}

	previousPly := reg.LastPlyCount
	reg.LastSeen = now
	reg.LastPlyCount = plyCount
	if err := s.registrations.SaveRegistration(ctx, reg); err != nil {
		return nil, fmt.Errorf("saving registration %q: %w", boardID, err)
	}

	resp := &PollResponse{History: []game.MoveDescriptor{}}
	if match != nil {
		resp.GameOver = match.GameOver()
	}

	// Signals are scoped to a match; an unassigned board has no audience.
	if errCode != nil {
		if s.notifier != nil && reg.AssignedMatch != "" {
			s.notifier.ControllerError(reg.AssignedMatch, *errCode)
		}
		return resp, nil
	}

	if plyCount > previousPly && s.notifier != nil && reg.AssignedMatch != "" {
		s.notifier.ControllerFinished(reg.AssignedMatch, plyCount)
	}

	if match != nil && plyCount < match.PlyCount() {
		resp.History = append(resp.History, match.History()[plyCount:]...)
	}
	return resp, nil
}
