package game

import (
	"fmt"

	"github.com/deeper-blue/negativei2-server/internal/rules"
)

// Result strings in standard score notation.
const (
	ResultWhiteWins  = "1-0"
	ResultBlackWins  = "0-1"
	ResultDraw       = "1/2-1/2"
	ResultInProgress = "*"
)

// Termination reasons surfaced through GameOver. The wording is part of the
// client contract.
const (
	ReasonThreefold     = "Three-fold repetition"
	ReasonFiftyMoves    = "Fifty move rule"
	ReasonSeventyFive   = "Seventy-five move rule"
	ReasonInsufficient  = "Insufficient material"
	ReasonCheckmate     = "Checkmate"
	ReasonStalemate     = "Stalemate"
	ReasonFivefold      = "Five-fold repetition"
	ReasonResignation   = "Resignation"
	ReasonAgreement     = "Draw by agreement"
	ReasonTime          = "Time"
)

// GameOverStatus reports whether a match has terminated and why.
type GameOverStatus struct {
	GameOver bool   `json:"game_over"`
	Reason   string `json:"reason,omitempty"`
}

// Match is the authoritative state of one game: position, clocks, players,
// draw handshake and resignations. It is a single-writer aggregate; callers
// must serialize mutating operations per match ID.
type Match struct {
	id           string
	creator      string
	timeControls *int
	clock        *Clock
	players      map[Side]Occupant
	engine       *rules.Engine
	plyCount     int
	history      []MoveDescriptor
	resigned     map[Side]bool
	draws        *DrawOffers
}

// NewMatch creates a match at the standard start position with both slots
// open. timeControls is the number of seconds granted to each side; nil means
// untimed.
func NewMatch(id, creator string, timeControls *int) (*Match, error) {
	if timeControls != nil && *timeControls < 0 {
		return nil, fmt.Errorf("%w: cannot create a match with negative time %d", ErrValidation, *timeControls)
	}
	return &Match{
		id:           id,
		creator:      creator,
		timeControls: timeControls,
		clock:        NewClock(timeControls),
		players:      map[Side]Occupant{White: OpenSlot(), Black: OpenSlot()},
		engine:       rules.New(),
		resigned:     map[Side]bool{White: false, Black: false},
		draws:        NewDrawOffers(),
	}, nil
}

func (m *Match) ID() string      { return m.id }
func (m *Match) Creator() string { return m.creator }

// TimeControls returns the per-side starting time in seconds, or nil for an
// untimed match.
func (m *Match) TimeControls() *int { return m.timeControls }

func (m *Match) Clock() *Clock { return m.clock }

// Turn returns the side to move.
func (m *Match) Turn() Side { return Side(m.engine.Turn()) }

// PlyCount is the number of accepted moves; it doubles as the match's version
// number for controller reconciliation.
func (m *Match) PlyCount() int { return m.plyCount }

// MoveCount is the 1-based full-move number, incrementing after Black moves.
func (m *Match) MoveCount() int { return m.engine.MoveCount() }

// History returns the append-only move descriptor sequence. The returned
// slice must not be modified.
func (m *Match) History() []MoveDescriptor { return m.history }

// Player returns the occupant of a side.
func (m *Match) Player(side Side) Occupant { return m.players[side] }

// FreeSlots counts the sides without an occupant.
func (m *Match) FreeSlots() int {
	n := 0
	for _, side := range Sides {
		if m.players[side].IsOpen() {
			n++
		}
	}
	return n
}

func (m *Match) Resigned(side Side) bool      { return m.resigned[side] }
func (m *Match) DrawOffer(side Side) OfferState { return m.draws.State(side) }

// FEN exports the current position in board interchange notation.
func (m *Match) FEN() string { return m.engine.FEN() }

// PGN renders the move history as a numbered SAN line.
func (m *Match) PGN() string { return m.engine.MoveList() }

// String renders the current board for logs.
func (m *Match) String() string { return m.engine.Board() }

// AddPlayer assigns a user to a side. A user cannot occupy both sides, and a
// side cannot be claimed twice.
func (m *Match) AddPlayer(userID string, side Side) error {
	if !side.Valid() {
		return fmt.Errorf("%w: invalid side %q", ErrValidation, side)
	}
	opp := m.players[side.Opposite()]
	if opp.IsHuman() && opp.UserID == userID {
		return fmt.Errorf("%w: %q", ErrDuplicateOccupant, userID)
	}
	if !m.players[side].IsOpen() {
		return fmt.Errorf("%w: side %q", ErrOccupiedSlot, side)
	}
	m.players[side] = HumanSlot(userID)
	return nil
}

// AssignAI marks a side as engine-controlled. The move selection itself
// happens outside the match model; an AI slot just accepts moves submitted on
// its behalf.
func (m *Match) AssignAI(side Side) error {
	if !side.Valid() {
		return fmt.Errorf("%w: invalid side %q", ErrValidation, side)
	}
	if !m.players[side].IsOpen() {
		return fmt.Errorf("%w: side %q", ErrOccupiedSlot, side)
	}
	m.players[side] = AISlot()
	return nil
}

// ApplyMove validates and applies one move in algebraic notation for the side
// to move. On success the ply count increments, both pending draw offers are
// declined, and the extended move descriptor is appended to the history.
// Validation precedes every mutation: a failed move leaves the match intact.
//
// Clocks are untouched; the caller applies deltas through TimeDelta.
func (m *Match) ApplyMove(san string) (MoveDescriptor, error) {
	side := m.Turn()
	if !m.InProgress() {
		return MoveDescriptor{}, fmt.Errorf("cannot make move %q for side %q: %w", san, side, ErrMatchOver)
	}
	if m.players[side].IsOpen() {
		return MoveDescriptor{}, fmt.Errorf("cannot make move %q for side %q: %w", san, side, ErrNoPlayer)
	}

	facts, err := m.engine.ApplyMove(san)
	if err != nil {
		return MoveDescriptor{}, &IllegalMoveError{SAN: san, Side: side, Err: err}
	}

	m.plyCount++
	m.draws.ClearPending()

	desc := newMoveDescriptor(facts, side, m.plyCount)
	m.history = append(m.history, desc)
	return desc, nil
}

// TimeDelta applies a signed number of seconds to one side's clock. No-op
// once the match is over; decrements clamp at zero.
func (m *Match) TimeDelta(side Side, seconds int) {
	if !m.InProgress() {
		return
	}
	m.clock.Delta(side, seconds)
}

// Resign resigns the match for a side. Silent no-op once the match is over.
func (m *Match) Resign(side Side) {
	if !m.InProgress() {
		return
	}
	m.resigned[side] = true
}

// OfferDraw makes a draw offer for a side. If the opponent already has an
// offer outstanding, this accepts it. Silent no-op once the match is over.
func (m *Match) OfferDraw(side Side) {
	if !m.InProgress() {
		return
	}
	m.draws.Offer(side)
}

// AcceptDraw accepts the opponent's outstanding offer. Silent no-op once the
// match is over or without an offer to accept.
func (m *Match) AcceptDraw(side Side) {
	if !m.InProgress() {
		return
	}
	m.draws.Accept(side)
}

// DeclineDraw withdraws the opponent's outstanding offer. Silent no-op once
// the match is over or without an offer to decline.
func (m *Match) DeclineDraw(side Side) {
	if !m.InProgress() {
		return
	}
	m.draws.Decline(side)
}

// Result derives the match score. Later rules override earlier ones: the
// rules-only evaluation of the position (claiming any claimable draw) is the
// base, then resignation, then draw agreement, then flag fall. Both flags
// down resolves to a draw; correct clock management never produces it, but
// the fallback keeps a corrupted clock state from naming a winner.
func (m *Match) Result() string {
	result := m.engine.Outcome()
	if result == ResultInProgress && m.engine.ClaimableDraw() {
		result = ResultDraw
	}
	if m.resigned[Black] {
		result = ResultWhiteWins
	}
	if m.resigned[White] {
		result = ResultBlackWins
	}
	if m.draws.Accepted() {
		result = ResultDraw
	}
	if m.clock.Flagged(White) {
		result = ResultBlackWins
	}
	if m.clock.Flagged(Black) {
		result = ResultWhiteWins
	}
	if m.clock.Flagged(White) && m.clock.Flagged(Black) {
		result = ResultDraw
	}
	return result
}

// InProgress reports whether the match can still accept moves.
func (m *Match) InProgress() bool {
	return m.Result() == ResultInProgress
}

// GameOver derives the termination status and reason. The reason has its own
// override order, independent of Result: rules-based reasons first (in a
// fixed order where the later check wins when several hold at once), then
// resignation, then draw by agreement, then time. A flag fall is detected
// out-of-band and must always be surfaced, even when the final position also
// satisfies a rules-based draw.
func (m *Match) GameOver() GameOverStatus {
	var status GameOverStatus

	if m.engine.GameOver() {
		status.GameOver = true
		if m.engine.CanClaimThreefold() {
			status.Reason = ReasonThreefold
		}
		if m.engine.CanClaimFiftyMoves() {
			status.Reason = ReasonFiftyMoves
		}
		if m.engine.SeventyFiveMoves() {
			status.Reason = ReasonSeventyFive
		}
		if m.engine.InsufficientMaterial() {
			status.Reason = ReasonInsufficient
		}
		if m.engine.Checkmate() {
			status.Reason = ReasonCheckmate
		}
		if m.engine.Stalemate() {
			status.Reason = ReasonStalemate
		}
		if m.engine.FivefoldRepetition() {
			status.Reason = ReasonFivefold
		}
	}

	if m.resigned[White] || m.resigned[Black] {
		status.GameOver = true
		status.Reason = ReasonResignation
	}

	if m.draws.Accepted() {
		status.GameOver = true
		status.Reason = ReasonAgreement
	}

	if m.clock.Flagged(White) || m.clock.Flagged(Black) {
		status.GameOver = true
		status.Reason = ReasonTime
	}

	return status
}
