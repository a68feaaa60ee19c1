package game

import (
	"fmt"

	"github.com/deeper-blue/negativei2-server/internal/rules"
)

// SnapshotVersion is bumped whenever the snapshot field set changes shape.
const SnapshotVersion = 1

// Snapshot is the serializable form of a match. It carries everything needed
// to reconstruct the aggregate plus derived fields (result, game_over, fen,
// pgn, free_slots) that read-only consumers use without replaying the game.
type Snapshot struct {
	Version       int               `json:"version"`
	ID            string            `json:"id"`
	Creator       string            `json:"creator"`
	TimeControls  *int              `json:"time_controls"`
	RemainingTime map[Side]*int     `json:"remaining_time"`
	Players       map[Side]Occupant `json:"players"`
	PlyCount      int               `json:"ply_count"`
	History       []MoveDescriptor  `json:"history"`
	Resigned      map[Side]bool     `json:"resigned"`
	DrawOffers    map[Side]OfferState `json:"draw_offers"`

	// Derived fields, recomputed on every snapshot and ignored on restore.
	FreeSlots  int            `json:"free_slots"`
	InProgress bool           `json:"in_progress"`
	Result     string         `json:"result"`
	GameOver   GameOverStatus `json:"game_over"`
	Turn       Side           `json:"turn"`
	MoveCount  int            `json:"move_count"`
	FEN        string         `json:"fen"`
	PGN        string         `json:"pgn"`
}

// Snapshot produces the serializable form of the match.
func (m *Match) Snapshot() *Snapshot {
	remaining := map[Side]*int{White: nil, Black: nil}
	if m.clock.Timed() {
		for _, side := range Sides {
			secs, _ := m.clock.Remaining(side)
			remaining[side] = &secs
		}
	}

	history := make([]MoveDescriptor, len(m.history))
	copy(history, m.history)

	return &Snapshot{
		Version:       SnapshotVersion,
		ID:            m.id,
		Creator:       m.creator,
		TimeControls:  m.timeControls,
		RemainingTime: remaining,
		Players: map[Side]Occupant{
			White: m.players[White],
			Black: m.players[Black],
		},
		PlyCount: m.plyCount,
		History:  history,
		Resigned: map[Side]bool{
			White: m.resigned[White],
			Black: m.resigned[Black],
		},
		DrawOffers: map[Side]OfferState{
			White: m.draws.State(White),
			Black: m.draws.State(Black),
		},
		FreeSlots:  m.FreeSlots(),
		InProgress: m.InProgress(),
		Result:     m.Result(),
		GameOver:   m.GameOver(),
		Turn:       m.Turn(),
		MoveCount:  m.MoveCount(),
		FEN:        m.FEN(),
		PGN:        m.PGN(),
	}
}

// FromSnapshot reconstructs a match by replaying the stored SAN history on a
// fresh engine, then restoring clocks, players, resignations and the draw
// handshake. The stored descriptors are kept verbatim.
func FromSnapshot(s *Snapshot) (*Match, error) {
	m, err := NewMatch(s.ID, s.Creator, s.TimeControls)
	if err != nil {
		return nil, err
	}

	if len(s.History) != s.PlyCount {
		return nil, fmt.Errorf("%w: snapshot %q has %d history entries for ply count %d",
			ErrValidation, s.ID, len(s.History), s.PlyCount)
	}

	engine := rules.New()
	for i, desc := range s.History {
		if _, err := engine.ApplyMove(desc.SAN); err != nil {
			return nil, fmt.Errorf("replaying snapshot %q move %d (%q): %w", s.ID, i+1, desc.SAN, err)
		}
	}
	m.engine = engine
	m.plyCount = s.PlyCount
	m.history = append(m.history, s.History...)

	for _, side := range Sides {
		if occ, ok := s.Players[side]; ok {
			m.players[side] = occ
		}
		if secs := s.RemainingTime[side]; secs != nil {
			m.clock.setRemaining(side, *secs)
		}
		m.resigned[side] = s.Resigned[side]
		if offer, ok := s.DrawOffers[side]; ok {
			m.draws.restore(side, offer)
		}
	}

	return m, nil
}
