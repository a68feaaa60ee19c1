package game

import "fmt"

// Side identifies one of the two players of a match. The wire values "w" and
// "b" are kept for compatibility with the board controller firmware.
type Side string

const (
	White Side = "w"
	Black Side = "b"
)

// Sides lists both sides in move order.
var Sides = [2]Side{White, Black}

func (s Side) Valid() bool {
	return s == White || s == Black
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == White {
		return Black
	}
	return White
}

// ParseSide validates a side token received from a client.
func ParseSide(token string) (Side, error) {
	s := Side(token)
	if !s.Valid() {
		return "", fmt.Errorf("%w: invalid side %q, expected \"w\" or \"b\"", ErrValidation, token)
	}
	return s, nil
}

// OccupantKind distinguishes the three states a player slot can be in.
type OccupantKind string

const (
	OccupantOpen  OccupantKind = "open"
	OccupantAI    OccupantKind = "ai"
	OccupantHuman OccupantKind = "human"
)

// Occupant is a player slot: open, controlled by the built-in engine, or a
// human identified by their user ID.
type Occupant struct {
	Kind   OccupantKind `json:"kind"`
	UserID string       `json:"user_id,omitempty"`
}

func OpenSlot() Occupant          { return Occupant{Kind: OccupantOpen} }
func AISlot() Occupant            { return Occupant{Kind: OccupantAI} }
func HumanSlot(id string) Occupant { return Occupant{Kind: OccupantHuman, UserID: id} }

func (o Occupant) IsOpen() bool  { return o.Kind == OccupantOpen || o.Kind == "" }
func (o Occupant) IsHuman() bool { return o.Kind == OccupantHuman }
