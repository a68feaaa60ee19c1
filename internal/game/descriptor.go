package game

import "github.com/deeper-blue/negativei2-server/internal/rules"

// MoveDescriptor is the extended description of one accepted move. It is
// produced once, appended to the match history and never edited. Piece kinds
// use the lowercase letter codes the controller firmware expects ("p", "n",
// "b", "r", "q", "k").
type MoveDescriptor struct {
	SAN        string        `json:"san"`
	Side       Side          `json:"side"`
	PlyCount   int           `json:"ply_count"`
	MoveNumber int           `json:"move_count"`
	Piece      string        `json:"piece"`
	From       string        `json:"from"`
	To         string        `json:"to"`
	Promotion  PromotionInfo `json:"promotion"`
	Capture    CaptureInfo   `json:"capture"`
	Castle     CastleInfo    `json:"castle"`
	EnPassant  EnPassantInfo `json:"en_passant"`
}

// PromotionInfo flags a promotion and the piece kind promoted to.
type PromotionInfo struct {
	Promotion bool   `json:"promotion"`
	Piece     string `json:"piece,omitempty"`
}

// CaptureInfo flags a capture and the piece kind taken.
type CaptureInfo struct {
	Capture bool   `json:"capture"`
	Piece   string `json:"piece,omitempty"`
}

// CastleInfo flags castling and which rook participated ("k" or "q").
type CastleInfo struct {
	Castle bool   `json:"castle"`
	Side   string `json:"side,omitempty"`
}

// EnPassantInfo flags an en-passant capture and names the square of the
// captured pawn, which is never the destination square of the capturing pawn.
type EnPassantInfo struct {
	EnPassant bool   `json:"en_passant"`
	Square    string `json:"square,omitempty"`
}

// newMoveDescriptor combines the geometry facts reported by the rules engine
// with the match's own bookkeeping. plyCount is the 1-based ply of the move;
// the full-move number increments only after Black moves.
func newMoveDescriptor(facts *rules.MoveFacts, side Side, plyCount int) MoveDescriptor {
	return MoveDescriptor{
		SAN:        facts.SAN,
		Side:       side,
		PlyCount:   plyCount,
		MoveNumber: (plyCount-1)/2 + 1,
		Piece:      facts.Piece,
		From:       facts.From,
		To:         facts.To,
		Promotion: PromotionInfo{
			Promotion: facts.Promotion,
			Piece:     facts.PromotionPiece,
		},
		Capture: CaptureInfo{
			Capture: facts.Capture,
			Piece:   facts.CapturedPiece,
		},
		Castle: CastleInfo{
			Castle: facts.Castle,
			Side:   facts.CastleSide,
		},
		EnPassant: EnPassantInfo{
			EnPassant: facts.EnPassant,
			Square:    facts.EnPassantSquare,
		},
	}
}
