// Package rules wraps the notnil/chess library behind the narrow capability
// the match model needs: apply a move in algebraic notation, answer rule
// questions about the resulting position, and export interchange formats.
// Everything else about board geometry stays inside the library.
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// Engine holds one game's position together with the moves applied to it.
type Engine struct {
	game *chess.Game
}

// New returns an engine at the standard start position.
func New() *Engine {
	return &Engine{game: chess.NewGame()}
}

// NewFromFEN returns an engine at an arbitrary position.
func NewFromFEN(fen string) (*Engine, error) {
	fenFunc, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}
	return &Engine{game: chess.NewGame(fenFunc)}, nil
}

// MoveFacts describes a move relative to the position it was played from.
// All fields are computed before the move is applied, so they reflect the
// pre-move board.
type MoveFacts struct {
	SAN             string
	From            string
	To              string
	Piece           string
	Capture         bool
	CapturedPiece   string
	EnPassant       bool
	EnPassantSquare string // square of the captured pawn, not the destination
	Castle          bool
	CastleSide      string // "k" or "q"
	Promotion       bool
	PromotionPiece  string
}

// ApplyMove decodes san against the current position, applies it, and reports
// the move's facts. The decode error is returned verbatim when the move is
// not legal in the current position.
func (e *Engine) ApplyMove(san string) (*MoveFacts, error) {
	pos := e.game.Position()
	move, err := chess.AlgebraicNotation{}.Decode(pos, san)
	if err != nil {
		return nil, err
	}
	facts := describeMove(pos, move, san)
	if err := e.game.Move(move); err != nil {
		return nil, err
	}
	return facts, nil
}

// describeMove inspects a legal move against the position it is about to be
// played from. Pure: neither argument is mutated.
func describeMove(pos *chess.Position, move *chess.Move, san string) *MoveFacts {
	board := pos.Board()
	facts := &MoveFacts{
		SAN:   san,
		From:  move.S1().String(),
		To:    move.S2().String(),
		Piece: board.Piece(move.S1()).Type().String(),
	}

	// notnil/chess tags en-passant captures with EnPassant instead of Capture,
	// so both tags mean a piece came off the board.
	if move.HasTag(chess.Capture) || move.HasTag(chess.EnPassant) {
		facts.Capture = true
		if move.HasTag(chess.EnPassant) {
			facts.EnPassant = true
			facts.CapturedPiece = chess.Pawn.String()
			facts.EnPassantSquare = capturedPawnSquare(move.S2(), pos.Turn()).String()
		} else {
			facts.CapturedPiece = board.Piece(move.S2()).Type().String()
		}
	}

	switch {
	case move.HasTag(chess.KingSideCastle):
		facts.Castle = true
		facts.CastleSide = "k"
	case move.HasTag(chess.QueenSideCastle):
		facts.Castle = true
		facts.CastleSide = "q"
	}

	if move.Promo() != chess.NoPieceType {
		facts.Promotion = true
		facts.PromotionPiece = move.Promo().String()
	}

	return facts
}

// capturedPawnSquare shifts the capturing pawn's destination one rank back
// toward the mover's own back rank, which is where the captured pawn sits.
func capturedPawnSquare(dest chess.Square, mover chess.Color) chess.Square {
	if mover == chess.White {
		return dest - 8
	}
	return dest + 8
}

// Turn returns the side to move as "w" or "b".
func (e *Engine) Turn() string {
	return e.game.Position().Turn().String()
}

// MoveCount returns the current full-move number, incrementing after each
// Black move.
func (e *Engine) MoveCount() int {
	return len(e.game.Moves())/2 + 1
}

// Outcome returns "1-0", "0-1", "1/2-1/2" or "*" from the rules-only view of
// the position, ignoring claimable draws.
func (e *Engine) Outcome() string {
	return e.game.Outcome().String()
}

// GameOver reports whether the position terminates play, counting claimable
// draws as claimed.
func (e *Engine) GameOver() bool {
	return e.game.Outcome() != chess.NoOutcome || e.ClaimableDraw()
}

func (e *Engine) Checkmate() bool {
	return e.game.Method() == chess.Checkmate
}

func (e *Engine) Stalemate() bool {
	return e.game.Method() == chess.Stalemate
}

func (e *Engine) InsufficientMaterial() bool {
	return e.game.Method() == chess.InsufficientMaterial
}

func (e *Engine) SeventyFiveMoves() bool {
	return e.game.Method() == chess.SeventyFiveMoveRule
}

func (e *Engine) FivefoldRepetition() bool {
	return e.game.Method() == chess.FivefoldRepetition
}

// CanClaimThreefold reports whether the side to move could claim a draw by
// three-fold repetition.
func (e *Engine) CanClaimThreefold() bool {
	return e.eligible(chess.ThreefoldRepetition)
}

// CanClaimFiftyMoves reports whether the side to move could claim a draw
// under the fifty-move rule.
func (e *Engine) CanClaimFiftyMoves() bool {
	return e.eligible(chess.FiftyMoveRule)
}

// ClaimableDraw reports whether either draw claim is available.
func (e *Engine) ClaimableDraw() bool {
	return e.CanClaimThreefold() || e.CanClaimFiftyMoves()
}

func (e *Engine) eligible(method chess.Method) bool {
	for _, m := range e.game.EligibleDraws() {
		if m == method {
			return true
		}
	}
	return false
}

// InCheck reports whether the side to move is in check. The library tags the
// move that delivered the check rather than exposing it on the position.
func (e *Engine) InCheck() bool {
	moves := e.game.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(chess.Check)
}

// FEN exports the current position in board interchange notation.
func (e *Engine) FEN() string {
	return e.game.Position().String()
}

// MoveList renders the applied moves as a numbered SAN line, e.g.
// "1. e4 e5 2. Nf3". Empty string before the first move.
func (e *Engine) MoveList() string {
	moves := e.game.Moves()
	positions := e.game.Positions()
	var sb strings.Builder
	for i, move := range moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i%2 == 0 {
			sb.WriteString(strconv.Itoa(i/2 + 1))
			sb.WriteString(". ")
		}
		sb.WriteString(chess.AlgebraicNotation{}.Encode(positions[i], move))
	}
	return sb.String()
}

// Board renders the current position with unicode pieces and file/rank
// labels, for logs and debugging.
func (e *Engine) Board() string {
	return e.game.Position().Board().Draw()
}
