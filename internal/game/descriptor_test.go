package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorPlainMove(t *testing.T) {
	m := newTestMatch(t)

	desc, err := m.ApplyMove("e4")
	require.NoError(t, err)

	assert.Equal(t, "e4", desc.SAN)
	assert.Equal(t, White, desc.Side)
	assert.Equal(t, "p", desc.Piece)
	assert.Equal(t, "e2", desc.From)
	assert.Equal(t, "e4", desc.To)
	assert.False(t, desc.Capture.Capture)
	assert.False(t, desc.Castle.Castle)
	assert.False(t, desc.EnPassant.EnPassant)
	assert.False(t, desc.Promotion.Promotion)
}

func TestDescriptorCapture(t *testing.T) {
	m := newTestMatch(t)
	applyMoves(t, m, "e4", "d5")

	desc, err := m.ApplyMove("exd5")
	require.NoError(t, err)

	assert.True(t, desc.Capture.Capture)
	assert.Equal(t, "p", desc.Capture.Piece)
	assert.False(t, desc.EnPassant.EnPassant)
	assert.Equal(t, "e4", desc.From)
	assert.Equal(t, "d5", desc.To)
}

func TestDescriptorEnPassant(t *testing.T) {
	m := newTestMatch(t)
	applyMoves(t, m, "e4", "a6", "e5", "d5")

	desc, err := m.ApplyMove("exd6")
	require.NoError(t, err)

	assert.True(t, desc.Capture.Capture)
	assert.Equal(t, "p", desc.Capture.Piece)
	assert.True(t, desc.EnPassant.EnPassant)
	// The captured pawn sits behind the capturing pawn's destination
	assert.Equal(t, "d5", desc.EnPassant.Square)
	assert.Equal(t, "d6", desc.To)
}

func TestDescriptorEnPassantByBlack(t *testing.T) {
	m := newTestMatch(t)
	applyMoves(t, m, "a3", "e5", "a4", "e4", "d4")

	desc, err := m.ApplyMove("exd3")
	require.NoError(t, err)

	assert.True(t, desc.EnPassant.EnPassant)
	assert.Equal(t, "d4", desc.EnPassant.Square)
	assert.Equal(t, Black, desc.Side)
}

func TestDescriptorCastling(t *testing.T) {
	m := newTestMatch(t)
	applyMoves(t, m, "e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5")

	desc, err := m.ApplyMove("O-O")
	require.NoError(t, err)

	assert.True(t, desc.Castle.Castle)
	assert.Equal(t, "k", desc.Castle.Side)
	assert.Equal(t, "k", desc.Piece)
	assert.Equal(t, "e1", desc.From)
	assert.Equal(t, "g1", desc.To)
}

func TestDescriptorQueensideCastling(t *testing.T) {
	m := newTestMatch(t)
	applyMoves(t, m, "d4", "d5", "Nc3", "Nc6", "Bf4", "Bf5", "Qd2", "Qd7")

	desc, err := m.ApplyMove("O-O-O")
	require.NoError(t, err)

	assert.True(t, desc.Castle.Castle)
	assert.Equal(t, "q", desc.Castle.Side)
}

func TestDescriptorPromotionWithCapture(t *testing.T) {
	m := newTestMatch(t)
	applyMoves(t, m, "h4", "g5", "hxg5", "Nf6", "g6", "Nc6", "g7", "Ne5")

	desc, err := m.ApplyMove("gxh8=Q")
	require.NoError(t, err)

	assert.True(t, desc.Promotion.Promotion)
	assert.Equal(t, "q", desc.Promotion.Piece)
	assert.True(t, desc.Capture.Capture)
	assert.Equal(t, "r", desc.Capture.Piece)
	assert.Equal(t, "p", desc.Piece)
	assert.Equal(t, "g7", desc.From)
	assert.Equal(t, "h8", desc.To)
	assert.False(t, desc.EnPassant.EnPassant)
}

func TestDescriptorWireFormat(t *testing.T) {
	m := newTestMatch(t)
	desc, err := m.ApplyMove("Nf3")
	require.NoError(t, err)

	raw, err := json.Marshal(desc)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "Nf3", decoded["san"])
	assert.Equal(t, "w", decoded["side"])
	assert.Equal(t, float64(1), decoded["ply_count"])
	assert.Equal(t, float64(1), decoded["move_count"])
	assert.Equal(t, "n", decoded["piece"])
	assert.Equal(t, "g1", decoded["from"])
	assert.Equal(t, "f3", decoded["to"])

	capture, ok := decoded["capture"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, capture["capture"])
}
