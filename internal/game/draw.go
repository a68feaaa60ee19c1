package game

// OfferState is the draw-offer handshake state for one side. Made records
// that the side has an offer outstanding; Accepted records that the opponent
// accepted it.
type OfferState struct {
	Made     bool `json:"made"`
	Accepted bool `json:"accepted"`
}

// DrawOffers tracks the offer/accept/decline handshake for both sides.
// Termination gating (no mutations once the match is over) is the match's
// responsibility, not handled here.
type DrawOffers struct {
	states map[Side]*OfferState
}

func NewDrawOffers() *DrawOffers {
	return &DrawOffers{states: map[Side]*OfferState{
		White: {},
		Black: {},
	}}
}

// State returns a copy of one side's handshake state.
func (d *DrawOffers) State(side Side) OfferState {
	return *d.states[side]
}

// Accepted reports whether either side's offer has been accepted.
func (d *DrawOffers) Accepted() bool {
	return d.states[White].Accepted || d.states[Black].Accepted
}

// Offer records a draw offer by side. If the opponent already has an offer
// outstanding, offering is equivalent to accepting it. Re-offering while an
// own offer is outstanding is a no-op.
func (d *DrawOffers) Offer(side Side) {
	if d.states[side].Made {
		return
	}
	if d.states[side.Opposite()].Made {
		d.Accept(side)
	}
	d.states[side].Made = true
}

// Accept accepts the opponent's outstanding offer. No-op if the opponent has
// not made one.
func (d *DrawOffers) Accept(side Side) {
	opp := side.Opposite()
	if !d.states[opp].Made {
		return
	}
	d.states[opp].Accepted = true
}

// Decline withdraws the opponent's outstanding offer so it may be re-offered
// later. No-op if there is no offer or it was already accepted.
func (d *DrawOffers) Decline(side Side) {
	opp := side.Opposite()
	if !d.states[opp].Made || d.states[opp].Accepted {
		return
	}
	d.states[opp].Made = false
}

// ClearPending declines both sides' outstanding offers. Called after every
// accepted move: an offer only stands until the opponent touches the board.
func (d *DrawOffers) ClearPending() {
	d.Decline(White)
	d.Decline(Black)
}

func (d *DrawOffers) restore(side Side, s OfferState) {
	d.states[side] = &OfferState{Made: s.Made, Accepted: s.Accepted}
}
