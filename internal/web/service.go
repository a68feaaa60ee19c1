package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/deeper-blue/negativei2-server/internal/controller"
	"github.com/deeper-blue/negativei2-server/internal/game"
	"github.com/deeper-blue/negativei2-server/internal/store"
)

// Slot sentinels accepted on the wire for game creation.
const (
	slotOpen = "OPEN"
	slotAI   = "AI"
)

// Service exposes the match and controller operations over HTTP. Every
// mutating request on a match runs inside that match's lock, and the new
// snapshot is persisted before the response acknowledges success.
type Service struct {
	store       store.Store
	controllers *controller.Service
	hub         *Hub
	locks       *matchLocks
}

func NewService(st store.Store, controllers *controller.Service, hub *Hub) *Service {
	return &Service{
		store:       st,
		controllers: controllers,
		hub:         hub,
		locks:       newMatchLocks(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientError writes a rejected operation with its human-readable cause.
// Domain errors are client mistakes; everything else is a server fault.
func (s *Service) clientError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var illegal *game.IllegalMoveError
	switch {
	case errors.As(err, &illegal),
		errors.Is(err, game.ErrValidation),
		errors.Is(err, game.ErrMatchOver),
		errors.Is(err, game.ErrNoPlayer),
		errors.Is(err, game.ErrOccupiedSlot),
		errors.Is(err, game.ErrDuplicateOccupant),
		errors.Is(err, controller.ErrValidation),
		errors.Is(err, controller.ErrUnknownController),
		errors.Is(err, controller.ErrAlreadyRegistered),
		errors.Is(err, controller.ErrTimedOut):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type CreateGameRequest struct {
	CreatorID     string `json:"creator_id"`
	Player1ID     string `json:"player1_id"`
	Player2ID     string `json:"player2_id"`
	TimePerPlayer *int   `json:"time_per_player"`
	BoardID       string `json:"board_id,omitempty"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CreatorID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "creator_id is required"})
		return
	}

	match, err := game.NewMatch(uuid.NewString(), req.CreatorID, req.TimePerPlayer)
	if err != nil {
		s.clientError(w, err)
		return
	}

	slots := map[game.Side]string{game.White: req.Player1ID, game.Black: req.Player2ID}
	for _, side := range game.Sides {
		switch slots[side] {
		case slotOpen, "":
			// stays open for discovery
		case slotAI:
			if err := match.AssignAI(side); err != nil {
				s.clientError(w, err)
				return
			}
		default:
			if err := match.AddPlayer(slots[side], side); err != nil {
				s.clientError(w, err)
				return
			}
		}
	}

	if req.BoardID != "" {
		if err := s.controllers.Assign(r.Context(), req.BoardID, match.ID()); err != nil {
			s.clientError(w, err)
			return
		}
	}

	if err := s.store.SaveMatch(r.Context(), match); err != nil {
		s.clientError(w, err)
		return
	}

	log.Info().Str("matchID", match.ID()).Str("creator", req.CreatorID).Msg("Match created")
	writeJSON(w, http.StatusCreated, match.Snapshot())
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	match, err := s.store.Match(r.Context(), id)
	if err != nil {
		s.clientError(w, err)
		return
	}
	if match == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return
	}
	writeJSON(w, http.StatusOK, match.Snapshot())
}

// ListGamesHandler returns matches that are still joinable.
func (s *Service) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	open, err := s.store.ListOpenMatches(r.Context())
	if err != nil {
		s.clientError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": open,
		"total": len(open),
	})
}

type JoinGameRequest struct {
	UserID string `json:"user_id"`
	Side   string `json:"side"`
}

func (s *Service) JoinGameHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	side, err := game.ParseSide(req.Side)
	if err != nil {
		s.clientError(w, err)
		return
	}

	unlock := s.locks.lock(id)
	defer unlock()

	match, err := s.store.Match(r.Context(), id)
	if err != nil {
		s.clientError(w, err)
		return
	}
	if match == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return
	}

	if err := match.AddPlayer(req.UserID, side); err != nil {
		s.clientError(w, err)
		return
	}
	if err := s.store.SaveMatch(r.Context(), match); err != nil {
		s.clientError(w, err)
		return
	}

	log.Info().Str("matchID", id).Str("userID", req.UserID).Str("side", string(side)).Msg("Player joined")
	writeJSON(w, http.StatusOK, match.Snapshot())
}

type MakeMoveRequest struct {
	UserID string `json:"user_id"`
	Move   string `json:"move"`
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	unlock := s.locks.lock(id)
	defer unlock()

	match, err := s.store.Match(r.Context(), id)
	if err != nil {
		s.clientError(w, err)
		return
	}
	if match == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return
	}

	// A human slot only accepts moves from its occupant; AI slots accept
	// moves submitted on the engine's behalf.
	occupant := match.Player(match.Turn())
	if occupant.IsHuman() && occupant.UserID != req.UserID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "it is not this user's turn to move"})
		return
	}

	desc, err := match.ApplyMove(req.Move)
	if err != nil {
		s.clientError(w, err)
		return
	}

	snapshot := match.Snapshot()
	if err := s.store.SaveMatch(r.Context(), match); err != nil {
		// The move must be durable before it is acknowledged.
		s.clientError(w, err)
		return
	}

	log.Info().Str("matchID", id).Str("san", desc.SAN).Int("ply", desc.PlyCount).Msg("Move applied")
	s.hub.Broadcast(Event{MatchID: id, Type: EventMove, Data: snapshot})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"move": desc,
		"game": snapshot,
	})
}

type ResignRequest struct {
	UserID string `json:"user_id"`
}

func (s *Service) ResignHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req ResignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	unlock := s.locks.lock(id)
	defer unlock()

	match, side, ok := s.loadPlayerMatch(w, r, id, req.UserID)
	if !ok {
		return
	}

	match.Resign(side)
	if err := s.store.SaveMatch(r.Context(), match); err != nil {
		s.clientError(w, err)
		return
	}

	log.Info().Str("matchID", id).Str("side", string(side)).Msg("Player resigned")
	s.hub.Broadcast(Event{MatchID: id, Type: EventResignation, Data: match.Snapshot()})
	writeJSON(w, http.StatusOK, match.Snapshot())
}

type DrawOfferRequest struct {
	UserID string `json:"user_id"`
}

func (s *Service) OfferDrawHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req DrawOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	unlock := s.locks.lock(id)
	defer unlock()

	match, side, ok := s.loadPlayerMatch(w, r, id, req.UserID)
	if !ok {
		return
	}

	match.OfferDraw(side)
	if err := s.store.SaveMatch(r.Context(), match); err != nil {
		s.clientError(w, err)
		return
	}

	log.Info().Str("matchID", id).Str("side", string(side)).Msg("Draw offered")
	s.hub.Broadcast(Event{MatchID: id, Type: EventDrawOffer, Data: match.Snapshot()})
	writeJSON(w, http.StatusOK, match.Snapshot())
}

type DrawResponseRequest struct {
	UserID string `json:"user_id"`
	Accept bool   `json:"accept"`
}

func (s *Service) RespondDrawHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req DrawResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	unlock := s.locks.lock(id)
	defer unlock()

	match, side, ok := s.loadPlayerMatch(w, r, id, req.UserID)
	if !ok {
		return
	}

	if req.Accept {
		match.AcceptDraw(side)
	} else {
		match.DeclineDraw(side)
	}
	if err := s.store.SaveMatch(r.Context(), match); err != nil {
		s.clientError(w, err)
		return
	}

	log.Info().Str("matchID", id).Str("side", string(side)).Bool("accept", req.Accept).Msg("Draw response")
	s.hub.Broadcast(Event{MatchID: id, Type: EventDrawResponse, Data: match.Snapshot()})
	writeJSON(w, http.StatusOK, match.Snapshot())
}

// loadPlayerMatch loads a match and resolves which side the user occupies.
// Writes the error response itself when the lookup fails.
func (s *Service) loadPlayerMatch(w http.ResponseWriter, r *http.Request, id, userID string) (*game.Match, game.Side, bool) {
	match, err := s.store.Match(r.Context(), id)
	if err != nil {
		s.clientError(w, err)
		return nil, "", false
	}
	if match == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return nil, "", false
	}
	for _, side := range game.Sides {
		occupant := match.Player(side)
		if occupant.IsHuman() && occupant.UserID == userID {
			return match, side, true
		}
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user is not a player in this game"})
	return nil, "", false
}

type ControllerRegisterRequest struct {
	BoardID      string `json:"board_id"`
	BoardVersion string `json:"board_version"`
}

func (s *Service) ControllerRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req ControllerRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.BoardID == "" || req.BoardVersion == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "board_id and board_version are required"})
		return
	}

	reg, err := s.controllers.Register(r.Context(), req.BoardID, req.BoardVersion)
	if err != nil {
		s.clientError(w, err)
		return
	}

	log.Info().Str("boardID", reg.BoardID).Str("version", reg.BoardVersion).Msg("Controller registered")
	writeJSON(w, http.StatusOK, reg)
}

type ControllerPollRequest struct {
	BoardID  string `json:"board_id"`
	PlyCount int    `json:"ply_count"`
	Error    *int   `json:"error"`
}

func (s *Service) ControllerPollHandler(w http.ResponseWriter, r *http.Request) {
	var req ControllerPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := s.controllers.Poll(r.Context(), req.BoardID, req.PlyCount, req.Error)
	if err != nil {
		s.clientError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
