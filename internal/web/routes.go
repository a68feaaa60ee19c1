package web

import "github.com/gorilla/mux"

// Router wires every request surface onto its handler.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/games", s.ListGamesHandler).Methods("GET")
	api.HandleFunc("/games/{id}", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/games/{id}/join", s.JoinGameHandler).Methods("POST")
	api.HandleFunc("/games/{id}/moves", s.MakeMoveHandler).Methods("POST")
	api.HandleFunc("/games/{id}/resign", s.ResignHandler).Methods("POST")
	api.HandleFunc("/games/{id}/draw", s.OfferDrawHandler).Methods("POST")
	api.HandleFunc("/games/{id}/draw/respond", s.RespondDrawHandler).Methods("POST")
	api.HandleFunc("/controller/register", s.ControllerRegisterHandler).Methods("POST")
	api.HandleFunc("/controller/poll", s.ControllerPollHandler).Methods("POST")

	r.HandleFunc("/ws", s.hub.SubscribeHandler()).Methods("GET")

	return r
}
