package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// LogoutHandler forgets the tokens and ends the identity provider session
// when an ID token was held.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := s.session.Logout()
		s.dropTabScope(w, r)
		if target == "" {
			target = s.path(RouteHome)
		}
		redirectSuccess(w, r, target)
	}
}

// ResetHandler clears tokens and the pending flow state without contacting
// the identity provider, then starts over at the restricted page.
func (s *Server) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = s.session.Logout()
		s.dropTabScope(w, r)
		log.Info().Msg("authentication state reset")
		redirectSuccess(w, r, s.path(RouteRestricted))
	}
}

// PublicConfigHandler serves the runtime configuration a browser may see.
func (s *Server) PublicConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.config.Public()); err != nil {
			log.Err(err).Msg("failed to encode public config")
		}
	}
}
