package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// RequireSession lets authenticated requests through and sends everyone else
// to the identity provider. The requested page is remembered in the tab scope
// so the callback can return to it.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.GetAuthDisabled() {
			next(w, r)
			return
		}

		if !s.session.IsAuthenticated() {
			// The store may have changed since the cache was filled.
			s.session.Reload()
		}
		if s.session.IsAuthenticated() {
			next(w, r)
			return
		}

		scope := s.tabScope(w, r)
		if r.Method == http.MethodGet {
			scope.SetPostLoginPath(r.URL.RequestURI())
		}

		authURL, err := s.session.Login(scope)
		if err != nil {
			log.Err(err).Msg("failed to start login")
			http.Error(w, "500 - Unable to start login", http.StatusInternalServerError)
			return
		}
		redirectSuccess(w, r, authURL)
	}
}
