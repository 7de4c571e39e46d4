package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// AuthCallbackHandler completes a login started by RequireSession.
func (s *Server) AuthCallbackHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("error.html")
	if err != nil {
		panic("Failed to parse error template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		scope := s.tabScope(w, r)
		result := s.callback.Handle(r.Context(), scope, r.URL.Query())

		switch {
		case result.Cancelled:
			log.Debug().Msg("callback abandoned by client")
		case result.Error != "":
			data := s.pageData(r)
			data.Error = result.Error
			s.render(w, tmpl, http.StatusBadRequest, data)
		default:
			redirectSuccess(w, r, s.path(result.Redirect))
		}
	}
}
