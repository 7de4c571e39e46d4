package server

import (
	"net/http"

	"github.com/jrsteele09/tsdash/flowstate"
)

// tabScopeCookie selects the browser session's flowstate.Scope. It has no
// MaxAge so it ends with the browser session.
const tabScopeCookie = "tab_scope"

// tabScope returns the scope of the request's browser session, creating one
// (and setting the cookie) when the cookie is missing or its scope expired.
func (s *Server) tabScope(w http.ResponseWriter, r *http.Request) *flowstate.Scope {
	var current string
	if cookie, err := r.Cookie(tabScopeCookie); err == nil {
		current = cookie.Value
	}
	id, scope := s.scopes.Acquire(current)
	if id != current {
		s.setTabScopeCookie(w, r, id, 0)
	}
	return scope
}

// dropTabScope forgets the browser session's scope and expires its cookie.
func (s *Server) dropTabScope(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(tabScopeCookie); err == nil {
		s.scopes.Delete(cookie.Value)
	}
	s.setTabScopeCookie(w, r, "", -1)
}

func (s *Server) setTabScopeCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     tabScopeCookie,
		Value:    value,
		Path:     s.path("/"),
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
