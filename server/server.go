package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/tsdash/apiclient"
	"github.com/jrsteele09/tsdash/callback"
	"github.com/jrsteele09/tsdash/flowstate"
	"github.com/jrsteele09/tsdash/internal/config"
	"github.com/jrsteele09/tsdash/session"
	"github.com/rs/zerolog/log"
)

// Deps are the auth core components the server is built on.
type Deps struct {
	Session  *session.Session
	Callback *callback.Handler
	Scopes   *flowstate.Registry
	API      *apiclient.Client
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	basename string
	mux      *http.ServeMux
	root     http.Handler
	routes   []string
	config   config.Config

	session  *session.Session
	callback *callback.Handler
	scopes   *flowstate.Registry
	api      *apiclient.Client
	limiter  *rateLimiter
}

func New(cfg config.Config, deps Deps) *Server {
	s := &Server{
		env:      cfg.GetEnv(),
		basename: cfg.GetAppBasename(),
		mux:      http.NewServeMux(),
		config:   cfg,
		session:  deps.Session,
		callback: deps.Callback,
		scopes:   deps.Scopes,
		api:      deps.API,
		limiter:  newRateLimiter(AuthLimit),
	}

	s.initRoutes()
	s.root = s.mountBasename()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.root.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// mountBasename serves every route under APP_BASENAME. Handlers see paths
// relative to the basename; s.path turns them back into browser paths.
func (s *Server) mountBasename() http.Handler {
	if s.basename == "" {
		return s.mux
	}
	root := http.NewServeMux()
	root.Handle(s.basename+"/", http.StripPrefix(s.basename, s.mux))
	root.Handle(s.basename, http.RedirectHandler(s.basename+"/", http.StatusMovedPermanently))
	return root
}

// path prefixes an application path with the basename.
func (s *Server) path(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return s.basename + p
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], s.path(parts[1]))
		} else {
			logRoute("", s.path(parts[0]))
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
