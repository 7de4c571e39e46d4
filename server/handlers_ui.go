package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/jrsteele09/tsdash/apiclient"
	autherrors "github.com/jrsteele09/tsdash/internal/errors"
	"github.com/rs/zerolog/log"
)

// pageData is the template model shared by every page.
type pageData struct {
	AppName       string
	Base          string
	Authenticated bool
	AuthDisabled  bool
	Username      string
	TokenExpiry   string
	Roles         []string
	Error         string
	Notice        string
	Test          *apiclient.TestResponse
	Report        *apiclient.ReportLatest
}

func (s *Server) pageData(r *http.Request) pageData {
	data := pageData{
		AppName:       s.config.GetAppName(),
		Base:          s.basename,
		Authenticated: s.session.IsAuthenticated(),
		AuthDisabled:  s.config.GetAuthDisabled(),
	}
	if claims, ok := s.session.Claims(); ok {
		data.Username = claims.PreferredUsername()
		if exp, ok := claims.ExpiresAt(); ok {
			data.TokenExpiry = exp.Local().Format(time.RFC1123)
		}
		data.Roles = claims.Roles(s.config.GetKeycloakClientID())
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("failed to render page")
	}
}

func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}

// IndexHandler renders the public home page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, tmpl, http.StatusOK, s.pageData(r))
	}
}

// RestrictedHandler shows who is signed in and with which roles.
func (s *Server) RestrictedHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("restricted.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, tmpl, http.StatusOK, s.pageData(r))
	}
}

func (s *Server) RestrictedTestHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("restricted_test.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		res, err := s.api.RestrictedTest(r.Context())
		if err != nil {
			s.apiFailure(w, r, tmpl, data, err)
			return
		}
		data.Test = &res
		s.render(w, tmpl, http.StatusOK, data)
	}
}

func (s *Server) ReportLatestHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("report_latest.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		if r.URL.Query().Get("refreshed") == "1" {
			data.Notice = "Device database refreshed."
		}
		report, err := s.api.ReportLatest(r.Context())
		if err != nil {
			s.apiFailure(w, r, tmpl, data, err)
			return
		}
		data.Report = &report
		s.render(w, tmpl, http.StatusOK, data)
	}
}

// RefreshDevicesHandler asks the API to rebuild its device list, then shows
// the latest report again.
func (s *Server) RefreshDevicesHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("report_latest.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.api.RefreshDevices(r.Context()); err != nil {
			s.apiFailure(w, r, tmpl, s.pageData(r), err)
			return
		}
		redirectSuccess(w, r, s.path(RouteReportLatest+"?refreshed=1"))
	}
}

// apiFailure renders an API error. A 401 has already ended the session, so
// the browser is sent back through the route guard instead.
func (s *Server) apiFailure(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data pageData, err error) {
	var statusErr *apiclient.StatusError
	if autherrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized && !s.config.GetAuthDisabled() {
		target := RouteRestricted
		if r.Method == http.MethodGet {
			target = r.URL.RequestURI()
		}
		redirectSuccess(w, r, s.path(target))
		return
	}

	log.Err(err).Str("path", r.URL.Path).Msg("api request failed")
	data.Error = err.Error()
	s.render(w, tmpl, http.StatusBadGateway, data)
}
