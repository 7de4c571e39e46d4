// Package idptest runs a fake Keycloak realm for tests: OpenID discovery, an
// authorization step that issues PKCE bound codes, and a token endpoint that
// records every call and can be told to reject a grant.
package idptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/jrsteele09/tsdash/internal/utils"
	"github.com/jrsteele09/tsdash/oauth2"
)

const (
	Realm    = "timeseries"
	ClientID = "react-app"
)

// Call is one request received by the token endpoint.
type Call struct {
	GrantType oauth2.GrantType
	Form      url.Values
}

// Server is a fake identity provider.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	rejects  map[oauth2.GrantType]int
	respond  func(Call) oauth2.TokenResponse
	issued   int
	release  chan struct{}
	received chan struct{}

	authorized map[string]oauth2.AuthorizationRequest
	redeemed   map[string]bool
}

// New starts the fake IdP; it is closed when the test ends.
func New(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		rejects:    make(map[oauth2.GrantType]int),
		authorized: make(map[string]oauth2.AuthorizationRequest),
		redeemed:   make(map[string]bool),
	}
	s.respond = s.defaultResponse

	mux := http.NewServeMux()
	mux.HandleFunc("POST /realms/"+Realm+"/protocol/openid-connect/token", s.token)
	mux.HandleFunc("GET /realms/"+Realm+"/.well-known/openid-configuration", s.discovery)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) BaseURL() string  { return s.URL }
func (s *Server) RealmURL() string { return s.URL + "/realms/" + Realm }
func (s *Server) TokenURL() string { return s.RealmURL() + "/protocol/openid-connect/token" }

// Reject makes the token endpoint answer grant with status (0 restores success).
func (s *Server) Reject(grant oauth2.GrantType, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.rejects, grant)
		return
	}
	s.rejects[grant] = status
}

// Respond replaces the success response builder.
func (s *Server) Respond(fn func(Call) oauth2.TokenResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond = fn
}

// Hold blocks every token request until the returned release func is called.
// received is signalled once per request as soon as it arrives.
func (s *Server) Hold() (received <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release = make(chan struct{})
	s.received = make(chan struct{}, 16)
	rel := s.release
	var once sync.Once
	return s.received, func() { once.Do(func() { close(rel) }) }
}

// Calls returns the recorded calls for grant, or all calls when grant is "".
func (s *Server) Calls(grant oauth2.GrantType) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if grant == "" || c.GrantType == grant {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	call := Call{GrantType: oauth2.GrantType(r.PostForm.Get("grant_type")), Form: r.PostForm}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	status := s.rejects[call.GrantType]
	respond := s.respond
	release, received := s.release, s.received
	s.mu.Unlock()

	if received != nil {
		received <- struct{}{}
	}
	if release != nil {
		<-release
	}

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		writeError(w, status, oauth2.ErrorInvalidGrant, "rejected by idptest")
		return
	}

	req := oauth2.ParseTokenRequest(r.PostForm)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, oauth2.ErrorInvalidRequest, err.Error())
		return
	}
	if req.ClientID != ClientID {
		writeError(w, http.StatusUnauthorized, oauth2.ErrorInvalidClient, "unknown client")
		return
	}
	if req.GrantType == oauth2.AuthorizationCodeGrant {
		if err := s.redeem(req); err != nil {
			writeError(w, http.StatusBadRequest, oauth2.ErrorInvalidGrant, err.Error())
			return
		}
	}
	_ = json.NewEncoder(w).Encode(respond(call))
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(oauth2.ErrorResponse{Error: code, ErrorDescription: description})
}

func (s *Server) discovery(w http.ResponseWriter, _ *http.Request) {
	base := s.RealmURL() + "/protocol/openid-connect"
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"issuer":                                s.RealmURL(),
		"authorization_endpoint":                base + "/auth",
		"token_endpoint":                        s.TokenURL(),
		"end_session_endpoint":                  base + "/logout",
		"jwks_uri":                              base + "/certs",
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (s *Server) defaultResponse(call Call) oauth2.TokenResponse {
	s.mu.Lock()
	s.issued++
	n := s.issued
	s.mu.Unlock()

	resp := oauth2.TokenResponse{
		AccessToken: utils.Ptr(AccessToken(time.Now().Add(time.Hour), map[string]any{"jti": fmt.Sprintf("at-%d", n)})),
		TokenType:   "Bearer",
		ExpiresIn:   3600,
		Scope:       "openid profile email",
	}
	if call.GrantType == oauth2.AuthorizationCodeGrant {
		resp.RefreshToken = utils.Ptr(fmt.Sprintf("refresh-%d", n))
		resp.IdToken = utils.Ptr(fmt.Sprintf("id-token-%d", n))
	}
	return resp
}
