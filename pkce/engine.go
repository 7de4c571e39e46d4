// Package pkce drives the OAuth2 Authorization Code + PKCE flow against a
// Keycloak realm for a public client.
package pkce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/tsdash/flowstate"
	autherrors "github.com/jrsteele09/tsdash/internal/errors"
	"github.com/jrsteele09/tsdash/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// DefaultHTTPTimeout bounds every call to the token endpoint.
const DefaultHTTPTimeout = 30 * time.Second

// Settings describe the client registration.
type Settings struct {
	ClientID string
	// RedirectURL is the absolute callback URL, {publicURL}{basename}/auth/callback.
	RedirectURL string
	// PostLogoutRedirectURL is where the IdP sends the browser after logout.
	PostLogoutRedirectURL string
	Scopes                []string
}

// Engine builds authorization redirects, exchanges codes and refreshes
// tokens. Successful exchanges and refreshes are persisted to the store.
type Engine struct {
	oauth      *oauth2.Config
	endpoints  Endpoints
	settings   Settings
	store      *token.Store
	httpClient *http.Client
	verifier   *oidc.IDTokenVerifier
	now        func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now when computing token expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithHTTPClient sets the client used for token endpoint calls.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		if c != nil {
			e.httpClient = c
		}
	}
}

// WithIDTokenVerifier verifies the id_token of every code exchange.
func WithIDTokenVerifier(v *oidc.IDTokenVerifier) Option {
	return func(e *Engine) {
		e.verifier = v
	}
}

// New creates an engine for fixed endpoints.
func New(endpoints Endpoints, settings Settings, store *token.Store, opts ...Option) *Engine {
	e := &Engine{
		endpoints:  endpoints,
		settings:   settings,
		store:      store,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.oauth = &oauth2.Config{
		ClientID:    settings.ClientID,
		Endpoint:    endpoints.oauth2Endpoint(),
		RedirectURL: settings.RedirectURL,
		Scopes:      settings.Scopes,
	}
	return e
}

// Discover creates an engine from the realm's OpenID configuration and
// verifies ID tokens against the realm's keys.
func Discover(ctx context.Context, realmURL string, settings Settings, store *token.Store, opts ...Option) (*Engine, error) {
	e := New(Endpoints{}, settings, store, opts...)
	provider, endpoints, err := discover(e.clientContext(ctx), realmURL)
	if err != nil {
		return nil, err
	}
	e.endpoints = endpoints
	e.oauth.Endpoint = endpoints.oauth2Endpoint()
	if e.verifier == nil {
		e.verifier = provider.Verifier(&oidc.Config{ClientID: settings.ClientID})
	}
	return e, nil
}

func (e *Engine) Endpoints() Endpoints {
	return e.endpoints
}

// StartLoginRedirect stores a fresh state and code verifier in scope and
// returns the authorization URL the browser must be sent to.
func (e *Engine) StartLoginRedirect(scope *flowstate.Scope) (string, error) {
	state, err := randomHex(stateBytes)
	if err != nil {
		return "", fmt.Errorf("[pkce StartLoginRedirect] state: %w", err)
	}
	verifier, err := randomHex(verifierBytes)
	if err != nil {
		return "", fmt.Errorf("[pkce StartLoginRedirect] verifier: %w", err)
	}

	scope.SetFlow(flowstate.FlowState{
		State:        state,
		CodeVerifier: verifier,
		CreatedAt:    e.now(),
	})
	return e.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// ExchangeCodeForTokens trades an authorization code for tokens. A code that
// was already exchanged in this scope is not sent again: the persisted bundle
// is returned instead.
func (e *Engine) ExchangeCodeForTokens(ctx context.Context, scope *flowstate.Scope, code, returnedState string) (token.Bundle, error) {
	key := flowstate.CallbackKey{Code: code, State: returnedState}
	guard := scope.ExchangeGuard()

	if !guard.Mark(key) {
		if existing, ok := e.store.Load(); ok {
			return existing, nil
		}
		return token.Bundle{}, autherrors.NewAuthError(autherrors.KindAlreadyHandled, nil)
	}

	flow, ok := scope.Flow()
	if !ok || flow.State == "" || flow.State != returnedState {
		guard.Unmark(key)
		return token.Bundle{}, autherrors.NewAuthError(autherrors.KindStateMismatch, nil)
	}
	if flow.CodeVerifier == "" {
		guard.Unmark(key)
		return token.Bundle{}, autherrors.NewAuthError(autherrors.KindMissingVerifier, nil)
	}
	scope.ClearFlow()

	tok, err := e.oauth.Exchange(e.clientContext(ctx), code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		guard.Unmark(key)
		return token.Bundle{}, rejection(autherrors.KindExchangeRejected, err)
	}

	bundle := e.bundleFrom(tok)
	if e.verifier != nil && bundle.IDToken != "" {
		if _, err := e.verifier.Verify(e.clientContext(ctx), bundle.IDToken); err != nil {
			guard.Unmark(key)
			return token.Bundle{}, &autherrors.AuthError{
				Kind:   autherrors.KindExchangeRejected,
				Detail: "id token verification failed",
				Err:    err,
			}
		}
	}

	if err := e.store.Save(bundle); err != nil {
		guard.Unmark(key)
		return token.Bundle{}, fmt.Errorf("[pkce ExchangeCodeForTokens] persist: %w", err)
	}
	log.Info().
		Time("expiresAt", bundle.ExpiresAt()).
		Bool("refreshToken", bundle.HasRefreshToken()).
		Bool("idToken", bundle.IDToken != "").
		Msg("authorization code exchanged")
	return bundle, nil
}

// RefreshTokens obtains a new bundle with a refresh token. The previous
// refresh token is kept when the response does not rotate it.
func (e *Engine) RefreshTokens(ctx context.Context, refreshToken string) (token.Bundle, error) {
	src := e.oauth.TokenSource(e.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return token.Bundle{}, rejection(autherrors.KindRefreshRejected, err)
	}

	bundle := e.bundleFrom(tok)
	if bundle.RefreshToken == "" {
		bundle.RefreshToken = refreshToken
	}
	if err := e.store.Save(bundle); err != nil {
		return token.Bundle{}, fmt.Errorf("[pkce RefreshTokens] persist: %w", err)
	}
	log.Debug().Time("expiresAt", bundle.ExpiresAt()).Msg("tokens refreshed")
	return bundle, nil
}

// StartLogoutRedirect returns the IdP logout URL. idTokenHint may be empty.
func (e *Engine) StartLogoutRedirect(idTokenHint string) string {
	params := url.Values{}
	params.Set("client_id", e.settings.ClientID)
	params.Set("post_logout_redirect_uri", e.settings.PostLogoutRedirectURL)
	if idTokenHint != "" {
		params.Set("id_token_hint", idTokenHint)
	}
	return e.endpoints.LogoutURL + "?" + params.Encode()
}

func (e *Engine) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
}

// bundleFrom converts a token response. Expiry is computed from the raw
// expires_in so the engine clock is the only time source.
func (e *Engine) bundleFrom(tok *oauth2.Token) token.Bundle {
	idToken, _ := tok.Extra("id_token").(string)
	return token.Bundle{
		AccessToken:      tok.AccessToken,
		RefreshToken:     tok.RefreshToken,
		IDToken:          idToken,
		ExpiresAtEpochMs: e.now().UnixMilli() + expiresIn(tok)*1000,
	}
}

func expiresIn(tok *oauth2.Token) int64 {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return tok.ExpiresIn
}

// rejection maps a token endpoint failure to an AuthError of kind, keeping the
// HTTP status and body when the endpoint answered.
func rejection(kind autherrors.Kind, err error) *autherrors.AuthError {
	authErr := autherrors.NewAuthError(kind, nil)
	var retrieveErr *oauth2.RetrieveError
	if autherrors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		authErr.Status = retrieveErr.Response.StatusCode
		authErr.Detail = string(retrieveErr.Body)
		return authErr
	}
	authErr.Err = err
	return authErr
}
