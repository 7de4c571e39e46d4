// Package callback handles the browser's return from the identity provider.
package callback

import (
	"context"
	"net/url"

	"github.com/jrsteele09/tsdash/flowstate"
	"github.com/jrsteele09/tsdash/token"
	"github.com/rs/zerolog/log"
)

// DefaultPostLoginPath is used when no page asked for the login.
const DefaultPostLoginPath = "/restricted"

const missingParamsMessage = "Missing code/state in callback."

// Exchanger trades an authorization code for tokens.
type Exchanger interface {
	ExchangeCodeForTokens(ctx context.Context, scope *flowstate.Scope, code, returnedState string) (token.Bundle, error)
}

// Result is the outcome of one callback. Exactly one of Redirect, Error and
// Cancelled is set.
type Result struct {
	Redirect  string
	Error     string
	Cancelled bool
}

type Handler struct {
	exchanger   Exchanger
	defaultPath string
	onSuccess   func(token.Bundle)
}

type Option func(*Handler)

func WithDefaultPath(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.defaultPath = path
		}
	}
}

// WithOnSuccess registers fn to run after a completed exchange, e.g. to
// refresh the session cache.
func WithOnSuccess(fn func(token.Bundle)) Option {
	return func(h *Handler) {
		h.onSuccess = fn
	}
}

func New(exchanger Exchanger, opts ...Option) *Handler {
	h := &Handler{
		exchanger:   exchanger,
		defaultPath: DefaultPostLoginPath,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes the callback query. The callback guard is marked before the
// exchange starts, so a repeated callback for the same code only redirects.
// The exchange is never aborted: when ctx ends first its result is dropped.
func (h *Handler) Handle(ctx context.Context, scope *flowstate.Scope, query url.Values) Result {
	if msg := query.Get("error"); msg != "" {
		if desc := query.Get("error_description"); desc != "" {
			msg += ": " + desc
		}
		log.Warn().Str("error", query.Get("error")).Msg("identity provider returned an error")
		return Result{Error: msg}
	}

	code, state := query.Get("code"), query.Get("state")
	if code == "" || state == "" {
		return Result{Error: missingParamsMessage}
	}

	key := flowstate.CallbackKey{Code: code, State: state}
	guard := scope.CallbackGuard()
	if !guard.Mark(key) {
		log.Debug().Msg("callback already handled")
		return Result{Redirect: h.postLoginPath(scope)}
	}

	bundle, err := h.exchanger.ExchangeCodeForTokens(context.WithoutCancel(ctx), scope, code, state)
	if ctx.Err() != nil {
		log.Debug().Err(err).Msg("callback abandoned before exchange finished")
		return Result{Cancelled: true}
	}
	if err != nil {
		guard.Unmark(key)
		log.Err(err).Msg("authorization code exchange failed")
		return Result{Error: err.Error()}
	}

	if h.onSuccess != nil {
		h.onSuccess(bundle)
	}
	return Result{Redirect: h.postLoginPath(scope)}
}

func (h *Handler) postLoginPath(scope *flowstate.Scope) string {
	if path, ok := scope.ConsumePostLoginPath(); ok {
		return path
	}
	return h.defaultPath
}
