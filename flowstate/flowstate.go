// Package flowstate holds the volatile, per browser session state of an
// in-flight login: the PKCE flow state, the callback guards and the page to
// return to after login. Nothing here is persisted.
package flowstate

import "time"

// FlowState is created by the login redirect and consumed exactly once by a
// successful code exchange.
type FlowState struct {
	State        string
	CodeVerifier string
	CreatedAt    time.Time
}

// CallbackKey identifies one authorization response.
type CallbackKey struct {
	Code  string
	State string
}
