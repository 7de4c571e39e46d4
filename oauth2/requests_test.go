package oauth2_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/tsdash/oauth2"
	"github.com/stretchr/testify/require"
)

const (
	rfcVerifier  = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	rfcChallenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
)

func validAuthorization() url.Values {
	return url.Values{
		"client_id":             {"react-app"},
		"response_type":         {"code"},
		"redirect_uri":          {"http://localhost:9005/auth/callback"},
		"scope":                 {"openid profile email"},
		"state":                 {"0123456789abcdef"},
		"code_challenge":        {rfcChallenge},
		"code_challenge_method": {"S256"},
	}
}

func TestAuthorizationRequest_Validate(t *testing.T) {
	req := oauth2.ParseAuthorizationRequest(validAuthorization())
	require.NoError(t, req.Validate())
	require.Equal(t, []string{"openid", "profile", "email"}, req.Scopes())

	cases := []struct {
		name   string
		mutate func(url.Values)
		want   error
	}{
		{name: "no client", mutate: func(q url.Values) { q.Del("client_id") }, want: oauth2.ErrMissingParameter},
		{name: "token response type", mutate: func(q url.Values) { q.Set("response_type", "token") }, want: oauth2.ErrInvalidResponseType},
		{name: "no redirect", mutate: func(q url.Values) { q.Del("redirect_uri") }, want: oauth2.ErrInvalidRedirectURI},
		{name: "custom scheme", mutate: func(q url.Values) { q.Set("redirect_uri", "app://callback") }, want: oauth2.ErrInvalidRedirectURI},
		{name: "fragment", mutate: func(q url.Values) { q.Set("redirect_uri", "http://localhost/cb#x") }, want: oauth2.ErrInvalidRedirectURI},
		{name: "short state", mutate: func(q url.Values) { q.Set("state", "abc") }, want: oauth2.ErrInvalidState},
		{name: "no challenge", mutate: func(q url.Values) { q.Del("code_challenge") }, want: oauth2.ErrInvalidCodeChallenge},
		{name: "plain method", mutate: func(q url.Values) { q.Set("code_challenge_method", "plain") }, want: oauth2.ErrInvalidCodeChallengeMethod},
		{name: "short challenge", mutate: func(q url.Values) { q.Set("code_challenge", "abc") }, want: oauth2.ErrInvalidCodeChallenge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validAuthorization()
			tc.mutate(q)
			require.ErrorIs(t, oauth2.ParseAuthorizationRequest(q).Validate(), tc.want)
		})
	}
}

func TestTokenRequest_Validate(t *testing.T) {
	code := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {"react-app"},
		"code":          {"abc"},
		"code_verifier": {rfcVerifier},
		"redirect_uri":  {"http://localhost:9005/auth/callback"},
	}
	require.NoError(t, oauth2.ParseTokenRequest(code).Validate())

	refresh := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {"react-app"},
		"refresh_token": {"rt"},
	}
	require.NoError(t, oauth2.ParseTokenRequest(refresh).Validate())

	bad := url.Values{"grant_type": {"password"}, "client_id": {"react-app"}}
	require.ErrorIs(t, oauth2.ParseTokenRequest(bad).Validate(), oauth2.ErrInvalidGrantType)

	code.Set("code_verifier", strings.Repeat("a", 42))
	require.ErrorIs(t, oauth2.ParseTokenRequest(code).Validate(), oauth2.ErrInvalidCodeVerifier)

	refresh.Del("refresh_token")
	require.ErrorIs(t, oauth2.ParseTokenRequest(refresh).Validate(), oauth2.ErrMissingParameter)
}

func TestCheckCodeChallenge(t *testing.T) {
	require.True(t, oauth2.CheckCodeChallenge(rfcChallenge, rfcVerifier, oauth2.CodeMethodTypeS256))
	require.False(t, oauth2.CheckCodeChallenge(rfcChallenge, rfcVerifier+"x", oauth2.CodeMethodTypeS256))
	require.False(t, oauth2.CheckCodeChallenge(rfcVerifier, rfcVerifier, oauth2.CodeMethodType("plain")))
}
