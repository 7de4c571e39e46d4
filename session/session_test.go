package session_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/tsdash/flowstate"
	"github.com/jrsteele09/tsdash/internal/idptest"
	wire "github.com/jrsteele09/tsdash/oauth2"
	"github.com/jrsteele09/tsdash/pkce"
	"github.com/jrsteele09/tsdash/session"
	"github.com/jrsteele09/tsdash/token"
	tokenfakerepo "github.com/jrsteele09/tsdash/token/repofake"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	idp    *idptest.Server
	store  *token.Store
	engine *pkce.Engine
}

func setupSession(t *testing.T) *sessionFixture {
	t.Helper()
	idp := idptest.New(t)
	store := token.NewStore(tokenfakerepo.NewFakeKV())
	engine := pkce.New(pkce.RealmEndpoints(idp.RealmURL()), pkce.Settings{
		ClientID:              idptest.ClientID,
		RedirectURL:           "http://localhost:9005/auth/callback",
		PostLogoutRedirectURL: "http://localhost:9005/",
		Scopes:                []string{"openid", "profile", "email"},
	}, store, pkce.WithHTTPClient(idp.Client()))
	return &sessionFixture{idp: idp, store: store, engine: engine}
}

func (f *sessionFixture) save(t *testing.T, b token.Bundle) {
	t.Helper()
	require.NoError(t, f.store.Save(b))
}

func validBundle() token.Bundle {
	return token.Bundle{
		AccessToken:      idptest.AccessToken(time.Now().Add(time.Hour), nil),
		RefreshToken:     "refresh-0",
		IDToken:          "id-token-0",
		ExpiresAtEpochMs: time.Now().Add(time.Hour).UnixMilli(),
	}
}

func expiredBundle() token.Bundle {
	return token.Bundle{
		AccessToken:      idptest.AccessToken(time.Now().Add(-time.Minute), nil),
		RefreshToken:     "refresh-0",
		ExpiresAtEpochMs: time.Now().Add(-time.Minute).UnixMilli(),
	}
}

func TestNew_LoadsEagerly(t *testing.T) {
	f := setupSession(t)
	b := validBundle()
	f.save(t, b)

	s := session.New(f.engine, f.store)
	got, ok := s.Tokens()
	require.True(t, ok)
	require.Equal(t, b, got)
	require.True(t, s.IsAuthenticated())

	claims, ok := s.Claims()
	require.True(t, ok)
	require.Equal(t, "jdoe", claims.PreferredUsername())
}

func TestIsAuthenticated(t *testing.T) {
	t.Run("no tokens", func(t *testing.T) {
		f := setupSession(t)
		require.False(t, session.New(f.engine, f.store).IsAuthenticated())
	})

	t.Run("expiring within skew", func(t *testing.T) {
		f := setupSession(t)
		b := validBundle()
		b.AccessToken = idptest.AccessToken(time.Now().Add(5*time.Second), nil)
		f.save(t, b)

		s := session.New(f.engine, f.store)
		_, ok := s.Tokens()
		require.True(t, ok)
		require.False(t, s.IsAuthenticated())
	})

	t.Run("recomputed on every read", func(t *testing.T) {
		f := setupSession(t)
		f.save(t, validBundle())
		now := time.Now()
		s := session.New(f.engine, f.store, session.WithClock(func() time.Time { return now }))
		require.True(t, s.IsAuthenticated())

		now = now.Add(2 * time.Hour)
		require.False(t, s.IsAuthenticated())
	})
}

func TestGetValidAccessToken_FastPath(t *testing.T) {
	f := setupSession(t)
	b := validBundle()
	f.save(t, b)
	s := session.New(f.engine, f.store)

	for i := 0; i < 3; i++ {
		accessToken, ok := s.GetValidAccessToken(context.Background())
		require.True(t, ok)
		require.Equal(t, b.AccessToken, accessToken)
	}
	require.Empty(t, f.idp.Calls(""))
}

func TestGetValidAccessToken_Refresh(t *testing.T) {
	f := setupSession(t)
	f.save(t, expiredBundle())
	s := session.New(f.engine, f.store)

	accessToken, ok := s.GetValidAccessToken(context.Background())
	require.True(t, ok)
	require.NotEmpty(t, accessToken)
	require.True(t, s.IsAuthenticated())

	cached, _ := s.Tokens()
	require.Equal(t, accessToken, cached.AccessToken)
	require.Equal(t, "refresh-0", cached.RefreshToken)

	persisted, ok := f.store.Load()
	require.True(t, ok)
	require.Equal(t, cached, persisted)

	_, ok = s.GetValidAccessToken(context.Background())
	require.True(t, ok)
	require.Len(t, f.idp.Calls(wire.RefreshTokenCodeGrant), 1)
}

func TestGetValidAccessToken_RefreshFailureForcesLogout(t *testing.T) {
	f := setupSession(t)
	f.save(t, expiredBundle())
	f.idp.Reject(wire.RefreshTokenCodeGrant, http.StatusBadRequest)
	s := session.New(f.engine, f.store)

	accessToken, ok := s.GetValidAccessToken(context.Background())
	require.False(t, ok)
	require.Empty(t, accessToken)
	require.False(t, s.IsAuthenticated())

	_, ok = s.Tokens()
	require.False(t, ok)
	_, ok = f.store.Load()
	require.False(t, ok)

	f.idp.Reject(wire.RefreshTokenCodeGrant, 0)
	_, ok = s.GetValidAccessToken(context.Background())
	require.False(t, ok, "no retry once the session has ended")
	require.Len(t, f.idp.Calls(wire.RefreshTokenCodeGrant), 1)
}

func TestGetValidAccessToken_NothingToDo(t *testing.T) {
	t.Run("no tokens", func(t *testing.T) {
		f := setupSession(t)
		_, ok := session.New(f.engine, f.store).GetValidAccessToken(context.Background())
		require.False(t, ok)
		require.Empty(t, f.idp.Calls(""))
	})

	t.Run("expired without refresh token", func(t *testing.T) {
		f := setupSession(t)
		b := expiredBundle()
		b.RefreshToken = ""
		f.save(t, b)

		_, ok := session.New(f.engine, f.store).GetValidAccessToken(context.Background())
		require.False(t, ok)
		require.Empty(t, f.idp.Calls(""))
	})

	t.Run("picks up tokens persisted after start", func(t *testing.T) {
		f := setupSession(t)
		s := session.New(f.engine, f.store)
		b := validBundle()
		f.save(t, b)

		accessToken, ok := s.GetValidAccessToken(context.Background())
		require.True(t, ok)
		require.Equal(t, b.AccessToken, accessToken)
	})
}

func TestLogin(t *testing.T) {
	f := setupSession(t)
	s := session.New(f.engine, f.store)
	scope := flowstate.NewScope()

	authURL, err := s.Login(scope)
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)

	flow, ok := scope.Flow()
	require.True(t, ok)
	require.Equal(t, flow.State, u.Query().Get("state"))
}

func TestLogout(t *testing.T) {
	t.Run("uses the freshest persisted id token", func(t *testing.T) {
		f := setupSession(t)
		f.save(t, validBundle())
		s := session.New(f.engine, f.store)

		newer := validBundle()
		newer.IDToken = "id-token-from-other-tab"
		f.save(t, newer)

		logoutURL := s.Logout()
		u, err := url.Parse(logoutURL)
		require.NoError(t, err)
		require.Equal(t, "id-token-from-other-tab", u.Query().Get("id_token_hint"))

		_, ok := s.Tokens()
		require.False(t, ok)
		_, ok = f.store.Load()
		require.False(t, ok)
		require.False(t, s.IsAuthenticated())
	})

	t.Run("no id token", func(t *testing.T) {
		f := setupSession(t)
		b := validBundle()
		b.IDToken = ""
		f.save(t, b)
		s := session.New(f.engine, f.store)

		require.Empty(t, s.Logout())
		_, ok := s.Tokens()
		require.False(t, ok)
	})

	t.Run("already logged out", func(t *testing.T) {
		f := setupSession(t)
		s := session.New(f.engine, f.store)
		require.Empty(t, s.Logout())
	})
}

// blockingFlow counts refreshes and blocks each one until released.
type blockingFlow struct {
	mu      sync.Mutex
	calls   int
	entered sync.WaitGroup
	release chan struct{}
}

func (b *blockingFlow) StartLoginRedirect(*flowstate.Scope) (string, error) { return "", nil }
func (b *blockingFlow) StartLogoutRedirect(string) string { return "" }

func (b *blockingFlow) RefreshTokens(context.Context, string) (token.Bundle, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.entered.Done()
	<-b.release
	return validBundle(), nil
}

func (b *blockingFlow) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func concurrentGets(s *session.Session, n int) []bool {
	results := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.GetValidAccessToken(context.Background())
		}(i)
	}
	wg.Wait()
	return results
}

func TestGetValidAccessToken_ConcurrentRefreshNotCoalesced(t *testing.T) {
	const n = 4
	store := token.NewStore(tokenfakerepo.NewFakeKV())
	require.NoError(t, store.Save(expiredBundle()))

	flow := &blockingFlow{release: make(chan struct{})}
	flow.entered.Add(n)
	s := session.New(flow, store)

	go func() {
		flow.entered.Wait()
		close(flow.release)
	}()
	for _, ok := range concurrentGets(s, n) {
		require.True(t, ok)
	}
	require.Equal(t, n, flow.Calls())
}

func TestGetValidAccessToken_ConcurrentRefreshCoalesced(t *testing.T) {
	const n = 4
	store := token.NewStore(tokenfakerepo.NewFakeKV())
	require.NoError(t, store.Save(expiredBundle()))

	flow := &blockingFlow{release: make(chan struct{})}
	flow.entered.Add(1)
	s := session.New(flow, store, session.WithRefreshCoalescing())

	go func() {
		flow.entered.Wait()
		time.Sleep(100 * time.Millisecond)
		close(flow.release)
	}()
	for _, ok := range concurrentGets(s, n) {
		require.True(t, ok)
	}
	require.Equal(t, 1, flow.Calls())
}
