package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/tsdash/apiclient"
	"github.com/jrsteele09/tsdash/callback"
	"github.com/jrsteele09/tsdash/flowstate"
	"github.com/jrsteele09/tsdash/internal/config"
	"github.com/jrsteele09/tsdash/pkce"
	"github.com/jrsteele09/tsdash/server"
	"github.com/jrsteele09/tsdash/session"
	"github.com/jrsteele09/tsdash/token"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const scopeEvictInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard (default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func run(ctx context.Context, cfg config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("stack", string(debug.Stack())).Msgf("Recovered from panic: %v", r)
			returnError = errors.New("panic recovered")
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeStore, err := openTokenStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	deps, err := buildDeps(ctx, cfg, store)
	if err != nil {
		return err
	}

	evictCtx, stopEvict := context.WithCancel(ctx)
	defer stopEvict()
	go evictIdleScopes(evictCtx, deps.Scopes)

	displayAppname(cfg.GetAppName())
	srv := &http.Server{Addr: cfg.GetPort(), Handler: server.New(cfg, deps)}

	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(srv, cfg) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// buildDeps wires the auth core: engine, session, callback handler and the
// authenticated API client.
func buildDeps(ctx context.Context, cfg config.Config, store *token.Store) (server.Deps, error) {
	engine, err := pkce.NewFromConfig(ctx, cfg, store)
	if err != nil {
		return server.Deps{}, fmt.Errorf("identity provider: %w", err)
	}

	sessionOpts := []session.Option{session.WithSkew(cfg.GetExpirySkew())}
	if cfg.GetCoalesceRefresh() {
		sessionOpts = append(sessionOpts, session.WithRefreshCoalescing())
	}
	sess := session.New(engine, store, sessionOpts...)

	handler := callback.New(engine,
		callback.WithDefaultPath(cfg.GetDefaultPostLoginPath()),
		callback.WithOnSuccess(func(b token.Bundle) {
			sess.Reload()
			if claims, ok := token.DecodeClaims(b.AccessToken); ok {
				log.Info().Str("user", claims.PreferredUsername()).Msg("signed in")
			}
		}),
	)

	return server.Deps{
		Session:  sess,
		Callback: handler,
		Scopes:   flowstate.NewRegistry(flowstate.WithMaxIdle(cfg.GetMaxSessionAge())),
		API:      apiclient.NewClient(cfg.GetAPIBaseURL(), apiclient.NewBinder(sess, nil)),
	}, nil
}

func evictIdleScopes(ctx context.Context, scopes *flowstate.Registry) {
	ticker := time.NewTicker(scopeEvictInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := scopes.Evict(); n > 0 {
				log.Debug().Int("evicted", n).Msg("dropped idle tab scopes")
			}
		}
	}
}

func listenAndServe(srv *http.Server, cfg config.Config) error {
	log.Info().Msgf("Server listening on %s%s/", cfg.GetPublicURL(), cfg.GetAppBasename())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
