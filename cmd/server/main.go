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
	"github.com/jrsteele09/tennis-club/internal/config"
	"github.com/jrsteele09/tennis-club/internal/jobs"
	"github.com/jrsteele09/tennis-club/internal/logger"
	fakememberrepo "github.com/jrsteele09/tennis-club/members/repofake"
	"github.com/jrsteele09/tennis-club/oidclogin"
	"github.com/jrsteele09/tennis-club/server"
	"github.com/jrsteele09/tennis-club/session"
	"github.com/jrsteele09/tennis-club/session/redisstore"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger.Init(c.GetLogLevel(), c.GetLogFormat())
	if err := config.Validate(c); err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	ctx := context.Background()

	revoked := session.NewInMemoryRevokedTokens()
	tokens, err := session.NewTokens(c.GetSessionSecret(), c.GetSessionTTL(), session.WithRevokedTokens(revoked))
	if err != nil {
		return err
	}

	store, expiring, closeStore, err := newSessionStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	manager, err := session.NewManager(store, tokens)
	if err != nil {
		return err
	}

	memberRepo := fakememberrepo.NewFakeMemberRepo()
	password, err := server.BootstrapClubAdmin(memberRepo, c.GetBaseURL(), config.GetEnv("CLUB_ADMIN_PASSWORD", ""))
	if err != nil {
		return err
	}
	if password != "" {
		log.Warn().Str("password", password).Msg("Generated club admin password - save it, it will not be shown again")
	}

	deps := server.Deps{Sessions: manager, Members: memberRepo}
	if c.OIDCEnabled() {
		flow, err := oidclogin.Discover(ctx, c.GetOIDCIssuer(), c.GetOIDCClientID(), c.GetOIDCClientSecret(), c.GetBaseURL()+server.RouteCallback)
		if err != nil {
			return fmt.Errorf("oidc discovery: %w", err)
		}
		deps.OIDC = flow
		log.Info().Str("issuer", c.GetOIDCIssuer()).Msg("Federated sign-in enabled")
	}

	handler, err := server.New(c, deps)
	if err != nil {
		return err
	}

	sweeper := jobs.NewSweeper(c.GetSweepSchedule(), expiring, revoked)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop(ctx)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newSessionStore picks the configured store. expiring is nil when the store
// expires entries on its own.
func newSessionStore(ctx context.Context, c config.Config) (store session.Store, expiring jobs.ExpiringSessions, closeFn func(), err error) {
	switch c.GetSessionStore() {
	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, c.GetRedisAddress(), c.GetRedisPassword(), c.GetRedisDB())
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("address", c.GetRedisAddress()).Msg("Using redis session store")
		return redisstore.New(client), nil, func() { _ = client.Close() }, nil
	case config.StoreMemory:
		mem := session.NewMemoryStore()
		log.Info().Msg("Using in-memory session store")
		return mem, mem, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown SESSION_STORE %q", c.GetSessionStore())
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
