// Package cmd implements the cfl command line application to browse the crypto
// markets and track a portfolio.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/avatar"
	"github.com/etnz/coinfolio/coingecko"
	"github.com/etnz/coinfolio/config"
	"github.com/etnz/coinfolio/logger"
	"github.com/etnz/coinfolio/postgres"
	"github.com/etnz/coinfolio/sqlite"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&signupCmd{}, "account")
	c.Register(&loginCmd{}, "account")
	c.Register(&logoutCmd{}, "account")
	c.Register(&passwdCmd{}, "account")
	c.Register(&profileCmd{}, "account")
	c.Register(&avatarCmd{}, "account")

	c.Register(&marketsCmd{}, "markets")
	c.Register(&coinCmd{}, "markets")
	c.Register(&favCmd{}, "markets")

	c.Register(&portfolioCmd{}, "portfolio")
	c.Register(&addCmd{}, "portfolio")
	c.Register(&setCmd{}, "portfolio")
	c.Register(&rmCmd{}, "portfolio")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", filepath.Join(config.Dir(), "config.yml"), "Path to the configuration file (YAML)")
var sessionFile = flag.String("session-file", "", "Path to the session file, overrides the configuration")
var currencyFlag = flag.String("currency", "", "Quote currency (ISO code or auto), overrides the configuration")
var Verbose = flag.Bool("v", false, "verbose logging")

// stdout receives the command results, stderr the notices.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// app holds what the commands share: the configuration and the services.
type app struct {
	cfg      *config.Config
	currency coinfolio.Currency
	market   coinfolio.MarketData
	backend  coinfolio.Backend
	avatars  coinfolio.AvatarStorage
	log      *logger.Entry
}

// openApp loads the configuration and opens the services.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *sessionFile != "" {
		cfg.SessionFile = *sessionFile
	}
	if *currencyFlag != "" {
		cfg.Currency = *currencyFlag
	}

	level := cfg.Logging.Level
	if *Verbose {
		level = "debug"
	}
	if err := logger.GetLogger().Configure(level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		return nil, fmt.Errorf("cannot configure logging: %w", err)
	}

	cur, err := coinfolio.ResolveCurrency(cfg.Currency, cfg.Locale)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		currency: cur,
		market: coingecko.New(coingecko.Options{
			BaseURL:           cfg.CoinGecko.BaseURL,
			APIKey:            cfg.CoinGecko.APIKey,
			RequestsPerMinute: cfg.CoinGecko.RequestsPerMinute,
			CacheTTL:          cfg.CoinGecko.CacheTTL,
			CacheDir:          cfg.CoinGecko.CacheDir,
			Timeout:           cfg.CoinGecko.Timeout,
		}),
		log: logger.GetLogger().WithComponent("cfl"),
	}

	a.backend, err = openBackend(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if cfg.Avatars.Enabled {
		storage, err := avatar.New(ctx, avatar.Options{
			Bucket:          cfg.Avatars.Bucket,
			Region:          cfg.Avatars.Region,
			Endpoint:        cfg.Avatars.Endpoint,
			PublicBaseURL:   cfg.Avatars.PublicBaseURL,
			AccessKeyID:     cfg.Avatars.AccessKeyID,
			SecretAccessKey: cfg.Avatars.SecretAccessKey,
			PathStyle:       cfg.Avatars.PathStyle,
		})
		if err != nil {
			a.backend.Close()
			return nil, err
		}
		a.avatars = storage
	}
	return a, nil
}

func openBackend(ctx context.Context, cfg config.StoreConfig) (coinfolio.Backend, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o700); err != nil {
			return nil, fmt.Errorf("cannot create the database folder: %w", err)
		}
		store, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.log.WithError(err).Warn("cannot close the store")
	}
}

// session resumes the saved session. It returns ErrNotSignedIn when there is
// none or when it was revoked.
func (a *app) session(ctx context.Context) (*coinfolio.Session, error) {
	saved, err := loadSession(a.cfg.SessionFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, coinfolio.ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	return coinfolio.Resume(ctx, a.backend, saved.Token, a.currency)
}

// tracker returns a tracker for the signed in user, or an anonymous one.
func (a *app) tracker(ctx context.Context) (*coinfolio.Tracker, *coinfolio.Session) {
	s, err := a.session(ctx)
	if err != nil {
		if !errors.Is(err, coinfolio.ErrNotSignedIn) {
			a.log.WithError(err).Warn("cannot resume the session")
		}
		return coinfolio.NewTracker(a.currency, a.market), nil
	}
	return coinfolio.NewUserTracker(s, a.market, a.backend, a.backend), s
}

// userTracker is like tracker but requires a signed in user.
func (a *app) userTracker(ctx context.Context) (*coinfolio.Tracker, *coinfolio.Session, error) {
	s, err := a.session(ctx)
	if err != nil {
		return nil, nil, err
	}
	return coinfolio.NewUserTracker(s, a.market, a.backend, a.backend), s, nil
}

// failure reports err on stderr and returns the matching exit status.
func failure(what string, err error) subcommands.ExitStatus {
	var verr *coinfolio.ValidationError
	switch {
	case errors.Is(err, coinfolio.ErrNotSignedIn):
		fmt.Fprintf(stderr, "Error %s: not signed in, run 'cfl login' first\n", what)
	case errors.As(err, &verr):
		fmt.Fprintf(stderr, "Error %s: %v\n", what, err)
		return subcommands.ExitUsageError
	default:
		fmt.Fprintf(stderr, "Error %s: %v\n", what, err)
	}
	return subcommands.ExitFailure
}

// withApp opens the app, runs f and closes the app.
func withApp(ctx context.Context, f func(*app) subcommands.ExitStatus) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		return failure("opening cfl", err)
	}
	defer a.Close()
	return f(a)
}
