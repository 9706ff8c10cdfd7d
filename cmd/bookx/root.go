package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adna-tk/book-explorer/internal/api"
	"github.com/adna-tk/book-explorer/internal/auth"
	"github.com/adna-tk/book-explorer/internal/catalog"
	"github.com/adna-tk/book-explorer/internal/config"
	"github.com/adna-tk/book-explorer/internal/querycache"
	"github.com/adna-tk/book-explorer/internal/tokenstore"
)

// app holds the wired client stack shared by every command.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	tokens  tokenstore.Store
	client  *api.Client
	auth    *auth.Manager
	cache   *querycache.Cache
	catalog *catalog.Catalog
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	zerolog.TimeFieldFormat = time.RFC3339Nano
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", cfg.LogLevel, err)
	}
	a.log = zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("service", "bookx").Logger()
	if cfg.Pretty {
		a.log = a.log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	store, err := tokenstore.NewFile(cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}
	a.tokens = store

	a.cache = querycache.New(querycache.WithLogger(a.log.With().Str("component", "cache").Logger()))
	a.client = api.New(cfg.APIURL, store,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithLogger(a.log.With().Str("component", "api").Logger()),
		api.WithSessionEndedHandler(func() {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run `bookx login` to sign in again.")
		}),
	)
	a.auth = auth.New(a.client, store, a.cache,
		auth.WithLogger(a.log.With().Str("component", "auth").Logger()))
	a.catalog = catalog.New(a.client, a.cache,
		catalog.WithLogger(a.log.With().Str("component", "catalog").Logger()),
		catalog.WithAuthGate(a.auth.IsAuthenticated))
	return nil
}

func rootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bookx",
		Short:         "Book Explorer command-line client",
		Long:          "bookx browses the Book Explorer catalog, manages personal notes, and keeps the session tokens fresh behind the scenes.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		meCmd(a),
		booksCmd(a),
		bookCmd(a),
		notesCmd(a),
		browseCmd(a),
		demoAPICmd(a),
	)
	return root
}
