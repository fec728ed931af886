package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/cart"
	"github.com/vikram583135/platepal2.o-sub000/internal/env"
	"github.com/vikram583135/platepal2.o-sub000/internal/reconcile"
	"github.com/vikram583135/platepal2.o-sub000/internal/store/sqlite"
)

// rootOptions holds the flags every command shares.
type rootOptions struct {
	DB      string
	Session string
	Format  string
	Verbose bool
}

var validFormats = []string{"text", "json"}

// NewRootCommand builds the cartctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cartctl",
		Short: "Local cart and checkout client",
		Long: `cartctl keeps a single-vendor cart in a local SQLite file and places
orders against the order and payment backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return usageError(fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats))
			}
			if opts.Session == "" {
				return usageError(fmt.Errorf("session must not be empty"))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", env.GetString("CARTCTL_DB", "cart.db"), "path to the cart database")
	cmd.PersistentFlags().StringVarP(&opts.Session, "session", "s", env.GetString("CARTCTL_SESSION", "default"), "cart session id")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newSetQuantityCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newClearCommand(opts))
	cmd.AddCommand(newCheckoutCommand(opts))
	cmd.AddCommand(newSessionCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}

func newLogger(opts *rootOptions) *zap.SugaredLogger {
	if !opts.Verbose {
		return zap.NewNop().Sugar()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// session is an opened database with the session's cart rehydrated.
type session struct {
	db     *sqlite.Store
	cart   *cart.Store
	logger *zap.SugaredLogger
}

func openSession(ctx context.Context, opts *rootOptions) (*session, error) {
	logger := newLogger(opts)

	db, err := sqlite.Open(opts.DB)
	if err != nil {
		return nil, commandError(fmt.Errorf("failed to open %s: %w", opts.DB, err))
	}

	store := cart.NewStore(cart.StorageKey(opts.Session), db, reconcile.New(logger), logger.With("session_id", opts.Session))
	if err := store.Rehydrate(ctx); err != nil {
		logger.Warnw("cart rehydration failed, starting with an empty cart", "error", err)
	}

	return &session{db: db, cart: store, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warnw("failed to close database", "error", err)
	}
	_ = s.logger.Sync()
}
