package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowing/internal/config"
	"github.com/abhisek/knowing/internal/review"
	"github.com/abhisek/knowing/internal/spacedrep"
	"github.com/abhisek/knowing/internal/store"
)

// clock is the time source for every command. Tests replace it.
var clock spacedrep.Clock = spacedrep.SystemClock{}

// session holds the dependencies a command runs with.
type session struct {
	store   *store.Store
	svc     *review.Service
	learner string
	out     *printer
}

func (s *session) Close() error {
	return s.store.Close()
}

// openSession loads config, opens the store and builds the review service.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	logger.Debug("store opened", "path", dbPath)

	learner := cfg.Learner
	if l, _ := cmd.Flags().GetString("learner"); strings.TrimSpace(l) != "" {
		learner = strings.TrimSpace(l)
	}

	return &session{
		store:   st,
		svc:     review.NewService(st.ProgressRepo(), st.EventRepo(), clock, logger),
		learner: learner,
		out:     newPrinter(cmd.OutOrStdout()),
	}, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then KNOWING_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// withSession opens a session, runs fn, and closes the session.
func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
