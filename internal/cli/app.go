package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cj3636/gitdiffview/internal/config"
	"github.com/cj3636/gitdiffview/internal/export"
	"github.com/cj3636/gitdiffview/internal/gitquery"
	"github.com/cj3636/gitdiffview/internal/history"
	"github.com/cj3636/gitdiffview/internal/session"
)

const (
	configFileName = "config.yaml"
	debugLogFile   = "gitdiffview.log"
	historyDBFile  = "history.db"
)

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	session *session.Session
	log     *slog.Logger
	closers []io.Closer
}

// newApp loads configuration and preferences and builds a session. The
// interactive flag keeps logs off the terminal the TUI draws on.
func newApp(ctx context.Context, interactive bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	a := &app{cfg: cfg}
	a.log, err = a.newLogger(interactive)
	if err != nil {
		return nil, err
	}

	prefs := config.LoadPreferences(cfg.PrefsFile)
	repoBackend, err := a.repoBackend()
	if err != nil {
		a.Close()
		return nil, err
	}

	repos := history.New(repoBackend, history.IsGitRepo, history.WithLogger(a.log))
	encodings := history.New(history.PrefsBackend{Store: prefs, Key: config.KeyEncodingHistory}, history.NonEmpty, history.WithLogger(a.log))
	q := gitquery.New(cfg.GitBackend, a.log)

	s := session.New(cfg, prefs, q, repos, encodings, a.log)
	s.Clipboard = export.NewClipboard(cfg.Clipboard, os.Stdout)
	if flagEncoding != "" {
		if err := s.SelectEncoding(ctx, flagEncoding); err != nil {
			a.Close()
			return nil, err
		}
	}
	a.session = s
	a.log.Debug("configuration loaded", "git", cfg.GitBackend, "history", cfg.HistoryBackend, "clipboard", cfg.Clipboard)
	return a, nil
}

func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = filepath.Join(config.DefaultDir(), configFileName)
	}
	return config.LoadFile(path)
}

func (a *app) newLogger(interactive bool) (*slog.Logger, error) {
	if flagDebug {
		f, err := tea.LogToFile(debugLogFile, "debug")
		if err != nil {
			return nil, fmt.Errorf("opening debug log: %w", err)
		}
		a.closers = append(a.closers, f)
		return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})), nil
	}
	if interactive {
		return slog.New(slog.DiscardHandler), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})), nil
}

func (a *app) repoBackend() (history.Backend, error) {
	switch a.cfg.HistoryBackend {
	case config.HistorySQLiteBackend:
		path := filepath.Join(filepath.Dir(a.cfg.PrefsFile), historyDBFile)
		db, err := history.OpenSQLite(path, "repositories")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		return db, nil
	default:
		return history.FileBackend{Path: a.cfg.HistoryFile}, nil
	}
}

// openRepo opens the repository named by --repo, or the working directory.
func (a *app) openRepo(ctx context.Context) error {
	repo := flagRepo
	if repo == "" {
		repo = "."
	}
	abs, err := filepath.Abs(repo)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", repo, err)
	}
	if err := a.session.Open(ctx, abs); err != nil {
		return err
	}
	if flagBranch != "" {
		a.session.SelectBranch(flagBranch)
	}
	return nil
}

// Close releases log files and databases.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
