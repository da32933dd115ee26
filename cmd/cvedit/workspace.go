package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/damusix/cv.alonso.network/internal/assets"
	"github.com/damusix/cv.alonso.network/internal/modes"
	"github.com/damusix/cv.alonso.network/internal/session"
	"github.com/damusix/cv.alonso.network/internal/store"
	"go.uber.org/zap"
)

// workspace is a session over the state database with an in-memory editor,
// used by every command except edit.
type workspace struct {
	store   *store.SQLiteStore
	session *session.Session
	editor  *session.Buffer
}

func loadDefaults(ctx context.Context) (*assets.Defaults, error) {
	if settings.DefaultsDir == "" {
		return assets.LoadEmbedded(ctx)
	}
	d, err := assets.Load(ctx, os.DirFS(settings.DefaultsDir))
	if err != nil {
		return nil, fmt.Errorf("failed to load defaults from %s: %w", settings.DefaultsDir, err)
	}
	return d, nil
}

func openWorkspace(ctx context.Context) (*workspace, error) {
	defaults, err := loadDefaults(ctx)
	if err != nil {
		return nil, err
	}

	st, err := store.OpenSQLite(settings.StorePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Opened store", zap.String("path", st.Path()))

	buf := session.NewBuffer()
	s, err := session.Open(ctx, session.Deps{
		Store:    st,
		Editor:   buf,
		Registry: modes.NewRegistry(),
		Defaults: defaults,
		Logger:   logger,
	}, session.Options{
		DefaultMode:   settings.Mode(),
		AutosaveDelay: settings.AutosaveDelay(),
	})
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return &workspace{store: st, session: s, editor: buf}, nil
}

func (w *workspace) Close() error {
	return errors.Join(w.session.Close(), w.store.Close())
}
