package main

import (
	"fmt"

	"github.com/damusix/cv.alonso.network/internal/modes"
	"github.com/damusix/cv.alonso.network/internal/session"
	"github.com/damusix/cv.alonso.network/internal/store"
	"github.com/damusix/cv.alonso.network/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the interactive editor",
	Long: "Opens the full-screen editor. F1/F2/F3 switch between script, JSON and stylesheet modes, " +
		"ctrl+s applies, ctrl+r resets, ctrl+q quits. Drafts are saved while typing.",
	RunE: runEdit,
}

var editGlamourStyle string

func init() {
	editCmd.Flags().StringVar(&editGlamourStyle, "style", "", "Glamour style for the preview (dark, light, notty, or a JSON style path)")

	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	defaults, err := loadDefaults(ctx)
	if err != nil {
		return err
	}

	st, err := store.OpenSQLite(settings.StorePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	m, err := tui.New(ctx, tui.Deps{
		Store:    st,
		Registry: modes.NewRegistry(),
		Defaults: defaults,
		Logger:   logger,
	}, tui.Options{
		Session: session.Options{
			DefaultMode:   settings.Mode(),
			AutosaveDelay: settings.AutosaveDelay(),
		},
		GlamourStyle: editGlamourStyle,
	})
	if err != nil {
		return fmt.Errorf("failed to start editor: %w", err)
	}
	logger.Info("Editor started", zap.String("session", m.Session().ID()), zap.String("store", st.Path()))

	return tui.Run(ctx, m)
}
