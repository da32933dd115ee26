package main

import (
	"fmt"

	"github.com/damusix/cv.alonso.network/internal/session"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in CV or stylesheet",
	Long: "Replaces the committed CV (script or JSON mode) or the stylesheet (css mode) with the " +
		"built-in default and discards the matching drafts. This cannot be undone.",
	RunE: runReset,
}

var (
	resetMode string
	resetYes  bool
)

func init() {
	resetCmd.Flags().StringVarP(&resetMode, "mode", "m", "", "Mode to reset: javascript, json or css (required)")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Confirm the reset")

	if err := resetCmd.MarkFlagRequired("mode"); err != nil {
		panic(fmt.Sprintf("failed to mark mode flag as required: %v", err))
	}

	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	mode, err := types.ParseMode(resetMode)
	if err != nil {
		return err
	}
	if !resetYes {
		return fmt.Errorf("reset of %s cannot be undone; pass --yes to confirm", mode.Label())
	}

	w, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.session.Dispatch(session.SwitchMode{Mode: mode}); err != nil {
		return err
	}
	if err := w.session.Dispatch(session.Reset{}); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reset %s to the built-in default\n", mode.Label())
	return nil
}
