package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/damusix/cv.alonso.network/internal/modes"
	"github.com/damusix/cv.alonso.network/internal/observability"
	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a file as the committed CV or stylesheet",
	Long: "Reads a file written in the given mode and runs it through the same pipeline as ctrl+s " +
		"in the editor: parse, validate, commit. The editor's active mode is not changed. On failure " +
		"nothing is committed and the text is kept as the mode's draft.",
	RunE: runApply,
}

var (
	applyMode  string
	applyInput string
)

func init() {
	applyCmd.Flags().StringVarP(&applyMode, "mode", "m", "", "Mode the file is written in: javascript, json or css (required)")
	applyCmd.Flags().StringVarP(&applyInput, "in", "i", "", "Path to the file to apply (required)")

	if err := applyCmd.MarkFlagRequired("mode"); err != nil {
		panic(fmt.Sprintf("failed to mark mode flag as required: %v", err))
	}
	if err := applyCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	mode, err := types.ParseMode(applyMode)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(applyInput)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	w, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.session.ApplyText(mode, string(content)); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			observability.NewPrinter(cmd.OutOrStdout()).PrintValidation(verr)
			return fmt.Errorf("apply failed: %d validation error(s)", len(verr.Errors))
		}
		var perr *modes.ParseError
		if errors.As(err, &perr) {
			return fmt.Errorf("apply failed: %w", perr)
		}
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %s from %s\n", mode.Label(), applyInput)
	return nil
}
