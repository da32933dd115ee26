package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/damusix/cv.alonso.network/internal/exports"
	"github.com/damusix/cv.alonso.network/internal/observability"
	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/session"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a .cvml bundle as the committed CV",
	Long: "Reads a .cvml bundle and commits its CV section, and its stylesheet section when present. " +
		"The CV is validated first; an invalid bundle changes nothing. Data drafts are discarded.",
	RunE: runImport,
}

var importInput string

func init() {
	importCmd.Flags().StringVarP(&importInput, "in", "i", "", "Path to the .cvml file (required)")

	if err := importCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	content, err := os.ReadFile(importInput)
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}

	bundle, err := exports.Decode(string(content))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", importInput, err)
	}

	w, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.session.Dispatch(session.Import{Bundle: bundle}); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			observability.NewPrinter(cmd.OutOrStdout()).PrintValidation(verr)
		}
		return fmt.Errorf("import failed: %w", err)
	}

	_, styled := bundle.Styles()
	msg := "Imported CV"
	if styled {
		msg += " and stylesheet"
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s from %s\n", msg, importInput)
	return nil
}
