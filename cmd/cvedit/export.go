package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/damusix/cv.alonso.network/internal/exports"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the committed CV and stylesheet to a .cvml bundle",
	Long: "Writes the committed CV code, in the mode it was applied in, and any custom stylesheet " +
		"to a .cvml file. Drafts are not exported.",
	RunE: runExport,
}

var exportOutput string

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output path (default: \"<name> - <title>.cvml\" in the current directory)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	w, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	bundle, err := w.session.Export()
	if err != nil {
		return err
	}
	if _, ok := bundle.Data(); !ok {
		return errors.New("nothing to export: no CV has been applied yet")
	}

	out := exportOutput
	if out == "" {
		cv, err := w.session.Document()
		if err != nil {
			return err
		}
		out = exports.FileName(cv.Personal)
	}

	if dir := filepath.Dir(out); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(exports.Encode(bundle)), 0644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d section(s) to %s\n", len(bundle.Sections), out)
	return nil
}
