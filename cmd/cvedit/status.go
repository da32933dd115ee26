package main

import (
	"github.com/damusix/cv.alonso.network/internal/observability"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is stored",
	Long: `Prints the active mode, the committed mode, which modes have drafts, and whether a custom stylesheet is saved.

With --keys the raw store keys are listed as well.`,
	RunE: runStatus,
}

var statusKeys bool

func init() {
	statusCmd.Flags().BoolVar(&statusKeys, "keys", false, "also list the raw store keys")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	w, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	st, err := w.session.Drafts().Status(settings.Mode())
	if err != nil {
		return err
	}

	p := observability.NewPrinter(cmd.OutOrStdout())
	p.PrintVerify(w.session.VerifyReport())
	p.PrintStatus(st, w.store.Path())
	if !statusKeys {
		return nil
	}
	keys, err := w.store.Keys()
	if err != nil {
		return err
	}
	p.PrintKeys(keys)
	return nil
}
