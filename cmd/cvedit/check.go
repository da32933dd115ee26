package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/damusix/cv.alonso.network/internal/observability"
	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a CV JSON document",
	Long: "Checks a JSON document against the CV JSON Schema and then against the field rules " +
		"(required fields, email and url formats, non-empty sections). Nothing is stored.",
	RunE: runCheck,
}

var checkInput string

func init() {
	checkCmd.Flags().StringVarP(&checkInput, "in", "i", "", "Path to the CV JSON file (required)")

	if err := checkCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	content, err := os.ReadFile(checkInput)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	p := observability.NewPrinter(cmd.OutOrStdout())

	if err := schemas.ValidateCVJSON(string(content)); err != nil {
		return reportInvalid(p, err)
	}

	var cv types.CVData
	if err := json.Unmarshal(content, &cv); err != nil {
		return fmt.Errorf("failed to unmarshal CV JSON: %w", err)
	}
	if _, err := schemas.Validate(&cv); err != nil {
		return reportInvalid(p, err)
	}

	p.PrintValidation(nil)
	return nil
}

func reportInvalid(p *observability.Printer, err error) error {
	var verr *schemas.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	p.PrintValidation(verr)
	return fmt.Errorf("validation found %d problem(s)", len(verr.Errors))
}
