package main

import (
	"fmt"

	"github.com/damusix/cv.alonso.network/internal/observability"
	"github.com/damusix/cv.alonso.network/internal/rendering"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the committed CV",
	Long:  "Renders the committed CV (or the built-in one when nothing was applied) as styled terminal output, markdown, or an outline.",
	RunE:  runShow,
}

var (
	showMarkdown bool
	showOutline  bool
	showWidth    int
	showStyle    string
)

func init() {
	showCmd.Flags().BoolVar(&showMarkdown, "markdown", false, "Print raw markdown instead of styled output")
	showCmd.Flags().BoolVar(&showOutline, "outline", false, "Print section and item titles only")
	showCmd.Flags().IntVarP(&showWidth, "width", "w", 80, "Word wrap width for styled output")
	showCmd.Flags().StringVar(&showStyle, "style", "", "Glamour style (dark, light, notty, or a JSON style path)")
	showCmd.MarkFlagsMutuallyExclusive("markdown", "outline")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	w, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	cv, err := w.session.Document()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showOutline {
		observability.NewPrinter(out).PrintOutline(cv)
		return nil
	}

	var md string
	if settings.Template != "" {
		md, err = rendering.MarkdownWithTemplate(cv, settings.Template)
	} else {
		md, err = rendering.Markdown(cv)
	}
	if err != nil {
		return err
	}
	if showMarkdown {
		_, _ = fmt.Fprint(out, md)
		return nil
	}

	term, err := rendering.NewTerminal(showWidth, showStyle)
	if err != nil {
		return err
	}
	styled, err := term.RenderMarkdown(md)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(out, styled)
	return nil
}
