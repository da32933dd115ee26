// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/damusix/cv.alonso.network/internal/drafts"
	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the status and check commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// PrintStatus outputs what the store currently holds.
func (p *Printer) PrintStatus(st *drafts.Status, storePath string) {
	if st == nil {
		return
	}

	var sb strings.Builder
	if storePath != "" {
		sb.WriteString(fmt.Sprintf("Store:      %s\n", storePath))
	}
	sb.WriteString(fmt.Sprintf("Active:     %s\n", st.ActiveMode.Label()))

	committed := "none (built-in document)"
	if st.CommittedMode != "" {
		committed = st.CommittedMode.Label()
		if !st.HasResult {
			committed += " (code only)"
		}
	}
	sb.WriteString(fmt.Sprintf("Committed:  %s\n", committed))
	sb.WriteString(fmt.Sprintf("Styles:     %s\n", map[bool]string{true: "custom", false: "built-in"}[st.CustomStyles]))
	sb.WriteString("\n")

	sb.WriteString("Drafts:\n")
	for _, m := range types.AllModes {
		sb.WriteString(fmt.Sprintf("  • %-12s %s\n", m.Label(), yesNo(st.Drafts[m])))
	}

	p.printBox("CV EDITOR STATUS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintKeys outputs the raw keys held by the store.
func (p *Printer) PrintKeys(keys []string) {
	if len(keys) == 0 {
		p.printBox("STORED KEYS", "(empty)")
		return
	}
	p.printBox(fmt.Sprintf("STORED KEYS (%d)", len(keys)), strings.Join(keys, "\n"))
}

// PrintOutline outputs the section and item titles of a CV.
func (p *Printer) PrintOutline(cv *types.CVData) {
	if cv == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", cv.Personal.Name))
	if cv.Personal.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", cv.Personal.Title))
	}
	sb.WriteString(fmt.Sprintf("Sections: %d\n", len(cv.Sections)))

	for _, section := range cv.Sections {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s (%d)\n", section.Heading, len(section.Items)))
		count := min(len(section.Items), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", section.Items[i].Title))
		}
		if len(section.Items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(section.Items)-maxItemsToShow))
		}
	}

	p.printBox("CV OUTLINE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the result of a document check. Every field error
// is listed.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidation(verr *schemas.ValidationError) {
	if verr == nil || len(verr.Errors) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ DOCUMENT IS VALID")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problems:\n\n", len(verr.Errors)))

	for i, fe := range verr.Errors {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", fe.Field))
		sb.WriteString(fmt.Sprintf("  %s\n", fe.Message))
		if i < len(verr.Errors)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("VALIDATION ERRORS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVerify outputs what the load-time check of the committed record did,
// when it did anything worth reporting.
func (p *Printer) PrintVerify(r drafts.Report) {
	if !r.Repaired() {
		return
	}
	var msg string
	switch r.Outcome {
	case drafts.OutcomeRepairedMismatch:
		msg = "Stored code did not match the stored CV.\nIt was regenerated from the stored CV."
	case drafts.OutcomeRepairedUnreadable:
		msg = "Stored code could not be read.\nIt was regenerated from the stored CV."
	default:
		msg = "The committed record was unreadable and was removed.\nThe built-in document is shown instead."
	}
	p.printBox("REPAIRED STORED STATE", msg)
}
