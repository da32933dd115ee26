package rendering

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/damusix/cv.alonso.network/internal/types"
)

//go:embed cv.md.tmpl
var defaultTemplate string

var funcs = template.FuncMap{
	"escape":  EscapeMarkdown,
	"contact": contactLine,
	"period":  FormatPeriod,
	"meta":    metaLine,
}

// Markdown renders cv with the built-in template.
func Markdown(cv *types.CVData) (string, error) {
	tmpl, err := template.New("cv").Funcs(funcs).Parse(defaultTemplate)
	if err != nil {
		return "", &TemplateError{Message: "failed to parse built-in template", Cause: err}
	}
	return execute(tmpl, cv)
}

// MarkdownWithTemplate renders cv with the template file at templatePath.
// The template sees the CV itself and the escape, contact, period and meta
// functions.
func MarkdownWithTemplate(cv *types.CVData, templatePath string) (string, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return execute(tmpl, cv)
}

func execute(tmpl *template.Template, cv *types.CVData) (string, error) {
	if cv == nil {
		return "", &RenderError{Message: "no CV data to render"}
	}
	var result strings.Builder
	if err := tmpl.Execute(&result, cv); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return strings.TrimSpace(result.String()) + "\n", nil
}

// parseTemplate reads and parses a markdown template file
func parseTemplate(templatePath string) (*template.Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}

	tmpl, err := template.New("cv").Funcs(funcs).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

// FormatPeriod renders a date range. A missing end reads "Present"; a
// missing start shows the end alone. Empty periods render as "".
func FormatPeriod(p *types.Period) string {
	if p == nil || (p.Start == "" && p.End == "") {
		return ""
	}
	end := p.End
	if end == "" {
		end = "Present"
	}
	if p.Start == "" {
		return end
	}
	return p.Start + " - " + end
}

func contactLine(p types.Personal) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Email, p.Phone, p.Location} {
		if s != "" {
			parts = append(parts, EscapeMarkdown(s))
		}
	}
	return strings.Join(parts, " · ")
}

func metaLine(item types.Item) string {
	parts := make([]string, 0, 2)
	for _, s := range []string{item.Subtitle, item.Location} {
		if s != "" {
			parts = append(parts, EscapeMarkdown(s))
		}
	}
	return strings.Join(parts, " · ")
}
