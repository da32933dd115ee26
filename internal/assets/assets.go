// Package assets provides the built-in default CV document and stylesheet.
package assets

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

//go:embed defaults
var embedded embed.FS

// DocumentFile is the default CV inside a defaults directory.
const DocumentFile = "cv.json"

// StylesheetParts are concatenated, in order, into the default stylesheet.
var StylesheetParts = []string{"base.css", "cv.css", "print.css"}

const stylesheetPrefix = `/*
 * This is the entirety of the CSS used to style your CV.
 * You can customize the entire thing, or just the classes/variables
 * you want to affect. The default styles are included below for reference.
 */
`

// Defaults holds the built-in document and stylesheet.
type Defaults struct {
	document   *types.CVData
	Stylesheet string
}

// Document returns a fresh copy of the default CV.
func (d *Defaults) Document() *types.CVData {
	return d.document.Clone()
}

// LoadError represents a missing or invalid defaults file
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("defaults %s: %s: %v", e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("defaults %s: %s", e.File, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Embedded is the defaults directory compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "defaults")
	if err != nil {
		panic(fmt.Sprintf("embedded defaults missing: %v", err))
	}
	return sub
}

// Load reads the default document and stylesheet parts from fsys
// concurrently. The default document must pass schema validation.
func Load(ctx context.Context, fsys fs.FS) (*Defaults, error) {
	g, ctx := errgroup.WithContext(ctx)

	parts := make([]string, len(StylesheetParts))
	for i, name := range StylesheetParts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := fs.ReadFile(fsys, name)
			if err != nil {
				return &LoadError{File: name, Message: "failed to read", Cause: err}
			}
			parts[i] = string(b)
			return nil
		})
	}

	var doc types.CVData
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := fs.ReadFile(fsys, DocumentFile)
		if err != nil {
			return &LoadError{File: DocumentFile, Message: "failed to read", Cause: err}
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return &LoadError{File: DocumentFile, Message: "failed to unmarshal JSON", Cause: err}
		}
		if _, err := schemas.Validate(&doc); err != nil {
			return &LoadError{File: DocumentFile, Message: "default document is invalid", Cause: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Defaults{
		document:   &doc,
		Stylesheet: assembleStylesheet(parts),
	}, nil
}

// LoadEmbedded is Load over the compiled-in defaults.
func LoadEmbedded(ctx context.Context) (*Defaults, error) {
	return Load(ctx, Embedded())
}

func assembleStylesheet(parts []string) string {
	pieces := []string{stylesheetPrefix}
	for i, name := range StylesheetParts {
		header := "/* --- " + name + " --- */\n"
		if i > 0 {
			header = "\n" + header
		}
		pieces = append(pieces, header, parts[i])
	}
	return strings.Join(pieces, "\n")
}
