package modes

import (
	"bytes"
	"errors"
	"strings"

	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/goccy/go-json"
)

// Indent is the indentation used for every serialized structured value.
const Indent = "    "

// Serialize renders v as JSON indented by four spaces, without HTML escaping
// and without a trailing newline.
func Serialize(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func dataText(cv *types.CVData) (string, error) {
	if cv == nil {
		return "", errors.New("no CV data to serialize")
	}
	return Serialize(cv)
}

func parseData(text string) (*types.CVData, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ParseError{Mode: types.ModeData, Message: "document is empty"}
	}
	if trimmed[0] != '{' {
		return nil, &ParseError{
			Mode:    types.ModeData,
			Line:    lineAt(text, strings.Index(text, trimmed[:1])),
			Message: "document must be a JSON object",
		}
	}

	var cv types.CVData
	if err := json.Unmarshal([]byte(text), &cv); err != nil {
		perr := &ParseError{Mode: types.ModeData, Message: "invalid JSON", Cause: err}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			perr.Line = lineAt(text, int(syntaxErr.Offset))
		}
		return nil, perr
	}
	return &cv, nil
}

// lineAt returns the 1-based line of byte offset i in text.
func lineAt(text string, i int) int {
	if i < 0 {
		return 0
	}
	if i > len(text) {
		i = len(text)
	}
	return strings.Count(text[:i], "\n") + 1
}
