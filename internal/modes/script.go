package modes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ScriptHeader opens every generated script-mode document.
const ScriptHeader = "// Edit your CV data\n// Last line must be a return statement\n\n"

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// Script mode text is comments plus a single "return <object literal>;"
// statement. Nothing is evaluated: comments are blanked, the return keyword
// and final semicolon are removed, and the remaining object literal is read as
// YAML flow notation, which accepts JSON as well as unquoted keys and
// trailing commas. Quoted strings follow JS escape rules and are rewritten as
// YAML double-quoted strings first.

func scriptText(cv *types.CVData) (string, error) {
	body, err := dataText(cv)
	if err != nil {
		return "", err
	}
	return ScriptHeader + "return " + escapeUnsafe(body) + ";", nil
}

// yamlUnsafe reports runes a YAML reader rejects or rewrites when they appear
// raw, even inside a quoted string.
func yamlUnsafe(r rune) bool {
	switch {
	case r < 0x20, r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	case r == 0x2028, r == 0x2029, r == 0xFEFF, r == 0xFFFE, r == 0xFFFF:
		return true
	}
	return false
}

func writeEscaped(sb *strings.Builder, r rune) {
	fmt.Fprintf(sb, `\u%04X`, r)
}

// escapeUnsafe replaces yamlUnsafe runes in serialized JSON with \u escapes.
// JSON already escapes the C0 controls, and every other such rune can only
// occur inside a string, so the result is equivalent JSON.
func escapeUnsafe(body string) string {
	if strings.IndexFunc(body, func(r rune) bool { return r != '\n' && r != '\t' && yamlUnsafe(r) }) < 0 {
		return body
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for _, r := range body {
		if r != '\n' && r != '\t' && yamlUnsafe(r) {
			writeEscaped(&sb, r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// requote rewrites every quoted string in body as a YAML double-quoted
// string. body has its comments blanked and every string terminated, and no
// string spans a line, so line numbers are unchanged.
func requote(body string) string {
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '"' && c != '\'' {
			sb.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(body) && body[j] != c {
			if body[j] == '\\' {
				j++
			}
			j++
		}
		j = min(j, len(body))
		sb.WriteString(quoteYAML(body[i+1 : j]))
		i = j
	}
	return sb.String()
}

// yamlEscapes are the escapes JS and YAML double-quoted strings share.
const yamlEscapes = `"\\/bfnrtv0xu`

// quoteYAML turns the content of a JS string literal into a YAML
// double-quoted string with the same value.
func quoteYAML(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '\\' && i+1 < len(s) {
			next, nsize := utf8.DecodeRuneInString(s[i+1:])
			if strings.ContainsRune(yamlEscapes, next) {
				sb.WriteByte('\\')
				sb.WriteRune(next)
			} else {
				// \' and other identity escapes stand for the character itself
				writeQuotedRune(&sb, next)
			}
			i += 1 + nsize
			continue
		}
		writeQuotedRune(&sb, r)
		i += size
	}
	sb.WriteByte('"')
	return sb.String()
}

func writeQuotedRune(sb *strings.Builder, r rune) {
	switch {
	case r == '"':
		sb.WriteString(`\"`)
	case r == '\\':
		sb.WriteString(`\\`)
	case yamlUnsafe(r):
		writeEscaped(sb, r)
	default:
		sb.WriteRune(r)
	}
}

func parseScript(text string) (*types.CVData, error) {
	body, err := extractReturnValue(text)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := yaml.Unmarshal([]byte(requote(body)), &raw); err != nil {
		return nil, &ParseError{
			Mode:    types.ModeScript,
			Line:    yamlLine(err),
			Message: "invalid object literal",
			Cause:   err,
		}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &ParseError{Mode: types.ModeScript, Message: "return value must be an object"}
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return nil, &ParseError{Mode: types.ModeScript, Message: "return value is not plain data", Cause: err}
	}

	var cv types.CVData
	if err := json.Unmarshal(b, &cv); err != nil {
		return nil, &ParseError{Mode: types.ModeScript, Message: "return value does not match the CV structure", Cause: err}
	}
	return &cv, nil
}

type scanState int

const (
	inCode scanState = iota
	inLineComment
	inBlockComment
	inDoubleQuote
	inSingleQuote
)

// extractReturnValue blanks comments, the leading return keyword and the
// trailing semicolon in place so that line numbers in later errors still
// match the user's text.
func extractReturnValue(text string) (string, error) {
	out := []byte(text)
	state := inCode
	depth := 0
	first, last, semi := -1, -1, -1
	stringStart := 0

	fail := func(i int, msg string) (string, error) {
		return "", &ParseError{Mode: types.ModeScript, Line: lineAt(text, i), Message: msg}
	}

	for i := 0; i < len(out); i++ {
		c := out[i]
		var next byte
		if i+1 < len(out) {
			next = out[i+1]
		}

		switch state {
		case inLineComment:
			if c == '\n' {
				state = inCode
			} else {
				out[i] = ' '
			}
			continue
		case inBlockComment:
			if c == '*' && next == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = inCode
			} else if c != '\n' {
				out[i] = ' '
			}
			continue
		case inDoubleQuote:
			switch c {
			case '\\':
				if next == '\n' {
					return fail(stringStart, "unterminated string")
				}
				i++
			case '"':
				state = inCode
			case '\n':
				return fail(stringStart, "unterminated string")
			}
			continue
		case inSingleQuote:
			switch c {
			case '\\':
				if next == '\n' {
					return fail(stringStart, "unterminated string")
				}
				i++
			case '\'':
				state = inCode
			case '\n':
				return fail(stringStart, "unterminated string")
			}
			continue
		}

		switch {
		case c == '/' && next == '/':
			out[i], out[i+1] = ' ', ' '
			i++
			state = inLineComment
			continue
		case c == '/' && next == '*':
			out[i], out[i+1] = ' ', ' '
			i++
			state = inBlockComment
			continue
		case c == '\t':
			out[i] = ' '
			continue
		case c == ' ' || c == '\n' || c == '\r':
			continue
		}

		if first < 0 {
			first = i
		}
		if semi >= 0 {
			return fail(i, "unexpected code after ';'")
		}
		last = i

		switch c {
		case '"':
			state = inDoubleQuote
			stringStart = i
		case '\'':
			state = inSingleQuote
			stringStart = i
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth < 0 {
				return fail(i, "unbalanced brackets: unexpected '"+string(c)+"'")
			}
		case ';':
			if depth == 0 {
				semi = i
			}
		}
	}

	switch state {
	case inBlockComment:
		return fail(len(text), "unterminated block comment")
	case inDoubleQuote, inSingleQuote:
		return fail(stringStart, "unterminated string")
	}
	if depth != 0 {
		return fail(len(text), "unbalanced brackets: "+strconv.Itoa(depth)+" left open")
	}
	if first < 0 {
		return fail(0, "expected a return statement")
	}

	const keyword = "return"
	rest := string(out[first:])
	if !strings.HasPrefix(rest, keyword) || (len(rest) > len(keyword) && isIdentByte(rest[len(keyword)])) {
		return fail(first, "expected a return statement")
	}
	for i := first; i < first+len(keyword); i++ {
		out[i] = ' '
	}
	if semi >= 0 {
		out[semi] = ' '
	}
	if last < first+len(keyword) || strings.TrimSpace(string(out)) == "" {
		return fail(first, "return statement has no value")
	}

	return string(out), nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func yamlLine(err error) int {
	m := yamlLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
