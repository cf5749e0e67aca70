package policy

import (
	"path/filepath"
	"strings"
)

// SplitSegments splits a raw command line into independently evaluated
// segments on the shell chaining metacharacters: pipes, command
// separators, logical operators, and newlines. This is deliberately not
// a shell parser; splitting inside quoted strings errs on the side of
// evaluating more segments, never fewer.
func SplitSegments(command string) []string {
	var segments []string
	var cur strings.Builder

	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if s != "" {
			segments = append(segments, s)
		}
	}

	for _, r := range command {
		switch r {
		case '|', '&', ';', '\n':
			// "||" and "&&" collapse into the same boundary as the
			// single-character forms.
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return segments
}

// normalizeToken strips surrounding quotes and any path prefix from a
// token and lowercases it, so `"./bin/Terraform"` compares equal to
// `terraform`.
func normalizeToken(tok string) string {
	tok = strings.Trim(tok, `"'`)
	if tok == "" {
		return ""
	}
	return strings.ToLower(filepath.Base(tok))
}

// stripEscapes removes backslashes from a token. A token that only
// matches an invocation name after de-escaping (`t\f`) is treated as
// obfuscated rather than matched.
func stripEscapes(tok string) string {
	return strings.ReplaceAll(tok, `\`, "")
}

// isFlag reports whether a token is a command-line option rather than a
// sub-command candidate.
func isFlag(tok string) bool {
	return strings.HasPrefix(tok, "-")
}

// isAssignment reports whether a token is a key=value pair. Flag values
// like `--set phase=install` must never be read as sub-commands.
func isAssignment(tok string) bool {
	return strings.Contains(tok, "=")
}

// hasExpansion reports whether a token involves shell expansion or
// substitution that defeats static matching.
func hasExpansion(tok string) bool {
	return strings.ContainsAny(tok, "$`")
}
