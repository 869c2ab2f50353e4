package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// highlightCode renders source with terminal colors. Unknown languages fall
// back to chroma's plain-text lexer; on any failure source is returned as is.
func highlightCode(source, language, style string) string {
	if source == "" {
		return ""
	}
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		lang = "plaintext"
	}

	var b strings.Builder
	if err := quick.Highlight(&b, source, lang, "terminal256", style); err != nil {
		return source
	}
	return strings.TrimRight(b.String(), "\n")
}
