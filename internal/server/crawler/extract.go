package crawler

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// extractText flattens an HTML document to its visible text: script,
// style, and head subtrees are dropped, everything else is joined with
// single newlines.
func extractText(document []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(document))

	var parts []string
	skipUntil := ""
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(parts, "\n")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skipUntil == "" && isInvisibleTag(string(name)) {
				skipUntil = string(name)
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skipUntil != "" && string(name) == skipUntil {
				skipUntil = ""
			}
		case html.TextToken:
			if skipUntil != "" {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text != "" {
				parts = append(parts, text)
			}
		}
	}
}

func isInvisibleTag(name string) bool {
	switch name {
	case "script", "style", "template", "noscript", "head":
		return true
	default:
		return false
	}
}
