package process

import "strings"

var markupArtifacts = []string{"```", ">", "html", "•", "* * *", "* *", "*"}

// Sanitize strips code fences, quote markers, stray "html" tokens, bullet
// glyphs and emphasis markers from a generated answer. Removing one token can expose
// another, so the passes repeat until nothing changes.
func Sanitize(raw string) string {
	text := raw
	for {
		next := text
		for _, token := range markupArtifacts {
			next = strings.ReplaceAll(next, token, "")
		}
		next = strings.TrimSpace(next)
		if next == text {
			return next
		}
		text = next
	}
}
