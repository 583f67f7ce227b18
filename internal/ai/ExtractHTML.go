package ai

import (
	"regexp"
	"strings"
)

var htmlBlock = regexp.MustCompile("(?s)```html\r?\n(.*?)\r?\n```")

// ExtractHTML returns the first ```html fenced block in a model reply. ok is
// false when the reply is purely conversational.
func ExtractHTML(reply string) (html string, ok bool) {
	m := htmlBlock.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	html = strings.TrimSpace(m[1])
	return html, html != ""
}
