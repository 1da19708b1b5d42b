package bbcode

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// first and last runes of the Unicode Private Use Area, used for newline sentinels.
const (
	privateUseFirst = '\uE000'
	privateUseLast  = '\uF8FF'
)

// strictPolicy strips every HTML tag and keeps the text. It's safe for concurrent use.
var strictPolicy = bluemonday.StrictPolicy()

// Unescape decodes HTML entities, e.g. "&amp;" or "&#91;", without touching newlines.
func Unescape(text string) string {
	return protectNewlines(text, html.UnescapeString)
}

// StripHTML removes HTML tags and decodes HTML entities, without touching newlines.
func StripHTML(text string) string {
	return protectNewlines(text, func(s string) string {
		return html.UnescapeString(strictPolicy.Sanitize(s))
	})
}

// protectNewlines replaces newlines with a sentinel rune absent from the text,
// applies fn and puts the newlines back.
//
// If the text somehow contains every private use rune, fn is applied directly.
func protectNewlines(text string, fn func(string) string) string {
	if !strings.Contains(text, "\n") {
		return fn(text)
	}

	sentinel, ok := pickSentinel(text)
	if !ok {
		return fn(text)
	}

	s := string(sentinel)

	out := strings.ReplaceAll(text, "\n", s)
	out = fn(out)
	return strings.ReplaceAll(out, s, "\n")
}

// pickSentinel returns the first private use rune which does not occur in the text.
func pickSentinel(text string) (rune, bool) {
	for r := rune(privateUseFirst); r <= privateUseLast; r++ {
		if !strings.ContainsRune(text, r) {
			return r, true
		}
	}

	return 0, false
}
