package bbcode

import (
	"net/url"
	"strings"
)

// DefaultURLIndicator is the prefix which marks a word as a bare URL.
const DefaultURLIndicator = "http"

// AutoLink wraps bare URLs in url tags.
//
// The text is split on single spaces, and every word starting with the indicator, which
// is also an absolute URL with a host, is replaced with "[url=<word>]<host>[/url]".
// Malformed URLs are left as they are.
//
// WARNING: when the indicator occurs anywhere in the text, the words are joined back
// with a space after each of them, so the output has a trailing space. Consecutive
// spaces are kept, trailing empty words are dropped. If the indicator is not found,
// the text is returned untouched.
func AutoLink(text, indicator string) string {
	if indicator == "" || !strings.Contains(text, indicator) {
		return text
	}

	words := strings.Split(text, " ")

	// dropping trailing empty words
	for len(words) > 0 && words[len(words)-1] == "" {
		words = words[:len(words)-1]
	}

	var b strings.Builder
	b.Grow(len(text) + 16*strings.Count(text, indicator))

	for _, w := range words {
		if strings.HasPrefix(w, indicator) {
			if host, ok := linkHost(w); ok {
				w = "[" + CodeURL + "=" + w + "]" + host + "[/" + CodeURL + "]"
			}
		}

		b.WriteString(w)
		b.WriteByte(' ')
	}

	return b.String()
}

// linkHost returns the host of an absolute URL.
func linkHost(s string) (string, bool) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	return u.Hostname(), true
}
