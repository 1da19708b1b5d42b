package bbcode

import (
	"net/url"
	"strings"
)

// Default endpoints used to build profile and image links.
const (
	DefaultProfileBase = "http://f-list.net/c/"
	DefaultAvatarBase  = "https://static.f-list.net/images/avatar/"
	DefaultEiconBase   = "https://static.f-list.net/images/eicon/"

	// DefaultLinkPlaceholder is inserted in place of an empty link tag.
	DefaultLinkPlaceholder = "[LINK]"

	// EmptyLinkTarget is the target of an empty link tag without an address.
	EmptyLinkTarget = "about:blank"
)

// schemes which are considered valid link targets. Network schemes also need a host.
var schemes = map[string]bool{
	"http":   true,
	"https":  true,
	"ftp":    true,
	"mailto": false,
	"file":   false,
	"about":  false,
}

// IsValidURL reports whether s is an absolute URL with a supported scheme.
func IsValidURL(s string) bool {
	if s == "" {
		return false
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	needsHost, ok := schemes[strings.ToLower(u.Scheme)]
	if !ok {
		return false
	}

	if needsHost {
		return u.Host != ""
	}

	return u.Opaque != "" || u.Path != ""
}

// GuessURL makes a best-effort link target out of the text of a link tag.
//
// Text which already has a scheme is returned trimmed, with the scheme lowercased.
// Text which looks like a bare host, e.g. "example.com/page", gets "http://" prepended.
// Anything else is returned trimmed and is expected to fail [IsValidURL].
func GuessURL(text string) string {
	text = strings.TrimSpace(text)

	if text == "" || strings.ContainsAny(text, " \t\n") {
		return text
	}

	if i := strings.Index(text, ":"); i > 0 {
		scheme := strings.ToLower(text[:i])
		if _, ok := schemes[scheme]; ok {
			return scheme + text[i:]
		}
	}

	if strings.Contains(text, ".") && !strings.HasPrefix(text, ".") {
		return "http://" + text
	}

	return text
}

// escapeName percent-encodes spaces the way the image and profile endpoints expect.
func escapeName(name string) string {
	return strings.ReplaceAll(name, " ", "%20")
}

// Links builds the addresses of profiles and images.
type Links struct {
	ProfileBase string
	AvatarBase  string
	EiconBase   string
}

// DefaultLinks returns [Links] pointing to the default endpoints.
func DefaultLinks() Links {
	return Links{
		ProfileBase: DefaultProfileBase,
		AvatarBase:  DefaultAvatarBase,
		EiconBase:   DefaultEiconBase,
	}
}

// Profile returns the profile page of the user with the given name.
func (l Links) Profile(name string) string {
	return l.ProfileBase + escapeName(name)
}

// Avatar returns the avatar image of the user with the given name.
func (l Links) Avatar(name string) string {
	return l.AvatarBase + escapeName(strings.ToLower(name)) + ".png"
}

// Eicon returns the emote image with the given name.
func (l Links) Eicon(name string) string {
	return l.EiconBase + escapeName(strings.ToLower(name)) + ".png"
}
