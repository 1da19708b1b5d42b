package bbcode

// StyleKind identifies the style or semantic meaning of a [StyleRun],
// e.g. "bold", "link", "image".
type StyleKind string

const (
	KindBold          StyleKind = "bold"
	KindItalic        StyleKind = "italic"
	KindUnderline     StyleKind = "underline"
	KindStrikethrough StyleKind = "strikethrough"
	KindSuperscript   StyleKind = "superscript"
	KindSubscript     StyleKind = "subscript"

	// KindRelativeSize scales the text by [SizePayload.Scale].
	KindRelativeSize StyleKind = "relative_size"

	KindColor     StyleKind = "color"
	KindLink      StyleKind = "link"
	KindReference StyleKind = "reference"
	KindImage     StyleKind = "image"

	// KindNone is used by tags whose runs are decided during materialization.
	KindNone StyleKind = ""
)

// MatcherKind selects how a [Tag] recognizes its tokens.
type MatcherKind int

const (
	// MatchExact accepts only "[code]" and "[/code]".
	MatchExact MatcherKind = iota

	// MatchVariable accepts any "[code...]" as the opening token and
	// extracts the part after '=' as the variable, e.g. "[color=red]".
	MatchVariable
)

// Tag codes as they appear in the markup.
const (
	CodeBold           = "b"
	CodeItalic         = "i"
	CodeUnderline      = "u"
	CodeStrikethrough  = "s"
	CodeSuperscript    = "sup"
	CodeSubscript      = "sub"
	CodeColor          = "color"
	CodeNoParse        = "noparse"
	CodeIcon           = "icon"
	CodeEicon          = "eicon"
	CodeURL            = "url"
	CodeUser           = "user"
	CodePrivateChannel = "session"
	CodePublicChannel  = "channel"
)

// Tag is a single markup element known to the parser.
type Tag struct {
	// Code is the name between the brackets, e.g. "b" for "[b]".
	Code string

	// Style is the fixed style identity of the tag. Tags with payloads
	// (color, links, references, icons) have [KindNone] here.
	Style StyleKind

	// Matcher defines how opening and closing tokens are recognized.
	Matcher MatcherKind
}

// catalog lists all the supported tags.
//
// WARNING: tokens are tested against the tags in this order and the first match wins.
// Variable tags match by prefix, so "[colorx=red]" opens the color tag. A tag whose
// code starts with the code of a variable tag must come before that tag.
var catalog = [...]Tag{
	{Code: CodeBold, Style: KindBold, Matcher: MatchExact},
	{Code: CodeItalic, Style: KindItalic, Matcher: MatchExact},
	{Code: CodeUnderline, Style: KindUnderline, Matcher: MatchExact},
	{Code: CodeStrikethrough, Style: KindStrikethrough, Matcher: MatchExact},
	{Code: CodeSuperscript, Style: KindSuperscript, Matcher: MatchExact},
	{Code: CodeSubscript, Style: KindSubscript, Matcher: MatchExact},
	{Code: CodeColor, Style: KindColor, Matcher: MatchVariable},
	{Code: CodeNoParse, Style: KindNone, Matcher: MatchExact},
	{Code: CodeIcon, Style: KindImage, Matcher: MatchExact},
	{Code: CodeEicon, Style: KindImage, Matcher: MatchExact},
	{Code: CodeURL, Style: KindLink, Matcher: MatchVariable},
	{Code: CodeUser, Style: KindUnderline, Matcher: MatchExact},
	{Code: CodePrivateChannel, Style: KindReference, Matcher: MatchVariable},
	{Code: CodePublicChannel, Style: KindReference, Matcher: MatchExact},
}

// Catalog returns a copy of the supported tags in matching order.
func Catalog() []Tag {
	out := make([]Tag, len(catalog))
	copy(out, catalog[:])
	return out
}

// Lookup returns the tag with the given code.
func Lookup(code string) (Tag, bool) {
	for _, t := range catalog {
		if t.Code == code {
			return t, true
		}
	}

	return Tag{}, false
}

// OpeningToken returns the literal opening token of the tag, e.g. "[b]".
func (t Tag) OpeningToken() string {
	return "[" + t.Code + "]"
}

// ClosingToken returns the literal closing token of the tag, e.g. "[/b]".
func (t Tag) ClosingToken() string {
	return "[/" + t.Code + "]"
}
