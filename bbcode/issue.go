package bbcode

// Issue defines types of problems we might encounter while parsing a message.
//
// None of them is an error: the parser always produces a best-effort result and
// reports what it could not make sense of as a [Warning].
type Issue int

const (
	// IssueUnknownTag occurs when a bracket pair does not match any known tag.
	// The token stays in the text as is.
	IssueUnknownTag Issue = iota

	// IssueUnmatchedClosingTag occurs when a closing tag has no open tag of the same type.
	// The token stays in the text as is.
	IssueUnmatchedClosingTag

	// IssueUnclosedTag occurs when the opening tag is never closed. The opening token is
	// put back into the text.
	IssueUnclosedTag

	// IssueInvalidColor occurs when the color tag's variable is missing or cannot be parsed.
	IssueInvalidColor

	// IssueInvalidURL occurs when a link, user or icon tag does not produce a valid URL.
	IssueInvalidURL

	// IssueMissingDisplayName occurs when a private channel tag has no display name,
	// so its identifier cannot be substituted.
	IssueMissingDisplayName

	// IssueReferenceNotFound occurs when the identifier to substitute is no longer
	// present in the text.
	IssueReferenceNotFound

	// IssueUnclosedNoParse occurs when the literal block is never closed.
	IssueUnclosedNoParse
)

var issueToString = map[Issue]string{
	IssueUnknownTag:          "unknown_tag",
	IssueUnmatchedClosingTag: "unmatched_closing_tag",
	IssueUnclosedTag:         "unclosed_tag",
	IssueInvalidColor:        "invalid_color",
	IssueInvalidURL:          "invalid_url",
	IssueMissingDisplayName:  "missing_display_name",
	IssueReferenceNotFound:   "reference_not_found",
	IssueUnclosedNoParse:     "unclosed_noparse",
}

func (i Issue) String() string {
	if s, ok := issueToString[i]; ok {
		return s
	}
	return "unknown"
}

// MarshalText encodes the Issue as its name.
func (i Issue) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Warning describes the problem occured while parsing.
type Warning struct {
	// Issue defines the type of the problem.
	Issue Issue `json:"issue"`

	// Pos is the rune offset in the text at the moment the problem was detected.
	//
	// NOTE: the text is modified during parsing, so Pos is a hint rather than
	// an exact position in either the input or the output.
	Pos int `json:"pos"`

	// Near is an optional snippet which caused the problem, e.g. the tag token.
	Near string `json:"near,omitempty"`

	// Description is a human-readable story of what went wrong.
	Description string `json:"description"`
}
