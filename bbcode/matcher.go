package bbcode

import "strings"

// IsStart reports whether the token opens the tag.
//
// For [MatchExact] tags the token must be exactly "[code]". For [MatchVariable] tags
// any token starting with "[code" and ending with "]" is accepted, so both "[color]"
// and "[color=red]" open the color tag.
func IsStart(token string, t Tag) bool {
	switch t.Matcher {
	case MatchVariable:
		return strings.HasPrefix(token, "["+t.Code) && strings.HasSuffix(token, "]")
	default:
		return token == t.OpeningToken()
	}
}

// IsEnd reports whether the token closes the tag. Closing tokens never carry variables.
func IsEnd(token string, t Tag) bool {
	return token == t.ClosingToken()
}

// Variable extracts the variable from the opening token of a [MatchVariable] tag.
//
// The variable is everything between the first '=' and the trailing ']', e.g. "red"
// for "[color=red]". ok is false when the tag has no variables, the token does not
// open the tag, or the token contains no '='.
func Variable(token string, t Tag) (v string, ok bool) {
	if t.Matcher != MatchVariable || !IsStart(token, t) {
		return "", false
	}

	eq := strings.IndexByte(token, '=')
	if eq == -1 {
		return "", false
	}

	// the token is guaranteed to end with ']'
	return token[eq+1 : len(token)-1], true
}
