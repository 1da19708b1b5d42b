package bbcode

import (
	"strconv"

	"github.com/rs/zerolog"
)

// span is a single occurrence of an opening tag in the message.
type span struct {
	// index is the discovery order of the span, starting from 0.
	index int

	tag Tag

	// token is the literal opening token, e.g. "[color=red]".
	token string

	// start is the offset where the opening token used to be, which is also
	// the start of the tag's content once the token is removed.
	start anchor

	// end is the offset where the closing token used to be. Valid only if closed.
	end    anchor
	closed bool

	// opened and closedAt are the buffer versions at which the tokens were found.
	// Versions grow with every removed token, so they order the tokens of the message.
	opened   int
	closedAt int

	variable string
	hasVar   bool
}

// resolver is the state of the single-pass tokenizer.
type resolver struct {
	buf *buffer

	// spans are kept in the discovery order. It's not a real stack: closing tags
	// look for the newest unclosed span of their own type and may reach past
	// unclosed spans of other types.
	spans []*span

	// noParse is true inside the literal block, where no tags are interpreted.
	noParse bool

	// noParsePos is the offset where the current literal block started.
	noParsePos int

	warns  *[]Warning
	logger zerolog.Logger
}

// run scans the whole buffer, removing every recognized token and recording spans.
//
// Behaviour:
//
//  1. The next token is the text between the next '[' and the first ']' after it.
//     If either is missing, the scan is over.
//  2. A recognized token is removed from the buffer and the scan resumes at the
//     same offset, since the rest of the text has shifted left.
//  3. An unrecognized token is left in the buffer and the scan resumes right after
//     its '[', so "[[b]" still finds "[b]".
func (r *resolver) run() {
	pos := 0

	for pos < r.buf.len() {
		start := r.buf.indexRune('[', pos)
		if start == -1 {
			break
		}

		end := r.buf.indexRune(']', start)
		if end == -1 {
			break
		}

		token := r.buf.slice(start, end+1)

		r.logger.Trace().Str("token", token).Int("pos", start).Msg("found token")

		if r.match(token, start) {
			r.buf.remove(start, end+1-start, -1)
			pos = start
			continue
		}

		pos = start + 1
	}

	if r.noParse {
		*r.warns = append(*r.warns, Warning{
			Issue:       IssueUnclosedNoParse,
			Pos:         r.noParsePos,
			Description: "literal block started at " + strconv.Itoa(r.noParsePos) + " is never closed.",
		})
	}
}

// match tests the token against the catalog and updates the state.
// It returns true if the token is markup and must be removed from the text.
func (r *resolver) match(token string, pos int) bool {
	// inside the literal block only its own closing tag means anything
	if r.noParse {
		if IsEnd(token, catalog[noParseIdx]) {
			r.noParse = false
			return true
		}
		return false
	}

	// sawEnd is true if the token is a closing tag of some type, which had nothing to close
	sawEnd := false

	for _, t := range catalog {
		if IsStart(token, t) {
			if t.Code == CodeNoParse {
				r.noParse = true
				r.noParsePos = pos
				return true
			}

			r.open(t, token, pos)
			return true
		}

		if IsEnd(token, t) {
			if r.close(t, pos) {
				return true
			}
			sawEnd = true
		}
	}

	w := Warning{
		Issue:       IssueUnknownTag,
		Pos:         pos,
		Near:        token,
		Description: "token " + strconv.Quote(token) + " does not match any known tag.",
	}

	if sawEnd {
		w.Issue = IssueUnmatchedClosingTag
		w.Description = "closing tag " + strconv.Quote(token) + " has no open tag of the same type."
	}

	*r.warns = append(*r.warns, w)

	return false
}

func (r *resolver) open(t Tag, token string, pos int) {
	v, ok := Variable(token, t)

	s := &span{
		index:    len(r.spans),
		tag:      t,
		token:    token,
		start:    r.buf.anchor(pos),
		opened:   r.buf.version(),
		variable: v,
		hasVar:   ok,
	}

	r.spans = append(r.spans, s)
}

// close closes the newest unclosed span of the tag's type, skipping spans of other types.
func (r *resolver) close(t Tag, pos int) bool {
	for i := len(r.spans) - 1; i >= 0; i-- {
		s := r.spans[i]
		if s.tag.Code == t.Code && !s.closed {
			s.end = r.buf.anchor(pos)
			s.closed = true
			s.closedAt = r.buf.version()
			return true
		}
	}

	return false
}

// noParseIdx is the position of the literal block tag in the catalog.
var noParseIdx = func() int {
	for i, t := range catalog {
		if t.Code == CodeNoParse {
			return i
		}
	}
	panic("bbcode: literal block tag is missing from the catalog")
}()
