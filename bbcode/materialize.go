package bbcode

import (
	"strconv"
	"strings"
)

// relativeScale is the text size of superscript and subscript runs.
const relativeScale float32 = 0.8

// pendingRun is a style run whose offsets are rebased once the buffer is final.
//
// The anchors are taken from the span when the run is created. Every later edit is
// a reinserted tag or a substitution, and those follow the run's own inclusivity.
type pendingRun struct {
	kind      StyleKind
	inclusive bool
	payload   Payload

	start anchor
	end   anchor
}

// startAffinity keeps text inserted at the start of an inclusive run inside it.
func (r *pendingRun) startAffinity(edit) affinity {
	if r.inclusive {
		return stay
	}
	return move
}

// endAffinity keeps text inserted at the end of an inclusive run inside it.
func (r *pendingRun) endAffinity(edit) affinity {
	if r.inclusive {
		return move
	}
	return stay
}

// substitution replaces the first occurrence of a channel identifier with its display name.
type substitution struct {
	span    *span
	id      string
	display string
}

// materializer turns the spans found by the resolver into style runs.
type materializer struct {
	parser *Parser
	buf    *buffer
	spans  []*span
	warns  *[]Warning

	runs    []pendingRun
	subs    []substitution
	fetches []fetchRequest

	// emptyLinks holds the indices of the link spans which got the placeholder text.
	emptyLinks map[int]bool
}

// run performs every remaining edit of the buffer and returns the runs over the final text.
//
// Behaviour:
//
//  1. Empty links get the placeholder text, in discovery order.
//  2. Closed spans are turned into runs, in discovery order.
//  3. Unclosed tags are put back as "[code]", in reverse discovery order.
//     Text put back exactly at a boundary of an inclusive run extends the run,
//     an image run never grows.
//  4. Channel identifiers are replaced with display names, in reverse discovery order.
//  5. Run offsets are rebased onto the final text.
func (m *materializer) run() []StyleRun {
	m.insertLinkPlaceholders()

	for _, s := range m.spans {
		if s.closed {
			m.materialize(s)
		}
	}

	m.reinsertUnclosed()
	m.substitute()

	out := make([]StyleRun, 0, len(m.runs))
	for i := range m.runs {
		r := &m.runs[i]
		start := m.buf.resolve(&r.start, r.startAffinity)
		end := m.buf.resolve(&r.end, r.endAffinity)
		out = append(out, StyleRun{
			Start:     start,
			End:       max(start, end),
			Kind:      r.kind,
			Inclusive: r.inclusive,
			Payload:   r.payload,
		})
	}

	return out
}

// editRange returns the token versions between which the text of the edit belongs.
//
// The placeholder of an empty link lives between the link's tokens, a reinserted
// tag lives where its own token was. Spans use it to order their boundaries against
// the placeholders and against each other's reinserted tags.
func (m *materializer) editRange(e edit) (from, to int, ok bool) {
	if e.owner < 0 || e.owner >= len(m.spans) {
		return 0, 0, false
	}

	s := m.spans[e.owner]
	if s.closed {
		return s.opened, s.closedAt, true
	}

	return s.opened, s.opened, true
}

// startAffinity moves the span's start past text inserted at it only if the span
// was opened after that text.
func (m *materializer) startAffinity(s *span) func(edit) affinity {
	return func(e edit) affinity {
		_, to, ok := m.editRange(e)
		if ok && s.opened > to {
			return move
		}
		return stay
	}
}

// endAffinity moves the span's end past text inserted at it only if the span
// was closed after that text.
func (m *materializer) endAffinity(s *span) func(edit) affinity {
	return func(e edit) affinity {
		from, _, ok := m.editRange(e)
		if ok && s.closedAt > from {
			return move
		}
		return stay
	}
}

// bounds rebases the span onto the current buffer and returns its content range.
func (m *materializer) bounds(s *span) (int, int) {
	start := m.buf.resolve(&s.start, m.startAffinity(s))
	end := m.buf.resolve(&s.end, m.endAffinity(s))
	return start, max(start, end)
}

func (m *materializer) warn(issue Issue, pos int, near, desc string) {
	*m.warns = append(*m.warns, Warning{
		Issue:       issue,
		Pos:         pos,
		Near:        near,
		Description: desc,
	})
}

func (m *materializer) add(s *span, kind StyleKind, payload Payload) {
	start, end := m.bounds(s)

	m.runs = append(m.runs, pendingRun{
		kind:      kind,
		inclusive: kind != KindImage,
		payload:   payload,
		start:     m.buf.anchor(start),
		end:       m.buf.anchor(end),
	})
}

func (m *materializer) insertLinkPlaceholders() {
	m.emptyLinks = make(map[int]bool)

	for _, s := range m.spans {
		if !s.closed || s.tag.Code != CodeURL {
			continue
		}

		start, end := m.bounds(s)
		if start != end {
			continue
		}

		m.buf.insert(start, m.parser.linkPlaceholder, s.index)
		m.emptyLinks[s.index] = true
	}
}

// materialize emits the runs of a single closed span.
func (m *materializer) materialize(s *span) {
	start, end := m.bounds(s)
	text := m.buf.slice(start, end)
	links := m.parser.links

	switch s.tag.Code {
	case CodeColor:
		if !s.hasVar {
			m.warn(IssueInvalidColor, start, s.token, "color tag has no color.")
			return
		}

		c, err := ParseColor(s.variable)
		if err != nil {
			m.warn(IssueInvalidColor, start, s.token, err.Error())
			return
		}

		m.add(s, KindColor, ColorPayload{Color: c})

	case CodeURL:
		// a present but empty variable is the target as well, and fails validation
		var target string

		switch {
		case s.hasVar:
			target = strings.TrimSpace(s.variable)
		case m.emptyLinks[s.index]:
			target = EmptyLinkTarget
		default:
			target = GuessURL(text)
		}

		if !IsValidURL(target) {
			m.warn(IssueInvalidURL, start, s.token, "link target "+strconv.Quote(target)+" is not a valid URL.")
			return
		}

		m.add(s, KindLink, LinkPayload{URL: target})

	case CodeUser:
		m.add(s, KindUnderline, nil)

		if strings.TrimSpace(text) == "" {
			return
		}

		profile := links.Profile(text)
		if !IsValidURL(profile) {
			m.warn(IssueInvalidURL, start, s.token, "profile link "+strconv.Quote(profile)+" is not a valid URL.")
			return
		}

		m.add(s, KindLink, LinkPayload{URL: profile})

	case CodeIcon, CodeEicon:
		if strings.TrimSpace(text) == "" {
			m.warn(IssueInvalidURL, start, s.token, "image tag has no name.")
			return
		}

		url := links.Eicon(text)
		if s.tag.Code == CodeIcon {
			url = links.Avatar(text)
		}

		ph := newPlaceholder(m.parser.pendingGlyph)
		m.add(s, KindImage, ImagePayload{URL: url, Placeholder: ph})
		m.fetches = append(m.fetches, fetchRequest{url: url, placeholder: ph})

		if s.tag.Code == CodeIcon {
			m.add(s, KindLink, LinkPayload{URL: links.Profile(strings.ToLower(text))})
		}

	case CodePrivateChannel:
		display := ""
		if s.hasVar {
			display = s.variable
		}

		m.add(s, KindReference, ReferencePayload{ID: text, Display: display})

		switch {
		case display == "":
			m.warn(IssueMissingDisplayName, start, s.token, "channel "+strconv.Quote(text)+" has no display name.")
		case text == "":
			m.warn(IssueReferenceNotFound, start, s.token, "channel tag has no identifier.")
		default:
			m.subs = append(m.subs, substitution{span: s, id: text, display: display})
		}

	case CodePublicChannel:
		m.add(s, KindReference, ReferencePayload{ID: text})

	case CodeSuperscript, CodeSubscript:
		m.add(s, s.tag.Style, nil)
		m.add(s, KindRelativeSize, SizePayload{Scale: relativeScale})

	default:
		m.add(s, s.tag.Style, nil)
	}
}

// reinsertUnclosed puts the opening tokens of unclosed spans back into the text.
func (m *materializer) reinsertUnclosed() {
	var warns []Warning

	for i := len(m.spans) - 1; i >= 0; i-- {
		s := m.spans[i]
		if s.closed {
			continue
		}

		pos := m.buf.resolve(&s.start, m.startAffinity(s))
		m.buf.insert(pos, s.tag.OpeningToken(), s.index)

		warns = append(warns, Warning{
			Issue:       IssueUnclosedTag,
			Pos:         pos,
			Near:        s.token,
			Description: "tag " + strconv.Quote(s.token) + " is never closed.",
		})
	}

	// reporting in the discovery order
	for i := len(warns) - 1; i >= 0; i-- {
		*m.warns = append(*m.warns, warns[i])
	}
}

// substitute replaces channel identifiers with their display names.
//
// WARNING: the identifier is searched in the whole text, so if the same string
// occurs earlier in the message, that occurrence is replaced instead.
func (m *materializer) substitute() {
	for i := len(m.subs) - 1; i >= 0; i-- {
		sub := m.subs[i]

		pos := m.buf.index(sub.id)
		if pos == -1 {
			m.warn(IssueReferenceNotFound, 0, sub.span.token, "channel "+strconv.Quote(sub.id)+" is not found in the text.")
			continue
		}

		m.buf.splice(pos, len([]rune(sub.id)), sub.display, sub.span.index)
	}
}
