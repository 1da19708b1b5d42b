package bbcode

import "strings"

// affinity decides where an offset lands when text is inserted exactly at it.
type affinity int

const (
	// stay keeps the offset in place, the inserted text ends up after it.
	stay affinity = iota

	// move pushes the offset past the inserted text.
	move
)

// edit is a single splice applied to the buffer: removed runes starting at pos were
// replaced with inserted runes.
type edit struct {
	pos      int
	removed  int
	inserted int

	// owner is the discovery index of the span which caused the edit, or -1.
	owner int
}

// anchor is an offset together with the buffer version it was recorded at.
//
// Anchors are never read directly after the buffer changes: [buffer.resolve] rebases
// them through every edit made since.
type anchor struct {
	off int
	ver int
}

// buffer is the mutable plain text of the message.
//
// Offsets are rune offsets. Every structural change is appended to the log, which
// allows offsets recorded at any earlier state to be rebased deterministically.
type buffer struct {
	text []rune
	log  []edit
}

func newBuffer(s string) *buffer {
	return &buffer{text: []rune(s)}
}

// version is the number of edits applied so far.
func (b *buffer) version() int {
	return len(b.log)
}

func (b *buffer) len() int {
	return len(b.text)
}

func (b *buffer) String() string {
	return string(b.text)
}

// slice returns the text between from and to, clamped to the buffer bounds.
func (b *buffer) slice(from, to int) string {
	from = clamp(from, 0, len(b.text))
	to = clamp(to, from, len(b.text))
	return string(b.text[from:to])
}

// indexRune returns the offset of the first r at or after from, or -1.
func (b *buffer) indexRune(r rune, from int) int {
	for i := max(from, 0); i < len(b.text); i++ {
		if b.text[i] == r {
			return i
		}
	}

	return -1
}

// index returns the offset of the first occurrence of s in the whole buffer, or -1.
func (b *buffer) index(s string) int {
	str := string(b.text)
	i := strings.Index(str, s)
	if i == -1 {
		return -1
	}

	// converting the byte index back to the rune offset
	return len([]rune(str[:i]))
}

// anchor records the offset at the current version.
func (b *buffer) anchor(off int) anchor {
	return anchor{off: off, ver: b.version()}
}

// splice replaces n runes at pos with s and records the edit.
func (b *buffer) splice(pos, n int, s string, owner int) {
	pos = clamp(pos, 0, len(b.text))
	n = clamp(n, 0, len(b.text)-pos)

	ins := []rune(s)

	text := make([]rune, 0, len(b.text)-n+len(ins))
	text = append(text, b.text[:pos]...)
	text = append(text, ins...)
	text = append(text, b.text[pos+n:]...)
	b.text = text

	b.log = append(b.log, edit{
		pos:      pos,
		removed:  n,
		inserted: len(ins),
		owner:    owner,
	})
}

func (b *buffer) remove(pos, n int, owner int) {
	b.splice(pos, n, "", owner)
}

func (b *buffer) insert(pos int, s string, owner int) {
	b.splice(pos, 0, s, owner)
}

// resolve rebases the anchor onto the current version and returns its offset.
//
// aff is consulted only for pure insertions made exactly at the anchored offset.
// The anchor is updated in place, so the edits are never applied twice.
func (b *buffer) resolve(a *anchor, aff func(e edit) affinity) int {
	for _, e := range b.log[a.ver:] {
		a.off = rebase(a.off, e, aff)
	}

	a.ver = b.version()
	return a.off
}

// rebase maps an offset through a single edit.
//
// Rules:
//
//  1. Offsets before the edit never move.
//  2. Offsets after the replaced region shift by the length difference.
//  3. Offsets inside the replaced region collapse into the inserted text.
//  4. An offset equal to pos stays, unless the edit is a pure insertion and
//     the affinity asks to move it past the inserted text.
func rebase(off int, e edit, aff func(e edit) affinity) int {
	end := e.pos + e.removed

	switch {
	case off < e.pos:
		return off

	case off == e.pos:
		if e.removed == 0 && aff != nil && aff(e) == move {
			return off + e.inserted
		}
		return off

	case off >= end:
		return off + e.inserted - e.removed

	default:
		return e.pos + min(off-e.pos, e.inserted)
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
