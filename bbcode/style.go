package bbcode

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// StyleRun is a styled range of the output text. It's the only unit the renderer needs.
type StyleRun struct {
	// Start is the inclusive rune offset of the range.
	Start int `json:"start"`

	// End is the exclusive rune offset of the range.
	End int `json:"end"`

	// Kind is the style identity of the run.
	Kind StyleKind `json:"kind"`

	// Inclusive reports whether text inserted exactly at either boundary of the run
	// becomes part of it. Image runs are the only exclusive ones.
	Inclusive bool `json:"inclusive"`

	// Payload carries the data the Kind needs, or nil.
	Payload Payload `json:"payload,omitempty"`
}

// Payload is the kind-specific data of a [StyleRun].
//
// It's a closed set: [ColorPayload], [LinkPayload], [ReferencePayload],
// [ImagePayload] and [SizePayload].
type Payload interface {
	payload()
}

// ColorPayload is the foreground color of a [KindColor] run.
type ColorPayload struct {
	Color color.RGBA
}

func (ColorPayload) payload() {}

// Hex returns the color as "#rrggbb", or "#aarrggbb" if it's not opaque.
func (p ColorPayload) Hex() string {
	c := p.Color
	if c.A != 0xff {
		return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (p ColorPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Color string `json:"color"`
	}{p.Hex()})
}

// LinkPayload is the target of a [KindLink] run.
type LinkPayload struct {
	URL string `json:"url"`
}

func (LinkPayload) payload() {}

// ReferencePayload identifies a channel for a [KindReference] run.
//
// Activating the reference is up to the renderer: the core only knows the ID.
type ReferencePayload struct {
	// ID is the raw channel identifier.
	ID string `json:"id"`

	// Display is the human-readable name shown instead of the ID, if any.
	Display string `json:"display,omitempty"`
}

func (ReferencePayload) payload() {}

// ImagePayload is an asynchronously loaded image of a [KindImage] run.
type ImagePayload struct {
	// URL is the address the image is fetched from.
	URL string `json:"url"`

	// Placeholder holds the pending glyph and, once fetched, the image itself.
	Placeholder *Placeholder `json:"placeholder"`
}

func (ImagePayload) payload() {}

// SizePayload scales the text of a [KindRelativeSize] run.
type SizePayload struct {
	Scale float32 `json:"scale"`
}

func (SizePayload) payload() {}
