package bbcode

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor parses the variable of the color tag.
//
// Accepted forms:
//
//  1. "#rgb" and "#rrggbb" hex triplets.
//  2. "#aarrggbb" hex with the alpha channel first.
//  3. SVG color names, case-insensitive, e.g. "red", "Orange", "lightgray".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color")
	}

	if s[0] != '#' {
		c, ok := colornames.Map[strings.ToLower(s)]
		if !ok {
			return color.RGBA{}, fmt.Errorf("unknown color name %q", s)
		}
		return c, nil
	}

	alpha := uint8(0xff)

	if len(s) == 9 {
		a, err := strconv.ParseUint(s[1:3], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		alpha = uint8(a)
		s = "#" + s[3:]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	r, g, b := c.RGB255()

	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}
