// Package deck turns generated slide text into a themed slide-deck layout and
// serializes it as a PPTX document.
package deck

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// RawSlide is one "SLIDE n:" section of generated text.
type RawSlide struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// Bullet is a display line prefixed with the bullet glyph.
type Bullet string

const BulletGlyph = "•"

func (b Bullet) Text() string {
	return strings.TrimPrefix(string(b), BulletGlyph+" ")
}

type RGB struct {
	R, G, B uint8
}

var (
	White = RGB{255, 255, 255}
	Black = RGB{0, 0, 0}
)

// ParseHex reads "RRGGBB" with an optional leading '#'.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 3 {
		return RGB{}, fmt.Errorf("invalid colour %q", s)
	}
	return RGB{b[0], b[1], b[2]}, nil
}

func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// Brightness is the perceptual luminance on a 0-255 scale.
func (c RGB) Brightness() int {
	return (int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000
}

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

func (a Align) String() string {
	if a == AlignRight {
		return "right"
	}
	return "left"
}

// Theme is chosen once per deck and shared by every slide.
type Theme struct {
	Background RGB    `json:"background"`
	Foreground RGB    `json:"foreground"`
	Font       string `json:"font"`
	Align      Align  `json:"align"`
	Language   string `json:"language"`
}

type Image struct {
	Data     []byte
	MimeType string
	Source   string
}

// ImageResult is either a present image or the reason none is available.
type ImageResult struct {
	Image  *Image
	Reason error
}

func ImagePresent(img *Image) ImageResult {
	return ImageResult{Image: img}
}

func ImageAbsent(reason error) ImageResult {
	return ImageResult{Reason: reason}
}

func (r ImageResult) Present() bool {
	return r.Image != nil && len(r.Image.Data) > 0
}

var errNotFetched = errors.New("image not fetched")
