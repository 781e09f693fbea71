// Package colour extracts palettes and layout hints from inspiration images and
// names, compares and previews colours.
package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Palette represents a collection of colors extracted from an image, most prominent first.
type Palette struct {
	Colors []color.Color
	// Weights holds the share of sampled pixels behind each colour, when known.
	Weights []float64
}

// NewPalette creates a new Palette with the given colors.
func NewPalette(colors []color.Color) *Palette {
	return &Palette{Colors: colors}
}

// PaletteFromHex builds a palette from hex codes, skipping any that do not parse.
func PaletteFromHex(hexes []string) *Palette {
	colors := make([]color.Color, 0, len(hexes))
	for _, h := range hexes {
		if rgb, err := ParseHex(h); err == nil {
			colors = append(colors, rgb)
		}
	}
	return NewPalette(colors)
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBA implements color.Color with full opacity.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xff}.RGBA()
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// ToRGB converts a color.Color to RGB, un-premultiplying alpha.
func ToRGB(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// ParseHex parses "#rgb" or "#rrggbb" (the leading # is optional).
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// IsHex reports whether s parses as a hex colour.
func IsHex(s string) bool {
	_, err := ParseHex(s)
	return err == nil
}

// Distance returns the Euclidean distance between a and b in RGB space.
func Distance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// ToHex converts the palette colors to hex strings.
func (p *Palette) ToHex() []string {
	hexColors := make([]string, len(p.Colors))
	for i, c := range p.Colors {
		hexColors[i] = ToRGB(c).Hex()
	}
	return hexColors
}

// ColorJSON represents a color in JSON output format.
type ColorJSON struct {
	Hex    string  `json:"hex"`
	RGB    RGB     `json:"rgb"`
	Name   string  `json:"name,omitempty"`
	Weight float64 `json:"weight,omitempty"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count  int         `json:"count"`
	Colors []ColorJSON `json:"colors"`
}

// ToJSON converts the palette to JSON, including the nearest fashion colour name.
func (p *Palette) ToJSON() ([]byte, error) {
	colors := make([]ColorJSON, len(p.Colors))
	for i, c := range p.Colors {
		rgb := ToRGB(c)
		colors[i] = ColorJSON{Hex: rgb.Hex(), RGB: rgb, Name: string(NearestName(rgb.Hex()))}
		if i < len(p.Weights) {
			colors[i].Weight = p.Weights[i]
		}
	}
	return json.MarshalIndent(PaletteJSON{Count: len(p.Colors), Colors: colors}, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Colors) == 0 {
		return "Empty palette"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Palette with %d colors:\n", len(p.Colors))
	for i, c := range p.Colors {
		rgb := ToRGB(c)
		fmt.Fprintf(&sb, "  %2d: %s (%s)\n", i+1, rgb.Hex(), rgb.String())
	}
	return sb.String()
}

// All returns an iterator over all colors in the palette.
func (p *Palette) All() func(func(int, color.Color) bool) {
	return func(yield func(int, color.Color) bool) {
		for i, c := range p.Colors {
			if !yield(i, c) {
				return
			}
		}
	}
}
