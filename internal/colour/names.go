package colour

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/drape/internal/catalog"
)

// Reference swatches for the classifier's colour vocabulary.
var fashionSwatches = map[catalog.ColorTag]string{
	"black":    "#000000",
	"white":    "#ffffff",
	"red":      "#d0021b",
	"blue":     "#1f5fbf",
	"navy":     "#1b2a4a",
	"green":    "#2e8b57",
	"yellow":   "#f5d033",
	"orange":   "#f28c28",
	"purple":   "#6a3d9a",
	"pink":     "#f4a6c1",
	"brown":    "#6b4226",
	"beige":    "#e8dcc4",
	"grey":     "#808080",
	"gray":     "#808080",
	"gold":     "#d4af37",
	"silver":   "#c0c0c0",
	"burgundy": "#800020",
	"teal":     "#008080",
	"coral":    "#ff7f50",
	"cream":    "#fffdd0",
	"ivory":    "#fffff0",
	"nude":     "#e3bc9a",
	"tan":      "#d2b48c",
}

// NearestName returns the fashion colour name closest to hex in CIE Lab space, or ""
// when hex does not parse. Ties go to the name listed first in the catalog palette.
func NearestName(hex string) catalog.ColorTag {
	c, err := colorful.Hex(normaliseHex(hex))
	if err != nil {
		return ""
	}

	best := catalog.ColorTag("")
	bestDist := math.Inf(1)
	for _, name := range catalog.Palette() {
		ref, err := colorful.Hex(fashionSwatches[name])
		if err != nil {
			continue
		}
		if d := c.DistanceLab(ref); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// NearestNames maps each hex colour to its nearest name, dropping duplicates.
func NearestNames(hexes []string) []catalog.ColorTag {
	seen := map[catalog.ColorTag]bool{}
	var out []catalog.ColorTag
	for _, h := range hexes {
		n := NearestName(h)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// SwatchHex returns the reference hex for a colour name.
func SwatchHex(name catalog.ColorTag) (string, bool) {
	h, ok := fashionSwatches[catalog.ParseColor(string(name))]
	return h, ok
}

// normaliseHex accepts hex without the leading "#".
func normaliseHex(s string) string {
	rgb, err := ParseHex(s)
	if err != nil {
		return s
	}
	return rgb.Hex()
}
