package colour

import (
	"image/color"
	"math"
)

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c color.Color) float64 {
	rgb := ToRGB(c)
	r := gammaCorrect(float64(rgb.R) / 255.0)
	g := gammaCorrect(float64(rgb.G) / 255.0)
	b := gammaCorrect(float64(rgb.B) / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21.
func ContrastRatio(c1, c2 color.Color) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// ReadableOn returns black or white, whichever contrasts more with bg.
func ReadableOn(bg color.Color) RGB {
	white, black := RGB{255, 255, 255}, RGB{}
	if ContrastRatio(bg, white) >= ContrastRatio(bg, black) {
		return white
	}
	return black
}

// TextColourFor returns the hex text colour that reads best on the hex
// background bg. Unparseable backgrounds get white.
func TextColourFor(bg string) string {
	rgb, err := ParseHex(bg)
	if err != nil {
		return "#ffffff"
	}
	return ReadableOn(rgb).Hex()
}
