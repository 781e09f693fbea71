package colour

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// ColourPreview returns a solid 24-bit ANSI block width characters wide.
func ColourPreview(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	return fmt.Sprintf("%s%d;%d;%d%s%s%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix, strings.Repeat(" ", width), ansiReset)
}

// ColourPreviewWithText renders text on a block of c, in black or white for contrast.
func ColourPreviewWithText(c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	if len(text) > width {
		text = text[:width]
	}
	fg := ReadableOn(c)
	return fmt.Sprintf("%s%d;%d;%d%s%s%d;%d;%d%s%-*s%s",
		ansiBgPrefix, c.R, c.G, c.B, ansiSuffix,
		ansiFgPrefix, fg.R, fg.G, fg.B, ansiSuffix,
		width, text, ansiReset)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 - fd fits in int
}

// FormatSwatch formats one palette line: a preview block (terminals only), the hex
// code and the nearest colour name.
func FormatSwatch(w io.Writer, hex string) string {
	rgb, err := ParseHex(hex)
	if err != nil {
		return hex
	}
	name := NearestName(hex)
	if IsTerminal(w) {
		return fmt.Sprintf("%s %s  %s", ColourPreview(rgb, 4), rgb.Hex(), name)
	}
	return fmt.Sprintf("%s  %s", rgb.Hex(), name)
}
