package pin

import (
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Text defaults, matching the editor's initial text settings.
const (
	DefaultFont     = "Arial"
	DefaultFontSize = 36
	DefaultText     = "New Text"
	MinFontSize     = 12
	MaxFontSize     = 72

	// lineHeight is the line box height as a multiple of the font size.
	lineHeight = 1.16
)

// FontOptions lists the font families the editor offers.
var FontOptions = []string{"Arial", "Georgia", "Times New Roman", "Courier New", "Verdana", "Impact"}

// fontData maps each font option to the bundled Go font that stands in for it.
var fontData = map[string][]byte{
	"Arial":           goregular.TTF,
	"Georgia":         gomediumitalic.TTF,
	"Times New Roman": goitalic.TTF,
	"Courier New":     gomono.TTF,
	"Verdana":         gomedium.TTF,
	"Impact":          gobold.TTF,
}

var (
	fontsMu sync.Mutex
	fonts   = map[string]*opentype.Font{}
)

// parsedFont returns the parsed font for name, falling back to DefaultFont for
// unknown names. Parsed fonts are shared; faces are not.
func parsedFont(name string) (*opentype.Font, error) {
	data, ok := fontData[name]
	if !ok {
		name, data = DefaultFont, fontData[DefaultFont]
	}
	fontsMu.Lock()
	defer fontsMu.Unlock()
	if f, ok := fonts[name]; ok {
		return f, nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	fonts[name] = f
	return f, nil
}

// newFace returns a face for name with an em of size pixels. The caller owns
// the face and must close it.
func newFace(name string, size float64) (font.Face, error) {
	f, err := parsedFont(name)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// wrapText breaks content into lines that fit within width when set in
// fontName at fontSize. Explicit newlines are kept; words longer than a line
// are placed on their own line.
func wrapText(content, fontName string, fontSize, width float64) []string {
	face, err := newFace(fontName, fontSize)
	if err != nil {
		return strings.Split(content, "\n")
	}
	defer face.Close()

	var lines []string
	for _, para := range strings.Split(content, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if float64(font.MeasureString(face, candidate).Ceil()) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// textHeight returns the box height of content laid out in fontName at
// fontSize and width.
func textHeight(content, fontName string, fontSize, width float64) float64 {
	return float64(len(wrapText(content, fontName, fontSize, width))) * fontSize * lineHeight
}
