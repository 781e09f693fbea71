package pin

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func rgbAt(img *image.RGBA, x, y int) [3]uint8 {
	c := img.RGBAAt(x, y)
	return [3]uint8{c.R, c.G, c.B}
}

func TestRasterizeShapes(t *testing.T) {
	c := newTestComposer()
	if err := c.SetBackground("#ff0000"); err != nil {
		t.Fatal(err)
	}
	_, _ = c.AddShape(ShapeRect)

	exp := NewPNGExporter(fakeDecoder(color.Black))
	img, err := exp.Rasterize(context.Background(), c.Scene(), 1)
	if err != nil {
		t.Fatal(err)
	}

	red := [3]uint8{255, 0, 0}
	teal := [3]uint8{0x4e, 0xcd, 0xc4}
	tests := []struct {
		name string
		x, y int
		want [3]uint8
	}{
		{"background corner", 2, 2, red},
		{"rect centre", 250, 375, teal},
		{"inside rect edge", 250 + 70, 375, teal},
		{"outside rect", 250 + 90, 375, red},
		{"rounded corner cut", 250 - 74, 375 - 49, red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rgbAt(img, tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRasterizeRotation(t *testing.T) {
	c := newTestComposer()
	_, _ = c.AddShape(ShapeRect)
	c.RotateSelected(90)

	img, err := NewPNGExporter(nil).Rasterize(context.Background(), c.Scene(), 1)
	if err != nil {
		t.Fatal(err)
	}
	white := [3]uint8{255, 255, 255}
	if got := rgbAt(img, 250+65, 375); got != white {
		t.Errorf("rotated rect should not reach x+65, got %v", got)
	}
	if got := rgbAt(img, 250, 375+65); got == white {
		t.Error("rotated rect should cover y+65")
	}
}

func TestRasterizeImageAndText(t *testing.T) {
	c := newTestComposer()
	if _, err := c.AddImage(context.Background(), "40x40"); err != nil {
		t.Fatal(err)
	}
	c.AddText("Hello")
	c.MoveSelected(Width/2, 100)

	img, err := NewPNGExporter(fakeDecoder(color.RGBA{B: 255, A: 255})).Rasterize(context.Background(), c.Scene(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != Width*2 || b.Dy() != Height*2 {
		t.Fatalf("canvas = %v, want %dx%d", b, Width*2, Height*2)
	}
	if got := rgbAt(img, Width, Height); got != [3]uint8{0, 0, 255} {
		t.Errorf("image centre = %v, want blue", got)
	}

	inked := 0
	for y := 2 * 80; y < 2*120; y++ {
		for x := 0; x < Width*2; x++ {
			if rgbAt(img, x, y) != [3]uint8{255, 255, 255} {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("text band has no drawn pixels")
	}
}

func TestToImageBytes(t *testing.T) {
	c := newTestComposer()
	_, _ = c.AddShape(ShapeCircle)

	data, err := c.Render(context.Background(), NewPNGExporter(nil))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width*ExportScale || b.Dy() != Height*ExportScale {
		t.Errorf("exported size = %v", b)
	}
}

func TestRasterizeErrors(t *testing.T) {
	c := newTestComposer()
	if _, err := c.AddImage(context.Background(), "10x10"); err != nil {
		t.Fatal(err)
	}

	if _, err := NewPNGExporter(nil).Rasterize(context.Background(), c.Scene(), 1); err == nil {
		t.Error("image element without decoder should fail")
	}
	if _, err := NewPNGExporter(nil).Rasterize(context.Background(), NewScene(), 0); err == nil {
		t.Error("scale 0 should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPNGExporter(fakeDecoder(color.Black)).Rasterize(ctx, c.Scene(), 1); err == nil {
		t.Error("cancelled context should fail")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		font    string
		size    float64
		width   float64
		want    int
	}{
		{"single word", "Hello", DefaultFont, 36, 420, 1},
		{"fits one line", "Less is more", DefaultFont, 13, 420, 1},
		{"word per line when narrow", "one two three", DefaultFont, 36, 10, 3},
		{"explicit newline", "one\ntwo", DefaultFont, 36, 420, 2},
		{"unknown font falls back", "one two three", "Comic Sans", 36, 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(wrapText(tt.content, tt.font, tt.size, tt.width)); got != tt.want {
				t.Errorf("wrapText lines = %d, want %d (%q)", got, tt.want, wrapText(tt.content, tt.font, tt.size, tt.width))
			}
		})
	}
}

func TestTextFonts(t *testing.T) {
	render := func(t *testing.T, fontName string) *image.RGBA {
		t.Helper()
		c := newTestComposer()
		c.AddText("Golden hour")
		if _, err := c.UpdateSelectedStyle(Style{Font: ptr(fontName), Color: ptr("#000000")}); err != nil {
			t.Fatal(err)
		}
		c.ClearSelection()
		img, err := NewPNGExporter(fakeDecoder(color.Black)).Rasterize(context.Background(), c.Scene(), 1)
		if err != nil {
			t.Fatal(err)
		}
		return img
	}

	base := render(t, "Arial")
	for _, name := range FontOptions[1:] {
		t.Run(name, func(t *testing.T) {
			if bytes.Equal(render(t, name).Pix, base.Pix) {
				t.Errorf("%s renders the same pixels as Arial", name)
			}
		})
	}

	// Glyphs are drawn at output size, so a doubled export has more distinct
	// ink levels than a nearest-neighbour enlargement would give.
	c := newTestComposer()
	c.AddText("Golden hour")
	img, err := NewPNGExporter(fakeDecoder(color.Black)).Rasterize(context.Background(), c.Scene(), 2)
	if err != nil {
		t.Fatal(err)
	}
	levels := map[uint8]bool{}
	for y := 2*Height/2 - 40; y < 2*Height/2+40; y++ {
		for x := 0; x < Width*2; x++ {
			levels[img.RGBAAt(x, y).R] = true
		}
	}
	if len(levels) < 4 {
		t.Errorf("text has %d grey levels, want anti-aliased edges", len(levels))
	}
}
