package colour

import (
	"context"
	"errors"
	"image"
	"image/color"
	"reflect"
	"testing"

	imageutil "github.com/jmylchreest/drape/internal/image"
)

func hexDistance(a, b string) float64 {
	ra, _ := ParseHex(a)
	rb, _ := ParseHex(b)
	return Distance(ra, rb)
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// stripes paints consecutive runs of rows in each colour.
func stripes(w int, rows []int, colors []color.Color) *image.RGBA {
	h := 0
	for _, r := range rows {
		h += r
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	y := 0
	for i, r := range rows {
		for ; r > 0; r-- {
			for x := 0; x < w; x++ {
				img.Set(x, y, colors[i])
			}
			y++
		}
	}
	return img
}

func staticDecoder(img image.Image) imageutil.Decoder {
	return imageutil.DecoderFunc(func(context.Context, string) (image.Image, error) { return img, nil })
}

func TestQuantizedPaletteSolidRed(t *testing.T) {
	got := QuantizedPalette(solid(10, 10, color.RGBA{R: 255, A: 255}))
	if len(got) == 0 || len(got) > MaxDistinct {
		t.Fatalf("Expected 1..%d colours, got %v", MaxDistinct, got)
	}
	if d := hexDistance(got[0], "#ff0000"); d >= DistinctThreshold {
		t.Errorf("Expected a colour near #ff0000, got %v", got)
	}
	assertPairwiseDistinct(t, got)
}

func TestQuantizedPaletteOrderingAndFiltering(t *testing.T) {
	img := stripes(10, []int{2, 5, 3, 4}, []color.Color{
		color.RGBA{0, 0, 255, 255},     // blue, 20 px
		color.RGBA{255, 0, 0, 255},     // red, 50 px
		color.RGBA{224, 0, 0, 255},     // dark red, 30 px, within 31 of red
		color.RGBA{250, 250, 250, 255}, // near white, 40 px
	})

	got := QuantizedPalette(img)
	want := []string{"#ff0000", "#ffffff", "#0000ff"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestQuantizedPaletteTiesKeepFirstSeen(t *testing.T) {
	img := stripes(4, []int{3, 3}, []color.Color{
		color.RGBA{0, 128, 0, 255},
		color.RGBA{128, 0, 128, 255},
	})
	got := QuantizedPalette(img)
	if len(got) != 2 || got[0] != "#008000" || got[1] != "#800080" {
		t.Errorf("Expected first-seen order, got %v", got)
	}
}

func TestQuantizedPaletteCapsAtSix(t *testing.T) {
	colors := []color.Color{
		color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255}, color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 255, 0, 255}, color.RGBA{0, 0, 255, 255}, color.RGBA{255, 255, 0, 255},
		color.RGBA{0, 255, 255, 255}, color.RGBA{255, 0, 255, 255},
	}
	rows := []int{8, 7, 6, 5, 4, 3, 2, 1}
	got := QuantizedPalette(stripes(3, rows, colors))
	if len(got) != MaxDistinct {
		t.Errorf("Expected %d colours, got %v", MaxDistinct, got)
	}
	assertPairwiseDistinct(t, got)
}

func TestSnap(t *testing.T) {
	e := NewQuantizeExtractor()
	tests := map[uint8]uint8{0: 0, 15: 0, 16: 32, 47: 32, 48: 64, 208: 224, 239: 224, 240: 255, 255: 255}
	for in, want := range tests {
		if got := e.snap(in); got != want {
			t.Errorf("snap(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestExtractPaletteFallback(t *testing.T) {
	broken := imageutil.DecoderFunc(func(context.Context, string) (image.Image, error) {
		return nil, errors.New("corrupt")
	})
	got := ExtractPalette(context.Background(), broken, "whatever.png")
	if !reflect.DeepEqual(got, FallbackPalette()) {
		t.Errorf("Expected fallback palette, got %v", got)
	}

	got = ExtractPalette(context.Background(), imageutil.NewSmartLoader(), "/does/not/exist.png")
	if !reflect.DeepEqual(got, []string{"#ffffff", "#f5f5f5", "#e0e0e0", "#000000"}) {
		t.Errorf("Expected fallback palette for missing file, got %v", got)
	}
}

func TestExtractPaletteDecodes(t *testing.T) {
	got := ExtractPalette(context.Background(), staticDecoder(solid(300, 120, color.RGBA{0, 0, 255, 255})), "x")
	if !reflect.DeepEqual(got, []string{"#0000ff"}) {
		t.Errorf("Expected [#0000ff], got %v", got)
	}
}

func TestBackgroundChoice(t *testing.T) {
	if got := BackgroundChoice([]string{"#123456", "#ffffff"}); got != "#123456" {
		t.Errorf("Expected first colour, got %s", got)
	}
	if got := BackgroundChoice(nil); got != "#f5f5f5" {
		t.Errorf("Expected #f5f5f5, got %s", got)
	}
}

func TestNewExtractor(t *testing.T) {
	for _, alg := range ValidAlgorithms() {
		if _, err := NewExtractor(alg); err != nil {
			t.Errorf("NewExtractor(%s) error = %v", alg, err)
		}
	}
	if _, err := NewExtractor("mediancut"); err == nil {
		t.Error("Expected error for unknown algorithm")
	}
	if err := (ExtractorConfig{Algorithm: AlgorithmKMeans, ColorCount: 0}).Validate(); err == nil {
		t.Error("Expected validation error for zero count")
	}
	if err := DefaultExtractorConfig().Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
	if _, err := NewKMeansExtractor().Extract(nil, 3); err == nil {
		t.Error("Expected error for nil image")
	}
}

func assertPairwiseDistinct(t *testing.T, hexes []string) {
	t.Helper()
	for i := range hexes {
		for j := i + 1; j < len(hexes); j++ {
			if d := hexDistance(hexes[i], hexes[j]); d < DistinctThreshold {
				t.Errorf("%s and %s are only %.1f apart", hexes[i], hexes[j], d)
			}
		}
	}
}
