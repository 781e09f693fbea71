package colour

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sort"

	imageutil "github.com/jmylchreest/drape/internal/image"
)

const (
	// SampleEdge is the longest edge images are reduced to before counting.
	SampleEdge = 100
	// QuantizeStep is the bucket width per channel.
	QuantizeStep = 32
	// TopBuckets is the number of most frequent buckets considered.
	TopBuckets = 8
	// DistinctThreshold is the minimum RGB distance between kept colours.
	DistinctThreshold = 50.0
	// MaxDistinct caps the extracted palette length.
	MaxDistinct = 6
)

// FallbackPalette is returned when an image cannot be decoded.
func FallbackPalette() []string {
	return []string{"#ffffff", "#f5f5f5", "#e0e0e0", "#000000"}
}

// QuantizeExtractor counts pixels on a coarse RGB grid and keeps the most frequent
// buckets that are visibly different from one another.
type QuantizeExtractor struct {
	SampleEdge int
	Step       int
	Top        int
	Threshold  float64
}

// NewQuantizeExtractor returns an extractor with the standard parameters.
func NewQuantizeExtractor() *QuantizeExtractor {
	return &QuantizeExtractor{
		SampleEdge: SampleEdge,
		Step:       QuantizeStep,
		Top:        TopBuckets,
		Threshold:  DistinctThreshold,
	}
}

// Extract implements Extractor.
func (e *QuantizeExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", count)
	}

	buckets, total := e.histogram(imageutil.Downscale(img, e.SampleEdge))
	if total == 0 {
		return nil, fmt.Errorf("no pixels found in image")
	}

	ranked := buckets
	if len(ranked) > e.Top {
		ranked = ranked[:e.Top]
	}

	candidates := make([]RGB, len(ranked))
	for i, b := range ranked {
		candidates[i] = b.rgb
	}
	kept := DistinctColors(candidates, e.Threshold, count)

	p := &Palette{}
	for _, k := range kept {
		p.Colors = append(p.Colors, k)
		for _, b := range ranked {
			if b.rgb == k {
				p.Weights = append(p.Weights, float64(b.count)/float64(total))
				break
			}
		}
	}
	return p, nil
}

type bucket struct {
	rgb   RGB
	count int
}

// histogram returns buckets sorted by descending count, ties broken by the order in
// which each bucket was first seen scanning rows top to bottom.
func (e *QuantizeExtractor) histogram(img image.Image) ([]bucket, int) {
	b := img.Bounds()
	index := map[RGB]int{}
	var buckets []bucket
	total := 0

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			key := e.quantize(img.At(x, y))
			i, ok := index[key]
			if !ok {
				i = len(buckets)
				index[key] = i
				buckets = append(buckets, bucket{rgb: key})
			}
			buckets[i].count++
			total++
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].count > buckets[j].count })
	return buckets, total
}

func (e *QuantizeExtractor) quantize(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: e.snap(n.R), G: e.snap(n.G), B: e.snap(n.B)}
}

// snap rounds v to the nearest multiple of Step, clamped to 255.
func (e *QuantizeExtractor) snap(v uint8) uint8 {
	step := e.Step
	if step <= 0 {
		step = QuantizeStep
	}
	q := (int(v) + step/2) / step * step
	return uint8(min(q, 255))
}

// DistinctColors walks candidates in order and keeps a colour only when it is at least
// threshold away from every colour already kept, stopping at limit.
func DistinctColors(candidates []RGB, threshold float64, limit int) []RGB {
	var kept []RGB
	for _, c := range candidates {
		if len(kept) >= limit {
			break
		}
		distinct := true
		for _, k := range kept {
			if Distance(c, k) < threshold {
				distinct = false
				break
			}
		}
		if distinct {
			kept = append(kept, c)
		}
	}
	return kept
}

// QuantizedPalette returns up to MaxDistinct hex colours for img, most frequent first.
func QuantizedPalette(img image.Image) []string {
	p, err := NewQuantizeExtractor().Extract(img, MaxDistinct)
	if err != nil {
		return []string{}
	}
	return p.ToHex()
}

// ExtractPalette decodes src and returns its quantized palette. It never fails: any
// decode error yields FallbackPalette.
func ExtractPalette(ctx context.Context, dec imageutil.Decoder, src string) []string {
	img, err := dec.Decode(ctx, src)
	if err != nil {
		return FallbackPalette()
	}
	return QuantizedPalette(img)
}

// BackgroundChoice picks a pin background from an extracted palette: its first colour,
// or #f5f5f5 when the palette is empty.
func BackgroundChoice(palette []string) string {
	if len(palette) == 0 {
		return "#f5f5f5"
	}
	return palette[0]
}
