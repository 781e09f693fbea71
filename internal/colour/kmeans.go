package colour

import (
	"fmt"
	"image"
	"image/color"

	"github.com/EdlinOrg/prominentcolor"
)

// KMeansExtractor clusters pixels with k-means. Results vary slightly between runs on
// busy images; use the quantize extractor when reproducibility matters.
type KMeansExtractor struct {
	// Clusters is the k passed to the clustering step.
	Clusters int
	// ResizeEdge is the edge length images are reduced to before clustering.
	ResizeEdge uint
	// Threshold removes clusters closer than this to a more prominent one.
	Threshold float64
}

// NewKMeansExtractor creates a new KMeansExtractor with default settings.
func NewKMeansExtractor() *KMeansExtractor {
	return &KMeansExtractor{
		Clusters:   TopBuckets,
		ResizeEdge: prominentcolor.DefaultSize,
		Threshold:  DistinctThreshold,
	}
}

// Extract implements Extractor.
func (e *KMeansExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", count)
	}

	k := max(e.Clusters, count)
	// No background masks: a white backdrop is a legitimate pin colour.
	items, err := prominentcolor.KmeansWithAll(k, img, prominentcolor.ArgumentNoCropping, e.ResizeEdge, []prominentcolor.ColorBackgroundMask{})
	if err != nil {
		return nil, fmt.Errorf("k-means clustering failed: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no pixels found in image")
	}

	total := 0
	candidates := make([]RGB, len(items))
	for i, it := range items {
		candidates[i] = RGB{R: clamp8(it.Color.R), G: clamp8(it.Color.G), B: clamp8(it.Color.B)}
		total += it.Cnt
	}
	kept := DistinctColors(candidates, e.Threshold, count)

	p := &Palette{}
	for _, c := range kept {
		p.Colors = append(p.Colors, color.Color(c))
		for i, cand := range candidates {
			if cand == c && total > 0 {
				p.Weights = append(p.Weights, float64(items[i].Cnt)/float64(total))
				break
			}
		}
	}
	return p, nil
}

func clamp8(v uint32) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
