package colour

import (
	"fmt"
	"image"
)

// Extractor defines the interface for color extraction algorithms.
type Extractor interface {
	// Extract extracts a color palette from an image.
	// The count parameter caps the number of colors returned.
	Extract(img image.Image, count int) (*Palette, error)
}

// Algorithm represents the color extraction algorithm type.
type Algorithm string

const (
	// AlgorithmQuantize buckets pixels on a 32-step grid and keeps the most frequent
	// distinct buckets. It is deterministic and the default.
	AlgorithmQuantize Algorithm = "quantize"

	// AlgorithmKMeans uses k-means clustering for color extraction.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmQuantize, AlgorithmKMeans}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// NewExtractor creates a new Extractor based on the specified algorithm.
func NewExtractor(alg Algorithm) (Extractor, error) {
	switch alg {
	case AlgorithmQuantize, "":
		return NewQuantizeExtractor(), nil
	case AlgorithmKMeans:
		return NewKMeansExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// ExtractorConfig holds configuration for color extraction.
type ExtractorConfig struct {
	Algorithm  Algorithm
	ColorCount int
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Algorithm:  AlgorithmQuantize,
		ColorCount: MaxDistinct,
	}
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s", c.Algorithm)
	}
	if c.ColorCount < 1 {
		return fmt.Errorf("color count must be at least 1, got %d", c.ColorCount)
	}
	if c.ColorCount > TopBuckets {
		return fmt.Errorf("color count too large: %d (maximum: %d)", c.ColorCount, TopBuckets)
	}
	return nil
}
