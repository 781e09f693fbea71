package colour

import (
	"context"
	"image"

	imageutil "github.com/jmylchreest/drape/internal/image"
)

// LayoutKind is a composition hint derived from an image's aspect ratio.
type LayoutKind string

// Layout kinds.
const (
	LayoutHorizontal LayoutKind = "horizontal"
	LayoutVertical   LayoutKind = "vertical"
	LayoutCentered   LayoutKind = "centered"
)

// Layout describes the shape of an inspiration image.
type Layout struct {
	AspectRatio float64    `json:"aspectRatio"`
	Layout      LayoutKind `json:"layout"`
	IsPortrait  bool       `json:"isPortrait"`
	IsLandscape bool       `json:"isLandscape"`
	IsSquare    bool       `json:"isSquare"`
}

// DefaultLayout is returned when an image cannot be decoded.
func DefaultLayout() Layout {
	return LayoutForRatio(1)
}

// LayoutForRatio classifies an aspect ratio (width / height).
func LayoutForRatio(ratio float64) Layout {
	l := Layout{
		AspectRatio: ratio,
		IsPortrait:  ratio < 1,
		IsLandscape: ratio > 1,
		IsSquare:    ratio >= 0.9 && ratio <= 1.1,
		Layout:      LayoutCentered,
	}
	switch {
	case ratio > 1.2:
		l.Layout = LayoutHorizontal
	case ratio < 0.8:
		l.Layout = LayoutVertical
	}
	return l
}

// LayoutOf classifies a decoded image.
func LayoutOf(img image.Image) Layout {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return DefaultLayout()
	}
	return LayoutForRatio(float64(b.Dx()) / float64(b.Dy()))
}

// AnalyzeLayout decodes src and classifies it. Decode failures yield DefaultLayout.
func AnalyzeLayout(ctx context.Context, dec imageutil.Decoder, src string) Layout {
	img, err := dec.Decode(ctx, src)
	if err != nil {
		return DefaultLayout()
	}
	return LayoutOf(img)
}
