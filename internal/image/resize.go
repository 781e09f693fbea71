package image

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Downscale returns img scaled so its longer edge is at most maxEdge, preserving the
// aspect ratio. Images already within bounds are returned unchanged.
func Downscale(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) || w == 0 || h == 0 {
		return img
	}

	scale := math.Min(float64(maxEdge)/float64(w), float64(maxEdge)/float64(h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Fit returns the size of a w×h box scaled to fit inside maxW×maxH.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale)))
}
