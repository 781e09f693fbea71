package pin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/hashicorp/go-hclog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/jmylchreest/drape/internal/colour"
	imageutil "github.com/jmylchreest/drape/internal/image"
)

// PNGExporter rasterises scenes to PNG. Image sources are loaded with Decoder.
type PNGExporter struct {
	Decoder imageutil.Decoder
	Logger  hclog.Logger
}

// NewPNGExporter returns an exporter that loads images with dec.
func NewPNGExporter(dec imageutil.Decoder) *PNGExporter {
	return &PNGExporter{Decoder: dec, Logger: hclog.NewNullLogger()}
}

// ToImageBytes implements RasterExporter.
func (e *PNGExporter) ToImageBytes(ctx context.Context, scene *Scene, scale int) ([]byte, error) {
	img, err := e.Rasterize(ctx, scene, scale)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize draws scene onto a Width*scale by Height*scale canvas, bottom element
// first.
func (e *PNGExporter) Rasterize(ctx context.Context, scene *Scene, scale int) (*image.RGBA, error) {
	if scale < 1 {
		return nil, fmt.Errorf("invalid export scale %d", scale)
	}
	dst := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))
	bg, err := colour.ParseHex(scene.Background)
	if err != nil {
		bg = colour.RGB{R: 255, G: 255, B: 255}
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	s := float64(scale)
	for _, el := range scene.Elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch el.Kind {
		case KindImage:
			if err := e.drawImage(ctx, dst, el, s); err != nil {
				return nil, err
			}
		case KindText:
			if err := drawText(dst, el, s); err != nil {
				return nil, fmt.Errorf("failed to draw text %s: %w", el.ID, err)
			}
		case KindShape:
			drawShape(dst, el, s)
		default:
			e.logger().Warn("skipping element of unknown kind", "id", el.ID, "kind", el.Kind)
		}
	}
	return dst, nil
}

func (e *PNGExporter) logger() hclog.Logger {
	if e.Logger == nil {
		return hclog.NewNullLogger()
	}
	return e.Logger
}

func (e *PNGExporter) drawImage(ctx context.Context, dst draw.Image, el Element, scale float64) error {
	if e.Decoder == nil {
		return errors.New("exporter has no image decoder")
	}
	src, err := e.Decoder.Decode(ctx, el.Source)
	if err != nil {
		return fmt.Errorf("failed to load image for element %s: %w", el.ID, err)
	}
	e.logger().Debug("drawing image", "id", el.ID, "source_bounds", src.Bounds())
	place(dst, src, el.Transform, scale, xdraw.CatmullRom)
	return nil
}

// place draws sprite so that it fills t (scaled by scale) with t's rotation
// about its centre.
func place(dst draw.Image, sprite image.Image, t Transform, scale float64, interp xdraw.Transformer) {
	sb := sprite.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw == 0 || sh == 0 || t.Width <= 0 || t.Height <= 0 {
		return
	}
	sx := t.Width * scale / sw
	sy := t.Height * scale / sh
	theta := t.Angle * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)

	a, b := cos*sx, -sin*sy
	d, f := sin*sx, cos*sy
	ox := float64(sb.Min.X) + sw/2
	oy := float64(sb.Min.Y) + sh/2
	cx, cy := t.X*scale, t.Y*scale

	m := f64.Aff3{
		a, b, cx - a*ox - b*oy,
		d, f, cy - d*ox - f*oy,
	}
	interp.Transform(dst, m, sprite, sb, xdraw.Over, nil)
}

func parseFill(s string, fallback color.Color) color.Color {
	c, err := colour.ParseHex(s)
	if err != nil {
		return fallback
	}
	return c
}

// shapeSprite rasterises a shape at its output size.
func shapeSprite(el Element, scale float64) *image.NRGBA {
	w := int(math.Ceil(el.Transform.Width * scale))
	h := int(math.Ceil(el.Transform.Height * scale))
	sprite := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return sprite
	}

	fill := color.NRGBAModel.Convert(parseFill(el.Fill, color.Black)).(color.NRGBA)
	fw, fh := float64(w), float64(h)
	var inside func(x, y float64) bool

	switch el.Shape {
	case ShapeRect:
		r := math.Min(el.Radius*scale, math.Min(fw, fh)/2)
		inside = func(x, y float64) bool {
			dx := math.Max(math.Max(r-x, x-(fw-r)), 0)
			dy := math.Max(math.Max(r-y, y-(fh-r)), 0)
			return dx*dx+dy*dy <= r*r
		}
	case ShapeCircle:
		rx, ry := fw/2, fh/2
		inside = func(x, y float64) bool {
			nx, ny := (x-rx)/rx, (y-ry)/ry
			return nx*nx+ny*ny <= 1
		}
	case ShapeTriangle:
		inside = func(x, y float64) bool {
			half := fw / 2 * (y / fh)
			return math.Abs(x-fw/2) <= half
		}
	case ShapeLine:
		fill = color.NRGBAModel.Convert(parseFill(el.Stroke, color.Black)).(color.NRGBA)
		inside = func(float64, float64) bool { return true }
	default:
		return sprite
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if inside(float64(x)+0.5, float64(y)+0.5) {
				sprite.SetNRGBA(x, y, fill)
			}
		}
	}
	return sprite
}

func drawShape(dst draw.Image, el Element, scale float64) {
	placeSized(dst, shapeSprite(el, scale), el.Transform, scale)
}

// textSprite draws wrapped text with glyphs rendered at output size.
func textSprite(el Element, fill color.Color, scale float64) (*image.NRGBA, error) {
	size := el.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	lines := wrapText(el.Content, el.Font, size, el.Transform.Width)
	face, err := newFace(el.Font, size*scale)
	if err != nil {
		return nil, fmt.Errorf("failed to load font %q: %w", el.Font, err)
	}
	defer face.Close()

	w := int(math.Ceil(el.Transform.Width * scale))
	pitch := size * scale * lineHeight
	h := int(math.Ceil(float64(len(lines)) * pitch))
	sprite := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))

	m := face.Metrics()
	// Centre the glyph box vertically within each line box.
	baseline := (pitch-float64((m.Ascent+m.Descent).Ceil()))/2 + float64(m.Ascent.Ceil())
	d := font.Drawer{Dst: sprite, Src: image.NewUniform(fill), Face: face}
	for i, line := range lines {
		lw := d.MeasureString(line).Ceil()
		x := 0
		switch el.Align {
		case AlignCenter, "":
			x = (w - lw) / 2
		case AlignRight:
			x = w - lw
		}
		d.Dot = fixed.P(x, int(math.Round(float64(i)*pitch+baseline)))
		d.DrawString(line)
	}
	return sprite, nil
}

// placeSized positions a sprite that is already at output size.
func placeSized(dst draw.Image, sprite *image.NRGBA, t Transform, scale float64) {
	t.Width = float64(sprite.Bounds().Dx()) / scale
	t.Height = float64(sprite.Bounds().Dy()) / scale
	place(dst, sprite, t, scale, xdraw.ApproxBiLinear)
}

func drawText(dst draw.Image, el Element, scale float64) error {
	if el.Content == "" {
		return nil
	}
	if el.Shadow {
		shadow, err := textSprite(el, color.NRGBA{A: uint8(math.Round(255 * ShadowAlpha))}, scale)
		if err != nil {
			return err
		}
		t := el.Transform
		t.X += ShadowOffset
		t.Y += ShadowOffset
		placeSized(dst, shadow, t, scale)
	}
	sprite, err := textSprite(el, parseFill(el.Fill, color.White), scale)
	if err != nil {
		return err
	}
	placeSized(dst, sprite, el.Transform, scale)
	return nil
}
