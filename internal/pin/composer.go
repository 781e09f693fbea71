package pin

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/jmylchreest/drape/internal/colour"
	imageutil "github.com/jmylchreest/drape/internal/image"
)

// Default element geometry and colours.
const (
	ImageFit = 200

	RectWidth      = 150
	RectHeight     = 100
	RectRadius     = 10
	CircleRadius   = 60
	TriangleWidth  = 120
	TriangleHeight = 100
	LineLength     = 200
	LineStroke     = 3
	TextMargin     = 80

	ShadowOffset = 2
	ShadowAlpha  = 0.5
)

// Default fills by shape.
var shapeFills = map[ShapeKind]string{
	ShapeRect:     "#4ecdc4",
	ShapeCircle:   "#ff6b6b",
	ShapeTriangle: "#ffe66d",
	ShapeLine:     "#000000",
}

// BackgroundPresets are the quick background swatches.
var BackgroundPresets = []string{
	"#ffffff", "#000000", "#ff6b6b", "#4ecdc4", "#ffe66d", "#95e1d3", "#dda0dd", "#ffa07a",
}

// ErrNoDecoder is returned when an image is added to a composer without a decoder.
var ErrNoDecoder = errors.New("composer has no image decoder")

// ErrUnknownElement is returned when selecting an id that is not in the scene.
var ErrUnknownElement = errors.New("no such element")

// RasterExporter turns a scene into encoded image bytes at a scale multiplier.
type RasterExporter interface {
	ToImageBytes(ctx context.Context, scene *Scene, scale int) ([]byte, error)
}

// Composer edits one scene. It is not safe for concurrent use; each editing
// session owns its own composer.
type Composer struct {
	scene   *Scene
	decoder imageutil.Decoder
	newID   func() string
}

// Option configures a Composer.
type Option func(*Composer)

// WithDecoder sets the decoder used to measure added images.
func WithDecoder(d imageutil.Decoder) Option {
	return func(c *Composer) { c.decoder = d }
}

// WithScene starts the composer from an existing scene.
func WithScene(s *Scene) Option {
	return func(c *Composer) {
		if s != nil {
			c.scene = s
		}
	}
}

// NewComposer returns a composer over an empty scene unless WithScene is given.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{scene: NewScene(), newID: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scene returns the composer's scene. Callers must not mutate it.
func (c *Composer) Scene() *Scene {
	return c.scene
}

// Selected returns the selected element, or nil.
func (c *Composer) Selected() *Element {
	if c.scene.Selected == "" {
		return nil
	}
	return c.scene.Element(c.scene.Selected)
}

func (c *Composer) add(e Element, selectIt bool) string {
	e.ID = c.newID()
	c.scene.Elements = append(c.scene.Elements, e)
	if selectIt {
		c.scene.Selected = e.ID
	}
	return e.ID
}

func (c *Composer) imageElement(ctx context.Context, src string, x, y float64) (Element, error) {
	if c.decoder == nil {
		return Element{}, ErrNoDecoder
	}
	img, err := c.decoder.Decode(ctx, src)
	if err != nil {
		return Element{}, fmt.Errorf("failed to load image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return Element{}, fmt.Errorf("image %s has no pixels", src)
	}
	scale := math.Min(ImageFit/float64(b.Dx()), ImageFit/float64(b.Dy()))
	return Element{
		Kind:   KindImage,
		Source: src,
		Transform: Transform{
			X:      x,
			Y:      y,
			Width:  float64(b.Dx()) * scale,
			Height: float64(b.Dy()) * scale,
		},
	}, nil
}

// AddImage appends an image scaled to fit ImageFit×ImageFit at the canvas centre
// and selects it.
func (c *Composer) AddImage(ctx context.Context, src string) (string, error) {
	e, err := c.imageElement(ctx, src, Width/2, Height/2)
	if err != nil {
		return "", err
	}
	return c.add(e, true), nil
}

// AddImages appends images on a two-column grid, the layout used when a pin is
// first created. Selection is unchanged. Images that fail to load are skipped and
// their errors joined.
func (c *Composer) AddImages(ctx context.Context, srcs []string) ([]string, error) {
	var ids []string
	var errs []error
	for i, src := range srcs {
		x := 100 + float64(i%2)*200
		y := 200 + float64(i/2)*150
		e, err := c.imageElement(ctx, src, x, y)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			continue
		}
		ids = append(ids, c.add(e, false))
	}
	return ids, errors.Join(errs...)
}

func textElement(content string, x, y float64) Element {
	if content == "" {
		content = DefaultText
	}
	width := float64(Width - TextMargin)
	return Element{
		Kind:     KindText,
		Content:  content,
		Font:     DefaultFont,
		FontSize: DefaultFontSize,
		Fill:     "#ffffff",
		Align:    AlignCenter,
		Shadow:   true,
		Transform: Transform{
			X:      x,
			Y:      y,
			Width:  width,
			Height: textHeight(content, DefaultFont, DefaultFontSize, width),
		},
	}
}

// AddText appends a centred text box and selects it. Empty content becomes
// DefaultText.
func (c *Composer) AddText(content string) string {
	return c.add(textElement(content, Width/2, Height/2), true)
}

// AddShape appends a shape with its default size and colour and selects it.
func (c *Composer) AddShape(kind ShapeKind) (string, error) {
	e := Element{
		Kind:      KindShape,
		Shape:     kind,
		Transform: Transform{X: Width / 2, Y: Height / 2},
	}
	switch kind {
	case ShapeRect:
		e.Transform.Width, e.Transform.Height = RectWidth, RectHeight
		e.Radius = RectRadius
		e.Fill = shapeFills[kind]
	case ShapeCircle:
		e.Transform.Width, e.Transform.Height = 2*CircleRadius, 2*CircleRadius
		e.Fill = shapeFills[kind]
	case ShapeTriangle:
		e.Transform.Width, e.Transform.Height = TriangleWidth, TriangleHeight
		e.Fill = shapeFills[kind]
	case ShapeLine:
		e.Transform.Width, e.Transform.Height = LineLength, LineStroke
		e.Stroke = shapeFills[kind]
		e.StrokeWidth = LineStroke
	default:
		return "", fmt.Errorf("unknown shape %q", kind)
	}
	return c.add(e, true), nil
}

// Populate lays out a fresh pin: background, images on the grid and an optional
// caption line near the bottom. Image errors are returned after the rest of the
// scene is built.
func (c *Composer) Populate(ctx context.Context, background string, images []string, text string) error {
	if background != "" {
		if err := c.SetBackground(background); err != nil {
			return err
		}
	}
	_, err := c.AddImages(ctx, images)
	if text != "" {
		c.add(textElement(text, Width/2, Height-150), false)
	}
	return err
}

// Select makes id the selected element.
func (c *Composer) Select(id string) error {
	if c.scene.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownElement, id)
	}
	c.scene.Selected = id
	return nil
}

// ClearSelection deselects everything.
func (c *Composer) ClearSelection() {
	c.scene.Selected = ""
}

// DeleteSelected removes the selected element. It reports whether anything was
// removed.
func (c *Composer) DeleteSelected() bool {
	i := c.scene.index(c.scene.Selected)
	if i < 0 {
		return false
	}
	c.scene.Elements = append(c.scene.Elements[:i], c.scene.Elements[i+1:]...)
	c.scene.Selected = ""
	return true
}

// BringForward swaps the selected element with the one above it. It is a no-op
// at the top or without a selection.
func (c *Composer) BringForward() bool {
	i := c.scene.index(c.scene.Selected)
	if i < 0 || i == len(c.scene.Elements)-1 {
		return false
	}
	c.scene.Elements[i], c.scene.Elements[i+1] = c.scene.Elements[i+1], c.scene.Elements[i]
	return true
}

// SendBackward swaps the selected element with the one below it. It is a no-op
// at the bottom or without a selection.
func (c *Composer) SendBackward() bool {
	i := c.scene.index(c.scene.Selected)
	if i <= 0 {
		return false
	}
	c.scene.Elements[i], c.scene.Elements[i-1] = c.scene.Elements[i-1], c.scene.Elements[i]
	return true
}

// SetBackground sets the canvas colour.
func (c *Composer) SetBackground(hex string) error {
	rgb, err := colour.ParseHex(hex)
	if err != nil {
		return err
	}
	c.scene.Background = rgb.Hex()
	return nil
}

// Style is a partial style update. Nil fields are left unchanged.
type Style struct {
	Font     *string    `json:"font,omitempty"`
	FontSize *float64   `json:"fontSize,omitempty"`
	Color    *string    `json:"color,omitempty"`
	Align    *Alignment `json:"align,omitempty"`
}

// Validate checks the values that are set.
func (s Style) Validate() error {
	if s.FontSize != nil && (*s.FontSize < MinFontSize || *s.FontSize > MaxFontSize) {
		return fmt.Errorf("font size %.0f out of range %d-%d", *s.FontSize, MinFontSize, MaxFontSize)
	}
	if s.Color != nil && !colour.IsHex(*s.Color) {
		return fmt.Errorf("invalid colour %q", *s.Color)
	}
	if s.Align != nil {
		if _, err := ParseAlignment(string(*s.Align)); err != nil {
			return err
		}
	}
	if s.Font != nil && *s.Font == "" {
		return errors.New("font cannot be empty")
	}
	return nil
}

// applicableTo keeps only the keys of s that apply to e.
func (s Style) applicableTo(e *Element) Style {
	switch e.Kind {
	case KindText:
		return s
	case KindShape:
		return Style{Color: s.Color}
	}
	return Style{}
}

// UpdateSelectedStyle applies the keys of s that make sense for the selected
// element: font, size, colour and alignment for text; colour for shapes, which
// sets the stroke of a line and the fill otherwise. Images take no style. It
// reports whether anything changed.
func (c *Composer) UpdateSelectedStyle(s Style) (bool, error) {
	e := c.Selected()
	if e == nil {
		return false, nil
	}
	s = s.applicableTo(e)
	if err := s.Validate(); err != nil {
		return false, err
	}
	changed := false
	switch e.Kind {
	case KindText:
		if s.Font != nil {
			e.Font, changed = *s.Font, true
		}
		if s.FontSize != nil {
			e.FontSize, changed = *s.FontSize, true
		}
		if s.Color != nil {
			e.Fill, changed = normaliseColour(*s.Color), true
		}
		if s.Align != nil {
			e.Align, changed = *s.Align, true
		}
		e.Transform.Height = textHeight(e.Content, e.Font, e.FontSize, e.Transform.Width)
	case KindShape:
		if s.Color != nil {
			if e.Shape == ShapeLine {
				e.Stroke = normaliseColour(*s.Color)
			} else {
				e.Fill = normaliseColour(*s.Color)
			}
			changed = true
		}
	}
	return changed, nil
}

// SetSelectedText replaces the content of a selected text box.
func (c *Composer) SetSelectedText(content string) bool {
	e := c.Selected()
	if e == nil || e.Kind != KindText {
		return false
	}
	e.Content = content
	e.Transform.Height = textHeight(content, e.Font, e.FontSize, e.Transform.Width)
	return true
}

// MoveSelected places the selected element's centre at x, y.
func (c *Composer) MoveSelected(x, y float64) bool {
	e := c.Selected()
	if e == nil {
		return false
	}
	e.Transform.X, e.Transform.Y = x, y
	return true
}

// ScaleSelected multiplies the selected element's size by factor. Text keeps its
// font size and rewraps to the new width.
func (c *Composer) ScaleSelected(factor float64) (bool, error) {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return false, fmt.Errorf("invalid scale factor %v", factor)
	}
	e := c.Selected()
	if e == nil {
		return false, nil
	}
	e.Transform.Width *= factor
	if e.Kind == KindText {
		e.Transform.Height = textHeight(e.Content, e.Font, e.FontSize, e.Transform.Width)
		return true, nil
	}
	if e.Kind == KindShape && e.Shape == ShapeLine {
		return true, nil
	}
	e.Transform.Height *= factor
	return true, nil
}

// RotateSelected sets the selected element's rotation in degrees.
func (c *Composer) RotateSelected(angle float64) bool {
	e := c.Selected()
	if e == nil {
		return false
	}
	e.Transform.Angle = math.Mod(angle, 360)
	return true
}

// Render clears the selection and rasterises the scene at ExportScale.
func (c *Composer) Render(ctx context.Context, exporter RasterExporter) ([]byte, error) {
	c.ClearSelection()
	data, err := exporter.ToImageBytes(ctx, c.scene, ExportScale)
	if err != nil {
		return nil, fmt.Errorf("failed to render pin: %w", err)
	}
	return data, nil
}

func normaliseColour(s string) string {
	rgb, err := colour.ParseHex(s)
	if err != nil {
		return s
	}
	return rgb.Hex()
}
