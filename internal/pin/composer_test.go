package pin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"slices"
	"testing"

	imageutil "github.com/jmylchreest/drape/internal/image"
)

// fakeDecoder serves solid images whose size is encoded in the source name,
// e.g. "400x100".
func fakeDecoder(c color.Color) imageutil.Decoder {
	return imageutil.DecoderFunc(func(_ context.Context, src string) (image.Image, error) {
		var w, h int
		if _, err := fmt.Sscanf(src, "%dx%d", &w, &h); err != nil {
			return nil, fmt.Errorf("cannot decode %q", src)
		}
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
		return img, nil
	})
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("e%d", n)
	}
}

func newTestComposer() *Composer {
	c := NewComposer(WithDecoder(fakeDecoder(color.RGBA{B: 255, A: 255})))
	c.newID = sequentialIDs()
	return c
}

func TestSendBackward(t *testing.T) {
	c := newTestComposer()
	c.AddText("one")
	_, _ = c.AddShape(ShapeRect)
	_, _ = c.AddShape(ShapeCircle)

	if got := c.Scene().Order(); !slices.Equal(got, []string{"e1", "e2", "e3"}) {
		t.Fatalf("initial order = %v", got)
	}
	if c.Scene().Selected != "e3" {
		t.Fatalf("newest element should be selected, got %q", c.Scene().Selected)
	}

	if !c.SendBackward() {
		t.Fatal("SendBackward on top element should move it")
	}
	if got := c.Scene().Order(); !slices.Equal(got, []string{"e1", "e3", "e2"}) {
		t.Errorf("after one SendBackward = %v", got)
	}

	c.SendBackward()
	if got := c.Scene().Order(); !slices.Equal(got, []string{"e3", "e1", "e2"}) {
		t.Errorf("after two SendBackward = %v", got)
	}
	if c.SendBackward() {
		t.Error("SendBackward at the bottom should be a no-op")
	}
	if got := c.Scene().Order(); !slices.Equal(got, []string{"e3", "e1", "e2"}) {
		t.Errorf("bottom no-op changed order to %v", got)
	}
}

func TestBringForward(t *testing.T) {
	c := newTestComposer()
	c.AddText("a")
	c.AddText("b")

	if c.BringForward() {
		t.Error("BringForward at the top should be a no-op")
	}
	if err := c.Select("e1"); err != nil {
		t.Fatal(err)
	}
	if !c.BringForward() {
		t.Error("BringForward should move e1 up")
	}
	if got := c.Scene().Order(); !slices.Equal(got, []string{"e2", "e1"}) {
		t.Errorf("order = %v", got)
	}

	c.ClearSelection()
	if c.BringForward() || c.SendBackward() {
		t.Error("reordering without a selection should be a no-op")
	}
}

func TestSelectAndDelete(t *testing.T) {
	c := newTestComposer()
	c.AddText("a")
	c.AddText("b")

	if err := c.Select("nope"); !errors.Is(err, ErrUnknownElement) {
		t.Errorf("Select(unknown) error = %v", err)
	}
	if c.Scene().Selected != "e2" {
		t.Errorf("failed Select changed selection to %q", c.Scene().Selected)
	}

	if !c.DeleteSelected() {
		t.Fatal("DeleteSelected should remove e2")
	}
	if c.Selected() != nil {
		t.Error("selection should be cleared after delete")
	}
	if got := c.Scene().Order(); !slices.Equal(got, []string{"e1"}) {
		t.Errorf("order = %v", got)
	}
	if c.DeleteSelected() {
		t.Error("DeleteSelected without selection should be a no-op")
	}
}

func TestAddDefaults(t *testing.T) {
	c := newTestComposer()

	tests := []struct {
		shape      ShapeKind
		w, h       float64
		fill       string
		stroke     string
		wantRadius float64
	}{
		{ShapeRect, 150, 100, "#4ecdc4", "", 10},
		{ShapeCircle, 120, 120, "#ff6b6b", "", 0},
		{ShapeTriangle, 120, 100, "#ffe66d", "", 0},
		{ShapeLine, 200, 3, "", "#000000", 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.shape), func(t *testing.T) {
			id, err := c.AddShape(tt.shape)
			if err != nil {
				t.Fatal(err)
			}
			e := c.Scene().Element(id)
			if e.Transform.X != Width/2 || e.Transform.Y != Height/2 {
				t.Errorf("position = (%v, %v), want canvas centre", e.Transform.X, e.Transform.Y)
			}
			if e.Transform.Width != tt.w || e.Transform.Height != tt.h {
				t.Errorf("size = %vx%v, want %vx%v", e.Transform.Width, e.Transform.Height, tt.w, tt.h)
			}
			if e.Fill != tt.fill || e.Stroke != tt.stroke || e.Radius != tt.wantRadius {
				t.Errorf("fill=%q stroke=%q radius=%v", e.Fill, e.Stroke, e.Radius)
			}
		})
	}

	if _, err := c.AddShape("star"); err == nil {
		t.Error("AddShape(star) should fail")
	}

	id := c.AddText("")
	text := c.Scene().Element(id)
	if text.Content != DefaultText || text.FontSize != 36 || text.Font != "Arial" ||
		text.Fill != "#ffffff" || text.Align != AlignCenter || !text.Shadow {
		t.Errorf("text defaults = %+v", text)
	}
	if text.Transform.Width != Width-TextMargin {
		t.Errorf("text width = %v", text.Transform.Width)
	}
}

func TestAddImageFits(t *testing.T) {
	c := newTestComposer()

	tests := []struct {
		src  string
		w, h float64
	}{
		{"400x100", 200, 50},
		{"100x400", 50, 200},
		{"50x50", 200, 200},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			id, err := c.AddImage(context.Background(), tt.src)
			if err != nil {
				t.Fatal(err)
			}
			e := c.Scene().Element(id)
			if e.Transform.Width != tt.w || e.Transform.Height != tt.h {
				t.Errorf("size = %vx%v, want %vx%v", e.Transform.Width, e.Transform.Height, tt.w, tt.h)
			}
			if c.Scene().Selected != id {
				t.Error("added image should be selected")
			}
		})
	}

	if _, err := c.AddImage(context.Background(), "garbage"); err == nil {
		t.Error("AddImage with undecodable source should fail")
	}
	if _, err := NewComposer().AddImage(context.Background(), "10x10"); !errors.Is(err, ErrNoDecoder) {
		t.Errorf("AddImage without decoder error = %v", err)
	}
}

func TestPopulate(t *testing.T) {
	c := newTestComposer()
	err := c.Populate(context.Background(), "#f5f5dc", []string{"10x10", "10x10", "bad", "10x10"}, "Golden hour")
	if err == nil {
		t.Error("Populate should report the bad image")
	}

	s := c.Scene()
	if s.Background != "#f5f5dc" {
		t.Errorf("background = %q", s.Background)
	}
	if s.Selected != "" {
		t.Errorf("Populate should not select, got %q", s.Selected)
	}

	want := []Transform{
		{X: 100, Y: 200, Width: 200, Height: 200},
		{X: 300, Y: 200, Width: 200, Height: 200},
		{X: 300, Y: 350, Width: 200, Height: 200},
	}
	images := s.Elements[:3]
	for i, e := range images {
		if e.Transform != want[i] {
			t.Errorf("image %d transform = %+v, want %+v", i, e.Transform, want[i])
		}
	}
	text := s.Elements[3]
	if text.Kind != KindText || text.Content != "Golden hour" || text.Transform.Y != Height-150 {
		t.Errorf("caption element = %+v", text)
	}
}

func ptr[T any](v T) *T { return &v }

func TestUpdateSelectedStyle(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(c *Composer)
		style   Style
		changed bool
		check   func(t *testing.T, e *Element)
	}{
		{
			name:    "nothing selected",
			setup:   func(c *Composer) { c.AddText("x"); c.ClearSelection() },
			style:   Style{FontSize: ptr(48.0)},
			changed: false,
		},
		{
			name:    "text takes font settings",
			setup:   func(c *Composer) { c.AddText("x") },
			style:   Style{Font: ptr("Georgia"), FontSize: ptr(48.0), Color: ptr("#FF6B6B"), Align: ptr(AlignRight)},
			changed: true,
			check: func(t *testing.T, e *Element) {
				if e.Font != "Georgia" || e.FontSize != 48 || e.Fill != "#ff6b6b" || e.Align != AlignRight {
					t.Errorf("text = %+v", e)
				}
			},
		},
		{
			name:    "font size on shape is ignored",
			setup:   func(c *Composer) { _, _ = c.AddShape(ShapeRect) },
			style:   Style{FontSize: ptr(48.0)},
			changed: false,
			check: func(t *testing.T, e *Element) {
				if e.FontSize != 0 || e.Fill != "#4ecdc4" {
					t.Errorf("shape = %+v", e)
				}
			},
		},
		{
			name:    "colour fills a rect",
			setup:   func(c *Composer) { _, _ = c.AddShape(ShapeRect) },
			style:   Style{Color: ptr("#000000")},
			changed: true,
			check: func(t *testing.T, e *Element) {
				if e.Fill != "#000000" || e.Stroke != "" {
					t.Errorf("shape = %+v", e)
				}
			},
		},
		{
			name:    "colour strokes a line",
			setup:   func(c *Composer) { _, _ = c.AddShape(ShapeLine) },
			style:   Style{Color: ptr("#ffffff")},
			changed: true,
			check: func(t *testing.T, e *Element) {
				if e.Stroke != "#ffffff" || e.Fill != "" {
					t.Errorf("line = %+v", e)
				}
			},
		},
		{
			name:    "images take no style",
			setup:   func(c *Composer) { _, _ = c.AddImage(context.Background(), "10x10") },
			style:   Style{Color: ptr("#ffffff")},
			changed: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestComposer()
			tt.setup(c)
			changed, err := c.UpdateSelectedStyle(tt.style)
			if err != nil {
				t.Fatal(err)
			}
			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
			if tt.check != nil {
				tt.check(t, c.Selected())
			}
		})
	}
}

func TestStyleValidation(t *testing.T) {
	c := newTestComposer()
	c.AddText("x")

	bad := []Style{
		{FontSize: ptr(8.0)},
		{FontSize: ptr(100.0)},
		{Color: ptr("teal")},
		{Align: ptr(Alignment("justify"))},
		{Font: ptr("")},
	}
	for _, s := range bad {
		if _, err := c.UpdateSelectedStyle(s); err == nil {
			t.Errorf("UpdateSelectedStyle(%+v) should fail", s)
		}
	}
	if c.Selected().FontSize != DefaultFontSize {
		t.Error("rejected style should not change the element")
	}

	// Keys that do not apply to the selection are ignored, not rejected.
	ignored := []struct {
		name  string
		setup func(c *Composer)
		style Style
	}{
		{"nothing selected", func(c *Composer) { c.ClearSelection() }, Style{FontSize: ptr(200.0)}},
		{"size on a shape", func(c *Composer) { _, _ = c.AddShape(ShapeRect) }, Style{FontSize: ptr(200.0), Align: ptr(Alignment("justify"))}},
		{"colour on an image", func(c *Composer) { _, _ = c.AddImage(context.Background(), "10x10") }, Style{Color: ptr("teal")}},
	}
	for _, tt := range ignored {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestComposer()
			c.AddText("x")
			tt.setup(c)
			changed, err := c.UpdateSelectedStyle(tt.style)
			if err != nil || changed {
				t.Errorf("UpdateSelectedStyle(%+v) = %v, %v; want no-op", tt.style, changed, err)
			}
		})
	}

	c = newTestComposer()
	_, _ = c.AddShape(ShapeCircle)
	if _, err := c.UpdateSelectedStyle(Style{Color: ptr("teal")}); err == nil {
		t.Error("invalid colour on a shape should fail")
	}
}

func TestTransformEdits(t *testing.T) {
	c := newTestComposer()
	_, _ = c.AddShape(ShapeRect)

	c.MoveSelected(10, 20)
	if ok, err := c.ScaleSelected(2); !ok || err != nil {
		t.Fatalf("ScaleSelected = %v, %v", ok, err)
	}
	c.RotateSelected(405)

	got := c.Selected().Transform
	want := Transform{X: 10, Y: 20, Width: 300, Height: 200, Angle: 45}
	if got != want {
		t.Errorf("transform = %+v, want %+v", got, want)
	}
	if _, err := c.ScaleSelected(0); err == nil {
		t.Error("ScaleSelected(0) should fail")
	}

	_, _ = c.AddShape(ShapeLine)
	_, _ = c.ScaleSelected(2)
	if line := c.Selected().Transform; line.Width != 400 || line.Height != LineStroke {
		t.Errorf("line scaled to %+v, stroke should keep its width", line)
	}
}

type recordingExporter struct {
	scale    int
	selected string
	err      error
}

func (r *recordingExporter) ToImageBytes(_ context.Context, s *Scene, scale int) ([]byte, error) {
	r.scale = scale
	r.selected = s.Selected
	return []byte("png"), r.err
}

func TestRenderClearsSelection(t *testing.T) {
	c := newTestComposer()
	c.AddText("x")

	exp := &recordingExporter{}
	data, err := c.Render(context.Background(), exp)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "png" || exp.scale != ExportScale || exp.selected != "" {
		t.Errorf("exporter saw scale=%d selected=%q", exp.scale, exp.selected)
	}
	if len(c.Scene().Elements) != 1 {
		t.Error("scene should persist across export")
	}

	exp.err = errors.New("boom")
	if _, err := c.Render(context.Background(), exp); err == nil {
		t.Error("Render should surface exporter errors")
	}
}

func TestApply(t *testing.T) {
	c := newTestComposer()
	var out bytes.Buffer

	err := c.Apply(context.Background(),
		AddElement{Kind: KindShape, Shape: ShapeCircle},
		AddElement{Kind: KindText, Content: "hello"},
		AddElement{Kind: KindImage, Source: "20x10"},
		Reorder{Direction: Backward},
		UpdateStyle{Style: Style{Color: ptr("#123456")}},
		Select{ID: "e1"},
		UpdateStyle{Style: Style{Color: ptr("#654321")}},
		Reorder{Direction: Forward},
		SetBackground{Color: "#abc"},
		Select{ID: "e2"},
		Delete{},
		Export{Exporter: &recordingExporter{}, Output: &out},
	)
	if err != nil {
		t.Fatal(err)
	}

	s := c.Scene()
	if got := s.Order(); !slices.Equal(got, []string{"e3", "e1"}) {
		t.Errorf("order = %v", got)
	}
	if s.Element("e1").Fill != "#654321" {
		t.Errorf("circle fill = %q", s.Element("e1").Fill)
	}
	if s.Background != "#aabbcc" {
		t.Errorf("background = %q", s.Background)
	}
	if out.String() != "png" {
		t.Errorf("export output = %q", out.String())
	}

	if err := c.Apply(context.Background(), AddElement{Kind: "video"}); err == nil {
		t.Error("unknown element kind should fail")
	}
	if err := c.Apply(context.Background(), Reorder{}); err == nil {
		t.Error("zero direction should fail")
	}
}

func TestSceneFile(t *testing.T) {
	c := newTestComposer()
	_, _ = c.AddShape(ShapeTriangle)
	c.AddText("saved")

	path := filepath.Join(t.TempDir(), "pins", SceneFilename)
	if err := WriteScene(path, c.Scene()); err != nil {
		t.Fatal(err)
	}
	back, err := ReadScene(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(back.Order(), c.Scene().Order()) || back.Selected != "e2" {
		t.Errorf("reloaded scene = %+v", back)
	}
	if back.Element("e2").Content != "saved" {
		t.Errorf("text content lost: %+v", back.Element("e2"))
	}

	if _, err := ReadScene(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadScene(missing) should fail")
	}
}
