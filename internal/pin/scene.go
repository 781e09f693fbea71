// Package pin composes 2:3 social media pins from images, text and simple shapes
// and rasterises them to PNG.
package pin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Canvas dimensions of the editing surface, in pixels.
const (
	Width  = 500
	Height = 750

	// ExportScale is the upscale multiplier applied when rendering.
	ExportScale = 2
)

// ElementKind identifies what an element draws.
type ElementKind string

const (
	KindImage ElementKind = "image"
	KindText  ElementKind = "text"
	KindShape ElementKind = "shape"
)

// ShapeKind identifies a primitive shape.
type ShapeKind string

const (
	ShapeRect     ShapeKind = "rect"
	ShapeCircle   ShapeKind = "circle"
	ShapeTriangle ShapeKind = "triangle"
	ShapeLine     ShapeKind = "line"
)

// ShapeKinds returns the supported shapes.
func ShapeKinds() []ShapeKind {
	return []ShapeKind{ShapeRect, ShapeCircle, ShapeTriangle, ShapeLine}
}

// ParseShape converts a string into a ShapeKind.
func ParseShape(s string) (ShapeKind, error) {
	for _, k := range ShapeKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown shape %q (expected rect, circle, triangle or line)", s)
}

// Alignment is the horizontal text alignment.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// ParseAlignment converts a string into an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	switch a := Alignment(s); a {
	case AlignLeft, AlignCenter, AlignRight:
		return a, nil
	}
	return "", fmt.Errorf("unknown alignment %q (expected left, center or right)", s)
}

// Transform positions an element. X and Y locate its centre; Width and Height are
// its displayed size. Angle is a clockwise rotation in degrees.
type Transform struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle,omitempty"`
}

// Element is one item on the canvas. Which fields are meaningful depends on Kind.
type Element struct {
	ID        string      `json:"id"`
	Kind      ElementKind `json:"kind"`
	Transform Transform   `json:"transform"`

	// Image
	Source string `json:"source,omitempty"`

	// Text
	Content  string    `json:"content,omitempty"`
	Font     string    `json:"font,omitempty"`
	FontSize float64   `json:"fontSize,omitempty"`
	Align    Alignment `json:"align,omitempty"`
	Shadow   bool      `json:"shadow,omitempty"`

	// Text and shapes
	Fill string `json:"fill,omitempty"`

	// Shape
	Shape       ShapeKind `json:"shape,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Radius      float64   `json:"radius,omitempty"`
}

// Scene is the full editable state: background, elements bottom to top, and
// the selected element id (empty when nothing is selected).
type Scene struct {
	Background string    `json:"background"`
	Elements   []Element `json:"elements"`
	Selected   string    `json:"selected,omitempty"`
}

// NewScene returns an empty white scene.
func NewScene() *Scene {
	return &Scene{Background: "#ffffff", Elements: []Element{}}
}

func (s *Scene) index(id string) int {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Element returns the element with id, or nil.
func (s *Scene) Element(id string) *Element {
	if i := s.index(id); i >= 0 {
		return &s.Elements[i]
	}
	return nil
}

// Order returns element ids bottom to top.
func (s *Scene) Order() []string {
	ids := make([]string, len(s.Elements))
	for i, e := range s.Elements {
		ids[i] = e.ID
	}
	return ids
}

// SceneFilename is the default name for a persisted scene.
const SceneFilename = "scene.json"

// ReadScene loads a scene from a JSON file.
func ReadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path) // #nosec G304 - scene path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	s := NewScene()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse scene %s: %w", path, err)
	}
	if s.Elements == nil {
		s.Elements = []Element{}
	}
	if s.Selected != "" && s.index(s.Selected) < 0 {
		s.Selected = ""
	}
	return s, nil
}

// WriteScene saves a scene as indented JSON, creating parent directories.
func WriteScene(path string, s *Scene) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { // #nosec G301
		return fmt.Errorf("failed to create scene directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306
		return fmt.Errorf("failed to write scene: %w", err)
	}
	return nil
}
