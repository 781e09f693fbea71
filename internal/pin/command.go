package pin

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Command is an edit applied to a composer through Apply.
type Command interface {
	apply(ctx context.Context, c *Composer) error
}

// AddElement adds an image, text box or shape. Source is used for images,
// Content for text and Shape for shapes.
type AddElement struct {
	Kind    ElementKind
	Source  string
	Content string
	Shape   ShapeKind
}

func (cmd AddElement) apply(ctx context.Context, c *Composer) error {
	switch cmd.Kind {
	case KindImage:
		_, err := c.AddImage(ctx, cmd.Source)
		return err
	case KindText:
		c.AddText(cmd.Content)
		return nil
	case KindShape:
		_, err := c.AddShape(cmd.Shape)
		return err
	}
	return fmt.Errorf("unknown element kind %q", cmd.Kind)
}

// Select selects an element. An empty ID clears the selection.
type Select struct {
	ID string
}

func (cmd Select) apply(_ context.Context, c *Composer) error {
	if cmd.ID == "" {
		c.ClearSelection()
		return nil
	}
	return c.Select(cmd.ID)
}

// Direction is a z-order move.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// Reorder moves the selected element one step in z-order.
type Reorder struct {
	Direction Direction
}

func (cmd Reorder) apply(_ context.Context, c *Composer) error {
	switch cmd.Direction {
	case Forward:
		c.BringForward()
	case Backward:
		c.SendBackward()
	default:
		return fmt.Errorf("invalid reorder direction %d", cmd.Direction)
	}
	return nil
}

// UpdateStyle applies a partial style to the selected element.
type UpdateStyle struct {
	Style Style
}

func (cmd UpdateStyle) apply(_ context.Context, c *Composer) error {
	_, err := c.UpdateSelectedStyle(cmd.Style)
	return err
}

// SetBackground changes the canvas colour.
type SetBackground struct {
	Color string
}

func (cmd SetBackground) apply(_ context.Context, c *Composer) error {
	return c.SetBackground(cmd.Color)
}

// Delete removes the selected element.
type Delete struct{}

func (Delete) apply(_ context.Context, c *Composer) error {
	c.DeleteSelected()
	return nil
}

// Export renders the scene with Exporter and writes the bytes to Output.
type Export struct {
	Exporter RasterExporter
	Output   io.Writer
}

func (cmd Export) apply(ctx context.Context, c *Composer) error {
	if cmd.Exporter == nil || cmd.Output == nil {
		return errors.New("export needs an exporter and an output")
	}
	data, err := c.Render(ctx, cmd.Exporter)
	if err != nil {
		return err
	}
	if _, err := cmd.Output.Write(data); err != nil {
		return fmt.Errorf("failed to write pin: %w", err)
	}
	return nil
}

// Apply runs commands in order, stopping at the first error.
func (c *Composer) Apply(ctx context.Context, cmds ...Command) error {
	for _, cmd := range cmds {
		if err := cmd.apply(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
