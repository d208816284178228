package canvas

// PencilBrush draws free-hand strokes.
type PencilBrush struct {
	Width float64
	Color string
}

// NewPencilBrush creates a one-unit black brush.
func NewPencilBrush() *PencilBrush {
	return &PencilBrush{Width: 1, Color: "rgb(0, 0, 0)"}
}

// SetDrawingMode switches free drawing on or off.
func (c *Canvas) SetDrawingMode(on bool) {
	c.drawingMode = on
}

// IsDrawingMode reports whether pointer strokes become paths.
func (c *Canvas) IsDrawingMode() bool {
	return c.drawingMode
}

// SetFreeDrawingBrush installs the brush used in drawing mode.
func (c *Canvas) SetFreeDrawingBrush(b *PencilBrush) {
	c.brush = b
}

// FreeDrawingBrush returns the installed brush, or nil.
func (c *Canvas) FreeDrawingBrush() *PencilBrush {
	return c.brush
}

// DrawStroke turns a finished pointer stroke into a path object and adds
// it to the canvas. It returns nil when the canvas is not in drawing mode,
// has no brush, or the stroke is empty.
func (c *Canvas) DrawStroke(points []Point) *Object {
	if !c.drawingMode || c.brush == nil || len(points) == 0 {
		return nil
	}
	p := NewPath(points, c.brush.Color, c.brush.Width)
	c.Add(p)
	c.RenderAll()
	return p
}
