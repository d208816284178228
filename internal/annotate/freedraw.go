package annotate

import "diagnote/internal/canvas"

// DrawOptions configures the free-draw brush. Zero values fall back to the
// defaults.
type DrawOptions struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

const (
	defaultBrushWidth = 5
	defaultBrushColor = "black"
)

// FreeDrawPlugin toggles free-hand drawing on a canvas.
type FreeDrawPlugin struct {
	canvas *canvas.Canvas
}

func NewFreeDrawPlugin(c *canvas.Canvas) *FreeDrawPlugin {
	return &FreeDrawPlugin{canvas: c}
}

// StartDraw enters drawing mode with a fresh pencil brush.
func (p *FreeDrawPlugin) StartDraw(opts DrawOptions) {
	if p.canvas == nil {
		return
	}
	p.canvas.SetDrawingMode(true)
	brush := canvas.NewPencilBrush()
	brush.Width = opts.Width
	if brush.Width <= 0 {
		brush.Width = defaultBrushWidth
	}
	brush.Color = opts.Color
	if brush.Color == "" {
		brush.Color = defaultBrushColor
	}
	p.canvas.SetFreeDrawingBrush(brush)
}

// EndDraw leaves drawing mode. The brush is kept.
func (p *FreeDrawPlugin) EndDraw() {
	if p.canvas == nil {
		return
	}
	p.canvas.SetDrawingMode(false)
}
