package canvas

import (
	"math"

	"github.com/google/uuid"
)

// Object types. Type is the discriminant callers use to tell plain objects
// from collections.
const (
	TypePath            = "path"
	TypeImage           = "image"
	TypeCircle          = "circle"
	TypeRect            = "rect"
	TypeGroup           = "group"
	TypeActiveSelection = "activeselection"
)

// Point is a 2D coordinate in canvas units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Corners is the cached top-left / bottom-right pair of an object in canvas
// coordinates. It is refreshed by SetCoords.
type Corners struct {
	TL Point `json:"tl"`
	BR Point `json:"br"`
}

// Object is a single drawable on the canvas. Left and Top address the
// object's top-left corner; the displayed size is Width*ScaleX by
// Height*ScaleY. Rotation is carried for rendering only and does not
// participate in bounding boxes.
type Object struct {
	Handle  string
	Type    string
	Left    float64
	Top     float64
	Width   float64
	Height  float64
	ScaleX  float64
	ScaleY  float64
	Angle   float64
	Visible bool

	// ID is the group-membership tag; empty when the object is not part of
	// a group created by the group coordinator.
	ID string

	// path
	Points      []Point // relative to Left/Top, unscaled
	Stroke      string
	StrokeWidth float64

	// image
	Src           string
	ClipPath      *Object
	ObjectCaching bool
	Dirty         bool

	// circle
	Radius float64
	// OriginCenter places Left/Top at the centre; only honoured for clip
	// paths, which are positioned relative to the centre of their owner.
	OriginCenter bool

	// group
	Interactive    bool
	SubTargetCheck bool

	objects []*Object
	parent  *Object
	frame   *Object // composite whose centre Left/Top are relative to
	coords  Corners
}

func newObject(typ string) *Object {
	return &Object{
		Handle:        uuid.NewString(),
		Type:          typ,
		ScaleX:        1,
		ScaleY:        1,
		Visible:       true,
		ObjectCaching: true,
	}
}

// NewRect creates a rectangle.
func NewRect(left, top, width, height float64) *Object {
	o := newObject(TypeRect)
	o.Left, o.Top, o.Width, o.Height = left, top, width, height
	o.SetCoords()
	return o
}

// NewCircle creates a circle whose top-left corner is at left/top.
func NewCircle(left, top, radius float64) *Object {
	o := newObject(TypeCircle)
	o.Left, o.Top = left, top
	o.Radius = radius
	o.Width, o.Height = radius*2, radius*2
	o.SetCoords()
	return o
}

// NewImage creates an image object of the given natural size.
func NewImage(src string, width, height float64) *Object {
	o := newObject(TypeImage)
	o.Src = src
	o.Width, o.Height = width, height
	o.SetCoords()
	return o
}

// NewPath creates a free-hand path from absolute points. The object's box
// is the points' extent grown by half the stroke width on every side.
func NewPath(points []Point, stroke string, strokeWidth float64) *Object {
	o := newObject(TypePath)
	o.Stroke = stroke
	o.StrokeWidth = strokeWidth
	if len(points) == 0 {
		o.SetCoords()
		return o
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	pad := strokeWidth / 2
	o.Left, o.Top = minX-pad, minY-pad
	o.Width, o.Height = maxX-minX+strokeWidth, maxY-minY+strokeWidth

	o.Points = make([]Point, len(points))
	for i, p := range points {
		o.Points[i] = Point{X: p.X - o.Left, Y: p.Y - o.Top}
	}
	o.SetCoords()
	return o
}

// IsCollection reports whether the object owns members.
func (o *Object) IsCollection() bool {
	return o.Type == TypeGroup || o.Type == TypeActiveSelection
}

// Group returns the composite that owns the object, or nil.
func (o *Object) Group() *Object {
	return o.parent
}

// SetCoords takes the current Left, Top, Width, Height and scale as
// canvas coordinates and refreshes the cached corners. Any pending
// composite frame on the object is dropped: after SetCoords the fields
// mean exactly what they say.
func (o *Object) SetCoords() {
	o.frame = nil
	o.coords = Corners{
		TL: Point{X: o.Left, Y: o.Top},
		BR: Point{X: o.Left + o.Width*o.ScaleX, Y: o.Top + o.Height*o.ScaleY},
	}
}

// Coords returns the cached corners.
func (o *Object) Coords() Corners {
	return o.coords
}

// AbsolutePosition returns Left/Top in canvas coordinates, resolving a
// pending composite frame.
func (o *Object) AbsolutePosition() Point {
	if o.frame != nil {
		c := o.frame.Center()
		return Point{X: o.Left + c.X, Y: o.Top + c.Y}
	}
	return Point{X: o.Left, Y: o.Top}
}

// Center returns the centre of the object's box in canvas coordinates.
func (o *Object) Center() Point {
	r := o.BoundingRect()
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// BoundingRect returns the object's box in canvas coordinates.
func (o *Object) BoundingRect() Rect {
	if o.Type == TypeActiveSelection {
		return unionRect(o.objects)
	}
	p := o.AbsolutePosition()
	return Rect{
		Left:   p.X,
		Top:    p.Y,
		Width:  o.Width * o.ScaleX,
		Height: o.Height * o.ScaleY,
	}
}

func unionRect(objs []*Object) Rect {
	if len(objs) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, m := range objs {
		r := m.BoundingRect()
		minX, minY = math.Min(minX, r.Left), math.Min(minY, r.Top)
		maxX, maxY = math.Max(maxX, r.Left+r.Width), math.Max(maxY, r.Top+r.Height)
	}
	return Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// Props is a partial property update. Nil fields are left unchanged.
type Props struct {
	Left    *float64 `json:"left,omitempty"`
	Top     *float64 `json:"top,omitempty"`
	ScaleX  *float64 `json:"scaleX,omitempty"`
	ScaleY  *float64 `json:"scaleY,omitempty"`
	Angle   *float64 `json:"angle,omitempty"`
	Visible *bool    `json:"visible,omitempty"`
	Stroke  *string  `json:"stroke,omitempty"`
}

// Set applies p and marks the object dirty. The cached corners are not
// refreshed; call SetCoords once all changes are made.
func (o *Object) Set(p Props) {
	if p.Left != nil {
		o.Left = *p.Left
	}
	if p.Top != nil {
		o.Top = *p.Top
	}
	if p.ScaleX != nil {
		o.ScaleX = *p.ScaleX
	}
	if p.ScaleY != nil {
		o.ScaleY = *p.ScaleY
	}
	if p.Angle != nil {
		o.Angle = *p.Angle
	}
	if p.Visible != nil {
		o.Visible = *p.Visible
	}
	if p.Stroke != nil {
		o.Stroke = *p.Stroke
	}
	o.Dirty = true
}
