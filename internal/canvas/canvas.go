package canvas

// Canvas owns the top-level object set, the active selection and the free
// drawing state. All mutation of the object graph goes through it.
//
// A Canvas is not safe for concurrent use; callers serialise access.
type Canvas struct {
	Width  float64
	Height float64

	objects []*Object
	active  *Object

	drawingMode bool
	brush       *PencilBrush

	renders  int
	onRender func()
}

// New creates an empty canvas.
func New(width, height float64) *Canvas {
	return &Canvas{Width: width, Height: height}
}

// OnRender registers a callback run on every RenderAll.
func (c *Canvas) OnRender(fn func()) {
	c.onRender = fn
}

// Add appends objects to the top-level set. Objects already present are
// ignored.
func (c *Canvas) Add(objs ...*Object) {
	for _, o := range objs {
		if o == nil || c.Contains(o) {
			continue
		}
		c.objects = append(c.objects, o)
	}
}

// Remove detaches objects from the top-level set. Removing the active
// object, or a member of the active selection, clears the selection.
func (c *Canvas) Remove(objs ...*Object) {
	for _, o := range objs {
		idx := c.indexOf(o)
		if idx < 0 {
			continue
		}
		c.objects = append(c.objects[:idx], c.objects[idx+1:]...)
		if c.active == o || (c.active != nil && c.active.Type == TypeActiveSelection && c.active.Contains(o)) {
			c.active = nil
		}
	}
}

// Objects returns the top-level objects in stacking order.
func (c *Canvas) Objects() []*Object {
	return append([]*Object(nil), c.objects...)
}

// Len returns the number of top-level objects.
func (c *Canvas) Len() int {
	return len(c.objects)
}

// Contains reports whether o is a top-level object.
func (c *Canvas) Contains(o *Object) bool {
	return c.indexOf(o) >= 0
}

func (c *Canvas) indexOf(o *Object) int {
	for i, x := range c.objects {
		if x == o {
			return i
		}
	}
	return -1
}

// FindByID looks an object up by handle among top-level objects and the
// members of composites.
func (c *Canvas) FindByID(handle string) *Object {
	return findIn(c.objects, handle)
}

func findIn(objs []*Object, handle string) *Object {
	for _, o := range objs {
		if o.Handle == handle {
			return o
		}
		if o.Type == TypeGroup {
			if m := findIn(o.objects, handle); m != nil {
				return m
			}
		}
	}
	return nil
}

// SetActiveObject makes o the active object.
func (c *Canvas) SetActiveObject(o *Object) {
	c.active = o
}

// ActiveObject returns the active object, which may be an active
// selection, or nil.
func (c *Canvas) ActiveObject() *Object {
	return c.active
}

// ActiveObjects returns the selected objects: the members of an active
// selection, or the single active object.
func (c *Canvas) ActiveObjects() []*Object {
	switch {
	case c.active == nil:
		return nil
	case c.active.Type == TypeActiveSelection:
		return c.active.Objects()
	default:
		return []*Object{c.active}
	}
}

// DiscardActiveObject clears the selection.
func (c *Canvas) DiscardActiveObject() {
	c.active = nil
}

// Select replaces the selection with objs. Objects that are not on the
// canvas are skipped. One object becomes the active object; several are
// wrapped in an active selection.
func (c *Canvas) Select(objs ...*Object) {
	var picked []*Object
	for _, o := range objs {
		if c.Contains(o) {
			picked = append(picked, o)
		}
	}
	switch len(picked) {
	case 0:
		c.active = nil
	case 1:
		c.active = picked[0]
	default:
		c.active = NewActiveSelection(picked)
	}
}

// RenderAll requests a repaint.
func (c *Canvas) RenderAll() {
	c.renders++
	if c.onRender != nil {
		c.onRender()
	}
}

// RenderCount returns how many repaints were requested.
func (c *Canvas) RenderCount() int {
	return c.renders
}
