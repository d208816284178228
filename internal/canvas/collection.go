package canvas

// GroupOptions configures a composite at construction.
type GroupOptions struct {
	// Interactive lets pointer events reach members individually.
	Interactive bool
	// SubTargetCheck enables hit-testing of members inside the group.
	SubTargetCheck bool
}

// NewGroup builds a composite from members. The composite takes the union
// box of its members, and every member is re-based into the composite's
// frame: its Left/Top become offsets from the composite centre. Members
// should be detached from the canvas before they are grouped.
func NewGroup(members []*Object, opts GroupOptions) *Object {
	g := newObject(TypeGroup)
	g.Interactive = opts.Interactive
	g.SubTargetCheck = opts.SubTargetCheck

	box := unionRect(members)
	g.Left, g.Top = box.Left, box.Top
	g.Width, g.Height = box.Width, box.Height
	g.SetCoords()

	center := g.Center()
	g.objects = make([]*Object, 0, len(members))
	for _, m := range members {
		abs := m.AbsolutePosition()
		m.Left = abs.X - center.X
		m.Top = abs.Y - center.Y
		m.frame = g
		m.parent = g
		g.objects = append(g.objects, m)
	}
	return g
}

// NewActiveSelection wraps members in a transient multi-selection. Members
// keep their own coordinates and stay on the canvas.
func NewActiveSelection(members []*Object) *Object {
	s := newObject(TypeActiveSelection)
	s.objects = append([]*Object(nil), members...)
	box := unionRect(members)
	s.Left, s.Top = box.Left, box.Top
	s.Width, s.Height = box.Width, box.Height
	s.SetCoords()
	return s
}

// Objects returns the members of a collection in order.
func (o *Object) Objects() []*Object {
	return append([]*Object(nil), o.objects...)
}

// Size returns the number of members.
func (o *Object) Size() int {
	return len(o.objects)
}

// Contains reports whether m is a direct member.
func (o *Object) Contains(m *Object) bool {
	for _, x := range o.objects {
		if x == m {
			return true
		}
	}
	return false
}

// RemoveAll empties the collection and returns its members in order.
// Members still expressed in the composite's frame are moved back to
// canvas coordinates.
func (o *Object) RemoveAll() []*Object {
	members := o.objects
	o.objects = nil
	for _, m := range members {
		if m.frame == o {
			abs := m.AbsolutePosition()
			m.Left, m.Top = abs.X, abs.Y
		}
		m.parent = nil
		m.SetCoords()
	}
	return members
}
