package annotate

import (
	"github.com/google/uuid"

	"diagnote/internal/canvas"
)

// Variant is what a canvas object represents for grouping purposes.
type Variant int

const (
	None Variant = iota
	Single
	MultiSelection
	Composite
)

func (v Variant) String() string {
	switch v {
	case Single:
		return "single"
	case MultiSelection:
		return "multi-selection"
	case Composite:
		return "composite"
	default:
		return "none"
	}
}

// Classify narrows obj by its type discriminant.
func Classify(obj *canvas.Object) Variant {
	switch {
	case obj == nil:
		return None
	case obj.Type == canvas.TypeActiveSelection:
		return MultiSelection
	case obj.Type == canvas.TypeGroup:
		return Composite
	default:
		return Single
	}
}

// GroupPlugin turns the active selection into a composite and back while
// keeping every member exactly where it was.
type GroupPlugin struct {
	canvas *canvas.Canvas
	newID  func() string
}

// NewGroupPlugin creates a GroupPlugin bound to c. c may be nil, in which
// case every operation is a no-op.
func NewGroupPlugin(c *canvas.Canvas) *GroupPlugin {
	return &GroupPlugin{canvas: c, newID: uuid.NewString}
}

type placement struct {
	obj                        *canvas.Object
	left, top, scaleX, scaleY float64
}

// GroupSelected groups the members of the active multi-selection. It
// returns the new composite, or nil when the active object is not a
// multi-selection.
func (p *GroupPlugin) GroupSelected() *canvas.Object {
	if p.canvas == nil {
		return nil
	}
	if Classify(p.canvas.ActiveObject()) != MultiSelection {
		return nil
	}

	members := p.canvas.ActiveObjects()
	saved := make([]placement, 0, len(members))
	for _, obj := range members {
		saved = append(saved, placement{
			obj:    obj,
			left:   obj.Left,
			top:    obj.Top,
			scaleX: obj.ScaleX,
			scaleY: obj.ScaleY,
		})
	}
	// Members must leave the canvas first; building the composite from
	// objects still on the canvas mixes coordinate frames.
	p.canvas.Remove(members...)

	group := canvas.NewGroup(members, canvas.GroupOptions{
		Interactive:    false,
		SubTargetCheck: false,
	})

	// NewGroup re-bases members into the group frame; put them back.
	groupID := p.newID()
	for _, s := range saved {
		s.obj.Left = s.left
		s.obj.Top = s.top
		s.obj.ScaleX = s.scaleX
		s.obj.ScaleY = s.scaleY
		s.obj.SetCoords()
		s.obj.ID = groupID
	}

	p.canvas.Add(group)
	p.canvas.RenderAll()
	return group
}

// UngroupSelected dissolves the active composite, returning its members to
// the canvas. It reports false when the active object is not a composite.
func (p *GroupPlugin) UngroupSelected() bool {
	if p.canvas == nil {
		return false
	}
	group := p.canvas.ActiveObject()
	if Classify(group) != Composite {
		return false
	}

	for _, obj := range group.Objects() {
		obj.ID = ""
	}

	p.canvas.Add(group.RemoveAll()...)
	p.canvas.Remove(group)

	p.canvas.RenderAll()
	return true
}
