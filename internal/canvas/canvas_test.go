package canvas

import (
	"encoding/json"
	"testing"
)

func TestNewGroup_RebasesMembersIntoGroupFrame(t *testing.T) {
	a := NewRect(10, 20, 10, 10)
	b := NewRect(30, 40, 10, 10)
	b.ScaleX, b.ScaleY = 2, 2
	b.SetCoords()

	g := NewGroup([]*Object{a, b}, GroupOptions{})

	// union box: x 10..50, y 20..60 → centre (30, 40)
	if g.Left != 10 || g.Top != 20 || g.Width != 40 || g.Height != 40 {
		t.Fatalf("group box = (%v,%v,%v,%v), want (10,20,40,40)", g.Left, g.Top, g.Width, g.Height)
	}
	if a.Left != -20 || a.Top != -20 {
		t.Errorf("member a = (%v,%v), want (-20,-20)", a.Left, a.Top)
	}
	if b.Left != 0 || b.Top != 0 {
		t.Errorf("member b = (%v,%v), want (0,0)", b.Left, b.Top)
	}
	if p := a.AbsolutePosition(); p.X != 10 || p.Y != 20 {
		t.Errorf("absolute a = %+v, want (10,20)", p)
	}
	if a.Group() != g {
		t.Error("member should report its group")
	}
}

func TestRemoveAll_RestoresFramedMembers(t *testing.T) {
	a := NewRect(10, 20, 10, 10)
	b := NewRect(30, 40, 10, 10)
	g := NewGroup([]*Object{a, b}, GroupOptions{})

	members := g.RemoveAll()
	if len(members) != 2 || g.Size() != 0 {
		t.Fatalf("RemoveAll returned %d members, group keeps %d", len(members), g.Size())
	}
	if a.Left != 10 || a.Top != 20 || b.Left != 30 || b.Top != 40 {
		t.Errorf("members not restored: a=(%v,%v) b=(%v,%v)", a.Left, a.Top, b.Left, b.Top)
	}
	if a.Group() != nil {
		t.Error("member should be detached")
	}
}

func TestRemoveAll_LeavesCommittedMembersAlone(t *testing.T) {
	a := NewRect(10, 20, 10, 10)
	b := NewRect(30, 40, 10, 10)
	g := NewGroup([]*Object{a, b}, GroupOptions{})

	a.Left, a.Top = 10, 20
	a.SetCoords()

	g.RemoveAll()
	if a.Left != 10 || a.Top != 20 {
		t.Errorf("committed member moved to (%v,%v)", a.Left, a.Top)
	}
}

func TestCanvas_AddIgnoresDuplicates(t *testing.T) {
	c := New(800, 600)
	r := NewRect(0, 0, 5, 5)
	c.Add(r, r, nil)
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestCanvas_RemoveClearsSelection(t *testing.T) {
	c := New(800, 600)
	a, b := NewRect(0, 0, 5, 5), NewRect(10, 10, 5, 5)
	c.Add(a, b)

	c.Select(a, b)
	if got := c.ActiveObject(); got == nil || got.Type != TypeActiveSelection {
		t.Fatalf("expected active selection, got %v", got)
	}
	c.Remove(a)
	if c.ActiveObject() != nil {
		t.Error("removing a selected member should clear the selection")
	}

	c.SetActiveObject(b)
	c.Remove(b)
	if c.ActiveObject() != nil {
		t.Error("removing the active object should clear it")
	}
}

func TestCanvas_SelectSkipsForeignObjects(t *testing.T) {
	c := New(800, 600)
	a := NewRect(0, 0, 5, 5)
	c.Add(a)

	c.Select(a, NewRect(1, 1, 1, 1))
	if c.ActiveObject() != a {
		t.Fatalf("expected the single on-canvas object to become active")
	}
	if got := c.ActiveObjects(); len(got) != 1 || got[0] != a {
		t.Errorf("ActiveObjects = %v", got)
	}

	c.Select()
	if c.ActiveObject() != nil || c.ActiveObjects() != nil {
		t.Error("empty Select should clear the selection")
	}
}

func TestCanvas_FindSearchesGroups(t *testing.T) {
	c := New(800, 600)
	a, b := NewRect(0, 0, 5, 5), NewRect(10, 10, 5, 5)
	g := NewGroup([]*Object{a, b}, GroupOptions{})
	c.Add(g)

	if c.FindByID(b.Handle) != b {
		t.Error("FindByID should reach group members")
	}
	if c.FindByID("missing") != nil {
		t.Error("FindByID of unknown handle should be nil")
	}
}

func TestCanvas_RenderAllRunsHook(t *testing.T) {
	c := New(800, 600)
	calls := 0
	c.OnRender(func() { calls++ })
	c.RenderAll()
	c.RenderAll()
	if calls != 2 || c.RenderCount() != 2 {
		t.Errorf("calls=%d count=%d, want 2", calls, c.RenderCount())
	}
}

func TestDrawStroke(t *testing.T) {
	c := New(800, 600)
	pts := []Point{{X: 10, Y: 10}, {X: 20, Y: 30}}

	if c.DrawStroke(pts) != nil {
		t.Fatal("stroke outside drawing mode must not create a path")
	}

	c.SetDrawingMode(true)
	c.SetFreeDrawingBrush(&PencilBrush{Width: 4, Color: "red"})
	p := c.DrawStroke(pts)
	if p == nil {
		t.Fatal("expected a path")
	}
	if p.Left != 8 || p.Top != 8 || p.Width != 14 || p.Height != 24 {
		t.Errorf("path box = (%v,%v,%v,%v), want (8,8,14,24)", p.Left, p.Top, p.Width, p.Height)
	}
	if p.Points[0] != (Point{X: 2, Y: 2}) {
		t.Errorf("first point = %+v, want relative (2,2)", p.Points[0])
	}
	if p.Stroke != "red" || p.StrokeWidth != 4 {
		t.Errorf("brush not applied: %q %v", p.Stroke, p.StrokeWidth)
	}
	if !c.Contains(p) || c.RenderCount() != 1 {
		t.Error("path should be added and rendered")
	}
}

func TestScene_RoundTripKeepsGroups(t *testing.T) {
	c := New(1024, 768)
	a, b := NewRect(10, 20, 10, 10), NewRect(30, 40, 10, 10)
	a.ID, b.ID = "grp", "grp"
	g := NewGroup([]*Object{a, b}, GroupOptions{})
	img := NewImage("x.png", 100, 50)
	img.ClipPath = NewCircle(0, 0, 300)
	c.Add(g, img)

	data, err := MarshalScene(c)
	if err != nil {
		t.Fatalf("MarshalScene: %v", err)
	}
	restored, err := UnmarshalScene(data)
	if err != nil {
		t.Fatalf("UnmarshalScene: %v", err)
	}

	if restored.Len() != 2 || restored.Width != 1024 {
		t.Fatalf("restored canvas: len=%d width=%v", restored.Len(), restored.Width)
	}
	rg := restored.FindByID(g.Handle)
	if rg == nil || rg.Size() != 2 {
		t.Fatalf("group not restored: %v", rg)
	}
	ra := restored.FindByID(a.Handle)
	if p := ra.AbsolutePosition(); p.X != 10 || p.Y != 20 {
		t.Errorf("framed member absolute position = %+v, want (10,20)", p)
	}
	if ra.ID != "grp" {
		t.Errorf("group tag lost: %q", ra.ID)
	}
	if ri := restored.FindByID(img.Handle); ri.ClipPath == nil || ri.ClipPath.Radius != 300 {
		t.Error("clip path not restored")
	}
}

func TestObject_MarshalJSONIncludesMembers(t *testing.T) {
	g := NewGroup([]*Object{NewRect(0, 0, 1, 1)}, GroupOptions{})
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	var j ObjectJSON
	if err := json.Unmarshal(data, &j); err != nil {
		t.Fatal(err)
	}
	if j.Type != TypeGroup || len(j.Objects) != 1 || !j.Objects[0].Framed {
		t.Errorf("unexpected wire form: %+v", j)
	}
}

func TestObject_SetPartial(t *testing.T) {
	r := NewRect(1, 2, 10, 10)
	left, scale := 40.0, 2.0
	r.Set(Props{Left: &left, ScaleX: &scale})

	if r.Left != 40 || r.Top != 2 || r.ScaleX != 2 || r.ScaleY != 1 {
		t.Errorf("after Set: left %v top %v scale %v/%v", r.Left, r.Top, r.ScaleX, r.ScaleY)
	}
	if !r.Dirty {
		t.Error("Set should mark the object dirty")
	}
	if r.Coords().TL.X != 1 {
		t.Error("Set must not refresh coords on its own")
	}
	r.SetCoords()
	if r.Coords().BR != (Point{X: 60, Y: 12}) {
		t.Errorf("coords after SetCoords = %+v", r.Coords())
	}
}
