package canvas

import (
	"encoding/json"
	"fmt"
)

// Scene is the serialized form of a canvas: dimensions plus the top-level
// objects with their members. The active selection is transient and is
// not part of a scene.
type Scene struct {
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Objects []ObjectJSON `json:"objects"`
}

// ObjectJSON is the wire form of an Object.
type ObjectJSON struct {
	Handle         string       `json:"handle"`
	Type           string       `json:"type"`
	Left           float64      `json:"left"`
	Top            float64      `json:"top"`
	Width          float64      `json:"width"`
	Height         float64      `json:"height"`
	ScaleX         float64      `json:"scaleX"`
	ScaleY         float64      `json:"scaleY"`
	Angle          float64      `json:"angle"`
	Visible        bool         `json:"visible"`
	ID             string       `json:"id,omitempty"`
	Points         []Point      `json:"points,omitempty"`
	Stroke         string       `json:"stroke,omitempty"`
	StrokeWidth    float64      `json:"strokeWidth,omitempty"`
	Src            string       `json:"src,omitempty"`
	ClipPath       *ObjectJSON  `json:"clipPath,omitempty"`
	ObjectCaching  bool         `json:"objectCaching"`
	Radius         float64      `json:"radius,omitempty"`
	OriginCenter   bool         `json:"originCenter,omitempty"`
	Interactive    bool         `json:"interactive,omitempty"`
	SubTargetCheck bool         `json:"subTargetCheck,omitempty"`
	Framed         bool         `json:"framed,omitempty"` // Left/Top relative to the owning group's centre
	Objects        []ObjectJSON `json:"objects,omitempty"`
}

// ToJSON converts o and its members to their wire form.
func (o *Object) ToJSON() ObjectJSON {
	j := ObjectJSON{
		Handle:         o.Handle,
		Type:           o.Type,
		Left:           o.Left,
		Top:            o.Top,
		Width:          o.Width,
		Height:         o.Height,
		ScaleX:         o.ScaleX,
		ScaleY:         o.ScaleY,
		Angle:          o.Angle,
		Visible:        o.Visible,
		ID:             o.ID,
		Points:         o.Points,
		Stroke:         o.Stroke,
		StrokeWidth:    o.StrokeWidth,
		Src:            o.Src,
		ObjectCaching:  o.ObjectCaching,
		Radius:         o.Radius,
		OriginCenter:   o.OriginCenter,
		Interactive:    o.Interactive,
		SubTargetCheck: o.SubTargetCheck,
		Framed:         o.frame != nil,
	}
	if o.ClipPath != nil {
		clip := o.ClipPath.ToJSON()
		j.ClipPath = &clip
	}
	for _, m := range o.objects {
		j.Objects = append(j.Objects, m.ToJSON())
	}
	return j
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ToJSON())
}

func fromJSON(j ObjectJSON) *Object {
	o := &Object{
		Handle:         j.Handle,
		Type:           j.Type,
		Left:           j.Left,
		Top:            j.Top,
		Width:          j.Width,
		Height:         j.Height,
		ScaleX:         j.ScaleX,
		ScaleY:         j.ScaleY,
		Angle:          j.Angle,
		Visible:        j.Visible,
		ID:             j.ID,
		Points:         j.Points,
		Stroke:         j.Stroke,
		StrokeWidth:    j.StrokeWidth,
		Src:            j.Src,
		ObjectCaching:  j.ObjectCaching,
		Radius:         j.Radius,
		OriginCenter:   j.OriginCenter,
		Interactive:    j.Interactive,
		SubTargetCheck: j.SubTargetCheck,
	}
	if j.ClipPath != nil {
		o.ClipPath = fromJSON(*j.ClipPath)
	}
	o.SetCoords()
	for _, mj := range j.Objects {
		m := fromJSON(mj)
		m.parent = o
		if mj.Framed {
			m.frame = o
		}
		o.objects = append(o.objects, m)
	}
	return o
}

// Snapshot returns the scene of c.
func (c *Canvas) Snapshot() Scene {
	s := Scene{Width: c.Width, Height: c.Height, Objects: make([]ObjectJSON, 0, len(c.objects))}
	for _, o := range c.objects {
		s.Objects = append(s.Objects, o.ToJSON())
	}
	return s
}

// MarshalScene serializes c.
func MarshalScene(c *Canvas) ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// UnmarshalScene rebuilds a canvas from a serialized scene. Composites are
// restored with their members as saved; nothing is re-based.
func UnmarshalScene(data []byte) (*Canvas, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	c := New(s.Width, s.Height)
	for _, j := range s.Objects {
		if j.Type == TypeActiveSelection {
			continue
		}
		c.Add(fromJSON(j))
	}
	return c, nil
}
