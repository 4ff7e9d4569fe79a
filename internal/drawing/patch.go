package drawing

import (
	"encoding/json"
	"reflect"

	"github.com/example/planboard/internal/geom"
)

// Patch is a partial update to a draw. Nil fields are left unchanged.
type Patch struct {
	Origin   *geom.Point
	Rotation *float64
	Shape    Shape
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Origin == nil && p.Rotation == nil && p.Shape == nil
}

// Apply returns a copy of d with the patch applied.
func (p Patch) Apply(d Draw) Draw {
	d = d.Clone()
	if p.Origin != nil {
		d.Origin = *p.Origin
	}
	if p.Rotation != nil {
		d.Rotation = *p.Rotation
	}
	if p.Shape != nil && (d.Shape == nil || p.Shape.Kind() == d.Shape.Kind()) {
		d.Shape = p.Shape.clone()
	}
	return d
}

// PatchFrom returns the patch that turns from into to.
func PatchFrom(from, to Draw) Patch {
	var p Patch
	if from.Origin != to.Origin {
		o := to.Origin
		p.Origin = &o
	}
	if from.Rotation != to.Rotation {
		r := to.Rotation
		p.Rotation = &r
	}
	if to.Shape != nil && !reflect.DeepEqual(from.Shape, to.Shape) {
		p.Shape = to.Shape.clone()
	}
	return p
}

// MarshalJSON encodes the patch as the subset of draw fields it changes. The
// shape data is carried as a full draw under "draw" so the kind travels with
// it.
func (p Patch) MarshalJSON() ([]byte, error) {
	var w struct {
		OriginX  *float64 `json:"originX,omitempty"`
		OriginY  *float64 `json:"originY,omitempty"`
		Rotation *float64 `json:"rotation,omitempty"`
		Draw     *Draw    `json:"draw,omitempty"`
	}
	if p.Origin != nil {
		w.OriginX, w.OriginY = &p.Origin.X, &p.Origin.Y
	}
	w.Rotation = p.Rotation
	if p.Shape != nil {
		w.Draw = &Draw{Shape: p.Shape}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a patch written by MarshalJSON.
func (p *Patch) UnmarshalJSON(b []byte) error {
	var w struct {
		OriginX  *float64 `json:"originX"`
		OriginY  *float64 `json:"originY"`
		Rotation *float64 `json:"rotation"`
		Draw     *Draw    `json:"draw"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Patch{Rotation: w.Rotation}
	if w.OriginX != nil && w.OriginY != nil {
		o := geom.Pt(*w.OriginX, *w.OriginY)
		p.Origin = &o
	}
	if w.Draw != nil {
		p.Shape = w.Draw.Shape
	}
	return nil
}
