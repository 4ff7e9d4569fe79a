// Package geom holds the point and rectangle types shared by the board engine
// and the transforms between screen and content space.
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a position in either screen or content space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

func (p Point) orb() orb.Point { return orb.Point{p.X, p.Y} }

// DistToSegment returns the distance from p to the segment a-b. The
// projection is clamped to the segment; a zero length segment degrades to the
// distance to a.
func DistToSegment(p, a, b Point) float64 {
	return planar.DistanceFromSegment(a.orb(), b.orb(), p.orb())
}

// Rotate returns p rotated by rot radians about c.
func Rotate(p, c Point, rot float64) Point {
	if rot == 0 {
		return p
	}
	sin, cos := math.Sincos(rot)
	dx, dy := p.X-c.X, p.Y-c.Y
	return Point{c.X + dx*cos - dy*sin, c.Y + dx*sin + dy*cos}
}

// Rect is an axis aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Normalize flips negative extents so that W and H are non-negative.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

func (r Rect) Min() Point { return Point{r.X, r.Y} }

func (r Rect) Max() Point { return Point{r.X + r.W, r.Y + r.H} }

// Pad grows r by n on every side.
func (r Rect) Pad(n float64) Rect {
	return Rect{r.X - n, r.Y - n, r.W + 2*n, r.H + 2*n}
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return FromBound(r.Bound().Union(o.Bound()))
}

// Bound converts r to an orb bound.
func (r Rect) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{r.X, r.Y}, Max: orb.Point{r.X + r.W, r.Y + r.H}}
}

// FromBound converts an orb bound to a Rect.
func FromBound(b orb.Bound) Rect {
	return Rect{b.Min[0], b.Min[1], b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]}
}

// BoundOf returns the bounding rectangle of pts. It reports false when pts is
// empty.
func BoundOf(pts ...Point) (Rect, bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	ls := make(orb.MultiPoint, len(pts))
	for i, p := range pts {
		ls[i] = p.orb()
	}
	return FromBound(ls.Bound()), true
}

// Transform is the pan/zoom applied to content before it reaches the screen.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// ToContent maps a screen point to content coordinates. origin is the
// position of the drawing surface inside the screen.
func ToContent(screen, origin Point, t Transform) Point {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return Point{
		X: (screen.X - origin.X - t.OffsetX) / s,
		Y: (screen.Y - origin.Y - t.OffsetY) / s,
	}
}

// ToScreen is the inverse of ToContent.
func ToScreen(content, origin Point, t Transform) Point {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return Point{
		X: content.X*s + t.OffsetX + origin.X,
		Y: content.Y*s + t.OffsetY + origin.Y,
	}
}
