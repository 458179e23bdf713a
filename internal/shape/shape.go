// Package shape provides the annotated-region model: axis-aligned boxes,
// oriented boxes, and free-form polygons with their derived metrics.
package shape

import (
	"time"

	"github.com/google/uuid"

	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

// Kind identifies the geometry variant of a shape.
type Kind int

const (
	AxisBox Kind = iota
	OrientedBox
	Polygon
)

func (k Kind) String() string {
	switch k {
	case AxisBox:
		return "axis_box"
	case OrientedBox:
		return "oriented_box"
	case Polygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// ParseKind parses the string form produced by Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "axis_box":
		return AxisBox, true
	case "oriented_box":
		return OrientedBox, true
	case "polygon":
		return Polygon, true
	default:
		return AxisBox, false
	}
}

// ClassUnset is the class id assigned to a freshly drawn shape before the
// user picks a class. A shape with this id is pending label resolution.
const ClassUnset = -1

// Shape is one annotated region on an image.
//
// Boxes always hold exactly 4 points in fixed cyclic order P0..P3 with
// P0->P1 and P1->P2 adjacent edges; the order is preserved across every
// edit so handle index i always addresses the same logical corner.
// Polygons hold 3 or more points in any order. Rotation is derived from
// the points and accumulates the degrees applied since creation; it is
// never authoritative.
type Shape struct {
	ID         string             `json:"id"`
	Kind       Kind               `json:"kind"`
	Points     []geometry.Point2D `json:"points"`
	Rotation   float64            `json:"rotation"`
	ClassID    int                `json:"class_id"`
	ClassName  string             `json:"class_name"`
	Confidence float64            `json:"confidence"`
	Visible    bool               `json:"visible"`
	Locked     bool               `json:"locked"`
	Selected   bool               `json:"selected"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// New creates a shape with a fresh id and timestamps.
func New(kind Kind, points []geometry.Point2D) *Shape {
	now := time.Now()
	s := &Shape{
		ID:         uuid.NewString(),
		Kind:       kind,
		Points:     make([]geometry.Point2D, len(points)),
		ClassID:    ClassUnset,
		Confidence: 1.0,
		Visible:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	copy(s.Points, points)
	return s
}

// NewAxisBox creates an axis-aligned box from two opposite corners.
func NewAxisBox(a, b geometry.Point2D) *Shape {
	r := geometry.NewRect(a.X, a.Y, b.X-a.X, b.Y-a.Y).Normalized()
	return New(AxisBox, []geometry.Point2D{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	})
}

// NewOrientedBox builds a rotated rectangle from the bounding box of the
// drag span a->b rotated by the given angle in degrees about its center.
func NewOrientedBox(a, b geometry.Point2D, degrees float64) *Shape {
	center := geometry.Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	hw := (b.X - a.X) / 2
	if hw < 0 {
		hw = -hw
	}
	hh := (b.Y - a.Y) / 2
	if hh < 0 {
		hh = -hh
	}
	corners := []geometry.Point2D{
		{X: center.X - hw, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y + hh},
		{X: center.X - hw, Y: center.Y + hh},
	}
	for i, c := range corners {
		corners[i] = c.RotateAround(center, degrees)
	}
	s := New(OrientedBox, corners)
	s.Rotation = degrees
	return s
}

// Clone returns a deep copy of the shape, keeping the same id.
func (s *Shape) Clone() *Shape {
	dup := *s
	dup.Points = make([]geometry.Point2D, len(s.Points))
	copy(dup.Points, s.Points)
	return &dup
}

// Touch refreshes the modification timestamp.
func (s *Shape) Touch() {
	s.UpdatedAt = time.Now()
}

// BoundingBox returns the axis-aligned bounds of the shape's points.
func (s *Shape) BoundingBox() geometry.Rect {
	return geometry.BoundingBox(s.Points)
}

// Centroid returns the arithmetic mean of the points. It is the pivot for
// rotation and the fallback label anchor.
func (s *Shape) Centroid() geometry.Point2D {
	return geometry.Centroid(s.Points)
}

// Area returns the shoelace area; fewer than 3 points yield zero.
func (s *Shape) Area() float64 {
	return geometry.PolygonArea(s.Points)
}

// Perimeter returns the closed-outline perimeter.
func (s *Shape) Perimeter() float64 {
	return geometry.PolygonPerimeter(s.Points)
}

// ContainsPoint reports whether p is within tol of any vertex or inside
// the shape's outline. Tolerance is expressed in image-space units.
func (s *Shape) ContainsPoint(p geometry.Point2D, tol float64) bool {
	if geometry.NearVertex(p, s.Points, tol) >= 0 {
		return true
	}
	return geometry.PointInPolygon(p, s.Points)
}

// Translate moves every point by (dx, dy).
func (s *Shape) Translate(dx, dy float64) {
	for i := range s.Points {
		s.Points[i].X += dx
		s.Points[i].Y += dy
	}
	s.Touch()
}

// RotateAround rotates every point about center by the given angle in
// degrees and accumulates the angle into Rotation.
func (s *Shape) RotateAround(center geometry.Point2D, degrees float64) {
	for i := range s.Points {
		s.Points[i] = s.Points[i].RotateAround(center, degrees)
	}
	s.Rotation += degrees
	s.Touch()
}

// ScaleAround scales every point about center by independent x/y factors.
func (s *Shape) ScaleAround(center geometry.Point2D, sx, sy float64) {
	for i := range s.Points {
		s.Points[i] = s.Points[i].ScaleAround(center, sx, sy)
	}
	s.Touch()
}

// SetGeometry replaces the points (and rotation) of the shape in place.
func (s *Shape) SetGeometry(points []geometry.Point2D, rotation float64) {
	s.Points = make([]geometry.Point2D, len(points))
	copy(s.Points, points)
	s.Rotation = rotation
	s.Touch()
}

// Clones deep-copies a slice of shapes.
func Clones(shapes []*Shape) []*Shape {
	out := make([]*Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}
