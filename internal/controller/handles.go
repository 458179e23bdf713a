package controller

import (
	"math"

	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

// HandlePositions returns the draggable vertex handles of a shape in image
// coordinates: the four corners for boxes, every vertex for polygons.
func HandlePositions(s *shape.Shape) []geometry.Point2D {
	out := make([]geometry.Point2D, len(s.Points))
	copy(out, s.Points)
	return out
}

// RotationHandle returns the rotation grip for an oriented box: the
// midpoint of the first edge pushed outward by a fixed screen distance
// along the edge normal pointing away from the centroid. ok is false for
// other kinds and for a degenerate first edge.
func (c *Controller) RotationHandle(s *shape.Shape) (geometry.Point2D, bool) {
	if s.Kind != shape.OrientedBox || len(s.Points) < 2 {
		return geometry.Point2D{}, false
	}
	p0, p1 := s.Points[0], s.Points[1]
	edge := p1.Sub(p0)
	length := math.Sqrt(edge.LengthSq())
	if length < degenerateEdge {
		return geometry.Point2D{}, false
	}
	mid := geometry.Point2D{X: (p0.X + p1.X) / 2, Y: (p0.Y + p1.Y) / 2}
	normal := geometry.Point2D{X: edge.Y / length, Y: -edge.X / length}
	if normal.Dot(s.Centroid().Sub(mid)) > 0 {
		normal = normal.Scale(-1)
	}
	return mid.Add(normal.Scale(c.view.ImageTolerance(rotHandleDist))), true
}

// hitHandle tests an image point against the handles of s. It returns the
// vertex index with CursorResize, -1 with CursorRotate for the rotation
// grip, or CursorDefault when nothing is hit. Vertex handles win over the
// rotation grip.
func (c *Controller) hitHandle(s *shape.Shape, p geometry.Point2D) (int, CursorHint) {
	tol := c.handleTol()
	if i := geometry.NearVertex(p, s.Points, tol); i >= 0 {
		return i, CursorResize
	}
	if grip, ok := c.RotationHandle(s); ok && p.Distance(grip) <= tol {
		return -1, CursorRotate
	}
	return 0, CursorDefault
}
