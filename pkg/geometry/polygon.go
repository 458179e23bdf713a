package geometry

import "math"

// Centroid computes the centroid (average position) of a set of points.
func Centroid(points []Point2D) Point2D {
	if len(points) == 0 {
		return Point2D{}
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return Point2D{X: sumX / n, Y: sumY / n}
}

// BoundingBox computes the axis-aligned bounding box of a set of points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// PolygonArea computes the area of a polygon using the shoelace formula.
// Fewer than 3 points yield zero.
func PolygonArea(points []Point2D) float64 {
	if len(points) < 3 {
		return 0
	}
	area := 0.0
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(area) / 2.0
}

// PolygonPerimeter computes the perimeter of a closed polygon, wrapping
// from the last point back to the first. Fewer than 2 points yield zero.
func PolygonPerimeter(points []Point2D) float64 {
	if len(points) < 2 {
		return 0
	}
	perimeter := 0.0
	n := len(points)
	for i := 0; i < n; i++ {
		perimeter += points[i].Distance(points[(i+1)%n])
	}
	return perimeter
}

// PointInPolygon tests if a point is inside a polygon using even-odd ray
// casting. Horizontal edges are skipped per the classic algorithm. Fewer
// than 3 points always yield false.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)
	p1 := polygon[0]
	for i := 1; i <= n; i++ {
		p2 := polygon[i%n]

		if p.Y > math.Min(p1.Y, p2.Y) && p.Y <= math.Max(p1.Y, p2.Y) && p.X <= math.Max(p1.X, p2.X) {
			if p1.Y != p2.Y {
				xIntersect := (p.Y-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y) + p1.X
				if p1.X == p2.X || p.X <= xIntersect {
					inside = !inside
				}
			}
		}
		p1 = p2
	}

	return inside
}

// NearVertex returns the index of the first polygon vertex within tol of p,
// or -1 if none is.
func NearVertex(p Point2D, polygon []Point2D, tol float64) int {
	for i, v := range polygon {
		if v.Distance(p) <= tol {
			return i
		}
	}
	return -1
}
