package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestPolygonArea(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := PolygonArea(square); math.Abs(got-100) > eps {
		t.Errorf("square area = %v, want 100", got)
	}

	triangle := []Point2D{{0, 0}, {4, 0}, {0, 3}}
	if got := PolygonArea(triangle); math.Abs(got-6) > eps {
		t.Errorf("triangle area = %v, want 6", got)
	}

	if got := PolygonArea([]Point2D{{0, 0}, {1, 1}}); got != 0 {
		t.Errorf("degenerate area = %v, want 0", got)
	}
}

func TestPolygonPerimeter(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := PolygonPerimeter(square); math.Abs(got-40) > eps {
		t.Errorf("square perimeter = %v, want 40", got)
	}
	if got := PolygonPerimeter([]Point2D{{5, 5}}); got != 0 {
		t.Errorf("single-point perimeter = %v, want 0", got)
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	cases := []struct {
		name string
		p    Point2D
		want bool
	}{
		{"center", Point2D{5, 5}, true},
		{"outside right", Point2D{15, 5}, false},
		{"outside above", Point2D{5, -3}, false},
		{"near corner inside", Point2D{1, 1}, true},
	}
	for _, tc := range cases {
		if got := PointInPolygon(tc.p, square); got != tc.want {
			t.Errorf("%s: PointInPolygon(%v) = %v, want %v", tc.name, tc.p, got, tc.want)
		}
	}

	if PointInPolygon(Point2D{0, 0}, []Point2D{{0, 0}, {1, 1}}) {
		t.Error("two-point polygon should contain nothing")
	}
}

func TestRotateAroundInverse(t *testing.T) {
	p := Point2D{7, 3}
	center := Point2D{2, 2}
	for _, angle := range []float64{13, 45, 90, 137.5, 301} {
		back := p.RotateAround(center, angle).RotateAround(center, -angle)
		if p.Distance(back) > 1e-9 {
			t.Errorf("rotate %v then back moved point by %v", angle, p.Distance(back))
		}
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{3, 4}, {-1, 8}, {5, -2}}
	box := BoundingBox(pts)
	want := Rect{X: -1, Y: -2, Width: 6, Height: 10}
	if box != want {
		t.Errorf("BoundingBox = %+v, want %+v", box, want)
	}

	if BoundingBox(nil) != (Rect{}) {
		t.Error("empty BoundingBox should be the zero rect")
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	tf := Translation(4, -2).Compose(Rotation(math.Pi / 5))
	inv, ok := tf.Inverse()
	if !ok {
		t.Fatal("transform should be invertible")
	}
	p := Point2D{3, 9}
	back := inv.Apply(tf.Apply(p))
	if p.Distance(back) > 1e-9 {
		t.Errorf("inverse round trip moved point by %v", p.Distance(back))
	}
}

func TestRectIntersects(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	if !a.Intersects(NewRect(5, 5, 10, 10)) {
		t.Error("overlapping rects should intersect")
	}
	if a.Intersects(NewRect(20, 20, 5, 5)) {
		t.Error("disjoint rects should not intersect")
	}
}

func TestRectNormalized(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: -4, Height: -6}.Normalized()
	want := Rect{X: 6, Y: 4, Width: 4, Height: 6}
	if r != want {
		t.Errorf("Normalized = %+v, want %+v", r, want)
	}
}
