package canvas

import (
	"image"
	"image/color"

	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
	"github.com/sycamore23/yolo-obb-annotator/pkg/colorutil"
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

const handleSize = 3 // half-size of handle squares in screen pixels

var (
	selectionColor  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	rubberBandColor = color.RGBA{R: 0, G: 200, B: 255, A: 255}
	draftColor      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	handleColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	rotGripColor    = color.RGBA{R: 0, G: 255, B: 128, A: 255}
)

// drawShape outlines one shape, with handles when it is selected.
func (ac *AnnotationCanvas) drawShape(out *image.RGBA, s *shape.Shape) {
	col := colorutil.ForIndex(s.ClassID)
	thickness := 1
	if s.Selected {
		col = selectionColor
		thickness = 2
	}
	ac.drawOutline(out, s.Points, col, thickness)

	if !s.Selected {
		return
	}
	for _, p := range s.Points {
		ac.drawHandle(out, ac.state.View.ToScreen(p), handleColor)
	}
	if grip, ok := ac.state.Controller.RotationHandle(s); ok {
		mid := s.Points[0].Add(s.Points[1]).Scale(0.5)
		ac.drawSegment(out, mid, grip, rotGripColor, 1)
		ac.drawHandle(out, ac.state.View.ToScreen(grip), rotGripColor)
	}
}

// drawDrafts renders in-progress gestures: the box or polygon being drawn
// and the rubber band.
func (ac *AnnotationCanvas) drawDrafts(out *image.RGBA) {
	ctrl := ac.state.Controller
	if draft := ctrl.DraftShape(); draft != nil {
		ac.drawOutline(out, draft.Points, draftColor, 1)
	}
	if pts := ctrl.PolygonDraft(); len(pts) >= 2 {
		for i := 0; i < len(pts)-1; i++ {
			ac.drawSegment(out, pts[i], pts[i+1], draftColor, 1)
		}
		for _, p := range pts[:len(pts)-1] {
			ac.drawHandle(out, ac.state.View.ToScreen(p), draftColor)
		}
	}
	if band, ok := ctrl.RubberBand(); ok {
		ac.drawDashedRect(out, band)
	}
}

// drawOutline draws the closed polygon through the view transform.
func (ac *AnnotationCanvas) drawOutline(out *image.RGBA, pts []geometry.Point2D, col color.RGBA, thickness int) {
	n := len(pts)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		ac.drawSegment(out, pts[i], pts[(i+1)%n], col, thickness)
	}
}

func (ac *AnnotationCanvas) drawSegment(out *image.RGBA, a, b geometry.Point2D, col color.RGBA, thickness int) {
	sa := ac.state.View.ToScreen(a)
	sb := ac.state.View.ToScreen(b)
	drawLine(out, int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), col, thickness)
}

func (ac *AnnotationCanvas) drawHandle(out *image.RGBA, center geometry.Point2D, col color.RGBA) {
	bounds := out.Bounds()
	cx, cy := int(center.X), int(center.Y)
	for y := cy - handleSize; y <= cy+handleSize; y++ {
		for x := cx - handleSize; x <= cx+handleSize; x++ {
			if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
				out.Set(x, y, col)
			}
		}
	}
}

// drawDashedRect draws the rubber band, given in image coordinates.
func (ac *AnnotationCanvas) drawDashedRect(out *image.RGBA, r geometry.Rect) {
	tl := ac.state.View.ToScreen(geometry.Point2D{X: r.X, Y: r.Y})
	br := ac.state.View.ToScreen(geometry.Point2D{X: r.X + r.Width, Y: r.Y + r.Height})
	x1, y1, x2, y2 := int(tl.X), int(tl.Y), int(br.X), int(br.Y)
	bounds := out.Bounds()

	set := func(x, y int) {
		if (x+y)%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			out.Set(x, y, rubberBandColor)
		}
	}
	for x := x1; x <= x2; x++ {
		set(x, y1)
		set(x, y2)
	}
	for y := y1; y <= y2; y++ {
		set(x1, y)
		set(x2, y)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := out.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					out.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}
