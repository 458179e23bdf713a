package controller

import (
	"math"
	"testing"

	"github.com/sycamore23/yolo-obb-annotator/internal/history"
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
	"github.com/sycamore23/yolo-obb-annotator/internal/view"
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

// newFixture builds a controller over a 100x100 image at scale 1 with no
// offset, so screen and image coordinates coincide.
func newFixture() (*Controller, *shape.Store, *history.Log) {
	st := shape.NewStore()
	log := history.NewLog()
	v := view.New(100, 100)
	return New(st, log, v), st, log
}

func pt(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

func TestDrawOrientedBoxRotationFollowsDrag(t *testing.T) {
	cases := []struct {
		name    string
		end     geometry.Point2D
		wantDeg float64
	}{
		{"horizontal drag", pt(10, 0), 0},
		{"diagonal drag", pt(10, 10), 45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, st, _ := newFixture()
			c.SetTool(ToolDrawOrientedBox)
			c.PressPrimary(pt(0, 0))
			c.MoveTo(tc.end)
			c.ReleasePrimary(tc.end)

			if st.Len() != 1 {
				t.Fatalf("store has %d shapes, want 1", st.Len())
			}
			s := st.All()[0]
			if s.Kind != shape.OrientedBox {
				t.Errorf("kind = %v, want OrientedBox", s.Kind)
			}
			if math.Abs(s.Rotation-tc.wantDeg) > 1e-9 {
				t.Errorf("rotation = %v, want %v", s.Rotation, tc.wantDeg)
			}
		})
	}
}

func TestDrawAddsHistoryEntry(t *testing.T) {
	c, _, log := newFixture()
	c.SetTool(ToolDrawAxisBox)
	c.PressPrimary(pt(10, 10))
	c.MoveTo(pt(30, 30))
	c.ReleasePrimary(pt(30, 30))

	if !log.CanUndo() {
		t.Fatal("drawing a shape should record an undoable add")
	}
	cmd, _ := log.Undo()
	if cmd.Type != history.RemoveBatch {
		t.Errorf("undo command = %v, want RemoveBatch", cmd.Type)
	}
}

func TestTinyDragKeepsTwoClickDrawingAlive(t *testing.T) {
	c, st, _ := newFixture()
	c.SetTool(ToolDrawAxisBox)
	c.PressPrimary(pt(10, 10))
	c.ReleasePrimary(pt(10, 10))
	if !c.Active() {
		t.Fatal("click without drag should keep the draw gesture active")
	}
	c.MoveTo(pt(40, 40))
	c.PressPrimary(pt(40, 40))
	if st.Len() != 1 {
		t.Errorf("second click should finalize: store has %d shapes", st.Len())
	}
}

func TestTwoClickOrientedBoxKeepsOrientation(t *testing.T) {
	c, st, _ := newFixture()
	c.SetTool(ToolDrawOrientedBox)
	c.PressPrimary(pt(10, 10))
	c.ReleasePrimary(pt(10, 10))
	c.MoveTo(pt(40, 40))
	c.PressPrimary(pt(40, 40))

	if st.Len() != 1 {
		t.Fatalf("store has %d shapes, want 1", st.Len())
	}
	s := st.All()[0]
	if s.Kind != shape.OrientedBox {
		t.Errorf("kind = %v, want OrientedBox", s.Kind)
	}
	if math.Abs(s.Rotation-45) > 1e-9 {
		t.Errorf("rotation = %v, want 45", s.Rotation)
	}
}

func TestEmptyCanvasAutoSwitchesToOrientedBox(t *testing.T) {
	c, st, _ := newFixture()
	c.PressPrimary(pt(20, 20))
	if c.Tool != ToolDrawOrientedBox {
		t.Fatalf("tool = %v, want draw-obox after empty-canvas press", c.Tool)
	}
	c.MoveTo(pt(60, 40))
	c.ReleasePrimary(pt(60, 40))
	if st.Len() != 1 || st.All()[0].Kind != shape.OrientedBox {
		t.Error("auto-switched draw did not produce an oriented box")
	}
}

func TestResolverCancelDiscardsShape(t *testing.T) {
	c, st, log := newFixture()
	c.Resolver = func() (int, string, bool) { return 0, "", false }
	c.SetTool(ToolDrawAxisBox)
	c.PressPrimary(pt(0, 0))
	c.MoveTo(pt(20, 20))
	c.ReleasePrimary(pt(20, 20))

	if st.Len() != 0 {
		t.Errorf("cancelled class resolution left %d shapes", st.Len())
	}
	if log.CanUndo() {
		t.Error("cancelled draw must not record history")
	}
}

func TestResolverAssignsClass(t *testing.T) {
	c, st, _ := newFixture()
	c.Resolver = func() (int, string, bool) { return 3, "car", true }
	c.SetTool(ToolDrawAxisBox)
	c.PressPrimary(pt(0, 0))
	c.MoveTo(pt(20, 20))
	c.ReleasePrimary(pt(20, 20))

	s := st.All()[0]
	if s.ClassID != 3 || s.ClassName != "car" {
		t.Errorf("class = %d %q, want 3 car", s.ClassID, s.ClassName)
	}
}

func TestPolygonDrawAndFinish(t *testing.T) {
	c, st, _ := newFixture()
	c.SetTool(ToolDrawPolygon)
	c.PressPrimary(pt(0, 0))
	c.PressPrimary(pt(20, 0))
	c.PressPrimary(pt(20, 20))
	c.MoveTo(pt(0, 20))

	draft := c.PolygonDraft()
	if len(draft) != 4 {
		t.Fatalf("draft has %d points, want 3 committed + 1 preview", len(draft))
	}
	c.FinishPolygon()
	if st.Len() != 1 || st.All()[0].Kind != shape.Polygon {
		t.Fatal("finish did not commit the polygon")
	}
	if got := len(st.All()[0].Points); got != 3 {
		t.Errorf("committed polygon has %d vertices, want 3", got)
	}
}

func TestPolygonTooFewVerticesDiscarded(t *testing.T) {
	c, st, log := newFixture()
	c.SetTool(ToolDrawPolygon)
	c.PressPrimary(pt(0, 0))
	c.PressPrimary(pt(20, 0))
	c.FinishPolygon()
	if st.Len() != 0 || log.CanUndo() {
		t.Error("two-vertex polygon should be discarded without history")
	}
}

func TestBodyPressSelectsAndMoves(t *testing.T) {
	c, st, log := newFixture()
	s := shape.NewAxisBox(pt(0, 0), pt(10, 10))
	st.Add(s)

	c.PressPrimary(pt(5, 5))
	if !s.Selected {
		t.Fatal("body press did not select the shape")
	}
	c.MoveTo(pt(8, 9))
	c.ReleasePrimary(pt(8, 9))

	if s.Points[0] != pt(3, 4) {
		t.Errorf("moved origin = %v, want (3, 4)", s.Points[0])
	}
	cmd, ok := log.Undo()
	if !ok || cmd.Type != history.ModifyBatch {
		t.Fatal("move did not record a modify entry")
	}
	if cmd.Shapes[0].Points[0] != pt(0, 0) {
		t.Errorf("undo state origin = %v, want (0, 0)", cmd.Shapes[0].Points[0])
	}
}

func TestCornerDragPastOppositeFlips(t *testing.T) {
	c, st, _ := newFixture()
	s := shape.NewAxisBox(pt(0, 0), pt(10, 10))
	st.Add(s)
	st.Select(s.ID)

	c.PressPrimary(pt(0, 0)) // corner handle 0
	c.MoveTo(pt(20, 20))     // past the opposite corner
	c.ReleasePrimary(pt(20, 20))

	// Result must still be a proper rectangle.
	for i := 0; i < 4; i++ {
		a := s.Points[(i+1)%4].Sub(s.Points[i])
		b := s.Points[(i+3)%4].Sub(s.Points[i])
		if math.Abs(a.Dot(b)) > 1e-6 {
			t.Fatalf("corner %d not orthogonal after flip: %v", i, s.Points)
		}
	}
	if math.Abs(geometry.PolygonArea(s.Points)-100) > 1e-6 {
		t.Errorf("area = %v, want 100", geometry.PolygonArea(s.Points))
	}
}

func TestResizeKeepsOrientedBoxRectangular(t *testing.T) {
	c, st, _ := newFixture()
	s := shape.NewOrientedBox(pt(20, 20), pt(60, 50), 30)
	st.Add(s)
	st.Select(s.ID)

	corner := s.Points[2]
	c.PressPrimary(corner)
	c.MoveTo(corner.Add(pt(7, -3)))
	c.ReleasePrimary(corner.Add(pt(7, -3)))

	for i := 0; i < 4; i++ {
		a := s.Points[(i+1)%4].Sub(s.Points[i])
		b := s.Points[(i+3)%4].Sub(s.Points[i])
		if math.Abs(a.Dot(b)) > 1e-6 {
			t.Fatalf("resize broke rectangularity at corner %d", i)
		}
	}
	if math.Abs(s.Rotation-30) > 1e-9 {
		t.Errorf("rotation changed during resize: %v", s.Rotation)
	}
}

func TestResizeHandlesHairThinBox(t *testing.T) {
	c, st, _ := newFixture()
	s := shape.New(shape.AxisBox, []geometry.Point2D{
		pt(0, 0), pt(1e-4, 0), pt(1e-4, 10), pt(0, 10),
	})
	st.Add(s)

	c.g = gesture{
		kind:     gestureResize,
		targetID: s.ID,
		handle:   2,
		press:    pt(1e-4, 10),
		snapshot: s.Clone(),
	}
	c.applyResize(pt(2e-4, 20))

	// The 1e-4 edge is thin but not collapsed, so the drag must widen it.
	if math.Abs(s.Points[1].X-2e-4) > 1e-12 {
		t.Errorf("thin edge did not resize: p1 = %v", s.Points[1])
	}
	if math.Abs(s.Points[2].Y-20) > 1e-9 {
		t.Errorf("long edge did not resize: p2 = %v", s.Points[2])
	}
}

func TestRotateGesture(t *testing.T) {
	c, st, _ := newFixture()
	s := shape.NewOrientedBox(pt(0, 0), pt(10, 10), 0)
	st.Add(s)
	st.Select(s.ID)

	grip, ok := c.RotationHandle(s)
	if !ok {
		t.Fatal("oriented box should expose a rotation handle")
	}
	c.PressPrimary(grip)
	if c.Hover(grip) != CursorRotate {
		t.Fatal("press on rotation grip did not start a rotate gesture")
	}
	// Quarter turn around the centroid (5, 5).
	c.MoveTo(pt(30, 5))
	c.ReleasePrimary(pt(30, 5))

	if math.Abs(s.Rotation-90) > 1e-6 {
		t.Errorf("rotation = %v, want 90", s.Rotation)
	}
}

func TestRotationHandleAbsentForDegenerateEdge(t *testing.T) {
	c, _, _ := newFixture()
	s := shape.New(shape.OrientedBox, []geometry.Point2D{
		pt(5, 5), pt(5, 5), pt(5, 5), pt(5, 5),
	})
	if _, ok := c.RotationHandle(s); ok {
		t.Error("degenerate edge must not expose a rotation handle")
	}
}

func TestHandlePressForcesSelectTool(t *testing.T) {
	c, st, _ := newFixture()
	s := shape.NewAxisBox(pt(0, 0), pt(10, 10))
	st.Add(s)
	st.Select(s.ID)
	c.Tool = ToolDrawAxisBox

	c.PressPrimary(pt(10, 10)) // corner handle beats the draw tool
	if c.Tool != ToolSelect {
		t.Errorf("tool = %v, want select after handle grab", c.Tool)
	}
	if st.Len() != 1 {
		t.Errorf("handle press started a draw: %d shapes", st.Len())
	}
	c.ReleasePrimary(pt(10, 10))
}

func TestEscapeRestoresGeometry(t *testing.T) {
	c, st, log := newFixture()
	s := shape.NewAxisBox(pt(0, 0), pt(10, 10))
	st.Add(s)

	c.PressPrimary(pt(5, 5))
	c.MoveTo(pt(55, 55))
	c.Escape()

	if s.Points[0] != pt(0, 0) {
		t.Errorf("escape left origin at %v, want (0, 0)", s.Points[0])
	}
	if log.CanUndo() {
		t.Error("cancelled gesture must not record history")
	}
	if c.Active() {
		t.Error("gesture still active after escape")
	}
}

func TestEscapeIdleClearsSelection(t *testing.T) {
	c, st, _ := newFixture()
	s := shape.NewAxisBox(pt(0, 0), pt(10, 10))
	st.Add(s)
	st.Select(s.ID)

	c.Escape()
	if len(st.Selected()) != 0 {
		t.Error("idle escape should clear the selection")
	}
}

func TestEscapeIdleRevertsDrawTool(t *testing.T) {
	c, st, _ := newFixture()
	s := shape.NewAxisBox(pt(0, 0), pt(10, 10))
	st.Add(s)
	st.Select(s.ID)
	c.SetTool(ToolDrawPolygon)

	c.Escape()
	if c.Tool != ToolSelect {
		t.Errorf("tool = %v, want select after first escape", c.Tool)
	}
	if len(st.Selected()) != 1 {
		t.Error("first escape should only revert the tool, not deselect")
	}

	c.Escape()
	if len(st.Selected()) != 0 {
		t.Error("second escape should clear the selection")
	}
}

func TestLockedShapeSelectsButRefusesEdits(t *testing.T) {
	c, st, log := newFixture()
	s := shape.NewAxisBox(pt(0, 0), pt(10, 10))
	s.Locked = true
	st.Add(s)

	c.PressPrimary(pt(5, 5))
	if len(st.Selected()) != 1 {
		t.Fatal("body press should still select a locked shape")
	}
	if c.Active() {
		t.Error("locked shape must not start a move gesture")
	}
	c.MoveTo(pt(50, 50))
	c.ReleasePrimary(pt(50, 50))
	if s.Points[0] != pt(0, 0) {
		t.Errorf("locked shape moved to %v", s.Points[0])
	}

	c.PressPrimary(pt(0, 0)) // corner of the locked primary selection
	if c.Active() && c.g.kind == gestureResize {
		t.Error("locked shape must not start a resize gesture")
	}
	if got := c.Hover(pt(0, 0)); got == CursorResize || got == CursorRotate {
		t.Errorf("hover over locked handle = %v, want no edit hint", got)
	}
	c.Escape()
	if log.CanUndo() {
		t.Error("no edit should have been recorded")
	}
}

func TestRubberBandSelectsIntersecting(t *testing.T) {
	c, st, _ := newFixture()
	for i := 0; i < 5; i++ {
		x := float64(i) * 20
		st.Add(shape.NewAxisBox(pt(x, 0), pt(x+10, 10)))
	}

	c.PressSecondary(pt(0, 0))
	c.MoveTo(pt(45, 15))
	c.ReleaseSecondary(pt(45, 15))

	if got := len(st.Selected()); got != 3 {
		t.Errorf("rubber band selected %d shapes, want 3", got)
	}
}

func TestHoverFeedback(t *testing.T) {
	c, st, _ := newFixture()
	s := shape.NewAxisBox(pt(20, 20), pt(40, 40))
	st.Add(s)

	if got := c.Hover(pt(30, 30)); got != CursorMove {
		t.Errorf("hover over body = %v, want CursorMove", got)
	}
	if got := c.Hover(pt(80, 80)); got != CursorDefault {
		t.Errorf("hover over empty = %v, want CursorDefault", got)
	}
	st.Select(s.ID)
	if got := c.Hover(pt(20, 20)); got != CursorResize {
		t.Errorf("hover over handle = %v, want CursorResize", got)
	}
}
