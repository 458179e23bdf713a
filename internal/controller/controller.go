// Package controller translates pointer input on the canvas into edits on
// the shape store: drawing, selection, move/resize/rotate gestures and
// rubber-band selection. All methods must be called from the UI goroutine.
package controller

import (
	"math"

	"github.com/sycamore23/yolo-obb-annotator/internal/history"
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
	"github.com/sycamore23/yolo-obb-annotator/internal/view"
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

// ToolMode selects what a primary press on empty canvas does.
type ToolMode int

const (
	ToolSelect ToolMode = iota
	ToolDrawAxisBox
	ToolDrawOrientedBox
	ToolDrawPolygon
)

func (m ToolMode) String() string {
	switch m {
	case ToolSelect:
		return "select"
	case ToolDrawAxisBox:
		return "draw-box"
	case ToolDrawOrientedBox:
		return "draw-obox"
	case ToolDrawPolygon:
		return "draw-polygon"
	}
	return "unknown"
}

// CursorHint tells the canvas which cursor to show for the hovered point.
type CursorHint int

const (
	CursorDefault CursorHint = iota
	CursorCross
	CursorMove
	CursorResize
	CursorRotate
)

// ClassResolver supplies a class for a newly drawn shape. It runs
// synchronously; ok=false means the user cancelled and the shape is
// discarded.
type ClassResolver func() (id int, name string, ok bool)

// On-screen pixel tolerances; divided by the view scale before hit testing
// so targets keep a constant apparent size.
const (
	handleTolPx   = 8.0
	bodyTolPx     = 5.0
	rotHandleDist = 20.0
	minDragPx     = 3.0
)

// degenerateEdge is the minimum edge length, in image pixels, below which
// a box edge is treated as collapsed.
const degenerateEdge = 1e-6

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureMove
	gestureResize
	gestureRotate
	gestureDrawBox
	gestureDrawPolygon
	gestureRubberBand
)

// gesture is the transient state between press and release. It is cleared
// as a unit so a cancelled interaction leaves nothing behind.
type gesture struct {
	kind     gestureKind
	targetID string
	handle   int
	press    geometry.Point2D // image coords at press
	cur      geometry.Point2D
	snapshot *shape.Shape // pre-edit copy for modify gestures

	drawKind shape.Kind
	poly     []geometry.Point2D
}

// Controller owns the interaction state machine. It mutates the store and
// records edits in the history log; it never blocks.
type Controller struct {
	store *shape.Store
	log   *history.Log
	view  *view.Transform

	Tool     ToolMode
	Resolver ClassResolver

	// OnEdit, when set, is called with a short description after every
	// committed edit so the owner can mark the document dirty.
	OnEdit func(desc string)

	g gesture
}

// New creates a controller over the given store, history log and view.
func New(store *shape.Store, log *history.Log, v *view.Transform) *Controller {
	return &Controller{store: store, log: log, view: v, Tool: ToolSelect}
}

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool { return c.g.kind != gestureNone }

// SetTool switches the tool, cancelling any in-progress gesture.
func (c *Controller) SetTool(m ToolMode) {
	if c.g.kind != gestureNone {
		c.Escape()
	}
	c.Tool = m
}

func (c *Controller) notify(desc string) {
	if c.OnEdit != nil {
		c.OnEdit(desc)
	}
}

func (c *Controller) handleTol() float64 { return c.view.ImageTolerance(handleTolPx) }
func (c *Controller) bodyTol() float64   { return c.view.ImageTolerance(bodyTolPx) }

// PressPrimary handles a primary-button press at a screen point. Routing
// order: selected shape's handle, then active draw tool, then shape body,
// then empty canvas.
func (c *Controller) PressPrimary(screen geometry.Point2D) {
	img, inside := c.view.ToImage(screen)

	// A second press while drawing a box finalizes it.
	if c.g.kind == gestureDrawBox {
		c.g.cur = c.clampToImage(img)
		c.finishBox()
		return
	}
	if c.g.kind == gestureDrawPolygon {
		if inside {
			c.g.poly = append(c.g.poly, c.clampToImage(img))
			c.g.cur = c.clampToImage(img)
		}
		return
	}

	// Rule 1: handles of the primary selection win over everything,
	// even an active draw tool, and force the tool back to select.
	// Locked shapes keep their selection but refuse manipulation.
	if p := c.store.Primary(); p != nil && !p.Locked {
		if idx, kind := c.hitHandle(p, img); kind != CursorDefault {
			c.Tool = ToolSelect
			c.g = gesture{
				targetID: p.ID,
				handle:   idx,
				press:    img,
				cur:      img,
				snapshot: p.Clone(),
			}
			if kind == CursorRotate {
				c.g.kind = gestureRotate
			} else {
				c.g.kind = gestureResize
			}
			return
		}
	}

	// Rule 2: an active draw tool consumes the press.
	if c.Tool != ToolSelect {
		if !inside {
			return
		}
		c.beginDraw(img)
		return
	}

	// Rule 3: pressing a shape body selects it and starts a move.
	if hit := c.store.HitTest(img, c.bodyTol()); hit != nil {
		c.store.Select(hit.ID)
		if hit.Locked {
			return
		}
		c.g = gesture{
			kind:     gestureMove,
			targetID: hit.ID,
			press:    img,
			cur:      img,
			snapshot: hit.Clone(),
		}
		return
	}

	// Rule 4: empty canvas in select mode starts drawing an oriented
	// box directly.
	if inside {
		c.store.ClearSelection()
		c.Tool = ToolDrawOrientedBox
		c.beginDraw(img)
		return
	}
	c.store.ClearSelection()
}

// PressSecondary starts a rubber-band selection.
func (c *Controller) PressSecondary(screen geometry.Point2D) {
	if c.g.kind != gestureNone {
		return
	}
	img, _ := c.view.ToImage(screen)
	c.g = gesture{kind: gestureRubberBand, press: img, cur: img}
}

func (c *Controller) beginDraw(img geometry.Point2D) {
	switch c.Tool {
	case ToolDrawAxisBox:
		c.g = gesture{kind: gestureDrawBox, drawKind: shape.AxisBox, press: img, cur: img}
	case ToolDrawOrientedBox:
		c.g = gesture{kind: gestureDrawBox, drawKind: shape.OrientedBox, press: img, cur: img}
	case ToolDrawPolygon:
		c.g = gesture{
			kind: gestureDrawPolygon,
			poly: []geometry.Point2D{img},
			cur:  img,
		}
	}
}

// MoveTo advances the active gesture to a new screen point. It is a no-op
// when no gesture is active; hover feedback goes through Hover.
func (c *Controller) MoveTo(screen geometry.Point2D) {
	if c.g.kind == gestureNone {
		return
	}
	img, _ := c.view.ToImage(screen)

	switch c.g.kind {
	case gestureDrawBox, gestureDrawPolygon:
		c.g.cur = c.clampToImage(img)
	case gestureRubberBand:
		c.g.cur = img
	case gestureMove:
		c.g.cur = img
		c.applyMove(img)
	case gestureResize:
		c.g.cur = img
		c.applyResize(img)
	case gestureRotate:
		c.g.cur = img
		c.applyRotate(img)
	}
}

// ReleasePrimary ends the active primary gesture, committing its edit to
// the history log when the geometry actually changed.
func (c *Controller) ReleasePrimary(screen geometry.Point2D) {
	img, _ := c.view.ToImage(screen)

	switch c.g.kind {
	case gestureDrawBox:
		c.g.cur = c.clampToImage(img)
		// A click without a drag keeps the gesture alive; the next
		// press finalizes (two-click drawing).
		if img.Distance(c.g.press) < c.view.ImageTolerance(minDragPx) {
			return
		}
		c.finishBox()
	case gestureDrawPolygon:
		// Vertices are committed on press; release does nothing.
	case gestureMove, gestureResize, gestureRotate:
		c.commitModify()
	case gestureRubberBand:
		c.g.cur = img
		c.finishRubberBand()
	}
}

// ReleaseSecondary ends a rubber-band gesture.
func (c *Controller) ReleaseSecondary(screen geometry.Point2D) {
	if c.g.kind != gestureRubberBand {
		return
	}
	img, _ := c.view.ToImage(screen)
	c.g.cur = img
	c.finishRubberBand()
}

// FinishPolygon commits the polygon under construction. Fewer than three
// vertices discards it.
func (c *Controller) FinishPolygon() {
	if c.g.kind != gestureDrawPolygon {
		return
	}
	pts := c.g.poly
	c.g = gesture{}
	if len(pts) < 3 {
		return
	}
	s := shape.New(shape.Polygon, pts)
	c.addDrawn(s)
}

// Escape cancels the active gesture. Modify gestures restore the pre-press
// geometry; a polygon with enough vertices is committed instead of lost.
// With no gesture active it reverts a draw tool to select, then clears the
// selection.
func (c *Controller) Escape() {
	switch c.g.kind {
	case gestureNone:
		if c.Tool != ToolSelect {
			c.Tool = ToolSelect
			return
		}
		c.store.ClearSelection()
	case gestureDrawPolygon:
		c.FinishPolygon()
	case gestureMove, gestureResize, gestureRotate:
		if s := c.store.ByID(c.g.targetID); s != nil {
			s.SetGeometry(c.g.snapshot.Points, c.g.snapshot.Rotation)
		}
		c.g = gesture{}
	default:
		c.g = gesture{}
	}
}

// Hover returns the cursor hint for a screen point without changing state.
func (c *Controller) Hover(screen geometry.Point2D) CursorHint {
	switch c.g.kind {
	case gestureMove:
		return CursorMove
	case gestureResize:
		return CursorResize
	case gestureRotate:
		return CursorRotate
	case gestureDrawBox, gestureDrawPolygon, gestureRubberBand:
		return CursorCross
	}

	img, _ := c.view.ToImage(screen)
	if p := c.store.Primary(); p != nil && !p.Locked {
		if _, kind := c.hitHandle(p, img); kind != CursorDefault {
			return kind
		}
	}
	if c.Tool != ToolSelect {
		return CursorCross
	}
	if c.store.HitTest(img, c.bodyTol()) != nil {
		return CursorMove
	}
	return CursorDefault
}

// DraftShape returns the box being drawn, for preview rendering.
func (c *Controller) DraftShape() *shape.Shape {
	if c.g.kind != gestureDrawBox {
		return nil
	}
	return buildBox(c.g.drawKind, c.g.press, c.g.cur)
}

// PolygonDraft returns the committed polygon vertices plus the floating
// preview vertex, or nil when no polygon is in progress.
func (c *Controller) PolygonDraft() []geometry.Point2D {
	if c.g.kind != gestureDrawPolygon {
		return nil
	}
	out := make([]geometry.Point2D, len(c.g.poly), len(c.g.poly)+1)
	copy(out, c.g.poly)
	return append(out, c.g.cur)
}

// RubberBand returns the current band rectangle in image coordinates.
func (c *Controller) RubberBand() (geometry.Rect, bool) {
	if c.g.kind != gestureRubberBand {
		return geometry.Rect{}, false
	}
	return rectBetween(c.g.press, c.g.cur), true
}

func (c *Controller) clampToImage(p geometry.Point2D) geometry.Point2D {
	w, h := c.view.ImageSize.Width, c.view.ImageSize.Height
	if p.X < 0 {
		p.X = 0
	} else if p.X > w {
		p.X = w
	}
	if p.Y < 0 {
		p.Y = 0
	} else if p.Y > h {
		p.Y = h
	}
	return p
}

func buildBox(kind shape.Kind, a, b geometry.Point2D) *shape.Shape {
	if kind == shape.AxisBox {
		return shape.NewAxisBox(a, b)
	}
	deg := math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
	return shape.NewOrientedBox(a, b, deg)
}

func (c *Controller) finishBox() {
	kind, a, b := c.g.drawKind, c.g.press, c.g.cur
	c.g = gesture{}
	if a.Distance(b) < c.view.ImageTolerance(minDragPx) {
		return
	}
	c.addDrawn(buildBox(kind, a, b))
}

// addDrawn resolves a class for the new shape and commits it. A cancelled
// resolution discards the shape entirely.
func (c *Controller) addDrawn(s *shape.Shape) {
	if c.Resolver != nil {
		id, name, ok := c.Resolver()
		if !ok {
			return
		}
		s.ClassID = id
		s.ClassName = name
	}
	c.store.Add(s)
	c.store.Select(s.ID)
	c.log.RecordAdd([]*shape.Shape{s})
	c.notify("added " + s.Kind.String())
}

func (c *Controller) applyMove(cur geometry.Point2D) {
	s := c.store.ByID(c.g.targetID)
	if s == nil {
		c.g = gesture{}
		return
	}
	d := cur.Sub(c.g.press)
	s.SetGeometry(c.g.snapshot.Points, c.g.snapshot.Rotation)
	s.Translate(d.X, d.Y)
}

// applyResize rebuilds the box from the corner opposite the dragged handle,
// projecting the drag onto the box's own edge directions so an oriented box
// stays rectangular. Polygons move the single dragged vertex instead.
func (c *Controller) applyResize(cur geometry.Point2D) {
	s := c.store.ByID(c.g.targetID)
	if s == nil {
		c.g = gesture{}
		return
	}
	snap := c.g.snapshot.Points
	h := c.g.handle

	if s.Kind == shape.Polygon {
		pts := make([]geometry.Point2D, len(snap))
		copy(pts, snap)
		if h >= 0 && h < len(pts) {
			pts[h] = cur
		}
		s.SetGeometry(pts, c.g.snapshot.Rotation)
		return
	}

	if len(snap) != 4 || h < 0 || h > 3 {
		return
	}
	opp := (h + 2) % 4
	prev := (h + 3) % 4
	next := (h + 1) % 4

	pivot := snap[opp]
	vPrev := snap[prev].Sub(pivot)
	vNext := snap[next].Sub(pivot)
	vMouse := cur.Sub(pivot)

	sPrev, sNext := 0.0, 0.0
	if l := vPrev.LengthSq(); l > degenerateEdge*degenerateEdge {
		sPrev = vMouse.Dot(vPrev) / l
	}
	if l := vNext.LengthSq(); l > degenerateEdge*degenerateEdge {
		sNext = vMouse.Dot(vNext) / l
	}

	pts := make([]geometry.Point2D, 4)
	pts[opp] = pivot
	pts[prev] = pivot.Add(vPrev.Scale(sPrev))
	pts[next] = pivot.Add(vNext.Scale(sNext))
	pts[h] = pivot.Add(vPrev.Scale(sPrev)).Add(vNext.Scale(sNext))
	s.SetGeometry(pts, c.g.snapshot.Rotation)
}

func (c *Controller) applyRotate(cur geometry.Point2D) {
	s := c.store.ByID(c.g.targetID)
	if s == nil {
		c.g = gesture{}
		return
	}
	center := c.g.snapshot.Centroid()
	a0 := math.Atan2(c.g.press.Y-center.Y, c.g.press.X-center.X)
	a1 := math.Atan2(cur.Y-center.Y, cur.X-center.X)
	delta := (a1 - a0) * 180 / math.Pi

	pts := make([]geometry.Point2D, len(c.g.snapshot.Points))
	for i, p := range c.g.snapshot.Points {
		pts[i] = p.RotateAround(center, delta)
	}
	s.SetGeometry(pts, c.g.snapshot.Rotation+delta)
}

func (c *Controller) commitModify() {
	g := c.g
	c.g = gesture{}
	s := c.store.ByID(g.targetID)
	if s == nil {
		return
	}
	if geometryEqual(g.snapshot, s) {
		return
	}
	c.log.RecordModify([]*shape.Shape{g.snapshot}, []*shape.Shape{s})
	c.notify("modified " + s.Kind.String())
}

func rectBetween(a, b geometry.Point2D) geometry.Rect {
	return geometry.NewRect(a.X, a.Y, b.X-a.X, b.Y-a.Y).Normalized()
}

func (c *Controller) finishRubberBand() {
	rect := rectBetween(c.g.press, c.g.cur)
	c.g = gesture{}
	n := c.store.SelectIntersecting(rect)
	if n > 0 {
		c.notify("selected")
	}
}

func geometryEqual(a, b *shape.Shape) bool {
	if a.Rotation != b.Rotation || len(a.Points) != len(b.Points) {
		return false
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			return false
		}
	}
	return true
}
