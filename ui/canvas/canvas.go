// Package canvas provides the annotation canvas: image display with pan,
// zoom, shape rendering and pointer editing.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/sycamore23/yolo-obb-annotator/internal/app"
	"github.com/sycamore23/yolo-obb-annotator/internal/controller"
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

const zoomStep = 1.2

// AnnotationCanvas renders the image and its shapes and forwards pointer
// input to the interaction controller.
type AnnotationCanvas struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	// panning with the middle button
	panning  bool
	panLast  geometry.Point2D
	fitOnce  bool
	lastSize fyne.Size

	// OnCursor, when set, receives cursor hints for the status bar.
	OnCursor func(controller.CursorHint)
}

// New creates an annotation canvas bound to the application state.
func New(state *app.State) *AnnotationCanvas {
	ac := &AnnotationCanvas{state: state}
	ac.raster = fynecanvas.NewRaster(ac.drawFrame)
	ac.ExtendBaseWidget(ac)

	state.On(app.EventShapesChanged, func(interface{}) { ac.Refresh() })
	state.On(app.EventSelectionChanged, func(interface{}) { ac.Refresh() })
	state.On(app.EventImageLoaded, func(interface{}) {
		ac.fitOnce = true
		ac.Refresh()
	})
	return ac
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.raster)
}

func (ac *AnnotationCanvas) screenPoint(pos fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)}
}

// MouseDown routes presses to the controller: primary edits, secondary
// rubber-bands, middle button pans.
func (ac *AnnotationCanvas) MouseDown(ev *desktop.MouseEvent) {
	p := ac.screenPoint(ev.Position)
	switch ev.Button {
	case desktop.MouseButtonPrimary:
		ac.state.Controller.PressPrimary(p)
	case desktop.MouseButtonSecondary:
		ac.state.Controller.PressSecondary(p)
	case desktop.MouseButtonTertiary:
		ac.panning = true
		ac.panLast = p
	}
	ac.Refresh()
}

// MouseUp completes the gesture started by MouseDown.
func (ac *AnnotationCanvas) MouseUp(ev *desktop.MouseEvent) {
	p := ac.screenPoint(ev.Position)
	switch ev.Button {
	case desktop.MouseButtonPrimary:
		ac.state.Controller.ReleasePrimary(p)
	case desktop.MouseButtonSecondary:
		ac.state.Controller.ReleaseSecondary(p)
	case desktop.MouseButtonTertiary:
		ac.panning = false
	}
	ac.Refresh()
}

// MouseMoved advances gestures and reports hover feedback.
func (ac *AnnotationCanvas) MouseMoved(ev *desktop.MouseEvent) {
	p := ac.screenPoint(ev.Position)
	if ac.panning {
		ac.state.View.Pan(p.X-ac.panLast.X, p.Y-ac.panLast.Y)
		ac.panLast = p
		ac.Refresh()
		return
	}
	if ac.state.Controller.Active() {
		ac.state.Controller.MoveTo(p)
		ac.Refresh()
		return
	}
	if ac.OnCursor != nil {
		ac.OnCursor(ac.state.Controller.Hover(p))
	}
}

// MouseIn implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseOut() {}

// Scrolled zooms about the cursor.
func (ac *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	pivot := ac.screenPoint(ev.Position)
	if ev.Scrolled.DY > 0 {
		ac.state.View.Zoom(zoomStep, pivot)
	} else if ev.Scrolled.DY < 0 {
		ac.state.View.Zoom(1/zoomStep, pivot)
	}
	ac.Refresh()
}

// FitToView fits the whole image in the current widget size.
func (ac *AnnotationCanvas) FitToView() {
	size := ac.Size()
	ac.state.View.FitToView(float64(size.Width), float64(size.Height))
	ac.Refresh()
}

// drawFrame is the raster drawing function.
func (ac *AnnotationCanvas) drawFrame(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if ac.state.Image == nil || ac.state.Image.Image == nil {
		return out
	}

	size := fyne.NewSize(float32(w), float32(h))
	if ac.fitOnce || (ac.lastSize != size && ac.state.View.Scale == 1.0) {
		ac.state.View.FitToView(float64(w), float64(h))
		ac.fitOnce = false
	}
	ac.lastSize = size

	ac.compositeImage(out)
	for _, s := range ac.state.Shapes.All() {
		if !s.Visible {
			continue
		}
		ac.drawShape(out, s)
	}
	ac.drawDrafts(out)
	return out
}

// compositeImage scales the source image into the output through the view
// transform using nearest-neighbor sampling.
func (ac *AnnotationCanvas) compositeImage(out *image.RGBA) {
	src := ac.state.Image.Image
	sb := src.Bounds()
	v := ac.state.View
	b := out.Bounds()

	// Only walk the output region the image projects onto.
	topLeft := v.ToScreen(geometry.Point2D{})
	bottomRight := v.ToScreen(geometry.Point2D{
		X: v.ImageSize.Width, Y: v.ImageSize.Height,
	})
	x0, y0 := clampInt(int(topLeft.X), 0, b.Max.X), clampInt(int(topLeft.Y), 0, b.Max.Y)
	x1, y1 := clampInt(int(bottomRight.X)+1, 0, b.Max.X), clampInt(int(bottomRight.Y)+1, 0, b.Max.Y)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img, inside := v.ToImage(geometry.Point2D{X: float64(x), Y: float64(y)})
			if !inside {
				continue
			}
			out.Set(x, y, src.At(sb.Min.X+int(img.X), sb.Min.Y+int(img.Y)))
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ desktop.Mouseable = (*AnnotationCanvas)(nil)
var _ desktop.Hoverable = (*AnnotationCanvas)(nil)
var _ fyne.Scrollable = (*AnnotationCanvas)(nil)
