// Package view provides the image-space to screen-space mapping for the
// canvas: zoom about an arbitrary pivot plus panning.
package view

import (
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

const (
	// MinScale and MaxScale bound the zoom factor.
	MinScale = 0.01
	MaxScale = 10.0

	// fitMargin leaves a small border when fitting the image to the view.
	fitMargin = 0.95
)

// Transform maps image-pixel coordinates to screen coordinates:
// screen = image*Scale + Offset.
type Transform struct {
	Scale  float64
	Offset geometry.Point2D

	// ImageSize bounds ToImage; points mapping outside it are reported
	// as not on the image.
	ImageSize geometry.Size
}

// New creates an identity transform for an image of the given size.
func New(imgW, imgH float64) *Transform {
	return &Transform{Scale: 1.0, ImageSize: geometry.NewSize(imgW, imgH)}
}

// ToScreen converts an image point to screen coordinates. Always defined.
func (t *Transform) ToScreen(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: p.X*t.Scale + t.Offset.X,
		Y: p.Y*t.Scale + t.Offset.Y,
	}
}

// ToImage converts a screen point to image coordinates. The second return
// is false when the point falls outside the image bounds.
func (t *Transform) ToImage(p geometry.Point2D) (geometry.Point2D, bool) {
	img := geometry.Point2D{
		X: (p.X - t.Offset.X) / t.Scale,
		Y: (p.Y - t.Offset.Y) / t.Scale,
	}
	inside := img.X >= 0 && img.X < t.ImageSize.Width &&
		img.Y >= 0 && img.Y < t.ImageSize.Height
	return img, inside
}

// Zoom multiplies the scale by factor, clamped to [MinScale, MaxScale],
// keeping the image point under pivot (a screen point) stationary.
func (t *Transform) Zoom(factor float64, pivot geometry.Point2D) {
	old := t.Scale
	next := old * factor
	if next < MinScale {
		next = MinScale
	}
	if next > MaxScale {
		next = MaxScale
	}
	if next == old {
		return
	}

	// Keep pivot anchored: the image point under the cursor before the
	// zoom must map back to the same screen position after it.
	relX := (pivot.X - t.Offset.X) / old
	relY := (pivot.Y - t.Offset.Y) / old
	t.Scale = next
	t.Offset.X = pivot.X - relX*next
	t.Offset.Y = pivot.Y - relY*next
}

// SetScale sets an absolute scale, clamped, without re-anchoring.
func (t *Transform) SetScale(scale float64) {
	if scale < MinScale {
		scale = MinScale
	}
	if scale > MaxScale {
		scale = MaxScale
	}
	t.Scale = scale
}

// Pan shifts the view by a screen-space delta.
func (t *Transform) Pan(dx, dy float64) {
	t.Offset.X += dx
	t.Offset.Y += dy
}

// FitToView chooses scale and offset so the whole image is visible and
// centered in a viewport of the given size, with a small margin.
func (t *Transform) FitToView(viewW, viewH float64) {
	if t.ImageSize.Width <= 0 || t.ImageSize.Height <= 0 || viewW <= 0 || viewH <= 0 {
		return
	}
	sw := viewW / t.ImageSize.Width
	sh := viewH / t.ImageSize.Height
	scale := sw
	if sh < sw {
		scale = sh
	}
	t.SetScale(scale * fitMargin)
	t.Offset = geometry.Point2D{
		X: (viewW - t.ImageSize.Width*t.Scale) / 2,
		Y: (viewH - t.ImageSize.Height*t.Scale) / 2,
	}
}

// ImageTolerance converts an on-screen pixel tolerance into image space so
// hit targets keep a constant screen size across zoom levels.
func (t *Transform) ImageTolerance(screenPixels float64) float64 {
	if t.Scale == 0 {
		return screenPixels
	}
	return screenPixels / t.Scale
}
