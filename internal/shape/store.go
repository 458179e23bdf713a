package shape

import (
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

// Store is the authoritative ordered shape collection for one image. It is
// owned by the application; the interaction controller and the history log
// only hold ids and copies. All methods run on the single writer
// goroutine, so the store carries no locking.
type Store struct {
	shapes []*Shape
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of shapes.
func (st *Store) Len() int {
	return len(st.shapes)
}

// All returns the live shape slice in stacking order (last drawn on top).
// Callers must not reorder it.
func (st *Store) All() []*Shape {
	return st.shapes
}

// ByID returns the shape with the given id, or nil.
func (st *Store) ByID(id string) *Shape {
	for _, s := range st.shapes {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// IndexOf returns the position of the shape with the given id, or -1.
func (st *Store) IndexOf(id string) int {
	for i, s := range st.shapes {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a shape to the top of the stack.
func (st *Store) Add(s *Shape) {
	st.shapes = append(st.shapes, s)
}

// InsertAt inserts a shape at the given index, clamped to the valid range.
// Used when undo re-adds removed shapes at their prior positions.
func (st *Store) InsertAt(index int, s *Shape) {
	if index < 0 {
		index = 0
	}
	if index > len(st.shapes) {
		index = len(st.shapes)
	}
	st.shapes = append(st.shapes, nil)
	copy(st.shapes[index+1:], st.shapes[index:])
	st.shapes[index] = s
}

// Remove deletes the shape with the given id and returns its prior index,
// or -1 if it was not present.
func (st *Store) Remove(id string) int {
	i := st.IndexOf(id)
	if i < 0 {
		return -1
	}
	st.shapes = append(st.shapes[:i], st.shapes[i+1:]...)
	return i
}

// Clear drops every shape, as when switching to another image.
func (st *Store) Clear() {
	st.shapes = nil
}

// Replace copies geometry, rotation and class from src onto the stored
// shape with the same id. Returns false if the id is unknown.
func (st *Store) Replace(src *Shape) bool {
	dst := st.ByID(src.ID)
	if dst == nil {
		return false
	}
	dst.SetGeometry(src.Points, src.Rotation)
	dst.ClassID = src.ClassID
	dst.ClassName = src.ClassName
	return true
}

// HitTest returns the topmost visible shape containing p, or nil.
func (st *Store) HitTest(p geometry.Point2D, tol float64) *Shape {
	for i := len(st.shapes) - 1; i >= 0; i-- {
		s := st.shapes[i]
		if s.Visible && s.ContainsPoint(p, tol) {
			return s
		}
	}
	return nil
}

// Select marks the shape with the given id as the only selected shape.
// An empty id clears the selection.
func (st *Store) Select(id string) *Shape {
	var picked *Shape
	for _, s := range st.shapes {
		s.Selected = s.ID == id && id != ""
		if s.Selected {
			picked = s
		}
	}
	return picked
}

// ClearSelection deselects every shape.
func (st *Store) ClearSelection() {
	for _, s := range st.shapes {
		s.Selected = false
	}
}

// Selected returns every selected shape in stacking order.
func (st *Store) Selected() []*Shape {
	var out []*Shape
	for _, s := range st.shapes {
		if s.Selected {
			out = append(out, s)
		}
	}
	return out
}

// Primary returns the single selected shape that drives the edit handles,
// or nil when zero or several shapes are selected.
func (st *Store) Primary() *Shape {
	sel := st.Selected()
	if len(sel) == 1 {
		return sel[0]
	}
	return nil
}

// SelectIntersecting sets the selected flag on exactly those shapes whose
// bounding box intersects the given image-space rectangle.
func (st *Store) SelectIntersecting(r geometry.Rect) int {
	count := 0
	for _, s := range st.shapes {
		s.Selected = r.Intersects(s.BoundingBox())
		if s.Selected {
			count++
		}
	}
	return count
}
