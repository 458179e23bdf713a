package history

import (
	"github.com/google/uuid"

	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
)

// Clipboard holds deep copies of shapes for copy/paste. Pasted shapes get
// fresh ids so they never alias the originals.
type Clipboard struct {
	shapes []*shape.Shape
}

// NewClipboard returns an empty clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// Copy replaces the clipboard contents with deep copies of shapes.
// An empty slice clears the clipboard.
func (c *Clipboard) Copy(shapes []*shape.Shape) {
	c.shapes = shape.Clones(shapes)
}

// Paste returns fresh copies of the clipboard contents, each with a new id
// and deselected. The clipboard itself is unchanged, so repeated pastes
// yield independent shapes.
func (c *Clipboard) Paste() []*shape.Shape {
	out := make([]*shape.Shape, 0, len(c.shapes))
	for _, s := range c.shapes {
		cp := s.Clone()
		cp.ID = uuid.NewString()
		cp.Selected = false
		cp.Touch()
		out = append(out, cp)
	}
	return out
}

// Len returns the number of shapes held.
func (c *Clipboard) Len() int { return len(c.shapes) }

// Clear empties the clipboard.
func (c *Clipboard) Clear() { c.shapes = nil }
