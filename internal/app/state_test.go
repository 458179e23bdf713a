package app

import (
	stdimage "image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

func addBox(s *State, x, y float64) *shape.Shape {
	b := shape.NewAxisBox(
		geometry.Point2D{X: x, Y: y},
		geometry.Point2D{X: x + 10, Y: y + 10},
	)
	s.Shapes.Add(b)
	return b
}

func TestDeleteSelectedUndoRestoresPosition(t *testing.T) {
	s := NewState()
	addBox(s, 0, 0)
	b := addBox(s, 20, 0)
	addBox(s, 40, 0)
	s.Shapes.Select(b.ID)

	if n := s.DeleteSelected(); n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}
	if s.Shapes.Len() != 2 {
		t.Fatalf("store has %d shapes after delete", s.Shapes.Len())
	}

	s.Undo()
	if s.Shapes.Len() != 3 {
		t.Fatalf("store has %d shapes after undo", s.Shapes.Len())
	}
	if got := s.Shapes.IndexOf(b.ID); got != 1 {
		t.Errorf("restored shape at index %d, want 1", got)
	}
}

func TestUndoRedoSymmetric(t *testing.T) {
	s := NewState()
	b := addBox(s, 0, 0)
	s.History.RecordAdd([]*shape.Shape{b})

	s.Undo()
	if s.Shapes.Len() != 0 {
		t.Fatal("undo of add should empty the store")
	}
	s.Redo()
	if s.Shapes.Len() != 1 {
		t.Fatal("redo should restore the shape")
	}
	if s.Shapes.ByID(b.ID) == nil {
		t.Error("restored shape lost its id")
	}
}

func TestCopyPasteIsUndoable(t *testing.T) {
	s := NewState()
	b := addBox(s, 0, 0)
	s.Shapes.Select(b.ID)

	if n := s.CopySelected(); n != 1 {
		t.Fatalf("copied %d, want 1", n)
	}
	if n := s.Paste(); n != 1 {
		t.Fatalf("pasted %d, want 1", n)
	}
	if s.Shapes.Len() != 2 {
		t.Fatalf("store has %d shapes after paste", s.Shapes.Len())
	}
	sel := s.Shapes.Selected()
	if len(sel) != 1 || sel[0].ID == b.ID {
		t.Error("paste should select only the new shape")
	}

	s.Undo()
	if s.Shapes.Len() != 1 {
		t.Error("paste must revert with a single undo")
	}
}

func TestAssignClassUndo(t *testing.T) {
	s := NewState()
	b := addBox(s, 0, 0)
	s.Shapes.Select(b.ID)

	s.AssignClass(3, "car")
	if b.ClassID != 3 || b.ClassName != "car" {
		t.Fatalf("class = %d %q", b.ClassID, b.ClassName)
	}
	s.Undo()
	if got := s.Shapes.ByID(b.ID); got.ClassID != shape.ClassUnset {
		t.Errorf("undo left class %d, want unset", got.ClassID)
	}
}

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenImageResetsDocument(t *testing.T) {
	s := NewState()
	addBox(s, 0, 0)
	addBox(s, 20, 0)
	b := addBox(s, 40, 0)
	s.Shapes.Select(b.ID)
	s.History.RecordAdd([]*shape.Shape{b})

	if err := s.OpenImage(writeTestPNG(t, 8, 8)); err != nil {
		t.Fatal(err)
	}
	if got := s.Shapes.Len(); got != 0 {
		t.Errorf("new image started with %d stale shapes, want 0", got)
	}
	if s.History.CanUndo() {
		t.Error("history should reset on image switch")
	}
	if s.View.ImageSize.Width != 8 || s.View.ImageSize.Height != 8 {
		t.Errorf("view image size = %v, want 8x8", s.View.ImageSize)
	}
}

func TestEventsFire(t *testing.T) {
	s := NewState()
	var changed, modified int
	s.On(EventShapesChanged, func(interface{}) { changed++ })
	s.On(EventModified, func(interface{}) { modified++ })

	b := addBox(s, 0, 0)
	s.Shapes.Select(b.ID)
	s.DeleteSelected()

	if changed == 0 || modified == 0 {
		t.Errorf("events not emitted: changed=%d modified=%d", changed, modified)
	}
}
