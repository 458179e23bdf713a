package app

import (
	"log/slog"

	"github.com/sycamore23/yolo-obb-annotator/internal/history"
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
)

// applyCommand applies an undo/redo command to the shape store.
func (s *State) applyCommand(cmd history.Command) {
	switch cmd.Type {
	case history.RemoveBatch:
		for _, sh := range cmd.Shapes {
			s.Shapes.Remove(sh.ID)
		}
	case history.AddBatch:
		for i, sh := range cmd.Shapes {
			if i < len(cmd.Indices) && cmd.Indices[i] >= 0 {
				s.Shapes.InsertAt(cmd.Indices[i], sh)
			} else {
				s.Shapes.Add(sh)
			}
		}
	case history.ModifyBatch:
		for _, sh := range cmd.Shapes {
			s.Shapes.Replace(sh)
		}
	}
	s.SetModified(true)
	s.Emit(EventShapesChanged, cmd.Description)
	s.Emit(EventHistoryChanged, nil)
}

// Undo reverses the last edit. Returns the status description, empty when
// there was nothing to undo.
func (s *State) Undo() string {
	cmd, ok := s.History.Undo()
	if !ok {
		return ""
	}
	s.applyCommand(cmd)
	slog.Debug("undo", "action", cmd.Description)
	return cmd.Description
}

// Redo reapplies the last undone edit.
func (s *State) Redo() string {
	cmd, ok := s.History.Redo()
	if !ok {
		return ""
	}
	s.applyCommand(cmd)
	slog.Debug("redo", "action", cmd.Description)
	return cmd.Description
}

// DeleteSelected removes the selected shapes as one undoable batch.
func (s *State) DeleteSelected() int {
	sel := s.Shapes.Selected()
	if len(sel) == 0 {
		return 0
	}
	indices := make([]int, len(sel))
	for i, sh := range sel {
		indices[i] = s.Shapes.IndexOf(sh.ID)
	}
	s.History.RecordRemove(sel, indices)
	for _, sh := range sel {
		s.Shapes.Remove(sh.ID)
	}
	s.SetModified(true)
	s.Emit(EventShapesChanged, "deleted")
	s.Emit(EventHistoryChanged, nil)
	return len(sel)
}

// CopySelected places deep copies of the selection on the clipboard.
func (s *State) CopySelected() int {
	sel := s.Shapes.Selected()
	s.Clipboard.Copy(sel)
	return len(sel)
}

// Paste adds clipboard shapes to the document with fresh ids, selects
// them, and records the paste as one undoable add.
func (s *State) Paste() int {
	pasted := s.Clipboard.Paste()
	if len(pasted) == 0 {
		return 0
	}
	s.Shapes.ClearSelection()
	for _, sh := range pasted {
		sh.Selected = true
		s.Shapes.Add(sh)
	}
	s.History.RecordAdd(pasted)
	s.SetModified(true)
	s.Emit(EventShapesChanged, "pasted")
	s.Emit(EventHistoryChanged, nil)
	s.Emit(EventSelectionChanged, nil)
	return len(pasted)
}

// AssignClass sets the class of all selected shapes, recording one
// undoable modify batch.
func (s *State) AssignClass(id int, name string) int {
	sel := s.Shapes.Selected()
	if len(sel) == 0 {
		return 0
	}
	before := shape.Clones(sel)
	for _, sh := range sel {
		sh.ClassID = id
		sh.ClassName = name
		sh.Touch()
	}
	s.History.RecordModify(before, sel)
	s.RecountClasses()
	s.SetModified(true)
	s.Emit(EventShapesChanged, "relabeled")
	s.Emit(EventHistoryChanged, nil)
	return len(sel)
}
