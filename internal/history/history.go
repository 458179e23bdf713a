// Package history implements a batch undo/redo log over annotation shapes.
// Entries hold deep copies of the shapes involved, so later edits to the
// live document never corrupt recorded state.
package history

import (
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
)

// ActionKind names the kind of edit a log entry records.
type ActionKind int

const (
	ActionAdd ActionKind = iota
	ActionRemove
	ActionModify
)

// String returns the action name used in status messages.
func (k ActionKind) String() string {
	switch k {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionModify:
		return "modify"
	}
	return "unknown"
}

// Entry records one reversible batch edit.
type Entry struct {
	Kind ActionKind

	// Shapes holds post-edit copies for add and modify, and the removed
	// copies for remove.
	Shapes []*shape.Shape

	// PriorShapes holds pre-edit copies for modify entries.
	PriorShapes []*shape.Shape

	// PriorIndices holds, for remove entries, the list positions the
	// shapes occupied so undo can reinsert them where they were.
	PriorIndices []int
}

// CommandType tells the caller how to apply an undo or redo result.
type CommandType int

const (
	// AddBatch inserts Shapes back into the document at Indices.
	AddBatch CommandType = iota
	// RemoveBatch deletes the shapes with Shapes' ids from the document.
	RemoveBatch
	// ModifyBatch overwrites geometry and class of matching ids with
	// the copies in Shapes.
	ModifyBatch
)

// Command is the result of an undo or redo step. The log never touches the
// document itself; the caller applies the command to its shape store.
type Command struct {
	Type    CommandType
	Shapes  []*shape.Shape
	Indices []int

	// Description is a short past-tense summary, e.g. "undid add".
	Description string
}

// Log is a two-stack undo/redo history. It is not safe for concurrent use;
// all access must come from the owning goroutine.
type Log struct {
	undo []Entry
	redo []Entry
}

// NewLog returns an empty history log.
func NewLog() *Log {
	return &Log{}
}

// RecordAdd records that the given shapes were added to the document.
func (l *Log) RecordAdd(shapes []*shape.Shape) {
	if len(shapes) == 0 {
		return
	}
	l.push(Entry{Kind: ActionAdd, Shapes: shape.Clones(shapes)})
}

// RecordRemove records that the given shapes were removed. indices are the
// positions the shapes held before removal, aligned with shapes.
func (l *Log) RecordRemove(shapes []*shape.Shape, indices []int) {
	if len(shapes) == 0 {
		return
	}
	idx := make([]int, len(indices))
	copy(idx, indices)
	l.push(Entry{Kind: ActionRemove, Shapes: shape.Clones(shapes), PriorIndices: idx})
}

// RecordModify records a geometry or class change. before and after are the
// pre- and post-edit states, aligned by position and sharing ids.
func (l *Log) RecordModify(before, after []*shape.Shape) {
	if len(before) == 0 || len(before) != len(after) {
		return
	}
	l.push(Entry{
		Kind:        ActionModify,
		Shapes:      shape.Clones(after),
		PriorShapes: shape.Clones(before),
	})
}

// push appends to the undo stack and invalidates the redo stack.
func (l *Log) push(e Entry) {
	l.undo = append(l.undo, e)
	l.redo = nil
}

// CanUndo reports whether an undo step is available.
func (l *Log) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// Undo pops the newest entry and returns the command that reverses it.
// Returns false when the log is empty.
func (l *Log) Undo() (Command, bool) {
	if len(l.undo) == 0 {
		return Command{}, false
	}
	e := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	l.redo = append(l.redo, e)

	switch e.Kind {
	case ActionAdd:
		return Command{
			Type:        RemoveBatch,
			Shapes:      shape.Clones(e.Shapes),
			Description: "undid add",
		}, true
	case ActionRemove:
		idx := make([]int, len(e.PriorIndices))
		copy(idx, e.PriorIndices)
		return Command{
			Type:        AddBatch,
			Shapes:      shape.Clones(e.Shapes),
			Indices:     idx,
			Description: "undid remove",
		}, true
	default:
		return Command{
			Type:        ModifyBatch,
			Shapes:      shape.Clones(e.PriorShapes),
			Description: "undid modify",
		}, true
	}
}

// Redo reapplies the most recently undone entry.
func (l *Log) Redo() (Command, bool) {
	if len(l.redo) == 0 {
		return Command{}, false
	}
	e := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.undo = append(l.undo, e)

	switch e.Kind {
	case ActionAdd:
		return Command{
			Type:        AddBatch,
			Shapes:      shape.Clones(e.Shapes),
			Description: "redid add",
		}, true
	case ActionRemove:
		return Command{
			Type:        RemoveBatch,
			Shapes:      shape.Clones(e.Shapes),
			Description: "redid remove",
		}, true
	default:
		return Command{
			Type:        ModifyBatch,
			Shapes:      shape.Clones(e.Shapes),
			Description: "redid modify",
		}, true
	}
}

// Clear drops all history, e.g. when a new image is loaded.
func (l *Log) Clear() {
	l.undo = nil
	l.redo = nil
}

// Depth returns the number of undoable entries.
func (l *Log) Depth() int { return len(l.undo) }
