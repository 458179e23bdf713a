package annotate

import (
	"github.com/google/uuid"

	"github.com/sycamore23/yolo-obb-annotator/internal/history"
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
)

// ApplyBatch adds candidate shapes to the store as a single undoable batch.
// Candidates get fresh ids so repeated applications never collide, and the
// whole batch reverts with one undo. Returns the shapes actually added.
func ApplyBatch(store *shape.Store, log *history.Log, candidates []*shape.Shape) []*shape.Shape {
	if len(candidates) == 0 {
		return nil
	}
	added := make([]*shape.Shape, 0, len(candidates))
	for _, c := range candidates {
		cp := c.Clone()
		cp.ID = uuid.NewString()
		cp.Selected = false
		store.Add(cp)
		added = append(added, cp)
	}
	log.RecordAdd(added)
	return added
}
