// Package app provides application lifecycle management, state, and events.
package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sycamore23/yolo-obb-annotator/internal/annotate"
	"github.com/sycamore23/yolo-obb-annotator/internal/class"
	"github.com/sycamore23/yolo-obb-annotator/internal/controller"
	"github.com/sycamore23/yolo-obb-annotator/internal/history"
	"github.com/sycamore23/yolo-obb-annotator/internal/image"
	"github.com/sycamore23/yolo-obb-annotator/internal/project"
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
	"github.com/sycamore23/yolo-obb-annotator/internal/view"
)

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventImageLoaded
	EventShapesChanged
	EventSelectionChanged
	EventClassesChanged
	EventModified
	EventHistoryChanged
	EventStatus
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the application state: the open project, the current image
// and its shapes, and the editing machinery. All mutation happens on the
// UI goroutine; the mutex only guards the listener table, which background
// workers may touch.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Project     *project.File
	Modified    bool

	// Current image
	Image      *image.Layer
	ImageIndex int

	// Editing
	Shapes     *shape.Store
	History    *history.Log
	Clipboard  *history.Clipboard
	View       *view.Transform
	Controller *controller.Controller
	Classes    *class.Registry

	listeners map[EventType][]EventListener
}

// NewState creates a new application state with an empty document.
func NewState() *State {
	s := &State{
		Shapes:    shape.NewStore(),
		History:   history.NewLog(),
		Clipboard: history.NewClipboard(),
		View:      view.New(0, 0),
		Classes:   class.NewRegistry(),
		listeners: make(map[EventType][]EventListener),
	}
	s.Controller = controller.New(s.Shapes, s.History, s.View)
	s.Controller.OnEdit = func(desc string) {
		s.SetModified(true)
		s.Emit(EventShapesChanged, desc)
		s.Emit(EventHistoryChanged, nil)
	}
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the document as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.Modified = modified
	s.Emit(EventModified, modified)
}

// OpenImage loads an image, replacing the current document. Unsaved shapes
// are the caller's problem; the UI confirms before calling.
func (s *State) OpenImage(path string) error {
	layer, err := image.Load(path)
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}
	s.Image = layer
	s.View.ImageSize.Width = float64(layer.Width)
	s.View.ImageSize.Height = float64(layer.Height)

	s.Shapes.Clear()
	s.History.Clear()
	s.Modified = false

	slog.Info("image loaded", "path", path, "width", layer.Width, "height", layer.Height)
	s.Emit(EventImageLoaded, path)
	return nil
}

// LoadLabelsForImage loads the label file for the current image, if any.
func (s *State) LoadLabelsForImage(labelPath string) error {
	if s.Image == nil {
		return fmt.Errorf("no image loaded")
	}
	shapes, skipped, err := annotate.LoadLabels(labelPath, s.Image.Width, s.Image.Height)
	if err != nil {
		return err
	}
	for _, sh := range shapes {
		if c := s.Classes.ByID(sh.ClassID); c != nil {
			sh.ClassName = c.Name
		}
		s.Shapes.Add(sh)
	}
	if skipped > 0 {
		slog.Warn("skipped malformed label lines", "path", labelPath, "count", skipped)
	}
	s.RecountClasses()
	s.Emit(EventShapesChanged, "loaded")
	return nil
}

// SaveLabelsForImage writes the current shapes to a label file.
func (s *State) SaveLabelsForImage(labelPath string) error {
	if s.Image == nil {
		return fmt.Errorf("no image loaded")
	}
	if err := project.Backup(labelPath, s.backupKeep()); err != nil {
		slog.Warn("label backup failed", "path", labelPath, "error", err)
	}
	if err := annotate.SaveLabels(labelPath, s.Shapes.All(), s.Image.Width, s.Image.Height); err != nil {
		return fmt.Errorf("saving labels: %w", err)
	}
	s.SetModified(false)
	s.Emit(EventProjectSaved, labelPath)
	return nil
}

func (s *State) backupKeep() int {
	if s.Project != nil && s.Project.Settings.BackupKeep > 0 {
		return s.Project.Settings.BackupKeep
	}
	return 5
}

// RecountClasses refreshes per-class shape counts.
func (s *State) RecountClasses() {
	s.Classes.ResetCounts()
	for _, sh := range s.Shapes.All() {
		s.Classes.Bump(sh.ClassID)
	}
	s.Emit(EventClassesChanged, nil)
}
