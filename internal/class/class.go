// Package class manages the label classes of a dataset: ids, names,
// display colors and per-class counts.
package class

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/sycamore23/yolo-obb-annotator/pkg/colorutil"
)

// Class is one label class.
type Class struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"` // "#RRGGBB"
	Visible bool   `json:"visible"`

	// Count is the number of shapes currently carrying this class. It is
	// maintained by the registry, not persisted.
	Count int `json:"-"`
}

// RGBA returns the display color, falling back to the palette color for
// the class id when none is set or it fails to parse.
func (c *Class) RGBA() color.RGBA {
	if c.Color != "" {
		if col, err := colorutil.ParseHex(c.Color); err == nil {
			return col
		}
	}
	return colorutil.ForIndex(c.ID)
}

// Registry holds the class list for a project. Not safe for concurrent
// use; the owning goroutine serializes access.
type Registry struct {
	classes []*Class
	byID    map[int]*Class
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int]*Class)}
}

// Len returns the number of classes.
func (r *Registry) Len() int { return len(r.classes) }

// All returns the classes ordered by id.
func (r *Registry) All() []*Class {
	out := make([]*Class, len(r.classes))
	copy(out, r.classes)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByID returns the class with the given id, or nil.
func (r *Registry) ByID(id int) *Class { return r.byID[id] }

// ByName returns the first class with the given name, or nil.
func (r *Registry) ByName(name string) *Class {
	for _, c := range r.classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Add registers a class. An existing class with the same id is replaced.
func (r *Registry) Add(c *Class) {
	if prev, ok := r.byID[c.ID]; ok {
		for i, it := range r.classes {
			if it == prev {
				r.classes[i] = c
				break
			}
		}
	} else {
		r.classes = append(r.classes, c)
	}
	if c.Color == "" {
		c.Color = colorutil.ToHex(colorutil.ForIndex(c.ID))
	}
	r.byID[c.ID] = c
}

// Ensure returns the class with the given name, creating it with the next
// free id when absent.
func (r *Registry) Ensure(name string) *Class {
	if c := r.ByName(name); c != nil {
		return c
	}
	c := &Class{ID: r.nextID(), Name: name, Visible: true}
	r.Add(c)
	return c
}

func (r *Registry) nextID() int {
	id := 0
	for _, c := range r.classes {
		if c.ID >= id {
			id = c.ID + 1
		}
	}
	return id
}

// Remove deletes a class by id.
func (r *Registry) Remove(id int) bool {
	c, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	for i, it := range r.classes {
		if it == c {
			r.classes = append(r.classes[:i], r.classes[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the class names ordered by id, suitable for classes.txt.
func (r *Registry) Names() []string {
	all := r.All()
	out := make([]string, len(all))
	for i, c := range all {
		out[i] = c.Name
	}
	return out
}

// ResetCounts zeroes all per-class counts.
func (r *Registry) ResetCounts() {
	for _, c := range r.classes {
		c.Count = 0
	}
}

// Bump increments the count of the class with the given id.
func (r *Registry) Bump(id int) {
	if c := r.byID[id]; c != nil {
		c.Count++
	}
}

// Validate checks ids are unique and names non-empty.
func (r *Registry) Validate() error {
	seen := make(map[string]bool)
	for _, c := range r.classes {
		if c.Name == "" {
			return fmt.Errorf("class %d has an empty name", c.ID)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate class name %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
