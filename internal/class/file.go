package class

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadFile reads a class list from classes.txt or classes.json, dispatching
// on the file extension.
func LoadFile(path string) (*Registry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	default:
		return loadTxt(path)
	}
}

// loadTxt parses the plain-text class list. Accepted line forms:
//
//	name
//	id:name
//	id<TAB>name
//	name,#RRGGBB
//
// Blank lines and lines starting with # are ignored. Lines without an
// explicit id get sequential ids in file order.
func loadTxt(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening class file: %w", err)
	}
	defer f.Close()

	r := NewRegistry()
	next := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id := -1
		name := line
		color := ""

		if i := strings.IndexAny(line, ":\t"); i > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(line[:i])); err == nil {
				id = n
				name = strings.TrimSpace(line[i+1:])
			}
		}
		if i := strings.LastIndex(name, ","); i > 0 {
			tail := strings.TrimSpace(name[i+1:])
			if strings.HasPrefix(tail, "#") {
				color = tail
				name = strings.TrimSpace(name[:i])
			}
		}
		if name == "" {
			continue
		}
		if id < 0 {
			id = next
		}
		if id >= next {
			next = id + 1
		}
		r.Add(&Class{ID: id, Name: name, Color: color, Visible: true})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading class file: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// loadJSON parses the JSON class list. Accepted document forms: a bare
// array of class objects, an object with a "classes" array, or a flat
// name-to-id map.
func loadJSON(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading class file: %w", err)
	}

	r := NewRegistry()

	var list []Class
	if err := json.Unmarshal(data, &list); err == nil {
		for i := range list {
			c := list[i]
			c.Visible = true
			r.Add(&c)
		}
		return r, r.Validate()
	}

	var wrapped struct {
		Classes []Class `json:"classes"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Classes) > 0 {
		for i := range wrapped.Classes {
			c := wrapped.Classes[i]
			c.Visible = true
			r.Add(&c)
		}
		return r, r.Validate()
	}

	var byName map[string]int
	if err := json.Unmarshal(data, &byName); err == nil {
		for name, id := range byName {
			r.Add(&Class{ID: id, Name: name, Visible: true})
		}
		return r, r.Validate()
	}

	return nil, fmt.Errorf("unrecognized class file format: %s", path)
}

// SaveTxt writes one class name per line ordered by id.
func (r *Registry) SaveTxt(path string) error {
	var b strings.Builder
	for _, name := range r.Names() {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing class file: %w", err)
	}
	return nil
}

// SaveJSON writes the class list as a JSON array with ids and colors.
func (r *Registry) SaveJSON(path string) error {
	data, err := json.MarshalIndent(r.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding class list: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing class file: %w", err)
	}
	return nil
}
