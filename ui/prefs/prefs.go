// Package prefs persists per-user annotator settings between sessions.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// settings is the on-disk shape of the preferences file. Fields map to
// what the annotator actually restores on startup.
type settings struct {
	LastImage      string `json:"last_image"`
	LastDirectory  string `json:"last_directory"`
	DefaultTool    string `json:"default_tool"`
	AutoLoadLabels bool   `json:"auto_load_labels"`
	WindowWidth    int    `json:"window_width"`
	WindowHeight   int    `json:"window_height"`
}

// Prefs holds the loaded settings plus the path they round-trip through.
type Prefs struct {
	mu   sync.Mutex
	path string
	s    settings
}

func defaults() settings {
	return settings{
		DefaultTool:    "select",
		AutoLoadLabels: true,
		WindowWidth:    1280,
		WindowHeight:   800,
	}
}

// Load reads ~/.config/yolo-obb-annotator/preferences.json, falling back
// to defaults when the file is missing or unreadable.
func Load() *Prefs {
	p := &Prefs{s: defaults()}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	p.path = filepath.Join(configDir, "yolo-obb-annotator", prefsFile)

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.s); err != nil {
		p.s = defaults()
	}
	return p
}

// Save writes the settings back to disk, creating the config directory
// on first use.
func (p *Prefs) Save() error {
	p.mu.Lock()
	data, err := json.MarshalIndent(p.s, "", "  ")
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// LastImage is the image open when the previous session ended.
func (p *Prefs) LastImage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s.LastImage
}

func (p *Prefs) SetLastImage(path string) {
	p.mu.Lock()
	p.s.LastImage = path
	p.mu.Unlock()
}

// LastDirectory seeds the file-open dialog.
func (p *Prefs) LastDirectory() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s.LastDirectory
}

func (p *Prefs) SetLastDirectory(dir string) {
	p.mu.Lock()
	p.s.LastDirectory = dir
	p.mu.Unlock()
}

// DefaultTool names the tool selected on startup: "select", "box",
// "obox" or "polygon". Unknown values mean "select".
func (p *Prefs) DefaultTool() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s.DefaultTool
}

func (p *Prefs) SetDefaultTool(name string) {
	p.mu.Lock()
	p.s.DefaultTool = name
	p.mu.Unlock()
}

// AutoLoadLabels reports whether opening an image also loads its sibling
// label file.
func (p *Prefs) AutoLoadLabels() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s.AutoLoadLabels
}

func (p *Prefs) SetAutoLoadLabels(on bool) {
	p.mu.Lock()
	p.s.AutoLoadLabels = on
	p.mu.Unlock()
}

// WindowSize is the main window geometry from the previous session.
func (p *Prefs) WindowSize() (w, h int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s.WindowWidth, p.s.WindowHeight
}

func (p *Prefs) SetWindowSize(w, h int) {
	p.mu.Lock()
	if w > 0 && h > 0 {
		p.s.WindowWidth, p.s.WindowHeight = w, h
	}
	p.mu.Unlock()
}
