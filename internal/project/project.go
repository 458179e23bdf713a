// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// File represents an annotation project file (.obbproj).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Paths are relative to the project file unless absolute.
	ImageDir  string   `json:"image_dir,omitempty"`
	LabelDir  string   `json:"label_dir,omitempty"`
	ClassFile string   `json:"class_file,omitempty"`
	LastImage string   `json:"last_image,omitempty"`
	Images    []string `json:"images,omitempty"`

	Settings Settings `json:"settings,omitempty"`
}

// Settings holds user preferences stored with the project.
type Settings struct {
	DefaultTool   string  `json:"default_tool,omitempty"`
	ValSplitRatio float64 `json:"val_split_ratio,omitempty"`
	AutoSave      bool    `json:"auto_save"`
	BackupKeep    int     `json:"backup_keep,omitempty"`
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Settings: Settings{
			DefaultTool:   "draw-obox",
			ValSplitRatio: 0.2,
			AutoSave:      true,
			BackupKeep:    5,
		},
	}
}

// Load loads a project from an .obbproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parsing project file: %w", err)
	}
	if proj.Version < 1 {
		proj.Version = 1
	}
	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetImageDir sets the image directory path (relative to project).
func (p *File) SetImageDir(projectPath, dir string) {
	p.ImageDir = relTo(projectPath, dir)
	p.Modified = time.Now()
}

// SetLabelDir sets the label directory path (relative to project).
func (p *File) SetLabelDir(projectPath, dir string) {
	p.LabelDir = relTo(projectPath, dir)
	p.Modified = time.Now()
}

func relTo(projectPath, target string) string {
	rel, err := filepath.Rel(filepath.Dir(projectPath), target)
	if err != nil {
		return target
	}
	return rel
}

func (p *File) resolve(projectPath, stored string) string {
	if stored == "" {
		return ""
	}
	if filepath.IsAbs(stored) {
		return stored
	}
	return filepath.Join(filepath.Dir(projectPath), stored)
}

// GetImageDir returns the absolute image directory path.
func (p *File) GetImageDir(projectPath string) string {
	return p.resolve(projectPath, p.ImageDir)
}

// GetLabelDir returns the absolute label directory path. Defaults to a
// "labels" directory next to the image directory.
func (p *File) GetLabelDir(projectPath string) string {
	if p.LabelDir == "" {
		imgDir := p.GetImageDir(projectPath)
		if imgDir == "" {
			return ""
		}
		return filepath.Join(filepath.Dir(imgDir), "labels")
	}
	return p.resolve(projectPath, p.LabelDir)
}

// GetClassFile returns the absolute class file path. Defaults to
// classes.txt in the label directory.
func (p *File) GetClassFile(projectPath string) string {
	if p.ClassFile == "" {
		labelDir := p.GetLabelDir(projectPath)
		if labelDir == "" {
			return ""
		}
		return filepath.Join(labelDir, "classes.txt")
	}
	return p.resolve(projectPath, p.ClassFile)
}

// LabelPathFor returns the label file path for an image: same stem as the
// image, .txt extension, in the label directory.
func (p *File) LabelPathFor(projectPath, imagePath string) string {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.GetLabelDir(projectPath), stem+".txt")
}

// Backup copies the file at path into a timestamped sibling backup and
// prunes old backups beyond keep. Missing originals are not an error.
func Backup(path string, keep int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	stamp := time.Now().Format("20060102-150405")
	bak := fmt.Sprintf("%s.%s.bak", path, stamp)
	if err := os.WriteFile(bak, data, 0644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return pruneBackups(path, keep)
}

// pruneBackups removes the oldest backups of path beyond keep. The
// timestamped names sort chronologically.
func pruneBackups(path string, keep int) error {
	if keep <= 0 {
		keep = 1
	}
	matches, err := filepath.Glob(path + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) <= keep {
		return nil
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-keep] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("pruning backup: %w", err)
		}
	}
	return nil
}
