// Package image provides image loading for the annotation canvas.
package image

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// SupportedExtensions lists the image file extensions the editor opens.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}

// IsSupported reports whether the path has a recognized image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Layer represents the image being annotated.
type Layer struct {
	Path    string      // Original file path
	Image   image.Image // Loaded image data
	Width   int
	Height  int
	Visible bool
	Opacity float64 // 0.0 - 1.0
}

// NewLayer creates a new Layer with default settings.
func NewLayer() *Layer {
	return &Layer{
		Visible: true,
		Opacity: 1.0,
	}
}

// Load loads an image from the specified path and returns a Layer.
func Load(path string) (*Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	layer := NewLayer()
	layer.Path = path
	layer.Image = img
	b := img.Bounds()
	layer.Width = b.Dx()
	layer.Height = b.Dy()
	return layer, nil
}

// ListDir returns the supported image files directly under dir, sorted by
// the filesystem's directory order as returned by os.ReadDir (name order).
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading image directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsSupported(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
