package annotate

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	img "github.com/sycamore23/yolo-obb-annotator/internal/image"
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
)

// ScanResult reports the label coverage of one image file.
type ScanResult struct {
	ImagePath  string
	LabelPath  string
	HasLabels  bool
	ShapeCount int
	Err        error
}

// Scan walks the image directory in the background and reports, per image,
// whether a matching label file exists and how many records it holds.
// Results arrive on the returned channel, which closes when the scan ends
// or ctx is cancelled. The scan only reads files; applying anything it
// finds stays with the caller's goroutine.
func Scan(ctx context.Context, imageDir, labelDir string) <-chan ScanResult {
	out := make(chan ScanResult)
	go func() {
		defer close(out)
		paths, err := img.ListDir(imageDir)
		if err != nil {
			select {
			case out <- ScanResult{Err: err}:
			case <-ctx.Done():
			}
			return
		}
		for _, p := range paths {
			res := scanOne(p, labelDir)
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func scanOne(imagePath, labelDir string) ScanResult {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	labelPath := filepath.Join(labelDir, stem+".txt")

	res := ScanResult{ImagePath: imagePath, LabelPath: labelPath}
	f, err := os.Open(labelPath)
	if err != nil {
		if !os.IsNotExist(err) {
			res.Err = err
		}
		return res
	}
	defer f.Close()

	res.HasLabels = true
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if _, err := shape.ParseRecord(line); err == nil {
			res.ShapeCount++
		}
	}
	if err := sc.Err(); err != nil {
		res.Err = err
	}
	return res
}

// LoadLabels reads a YOLO label file into shapes scaled to the image size.
// Malformed lines are skipped; the count of skipped lines is returned.
func LoadLabels(path string, imgW, imgH int) ([]*shape.Shape, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var shapes []*shape.Shape
	skipped := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec, err := shape.ParseRecord(line)
		if err != nil {
			skipped++
			continue
		}
		s, err := shape.FromRecord(rec, imgW, imgH)
		if err != nil {
			skipped++
			continue
		}
		shapes = append(shapes, s)
	}
	if err := sc.Err(); err != nil {
		return shapes, skipped, err
	}
	return shapes, skipped, nil
}

// SaveLabels writes shapes to a YOLO label file. Shapes with an unset
// class are skipped so half-labeled work never poisons the dataset.
func SaveLabels(path string, shapes []*shape.Shape, imgW, imgH int) error {
	var b strings.Builder
	for _, s := range shapes {
		if s.ClassID == shape.ClassUnset {
			continue
		}
		rec, err := s.ToRecord(imgW, imgH)
		if err != nil {
			return err
		}
		b.WriteString(rec.String())
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
