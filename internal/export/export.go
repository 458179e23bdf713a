// Package export writes annotation datasets in YOLO, COCO and Pascal VOC
// formats.
package export

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sycamore23/yolo-obb-annotator/internal/class"
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
)

// Item is one annotated image to export.
type Item struct {
	ImagePath string
	Width     int
	Height    int
	Shapes    []*shape.Shape
}

// Stem returns the image filename without directory or extension.
func (it Item) Stem() string {
	base := filepath.Base(it.ImagePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// dataConfig is the data.yaml document consumed by YOLO training tools.
type dataConfig struct {
	Path  string   `yaml:"path"`
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
}

// YOLOOptions controls the YOLO export layout.
type YOLOOptions struct {
	// ValRatio is the fraction of images routed to the validation split,
	// in [0, 1). The split is deterministic per filename.
	ValRatio float64
}

// WriteYOLO writes labels/{train,val}/<stem>.txt label files, classes.txt
// and data.yaml under dir. Shapes with an unset class are skipped.
func WriteYOLO(dir string, items []Item, reg *class.Registry, opts YOLOOptions) error {
	for _, split := range []string{"train", "val"} {
		if err := os.MkdirAll(filepath.Join(dir, "labels", split), 0o755); err != nil {
			return fmt.Errorf("creating export layout: %w", err)
		}
	}

	for _, it := range items {
		split := splitFor(it.Stem(), opts.ValRatio)
		var b strings.Builder
		for _, s := range it.Shapes {
			if s.ClassID == shape.ClassUnset {
				continue
			}
			rec, err := s.ToRecord(it.Width, it.Height)
			if err != nil {
				return fmt.Errorf("exporting %s: %w", it.Stem(), err)
			}
			b.WriteString(rec.String())
			b.WriteByte('\n')
		}
		path := filepath.Join(dir, "labels", split, it.Stem()+".txt")
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("writing label file: %w", err)
		}
	}

	if err := reg.SaveTxt(filepath.Join(dir, "classes.txt")); err != nil {
		return err
	}
	return writeDataYAML(dir, reg)
}

func writeDataYAML(dir string, reg *class.Registry) error {
	names := reg.Names()
	cfg := dataConfig{
		Path:  ".",
		Train: "images/train",
		Val:   "images/val",
		NC:    len(names),
		Names: names,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding data.yaml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("writing data.yaml: %w", err)
	}
	return nil
}

// splitFor routes a stem to train or val deterministically: the same
// filename always lands in the same split regardless of export order.
func splitFor(stem string, valRatio float64) string {
	if valRatio <= 0 {
		return "train"
	}
	h := fnv.New32a()
	h.Write([]byte(stem))
	if float64(h.Sum32()%1000)/1000.0 < valRatio {
		return "val"
	}
	return "train"
}
