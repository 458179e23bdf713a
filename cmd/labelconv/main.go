// Command labelconv converts a directory of YOLO label files to COCO or
// Pascal VOC format.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/sycamore23/yolo-obb-annotator/internal/annotate"
	"github.com/sycamore23/yolo-obb-annotator/internal/class"
	"github.com/sycamore23/yolo-obb-annotator/internal/export"
	img "github.com/sycamore23/yolo-obb-annotator/internal/image"
)

func main() {
	imageDir := flag.String("images", "", "Directory of source images")
	labelDir := flag.String("labels", "", "Directory of YOLO label files")
	classFile := flag.String("classes", "", "classes.txt or classes.json")
	format := flag.String("format", "coco", "Output format: coco, voc or yolo")
	out := flag.String("out", "", "Output file (coco) or directory (voc, yolo)")
	valRatio := flag.Float64("val", 0.2, "Validation split ratio for yolo output")
	flag.Parse()

	if *imageDir == "" || *labelDir == "" || *classFile == "" || *out == "" {
		fmt.Println("Usage: labelconv -images <dir> -labels <dir> -classes <file> -format coco|voc|yolo -out <path>")
		os.Exit(1)
	}

	reg, err := class.LoadFile(*classFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load classes: %v\n", err)
		os.Exit(1)
	}

	items, err := collectItems(*imageDir, *labelDir, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to collect items: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Collected %d annotated images\n", len(items))

	switch strings.ToLower(*format) {
	case "coco":
		err = export.WriteCOCO(*out, items, reg)
	case "voc":
		err = export.WriteVOC(*out, items)
	case "yolo":
		err = export.WriteYOLO(*out, items, reg, export.YOLOOptions{ValRatio: *valRatio})
	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q\n", *format)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s output to %s\n", *format, *out)
}

// collectItems pairs each image with its label file and loads the shapes.
func collectItems(imageDir, labelDir string, reg *class.Registry) ([]export.Item, error) {
	paths, err := img.ListDir(imageDir)
	if err != nil {
		return nil, err
	}

	var items []export.Item
	for _, p := range paths {
		w, h, err := imageSize(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", p, err)
			continue
		}

		base := filepath.Base(p)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		labelPath := filepath.Join(labelDir, stem+".txt")
		shapes, skipped, err := annotate.LoadLabels(labelPath, w, h)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "%s: skipped %d malformed lines\n", labelPath, skipped)
		}
		for _, s := range shapes {
			if c := reg.ByID(s.ClassID); c != nil {
				s.ClassName = c.Name
			}
		}
		items = append(items, export.Item{
			ImagePath: p,
			Width:     w,
			Height:    h,
			Shapes:    shapes,
		})
	}
	return items, nil
}

// imageSize decodes only the image header.
func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
