package export

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
)

type vocSize struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
	Depth  int `xml:"depth"`
}

type vocBndBox struct {
	XMin int `xml:"xmin"`
	YMin int `xml:"ymin"`
	XMax int `xml:"xmax"`
	YMax int `xml:"ymax"`
}

type vocObject struct {
	Name      string    `xml:"name"`
	Pose      string    `xml:"pose"`
	Truncated int       `xml:"truncated"`
	Difficult int       `xml:"difficult"`
	BndBox    vocBndBox `xml:"bndbox"`
}

type vocAnnotation struct {
	XMLName  xml.Name    `xml:"annotation"`
	Folder   string      `xml:"folder"`
	Filename string      `xml:"filename"`
	Size     vocSize     `xml:"size"`
	Objects  []vocObject `xml:"object"`
}

// WriteVOC writes one Pascal VOC XML file per item under dir. Oriented
// boxes and polygons are reduced to their axis-aligned bounding box, which
// is all the format can carry.
func WriteVOC(dir string, items []Item) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating voc directory: %w", err)
	}
	for _, it := range items {
		ann := vocAnnotation{
			Folder:   filepath.Base(dir),
			Filename: filepath.Base(it.ImagePath),
			Size:     vocSize{Width: it.Width, Height: it.Height, Depth: 3},
		}
		for _, s := range it.Shapes {
			if s.ClassID == shape.ClassUnset {
				continue
			}
			bb := s.BoundingBox()
			ann.Objects = append(ann.Objects, vocObject{
				Name: s.ClassName,
				Pose: "Unspecified",
				BndBox: vocBndBox{
					XMin: int(math.Floor(bb.X)),
					YMin: int(math.Floor(bb.Y)),
					XMax: int(math.Ceil(bb.X + bb.Width)),
					YMax: int(math.Ceil(bb.Y + bb.Height)),
				},
			})
		}
		data, err := xml.MarshalIndent(&ann, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding voc annotation: %w", err)
		}
		path := filepath.Join(dir, it.Stem()+".xml")
		out := append([]byte(xml.Header), data...)
		if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing voc file: %w", err)
		}
	}
	return nil
}
