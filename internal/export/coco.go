package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sycamore23/yolo-obb-annotator/internal/class"
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

type cocoInfo struct {
	Description string `json:"description"`
	DateCreated string `json:"date_created"`
}

type cocoImage struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type cocoCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type cocoAnnotation struct {
	ID           int         `json:"id"`
	ImageID      int         `json:"image_id"`
	CategoryID   int         `json:"category_id"`
	BBox         [4]float64  `json:"bbox"`
	Area         float64     `json:"area"`
	Segmentation [][]float64 `json:"segmentation"`
	IsCrowd      int         `json:"iscrowd"`
}

type cocoDoc struct {
	Info        cocoInfo         `json:"info"`
	Images      []cocoImage      `json:"images"`
	Annotations []cocoAnnotation `json:"annotations"`
	Categories  []cocoCategory   `json:"categories"`
}

// WriteCOCO writes a single COCO instances JSON file covering all items.
// Category ids are the class ids shifted by one, since COCO ids start at 1.
func WriteCOCO(path string, items []Item, reg *class.Registry) error {
	doc := cocoDoc{
		Info: cocoInfo{
			Description: "exported annotations",
			DateCreated: time.Now().Format("2006-01-02"),
		},
	}
	for _, c := range reg.All() {
		doc.Categories = append(doc.Categories, cocoCategory{ID: c.ID + 1, Name: c.Name})
	}

	annID := 1
	for i, it := range items {
		imgID := i + 1
		doc.Images = append(doc.Images, cocoImage{
			ID:       imgID,
			FileName: it.Stem() + ".jpg",
			Width:    it.Width,
			Height:   it.Height,
		})
		for _, s := range it.Shapes {
			if s.ClassID == shape.ClassUnset {
				continue
			}
			bb := s.BoundingBox()
			seg := make([]float64, 0, len(s.Points)*2)
			for _, p := range s.Points {
				seg = append(seg, p.X, p.Y)
			}
			doc.Annotations = append(doc.Annotations, cocoAnnotation{
				ID:           annID,
				ImageID:      imgID,
				CategoryID:   s.ClassID + 1,
				BBox:         [4]float64{bb.X, bb.Y, bb.Width, bb.Height},
				Area:         geometry.PolygonArea(s.Points),
				Segmentation: [][]float64{seg},
			})
			annID++
		}
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding coco document: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing coco file: %w", err)
	}
	return nil
}
