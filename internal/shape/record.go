package shape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

// Record is the normalized persistence form of a shape: a class id plus
// coordinates normalized to the image width/height at fixed 6-decimal
// precision. An axis box serializes as "class xc yc w h"; oriented boxes
// and polygons serialize their flattened corner list.
type Record struct {
	ClassID int
	Values  []float64
	Kind    Kind
}

// ToRecord converts a shape into its normalized record for an image of the
// given pixel size.
func (s *Shape) ToRecord(imgW, imgH int) (Record, error) {
	if imgW <= 0 || imgH <= 0 {
		return Record{}, fmt.Errorf("invalid image size %dx%d", imgW, imgH)
	}
	w := float64(imgW)
	h := float64(imgH)

	switch s.Kind {
	case AxisBox:
		box := s.BoundingBox()
		return Record{
			ClassID: s.ClassID,
			Kind:    AxisBox,
			Values: []float64{
				round6((box.X + box.Width/2) / w),
				round6((box.Y + box.Height/2) / h),
				round6(box.Width / w),
				round6(box.Height / h),
			},
		}, nil

	case OrientedBox:
		if len(s.Points) != 4 {
			return Record{}, fmt.Errorf("oriented box has %d points, want 4", len(s.Points))
		}
		return Record{ClassID: s.ClassID, Kind: OrientedBox, Values: flatten(s.Points, w, h)}, nil

	case Polygon:
		if len(s.Points) < 3 {
			return Record{}, fmt.Errorf("polygon has %d points, want at least 3", len(s.Points))
		}
		return Record{ClassID: s.ClassID, Kind: Polygon, Values: flatten(s.Points, w, h)}, nil

	default:
		return Record{}, fmt.Errorf("unknown shape kind %d", s.Kind)
	}
}

// FromRecord reconstructs a shape (with a fresh id) from a normalized
// record for an image of the given pixel size.
func FromRecord(rec Record, imgW, imgH int) (*Shape, error) {
	if imgW <= 0 || imgH <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", imgW, imgH)
	}
	w := float64(imgW)
	h := float64(imgH)

	switch rec.Kind {
	case AxisBox:
		if len(rec.Values) != 4 {
			return nil, fmt.Errorf("axis box record has %d values, want 4", len(rec.Values))
		}
		xc, yc := rec.Values[0]*w, rec.Values[1]*h
		bw, bh := rec.Values[2]*w, rec.Values[3]*h
		s := NewAxisBox(
			geometry.Point2D{X: xc - bw/2, Y: yc - bh/2},
			geometry.Point2D{X: xc + bw/2, Y: yc + bh/2},
		)
		s.ClassID = rec.ClassID
		return s, nil

	case OrientedBox, Polygon:
		if len(rec.Values) < 6 || len(rec.Values)%2 != 0 {
			return nil, fmt.Errorf("record has %d values, want an even count of at least 6", len(rec.Values))
		}
		if rec.Kind == OrientedBox && len(rec.Values) != 8 {
			return nil, fmt.Errorf("oriented box record has %d values, want 8", len(rec.Values))
		}
		pts := make([]geometry.Point2D, 0, len(rec.Values)/2)
		for i := 0; i < len(rec.Values); i += 2 {
			pts = append(pts, geometry.Point2D{X: rec.Values[i] * w, Y: rec.Values[i+1] * h})
		}
		s := New(rec.Kind, pts)
		s.ClassID = rec.ClassID
		return s, nil

	default:
		return nil, fmt.Errorf("unknown record kind %d", rec.Kind)
	}
}

// String formats the record as one label-file line.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(r.ClassID))
	for _, v := range r.Values {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(v, 'f', 6, 64))
	}
	return b.String()
}

// ParseRecord parses one label-file line. A 5-token line is an axis box,
// a 9-token line an oriented box, any other even coordinate count a
// polygon.
func ParseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Record{}, fmt.Errorf("record %q has %d fields, want at least 5", line, len(fields))
	}
	classID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("bad class id in %q: %w", line, err)
	}
	values := make([]float64, len(fields)-1)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Record{}, fmt.Errorf("bad coordinate in %q: %w", line, err)
		}
		values[i] = v
	}

	kind := Polygon
	switch len(values) {
	case 4:
		kind = AxisBox
	case 8:
		kind = OrientedBox
	default:
		if len(values)%2 != 0 {
			return Record{}, fmt.Errorf("record %q has odd coordinate count", line)
		}
	}
	return Record{ClassID: classID, Kind: kind, Values: values}, nil
}

func flatten(points []geometry.Point2D, w, h float64) []float64 {
	out := make([]float64, 0, len(points)*2)
	for _, p := range points {
		out = append(out, round6(p.X/w), round6(p.Y/h))
	}
	return out
}

func round6(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}
