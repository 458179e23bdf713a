package annotate

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sycamore23/yolo-obb-annotator/internal/history"
	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

func TestEstimateTransferRecoversKnownAffine(t *testing.T) {
	// Ground truth: rotate 30 degrees, scale 1.5, translate (10, -5).
	theta := 30 * math.Pi / 180
	truth := geometry.AffineTransform{
		A: 1.5 * math.Cos(theta), B: -1.5 * math.Sin(theta), TX: 10,
		C: 1.5 * math.Sin(theta), D: 1.5 * math.Cos(theta), TY: -5,
	}

	var src, dst []geometry.Point2D
	for i := 0; i < 20; i++ {
		p := geometry.Point2D{X: float64(i * 13 % 97), Y: float64(i * 29 % 83)}
		src = append(src, p)
		dst = append(dst, truth.Apply(p))
	}
	// Two gross outliers RANSAC must reject.
	src = append(src, geometry.Point2D{X: 50, Y: 50}, geometry.Point2D{X: 60, Y: 10})
	dst = append(dst, geometry.Point2D{X: 500, Y: 500}, geometry.Point2D{X: -300, Y: 900})

	res, err := EstimateTransfer(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Inliers) < 20 {
		t.Errorf("found %d inliers, want at least 20", len(res.Inliers))
	}
	got := res.Transform
	for _, pair := range [][2]float64{
		{got.A, truth.A}, {got.B, truth.B}, {got.TX, truth.TX},
		{got.C, truth.C}, {got.D, truth.D}, {got.TY, truth.TY},
	} {
		if math.Abs(pair[0]-pair[1]) > 1e-6 {
			t.Fatalf("recovered transform %+v differs from truth %+v", got, truth)
		}
	}
}

func TestEstimateTransferTooFewPoints(t *testing.T) {
	p := []geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}}
	if _, err := EstimateTransfer(p, p); err == nil {
		t.Error("two points should not be enough")
	}
}

func TestTransferShapesRotationFollows(t *testing.T) {
	theta := 90 * math.Pi / 180
	rot := geometry.AffineTransform{
		A: math.Cos(theta), B: -math.Sin(theta), TX: 0,
		C: math.Sin(theta), D: math.Cos(theta), TY: 0,
	}
	s := shape.NewOrientedBox(
		geometry.Point2D{X: 0, Y: 0},
		geometry.Point2D{X: 10, Y: 4},
		15,
	)
	out := TransferShapes([]*shape.Shape{s}, rot)
	if math.Abs(out[0].Rotation-105) > 1e-9 {
		t.Errorf("rotation = %v, want 105", out[0].Rotation)
	}
	if s.Rotation != 15 {
		t.Error("source shape must be untouched")
	}
}

func TestApplyBatchFreshIDsOneUndo(t *testing.T) {
	st := shape.NewStore()
	log := history.NewLog()
	cands := []*shape.Shape{
		shape.NewAxisBox(geometry.Point2D{}, geometry.Point2D{X: 10, Y: 10}),
		shape.NewAxisBox(geometry.Point2D{X: 20, Y: 20}, geometry.Point2D{X: 30, Y: 30}),
	}

	added := ApplyBatch(st, log, cands)
	if st.Len() != 2 {
		t.Fatalf("store has %d shapes, want 2", st.Len())
	}
	for i, a := range added {
		if a.ID == cands[i].ID {
			t.Error("applied shape reuses candidate id")
		}
	}
	cmd, ok := log.Undo()
	if !ok || cmd.Type != history.RemoveBatch || len(cmd.Shapes) != 2 {
		t.Error("batch must revert with a single undo")
	}
}

func TestScanReportsCoverage(t *testing.T) {
	dir := t.TempDir()
	imgDir := filepath.Join(dir, "images")
	labelDir := filepath.Join(dir, "labels")
	for _, d := range []string{imgDir, labelDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(imgDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	label := "0 0.500000 0.500000 0.200000 0.200000\n1 0.100000 0.100000 0.050000 0.050000\n"
	if err := os.WriteFile(filepath.Join(labelDir, "a.txt"), []byte(label), 0o644); err != nil {
		t.Fatal(err)
	}

	results := make(map[string]ScanResult)
	for res := range Scan(context.Background(), imgDir, labelDir) {
		if res.Err != nil {
			t.Fatal(res.Err)
		}
		results[filepath.Base(res.ImagePath)] = res
	}
	if a := results["a.png"]; !a.HasLabels || a.ShapeCount != 2 {
		t.Errorf("a.png = %+v, want 2 labeled shapes", a)
	}
	if b := results["b.png"]; b.HasLabels {
		t.Errorf("b.png = %+v, want no labels", b)
	}
}

func TestScanCancellation(t *testing.T) {
	dir := t.TempDir()
	imgDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		name := filepath.Join(imgDir, string(rune('a'+i))+".png")
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := Scan(ctx, imgDir, dir)
	<-ch
	cancel()
	// The channel must close rather than block forever.
	for range ch {
	}
}

func TestLabelFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.txt")
	s := shape.NewAxisBox(
		geometry.Point2D{X: 100, Y: 50},
		geometry.Point2D{X: 300, Y: 150},
	)
	s.ClassID = 2
	unlabeled := shape.NewAxisBox(geometry.Point2D{}, geometry.Point2D{X: 5, Y: 5})

	if err := SaveLabels(path, []*shape.Shape{s, unlabeled}, 1000, 500); err != nil {
		t.Fatal(err)
	}
	back, skipped, err := LoadLabels(path, 1000, 500)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 0 || len(back) != 1 {
		t.Fatalf("loaded %d shapes (%d skipped), want 1 (unlabeled dropped on save)", len(back), skipped)
	}
	if back[0].ClassID != 2 {
		t.Errorf("class = %d, want 2", back[0].ClassID)
	}
	bb := back[0].BoundingBox()
	if math.Abs(bb.X-100) > 0.01 || math.Abs(bb.Width-200) > 0.01 {
		t.Errorf("bbox = %+v", bb)
	}
}
