// Package annotate provides bulk annotation helpers: transferring labels
// between registered images, applying machine-generated candidates and
// scanning directories for label coverage.
package annotate

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sycamore23/yolo-obb-annotator/internal/shape"
	"github.com/sycamore23/yolo-obb-annotator/pkg/geometry"
)

// TransferResult describes an estimated mapping between two images.
type TransferResult struct {
	Transform geometry.AffineTransform
	Inliers   []int
	MeanError float64
}

// EstimateTransfer computes the affine transform mapping srcPoints to
// dstPoints with RANSAC, for carrying annotations from one image to
// another view of the same scene.
func EstimateTransfer(srcPoints, dstPoints []geometry.Point2D) (TransferResult, error) {
	if len(srcPoints) != len(dstPoints) {
		return TransferResult{}, fmt.Errorf("point count mismatch: %d vs %d", len(srcPoints), len(dstPoints))
	}
	if len(srcPoints) < 3 {
		return TransferResult{}, fmt.Errorf("need at least 3 points, got %d", len(srcPoints))
	}
	return ransacAffine(srcPoints, dstPoints, 2000, 3.0)
}

func ransacAffine(src, dst []geometry.Point2D, iterations int, threshold float64) (TransferResult, error) {
	n := len(src)
	bestInliers := []int{}
	var bestTransform geometry.AffineTransform

	for iter := 0; iter < iterations; iter++ {
		indices := rand.Perm(n)[:3]

		sample := make([]geometry.Point2D, 3)
		target := make([]geometry.Point2D, 3)
		for i, idx := range indices {
			sample[i] = src[idx]
			target[i] = dst[idx]
		}

		transform, err := affineFromThree(sample, target)
		if err != nil {
			continue
		}

		var inliers []int
		for i := range src {
			if transform.Apply(src[i]).Distance(dst[i]) < threshold {
				inliers = append(inliers, i)
			}
		}
		if len(inliers) > len(bestInliers) {
			bestInliers = inliers
			bestTransform = transform
		}
	}

	if len(bestInliers) < 3 {
		return TransferResult{}, fmt.Errorf("not enough inliers to estimate transform")
	}

	inlierSrc := make([]geometry.Point2D, len(bestInliers))
	inlierDst := make([]geometry.Point2D, len(bestInliers))
	for i, idx := range bestInliers {
		inlierSrc[i] = src[idx]
		inlierDst[i] = dst[idx]
	}
	if refined, err := affineLeastSquares(inlierSrc, inlierDst); err == nil {
		bestTransform = refined
	}

	var total float64
	for i := range bestInliers {
		total += bestTransform.Apply(inlierSrc[i]).Distance(inlierDst[i])
	}
	return TransferResult{
		Transform: bestTransform,
		Inliers:   bestInliers,
		MeanError: total / float64(len(bestInliers)),
	}, nil
}

// affineFromThree solves the exact affine transform for 3 point pairs.
func affineFromThree(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	if len(src) != 3 || len(dst) != 3 {
		return geometry.AffineTransform{}, fmt.Errorf("need exactly 3 points")
	}

	// [x', y'] = [a, b, tx; c, d, ty] * [x, y, 1]
	A := mat.NewDense(6, 6, nil)
	B := mat.NewVecDense(6, nil)

	for i := 0; i < 3; i++ {
		x, y := src[i].X, src[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return geometry.AffineTransform{}, err
	}
	return geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}

// affineLeastSquares solves the overdetermined system for n >= 3 pairs.
func affineLeastSquares(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	n := len(src)
	if n < 3 {
		return geometry.AffineTransform{}, fmt.Errorf("need at least 3 points")
	}

	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)
	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return geometry.AffineTransform{}, err
	}
	return geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}

// TransferShapes maps shapes through the transform, returning fresh copies
// with new geometry. The rotation of oriented boxes follows the transform's
// rotational component.
func TransferShapes(shapes []*shape.Shape, t geometry.AffineTransform) []*shape.Shape {
	deltaDeg := math.Atan2(t.C, t.A) * 180 / math.Pi
	out := make([]*shape.Shape, 0, len(shapes))
	for _, s := range shapes {
		cp := s.Clone()
		cp.SetGeometry(t.ApplyAll(s.Points), s.Rotation+deltaDeg)
		out = append(out, cp)
	}
	return out
}
