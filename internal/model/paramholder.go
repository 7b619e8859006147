package model

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ImageDescription is the per-image affine relating a non-reference image's
// frame to the global reference frame: pixel scale, rotation (degrees), flux
// scale, and the first function set's center in the image's own frame.
type ImageDescription struct {
	PixScale  float64
	RotDeg    float64
	FluxScale float64
	X0Image   float64
	Y0Image   float64
}

// TransformParams maps a global parameter vector (in the reference frame)
// to image n's own parameter vector, per spec §4.6. global is the flat
// vector for the shared model (length model.NParams()); desc is image n's
// image-description triple. For the reference image (n=0), callers should
// skip this and pass global straight through — TransformParams always
// applies a transform, including the identity one, so it is only called for
// n>0.
//
// Every function set after the first keeps its own (X0,Y0) relative to the
// first set's reference-frame center, rotated and scaled into the image
// frame; the first set's center is replaced outright by (X0Image,Y0Image).
func TransformParams(m *Model, global []float64, desc ImageDescription) ([]float64, error) {
	if desc.PixScale <= 0 {
		return nil, errors.New("model: pixScale must be positive")
	}
	if len(global) != m.NParams() {
		return nil, errNParamsMismatch(len(global), m.NParams())
	}
	out := make([]float64, len(global))
	copy(out, global)

	offs := m.setOffsets()
	if len(offs) == 0 {
		return out, nil
	}
	x0Ref1, y0Ref1 := global[offs[0]], global[offs[0]+1]
	out[offs[0]] = desc.X0Image
	out[offs[0]+1] = desc.Y0Image

	theta := desc.RotDeg * math.Pi / 180
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	rot := mat.NewDense(2, 2, []float64{
		cosT, sinT,
		-sinT, cosT,
	})

	for _, off := range offs[1:] {
		dRef := mat.NewVecDense(2, []float64{global[off] - x0Ref1, global[off+1] - y0Ref1})
		var dIm mat.VecDense
		dIm.MulVec(rot, dRef)
		out[off] = desc.X0Image + desc.PixScale*dIm.AtVec(0)
		out[off+1] = desc.Y0Image + desc.PixScale*dIm.AtVec(1)
	}
	return out, nil
}
