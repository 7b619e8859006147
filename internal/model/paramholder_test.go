package model

import (
	"math"
	"testing"

	"github.com/mlnoga/imgfit/internal/funcs"
)

func twoSetModel() *Model {
	s1 := funcs.New("Gaussian")
	s2 := funcs.New("Gaussian")
	return NewModel(NewFunctionSet(s1), NewFunctionSet(s2))
}

// params: X0_1,Y0_1,PA,ell,I0,sigma, X0_2,Y0_2,PA,ell,I0,sigma
func twoSetParams(x1, y1, x2, y2 float64) []float64 {
	return []float64{x1, y1, 0, 0, 1, 5, x2, y2, 0, 0, 1, 5}
}

// TestTransformParamsIdentity exercises invariant 5: pixScale=1, rot=0,
// fluxScale=1, and the image origin equal to the reference first-set
// center must leave every function set's (X0,Y0) unchanged.
func TestTransformParamsIdentity(t *testing.T) {
	m := twoSetModel()
	global := twoSetParams(10, 20, 30, 40)
	desc := ImageDescription{PixScale: 1, RotDeg: 0, FluxScale: 1, X0Image: 10, Y0Image: 20}
	out, err := TransformParams(m, global, desc)
	if err != nil {
		t.Fatalf("TransformParams: %v", err)
	}
	for i := range global {
		if math.Abs(out[i]-global[i]) > 1e-12 {
			t.Errorf("param %d: got %v want %v", i, out[i], global[i])
		}
	}
}

// TestTransformParamsRotation360 exercises invariant 6: rotating by rot and
// by rot+360 must produce identical transformed parameters.
func TestTransformParamsRotation360(t *testing.T) {
	m := twoSetModel()
	global := twoSetParams(10, 20, 37, 52)
	base := ImageDescription{PixScale: 1.3, RotDeg: 17, FluxScale: 2, X0Image: 5, Y0Image: -3}
	plus360 := base
	plus360.RotDeg += 360

	out1, err := TransformParams(m, global, base)
	if err != nil {
		t.Fatalf("TransformParams base: %v", err)
	}
	out2, err := TransformParams(m, global, plus360)
	if err != nil {
		t.Fatalf("TransformParams +360: %v", err)
	}
	for i := range out1 {
		relErr := math.Abs(out1[i]-out2[i])
		if relErr > 1e-9*(1+math.Abs(out1[i])) {
			t.Errorf("param %d: base=%v +360=%v", i, out1[i], out2[i])
		}
	}
}

// TestTransformParamsRejectsNonPositivePixScale exercises the error contract
// of §4.6: pixScale <= 0 is a hard error.
func TestTransformParamsRejectsNonPositivePixScale(t *testing.T) {
	m := twoSetModel()
	global := twoSetParams(0, 0, 1, 1)
	if _, err := TransformParams(m, global, ImageDescription{PixScale: 0}); err == nil {
		t.Fatal("expected an error for pixScale=0")
	}
	if _, err := TransformParams(m, global, ImageDescription{PixScale: -1}); err == nil {
		t.Fatal("expected an error for pixScale<0")
	}
}

// TestTransformParamsScalesSubsequentSetOffsets checks the worked example
// from spec §4.6: a 90-degree rotation maps a +x offset from the first set
// onto a -y offset in the image frame (given the rotation convention in the
// transform formula), scaled by pixScale.
func TestTransformParamsScalesSubsequentSetOffsets(t *testing.T) {
	m := twoSetModel()
	global := twoSetParams(0, 0, 10, 0) // second set 10 units along +x from the first
	desc := ImageDescription{PixScale: 2, RotDeg: 90, FluxScale: 1, X0Image: 0, Y0Image: 0}
	out, err := TransformParams(m, global, desc)
	if err != nil {
		t.Fatalf("TransformParams: %v", err)
	}
	gotX2, gotY2 := out[6], out[7]
	wantX2, wantY2 := 0.0, -20.0 // dxIm = dxRef*cos90+dyRef*sin90=0; dyIm=-dxRef*sin90+dyRef*cos90=-10; *pixScale=2
	if math.Abs(gotX2-wantX2) > 1e-9 || math.Abs(gotY2-wantY2) > 1e-9 {
		t.Errorf("second set transformed center = (%v,%v), want (%v,%v)", gotX2, gotY2, wantX2, wantY2)
	}
}
