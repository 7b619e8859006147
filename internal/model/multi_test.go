package model

import (
	"math"
	"testing"
)

func newFlatSkyImage(t *testing.T, level float64, cols, rows int) *ModelObject {
	t.Helper()
	mo := NewModelObject()
	if err := mo.DefineFunctionSets(flatSkyModel(level)); err != nil {
		t.Fatalf("DefineFunctionSets: %v", err)
	}
	data := make([]float64, cols*rows)
	for i := range data {
		data[i] = level
	}
	if err := mo.AttachData(data, cols, rows); err != nil {
		t.Fatalf("AttachData: %v", err)
	}
	if err := mo.UseDataErrors(NoiseModel{Gain: 1, ExposureTime: 1, NCombined: 1}); err != nil {
		t.Fatalf("UseDataErrors: %v", err)
	}
	if err := mo.FinalizeForFitting(); err != nil {
		t.Fatalf("FinalizeForFitting: %v", err)
	}
	return mo
}

// TestMultiImageSingleImageIsIdentity exercises invariant 4: with N=1 (the
// reference image only), the per-image parameter vector equals the global
// vector and the external NParams has no image-description quintuple.
func TestMultiImageSingleImageIsIdentity(t *testing.T) {
	const cols, rows = 4, 4
	m := flatSkyModel(9)
	mi := NewMultiImage(m)
	mo := newFlatSkyImage(t, 9, cols, rows)
	if err := mi.AddImage(mo, ImageDescription{}, 0); err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	if mi.NParams() != m.NParams() {
		t.Fatalf("NParams = %d, want %d", mi.NParams(), m.NParams())
	}
	theta := flatSkyParams(9)
	if err := mi.CreateAllModelImages(theta); err != nil {
		t.Fatalf("CreateAllModelImages: %v", err)
	}
	img := mo.GetModelImage()
	for i, v := range img {
		if math.Abs(v-9) > 1e-12 {
			t.Errorf("pixel %d: got %v, want 9", i, v)
		}
	}
}

// TestMultiImageIdentityTransformMatchesReference exercises scenario S5: two
// identical images with an identity image-description triple produce
// bit-identical model images.
func TestMultiImageIdentityTransformMatchesReference(t *testing.T) {
	const cols, rows = 5, 5
	m := flatSkyModel(4)
	mi := NewMultiImage(m)

	mo0 := newFlatSkyImage(t, 4, cols, rows)
	mo1 := newFlatSkyImage(t, 4, cols, rows)
	if err := mi.AddImage(mo0, ImageDescription{}, 0); err != nil {
		t.Fatalf("AddImage(0): %v", err)
	}
	// Reference model's first (only) set is centered at (0,0) per
	// flatSkyParams; an identity image description places image 1's origin
	// at the same point with unit scale and zero rotation.
	desc := ImageDescription{PixScale: 1, RotDeg: 0, FluxScale: 1, X0Image: 0, Y0Image: 0}
	if err := mi.AddImage(mo1, desc, 0); err != nil {
		t.Fatalf("AddImage(1): %v", err)
	}

	theta := make([]float64, 0)
	theta = append(theta, desc.PixScale, desc.RotDeg, desc.FluxScale, desc.X0Image, desc.Y0Image)
	theta = append(theta, flatSkyParams(4)...)

	if err := mi.CreateAllModelImages(theta); err != nil {
		t.Fatalf("CreateAllModelImages: %v", err)
	}
	img0 := mo0.GetModelImage()
	img1 := mo1.GetModelImage()
	for i := range img0 {
		if math.Abs(img0[i]-img1[i]) > 1e-12 {
			t.Errorf("pixel %d: image0=%v image1=%v", i, img0[i], img1[i])
		}
	}
}

// TestMultiImageFitStatisticSumsPerImage checks that the combined fit
// statistic equals the sum of the two images' individually-computed fit
// statistics (both data sets exactly match their model).
func TestMultiImageFitStatisticSumsPerImage(t *testing.T) {
	const cols, rows = 3, 3
	m := flatSkyModel(2)
	mi := NewMultiImage(m)
	mo0 := newFlatSkyImage(t, 2, cols, rows)
	mo1 := newFlatSkyImage(t, 2, cols, rows)
	if err := mi.AddImage(mo0, ImageDescription{}, 0); err != nil {
		t.Fatalf("AddImage(0): %v", err)
	}
	desc := ImageDescription{PixScale: 1, RotDeg: 0, FluxScale: 1, X0Image: 0, Y0Image: 0}
	if err := mi.AddImage(mo1, desc, 0); err != nil {
		t.Fatalf("AddImage(1): %v", err)
	}
	theta := append([]float64{desc.PixScale, desc.RotDeg, desc.FluxScale, desc.X0Image, desc.Y0Image}, flatSkyParams(2)...)
	fs, err := mi.GetFitStatistic(theta)
	if err != nil {
		t.Fatalf("GetFitStatistic: %v", err)
	}
	if math.Abs(fs) > 1e-9 {
		t.Errorf("combined fit statistic = %v, want ~0", fs)
	}
	if mi.NPixels() != 2*cols*rows {
		t.Errorf("NPixels = %d, want %d", mi.NPixels(), 2*cols*rows)
	}
}
