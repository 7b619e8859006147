package model

import (
	"math"
	"testing"

	"github.com/mlnoga/imgfit/internal/funcs"
)

func flatSkyModel(level float64) *Model {
	f := funcs.New("FlatSky")
	f.Setup([]float64{level}, 0, 0, 0, 1, 0)
	return NewModel(NewFunctionSet(f))
}

func flatSkyParams(level float64) []float64 {
	return []float64{0 /*X0*/, 0 /*Y0*/, level}
}

// TestMaskedPixelsContributeNothing exercises invariant 1: a masked-out
// pixel contributes exactly 0 to both the deviate vector and the scalar fit
// statistic, regardless of its data value.
func TestMaskedPixelsContributeNothing(t *testing.T) {
	const cols, rows = 4, 4
	m := flatSkyModel(5)
	mo := NewModelObject()
	if err := mo.DefineFunctionSets(m); err != nil {
		t.Fatalf("DefineFunctionSets: %v", err)
	}
	data := make([]float64, cols*rows)
	for i := range data {
		data[i] = 5
	}
	// Corrupt one pixel wildly; if it weren't masked it would dominate chi-square.
	const badIdx = 6
	data[badIdx] = 1e9
	if err := mo.AttachData(data, cols, rows); err != nil {
		t.Fatalf("AttachData: %v", err)
	}
	if err := mo.UseDataErrors(NoiseModel{Gain: 1, ExposureTime: 1, NCombined: 1}); err != nil {
		t.Fatalf("UseDataErrors: %v", err)
	}
	mask := make([]float64, cols*rows)
	for i := range mask {
		mask[i] = 1
	}
	mask[badIdx] = 0
	if err := mo.AttachMask(mask, MaskZeroIsBad); err != nil {
		t.Fatalf("AttachMask: %v", err)
	}
	if err := mo.FinalizeForFitting(); err != nil {
		t.Fatalf("FinalizeForFitting: %v", err)
	}

	params := flatSkyParams(5)
	deviates := make([]float64, cols*rows)
	if err := mo.ComputeDeviates(params, deviates); err != nil {
		t.Fatalf("ComputeDeviates: %v", err)
	}
	if deviates[badIdx] != 0 {
		t.Errorf("masked pixel %d: deviate = %v, want 0", badIdx, deviates[badIdx])
	}
	stat, err := mo.GetFitStatistic(params)
	if err != nil {
		t.Fatalf("GetFitStatistic: %v", err)
	}
	if math.Abs(stat) > 1e-9 {
		t.Errorf("fit statistic = %v, want ~0 (model matches every unmasked pixel exactly)", stat)
	}
}

// TestChiSquareZeroWhenModelMatchesData checks that a model that exactly
// reproduces the data everywhere reports a fit statistic of 0 and that no
// pixel is masked.
func TestChiSquareZeroWhenModelMatchesData(t *testing.T) {
	const cols, rows = 6, 5
	m := flatSkyModel(3)
	mo := NewModelObject()
	if err := mo.DefineFunctionSets(m); err != nil {
		t.Fatalf("DefineFunctionSets: %v", err)
	}
	data := make([]float64, cols*rows)
	for i := range data {
		data[i] = 3
	}
	if err := mo.AttachData(data, cols, rows); err != nil {
		t.Fatalf("AttachData: %v", err)
	}
	if err := mo.UseDataErrors(NoiseModel{Gain: 2, ExposureTime: 1, NCombined: 1}); err != nil {
		t.Fatalf("UseDataErrors: %v", err)
	}
	if err := mo.FinalizeForFitting(); err != nil {
		t.Fatalf("FinalizeForFitting: %v", err)
	}
	stat, err := mo.GetFitStatistic(flatSkyParams(3))
	if err != nil {
		t.Fatalf("GetFitStatistic: %v", err)
	}
	if math.Abs(stat) > 1e-9 {
		t.Errorf("fit statistic = %v, want 0", stat)
	}
	if mo.NValidPixels() != cols*rows {
		t.Errorf("NValidPixels = %d, want %d", mo.NValidPixels(), cols*rows)
	}
}

// TestPSFIdentityPreservesModelImage exercises scenario S3: convolving with
// a single-pixel (identity) PSF must leave the generated model image
// unchanged.
func TestPSFIdentityPreservesModelImage(t *testing.T) {
	const cols, rows = 5, 5
	m := flatSkyModel(7)
	mo := NewModelObject()
	if err := mo.DefineFunctionSets(m); err != nil {
		t.Fatalf("DefineFunctionSets: %v", err)
	}
	if err := mo.AttachPSF([]float64{1}, 1, 1); err != nil {
		t.Fatalf("AttachPSF: %v", err)
	}
	data := make([]float64, cols*rows)
	for i := range data {
		data[i] = 7
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
	if err := mo.CreateModelImage(flatSkyParams(7)); err != nil {
		t.Fatalf("CreateModelImage: %v", err)
	}
	img := mo.GetModelImage()
	for i, v := range img {
		if math.Abs(v-7) > 1e-9 {
			t.Errorf("pixel %d: got %v, want 7", i, v)
		}
	}
}

// TestBootstrapSampleDrawsOnlyValidPixels exercises invariant 8: every index
// drawn by a bootstrap sample must refer to an unmasked pixel, and the
// sample size must equal the number of valid pixels.
func TestBootstrapSampleDrawsOnlyValidPixels(t *testing.T) {
	const cols, rows = 4, 4
	m := flatSkyModel(1)
	mo := NewModelObject()
	if err := mo.DefineFunctionSets(m); err != nil {
		t.Fatalf("DefineFunctionSets: %v", err)
	}
	data := make([]float64, cols*rows)
	for i := range data {
		data[i] = 1
	}
	if err := mo.AttachData(data, cols, rows); err != nil {
		t.Fatalf("AttachData: %v", err)
	}
	if err := mo.UseDataErrors(NoiseModel{Gain: 1, ExposureTime: 1, NCombined: 1}); err != nil {
		t.Fatalf("UseDataErrors: %v", err)
	}
	mask := make([]float64, cols*rows)
	for i := range mask {
		mask[i] = 1
	}
	mask[0], mask[1] = 0, 0
	if err := mo.AttachMask(mask, MaskZeroIsBad); err != nil {
		t.Fatalf("AttachMask: %v", err)
	}
	if err := mo.FinalizeForFitting(); err != nil {
		t.Fatalf("FinalizeForFitting: %v", err)
	}
	mo.EnableBootstrap()
	sample := mo.NewBootstrapSample()
	if len(sample) != mo.NValidPixels() {
		t.Fatalf("sample size = %d, want %d", len(sample), mo.NValidPixels())
	}
	for _, idx := range sample {
		if mask[idx] == 0 {
			t.Errorf("bootstrap sample drew masked index %d", idx)
		}
	}
}

// TestBootstrapFitStatisticMatchesPerIndexSum exercises invariant 8: the
// fit-statistic evaluated on a resampled index set equals a direct sum of
// the same per-index contributions computed independently (via
// ComputeDeviates on the non-bootstrap path, one pixel at a time).
func TestBootstrapFitStatisticMatchesPerIndexSum(t *testing.T) {
	const cols, rows = 3, 3
	m := flatSkyModel(1)
	mo := NewModelObject()
	if err := mo.DefineFunctionSets(m); err != nil {
		t.Fatalf("DefineFunctionSets: %v", err)
	}
	data := make([]float64, cols*rows)
	for i := range data {
		data[i] = float64(i) + 1
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
	params := []float64{0, 0, 5}

	full := make([]float64, cols*rows)
	if err := mo.ComputeDeviates(params, full); err != nil {
		t.Fatalf("ComputeDeviates: %v", err)
	}

	mo.EnableBootstrap()
	sample := mo.NewBootstrapSample()
	fs, err := mo.GetFitStatistic(params)
	if err != nil {
		t.Fatalf("GetFitStatistic: %v", err)
	}

	var want float64
	for _, idx := range sample {
		want += full[idx] * full[idx]
	}
	if math.Abs(fs-want) > 1e-9*(1+math.Abs(want)) {
		t.Errorf("bootstrap fit statistic = %v, want %v (direct per-index sum)", fs, want)
	}

	mo.ClearBootstrapSample()
	restored := make([]float64, cols*rows)
	if err := mo.ComputeDeviates(params, restored); err != nil {
		t.Fatalf("ComputeDeviates after ClearBootstrapSample should scan all pixels: %v", err)
	}
	if len(sample) != cols*rows {
		t.Fatalf("test setup: expected no masked pixels so sample size == pixel count")
	}
}

// TestPoissonMLRStatisticZeroWhenModelMatchesData checks scenario S6's
// baseline: when the model exactly matches strictly positive data, the
// Poisson-MLR statistic is 0 (the extra-terms buffer exactly cancels the
// Poisson log-likelihood terms).
func TestPoissonMLRStatisticZeroWhenModelMatchesData(t *testing.T) {
	const cols, rows = 3, 3
	m := flatSkyModel(10)
	mo := NewModelObject()
	if err := mo.DefineFunctionSets(m); err != nil {
		t.Fatalf("DefineFunctionSets: %v", err)
	}
	data := make([]float64, cols*rows)
	for i := range data {
		data[i] = 10
	}
	if err := mo.AttachData(data, cols, rows); err != nil {
		t.Fatalf("AttachData: %v", err)
	}
	noise := NoiseModel{Gain: 1, ExposureTime: 1, NCombined: 1}
	if err := mo.UsePoissonMLRStatistic(noise); err != nil {
		t.Fatalf("UsePoissonMLRStatistic: %v", err)
	}
	if err := mo.FinalizeForFitting(); err != nil {
		t.Fatalf("FinalizeForFitting: %v", err)
	}
	stat, err := mo.GetFitStatistic(flatSkyParams(10))
	if err != nil {
		t.Fatalf("GetFitStatistic: %v", err)
	}
	if math.Abs(stat) > 1e-6 {
		t.Errorf("Poisson-MLR statistic = %v, want ~0", stat)
	}
}
