// Package model implements the per-image fitting core (C4): a ModelObject
// owns one data image, its noise/mask/weight buffers, an optional PSF and
// oversampled regions, and generates model images and goodness-of-fit
// statistics against a flat parameter vector.
package model

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/valyala/fastrand"

	"github.com/mlnoga/imgfit/internal/convolve"
	"github.com/mlnoga/imgfit/internal/kahan"
	"github.com/mlnoga/imgfit/internal/parallelism"
)

// ModelObject is the single-image fitting engine: a model (function sets),
// an attached data image, an error/mask/noise configuration, and an optional
// PSF and oversampled regions. Its lifecycle is a strict sequence of setup
// calls (DefineFunctionSets, optionally AttachPSF, SetDataDimensions or
// AttachData, optionally AddOversampledRegion, one error-mode call, optionally
// AttachMask) followed by FinalizeForFitting, after which CreateModelImage,
// ComputeDeviates and GetFitStatistic may be called any number of times.
type ModelObject struct {
	model *Model

	psf              []float64
	psfCols, psfRows int
	havePSF          bool
	convolver        *convolve.Convolver

	dataCols, dataRows   int
	haveDims             bool
	padCols, padRows     int
	modelCols, modelRows int

	data     []float64
	haveData bool

	weight             []float64 // internal w=1/sigma convention, pre-mask
	haveExternalWeight bool
	mask               []float64 // 1=good, 0=bad
	haveMask           bool
	extra              []float64 // extra-terms buffer, Cash/Poisson-MLR only

	noise         NoiseModel
	stat          FitStat
	haveErrorMode bool

	regions []*convolve.Region

	finalized bool
	nValid    int

	modelImage []float64 // padded working buffer, reused across calls
	fluxScale  float64   // multi-image intensity scale side channel, 1 for single-image use
	pixScale   float64   // multi-image length-scale side channel, 1 for single-image use
	rotDeg     float64   // multi-image rotation side channel (degrees), 0 for single-image use

	logWriter io.Writer

	rng          fastrand.RNG
	bootstrapIdx []int // non-nil once a bootstrap sample is drawn; deviates/fit-statistic then index through it instead of scanning all pixels
}

// NewModelObject returns an empty ModelObject. Setup methods must be called
// in the order documented on the type before FinalizeForFitting.
func NewModelObject() *ModelObject {
	return &ModelObject{logWriter: os.Stderr, fluxScale: 1, pixScale: 1}
}

// SetFluxScale sets the multi-image intensity side channel (spec's
// image-description fluxScale): every pixel of the generated model image is
// multiplied by factor. Convolution and oversampled-region block-averaging
// are both linear, so it is equivalent and simpler to apply this once to the
// finished padded buffer rather than to every function evaluation. Not used
// in single-image fitting (default 1).
func (mo *ModelObject) SetFluxScale(factor float64) {
	mo.fluxScale = factor
}

// SetImageTransform sets the multi-image length-scale and rotation side
// channel (spec's image-description pixScale/rot): every component function
// is told at Setup time to scale its own length parameters by pixScale and
// rotate its own position-angle parameter by rotDeg degrees, so Value
// returns the already-transformed intensity for this image's frame. Not
// used in single-image fitting (defaults pixScale=1, rotDeg=0).
func (mo *ModelObject) SetImageTransform(pixScale, rotDeg float64) {
	mo.pixScale = pixScale
	mo.rotDeg = rotDeg
}

// SetLogWriter redirects diagnostic output (e.g. nonfinite-parameter
// warnings during model generation); the default is os.Stderr.
func (mo *ModelObject) SetLogWriter(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	mo.logWriter = w
}

// DefineFunctionSets attaches the additive model this object evaluates.
// Must be called exactly once, before any other setup method.
func (mo *ModelObject) DefineFunctionSets(m *Model) error {
	if mo.model != nil {
		return errors.New("model: function sets already defined")
	}
	if m == nil || len(m.Sets) == 0 {
		return errors.New("model: model must have at least one function set")
	}
	mo.model = m
	return nil
}

// AttachPSF declares the image-domain PSF to convolve every generated model
// image with. Must be called, if at all, before SetDataDimensions/AttachData.
func (mo *ModelObject) AttachPSF(psf []float64, psfCols, psfRows int) error {
	if mo.model == nil {
		return errors.New("model: define function sets before attaching a PSF")
	}
	if mo.haveDims {
		return errors.New("model: PSF must be attached before declaring data dimensions")
	}
	if psfCols <= 0 || psfRows <= 0 {
		return errors.New("model: PSF dimensions must be positive")
	}
	if len(psf) != psfCols*psfRows {
		return errors.New("model: PSF buffer length does not match declared dimensions")
	}
	mo.psf, mo.psfCols, mo.psfRows = psf, psfCols, psfRows
	mo.havePSF = true
	return nil
}

// SetDataDimensions declares the data image size and allocates the padded
// working geometry (padded by the PSF's full width and height on each side,
// if a PSF was attached). May be called instead of AttachData when the data buffer is
// supplied separately, but must precede AddOversampledRegion.
func (mo *ModelObject) SetDataDimensions(cols, rows int) error {
	if mo.model == nil {
		return errors.New("model: define function sets before declaring data dimensions")
	}
	if mo.haveDims {
		return errors.New("model: data dimensions already declared")
	}
	if cols <= 0 || rows <= 0 {
		return errors.New("model: data dimensions must be positive")
	}
	mo.dataCols, mo.dataRows = cols, rows
	if mo.havePSF {
		mo.padCols, mo.padRows = mo.psfCols, mo.psfRows
	}
	mo.modelCols = cols + 2*mo.padCols
	mo.modelRows = rows + 2*mo.padRows
	mo.modelImage = make([]float64, mo.modelCols*mo.modelRows)
	if mo.havePSF {
		cv, err := convolve.NewConvolver(mo.psf, mo.psfCols, mo.psfRows, mo.modelCols, mo.modelRows)
		if err != nil {
			return err
		}
		mo.convolver = cv
	}
	mo.haveDims = true
	return nil
}

// AttachData declares the data image and its dimensions in one call.
func (mo *ModelObject) AttachData(data []float64, cols, rows int) error {
	if len(data) != cols*rows {
		return errors.New("model: data buffer length does not match declared dimensions")
	}
	if err := mo.SetDataDimensions(cols, rows); err != nil {
		return err
	}
	mo.data = data
	mo.haveData = true
	return nil
}

// AddOversampledRegion registers an oversampled subregion (C3) to be refined
// after every full-resolution model-image generation pass.
func (mo *ModelObject) AddOversampledRegion(r *convolve.Region) error {
	if !mo.haveDims {
		return errors.New("model: data dimensions must be declared before adding an oversampled region")
	}
	mo.regions = append(mo.regions, r)
	return nil
}

// AttachExternalErrors supplies a caller-provided error map, selecting the
// fixed-weight chi-square statistic.
func (mo *ModelObject) AttachExternalErrors(vals []float64, conv ExternalWeightConvention) error {
	if !mo.haveDims {
		return errors.New("model: data dimensions must be declared before attaching errors")
	}
	if len(vals) != mo.dataCols*mo.dataRows {
		return errors.New("model: error buffer length does not match data dimensions")
	}
	mo.weight = toInternalWeights(vals, conv)
	mo.haveExternalWeight = true
	mo.stat = StatChiSquare
	mo.haveErrorMode = true
	return nil
}

// UseDataErrors selects fixed chi-square with weights derived once from the
// data buffer via noise.
func (mo *ModelObject) UseDataErrors(noise NoiseModel) error {
	mo.noise = noise
	mo.stat = StatChiSquare
	mo.haveErrorMode = true
	return nil
}

// UseModelErrors selects chi-square with weights recomputed from the model
// image before every evaluation.
func (mo *ModelObject) UseModelErrors(noise NoiseModel) error {
	mo.noise = noise
	mo.stat = StatChiSquareModel
	mo.haveErrorMode = true
	return nil
}

// UseCashStatistic selects the classical Cash (1979) Poisson statistic.
func (mo *ModelObject) UseCashStatistic(noise NoiseModel) error {
	mo.noise = noise
	mo.stat = StatCash
	mo.haveErrorMode = true
	return nil
}

// UsePoissonMLRStatistic selects the Poisson maximum-likelihood-ratio
// statistic, which differs from Cash only in its extra-terms buffer.
func (mo *ModelObject) UsePoissonMLRStatistic(noise NoiseModel) error {
	mo.noise = noise
	mo.stat = StatPoissonMLR
	mo.haveErrorMode = true
	return nil
}

// AttachMask supplies a caller-provided good/bad pixel mask.
func (mo *ModelObject) AttachMask(vals []float64, conv MaskConvention) error {
	if !mo.haveDims {
		return errors.New("model: data dimensions must be declared before attaching a mask")
	}
	if len(vals) != mo.dataCols*mo.dataRows {
		return errors.New("model: mask buffer length does not match data dimensions")
	}
	mo.mask = toInternalMask(vals, conv)
	mo.haveMask = true
	return nil
}

// FinalizeForFitting closes out setup: folds nonfinite data pixels into the
// mask, derives a weight buffer if none was attached externally, zeroes the
// extra-terms buffer under Cash or populates it under Poisson-MLR, masks
// pixels with nonfinite or negative weights, logs a warning to the log
// writer for each kind of masked input, and counts valid pixels. No further
// setup calls are permitted afterward.
func (mo *ModelObject) FinalizeForFitting() error {
	if !mo.haveData {
		return errors.New("model: data must be attached before finalizing")
	}
	if !mo.haveErrorMode {
		return errors.New("model: no error mode selected")
	}
	n := mo.dataCols * mo.dataRows

	if mo.mask == nil {
		mo.mask = make([]float64, n)
		for i := range mo.mask {
			mo.mask[i] = 1
		}
	}
	nBadData := 0
	for i, d := range mo.data {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			mo.mask[i] = 0
			mo.data[i] = 0
			nBadData++
		}
	}
	if nBadData > 0 {
		fmt.Fprintf(mo.logWriter, "model: masked %d pixel(s) with nonfinite data values\n", nBadData)
	}

	if mo.weight == nil {
		mo.weight = make([]float64, n)
		for i, d := range mo.data {
			mo.weight[i] = mo.noise.Weight(d)
		}
	}

	switch mo.stat {
	case StatPoissonMLR:
		mo.extra = extraTerms(mo.data, mo.mask, mo.noise)
	case StatCash:
		mo.extra = make([]float64, n)
	}

	nValid, nBadWeight := 0, 0
	for i := range mo.mask {
		w := mo.weight[i]
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			mo.mask[i] = 0
			nBadWeight++
		}
		if mo.mask[i] != 0 {
			nValid++
		}
	}
	if nBadWeight > 0 {
		fmt.Fprintf(mo.logWriter, "model: masked %d pixel(s) with nonfinite or negative weights\n", nBadWeight)
	}
	if nValid == 0 {
		return errors.New("model: zero valid pixels remain after masking")
	}
	mo.nValid = nValid
	mo.finalized = true
	return nil
}

// NParams returns the model's flat parameter-vector length.
func (mo *ModelObject) NParams() int { return mo.model.NParams() }

// ParamNames returns the model's flat parameter name list.
func (mo *ModelObject) ParamNames() []string { return mo.model.ParamNames() }

// NValidPixels returns the number of unmasked pixels counted at finalize time.
func (mo *ModelObject) NValidPixels() int { return mo.nValid }

// FitStatisticName identifies which goodness-of-fit statistic is in effect.
func (mo *ModelObject) FitStatisticName() string { return mo.stat.String() }

// allFuncs flattens every component function across every set, in order.
func (mo *ModelObject) allFuncs() []convolve.ValueAt {
	fns := make([]convolve.ValueAt, 0)
	for _, s := range mo.model.Sets {
		for _, f := range s.Funcs {
			fns = append(fns, f)
		}
	}
	return fns
}

// CreateModelImage evaluates the model at params into the internal padded
// model-image buffer: per-pixel Kahan-summed function evaluation, optional
// PSF convolution, then refinement of any registered oversampled regions.
// Nonfinite entries in params are logged but do not abort evaluation.
func (mo *ModelObject) CreateModelImage(params []float64) error {
	if !mo.finalized {
		return errors.New("model: must finalize before generating a model image")
	}
	if err := mo.model.ApplyParams(params, nil, mo.pixScale, mo.rotDeg); err != nil {
		return err
	}
	for _, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			fmt.Fprintln(mo.logWriter, "model: nonfinite parameter encountered during model-image generation")
			break
		}
	}

	padOffsetX := float64(1 - mo.padCols)
	padOffsetY := float64(1 - mo.padRows)
	nCols, nRows := mo.modelCols, mo.modelRows
	sets := mo.model.Sets

	parallelism.ForEachChunk(nRows, func(lowerRow, upperRow int) {
		for i := lowerRow; i < upperRow; i++ {
			y := float64(i) + padOffsetY
			rowOff := i * nCols
			for j := 0; j < nCols; j++ {
				x := float64(j) + padOffsetX
				var sum kahan.Sum
				for _, s := range sets {
					for _, f := range s.Funcs {
						sum.Add(f.Value(x, y))
					}
				}
				mo.modelImage[rowOff+j] = sum.Total()
			}
		}
	})

	if mo.convolver != nil {
		if err := mo.convolver.Convolve(mo.modelImage); err != nil {
			return err
		}
	}

	if len(mo.regions) > 0 {
		fns := mo.allFuncs()
		for _, r := range mo.regions {
			if err := r.ComputeAndDownsample(mo.modelImage, nCols, nRows, mo.padCols, mo.padRows, fns); err != nil {
				return err
			}
		}
	}

	if mo.fluxScale != 1 {
		for i := range mo.modelImage {
			mo.modelImage[i] *= mo.fluxScale
		}
	}
	return nil
}

// dataIndex returns the padded-buffer index of data-frame pixel i (0-based,
// row-major over dataCols x dataRows).
func (mo *ModelObject) dataIndex(i int) int {
	row := i / mo.dataCols
	col := i % mo.dataCols
	return (row+mo.padRows)*mo.modelCols + (col + mo.padCols)
}

// effectiveWeight returns the per-pixel weight buffer to use for the current
// model image: the fixed buffer under StatChiSquare/StatCash/StatPoissonMLR,
// or one recomputed from the current model values under StatChiSquareModel.
func (mo *ModelObject) effectiveWeight() []float64 {
	if mo.stat != StatChiSquareModel {
		return mo.weight
	}
	n := mo.dataCols * mo.dataRows
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		if mo.mask[i] == 0 {
			continue
		}
		w[i] = mo.noise.Weight(mo.modelImage[mo.dataIndex(i)])
	}
	return w
}

// ComputeDeviates fills out with the per-pixel Levenberg-Marquardt deviates
// for the current model image, using whichever statistic is in effect.
// Chi-square deviates are w_i*(d_i-m_i); Cash/Poisson-MLR deviates are
// sqrt(2*w_i*|m'_i-d'_i*ln(max(m'_i,eps))+e_i|) in electron units. Outside
// bootstrap mode, out must have length dataCols*dataRows and masked entries
// are left at 0; once NewBootstrapSample has been called, out must have
// length len(bootstrapIdx) and every entry i corresponds to data-buffer
// index bootstrapIdx[i], per invariant 8.
func (mo *ModelObject) ComputeDeviates(params []float64, out []float64) error {
	if mo.stat != StatChiSquare && mo.stat != StatChiSquareModel && mo.stat != StatCash && mo.stat != StatPoissonMLR {
		return errors.New("model: no error mode selected")
	}
	if err := mo.CreateModelImage(params); err != nil {
		return err
	}
	weight := mo.effectiveWeight()
	g := mo.noise.EffectiveGain()

	if mo.bootstrapIdx != nil {
		if len(out) != len(mo.bootstrapIdx) {
			return errors.New("model: deviate buffer length does not match bootstrap sample size")
		}
		for k, i := range mo.bootstrapIdx {
			out[k] = mo.deviateAt(i, weight, g)
		}
		return nil
	}

	n := mo.dataCols * mo.dataRows
	if len(out) != n {
		return errors.New("model: deviate buffer length does not match data dimensions")
	}
	for i := 0; i < n; i++ {
		if mo.mask[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = mo.deviateAt(i, weight, g)
	}
	return nil
}

// deviateAt computes the single-pixel deviate contribution for data-buffer
// index i, shared by the full-scan and bootstrap-indexed paths.
func (mo *ModelObject) deviateAt(i int, weight []float64, g float64) float64 {
	m := mo.modelImage[mo.dataIndex(i)]
	switch mo.stat {
	case StatCash, StatPoissonMLR:
		mPrime := g * (m + mo.noise.OriginalSky)
		dPrime := g * (mo.data[i] + mo.noise.OriginalSky)
		logTerm := math.Max(mPrime, logFloor)
		contrib := mPrime - dPrime*math.Log(logTerm) + mo.extra[i]
		return math.Sqrt(2 * weight[i] * math.Abs(contrib))
	default:
		return weight[i] * (mo.data[i] - m)
	}
}

// GetFitStatistic returns the scalar goodness-of-fit value for the current
// model image: chi-square is sum(w_i^2*(m_i-d_i)^2); Cash/Poisson-MLR is
// 2*sum(w_i*(m'_i-d'_i*ln(max(m'_i,eps))+e_i)). Once NewBootstrapSample has
// been called, the sum runs over the resampled index vector instead of
// every unmasked pixel, per invariant 8.
func (mo *ModelObject) GetFitStatistic(params []float64) (float64, error) {
	if mo.stat != StatChiSquare && mo.stat != StatChiSquareModel && mo.stat != StatCash && mo.stat != StatPoissonMLR {
		return 0, errors.New("model: no error mode selected")
	}
	if err := mo.CreateModelImage(params); err != nil {
		return 0, err
	}
	weight := mo.effectiveWeight()
	g := mo.noise.EffectiveGain()

	var sum kahan.Sum
	if mo.bootstrapIdx != nil {
		for _, i := range mo.bootstrapIdx {
			sum.Add(mo.statContribAt(i, weight, g))
		}
	} else {
		n := mo.dataCols * mo.dataRows
		for i := 0; i < n; i++ {
			if mo.mask[i] == 0 {
				continue
			}
			sum.Add(mo.statContribAt(i, weight, g))
		}
	}
	if mo.stat == StatCash || mo.stat == StatPoissonMLR {
		return 2 * sum.Total(), nil
	}
	return sum.Total(), nil
}

// statContribAt computes the single-pixel fit-statistic contribution for
// data-buffer index i, shared by the full-scan and bootstrap-indexed paths.
func (mo *ModelObject) statContribAt(i int, weight []float64, g float64) float64 {
	m := mo.modelImage[mo.dataIndex(i)]
	switch mo.stat {
	case StatCash, StatPoissonMLR:
		mPrime := g * (m + mo.noise.OriginalSky)
		dPrime := g * (mo.data[i] + mo.noise.OriginalSky)
		logTerm := math.Max(mPrime, logFloor)
		return weight[i] * (mPrime - dPrime*math.Log(logTerm) + mo.extra[i])
	default:
		d := weight[i] * (m - mo.data[i])
		return d * d
	}
}

// GetModelImage returns the data-sized (unpadded) model image for the
// current internal buffer state, i.e. as last generated by CreateModelImage.
func (mo *ModelObject) GetModelImage() []float64 {
	out := make([]float64, mo.dataCols*mo.dataRows)
	for i := range out {
		out[i] = mo.modelImage[mo.dataIndex(i)]
	}
	return out
}

// GetExpandedModelImage returns the full padded model image, including the
// PSF-sized border ring (psfCols columns and psfRows rows on each side; no
// border if no PSF is attached).
func (mo *ModelObject) GetExpandedModelImage() (img []float64, cols, rows int) {
	out := make([]float64, len(mo.modelImage))
	copy(out, mo.modelImage)
	return out, mo.modelCols, mo.modelRows
}

// GetResidualImage returns the data-sized (data - model) image.
func (mo *ModelObject) GetResidualImage() []float64 {
	out := make([]float64, mo.dataCols*mo.dataRows)
	for i := range out {
		out[i] = mo.data[i] - mo.modelImage[mo.dataIndex(i)]
	}
	return out
}

// GetWeightImage returns the data-sized weight buffer in effect for the
// current model image, in externally visible 1/sigma^2 form (the square of
// the internal 1/sigma weights).
func (mo *ModelObject) GetWeightImage() []float64 {
	w := mo.effectiveWeight()
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = v * v
	}
	return out
}

// GetSingleFunctionImage evaluates only the named function set (by index)
// over the full data frame, ignoring every other set, with PSF convolution
// applied if one is attached. It does not disturb the shared modelImage
// buffer used by CreateModelImage.
func (mo *ModelObject) GetSingleFunctionImage(params []float64, setIndex int) ([]float64, error) {
	if setIndex < 0 || setIndex >= len(mo.model.Sets) {
		return nil, fmt.Errorf("model: function set index %d out of range", setIndex)
	}
	if err := mo.model.ApplyParams(params, nil, mo.pixScale, mo.rotDeg); err != nil {
		return nil, err
	}
	buf := make([]float64, mo.modelCols*mo.modelRows)
	padOffsetX := float64(1 - mo.padCols)
	padOffsetY := float64(1 - mo.padRows)
	set := mo.model.Sets[setIndex]
	for i := 0; i < mo.modelRows; i++ {
		y := float64(i) + padOffsetY
		rowOff := i * mo.modelCols
		for j := 0; j < mo.modelCols; j++ {
			x := float64(j) + padOffsetX
			var sum kahan.Sum
			for _, f := range set.Funcs {
				sum.Add(f.Value(x, y))
			}
			buf[rowOff+j] = sum.Total()
		}
	}
	if mo.convolver != nil {
		if err := mo.convolver.Convolve(buf); err != nil {
			return nil, err
		}
	}
	out := make([]float64, mo.dataCols*mo.dataRows)
	for i := range out {
		row := i / mo.dataCols
		col := i % mo.dataCols
		out[i] = buf[(row+mo.padRows)*mo.modelCols+(col+mo.padCols)]
	}
	return out, nil
}

// FindTotalFluxes returns the analytic total flux of every function set that
// supports it (nil entries otherwise), evaluated with each set temporarily
// recentered at the middle of the data frame. Only the functions' analytic
// TotalFlux values are summed; a set containing any function without an
// analytic total gets a nil entry, and no numeric quadrature is done.
func (mo *ModelObject) FindTotalFluxes(params []float64) ([]*float64, error) {
	centers := make([]struct{ X0, Y0 float64 }, len(mo.model.Sets))
	midX := float64(mo.dataCols)/2 + 0.5
	midY := float64(mo.dataRows)/2 + 0.5
	for i := range centers {
		centers[i] = struct{ X0, Y0 float64 }{midX, midY}
	}
	if err := mo.model.ApplyParams(params, centers, mo.pixScale, mo.rotDeg); err != nil {
		return nil, err
	}
	fluxes := make([]*float64, len(mo.model.Sets))
	for i, s := range mo.model.Sets {
		var sum kahan.Sum
		ok := true
		for _, f := range s.Funcs {
			if !f.CanComputeTotalFlux() {
				ok = false
				break
			}
			sum.Add(f.TotalFlux())
		}
		if ok {
			v := sum.Total()
			fluxes[i] = &v
		}
	}
	return fluxes, nil
}

// EnableBootstrap turns on bootstrap resampling. Matching fastrand's own
// idiom, the RNG seeds itself lazily from its zero value on first use.
func (mo *ModelObject) EnableBootstrap() {
	mo.rng = fastrand.RNG{}
}

// NewBootstrapSample draws NValidPixels indices with replacement, uniformly
// over the valid-pixel index set, using sample-with-replacement over the
// flat valid-pixel list (not the full data buffer, so masked pixels are
// never drawn). Returns data-buffer indices, and stores them so that
// subsequent ComputeDeviates/GetFitStatistic calls index through this
// resampled set rather than scanning all pixels, until ClearBootstrapSample
// is called.
func (mo *ModelObject) NewBootstrapSample() []int {
	validIdx := make([]int, 0, mo.nValid)
	for i, m := range mo.mask {
		if m != 0 {
			validIdx = append(validIdx, i)
		}
	}
	out := make([]int, len(validIdx))
	max := uint32(len(validIdx))
	for i := range out {
		out[i] = validIdx[mo.rng.Uint32n(max)]
	}
	mo.bootstrapIdx = out
	return out
}

// ClearBootstrapSample reverts ComputeDeviates/GetFitStatistic to scanning
// every unmasked pixel, undoing a prior NewBootstrapSample call.
func (mo *ModelObject) ClearBootstrapSample() {
	mo.bootstrapIdx = nil
}
