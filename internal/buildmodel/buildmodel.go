// Package buildmodel bridges the textual config parsers (modelio, imageio)
// to the model package's in-memory types: it turns a parsed function-set
// configuration into a *model.Model plus its flat initial-parameter vector
// and per-parameter fixed/limit metadata, and turns a parsed image-info
// block into a NoiseModel and mask/error conventions.
package buildmodel

import (
	"fmt"

	"github.com/mlnoga/imgfit/internal/funcs"
	"github.com/mlnoga/imgfit/internal/imageio"
	"github.com/mlnoga/imgfit/internal/model"
	"github.com/mlnoga/imgfit/internal/modelio"
)

// ParamMeta carries the fixed/limit annotation for one entry of a Model's
// flat parameter vector, in the same order as Model.ParamNames.
type ParamMeta struct {
	Fixed     bool
	HasLimits bool
	Low, High float64
}

// Model builds a *model.Model plus its flat initial-parameter vector and
// per-parameter metadata from a parsed configuration file.
func Model(cfg *modelio.Config) (m *model.Model, params []float64, meta []ParamMeta, err error) {
	if len(cfg.Sets) == 0 {
		return nil, nil, nil, fmt.Errorf("buildmodel: configuration has no function sets")
	}
	sets := make([]*model.FunctionSet, 0, len(cfg.Sets))
	for si, set := range cfg.Sets {
		fns := make([]funcs.Func, 0, len(set.Funcs))
		for _, fb := range set.Funcs {
			f := funcs.New(fb.Name)
			if f == nil {
				return nil, nil, nil, fmt.Errorf("buildmodel: set %d: unknown function type %q", si, fb.Name)
			}
			want := f.ParamNames()
			if len(fb.Params) != len(want) {
				return nil, nil, nil, fmt.Errorf("buildmodel: set %d: function %q expects %d parameters (%v), got %d",
					si, fb.Name, len(want), want, len(fb.Params))
			}
			fns = append(fns, f)
		}
		fs := model.NewFunctionSet(fns...)
		fs.Label = firstLabel(set)
		sets = append(sets, fs)

		params = append(params, set.X0.Value, set.Y0.Value)
		meta = append(meta, paramMeta(set.X0), paramMeta(set.Y0))
		for _, fb := range set.Funcs {
			for _, p := range fb.Params {
				params = append(params, p.Value)
				meta = append(meta, paramMeta(p))
			}
		}
	}
	m = model.NewModel(sets...)
	if m.NParams() != len(params) {
		return nil, nil, nil, fmt.Errorf("buildmodel: internal error: built %d parameters, model expects %d", len(params), m.NParams())
	}
	return m, params, meta, nil
}

func firstLabel(set modelio.FuncSet) string {
	for _, fb := range set.Funcs {
		if fb.Label != "" {
			return fb.Label
		}
	}
	return ""
}

func paramMeta(p modelio.Param) ParamMeta {
	return ParamMeta{Fixed: p.Fixed, HasLimits: p.HasLimits, Low: p.Low, High: p.High}
}

// Noise derives a NoiseModel from an image-info block's GAIN/READNOISE/
// ORIGINAL_SKY/EXPTIME/NCOMBINED fields.
func Noise(info *imageio.ImageInfo) model.NoiseModel {
	return model.NoiseModel{
		Gain:         info.Gain,
		ExposureTime: info.ExposureTime,
		NCombined:    info.NCombined,
		ReadNoiseADU: info.ReadNoise,
		OriginalSky:  info.OriginalSky,
	}
}

// MaskConvention translates an imageio mask-convention flag to the model
// package's own type.
func MaskConvention(c imageio.MaskConvention) model.MaskConvention {
	if c == imageio.MaskZeroIsBad {
		return model.MaskZeroIsBad
	}
	return model.MaskZeroIsGood
}

// ErrorConvention translates an imageio error-convention flag to the model
// package's ExternalWeightConvention.
func ErrorConvention(c imageio.ErrorConvention) model.ExternalWeightConvention {
	switch c {
	case imageio.ErrorsAreVariances:
		return model.ExternalVariance
	case imageio.ErrorsAreWeights:
		return model.ExternalWeight
	default:
		return model.ExternalSigma
	}
}

// FreeIndices returns the flat-vector indices that are not fixed, in
// ascending order. A Nelder-Mead optimizer walks only these; fixed entries
// stay pinned at their initial value.
func FreeIndices(meta []ParamMeta) []int {
	var idx []int
	for i, p := range meta {
		if !p.Fixed {
			idx = append(idx, i)
		}
	}
	return idx
}

// Expand writes free's values into the free positions of full (identified
// by freeIdx), leaving every other entry of full untouched. full must
// already hold the correct fixed-parameter values.
func Expand(full []float64, freeIdx []int, free []float64) {
	for i, idx := range freeIdx {
		full[idx] = free[i]
	}
}

// Reduce extracts full's entries at freeIdx into a new slice, the inverse
// of Expand.
func Reduce(full []float64, freeIdx []int) []float64 {
	out := make([]float64, len(freeIdx))
	for i, idx := range freeIdx {
		out[i] = full[idx]
	}
	return out
}
