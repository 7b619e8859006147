package funcs

import "math"

func init() { register("Exponential", func() Func { return &Exponential{} }) }

// Exponential implements the exponential disk profile I(r) = I_0*exp(-r/h).
type Exponential struct {
	x0, y0 float64
	pa     float64
	ell    float64
	i0     float64
	h      float64
}

func (e *Exponential) Name() string { return "Exponential" }

func (e *Exponential) ParamNames() []string { return []string{"PA", "ell", "I_0", "h"} }

func (e *Exponential) Setup(params []float64, offset int, x0, y0, pixScale, rotDeg float64) {
	e.x0, e.y0 = x0, y0
	e.pa = params[offset+0] + rotDeg
	e.ell = params[offset+1]
	e.i0 = params[offset+2]
	e.h = params[offset+3] * pixScale
}

func (e *Exponential) value(x, y float64) float64 {
	if e.h <= 0 {
		return 0
	}
	r := ellipticalRadius(x-e.x0, y-e.y0, e.pa, e.ell)
	return e.i0 * math.Exp(-r/e.h)
}

func (e *Exponential) Value(x, y float64) float64 {
	r := ellipticalRadius(x-e.x0, y-e.y0, e.pa, e.ell)
	if r < 2.0*e.h && e.h < 3.0 {
		return subsampleAverage(e.value, x, y, defaultSubsampleN)
	}
	return e.value(x, y)
}

func (e *Exponential) CanComputeTotalFlux() bool { return true }

// TotalFlux returns the analytic integral L = I_0 * 2*pi*h^2 * q.
func (e *Exponential) TotalFlux() float64 {
	q := 1.0 - e.ell
	return e.i0 * 2 * math.Pi * e.h * e.h * q
}
