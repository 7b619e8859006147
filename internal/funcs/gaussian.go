package funcs

import "math"

func init() { register("Gaussian", func() Func { return &Gaussian{} }) }

// Gaussian implements a 2D elliptical Gaussian, I(r) = I_0*exp(-r^2/(2*sigma^2)).
type Gaussian struct {
	x0, y0 float64
	pa     float64
	ell    float64
	i0     float64
	sigma  float64
}

func (g *Gaussian) Name() string { return "Gaussian" }

func (g *Gaussian) ParamNames() []string { return []string{"PA", "ell", "I_0", "sigma"} }

func (g *Gaussian) Setup(params []float64, offset int, x0, y0, pixScale, rotDeg float64) {
	g.x0, g.y0 = x0, y0
	g.pa = params[offset+0] + rotDeg
	g.ell = params[offset+1]
	g.i0 = params[offset+2]
	g.sigma = params[offset+3] * pixScale
}

func (g *Gaussian) value(x, y float64) float64 {
	if g.sigma <= 0 {
		return 0
	}
	r := ellipticalRadius(x-g.x0, y-g.y0, g.pa, g.ell)
	return g.i0 * math.Exp(-(r*r)/(2*g.sigma*g.sigma))
}

func (g *Gaussian) Value(x, y float64) float64 {
	r := ellipticalRadius(x-g.x0, y-g.y0, g.pa, g.ell)
	if r < 3.0*g.sigma && g.sigma < 2.0 {
		return subsampleAverage(g.value, x, y, defaultSubsampleN)
	}
	return g.value(x, y)
}

func (g *Gaussian) CanComputeTotalFlux() bool { return true }

// TotalFlux returns the analytic integral L = I_0 * 2*pi*sigma^2 * q.
func (g *Gaussian) TotalFlux() float64 {
	q := 1.0 - g.ell
	return g.i0 * 2 * math.Pi * g.sigma * g.sigma * q
}
