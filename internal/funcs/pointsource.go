package funcs

import "math"

func init() { register("PointSource", func() Func { return &PointSource{} }) }

// PointSource is an unresolved source: all of its flux lands in the single
// pixel whose geometric center is closest to (X0,Y0). It is intended to be
// evaluated on the unconvolved model image and rely on the convolver to
// spread it by the PSF, so no internal subsampling is applied.
type PointSource struct {
	x0, y0 float64
	iTot   float64
}

func (p *PointSource) Name() string { return "PointSource" }

func (p *PointSource) ParamNames() []string { return []string{"I_tot"} }

func (p *PointSource) Setup(params []float64, offset int, x0, y0, pixScale, rotDeg float64) {
	p.x0, p.y0 = x0, y0
	p.iTot = params[offset+0]
}

func (p *PointSource) Value(x, y float64) float64 {
	if math.Abs(x-p.x0) < 0.5 && math.Abs(y-p.y0) < 0.5 {
		return p.iTot
	}
	return 0
}

func (p *PointSource) CanComputeTotalFlux() bool { return true }

func (p *PointSource) TotalFlux() float64 { return p.iTot }
