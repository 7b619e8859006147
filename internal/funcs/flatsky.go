package funcs

func init() { register("FlatSky", func() Func { return &FlatSky{} }) }

// FlatSky is a uniform background level, independent of position. Its
// center (x0,y0) is accepted but has no effect on Value.
type FlatSky struct {
	iSky float64
}

func (s *FlatSky) Name() string { return "FlatSky" }

func (s *FlatSky) ParamNames() []string { return []string{"I_sky"} }

func (s *FlatSky) Setup(params []float64, offset int, x0, y0, pixScale, rotDeg float64) {
	s.iSky = params[offset+0]
}

func (s *FlatSky) Value(x, y float64) float64 { return s.iSky }

// CanComputeTotalFlux is false: a constant level has no finite integral over
// an unbounded plane, and the bounded-window total is not a property of the
// function in isolation.
func (s *FlatSky) CanComputeTotalFlux() bool { return false }

func (s *FlatSky) TotalFlux() float64 { return 0 }
