package funcs

import (
	"math"
	"testing"
)

// TestSersicTotalFluxMatchesQuadrature exercises scenario S4: a Sersic
// component with n=1, r_e=10, I_e=1, PA=0, ell=0 integrated numerically over
// a 5000x5000 grid centered on the component should match the analytic
// TotalFlux() to within 0.1%.
func TestSersicTotalFluxMatchesQuadrature(t *testing.T) {
	s := New("Sersic")
	if s == nil {
		t.Fatal("Sersic not registered")
	}
	const w, h = 5000.0, 5000.0
	params := []float64{0 /*PA*/, 0 /*ell*/, 1 /*n*/, 1 /*I_e*/, 10 /*r_e*/}
	s.Setup(params, 0, w/2, h/2, 1, 0)

	if !s.CanComputeTotalFlux() {
		t.Fatal("Sersic should report CanComputeTotalFlux=true")
	}
	analytic := s.TotalFlux()

	sum := 0.0
	for i := 1; i <= int(w); i++ {
		for j := 1; j <= int(h); j++ {
			sum += s.Value(float64(i), float64(j))
		}
	}

	relErr := math.Abs(sum-analytic) / analytic
	if relErr > 0.001 {
		t.Errorf("Sersic total flux mismatch: quadrature=%g analytic=%g relErr=%g", sum, analytic, relErr)
	}
}

func TestSersicBNMonotonic(t *testing.T) {
	prev := 0.0
	for _, n := range []float64{0.5, 1, 2, 4, 8} {
		bn := sersicBN(n)
		if bn <= prev {
			t.Errorf("sersicBN(%g)=%g not increasing from previous %g", n, bn, prev)
		}
		prev = bn
	}
}

func TestExponentialTotalFluxMatchesQuadrature(t *testing.T) {
	e := New("Exponential")
	const w, h = 2000.0, 2000.0
	params := []float64{0, 0, 1, 5}
	e.Setup(params, 0, w/2, h/2, 1, 0)
	analytic := e.TotalFlux()

	sum := 0.0
	for i := 1; i <= int(w); i++ {
		for j := 1; j <= int(h); j++ {
			sum += e.Value(float64(i), float64(j))
		}
	}
	relErr := math.Abs(sum-analytic) / analytic
	if relErr > 0.01 {
		t.Errorf("Exponential total flux mismatch: quadrature=%g analytic=%g relErr=%g", sum, analytic, relErr)
	}
}

func TestGaussianTotalFluxMatchesQuadrature(t *testing.T) {
	g := New("Gaussian")
	const w, h = 2000.0, 2000.0
	params := []float64{0, 0, 1, 5}
	g.Setup(params, 0, w/2, h/2, 1, 0)
	analytic := g.TotalFlux()

	sum := 0.0
	for i := 1; i <= int(w); i++ {
		for j := 1; j <= int(h); j++ {
			sum += g.Value(float64(i), float64(j))
		}
	}
	relErr := math.Abs(sum-analytic) / analytic
	if relErr > 0.01 {
		t.Errorf("Gaussian total flux mismatch: quadrature=%g analytic=%g relErr=%g", sum, analytic, relErr)
	}
}

func TestPointSourceConfinedToSinglePixel(t *testing.T) {
	p := New("PointSource")
	params := []float64{42.0}
	p.Setup(params, 0, 10, 10, 1, 0)
	if v := p.Value(10, 10); v != 42.0 {
		t.Errorf("Value(10,10)=%g want 42", v)
	}
	if v := p.Value(11, 10); v != 0 {
		t.Errorf("Value(11,10)=%g want 0", v)
	}
	if !p.CanComputeTotalFlux() || p.TotalFlux() != 42.0 {
		t.Errorf("TotalFlux()=%g want 42", p.TotalFlux())
	}
}

func TestFlatSkyConstant(t *testing.T) {
	s := New("FlatSky")
	s.Setup([]float64{100}, 0, 0, 0, 1, 0)
	for _, pt := range [][2]float64{{0, 0}, {1, 1}, {-500, 300}} {
		if v := s.Value(pt[0], pt[1]); v != 100 {
			t.Errorf("Value(%v)=%g want 100", pt, v)
		}
	}
}

func TestNewUnknownFunctionReturnsNil(t *testing.T) {
	if f := New("NotARealFunction"); f != nil {
		t.Errorf("New(unknown)=%v want nil", f)
	}
}
