package modelio

import (
	"strings"
	"testing"
)

const sersicConfig = `
X0   100.0   50,150
Y0   100.0   50,150

FUNCTION Sersic LABEL disk
PA          30.0
ell         0.3       0,0.9
n           1.5        0.3,5
I_e         10.0
r_e         25.0

FUNCTION FlatSky
I_sky  5.0  fixed
`

func TestParseSersicConfig(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sersicConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(cfg.Sets))
	}
	set := cfg.Sets[0]
	if set.X0.Value != 100 || !set.X0.HasLimits || set.X0.Low != 50 || set.X0.High != 150 {
		t.Errorf("X0 = %+v", set.X0)
	}
	if len(set.Funcs) != 2 {
		t.Fatalf("got %d funcs, want 2", len(set.Funcs))
	}
	if set.Funcs[0].Name != "Sersic" || set.Funcs[0].Label != "disk" {
		t.Errorf("first func = %+v", set.Funcs[0])
	}
	if len(set.Funcs[0].Params) != 5 {
		t.Errorf("Sersic got %d params, want 5", len(set.Funcs[0].Params))
	}
	ell := set.Funcs[0].Params[1]
	if ell.Name != "ell" || !ell.HasLimits || ell.Low != 0 || ell.High != 0.9 {
		t.Errorf("ell = %+v", ell)
	}
	sky := set.Funcs[1].Params[0]
	if !sky.Fixed || sky.Value != 5 {
		t.Errorf("I_sky = %+v", sky)
	}
}

func TestParseWithLeadingOptions(t *testing.T) {
	const cfg = `
GAIN 4.5
X0 10
Y0 20
FUNCTION FlatSky
I_sky 1.0
`
	c, err := Parse(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Options["GAIN"] != "4.5" {
		t.Errorf("GAIN option = %q, want 4.5", c.Options["GAIN"])
	}
	if len(c.Sets) != 1 || c.Sets[0].X0.Value != 10 || c.Sets[0].Y0.Value != 20 {
		t.Errorf("set = %+v", c.Sets)
	}
}

func TestParseRejectsIncompleteXYPair(t *testing.T) {
	const cfg = `
X0 10
FUNCTION FlatSky
I_sky 1.0
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatal("expected an error for X0 without an immediately-following Y0")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Kind != ErrIncompleteXYPair {
		t.Errorf("Kind = %v, want ErrIncompleteXYPair", pe.Kind)
	}
}

func TestParseRejectsEmptyFunctionSet(t *testing.T) {
	const cfg = `
X0 10
Y0 20
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatal("expected an error for a function set with no FUNCTION blocks")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrNoFunctions {
		t.Fatalf("got %v, want ErrNoFunctions", err)
	}
}

func TestParseRejectsParameterBeforeFunction(t *testing.T) {
	const cfg = `
X0 10
Y0 20
I_sky 1.0
FUNCTION FlatSky
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatal("expected an error for a parameter line before any FUNCTION block")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrNoFunctionSection {
		t.Fatalf("got %v, want ErrNoFunctionSection", err)
	}
}

func TestParseRejectsBadLimits(t *testing.T) {
	const cfg = `
X0 10
Y0 20
FUNCTION FlatSky
I_sky 1.0 5,2
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatal("expected an error for LOW >= HIGH")
	}
}

func TestParseRejectsValueOutsideLimits(t *testing.T) {
	const cfg = `
X0 10
Y0 20
FUNCTION FlatSky
I_sky 10.0 0,5
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatal("expected an error for an initial value outside its limits")
	}
}

func TestParseMultipleFunctionSets(t *testing.T) {
	const cfg = `
X0 10
Y0 20
FUNCTION Gaussian
PA 0
ell 0
I_0 1
sigma 3

X0 50
Y0 60
FUNCTION PointSource
I_tot 100
`
	c, err := Parse(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(c.Sets) != 2 {
		t.Fatalf("got %d sets, want 2", len(c.Sets))
	}
	if c.Sets[1].X0.Value != 50 || c.Sets[1].Funcs[0].Name != "PointSource" {
		t.Errorf("second set = %+v", c.Sets[1])
	}
}
