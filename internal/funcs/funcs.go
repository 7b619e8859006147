// Package funcs implements the closed family of parametric 2D intensity
// functions that make up an additive image model: each type caches its
// setup state (center, derived constants) in Setup and is then queried
// per-pixel through Value. Registration is static, following the "tagged
// sum of capability interfaces" design called for instead of an open
// inheritance hierarchy.
package funcs

import "math"

// Func is the contract every component function implements. Setup and Value
// are never called concurrently against the same instance; Value calls
// between two Setup calls are referentially transparent.
type Func interface {
	// Name returns the registered function-type name, e.g. "Sersic".
	Name() string
	// ParamNames returns the ordered, fittable parameter names. The two
	// center parameters (X0,Y0) are not included; they live in the owning
	// function set, not the function instance.
	ParamNames() []string
	// Setup caches x0,y0 and the parameter values at
	// params[offset:offset+len(ParamNames())]. pixScale and rotDeg are the
	// image-description triple's length scale and rotation (degrees) for
	// the image currently being modeled: implementations scale their own
	// length parameters by pixScale and add rotDeg to their own position
	// angle, so Value returns intensity already transformed into that
	// image's frame. Reference-image and single-image callers pass
	// pixScale=1, rotDeg=0.
	Setup(params []float64, offset int, x0, y0, pixScale, rotDeg float64)
	// Value returns the intensity contribution at geometric pixel-center (x,y).
	Value(x, y float64) float64
	// CanComputeTotalFlux reports whether TotalFlux returns a valid analytic value.
	CanComputeTotalFlux() bool
	// TotalFlux returns the analytically integrated flux, if CanComputeTotalFlux.
	TotalFlux() float64
}

// New constructs a function instance by registered type name. Returns nil
// if name is not a known function type.
func New(name string) Func {
	ctor, ok := registry[name]
	if !ok {
		return nil
	}
	return ctor()
}

// Names returns every registered function-type name.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

var registry = map[string]func() Func{}

func register(name string, ctor func() Func) {
	registry[name] = ctor
}

// rotateToMajorAxis rotates (dx,dy) by -(PA+90°) (PA measured in degrees,
// conventionally east of north / counterclockwise from the +y axis in
// imfit's convention) into a frame where xp runs along the major axis.
func rotateToMajorAxis(dx, dy, paDeg float64) (xp, yp float64) {
	// imfit measures PA from +y axis, increasing counterclockwise toward -x.
	theta := (paDeg + 90.0) * math.Pi / 180.0
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	xp = dx*cosT + dy*sinT
	yp = -dx*sinT + dy*cosT
	return xp, yp
}

// ellipticalRadius returns the elliptical-isophote radius for offset (dx,dy)
// from center, given position angle paDeg and ellipticity ell (0=circular).
func ellipticalRadius(dx, dy, paDeg, ell float64) float64 {
	xp, yp := rotateToMajorAxis(dx, dy, paDeg)
	q := 1.0 - ell
	if q <= 0 {
		q = 1e-6
	}
	return math.Hypot(xp, yp/q)
}

// subsampleAverage evaluates valueAt on an n x n grid centered on (x,y)
// spanning one pixel (width 1 in image units) and returns the mean. Used by
// functions whose central gradient is steep relative to the pixel grid.
func subsampleAverage(valueAt func(x, y float64) float64, x, y float64, n int) float64 {
	if n <= 1 {
		return valueAt(x, y)
	}
	sum := 0.0
	step := 1.0 / float64(n)
	start := -0.5 + step/2
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum += valueAt(x+start+float64(i)*step, y+start+float64(j)*step)
		}
	}
	return sum / float64(n*n)
}

// defaultSubsampleN is the subsampling grid factor applied when a function
// decides the current pixel needs it.
const defaultSubsampleN = 5
