package model

import "github.com/mlnoga/imgfit/internal/funcs"

// FunctionSet is a nonempty ordered list of function instances sharing one
// (X0,Y0) center. The set's two center parameters always precede all of its
// component parameters in the flat parameter layout.
type FunctionSet struct {
	Funcs []funcs.Func
	Label string // optional, for introspection/config round-trip only
}

// NewFunctionSet constructs a function set from an ordered, nonempty list
// of function instances.
func NewFunctionSet(fns ...funcs.Func) *FunctionSet {
	return &FunctionSet{Funcs: fns}
}

// nParams returns the number of component parameters in the set, excluding
// the set's own (X0,Y0).
func (fs *FunctionSet) nParams() int {
	n := 0
	for _, f := range fs.Funcs {
		n += len(f.ParamNames())
	}
	return n
}

// Model is an ordered list of function sets, the unit of work a ModelObject
// evaluates over the pixel grid.
type Model struct {
	Sets []*FunctionSet
}

// NewModel constructs a model from an ordered, nonempty list of function sets.
func NewModel(sets ...*FunctionSet) *Model {
	return &Model{Sets: sets}
}

// NParams returns the total flat parameter count, 2*|sets| + sum(nparams(f)).
func (m *Model) NParams() int {
	n := 0
	for _, s := range m.Sets {
		n += 2 + s.nParams()
	}
	return n
}

// setOffsets returns, for each function set, the index of its X0 entry in
// the flat parameter vector.
func (m *Model) setOffsets() []int {
	offs := make([]int, len(m.Sets))
	cursor := 0
	for i, s := range m.Sets {
		offs[i] = cursor
		cursor += 2 + s.nParams()
	}
	return offs
}

// ParamNames returns the flat, ordered parameter name list: for each set,
// "X0","Y0" followed by each function's own parameter names in order. Names
// are not unique across sets; they exist for I/O/introspection only, never
// as a lookup key in the hot path.
func (m *Model) ParamNames() []string {
	names := make([]string, 0, m.NParams())
	for _, s := range m.Sets {
		names = append(names, "X0", "Y0")
		for _, f := range s.Funcs {
			names = append(names, f.ParamNames()...)
		}
	}
	return names
}

// ApplyParams runs Setup on every function instance using the values in
// params, which must have length NParams(). Each set's own (X0,Y0) is read
// from params unless overrideCenters is non-nil, in which case every set is
// instead centered at overrideCenters[i] (used by FindTotalFluxes, which
// re-centers every set at the middle of the data frame). pixScale
// and rotDeg are the image-description triple's length scale and rotation
// (degrees); the reference image passes pixScale=1, rotDeg=0, so every
// function's own Setup sees them as a no-op.
func (m *Model) ApplyParams(params []float64, overrideCenters []struct{ X0, Y0 float64 }, pixScale, rotDeg float64) error {
	if len(params) != m.NParams() {
		return errNParamsMismatch(len(params), m.NParams())
	}
	offs := m.setOffsets()
	for i, s := range m.Sets {
		off := offs[i]
		x0, y0 := params[off], params[off+1]
		if overrideCenters != nil {
			x0, y0 = overrideCenters[i].X0, overrideCenters[i].Y0
		}
		cursor := off + 2
		for _, f := range s.Funcs {
			f.Setup(params, cursor, x0, y0, pixScale, rotDeg)
			cursor += len(f.ParamNames())
		}
	}
	return nil
}

// FuncSetCenters returns the current (X0,Y0) of every function set as read
// from params, without running Setup.
func (m *Model) FuncSetCenters(params []float64) ([]struct{ X0, Y0 float64 }, error) {
	if len(params) != m.NParams() {
		return nil, errNParamsMismatch(len(params), m.NParams())
	}
	offs := m.setOffsets()
	centers := make([]struct{ X0, Y0 float64 }, len(m.Sets))
	for i, off := range offs {
		centers[i] = struct{ X0, Y0 float64 }{params[off], params[off+1]}
	}
	return centers, nil
}
