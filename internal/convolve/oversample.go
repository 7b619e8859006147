package convolve

import (
	"errors"

	"github.com/mlnoga/imgfit/internal/kahan"
)

// ValueAt is satisfied by funcs.Func; declared locally to avoid a dependency
// cycle between convolve and the function library (model wires them
// together).
type ValueAt interface {
	Value(x, y float64) float64
}

// Region computes a rectangular subregion of the model at an integer
// oversampling scale, optionally convolves it with an oversampled PSF, and
// block-averages the result back down into the corresponding cells of the
// main image (C3).
type Region struct {
	X1, Y1 int // main-image origin of the region, 1-based
	DX, DY int // region size, in main-image pixels
	Scale  int // oversampling factor S

	psfConv          *Convolver // nil if no oversampled PSF is attached
	psfOversampCols  int        // half-size padding contributed by the oversampled PSF, 0 if psfConv==nil
	psfOversampRows  int
}

// NewRegion validates geometry and optionally attaches an oversampled PSF.
// If psf is non-nil, psfCols/psfRows give its size in oversampled-pixel
// units and it is wrapped into a Convolver sized to the region's padded
// oversampled working image.
func NewRegion(x1, y1, dx, dy, scale int, psf []float64, psfCols, psfRows int) (*Region, error) {
	if dx <= 0 || dy <= 0 {
		return nil, errors.New("convolve: oversampled region must have positive extent")
	}
	if scale <= 0 {
		return nil, errors.New("convolve: oversampling scale must be positive")
	}
	r := &Region{X1: x1, Y1: y1, DX: dx, DY: dy, Scale: scale}
	if psf != nil {
		r.psfOversampCols = psfCols / 2
		r.psfOversampRows = psfRows / 2
		workCols := scale*dx + 2*r.psfOversampCols
		workRows := scale*dy + 2*r.psfOversampRows
		cv, err := NewConvolver(psf, psfCols, psfRows, workCols, workRows)
		if err != nil {
			return nil, err
		}
		r.psfConv = cv
	}
	return r, nil
}

// workDims returns the padded oversampled working-grid size.
func (r *Region) workDims() (cols, rows int) {
	return r.Scale*r.DX + 2*r.psfOversampCols, r.Scale*r.DY + 2*r.psfOversampRows
}

// ComputeAndDownsample evaluates the sum of fns over the region's padded
// oversampled grid, optionally convolves with the oversampled PSF, then
// block-averages the central Scale x Scale cells back into mainImage
// (row-major, mainCols x mainRows). X1,Y1 give the region's 1-based origin in
// the unpadded data frame; offsetCols,offsetRows shift that frame's origin
// within mainImage, so a caller writing into a PSF-padded model buffer passes
// the buffer's padding size and one writing directly into a data-sized image
// passes 0,0. Cells outside [X1,X1+DX) x [Y1,Y1+DY) are left untouched.
func (r *Region) ComputeAndDownsample(mainImage []float64, mainCols, mainRows, offsetCols, offsetRows int, fns []ValueAt) error {
	workCols, workRows := r.workDims()
	work := make([]float64, workCols*workRows)

	s := float64(r.Scale)
	halfCellOffset := 0.5/s - 0.5
	for i := 0; i < workRows; i++ {
		y := float64(r.Y1) + halfCellOffset + float64(i-r.psfOversampRows)/s
		for j := 0; j < workCols; j++ {
			x := float64(r.X1) + halfCellOffset + float64(j-r.psfOversampCols)/s
			var sum kahan.Sum
			for _, f := range fns {
				sum.Add(f.Value(x, y))
			}
			work[i*workCols+j] = sum.Total()
		}
	}

	if r.psfConv != nil {
		if err := r.psfConv.Convolve(work); err != nil {
			return err
		}
	}

	// Block-average the central Scale x Scale region and overwrite the
	// corresponding DX x DY cells of the main image.
	for dy := 0; dy < r.DY; dy++ {
		mainRow := r.Y1 - 1 + dy + offsetRows // convert 1-based to 0-based row index
		if mainRow < 0 || mainRow >= mainRows {
			continue
		}
		for dx := 0; dx < r.DX; dx++ {
			mainCol := r.X1 - 1 + dx + offsetCols
			if mainCol < 0 || mainCol >= mainCols {
				continue
			}
			var sum kahan.Sum
			baseRow := r.psfOversampRows + dy*r.Scale
			baseCol := r.psfOversampCols + dx*r.Scale
			for sr := 0; sr < r.Scale; sr++ {
				rowOff := (baseRow + sr) * workCols
				for sc := 0; sc < r.Scale; sc++ {
					sum.Add(work[rowOff+baseCol+sc])
				}
			}
			mainImage[mainRow*mainCols+mainCol] = sum.Total() / (s * s)
		}
	}
	return nil
}
