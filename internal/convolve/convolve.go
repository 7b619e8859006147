// Package convolve implements FFT-based PSF convolution of a padded model
// image (C2) and block-averaged oversampled-region refinement (C3).
package convolve

import (
	"errors"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Convolver performs FFT-based 2D convolution of a fixed-size image with a
// fixed PSF. The PSF's forward transform is computed once in NewConvolver
// and reused by every subsequent Convolve call; Convolve itself is assumed
// infallible once setup has succeeded, matching the contract that only
// FFT-plan allocation (done at setup) can fail.
type Convolver struct {
	nCols, nRows int
	rowFFT       *fourier.CmplxFFT
	colFFT       *fourier.CmplxFFT
	psfFreq      []complex128 // row-major nRows*nCols

	rowScratch []complex128
	colScratch []complex128
	workBuf    []complex128
	freqBuf    []complex128
}

// NewConvolver builds a convolver for an image of size nCols x nRows, given
// a PSF of size psfCols x psfRows (row-major, psf[row*psfCols+col]). The PSF
// is renormalized to unit sum. The working size must be at least as large as
// the PSF; callers are expected to have already added a padding ring of
// psfCols columns and psfRows rows on each side of the data before calling
// this (nModelCols =
// nDataCols + 2*psfCols, nModelRows = nDataRows + 2*psfRows, per the padded
// working-image geometry).
func NewConvolver(psf []float64, psfCols, psfRows, nCols, nRows int) (*Convolver, error) {
	if psfCols <= 0 || psfRows <= 0 {
		return nil, errors.New("convolve: PSF dimensions must be positive")
	}
	if len(psf) != psfCols*psfRows {
		return nil, errors.New("convolve: PSF buffer length does not match declared dimensions")
	}
	if psfCols > nCols || psfRows > nRows {
		return nil, errors.New("convolve: PSF larger than the padded working image")
	}

	sum := 0.0
	for _, v := range psf {
		sum += v
	}
	if sum == 0 {
		return nil, errors.New("convolve: PSF has zero sum, cannot normalize to unit sum")
	}

	cv := &Convolver{
		nCols:      nCols,
		nRows:      nRows,
		rowFFT:     fourier.NewCmplxFFT(nCols),
		colFFT:     fourier.NewCmplxFFT(nRows),
		rowScratch: make([]complex128, nCols),
		colScratch: make([]complex128, nRows),
		workBuf:    make([]complex128, nCols*nRows),
		freqBuf:    make([]complex128, nCols*nRows),
		psfFreq:    make([]complex128, nCols*nRows),
	}

	// Wrap the normalized PSF into the padded working image so its center
	// lands at index (0,0) of the buffer with periodic wraparound, i.e. the
	// PSF is implicitly periodic with the pad.
	halfCols, halfRows := psfCols/2, psfRows/2
	for r := 0; r < psfRows; r++ {
		dstRow := ((r - halfRows) % nRows + nRows) % nRows
		for c := 0; c < psfCols; c++ {
			dstCol := ((c - halfCols) % nCols + nCols) % nCols
			cv.psfFreq[dstRow*nCols+dstCol] = complex(psf[r*psfCols+c]/sum, 0)
		}
	}
	cv.fft2DInPlace(cv.psfFreq, false)
	return cv, nil
}

// Dims returns the padded working size this convolver was set up for.
func (cv *Convolver) Dims() (nCols, nRows int) { return cv.nCols, cv.nRows }

// fft2DInPlace runs a separable row-then-column complex 2D FFT (or inverse,
// when inverse is true) of buf, overwriting it with the result.
func (cv *Convolver) fft2DInPlace(buf []complex128, inverse bool) {
	for r := 0; r < cv.nRows; r++ {
		off := r * cv.nCols
		row := buf[off : off+cv.nCols]
		if inverse {
			cv.rowFFT.Sequence(cv.rowScratch, row)
		} else {
			cv.rowFFT.Coefficients(cv.rowScratch, row)
		}
		copy(row, cv.rowScratch)
	}

	for c := 0; c < cv.nCols; c++ {
		for r := 0; r < cv.nRows; r++ {
			cv.colScratch[r] = buf[r*cv.nCols+c]
		}
		if inverse {
			cv.colFFT.Sequence(cv.colScratch, cv.colScratch)
		} else {
			cv.colFFT.Coefficients(cv.colScratch, cv.colScratch)
		}
		for r := 0; r < cv.nRows; r++ {
			buf[r*cv.nCols+c] = cv.colScratch[r]
		}
	}
}

// Convolve forward-FFTs image in place, multiplies pointwise by the PSF's
// transform, inverse-FFTs, and writes the real part back into image. image
// must have exactly the padded size declared at setup. gonum's CmplxFFT.
// Sequence (the inverse transform) is unnormalized, so a forward+inverse
// round trip scales every value by nCols*nRows; Convolve divides that back
// out explicitly.
func (cv *Convolver) Convolve(image []float64) error {
	if len(image) != cv.nCols*cv.nRows {
		return errors.New("convolve: image size does not match the padded size set up at NewConvolver")
	}
	for i, v := range image {
		cv.workBuf[i] = complex(v, 0)
	}
	cv.fft2DInPlace(cv.workBuf, false)
	for i := range cv.workBuf {
		cv.workBuf[i] *= cv.psfFreq[i]
	}
	cv.fft2DInPlace(cv.workBuf, true)
	scale := 1.0 / float64(cv.nCols*cv.nRows)
	for i, v := range cv.workBuf {
		image[i] = real(v) * scale
	}
	return nil
}
