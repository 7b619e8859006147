package imageio

import (
	"fmt"
	"io"

	"github.com/mlnoga/imgfit/internal/fits"
)

// LoadFloatImage reads a FITS file (bracketed section suffix already split
// off into sec) and returns its pixel data as float64, cropped to sec if it
// isn't Full.
func LoadFloatImage(fileName string, sec Section, logWriter io.Writer) (data []float64, cols, rows int, err error) {
	img, err := fits.NewImageFromFile(fileName, 0, logWriter)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("imageio: reading %s: %w", fileName, err)
	}
	if len(img.Naxisn) < 2 {
		return nil, 0, 0, fmt.Errorf("imageio: %s is not a 2D image", fileName)
	}
	fullCols, fullRows := int(img.Naxisn[0]), int(img.Naxisn[1])
	full := make([]float64, len(img.Data))
	for i, v := range img.Data {
		full[i] = float64(v)
	}
	return Crop(full, fullCols, fullRows, sec)
}

// LoadImages reads every file referenced by an ImageInfo (data, and
// whichever of mask/error/PSF are present), applying each one's section
// crop. The data image's dimensions constrain the others: mask and error
// images must match it exactly.
func LoadImages(info *ImageInfo, logWriter io.Writer) (data, mask, errImg, psf []float64, cols, rows, psfCols, psfRows int, err error) {
	data, cols, rows, err = LoadFloatImage(info.DataFile, info.DataSec, logWriter)
	if err != nil {
		return nil, nil, nil, nil, 0, 0, 0, 0, err
	}
	var maskOut, errOut []float64
	if info.HasMask {
		var mc, mr int
		maskOut, mc, mr, err = LoadFloatImage(info.MaskFile, info.MaskSec, logWriter)
		if err != nil {
			return nil, nil, nil, nil, 0, 0, 0, 0, err
		}
		if mc != cols || mr != rows {
			return nil, nil, nil, nil, 0, 0, 0, 0, fmt.Errorf("imageio: mask dimensions %dx%d do not match data %dx%d", mc, mr, cols, rows)
		}
	}
	if info.HasError {
		var ec, er int
		errOut, ec, er, err = LoadFloatImage(info.ErrorFile, info.ErrorSec, logWriter)
		if err != nil {
			return nil, nil, nil, nil, 0, 0, 0, 0, err
		}
		if ec != cols || er != rows {
			return nil, nil, nil, nil, 0, 0, 0, 0, fmt.Errorf("imageio: error image dimensions %dx%d do not match data %dx%d", ec, er, cols, rows)
		}
	}
	if info.HasPSF {
		psf, psfCols, psfRows, err = LoadFloatImage(info.PSFFile, info.PSFSec, logWriter)
		if err != nil {
			return nil, nil, nil, nil, 0, 0, 0, 0, err
		}
	}
	return data, maskOut, errOut, psf, cols, rows, psfCols, psfRows, nil
}
