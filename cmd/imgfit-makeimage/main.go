// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command imgfit-makeimage renders a function-set configuration to a FITS
// image, optionally convolved with a PSF.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/mlnoga/imgfit/internal/buildmodel"
	"github.com/mlnoga/imgfit/internal/fits"
	"github.com/mlnoga/imgfit/internal/imageio"
	"github.com/mlnoga/imgfit/internal/model"
	"github.com/mlnoga/imgfit/internal/modelio"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")

var config = flag.String("config", "", "model configuration `file` (required)")
var psf = flag.String("psf", "", "PSF image `file` for convolution, optional")
var ncols = flag.Int64("ncols", 512, "output image width in pixels")
var nrows = flag.Int64("nrows", 512, "output image height in pixels")
var out = flag.String("out", "out.fits", "write rendered image to `file`")
var refImage = flag.String("refimage", "", "image-info `file` naming a reference image whose NCOLS/NROWS override -ncols/-nrows")

func main() {
	var logWriter io.Writer = os.Stdout
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `imgfit-makeimage %s
Renders a model configuration file to a FITS image.

Usage: %s -config model.dat [-psf psf.fits] [-ncols N] [-nrows N] [-out out.fits]

Flags:
`, version, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(logWriter, "Could not create CPU profile: %s\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(logWriter, "Could not start CPU profile: %s\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *config == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(logWriter); err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(logWriter io.Writer) error {
	f, err := os.Open(*config)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *config, err)
	}
	defer f.Close()
	cfg, err := modelio.Parse(f)
	if err != nil {
		return err
	}
	m, params, _, err := buildmodel.Model(cfg)
	if err != nil {
		return err
	}

	cols, rows := int(*ncols), int(*nrows)
	if *refImage != "" {
		rf, err := os.Open(*refImage)
		if err != nil {
			return fmt.Errorf("opening %s: %w", *refImage, err)
		}
		defer rf.Close()
		imgCfg, err := imageio.Parse(rf)
		if err != nil {
			return err
		}
		if len(imgCfg.Images) == 0 {
			return fmt.Errorf("%s: no IMAGE_START block found", *refImage)
		}
		info := imgCfg.Images[0]
		if info.NCols > 0 && info.NRows > 0 {
			cols, rows = info.NCols, info.NRows
		}
	}

	mo := model.NewModelObject()
	mo.SetLogWriter(logWriter)
	if err := mo.DefineFunctionSets(m); err != nil {
		return err
	}
	if *psf != "" {
		psfData, psfCols, psfRows, err := imageio.LoadFloatImage(*psf, imageio.Section{Full: true}, logWriter)
		if err != nil {
			return fmt.Errorf("reading PSF %s: %w", *psf, err)
		}
		if err := mo.AttachPSF(psfData, psfCols, psfRows); err != nil {
			return err
		}
	}
	if err := mo.SetDataDimensions(cols, rows); err != nil {
		return err
	}

	if err := mo.CreateModelImage(params); err != nil {
		return err
	}
	img := mo.GetModelImage()

	data32 := make([]float32, len(img))
	for i, v := range img {
		data32[i] = float32(v)
	}
	outImg := fits.NewImageFromNaxisn([]int32{int32(cols), int32(rows)}, data32)
	return outImg.WriteFile(*out)
}
