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

// Command imgfit-fit fits a function-set model to one or more images
// described by an image-info file, minimizing the configured fit statistic
// with a derivative-free Nelder-Mead solver.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"runtime/pprof"

	"github.com/pbnjay/memory"
	"gonum.org/v1/gonum/optimize"

	"github.com/mlnoga/imgfit/internal/buildmodel"
	"github.com/mlnoga/imgfit/internal/imageio"
	"github.com/mlnoga/imgfit/internal/model"
	"github.com/mlnoga/imgfit/internal/modelio"
)

const version = "0.1.0"

var totalMiBs = memory.TotalMemory() / 1024 / 1024

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")

var config = flag.String("config", "", "model configuration `file` (required)")
var imageInfo = flag.String("imageinfo", "", "image-info `file` describing data/mask/error/PSF (required)")
var solver = flag.String("solver", "nm", "fitting solver: nm (Nelder-Mead); de and nlopt are not built in this configuration")
var maxIter = flag.Int64("max-iterations", 0, "maximum solver iterations, 0=solver default")
var cash = flag.Bool("cash", false, "use the Cash statistic instead of chi-square")
var poissonMLR = flag.Bool("poisson-mlr", false, "use the Poisson maximum-likelihood-ratio statistic instead of chi-square")
var out = flag.String("out", "", "write the best-fit model configuration to `file` instead of stdout")

func main() {
	var logWriter io.Writer = os.Stdout
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `imgfit-fit %s
Fits a function-set model configuration against image data.

Usage: %s -config model.dat -imageinfo images.dat [-solver nm] [-out bestfit.dat]

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

	if *config == "" || *imageInfo == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *solver != "nm" {
		fmt.Fprintf(logWriter, "Error: solver %q is not built in this configuration; only \"nm\" (Nelder-Mead) is available\n", *solver)
		os.Exit(1)
	}

	if err := run(logWriter); err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(logWriter io.Writer) error {
	cf, err := os.Open(*config)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *config, err)
	}
	defer cf.Close()
	cfg, err := modelio.Parse(cf)
	if err != nil {
		return err
	}
	m, params, meta, err := buildmodel.Model(cfg)
	if err != nil {
		return err
	}

	imf, err := os.Open(*imageInfo)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *imageInfo, err)
	}
	defer imf.Close()
	imgCfg, err := imageio.Parse(imf)
	if err != nil {
		return err
	}
	if len(imgCfg.Images) == 0 {
		return fmt.Errorf("%s: no IMAGE_START block found", *imageInfo)
	}
	fmt.Fprintf(logWriter, "Physical memory is %d MiB, fitting %d image(s).\n", totalMiBs, len(imgCfg.Images))

	mo, err := buildModelObject(m, imgCfg.Images[0], logWriter)
	if err != nil {
		return err
	}

	freeIdx := buildmodel.FreeIndices(meta)
	x0 := buildmodel.Reduce(params, freeIdx)
	full := append([]float64(nil), params...)

	objective := func(x []float64) float64 {
		buildmodel.Expand(full, freeIdx, x)
		fs, err := mo.FitStatistic(full)
		if err != nil {
			return math.Inf(1)
		}
		return fs
	}

	var settings *optimize.Settings
	if *maxIter > 0 {
		settings = &optimize.Settings{MajorIterations: int(*maxIter)}
	}
	problem := optimize.Problem{Func: objective}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}

	buildmodel.Expand(full, freeIdx, result.X)
	fmt.Fprintf(logWriter, "Best-fit %s statistic: %g after %d iterations\n", mo.FitStatisticName(), result.F, result.Stats.MajorIterations)

	var outWriter io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *out, err)
		}
		defer f.Close()
		outWriter = f
	}
	return writeResult(outWriter, m, full)
}

func buildModelObject(m *model.Model, info *imageio.ImageInfo, logWriter io.Writer) (*model.ModelObject, error) {
	data, mask, errImg, psf, cols, rows, psfCols, psfRows, err := imageio.LoadImages(info, logWriter)
	if err != nil {
		return nil, err
	}

	mo := model.NewModelObject()
	mo.SetLogWriter(logWriter)
	if err := mo.DefineFunctionSets(m); err != nil {
		return nil, err
	}
	if len(psf) > 0 {
		if err := mo.AttachPSF(psf, psfCols, psfRows); err != nil {
			return nil, err
		}
	}
	if err := mo.AttachData(data, cols, rows); err != nil {
		return nil, err
	}
	if mask != nil {
		if err := mo.AttachMask(mask, buildmodel.MaskConvention(info.MaskConvention)); err != nil {
			return nil, err
		}
	}

	noise := buildmodel.Noise(info)
	switch {
	case errImg != nil:
		if err := mo.AttachExternalErrors(errImg, buildmodel.ErrorConvention(info.ErrorConvention)); err != nil {
			return nil, err
		}
	case *cash:
		if err := mo.UseCashStatistic(noise); err != nil {
			return nil, err
		}
	case *poissonMLR:
		if err := mo.UsePoissonMLRStatistic(noise); err != nil {
			return nil, err
		}
	default:
		if err := mo.UseDataErrors(noise); err != nil {
			return nil, err
		}
	}

	if err := mo.FinalizeForFitting(); err != nil {
		return nil, err
	}
	return mo, nil
}

func writeResult(w io.Writer, m *model.Model, params []float64) error {
	names := m.ParamNames()
	cursor := 0
	for _, s := range m.Sets {
		fmt.Fprintf(w, "X0\t%.6f\nY0\t%.6f\n", params[cursor], params[cursor+1])
		cursor += 2
		for _, f := range s.Funcs {
			fmt.Fprintf(w, "\nFUNCTION %s\n", f.Name())
			for range f.ParamNames() {
				fmt.Fprintf(w, "%s\t%.6f\n", names[cursor], params[cursor])
				cursor++
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
