// Package imageio parses the multi-image description format (§6.2): a
// sequence of IMAGE_START blocks, each naming its data/mask/error/PSF files
// (with optional [x1:x2,y1:y2] subsection suffixes per §6.3), its noise
// characteristics, its oversampled-PSF triples, its image-description
// parameters, and an optional trailing FUNCTIONS_START subsection of local
// functions. Grounded on imfit's imageparams_file_parser.cpp for exact
// token semantics and on the teacher's FITS header tokenizer for the
// hand-rolled line-scanning idiom.
package imageio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mlnoga/imgfit/internal/modelio"
)

// MaskConvention selects which mask pixel value means "good", per the
// MASK_ZERO_IS_GOOD / MASK_ZERO_IS_BAD flags.
type MaskConvention int

const (
	MaskZeroIsGood MaskConvention = iota // default
	MaskZeroIsBad
)

// ErrorConvention selects how ERROR-image pixel values are interpreted.
type ErrorConvention int

const (
	ErrorsAreSigmas ErrorConvention = iota // default
	ErrorsAreVariances
	ErrorsAreWeights
)

// ParamSpec is one optionally-limited or fixed scalar parameter, used for
// the per-image PIXEL_SCALE/IMAGE_PA/FLUX_SCALE/X0/Y0 quintuple.
type ParamSpec struct {
	Value     float64
	Fixed     bool
	HasLimits bool
	Low, High float64
}

// ImageInfo holds everything parsed from one IMAGE_START block.
type ImageInfo struct {
	DataFile  string
	DataSec   Section
	MaskFile  string
	MaskSec   Section
	HasMask   bool
	ErrorFile string
	ErrorSec  Section
	HasError  bool
	PSFFile   string
	PSFSec    Section
	HasPSF    bool

	Gain         float64
	ReadNoise    float64
	OriginalSky  float64
	ExposureTime float64
	NCombined    int

	NCols, NRows int // explicit NCOLS/NROWS override, 0 if unset

	MaskConvention  MaskConvention
	ErrorConvention ErrorConvention

	OversampledPSFFiles  []string
	OversampleScales     []int
	OversampledRegions   []string // "x1:x2,y1:y2" region strings, parsed by the convolve package

	// Image-description parameters (§4.5); PixelScale defaults to fixed=1
	// unless limits are given explicitly, matching imfit's special rule.
	PixelScale ParamSpec
	ImagePA    ParamSpec
	FluxScale  ParamSpec
	X0         ParamSpec
	Y0         ParamSpec

	LocalFunctions *modelio.Config // non-nil if a FUNCTIONS_START subsection was present
}

func newImageInfo() *ImageInfo {
	return &ImageInfo{
		Gain:         1,
		ExposureTime: 1,
		NCombined:    1,
		PixelScale:   ParamSpec{Value: 1, Fixed: true},
		ImagePA:      ParamSpec{Value: 0, Fixed: true},
		FluxScale:    ParamSpec{Value: 1},
		X0:           ParamSpec{Value: 0},
		Y0:           ParamSpec{Value: 0},
	}
}

// Config is a fully parsed image-info file: one ImageInfo per IMAGE_START
// block, in file order. Index 0 is always the reference image.
type Config struct {
	Images []*ImageInfo
}

// Parse reads a multi-image description file per spec §6.2.
func Parse(r io.Reader) (*Config, error) {
	type rawLine struct {
		text string
		line int
	}
	var lines []rawLine
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, rawLine{text, lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("imageio: %w", err)
	}

	var starts []int
	for i, l := range lines {
		if l.text == "IMAGE_START" || strings.HasPrefix(l.text, "IMAGE_START ") {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("imageio: no IMAGE_START lines found")
	}

	cfg := &Config{}
	for k, start := range starts {
		end := len(lines)
		if k+1 < len(starts) {
			end = starts[k+1]
		}
		info := newImageInfo()
		funcStart := -1
		for i := start + 1; i < end; i++ {
			if lines[i].text == "FUNCTIONS_START" {
				funcStart = i
				break
			}
			if err := storeLine(lines[i].text, lines[i].line, info); err != nil {
				return nil, err
			}
		}
		if funcStart >= 0 {
			var body strings.Builder
			for i := funcStart + 1; i < end; i++ {
				body.WriteString(lines[i].text)
				body.WriteByte('\n')
			}
			parsed, err := modelio.Parse(strings.NewReader(body.String()))
			if err != nil {
				return nil, fmt.Errorf("imageio: image %d local functions: %w", k, err)
			}
			info.LocalFunctions = parsed
		}
		cfg.Images = append(cfg.Images, info)
	}
	return cfg, nil
}

func storeLine(line string, lineNo int, info *ImageInfo) error {
	fields := strings.Fields(line)
	name := fields[0]

	requireValue := func() (string, error) {
		if len(fields) < 2 {
			return "", fmt.Errorf("imageio: line %d: %q requires a value", lineNo, name)
		}
		return fields[1], nil
	}
	asFloat := func() (float64, error) {
		s, err := requireValue()
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}
	asInt := func() (int, error) {
		s, err := requireValue()
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(s)
	}

	var err error
	switch name {
	case "GAIN":
		info.Gain, err = asFloat()
	case "READNOISE":
		info.ReadNoise, err = asFloat()
	case "ORIGINAL_SKY":
		info.OriginalSky, err = asFloat()
	case "EXPTIME":
		info.ExposureTime, err = asFloat()
	case "NCOMBINED":
		info.NCombined, err = asInt()
	case "NCOLS":
		info.NCols, err = asInt()
	case "NROWS":
		info.NRows, err = asInt()

	case "DATA":
		v, e := requireValue()
		if e != nil {
			return e
		}
		info.DataFile, info.DataSec, err = SplitFileNameSection(v)
	case "MASK":
		v, e := requireValue()
		if e != nil {
			return e
		}
		info.MaskFile, info.MaskSec, err = SplitFileNameSection(v)
		info.HasMask = true
	case "ERROR":
		v, e := requireValue()
		if e != nil {
			return e
		}
		info.ErrorFile, info.ErrorSec, err = SplitFileNameSection(v)
		info.HasError = true
	case "PSF":
		v, e := requireValue()
		if e != nil {
			return e
		}
		info.PSFFile, info.PSFSec, err = SplitFileNameSection(v)
		info.HasPSF = true

	case "OVERSAMPLED_PSF":
		v, e := requireValue()
		if e != nil {
			return e
		}
		info.OversampledPSFFiles = append(info.OversampledPSFFiles, v)
	case "OVERSAMPLE_SCALE":
		n, e := asInt()
		if e != nil {
			return e
		}
		info.OversampleScales = append(info.OversampleScales, n)
	case "OVERSAMPLED_REGION":
		v, e := requireValue()
		if e != nil {
			return e
		}
		info.OversampledRegions = append(info.OversampledRegions, v)

	case "MASK_ZERO_IS_GOOD":
		info.MaskConvention = MaskZeroIsGood
	case "MASK_ZERO_IS_BAD":
		info.MaskConvention = MaskZeroIsBad
	case "ERRORS_ARE_SIGMAS":
		info.ErrorConvention = ErrorsAreSigmas
	case "ERRORS_ARE_VARIANCES":
		info.ErrorConvention = ErrorsAreVariances
	case "ERRORS_ARE_WEIGHTS":
		info.ErrorConvention = ErrorsAreWeights

	case "PIXEL_SCALE":
		info.PixelScale, err = parseParamSpec(fields, true)
	case "IMAGE_PA":
		info.ImagePA, err = parseParamSpec(fields, true)
	case "FLUX_SCALE":
		info.FluxScale, err = parseParamSpec(fields, false)
	case "X0":
		info.X0, err = parseParamSpec(fields, false)
	case "Y0":
		info.Y0, err = parseParamSpec(fields, false)

	default:
		return fmt.Errorf("imageio: line %d: unrecognized keyword %q", lineNo, name)
	}
	if err != nil {
		return fmt.Errorf("imageio: line %d: %w", lineNo, err)
	}
	return nil
}

// parseParamSpec parses "NAME VALUE [fixed|LOW,HIGH]". fixedByDefault
// matches imfit's special rule for PIXEL_SCALE and IMAGE_PA: these are
// fixed unless limits are given explicitly.
func parseParamSpec(fields []string, fixedByDefault bool) (ParamSpec, error) {
	if len(fields) < 2 {
		return ParamSpec{}, fmt.Errorf("expected a value")
	}
	val, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return ParamSpec{}, fmt.Errorf("invalid value %q: %w", fields[1], err)
	}
	spec := ParamSpec{Value: val, Fixed: fixedByDefault}
	if len(fields) < 3 {
		return spec, nil
	}
	if fields[2] == "fixed" {
		spec.Fixed = true
		return spec, nil
	}
	if strings.Contains(fields[2], ",") {
		parts := strings.SplitN(fields[2], ",", 2)
		low, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return ParamSpec{}, fmt.Errorf("invalid low limit %q: %w", parts[0], err)
		}
		high, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return ParamSpec{}, fmt.Errorf("invalid high limit %q: %w", parts[1], err)
		}
		if !(low < high) {
			return ParamSpec{}, fmt.Errorf("limit LOW=%v must be less than HIGH=%v", low, high)
		}
		spec.Fixed = false
		spec.HasLimits = true
		spec.Low, spec.High = low, high
	}
	return spec, nil
}
