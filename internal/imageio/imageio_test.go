package imageio

import (
	"strings"
	"testing"
)

const twoImageConfig = `
IMAGE_START
DATA        ref.fits
MASK        ref_mask.fits
ERROR       ref_sigma.fits
PSF         ref_psf.fits
GAIN        4.5
READNOISE   0.6
ORIGINAL_SKY 2.359
EXPTIME     720
NCOMBINED   4

IMAGE_START
DATA        im2.fits[100:300,150:350]
PIXEL_SCALE 0.5          0.4,0.6
IMAGE_PA    15.0
FLUX_SCALE  1.2
X0          40
Y0          60
`

func TestParseTwoImageConfig(t *testing.T) {
	cfg, err := Parse(strings.NewReader(twoImageConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(cfg.Images))
	}
	ref := cfg.Images[0]
	if ref.DataFile != "ref.fits" || !ref.DataSec.Full {
		t.Errorf("ref data = %+v", ref.DataFile)
	}
	if ref.Gain != 4.5 || ref.ReadNoise != 0.6 || ref.OriginalSky != 2.359 || ref.ExposureTime != 720 || ref.NCombined != 4 {
		t.Errorf("ref noise params = %+v", ref)
	}
	if !ref.HasMask || !ref.HasError || !ref.HasPSF {
		t.Errorf("ref should have mask, error, and PSF: %+v", ref)
	}

	im2 := cfg.Images[1]
	if im2.DataFile != "im2.fits" || im2.DataSec.Full {
		t.Fatalf("im2 data = %+v", im2.DataFile)
	}
	if im2.DataSec.X1 != 100 || im2.DataSec.X2 != 300 || im2.DataSec.Y1 != 150 || im2.DataSec.Y2 != 350 {
		t.Errorf("im2 section = %+v", im2.DataSec)
	}
	if im2.PixelScale.Value != 0.5 || im2.PixelScale.Fixed || !im2.PixelScale.HasLimits {
		t.Errorf("im2 PixelScale = %+v", im2.PixelScale)
	}
	if im2.ImagePA.Value != 15 || !im2.ImagePA.Fixed {
		t.Errorf("im2 ImagePA = %+v (should default to fixed with no explicit limits)", im2.ImagePA)
	}
	if im2.FluxScale.Value != 1.2 || im2.FluxScale.Fixed {
		t.Errorf("im2 FluxScale = %+v (FLUX_SCALE has no special fixed-by-default rule)", im2.FluxScale)
	}
	if im2.X0.Value != 40 || im2.Y0.Value != 60 {
		t.Errorf("im2 X0/Y0 = %v/%v", im2.X0.Value, im2.Y0.Value)
	}
}

func TestParseRejectsMissingImageStart(t *testing.T) {
	_, err := Parse(strings.NewReader("GAIN 1.0\nDATA foo.fits\n"))
	if err == nil {
		t.Fatal("expected an error for a file with no IMAGE_START block")
	}
}

func TestParseWithLocalFunctionsSubsection(t *testing.T) {
	const cfg = `
IMAGE_START
DATA ref.fits
FUNCTIONS_START
X0 10
Y0 20
FUNCTION PointSource
I_tot 5.0
`
	c, err := Parse(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	info := c.Images[0]
	if info.LocalFunctions == nil {
		t.Fatal("expected a parsed local-functions subsection")
	}
	if len(info.LocalFunctions.Sets) != 1 || info.LocalFunctions.Sets[0].Funcs[0].Name != "PointSource" {
		t.Errorf("local functions = %+v", info.LocalFunctions.Sets)
	}
}

func TestSplitFileNameSectionWildcard(t *testing.T) {
	name, sec, err := SplitFileNameSection("foo.fits[*,*]")
	if err != nil {
		t.Fatalf("SplitFileNameSection: %v", err)
	}
	if name != "foo.fits" || !sec.Full {
		t.Errorf("name=%q sec=%+v", name, sec)
	}
}

func TestCropExtractsSubsection(t *testing.T) {
	full := []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
	}
	out, cols, rows, err := Crop(full, 4, 3, Section{X1: 2, X2: 3, Y1: 1, Y2: 2})
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	if cols != 2 || rows != 2 {
		t.Fatalf("dims = %dx%d, want 2x2", cols, rows)
	}
	want := []float64{2, 3, 6, 7}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("pixel %d = %v, want %v", i, out[i], want[i])
		}
	}
}
