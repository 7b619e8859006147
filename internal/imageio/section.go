package imageio

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// reSection matches the CFITSIO-style subsection suffix on a filename, e.g.
// "n100.fits[250:350,200:300]" or "n100.fits[*,*]" (spec §6.3).
var reSection = regexp.MustCompile(`^(.*)\[([^,\]]+),([^,\]]+)\]$`)

// Section is a 1-based, inclusive pixel-range extraction from a larger FITS
// image, as named in a filename's bracketed suffix.
type Section struct {
	X1, X2 int // 1-based inclusive column range; used only when Full is false
	Y1, Y2 int
	Full   bool // true if both axes used the "*" wildcard (no cropping); a "*" on only one axis is rejected by SplitFileNameSection
}

// SplitFileNameSection splits a possibly-bracketed filename into the bare
// path and its requested Section. A filename without a bracket suffix
// returns Full: true.
func SplitFileNameSection(nameWithSection string) (fileName string, sec Section, err error) {
	m := reSection.FindStringSubmatch(nameWithSection)
	if m == nil {
		return nameWithSection, Section{Full: true}, nil
	}
	fileName = m[1]
	xPart, yPart := m[2], m[3]
	if xPart == "*" && yPart == "*" {
		return fileName, Section{Full: true}, nil
	}
	x1, x2, err := parseRange(xPart)
	if err != nil {
		return "", Section{}, fmt.Errorf("imageio: bad column range %q in %q: %w", xPart, nameWithSection, err)
	}
	y1, y2, err := parseRange(yPart)
	if err != nil {
		return "", Section{}, fmt.Errorf("imageio: bad row range %q in %q: %w", yPart, nameWithSection, err)
	}
	return fileName, Section{X1: x1, X2: x2, Y1: y1, Y2: y2}, nil
}

func parseRange(s string) (lo, hi int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected LOW:HIGH, got %q", s)
	}
	lo, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	if lo < 1 || hi < lo {
		return 0, 0, fmt.Errorf("range %d:%d is not a valid 1-based, increasing pixel range", lo, hi)
	}
	return lo, hi, nil
}

// Crop extracts sec from a full-frame buffer of size fullCols x fullRows,
// returning the cropped buffer and its dimensions. A Full section returns
// the input unchanged.
func Crop(full []float64, fullCols, fullRows int, sec Section) (out []float64, cols, rows int, err error) {
	if sec.Full {
		return full, fullCols, fullRows, nil
	}
	if sec.X2 > fullCols || sec.Y2 > fullRows {
		return nil, 0, 0, fmt.Errorf("imageio: section [%d:%d,%d:%d] exceeds image dimensions %dx%d",
			sec.X1, sec.X2, sec.Y1, sec.Y2, fullCols, fullRows)
	}
	cols = sec.X2 - sec.X1 + 1
	rows = sec.Y2 - sec.Y1 + 1
	out = make([]float64, cols*rows)
	for row := 0; row < rows; row++ {
		srcRow := (sec.Y1 - 1) + row
		srcStart := srcRow*fullCols + (sec.X1 - 1)
		copy(out[row*cols:(row+1)*cols], full[srcStart:srcStart+cols])
	}
	return out, cols, rows, nil
}
