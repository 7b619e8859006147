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

package fits

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

const blockSize = 2880
const cardSize = 80

// WriteFile writes the image as a single-HDU FITS file: a SIMPLE/BITPIX=-32
// primary header (padded to a 2880-byte block) followed by big-endian
// float32 data, padded to a block boundary. The reader never needed a
// writer of its own, since nightlight's outputs are JPEG/TIFF previews;
// this mirrors its header-field naming (BITPIX, NAXISn, BZERO, BSCALE) in
// the opposite direction.
func (f *Image) WriteFile(fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	if err := f.Write(w); err != nil {
		return err
	}
	return w.Flush()
}

func (f *Image) Write(w *bufio.Writer) error {
	var cards []string
	cards = append(cards, card("SIMPLE", "T", "conforms to FITS standard"))
	cards = append(cards, card("BITPIX", "-32", "32-bit IEEE float"))
	cards = append(cards, card("NAXIS", fmt.Sprintf("%d", len(f.Naxisn)), ""))
	for i, n := range f.Naxisn {
		cards = append(cards, card(fmt.Sprintf("NAXIS%d", i+1), fmt.Sprintf("%d", n), ""))
	}
	cards = append(cards, card("BZERO", "0", ""))
	cards = append(cards, card("BSCALE", "1", ""))
	if f.Exposure != 0 {
		cards = append(cards, card("EXPTIME", fmt.Sprintf("%g", f.Exposure), "exposure time in seconds"))
	}
	cards = append(cards, "END"+spaces(cardSize-3))

	header := ""
	for _, c := range cards {
		header += c
	}
	if rem := len(header) % blockSize; rem != 0 {
		header += spaces(blockSize - rem)
	}
	if _, err := w.WriteString(header); err != nil {
		return err
	}

	buf := make([]byte, 4*len(f.Data))
	for i, v := range f.Data {
		binary.BigEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	if rem := len(buf) % blockSize; rem != 0 {
		if _, err := w.Write(make([]byte, blockSize-rem)); err != nil {
			return err
		}
	}
	return nil
}

func card(key, value, comment string) string {
	c := fmt.Sprintf("%-8s= %20s", key, value)
	if comment != "" {
		c += " / " + comment
	}
	if len(c) > cardSize {
		c = c[:cardSize]
	}
	return c + spaces(cardSize-len(c))
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
