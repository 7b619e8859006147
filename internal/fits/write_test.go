package fits

import (
	"bufio"
	"bytes"
	"io"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	data := []float32{1.5, -2.25, 3, 4, 5, 6}
	img := NewImageFromNaxisn([]int32{3, 2}, data)
	img.Exposure = 30

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := img.Write(w); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.Len()%blockSize != 0 {
		t.Fatalf("output length %d is not a multiple of the FITS block size %d", buf.Len(), blockSize)
	}

	readBack := NewImage()
	if err := readBack.Read(bytes.NewReader(buf.Bytes()), true, io.Discard); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(readBack.Naxisn) != 2 || readBack.Naxisn[0] != 3 || readBack.Naxisn[1] != 2 {
		t.Fatalf("Naxisn = %v, want [3 2]", readBack.Naxisn)
	}
	if len(readBack.Data) != len(data) {
		t.Fatalf("Data length = %d, want %d", len(readBack.Data), len(data))
	}
	for i, v := range data {
		if readBack.Data[i] != v {
			t.Errorf("pixel %d = %v, want %v", i, readBack.Data[i], v)
		}
	}
	if readBack.Bitpix != -32 {
		t.Errorf("Bitpix = %d, want -32", readBack.Bitpix)
	}
}
