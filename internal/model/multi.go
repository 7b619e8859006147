package model

import (
	"errors"
	"fmt"

	"github.com/mlnoga/imgfit/internal/parallelism"
)

// ImageEntry couples one child ModelObject to its image-description triple.
// Entry 0 is the reference image; its Desc is ignored (implicit identity).
type ImageEntry struct {
	MO   *ModelObject
	Desc ImageDescription
}

// MultiImage coordinates N single-image ModelObjects that share one global
// model (evaluated in a common reference frame) plus, for any image
// (including the reference image), optional per-image local functions
// appended at the tail of that image's own parameter vector. The external flat vector layout follows spec §4.5:
// per-image (pixScale,rot,fluxScale,X0im,Y0im) quintuples for images 1..N-1,
// then the global model parameters, then each image's local-function
// parameters in image order.
type MultiImage struct {
	model   *Model // the shared global model, evaluated in the reference frame
	images  []*ImageEntry
	nLocal  []int // per-image local-function parameter count, image 0..N-1
	nPixels []int // per-image pixel count, cached after images are added
}

// NewMultiImage constructs an empty MultiImage over the shared global model.
func NewMultiImage(m *Model) *MultiImage {
	return &MultiImage{model: m}
}

// AddImage appends a child ModelObject. nLocal is the number of local
// (per-image) function parameters already wired into mo's model, which must
// appear after the global model's own function sets in mo's Model. index 0
// is the reference image and its desc is ignored.
func (mi *MultiImage) AddImage(mo *ModelObject, desc ImageDescription, nLocal int) error {
	if mo == nil {
		return errors.New("model: cannot add a nil image")
	}
	mi.images = append(mi.images, &ImageEntry{MO: mo, Desc: desc})
	mi.nLocal = append(mi.nLocal, nLocal)
	mi.nPixels = append(mi.nPixels, mo.dataCols*mo.dataRows)
	return nil
}

// NImages returns the number of attached images.
func (mi *MultiImage) NImages() int { return len(mi.images) }

// NParams returns the total external flat parameter count:
// 5*(N-1) + nGlobalModelParams + sum(nLocalParams).
func (mi *MultiImage) NParams() int {
	n := mi.model.NParams()
	if len(mi.images) > 1 {
		n += 5 * (len(mi.images) - 1)
	}
	for _, nl := range mi.nLocal {
		n += nl
	}
	return n
}

// NPixels returns the total pixel count across every attached image.
func (mi *MultiImage) NPixels() int {
	total := 0
	for _, n := range mi.nPixels {
		total += n
	}
	return total
}

// splitExternal decomposes the external flat vector theta into, for each
// non-reference image, its ImageDescription override and, for every image,
// its slice of local-function parameters; and returns the global model
// parameter slice.
func (mi *MultiImage) splitExternal(theta []float64) (descs []ImageDescription, global []float64, local [][]float64, err error) {
	if len(theta) != mi.NParams() {
		return nil, nil, nil, fmt.Errorf("model: external parameter vector has length %d, want %d", len(theta), mi.NParams())
	}
	n := len(mi.images)
	descs = make([]ImageDescription, n)
	cursor := 0
	for i := 1; i < n; i++ {
		descs[i] = ImageDescription{
			PixScale:  theta[cursor+0],
			RotDeg:    theta[cursor+1],
			FluxScale: theta[cursor+2],
			X0Image:   theta[cursor+3],
			Y0Image:   theta[cursor+4],
		}
		cursor += 5
	}
	nGlobal := mi.model.NParams()
	global = theta[cursor : cursor+nGlobal]
	cursor += nGlobal

	local = make([][]float64, n)
	for i := 0; i < n; i++ {
		local[i] = theta[cursor : cursor+mi.nLocal[i]]
		cursor += mi.nLocal[i]
	}
	return descs, global, local, nil
}

// perImageParams derives image i's own parameter vector (global model
// parameters, transformed into image i's frame per §4.6, followed by image
// i's local-function parameters) from the external vector's decomposition.
func (mi *MultiImage) perImageParams(i int, descs []ImageDescription, global []float64, local [][]float64) ([]float64, error) {
	var globalForImage []float64
	if i == 0 {
		globalForImage = append([]float64(nil), global...)
	} else {
		transformed, err := TransformParams(mi.model, global, descs[i])
		if err != nil {
			return nil, fmt.Errorf("model: image %d: %w", i, err)
		}
		globalForImage = transformed
	}
	out := make([]float64, 0, len(globalForImage)+len(local[i]))
	out = append(out, globalForImage...)
	out = append(out, local[i]...)
	return out, nil
}

// CreateAllModelImages generates every child image's model image from the
// external flat vector theta, per spec §4.5. Images are generated
// concurrently; each image's internal state (weight/mask/model buffers) is
// private to its own ModelObject, so this is safe.
func (mi *MultiImage) CreateAllModelImages(theta []float64) error {
	descs, global, local, err := mi.splitExternal(theta)
	if err != nil {
		return err
	}
	errs := make([]error, len(mi.images))
	parallelism.ForEachChunk(len(mi.images), func(lower, upper int) {
		for i := lower; i < upper; i++ {
			params, err := mi.perImageParams(i, descs, global, local)
			if err != nil {
				errs[i] = err
				continue
			}
			if i > 0 {
				mi.images[i].MO.SetFluxScale(descs[i].FluxScale)
				mi.images[i].MO.SetImageTransform(descs[i].PixScale, descs[i].RotDeg)
			}
			errs[i] = mi.images[i].MO.CreateModelImage(params)
		}
	})
	for i, e := range errs {
		if e != nil {
			return fmt.Errorf("model: image %d: %w", i, e)
		}
	}
	return nil
}

// GetFitStatistic generates every image's model image and returns the sum
// of their per-image fit statistics.
func (mi *MultiImage) GetFitStatistic(theta []float64) (float64, error) {
	descs, global, local, err := mi.splitExternal(theta)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for i, entry := range mi.images {
		params, err := mi.perImageParams(i, descs, global, local)
		if err != nil {
			return 0, err
		}
		if i > 0 {
			entry.MO.SetFluxScale(descs[i].FluxScale)
			entry.MO.SetImageTransform(descs[i].PixScale, descs[i].RotDeg)
		}
		fs, err := entry.MO.GetFitStatistic(params)
		if err != nil {
			return 0, fmt.Errorf("model: image %d: %w", i, err)
		}
		total += fs
	}
	return total, nil
}

// ComputeDeviates fills out with the concatenation of every image's per-
// pixel deviate vector, in image order. out must have length NPixels().
func (mi *MultiImage) ComputeDeviates(theta []float64, out []float64) error {
	if len(out) != mi.NPixels() {
		return fmt.Errorf("model: deviate buffer length %d, want %d", len(out), mi.NPixels())
	}
	descs, global, local, err := mi.splitExternal(theta)
	if err != nil {
		return err
	}
	offset := 0
	for i, entry := range mi.images {
		params, err := mi.perImageParams(i, descs, global, local)
		if err != nil {
			return err
		}
		if i > 0 {
			entry.MO.SetFluxScale(descs[i].FluxScale)
			entry.MO.SetImageTransform(descs[i].PixScale, descs[i].RotDeg)
		}
		n := mi.nPixels[i]
		if err := entry.MO.ComputeDeviates(params, out[offset:offset+n]); err != nil {
			return fmt.Errorf("model: image %d: %w", i, err)
		}
		offset += n
	}
	return nil
}
