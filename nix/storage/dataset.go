package storage

import (
	"fmt"
	"reflect"

	"github.com/G-Node/nix-sub001/types"
)

// Dataset is a typed n-dimensional array stored in row-major order
type Dataset struct {
	dtype types.DataType
	shape types.NDSize
	data  any
}

// NewDataset allocates a zero filled dataset
func NewDataset(dt types.DataType, shape types.NDSize) (*Dataset, error) {
	if dt == types.Nothing || dt.MakeSlice(0) == nil {
		return nil, fmt.Errorf("%w: cannot allocate %s", types.ErrInvalidDataType, dt)
	}
	return &Dataset{
		dtype: dt,
		shape: shape.Clone(),
		data:  dt.MakeSlice(int(shape.ElementCount())),
	}, nil
}

// NewDatasetFromData builds a dataset of type dt holding a copy of data,
// converting numeric elements when needed.
func NewDatasetFromData(dt types.DataType, shape types.NDSize, data any) (*Dataset, error) {
	ds, err := NewDataset(dt, shape)
	if err != nil {
		return nil, err
	}
	if err := types.Convert(ds.data, data); err != nil {
		return nil, fmt.Errorf("dataset of shape %s: %w", shape, err)
	}
	return ds, nil
}

// DataType returns the element type
func (d *Dataset) DataType() types.DataType {
	return d.dtype
}

// Shape returns a copy of the current extent
func (d *Dataset) Shape() types.NDSize {
	return d.shape.Clone()
}

// Data returns a copy of all elements in row-major order
func (d *Dataset) Data() any {
	return types.CloneSlice(d.data)
}

func (d *Dataset) checkBox(count, offset types.NDSize) error {
	if len(count) != len(d.shape) || len(offset) != len(d.shape) {
		return fmt.Errorf("%w: dataset has rank %d, got count %s and offset %s",
			types.ErrIncompatibleDimensions, len(d.shape), count, offset)
	}
	if !d.shape.Contains(offset, count) {
		return fmt.Errorf("%w: region offset %s count %s exceeds extent %s",
			types.ErrOutOfBounds, offset, count, d.shape)
	}
	return nil
}

func checkBuffer(buf any, count types.NDSize) error {
	n := types.SliceLen(buf)
	if n < 0 {
		return fmt.Errorf("%w: buffer must be a slice, got %T", types.ErrInvalidDataType, buf)
	}
	if uint64(n) != count.ElementCount() {
		return fmt.Errorf("%w: buffer holds %d elements, region has %d",
			types.ErrIncompatibleDimensions, n, count.ElementCount())
	}
	return nil
}

// ReadArray copies the region offset+count into dst, converting the elements
// to dst's type. len(dst) must equal the number of elements in the region.
func (d *Dataset) ReadArray(dst any, count, offset types.NDSize) error {
	if err := d.checkBox(count, offset); err != nil {
		return err
	}
	if err := checkBuffer(dst, count); err != nil {
		return err
	}
	target := dst
	same := types.DataTypeOf(dst) == d.dtype
	if !same {
		target = d.dtype.MakeSlice(types.SliceLen(dst))
	}
	tv, sv := reflect.ValueOf(target), reflect.ValueOf(d.data)
	forEachRun(d.shape, offset, count, func(flat, box, n int) {
		reflect.Copy(tv.Slice(box, box+n), sv.Slice(flat, flat+n))
	})
	if !same {
		return types.Convert(dst, target)
	}
	return nil
}

// WriteArray copies src into the region offset+count, converting the
// elements to the dataset's type.
func (d *Dataset) WriteArray(src any, count, offset types.NDSize) error {
	if err := d.checkBox(count, offset); err != nil {
		return err
	}
	if err := checkBuffer(src, count); err != nil {
		return err
	}
	source := src
	if types.DataTypeOf(src) != d.dtype {
		source = d.dtype.MakeSlice(types.SliceLen(src))
		if err := types.Convert(source, src); err != nil {
			return err
		}
	}
	dv, sv := reflect.ValueOf(d.data), reflect.ValueOf(source)
	forEachRun(d.shape, offset, count, func(flat, box, n int) {
		reflect.Copy(dv.Slice(flat, flat+n), sv.Slice(box, box+n))
	})
	return nil
}

// Resize changes the extent keeping the elements of the overlapping region.
// The rank cannot change.
func (d *Dataset) Resize(shape types.NDSize) error {
	if len(shape) != len(d.shape) {
		return fmt.Errorf("%w: cannot resize rank %d dataset to %s", types.ErrInvalidRank, len(d.shape), shape)
	}
	if shape.Equal(d.shape) {
		return nil
	}
	overlap := make(types.NDSize, len(shape))
	for i := range shape {
		overlap[i] = min(shape[i], d.shape[i])
	}
	origin := types.Zeros(len(shape))
	kept := d.dtype.MakeSlice(int(overlap.ElementCount()))
	if err := d.ReadArray(kept, overlap, origin); err != nil {
		return err
	}
	resized := &Dataset{dtype: d.dtype, shape: shape.Clone(), data: d.dtype.MakeSlice(int(shape.ElementCount()))}
	if err := resized.WriteArray(kept, overlap, origin); err != nil {
		return err
	}
	*d = *resized
	return nil
}

func strides(shape types.NDSize) []uint64 {
	s := make([]uint64, len(shape))
	acc := uint64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}

// forEachRun calls fn for every contiguous run of the box offset+count along
// the last axis of an array with the given shape. fn receives the flat index
// of the run in the array, its flat index within the box and its length.
func forEachRun(shape, offset, count types.NDSize, fn func(flat, box, n int)) {
	rank := len(shape)
	if rank == 0 {
		fn(0, 0, 1)
		return
	}
	if count.ElementCount() == 0 {
		return
	}
	st := strides(shape)
	run := int(count[rank-1])
	idx := make([]uint64, rank-1)
	box := 0
	for {
		flat := offset[rank-1]
		for i := 0; i < rank-1; i++ {
			flat += (offset[i] + idx[i]) * st[i]
		}
		fn(int(flat), box, run)
		box += run

		i := rank - 2
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < count[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}
