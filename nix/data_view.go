package nix

import (
	"fmt"
	"reflect"

	"github.com/G-Node/nix-sub001/types"
)

// DataView is a fixed window offset+count over the data of one array. All
// coordinates passed to a view are relative to its offset. Data is only
// read when requested.
type DataView struct {
	array  *DataArray
	offset NDSize
	count  NDSize
}

// NewDataView creates a view of the region offset+count of array
func NewDataView(array *DataArray, offset, count NDSize) (*DataView, error) {
	if array == nil {
		return nil, fmt.Errorf("%w: no data array", types.ErrUninitializedEntity)
	}
	rank := array.DataExtent().Rank()
	if len(offset) != rank || len(count) != rank {
		return nil, fmt.Errorf("%w: view offset %s count %s for a rank %d array",
			types.ErrIncompatibleDimensions, offset, count, rank)
	}
	if !array.DataExtent().Contains(offset, count) {
		return nil, fmt.Errorf("%w: view offset %s count %s exceeds %s",
			types.ErrOutOfBounds, offset, count, array.DataExtent())
	}
	return &DataView{array: array, offset: offset.Clone(), count: count.Clone()}, nil
}

// Array returns the array the view reads from
func (v *DataView) Array() *DataArray {
	return v.array
}

// Offset returns the origin of the view within the array
func (v *DataView) Offset() NDSize {
	return v.offset.Clone()
}

// DataExtent returns the shape of the view
func (v *DataView) DataExtent() NDSize {
	return v.count.Clone()
}

// SetDataExtent always fails; the extent of a view is fixed
func (v *DataView) SetDataExtent(NDSize) error {
	return fmt.Errorf("%w: the extent of a data view is derived from its region", types.ErrNotResizable)
}

// DataType returns the element type of the underlying array
func (v *DataView) DataType() DataType {
	return v.array.DataType()
}

// absolute converts a sub-window of the view into array coordinates. A nil
// count selects the whole view, a nil offset the view origin.
func (v *DataView) absolute(count, offset NDSize) (NDSize, NDSize, error) {
	if count == nil {
		count = v.count
	}
	if offset == nil {
		offset = types.Zeros(len(v.count))
	}
	if len(count) != len(v.count) || len(offset) != len(v.count) {
		return nil, nil, fmt.Errorf("%w: sub-window offset %s count %s for a rank %d view",
			types.ErrIncompatibleDimensions, offset, count, len(v.count))
	}
	if !v.count.Contains(offset, count) {
		return nil, nil, fmt.Errorf("%w: sub-window offset %s count %s exceeds view %s",
			types.ErrOutOfBounds, offset, count, v.count)
	}
	abs := make(NDSize, len(offset))
	for i := range offset {
		abs[i] = v.offset[i] + offset[i]
	}
	return count.Clone(), abs, nil
}

// GetData copies the sub-window offset+count of the view into dst
func (v *DataView) GetData(dst any, count, offset NDSize) error {
	count, abs, err := v.absolute(count, offset)
	if err != nil {
		return err
	}
	return v.array.Read(dst, count, abs)
}

// SetData writes src into the sub-window offset+count of the view
func (v *DataView) SetData(src any, count, offset NDSize) error {
	count, abs, err := v.absolute(count, offset)
	if err != nil {
		return err
	}
	return v.array.Write(src, count, abs)
}

// GetValue reads the single element of a scalar view into ptr, a pointer to
// a supported element type.
func (v *DataView) GetValue(ptr any) error {
	if err := v.checkScalar(); err != nil {
		return err
	}
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: GetValue needs a non-nil pointer, got %T", types.ErrInvalidDataType, ptr)
	}
	buf := reflect.MakeSlice(reflect.SliceOf(rv.Elem().Type()), 1, 1)
	if err := v.GetData(buf.Interface(), nil, nil); err != nil {
		return err
	}
	rv.Elem().Set(buf.Index(0))
	return nil
}

// SetValue writes value, a scalar of a supported element type, into a
// scalar view.
func (v *DataView) SetValue(value any) error {
	if err := v.checkScalar(); err != nil {
		return err
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return fmt.Errorf("%w: nil value", types.ErrInvalidDataType)
	}
	buf := reflect.MakeSlice(reflect.SliceOf(rv.Type()), 1, 1)
	buf.Index(0).Set(rv)
	return v.SetData(buf.Interface(), nil, nil)
}

// checkScalar accepts rank 0 views and any shape holding exactly one element
func (v *DataView) checkScalar() error {
	if n := v.count.ElementCount(); n != 1 {
		return fmt.Errorf("%w: scalar access on a view of %d elements", types.ErrIncompatibleDimensions, n)
	}
	return nil
}
