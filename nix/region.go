package nix

import (
	"fmt"

	"github.com/G-Node/nix-sub001/internal/units"
	"github.com/G-Node/nix-sub001/types"
)

// offsetAndCount maps a position and optional extent onto the dimensions of
// array. Axes without a position are returned in full.
func offsetAndCount(position, extent []float64, unitAt func(int) string, array *DataArray) (NDSize, NDSize, error) {
	shape := array.DataExtent()
	rank := len(shape)
	if len(position) > rank {
		return nil, nil, fmt.Errorf("%w: %d position coordinates for a rank %d array %s",
			types.ErrIncompatibleDimensions, len(position), rank, array.Name())
	}
	if len(extent) > 0 && len(extent) != len(position) {
		return nil, nil, fmt.Errorf("%w: extent has %d entries, position %d",
			types.ErrIncompatibleDimensions, len(extent), len(position))
	}

	offset := types.Zeros(rank)
	count := shape.Clone()
	for i, pos := range position {
		dim, err := array.Dimension(i + 1)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s has no descriptor for axis %d", types.ErrIncompatibleDimensions, array.Name(), i+1)
		}
		unit := unitAt(i)
		start, err := PositionToIndex(dim, pos, unit)
		if err != nil {
			return nil, nil, fmt.Errorf("axis %d of %s: %w", i+1, array.Name(), err)
		}
		offset[i] = start
		count[i] = 1
		if len(extent) > 0 && extent[i] > 0 {
			end, err := PositionToIndex(dim, pos+extent[i], unit)
			if err != nil {
				return nil, nil, fmt.Errorf("axis %d of %s: %w", i+1, array.Name(), err)
			}
			if end < start {
				return nil, nil, fmt.Errorf("%w: axis %d ends before it starts", types.ErrOutOfBounds, i+1)
			}
			count[i] = end - start + 1
		}
	}
	return offset, count, nil
}

// OffsetAndCount returns the region of array addressed by the tag
func (t *Tag) OffsetAndCount(array *DataArray) (offset, count NDSize, err error) {
	return offsetAndCount(t.Position(), t.Extent(), t.unitAt, array)
}

// OffsetAndCount returns the region of array addressed by one row
func (m *MultiTag) OffsetAndCount(row uint64, array *DataArray) (offset, count NDSize, err error) {
	position, extent, err := m.row(row)
	if err != nil {
		return nil, nil, err
	}
	return offsetAndCount(position, extent, m.unitAt, array)
}

func (m *MultiTag) row(row uint64) (position, extent []float64, err error) {
	pos, ok := m.Positions()
	if !ok {
		return nil, nil, fmt.Errorf("%w: multi tag %s has no positions", types.ErrUninitializedEntity, m.Name())
	}
	if ext, ok := m.Extents(); ok && !ext.DataExtent().Equal(pos.DataExtent()) {
		return nil, nil, fmt.Errorf("%w: positions %s and extents %s differ in shape",
			types.ErrIncompatibleDimensions, pos.DataExtent(), ext.DataExtent())
	}
	position, err = m.PositionAt(row)
	if err != nil {
		return nil, nil, err
	}
	extent, err = m.ExtentAt(row)
	if err != nil {
		return nil, nil, err
	}
	return position, extent, nil
}

// PositionInData reports whether offset lies within the data currently
// written to array.
func PositionInData(array *DataArray, offset NDSize) bool {
	shape := array.DataExtent()
	if len(offset) != len(shape) {
		return false
	}
	for i := range offset {
		if offset[i] >= shape[i] {
			return false
		}
	}
	return true
}

// PositionAndExtentInData reports whether the region offset+count lies
// within the data currently written to array.
func PositionAndExtentInData(array *DataArray, offset, count NDSize) bool {
	shape := array.DataExtent()
	if len(count) != len(shape) || !PositionInData(array, offset) {
		return false
	}
	return shape.Contains(offset, count)
}

// regionView checks the region against the written data and wraps it
func regionView(array *DataArray, offset, count NDSize) (*DataView, error) {
	if !PositionAndExtentInData(array, offset, count) {
		return nil, fmt.Errorf("%w: region offset %s count %s exceeds data %s of %s",
			types.ErrOutOfBounds, offset, count, array.DataExtent(), array.Name())
	}
	return NewDataView(array, offset, count)
}

// RetrieveData returns a view of the region the tag addresses in the
// referenced array with the given name or id.
func (t *Tag) RetrieveData(nameOrID string) (*DataView, error) {
	refs := t.References()
	if refs.Count() == 0 {
		return nil, fmt.Errorf("%w: tag %s references no data", types.ErrOutOfBounds, t.Name())
	}
	array, ok := refs.Get(nameOrID)
	if !ok {
		return nil, fmt.Errorf("%w: tag %s does not reference %s", types.ErrNotFound, t.Name(), nameOrID)
	}
	return t.retrieve(array)
}

// RetrieveDataAt returns a view of the region the tag addresses in its i-th
// reference.
func (t *Tag) RetrieveDataAt(i int) (*DataView, error) {
	refs := t.References()
	if refs.Count() == 0 {
		return nil, fmt.Errorf("%w: tag %s references no data", types.ErrOutOfBounds, t.Name())
	}
	array, err := refs.At(i)
	if err != nil {
		return nil, err
	}
	return t.retrieve(array)
}

func (t *Tag) retrieve(array *DataArray) (*DataView, error) {
	offset, count, err := t.OffsetAndCount(array)
	if err != nil {
		return nil, err
	}
	return regionView(array, offset, count)
}

// RetrieveData returns a view of the region one row addresses in the
// referenced array with the given name or id.
func (m *MultiTag) RetrieveData(row uint64, nameOrID string) (*DataView, error) {
	refs := m.References()
	if refs.Count() == 0 {
		return nil, fmt.Errorf("%w: multi tag %s references no data", types.ErrOutOfBounds, m.Name())
	}
	array, ok := refs.Get(nameOrID)
	if !ok {
		return nil, fmt.Errorf("%w: multi tag %s does not reference %s", types.ErrNotFound, m.Name(), nameOrID)
	}
	return m.retrieve(row, array)
}

// RetrieveDataAt returns a view of the region one row addresses in the i-th
// reference.
func (m *MultiTag) RetrieveDataAt(row uint64, i int) (*DataView, error) {
	refs := m.References()
	if refs.Count() == 0 {
		return nil, fmt.Errorf("%w: multi tag %s references no data", types.ErrOutOfBounds, m.Name())
	}
	array, err := refs.At(i)
	if err != nil {
		return nil, err
	}
	return m.retrieve(row, array)
}

func (m *MultiTag) retrieve(row uint64, array *DataArray) (*DataView, error) {
	offset, count, err := m.OffsetAndCount(row, array)
	if err != nil {
		return nil, err
	}
	return regionView(array, offset, count)
}

// unitsScalable reports whether every tag unit converts to the unit of the
// matching dimension of array. Set dimensions only accept "none".
func unitsScalable(tagUnits []string, array *DataArray) bool {
	for i, u := range tagUnits {
		dim, err := array.Dimension(i + 1)
		if err != nil {
			return false
		}
		if units.IsNone(u) {
			continue
		}
		switch d := dim.(type) {
		case *SampledDimension:
			if _, err := unitScaling(u, d.Unit()); err != nil {
				return false
			}
		case *RangeDimension:
			if _, err := unitScaling(u, d.Unit()); err != nil {
				return false
			}
		case *SetDimension:
			return false
		}
	}
	return true
}
