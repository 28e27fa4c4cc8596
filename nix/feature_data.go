package nix

import (
	"fmt"

	"github.com/G-Node/nix-sub001/types"
)

// featureView resolves the part of the feature data that belongs to a
// tagged position. row is ignored by untagged and tagged features; a nil
// row marks a single tag, for which indexed features are returned in full.
func featureView(f *Feature, row *uint64, position, extent []float64, unitAt func(int) string) (*DataView, error) {
	data, ok := f.Data()
	if !ok {
		return nil, fmt.Errorf("%w: data of feature %s was deleted", types.ErrUninitializedEntity, f.ID())
	}
	shape := data.DataExtent()

	switch f.LinkType() {
	case types.Tagged:
		offset, count, err := offsetAndCount(position, extent, unitAt, data)
		if err != nil {
			return nil, err
		}
		return regionView(data, offset, count)

	case types.Indexed:
		if row == nil {
			return NewDataView(data, types.Zeros(len(shape)), shape)
		}
		if len(shape) == 0 || *row >= shape[0] {
			return nil, fmt.Errorf("%w: row %d exceeds the %s of feature data %s", types.ErrOutOfBounds, *row, shape, data.Name())
		}
		offset := types.Zeros(len(shape))
		offset[0] = *row
		count := shape.Clone()
		count[0] = 1
		return NewDataView(data, offset, count)

	default:
		return NewDataView(data, types.Zeros(len(shape)), shape)
	}
}

// RetrieveFeatureData returns the part of the feature data belonging to the
// tag. The feature is given by its id or by the name or id of its data.
func (t *Tag) RetrieveFeatureData(id string) (*DataView, error) {
	f, ok := t.Feature(id)
	if !ok {
		return nil, fmt.Errorf("%w: tag %s has no feature %s", types.ErrNotFound, t.Name(), id)
	}
	return featureView(f, nil, t.Position(), t.Extent(), t.unitAt)
}

// RetrieveFeatureDataAt returns the part of the i-th feature's data
// belonging to the tag.
func (t *Tag) RetrieveFeatureDataAt(i int) (*DataView, error) {
	f, err := t.FeatureAt(i)
	if err != nil {
		return nil, err
	}
	return featureView(f, nil, t.Position(), t.Extent(), t.unitAt)
}

// RetrieveFeatureData returns the part of the feature data belonging to one
// row. The feature is given by its id or by the name or id of its data.
func (m *MultiTag) RetrieveFeatureData(row uint64, id string) (*DataView, error) {
	f, ok := m.Feature(id)
	if !ok {
		return nil, fmt.Errorf("%w: multi tag %s has no feature %s", types.ErrNotFound, m.Name(), id)
	}
	return m.featureView(row, f)
}

// RetrieveFeatureDataAt returns the part of the i-th feature's data
// belonging to one row.
func (m *MultiTag) RetrieveFeatureDataAt(row uint64, i int) (*DataView, error) {
	f, err := m.FeatureAt(i)
	if err != nil {
		return nil, err
	}
	return m.featureView(row, f)
}

func (m *MultiTag) featureView(row uint64, f *Feature) (*DataView, error) {
	if row >= m.RowCount() {
		return nil, fmt.Errorf("%w: row %d of %d", types.ErrOutOfBounds, row, m.RowCount())
	}
	var position, extent []float64
	if f.LinkType() == types.Tagged {
		var err error
		if position, extent, err = m.row(row); err != nil {
			return nil, err
		}
	}
	return featureView(f, &row, position, extent, m.unitAt)
}
