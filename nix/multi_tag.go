package nix

import (
	"fmt"

	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
)

const (
	linkPositions = "positions"
	linkExtents   = "extents"
)

// MultiTag annotates many points or regions at once. Each row of the
// positions array (rows x coordinates, or one coordinate per row when 1-D)
// is one logical tag; the optional extents array has the same shape.
type MultiTag struct {
	baseTag
}

func newMultiTag(n *storage.Node, f *File) *MultiTag {
	return &MultiTag{baseTag{metadataEntity{namedEntity{entity{node: n, file: f}}}}}
}

// Positions returns the array holding the row positions
func (m *MultiTag) Positions() (*DataArray, bool) {
	return m.linkedArray(linkPositions)
}

// SetPositions replaces the positions array. It must belong to the same
// block and, if extents are set, have the shape of the extents.
func (m *MultiTag) SetPositions(positions *DataArray) error {
	if positions == nil {
		return fmt.Errorf("%w: positions are required", types.ErrUninitializedEntity)
	}
	if ext, ok := m.Extents(); ok && !ext.DataExtent().Equal(positions.DataExtent()) {
		return fmt.Errorf("%w: positions %s and extents %s differ in shape",
			types.ErrIncompatibleDimensions, positions.DataExtent(), ext.DataExtent())
	}
	return m.setLinkedArray(linkPositions, positions)
}

// Extents returns the array holding the row extents
func (m *MultiTag) Extents() (*DataArray, bool) {
	return m.linkedArray(linkExtents)
}

// SetExtents replaces the extents array; nil removes it. The shape must
// equal the shape of the positions.
func (m *MultiTag) SetExtents(extents *DataArray) error {
	if extents == nil {
		m.node.RemoveLink(linkExtents)
		m.touch()
		return nil
	}
	if pos, ok := m.Positions(); ok && !pos.DataExtent().Equal(extents.DataExtent()) {
		return fmt.Errorf("%w: extents %s and positions %s differ in shape",
			types.ErrIncompatibleDimensions, extents.DataExtent(), pos.DataExtent())
	}
	return m.setLinkedArray(linkExtents, extents)
}

func (m *MultiTag) linkedArray(name string) (*DataArray, bool) {
	n, ok := m.node.Link(name)
	if !ok {
		return nil, false
	}
	if b := m.block(); b == nil || !b.dataArrays().owns(n) {
		return nil, false
	}
	return newDataArray(n, m.file), true
}

func (m *MultiTag) setLinkedArray(name string, a *DataArray) error {
	if err := m.checkAlive(); err != nil {
		return err
	}
	b := m.block()
	if b == nil || !b.dataArrays().owns(a.node) {
		return fmt.Errorf("%w: %s must be a data array of the same block", types.ErrNotFound, name)
	}
	m.node.RemoveLink(name)
	if err := m.node.CreateLink(name, a.node); err != nil {
		return err
	}
	m.touch()
	return nil
}

// rowGeometry returns the number of rows and coordinates per row of a
// positions or extents array.
func rowGeometry(a *DataArray) (rows, width uint64, err error) {
	extent := a.DataExtent()
	switch len(extent) {
	case 1:
		return extent[0], 1, nil
	case 2:
		return extent[0], extent[1], nil
	}
	return 0, 0, fmt.Errorf("%w: %s must be 1-D or 2-D, has rank %d", types.ErrInvalidRank, a.Name(), len(extent))
}

// readRow returns row index of a positions or extents array
func readRow(a *DataArray, row uint64) ([]float64, error) {
	rows, width, err := rowGeometry(a)
	if err != nil {
		return nil, err
	}
	if row >= rows {
		return nil, fmt.Errorf("%w: row %d of %d in %s", types.ErrOutOfBounds, row, rows, a.Name())
	}
	values := make([]float64, width)
	count, offset := NDSize{1, width}, NDSize{row, 0}
	if a.DataExtent().Rank() == 1 {
		count, offset = NDSize{1}, NDSize{row}
	}
	if err := a.Read(values, count, offset); err != nil {
		return nil, err
	}
	return values, nil
}

// RowCount returns the number of logical tags
func (m *MultiTag) RowCount() uint64 {
	pos, ok := m.Positions()
	if !ok {
		return 0
	}
	rows, _, err := rowGeometry(pos)
	if err != nil {
		return 0
	}
	return rows
}

// PositionAt returns the position of one row
func (m *MultiTag) PositionAt(row uint64) ([]float64, error) {
	pos, ok := m.Positions()
	if !ok {
		return nil, fmt.Errorf("%w: multi tag %s has no positions", types.ErrUninitializedEntity, m.Name())
	}
	return readRow(pos, row)
}

// ExtentAt returns the extent of one row, nil when the multi tag has no extents
func (m *MultiTag) ExtentAt(row uint64) ([]float64, error) {
	ext, ok := m.Extents()
	if !ok {
		return nil, nil
	}
	return readRow(ext, row)
}
