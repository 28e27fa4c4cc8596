package nix

import (
	"fmt"

	"github.com/G-Node/nix-sub001/internal/units"
	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
)

const attrUncertainty = "uncertainty"

// Property is a named list of values of one type with an optional unit
type Property struct {
	namedEntity
}

func newProperty(n *storage.Node, f *File) *Property {
	return &Property{namedEntity{entity{node: n, file: f}}}
}

// DataType returns the element type of the values, Nothing without values
func (p *Property) DataType() DataType {
	ds, ok := p.node.Dataset()
	if !ok {
		return types.Nothing
	}
	return ds.DataType()
}

// ValueCount returns the number of values
func (p *Property) ValueCount() int {
	ds, ok := p.node.Dataset()
	if !ok {
		return 0
	}
	return int(ds.Shape().ElementCount())
}

// Values returns a copy of the values, nil when there are none
func (p *Property) Values() any {
	ds, ok := p.node.Dataset()
	if !ok {
		return nil
	}
	return ds.Data()
}

// SetValues replaces the values with a copy of values, a slice of any
// supported element type.
func (p *Property) SetValues(values any) error {
	dt := types.DataTypeOf(values)
	n := types.SliceLen(values)
	if dt == types.Nothing || n < 0 {
		return fmt.Errorf("%w: property values must be a slice of a supported type, got %T", types.ErrInvalidDataType, values)
	}
	ds, err := storage.NewDatasetFromData(dt, NDSize{uint64(n)}, values)
	if err != nil {
		return err
	}
	p.node.AttachDataset(ds)
	p.touch()
	return nil
}

// DeleteValues removes all values
func (p *Property) DeleteValues() {
	if p.node.DeleteDataset() {
		p.touch()
	}
}

// Unit returns the unit of the values, "" when unset
func (p *Property) Unit() string {
	u, _ := p.node.String(attrUnit)
	return u
}

// SetUnit sets the unit of the values; "" removes it
func (p *Property) SetUnit(unit string) error {
	if unit == "" {
		p.node.DeleteAttr(attrUnit)
		p.touch()
		return nil
	}
	unit = units.Sanitize(unit)
	if !units.IsValid(unit) {
		return fmt.Errorf("%w: %q", types.ErrInvalidUnit, unit)
	}
	_ = p.node.SetAttr(attrUnit, unit)
	p.touch()
	return nil
}

// Uncertainty returns the uncertainty of the values
func (p *Property) Uncertainty() (float64, bool) {
	return p.node.Float(attrUncertainty)
}

// SetUncertainty sets the uncertainty of the values
func (p *Property) SetUncertainty(u float64) {
	_ = p.node.SetAttr(attrUncertainty, u)
	p.touch()
}
