package nix

import (
	"fmt"

	"github.com/G-Node/nix-sub001/internal/units"
	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
)

// data array attributes
const (
	attrUnit            = "unit"
	attrLabel           = "label"
	attrPolynomCoeffs   = "polynom_coefficients"
	attrExpansionOrigin = "expansion_origin"
)

// DataArray is a typed n-dimensional array with one dimension descriptor per
// axis and an optional polynomial calibration.
type DataArray struct {
	metadataEntity
}

func newDataArray(n *storage.Node, f *File) *DataArray {
	return &DataArray{metadataEntity{namedEntity{entity{node: n, file: f}}}}
}

func (a *DataArray) dataset() (*storage.Dataset, error) {
	if err := a.checkAlive(); err != nil {
		return nil, err
	}
	ds, ok := a.node.Dataset()
	if !ok {
		return nil, fmt.Errorf("%w: data array %s has no data", types.ErrUninitializedEntity, a.Name())
	}
	return ds, nil
}

// DataType returns the element type of the stored data
func (a *DataArray) DataType() DataType {
	ds, ok := a.node.Dataset()
	if !ok {
		return types.Nothing
	}
	return ds.DataType()
}

// DataExtent returns the current shape of the data
func (a *DataArray) DataExtent() NDSize {
	ds, ok := a.node.Dataset()
	if !ok {
		return nil
	}
	return ds.Shape()
}

// SetDataExtent resizes the data keeping the overlapping elements. The rank
// cannot change.
func (a *DataArray) SetDataExtent(extent NDSize) error {
	ds, err := a.dataset()
	if err != nil {
		return err
	}
	if err := ds.Resize(extent); err != nil {
		return err
	}
	a.touch()
	return nil
}

// Read copies the region offset+count into dst, a slice of any supported
// element type. Reads into float slices apply the polynomial calibration.
func (a *DataArray) Read(dst any, count, offset NDSize) error {
	ds, err := a.dataset()
	if err != nil {
		return err
	}
	if err := ds.ReadArray(dst, count, offset); err != nil {
		return fmt.Errorf("failed to read %s: %w", a.Name(), err)
	}
	if types.DataTypeOf(dst).IsFloat() && a.hasCalibration() {
		values, _ := types.ToFloat64s(dst)
		a.calibrate(values)
		return types.StoreFloat64s(dst, values)
	}
	return nil
}

// ReadAll reads the whole array into dst
func (a *DataArray) ReadAll(dst any) error {
	extent := a.DataExtent()
	return a.Read(dst, extent, types.Zeros(len(extent)))
}

// Write copies src, a slice of any supported element type, into the region
// offset+count. Values are stored raw, without calibration.
func (a *DataArray) Write(src any, count, offset NDSize) error {
	ds, err := a.dataset()
	if err != nil {
		return err
	}
	if err := ds.WriteArray(src, count, offset); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.Name(), err)
	}
	a.touch()
	return nil
}

// WriteAll replaces the whole content. len(src) must match the extent.
func (a *DataArray) WriteAll(src any) error {
	extent := a.DataExtent()
	return a.Write(src, extent, types.Zeros(len(extent)))
}

// AppendData grows the array along axis and writes src into the new region.
// src holds a whole number of hyperslabs, each shaped like the array without
// the axis.
func (a *DataArray) AppendData(src any, axis int) error {
	ds, err := a.dataset()
	if err != nil {
		return err
	}
	extent := ds.Shape()
	if axis < 0 || axis >= len(extent) {
		return fmt.Errorf("%w: axis %d of a rank %d array", types.ErrOutOfBounds, axis, len(extent))
	}
	slab := uint64(1)
	for i, n := range extent {
		if i != axis {
			slab *= n
		}
	}
	n := uint64(types.SliceLen(src))
	if slab == 0 || n%slab != 0 {
		return fmt.Errorf("%w: %d elements do not fill hyperslabs of %d", types.ErrIncompatibleDimensions, n, slab)
	}

	offset := types.Zeros(len(extent))
	offset[axis] = extent[axis]
	count := extent.Clone()
	count[axis] = n / slab
	grown := extent.Clone()
	grown[axis] += count[axis]
	if err := ds.Resize(grown); err != nil {
		return err
	}
	return a.Write(src, count, offset)
}

// Unit returns the unit of the values, "" when unset
func (a *DataArray) Unit() string {
	u, _ := a.node.String(attrUnit)
	return u
}

// SetUnit sets the unit of the values. Atomic and compound SI units are
// accepted; "" removes the unit.
func (a *DataArray) SetUnit(unit string) error {
	if unit == "" {
		a.node.DeleteAttr(attrUnit)
		a.touch()
		return nil
	}
	unit = units.Sanitize(unit)
	if !units.IsValid(unit) {
		return fmt.Errorf("%w: %q", types.ErrInvalidUnit, unit)
	}
	_ = a.node.SetAttr(attrUnit, unit)
	a.touch()
	return nil
}

// Label returns the label of the values, "" when unset
func (a *DataArray) Label() string {
	l, _ := a.node.String(attrLabel)
	return l
}

// SetLabel sets the label; "" removes it
func (a *DataArray) SetLabel(label string) {
	if label == "" {
		a.node.DeleteAttr(attrLabel)
	} else {
		_ = a.node.SetAttr(attrLabel, label)
	}
	a.touch()
}

// PolynomCoefficients returns the calibration polynomial, lowest order first
func (a *DataArray) PolynomCoefficients() []float64 {
	c, _ := a.node.Floats(attrPolynomCoeffs)
	return c
}

// SetPolynomCoefficients sets the calibration polynomial; nil removes it
func (a *DataArray) SetPolynomCoefficients(coefficients []float64) {
	if len(coefficients) == 0 {
		a.node.DeleteAttr(attrPolynomCoeffs)
	} else {
		_ = a.node.SetAttr(attrPolynomCoeffs, coefficients)
	}
	a.touch()
}

// ExpansionOrigin returns the origin of the calibration polynomial
func (a *DataArray) ExpansionOrigin() (float64, bool) {
	return a.node.Float(attrExpansionOrigin)
}

// SetExpansionOrigin sets the origin of the calibration polynomial
func (a *DataArray) SetExpansionOrigin(origin float64) {
	_ = a.node.SetAttr(attrExpansionOrigin, origin)
	a.touch()
}

// RemoveExpansionOrigin drops the calibration origin
func (a *DataArray) RemoveExpansionOrigin() {
	a.node.DeleteAttr(attrExpansionOrigin)
	a.touch()
}

func (a *DataArray) hasCalibration() bool {
	_, hasOrigin := a.ExpansionOrigin()
	return hasOrigin || len(a.PolynomCoefficients()) > 0
}

// calibrate applies y = poly(x - origin) in place. Without coefficients the
// polynomial is the identity.
func (a *DataArray) calibrate(values []float64) {
	coefficients := a.PolynomCoefficients()
	origin, _ := a.ExpansionOrigin()
	for i, x := range values {
		values[i] = applyPolynomial(coefficients, origin, x)
	}
}

func applyPolynomial(coefficients []float64, origin, x float64) float64 {
	x -= origin
	if len(coefficients) == 0 {
		return x
	}
	y := 0.0
	for i := len(coefficients) - 1; i >= 0; i-- {
		y = y*x + coefficients[i]
	}
	return y
}

// float64Values reads the whole array as calibrated float64 values
func (a *DataArray) float64Values() ([]float64, error) {
	ds, err := a.dataset()
	if err != nil {
		return nil, err
	}
	if !ds.DataType().IsNumeric() {
		return nil, fmt.Errorf("%w: %s holds %s values", types.ErrInvalidDataType, a.Name(), ds.DataType())
	}
	values := make([]float64, ds.Shape().ElementCount())
	if err := a.ReadAll(values); err != nil {
		return nil, err
	}
	return values, nil
}
