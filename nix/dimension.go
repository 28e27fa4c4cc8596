package nix

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/G-Node/nix-sub001/internal/units"
	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
)

// dimension layout
const (
	nodeDimensions       = "dimensions"
	attrDimensionType    = "dimension_type"
	attrSamplingInterval = "sampling_interval"
	attrOffset           = "offset"
	attrTicks            = "ticks"
	attrAlias            = "alias"
	attrLabels           = "labels"
)

// Dimension describes the coordinate system of one axis of a DataArray. The
// only implementations are *SampledDimension, *RangeDimension and
// *SetDimension; consumers switch on the concrete type.
type Dimension interface {
	// Index is the 1-based axis the dimension describes
	Index() int
	// DimensionType returns the kind discriminator
	DimensionType() types.DimensionType
	dimension()
}

type dimensionBase struct {
	node  *storage.Node
	array *DataArray
}

func (d dimensionBase) dimension() {}

// Index returns the 1-based axis number
func (d dimensionBase) Index() int {
	i, _ := strconv.Atoi(d.node.Name())
	return i
}

func (d dimensionBase) unit() string {
	u, _ := d.node.String(attrUnit)
	return u
}

func (d dimensionBase) setUnit(unit string) error {
	if units.IsNone(unit) {
		d.node.DeleteAttr(attrUnit)
		d.array.touch()
		return nil
	}
	unit = units.Sanitize(unit)
	if !units.IsSIUnit(unit) {
		return fmt.Errorf("%w: dimension units must be atomic SI units, got %q", types.ErrInvalidUnit, unit)
	}
	_ = d.node.SetAttr(attrUnit, unit)
	d.array.touch()
	return nil
}

func (d dimensionBase) label() string {
	l, _ := d.node.String(attrLabel)
	return l
}

func (d dimensionBase) setLabel(label string) {
	if label == "" {
		d.node.DeleteAttr(attrLabel)
	} else {
		_ = d.node.SetAttr(attrLabel, label)
	}
	d.array.touch()
}

// SampledDimension describes a regularly sampled axis: the position of index
// i is offset + i*samplingInterval.
type SampledDimension struct {
	dimensionBase
}

// DimensionType returns types.Sample
func (d *SampledDimension) DimensionType() types.DimensionType { return types.Sample }

// SamplingInterval returns the distance between two samples
func (d *SampledDimension) SamplingInterval() float64 {
	v, _ := d.node.Float(attrSamplingInterval)
	return v
}

// SetSamplingInterval sets the distance between samples; it must be positive
func (d *SampledDimension) SetSamplingInterval(interval float64) error {
	if !(interval > 0) {
		return fmt.Errorf("%w: sampling interval must be positive, got %g", types.ErrInvalidDimension, interval)
	}
	_ = d.node.SetAttr(attrSamplingInterval, interval)
	d.array.touch()
	return nil
}

// Offset returns the position of the first sample, 0 when unset
func (d *SampledDimension) Offset() float64 {
	v, _ := d.node.Float(attrOffset)
	return v
}

// HasOffset reports whether an offset was set explicitly
func (d *SampledDimension) HasOffset() bool {
	return d.node.HasAttr(attrOffset)
}

// SetOffset sets the position of the first sample
func (d *SampledDimension) SetOffset(offset float64) {
	_ = d.node.SetAttr(attrOffset, offset)
	d.array.touch()
}

// Unit returns the atomic SI unit of the axis, "" when unset
func (d *SampledDimension) Unit() string { return d.unit() }

// SetUnit sets the axis unit; "" or "none" removes it
func (d *SampledDimension) SetUnit(unit string) error { return d.setUnit(unit) }

// Label returns the axis label
func (d *SampledDimension) Label() string { return d.label() }

// SetLabel sets the axis label; "" removes it
func (d *SampledDimension) SetLabel(label string) { d.setLabel(label) }

// PositionAt returns the position of the sample at index
func (d *SampledDimension) PositionAt(index uint64) float64 {
	return float64(index)*d.SamplingInterval() + d.Offset()
}

// Axis returns count consecutive positions starting at index start
func (d *SampledDimension) Axis(count, start uint64) []float64 {
	axis := make([]float64, count)
	for i := range axis {
		axis[i] = d.PositionAt(start + uint64(i))
	}
	return axis
}

// RangeDimension describes an irregular axis through ascending ticks. An
// alias range dimension uses the values of its own array as ticks.
type RangeDimension struct {
	dimensionBase
}

// DimensionType returns types.Range
func (d *RangeDimension) DimensionType() types.DimensionType { return types.Range }

// IsAlias reports whether the ticks are the values of the array itself
func (d *RangeDimension) IsAlias() bool {
	alias, _ := d.node.Bool(attrAlias)
	return alias
}

// Ticks returns the tick positions
func (d *RangeDimension) Ticks() []float64 {
	if d.IsAlias() {
		values, err := d.array.float64Values()
		if err != nil {
			return nil
		}
		return values
	}
	ticks, _ := d.node.Floats(attrTicks)
	return ticks
}

// SetTicks replaces the ticks. They must be sorted ascending. For an alias
// dimension the array is resized and overwritten with the ticks.
func (d *RangeDimension) SetTicks(ticks []float64) error {
	if !slices.IsSorted(ticks) {
		return fmt.Errorf("%w: %v", types.ErrUnsortedTicks, ticks)
	}
	if d.IsAlias() {
		if err := d.array.SetDataExtent(NDSize{uint64(len(ticks))}); err != nil {
			return err
		}
		return d.array.WriteAll(ticks)
	}
	_ = d.node.SetAttr(attrTicks, ticks)
	d.array.touch()
	return nil
}

// TickAt returns the tick at index
func (d *RangeDimension) TickAt(index uint64) (float64, error) {
	ticks := d.Ticks()
	if index >= uint64(len(ticks)) {
		return 0, fmt.Errorf("%w: tick %d of %d", types.ErrOutOfBounds, index, len(ticks))
	}
	return ticks[index], nil
}

// Axis returns count consecutive ticks starting at index start
func (d *RangeDimension) Axis(count, start uint64) ([]float64, error) {
	ticks := d.Ticks()
	if n := uint64(len(ticks)); start > n || count > n-start {
		return nil, fmt.Errorf("%w: %d ticks from %d exceed %d", types.ErrOutOfBounds, count, start, len(ticks))
	}
	return slices.Clone(ticks[start : start+count]), nil
}

// Unit returns the axis unit. Alias dimensions report the unit of the array.
func (d *RangeDimension) Unit() string {
	if d.IsAlias() {
		return d.array.Unit()
	}
	return d.unit()
}

// SetUnit sets the axis unit; "" or "none" removes it. Alias dimensions set
// the unit of the array.
func (d *RangeDimension) SetUnit(unit string) error {
	if d.IsAlias() {
		if units.IsNone(unit) {
			unit = ""
		}
		if unit != "" && !units.IsSIUnit(units.Sanitize(unit)) {
			return fmt.Errorf("%w: dimension units must be atomic SI units, got %q", types.ErrInvalidUnit, unit)
		}
		return d.array.SetUnit(unit)
	}
	return d.setUnit(unit)
}

// Label returns the axis label. Alias dimensions report the array label.
func (d *RangeDimension) Label() string {
	if d.IsAlias() {
		return d.array.Label()
	}
	return d.label()
}

// SetLabel sets the axis label; "" removes it
func (d *RangeDimension) SetLabel(label string) {
	if d.IsAlias() {
		d.array.SetLabel(label)
		return
	}
	d.setLabel(label)
}

// SetDimension describes a nominal axis, optionally labelled
type SetDimension struct {
	dimensionBase
}

// DimensionType returns types.Set
func (d *SetDimension) DimensionType() types.DimensionType { return types.Set }

// Labels returns the labels, nil when unset
func (d *SetDimension) Labels() []string {
	l, _ := d.node.Strings(attrLabels)
	return l
}

// SetLabels replaces the labels; nil removes them
func (d *SetDimension) SetLabels(labels []string) {
	if len(labels) == 0 {
		d.node.DeleteAttr(attrLabels)
	} else {
		_ = d.node.SetAttr(attrLabels, labels)
	}
	d.array.touch()
}

// LabelAt returns the label at index
func (d *SetDimension) LabelAt(index uint64) (string, error) {
	labels := d.Labels()
	if index >= uint64(len(labels)) {
		return "", fmt.Errorf("%w: label %d of %d", types.ErrOutOfBounds, index, len(labels))
	}
	return labels[index], nil
}

func (a *DataArray) dimensionsNode() (*storage.Node, error) {
	if err := a.checkAlive(); err != nil {
		return nil, err
	}
	return a.node.RequireChild(nodeDimensions)
}

func (a *DataArray) wrapDimension(n *storage.Node) (Dimension, error) {
	kind, _ := n.String(attrDimensionType)
	dt, err := types.ParseDimensionType(kind)
	if err != nil {
		return nil, fmt.Errorf("dimension %s of %s: %w", n.Name(), a.Name(), err)
	}
	base := dimensionBase{node: n, array: a}
	switch dt {
	case types.Sample:
		return &SampledDimension{base}, nil
	case types.Range:
		return &RangeDimension{base}, nil
	default:
		return &SetDimension{base}, nil
	}
}

// DimensionCount returns the number of dimension descriptors
func (a *DataArray) DimensionCount() int {
	n, ok := a.node.Child(nodeDimensions)
	if !ok {
		return 0
	}
	return n.ChildCount()
}

// Dimension returns the descriptor of the 1-based axis index
func (a *DataArray) Dimension(index int) (Dimension, error) {
	dims, ok := a.node.Child(nodeDimensions)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no dimensions", types.ErrOutOfBounds, a.Name())
	}
	n, ok := dims.Child(strconv.Itoa(index))
	if !ok {
		return nil, fmt.Errorf("%w: dimension %d of %d", types.ErrOutOfBounds, index, dims.ChildCount())
	}
	return a.wrapDimension(n)
}

// Dimensions returns all descriptors ordered by axis
func (a *DataArray) Dimensions() []Dimension {
	count := a.DimensionCount()
	dims := make([]Dimension, 0, count)
	for i := 1; i <= count; i++ {
		d, err := a.Dimension(i)
		if err != nil {
			continue
		}
		dims = append(dims, d)
	}
	return dims
}

func (a *DataArray) hasAlias() bool {
	for _, d := range a.Dimensions() {
		if r, ok := d.(*RangeDimension); ok && r.IsAlias() {
			return true
		}
	}
	return false
}

// appendDimension creates the node of the next dimension
func (a *DataArray) appendDimension(kind types.DimensionType) (dimensionBase, error) {
	dims, err := a.dimensionsNode()
	if err != nil {
		return dimensionBase{}, err
	}
	if a.hasAlias() {
		return dimensionBase{}, fmt.Errorf("%w: %s has an alias range dimension", types.ErrInvalidDimension, a.Name())
	}
	n, err := dims.CreateChild(strconv.Itoa(dims.ChildCount() + 1))
	if err != nil {
		return dimensionBase{}, err
	}
	_ = n.SetAttr(attrDimensionType, kind.String())
	a.touch()
	return dimensionBase{node: n, array: a}, nil
}

// AppendSampledDimension describes the next axis as regularly sampled
func (a *DataArray) AppendSampledDimension(interval float64) (*SampledDimension, error) {
	if !(interval > 0) {
		return nil, fmt.Errorf("%w: sampling interval must be positive, got %g", types.ErrInvalidDimension, interval)
	}
	base, err := a.appendDimension(types.Sample)
	if err != nil {
		return nil, err
	}
	_ = base.node.SetAttr(attrSamplingInterval, interval)
	return &SampledDimension{base}, nil
}

// AppendRangeDimension describes the next axis through ascending ticks
func (a *DataArray) AppendRangeDimension(ticks []float64) (*RangeDimension, error) {
	if !slices.IsSorted(ticks) {
		return nil, fmt.Errorf("%w: %v", types.ErrUnsortedTicks, ticks)
	}
	base, err := a.appendDimension(types.Range)
	if err != nil {
		return nil, err
	}
	if len(ticks) > 0 {
		_ = base.node.SetAttr(attrTicks, ticks)
	}
	return &RangeDimension{base}, nil
}

// AppendAliasRangeDimension uses the values of the array as the ticks of its
// only axis. The array must be 1-D, numeric and have no dimensions yet.
func (a *DataArray) AppendAliasRangeDimension() (*RangeDimension, error) {
	if a.hasAlias() {
		return nil, fmt.Errorf("%w: %s already has an alias range dimension", types.ErrInvalidDimension, a.Name())
	}
	if rank := a.DataExtent().Rank(); rank != 1 {
		return nil, fmt.Errorf("%w: alias range dimensions need 1-D data, %s has rank %d", types.ErrInvalidDimension, a.Name(), rank)
	}
	if !a.DataType().IsNumeric() {
		return nil, fmt.Errorf("%w: alias range dimensions need numeric data, %s holds %s", types.ErrInvalidDimension, a.Name(), a.DataType())
	}
	if a.DimensionCount() > 0 {
		return nil, fmt.Errorf("%w: %s already has dimensions", types.ErrInvalidDimension, a.Name())
	}
	base, err := a.appendDimension(types.Range)
	if err != nil {
		return nil, err
	}
	_ = base.node.SetAttr(attrAlias, true)
	return &RangeDimension{base}, nil
}

// AppendSetDimension describes the next axis as nominal with optional labels
func (a *DataArray) AppendSetDimension(labels []string) (*SetDimension, error) {
	base, err := a.appendDimension(types.Set)
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		_ = base.node.SetAttr(attrLabels, labels)
	}
	return &SetDimension{base}, nil
}

// DeleteDimension removes the descriptor of the 1-based axis index and
// renumbers the following ones.
func (a *DataArray) DeleteDimension(index int) bool {
	dims, ok := a.node.Child(nodeDimensions)
	if !ok || !dims.DeleteChild(strconv.Itoa(index)) {
		return false
	}
	count := dims.ChildCount()
	for i := index; i <= count; i++ {
		_ = dims.RenameChild(strconv.Itoa(i+1), strconv.Itoa(i))
	}
	a.touch()
	return true
}

// DeleteDimensions removes all descriptors
func (a *DataArray) DeleteDimensions() {
	if a.node.DeleteChild(nodeDimensions) {
		_, _ = a.node.CreateChild(nodeDimensions)
		a.touch()
	}
}
