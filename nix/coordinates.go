package nix

import (
	"fmt"
	"math"
	"sort"

	"github.com/G-Node/nix-sub001/internal/units"
	"github.com/G-Node/nix-sub001/types"
)

// PositionMatch selects which index IndexOf reports for a position that may
// fall between two coordinates.
type PositionMatch int

const (
	Less PositionMatch = iota
	LessOrEqual
	Equal
	GreaterOrEqual
	Greater
)

// RangeMatch selects whether IndexRange includes a coordinate equal to the
// end of the range.
type RangeMatch int

const (
	Inclusive RangeMatch = iota
	Exclusive
)

var epsilon = math.Nextafter(1, 2) - 1

// PositionToIndex converts a position given in unit into the index of the
// nearest coordinate of dim. "" and "none" denote a unit-less position.
func PositionToIndex(dim Dimension, position float64, unit string) (uint64, error) {
	switch d := dim.(type) {
	case *SampledDimension:
		scale, err := unitScaling(unit, d.Unit())
		if err != nil {
			return 0, err
		}
		index := math.Round((position*scale - d.Offset()) / d.SamplingInterval())
		if !finite(index) {
			return 0, fmt.Errorf("%w: position %g %s is not a finite coordinate", types.ErrOutOfBounds, position, unit)
		}
		if index < 0 {
			return 0, fmt.Errorf("%w: position %g %s lies before the first sample", types.ErrOutOfBounds, position, unit)
		}
		return uint64(index), nil

	case *RangeDimension:
		scale, err := unitScaling(unit, d.Unit())
		if err != nil {
			return 0, err
		}
		ticks := d.Ticks()
		if len(ticks) == 0 {
			return 0, fmt.Errorf("%w: range dimension %d has no ticks", types.ErrOutOfBounds, d.Index())
		}
		if !finite(position * scale) {
			return 0, fmt.Errorf("%w: position %g %s is not a finite coordinate", types.ErrOutOfBounds, position, unit)
		}
		return nearestTick(ticks, position*scale), nil

	case *SetDimension:
		if !units.IsNone(unit) {
			return 0, fmt.Errorf("%w: set dimensions take no unit, got %q", types.ErrIncompatibleDimensions, unit)
		}
		index := math.Floor(position + 0.5)
		if !finite(index) {
			return 0, fmt.Errorf("%w: set position %g is not a finite coordinate", types.ErrOutOfBounds, position)
		}
		if index < 0 {
			return 0, fmt.Errorf("%w: negative set position %g", types.ErrOutOfBounds, position)
		}
		if labels := d.Labels(); len(labels) > 0 && index >= float64(len(labels)) {
			return 0, fmt.Errorf("%w: set position %g exceeds %d labels", types.ErrOutOfBounds, position, len(labels))
		}
		return uint64(index), nil
	}
	return 0, fmt.Errorf("%w: unsupported dimension %T", types.ErrInvalidDimension, dim)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// unitScaling returns the factor converting a value in unit into dimUnit
func unitScaling(unit, dimUnit string) (float64, error) {
	if units.IsNone(unit) {
		return 1, nil
	}
	if dimUnit == "" {
		return 0, fmt.Errorf("%w: unit %q given for a dimension without unit", types.ErrIncompatibleDimensions, unit)
	}
	scale, err := units.Scaling(unit, dimUnit)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrIncompatibleDimensions, err)
	}
	return scale, nil
}

// nearestTick returns the index of the tick closest to position. Positions
// outside the ticks clamp to the first or last tick; a position exactly
// between two ticks yields the lower index.
func nearestTick(ticks []float64, position float64) uint64 {
	i := sort.SearchFloat64s(ticks, position)
	switch {
	case i == 0:
		return 0
	case i == len(ticks):
		return uint64(len(ticks) - 1)
	}
	if ticks[i]-position < position-ticks[i-1] {
		return uint64(i)
	}
	return uint64(i - 1)
}

// IndexOf returns the index of the sample matching position
func (d *SampledDimension) IndexOf(position float64, match PositionMatch) (uint64, bool) {
	offset := d.Offset()
	interval := d.SamplingInterval()
	if position < offset && match != Greater && match != GreaterOrEqual {
		return 0, false
	}
	var tmp float64
	switch match {
	case Greater, GreaterOrEqual:
		tmp = math.Max(math.Ceil((position-offset)/interval), 0)
		if match == Greater && math.Abs(tmp*interval+offset-position) <= epsilon {
			tmp++
		}
		return uint64(tmp), true
	case Less, LessOrEqual:
		tmp = math.Floor((position - offset) / interval)
		if match == Less && math.Abs(tmp*interval+offset-position) <= epsilon {
			if tmp < 1 {
				return 0, false
			}
			tmp--
		}
		return uint64(tmp), true
	default:
		tmp = math.Round((position - offset) / interval)
		if math.Abs(tmp*interval+offset-position) <= epsilon {
			return uint64(tmp), true
		}
		return 0, false
	}
}

// IndexRange returns the first and last sample within [start, end]
func (d *SampledDimension) IndexRange(start, end float64, match RangeMatch) (uint64, uint64, bool) {
	return indexRange(start, end, match, d.IndexOf)
}

// IndexOf returns the index of the tick matching position
func (d *RangeDimension) IndexOf(position float64, match PositionMatch) (uint64, bool) {
	return tickIndex(d.Ticks(), position, match)
}

// IndexRange returns the first and last tick within [start, end]
func (d *RangeDimension) IndexRange(start, end float64, match RangeMatch) (uint64, uint64, bool) {
	ticks := d.Ticks()
	return indexRange(start, end, match, func(p float64, m PositionMatch) (uint64, bool) {
		return tickIndex(ticks, p, m)
	})
}

func tickIndex(ticks []float64, position float64, match PositionMatch) (uint64, bool) {
	n := len(ticks)
	if n == 0 {
		return 0, false
	}
	if position < ticks[0] {
		return 0, match == Greater || match == GreaterOrEqual
	}
	if position > ticks[n-1] {
		return uint64(n - 1), match == Less || match == LessOrEqual
	}
	// first tick >= position; exists because position <= last tick
	lower := sort.SearchFloat64s(ticks, position)
	switch match {
	case Greater, GreaterOrEqual:
		if match == Greater && ticks[lower] == position {
			if lower+1 >= n {
				return 0, false
			}
			return uint64(lower + 1), true
		}
		return uint64(lower), true
	case LessOrEqual:
		if ticks[lower] > position {
			if lower == 0 {
				return 0, false
			}
			return uint64(lower - 1), true
		}
		return uint64(lower), true
	case Less:
		if lower == 0 {
			return 0, false
		}
		return uint64(lower - 1), true
	default:
		if ticks[lower] == position {
			return uint64(lower), true
		}
		return 0, false
	}
}

// IndexOf returns the index of the set entry matching position
func (d *SetDimension) IndexOf(position float64, match PositionMatch) (uint64, bool) {
	return setIndex(position, len(d.Labels()), match)
}

// IndexRange returns the first and last set entry within [start, end]
func (d *SetDimension) IndexRange(start, end float64, match RangeMatch) (uint64, uint64, bool) {
	count := len(d.Labels())
	return indexRange(start, end, match, func(p float64, m PositionMatch) (uint64, bool) {
		return setIndex(p, count, m)
	})
}

func setIndex(position float64, labelCount int, match PositionMatch) (uint64, bool) {
	if position < 0 && match != Greater && match != GreaterOrEqual {
		return 0, false
	}
	var index uint64
	switch match {
	case Greater, GreaterOrEqual:
		tmp := math.Max(math.Ceil(position), 0)
		if match == Greater && math.Abs(tmp-position) <= epsilon {
			tmp++
		}
		index = uint64(tmp)
	case Less, LessOrEqual:
		tmp := math.Floor(position)
		if match == Less && math.Abs(tmp-position) <= epsilon {
			if tmp < 1 {
				return 0, false
			}
			tmp--
		}
		index = uint64(tmp)
	default:
		tmp := math.Round(position)
		if math.Abs(tmp-position) > epsilon {
			return 0, false
		}
		index = uint64(tmp)
	}
	if labelCount > 0 && index > uint64(labelCount-1) {
		if match == Less || match == LessOrEqual {
			return uint64(labelCount - 1), true
		}
		return 0, false
	}
	return index, true
}

func indexRange(start, end float64, match RangeMatch, indexOf func(float64, PositionMatch) (uint64, bool)) (uint64, uint64, bool) {
	if start > end {
		return 0, 0, false
	}
	endMatch := LessOrEqual
	if match == Exclusive {
		endMatch = Less
	}
	si, ok := indexOf(start, GreaterOrEqual)
	if !ok {
		return 0, 0, false
	}
	ei, ok := indexOf(end, endMatch)
	if !ok || si > ei {
		return 0, 0, false
	}
	return si, ei, true
}
