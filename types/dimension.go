package types

import (
	"fmt"
	"strings"
)

// NDSize is the shape, offset or count of an n-dimensional region.
// An empty NDSize denotes a scalar.
type NDSize []uint64

// Rank returns the number of axes
func (s NDSize) Rank() int {
	return len(s)
}

// ElementCount returns the product of all axes (1 for a scalar)
func (s NDSize) ElementCount() uint64 {
	n := uint64(1)
	for _, v := range s {
		n *= v
	}
	return n
}

// Clone returns an independent copy
func (s NDSize) Clone() NDSize {
	if s == nil {
		return nil
	}
	out := make(NDSize, len(s))
	copy(out, s)
	return out
}

// Equal reports whether both sizes have the same rank and values
func (s NDSize) Equal(o NDSize) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Zeros returns an NDSize of the given rank filled with zeros
func Zeros(rank int) NDSize {
	return make(NDSize, rank)
}

// Contains reports whether the box offset+count fits inside s
func (s NDSize) Contains(offset, count NDSize) bool {
	if len(offset) != len(s) || len(count) != len(s) {
		return false
	}
	for i := range s {
		if offset[i] > s[i] || count[i] > s[i]-offset[i] {
			return false
		}
	}
	return true
}

// String renders the size like "{2, 10, 5}"
func (s NDSize) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
