package types

import "fmt"

// DimensionType is the discriminator persisted with every dimension descriptor
type DimensionType int

const (
	// Sample dimensions describe regularly sampled axes (interval + offset)
	Sample DimensionType = iota
	// Range dimensions describe irregular axes through explicit ascending ticks
	Range
	// Set dimensions describe nominal axes with optional labels
	Set
)

// String returns the string representation of the DimensionType
func (dt DimensionType) String() string {
	switch dt {
	case Sample:
		return "sample"
	case Range:
		return "range"
	case Set:
		return "set"
	default:
		return "unknown"
	}
}

// ParseDimensionType is the inverse of DimensionType.String
func ParseDimensionType(s string) (DimensionType, error) {
	switch s {
	case "sample":
		return Sample, nil
	case "range":
		return Range, nil
	case "set":
		return Set, nil
	}
	return 0, fmt.Errorf("%w: unknown dimension type %q", ErrInvalidDimension, s)
}

// LinkType defines how the data of a feature aligns with the region
// addressed by its tag.
type LinkType int

const (
	// Tagged features are addressed with the tag's own position and extent
	Tagged LinkType = iota
	// Untagged features are always returned in full
	Untagged
	// Indexed features are sliced along their first axis by the tag row
	Indexed
)

// String returns the string representation of the LinkType
func (lt LinkType) String() string {
	switch lt {
	case Tagged:
		return "tagged"
	case Untagged:
		return "untagged"
	case Indexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// ParseLinkType is the inverse of LinkType.String
func ParseLinkType(s string) (LinkType, error) {
	switch s {
	case "tagged":
		return Tagged, nil
	case "untagged":
		return Untagged, nil
	case "indexed":
		return Indexed, nil
	}
	return 0, fmt.Errorf("unknown link type %q", s)
}
