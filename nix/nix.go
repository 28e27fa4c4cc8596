// Package nix is a container format for annotated n-dimensional scientific data.
//
// A File holds Blocks. A Block owns DataArrays (typed n-d arrays described by
// one Dimension per axis), Tags and MultiTags (annotations of points or regions
// in the arrays they reference), and Groups (plain relationship containers).
// Metadata lives in a separate tree of Sections and Properties.
//
// Tags address their referenced arrays in physical coordinates. RegionResolver
// logic (OffsetAndCount) converts position, extent and units into an offset and
// count box through the dimensions of the target array, and DataView gives
// bounds-checked access to that box.
package nix

import (
	"github.com/G-Node/nix-sub001/nix/store"
	"github.com/G-Node/nix-sub001/types"
)

// FormatName is written to every file root
const FormatName = "nix"

// FormatVersion is the version of the layout written by this package
var FormatVersion = []uint64{1, 2, 1}

// FileMode controls how Open treats an existing file
type FileMode = store.Mode

const (
	ReadOnly  = store.ReadOnly
	ReadWrite = store.ReadWrite
	Overwrite = store.Overwrite
)

// NDSize is the shape, offset or count of an n-dimensional region
type NDSize = types.NDSize

// DataType is the element type of arrays and property values
type DataType = types.DataType

// LinkType defines how feature data aligns with a tag
type LinkType = types.LinkType

const (
	Tagged   = types.Tagged
	Untagged = types.Untagged
	Indexed  = types.Indexed
)
