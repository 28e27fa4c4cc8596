package types

import "errors"

// Error taxonomy shared by every package of the module. Callers wrap these
// with context and test for them with errors.Is.
var (
	// ErrEmptyString is returned when a required string (name, type, label) is empty
	ErrEmptyString = errors.New("empty string")

	// ErrInvalidName is returned for names that cannot be used as entity names
	ErrInvalidName = errors.New("invalid name")

	// ErrDuplicateName is returned when a name is already taken within its parent collection
	ErrDuplicateName = errors.New("duplicate name")

	// ErrOutOfBounds is returned when an index, position or region lies outside the data
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrUninitializedEntity is returned when an entity or its data is not (or no longer) available
	ErrUninitializedEntity = errors.New("uninitialized entity")

	// ErrIncompatibleDimensions is returned for unit or shape mismatches between aligned arrays
	ErrIncompatibleDimensions = errors.New("incompatible dimensions")

	// ErrInvalidUnit is returned when a unit string is not a valid SI unit
	ErrInvalidUnit = errors.New("invalid unit")

	// ErrUnsortedTicks is returned when range ticks are not in ascending order
	ErrUnsortedTicks = errors.New("ticks are not sorted")

	// ErrInvalidDimension is returned for illegal dimension operations
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrInvalidRank is returned when an operation requires a different number of axes
	ErrInvalidRank = errors.New("invalid rank")

	// ErrNotFound is returned when a named member does not exist in its owning collection
	ErrNotFound = errors.New("not found")

	// ErrNotResizable is returned when trying to change the extent of a derived view
	ErrNotResizable = errors.New("extent is not resizable")

	// ErrReadOnly is returned when writing to a file opened read-only
	ErrReadOnly = errors.New("file is read-only")

	// ErrInvalidDataType is returned when element types cannot be converted
	ErrInvalidDataType = errors.New("invalid data type")
)
