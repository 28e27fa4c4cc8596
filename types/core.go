package types

import (
	"fmt"
	"reflect"

	"golang.org/x/exp/constraints"
)

// DataType is the element type of a stored array or attribute
type DataType int

const (
	Nothing DataType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float
	Double
	String
)

var dataTypeNames = map[DataType]string{
	Nothing: "nothing",
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float:   "float",
	Double:  "double",
	String:  "string",
}

// Number is the set of numeric element types
type Number interface {
	constraints.Integer | constraints.Float
}

// Element is the set of Go types that can be stored as array elements
type Element interface {
	bool | string | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// String returns the persisted name of the data type
func (dt DataType) String() string {
	if name, ok := dataTypeNames[dt]; ok {
		return name
	}
	return "unknown"
}

// ParseDataType is the inverse of DataType.String
func ParseDataType(s string) (DataType, error) {
	for dt, name := range dataTypeNames {
		if name == s {
			return dt, nil
		}
	}
	return Nothing, fmt.Errorf("%w: %q", ErrInvalidDataType, s)
}

// Size returns the size of one element in bytes (0 for strings and Nothing)
func (dt DataType) Size() int {
	switch dt {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float:
		return 4
	case Int64, Uint64, Double:
		return 8
	default:
		return 0
	}
}

// IsNumeric reports whether the type holds numbers
func (dt DataType) IsNumeric() bool {
	return dt >= Int8 && dt <= Double
}

// IsFloat reports whether the type is a floating point type
func (dt DataType) IsFloat() bool {
	return dt == Float || dt == Double
}

// DataTypeOf returns the DataType of a scalar element or of a slice of elements
func DataTypeOf(v any) DataType {
	switch v.(type) {
	case bool, []bool:
		return Bool
	case int8, []int8:
		return Int8
	case int16, []int16:
		return Int16
	case int32, []int32:
		return Int32
	case int64, []int64:
		return Int64
	case uint8, []uint8:
		return Uint8
	case uint16, []uint16:
		return Uint16
	case uint32, []uint32:
		return Uint32
	case uint64, []uint64:
		return Uint64
	case float32, []float32:
		return Float
	case float64, []float64:
		return Double
	case string, []string:
		return String
	default:
		return Nothing
	}
}

// MakeSlice allocates a zeroed element slice of length n for the data type
func (dt DataType) MakeSlice(n int) any {
	switch dt {
	case Bool:
		return make([]bool, n)
	case Int8:
		return make([]int8, n)
	case Int16:
		return make([]int16, n)
	case Int32:
		return make([]int32, n)
	case Int64:
		return make([]int64, n)
	case Uint8:
		return make([]uint8, n)
	case Uint16:
		return make([]uint16, n)
	case Uint32:
		return make([]uint32, n)
	case Uint64:
		return make([]uint64, n)
	case Float:
		return make([]float32, n)
	case Double:
		return make([]float64, n)
	case String:
		return make([]string, n)
	default:
		return nil
	}
}

// SliceLen returns the number of elements of an element slice, or -1 if v is
// not a slice.
func SliceLen(v any) int {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return -1
	}
	return rv.Len()
}
