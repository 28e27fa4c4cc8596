package types

import (
	"fmt"
	"reflect"
)

// convertSlice converts every element of src into dst (len(dst) >= len(src))
func convertSlice[To, From Number](dst []To, src []From) {
	for i, v := range src {
		dst[i] = To(v)
	}
}

func toFloat64s[From Number](src []From) []float64 {
	out := make([]float64, len(src))
	convertSlice(out, src)
	return out
}

// ToFloat64s converts a numeric element slice to float64 values
func ToFloat64s(v any) ([]float64, error) {
	switch s := v.(type) {
	case []int8:
		return toFloat64s(s), nil
	case []int16:
		return toFloat64s(s), nil
	case []int32:
		return toFloat64s(s), nil
	case []int64:
		return toFloat64s(s), nil
	case []uint8:
		return toFloat64s(s), nil
	case []uint16:
		return toFloat64s(s), nil
	case []uint32:
		return toFloat64s(s), nil
	case []uint64:
		return toFloat64s(s), nil
	case []float32:
		return toFloat64s(s), nil
	case []float64:
		out := make([]float64, len(s))
		copy(out, s)
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T is not numeric", ErrInvalidDataType, v)
}

// StoreFloat64s writes float64 values into a numeric element slice
func StoreFloat64s(dst any, src []float64) error {
	if n := SliceLen(dst); n < len(src) {
		return fmt.Errorf("%w: buffer holds %d elements, need %d", ErrIncompatibleDimensions, n, len(src))
	}
	switch d := dst.(type) {
	case []int8:
		convertSlice(d, src)
	case []int16:
		convertSlice(d, src)
	case []int32:
		convertSlice(d, src)
	case []int64:
		convertSlice(d, src)
	case []uint8:
		convertSlice(d, src)
	case []uint16:
		convertSlice(d, src)
	case []uint32:
		convertSlice(d, src)
	case []uint64:
		convertSlice(d, src)
	case []float32:
		convertSlice(d, src)
	case []float64:
		copy(d, src)
	default:
		return fmt.Errorf("%w: %T is not numeric", ErrInvalidDataType, dst)
	}
	return nil
}

// Convert copies the elements of src into dst, converting between numeric
// types when they differ. Booleans and strings only convert to themselves.
func Convert(dst, src any) error {
	dv, sv := reflect.ValueOf(dst), reflect.ValueOf(src)
	if dv.Kind() != reflect.Slice || sv.Kind() != reflect.Slice {
		return fmt.Errorf("%w: expected slices, got %T and %T", ErrInvalidDataType, dst, src)
	}
	if dv.Len() != sv.Len() {
		return fmt.Errorf("%w: buffer holds %d elements, need %d", ErrIncompatibleDimensions, dv.Len(), sv.Len())
	}
	if dv.Type() == sv.Type() {
		reflect.Copy(dv, sv)
		return nil
	}
	if !DataTypeOf(dst).IsNumeric() || !DataTypeOf(src).IsNumeric() {
		return fmt.Errorf("%w: cannot convert %T to %T", ErrInvalidDataType, src, dst)
	}
	values, err := ToFloat64s(src)
	if err != nil {
		return err
	}
	return StoreFloat64s(dst, values)
}

// CloneSlice returns a copy of an element slice
func CloneSlice(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}
