package validation

import (
	"time"

	"github.com/G-Node/nix-sub001/internal/units"
	"golang.org/x/exp/constraints"
)

// IsTrue holds for true
func IsTrue(v bool) bool { return v }

// IsFalse holds for false
func IsFalse(v bool) bool { return !v }

// NotEmptyString holds for any non-empty string
func NotEmptyString(v string) bool { return v != "" }

// NotZeroTime holds for any time other than the zero time
func NotZeroTime(v time.Time) bool { return !v.IsZero() }

// NotEmpty holds for slices with at least one element
func NotEmpty[T any]() Check[[]T] {
	return func(v []T) bool { return len(v) > 0 }
}

// Equals holds when the value equals want
func Equals[T comparable](want T) Check[T] {
	return func(v T) bool { return v == want }
}

// GreaterThan holds when the value is strictly greater than limit
func GreaterThan[T constraints.Ordered](limit T) Check[T] {
	return func(v T) bool { return v > limit }
}

// AtMost holds when the value is smaller than or equal to limit
func AtMost[T constraints.Ordered](limit T) Check[T] {
	return func(v T) bool { return v <= limit }
}

// IsSorted holds when the slice is in ascending order
func IsSorted[T constraints.Ordered]() Check[[]T] {
	return func(v []T) bool {
		for i := 1; i < len(v); i++ {
			if v[i] < v[i-1] {
				return false
			}
		}
		return true
	}
}

// LengthEquals holds when the slice has exactly n elements
func LengthEquals[T any](n int) Check[[]T] {
	return func(v []T) bool { return len(v) == n }
}

// IsAtomicUnit holds for empty strings and atomic SI units
func IsAtomicUnit(v string) bool {
	return v == "" || units.IsSIUnit(v)
}

// IsValidUnit holds for empty strings, atomic and compound SI units
func IsValidUnit(v string) bool {
	return v == "" || units.IsValid(v)
}

// AllValidUnits holds when each entry is "none", empty or a valid SI unit
func AllValidUnits(v []string) bool {
	for _, u := range v {
		if !units.IsNone(u) && !units.IsValid(u) {
			return false
		}
	}
	return true
}
