// Package typedetect provides utilities for detecting type characteristics of generic
// number types.
package typedetect

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Number represents all int, uint and float types.
type Number interface {
	constraints.Integer | constraints.Float
}

// IsSignedInteger returns true if T is a signed integer type.
func IsSignedInteger[T constraints.Integer]() bool {
	var zero T
	// All bits set is -1 for a signed type and the maximum value for an unsigned one.
	return ^zero < 0
}

// BitSize returns the width of T in bits.
func BitSize[T Number]() int {
	var t T
	return int(unsafe.Sizeof(t)) * 8
}
