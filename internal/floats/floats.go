// Package floats converts native floats to and from the reduced width float formats used on
// the wire, and screens native floats for values that must not be decoded.
//
// The 16 bit format is not IEEE binary16: it has 1 sign bit, 6 exponent bits biased by 31
// and 9 significand bits. The 24 bit format has 1 sign bit, 8 exponent bits biased by 127 and
// 15 significand bits, so it keeps the full binary32 range. Conversions truncate the
// significand and saturate to the largest finite magnitude instead of producing infinity.
// Neither format is an arithmetic type.
package floats

import "math"

const (
	// Float16Max is the largest magnitude a float16 holds: exponent 31, all significand bits set.
	Float16Max uint16 = 0x7DFF
	// Float24Max is the largest magnitude a float24 holds: exponent 127, all significand bits set.
	Float24Max uint32 = 0x7F7FFF

	f16Bias    = 31
	f16ExpMax  = 31
	f16ExpMin  = -31
	f16SigBits = 9

	f24SigBits = 15
)

// IsValidFloat32 reports if bits is a float32 that is safe to decode: not infinity, not NaN and
// not denormalized. Zero of either sign is valid.
func IsValidFloat32(bits uint32) bool {
	exp := (bits >> 23) & 0xFF
	if exp == 0xFF {
		return false
	}
	if exp == 0 && bits&0x7FFFFF != 0 {
		return false
	}
	return true
}

// IsValidFloat64 is IsValidFloat32 for float64 bit patterns.
func IsValidFloat64(bits uint64) bool {
	exp := (bits >> 52) & 0x7FF
	if exp == 0x7FF {
		return false
	}
	if exp == 0 && bits&0xFFFFFFFFFFFFF != 0 {
		return false
	}
	return true
}

// Float32ToFloat16 converts v to the 16 bit wire format.
func Float32ToFloat16(v float32) uint16 {
	b := math.Float32bits(v)
	sign := uint16(b>>16) & 0x8000

	// Zero must stay zero, with its sign.
	if b&0x7FFFFFFF == 0 {
		return sign
	}

	exp := int((b>>23)&0xFF) - 127
	switch {
	case exp < f16ExpMin:
		return sign
	case exp > f16ExpMax:
		return sign | Float16Max
	}

	sig := uint16(b>>(23-f16SigBits)) & (1<<f16SigBits - 1)
	return sign | uint16(exp+f16Bias)<<f16SigBits | sig
}

// Float16ToFloat32 converts the 16 bit wire format to a float32.
func Float16ToFloat32(v uint16) float32 {
	sign := uint32(v&0x8000) << 16
	if v&0x7FFF == 0 {
		return math.Float32frombits(sign)
	}

	exp := int((v>>f16SigBits)&0x3F) - f16Bias
	sig := uint32(v&(1<<f16SigBits-1)) << (23 - f16SigBits)
	return math.Float32frombits(sign | uint32(exp+127)<<23 | sig)
}

// Float32ToFloat24 converts v to the 24 bit wire format. The result is in the low 24 bits.
func Float32ToFloat24(v float32) uint32 {
	b := math.Float32bits(v)
	sign := (b >> 8) & 0x800000

	if b&0x7FFFFFFF == 0 {
		return sign
	}

	switch (b >> 23) & 0xFF {
	case 0:
		// Denormals are below the format's range.
		return sign
	case 0xFF:
		return sign | Float24Max
	}

	return (b >> (23 - f24SigBits)) & 0xFFFFFF
}

// Float24ToFloat32 converts the 24 bit wire format held in the low 24 bits of v to a float32.
func Float24ToFloat32(v uint32) float32 {
	v &= 0xFFFFFF
	sign := (v & 0x800000) << 8
	if v&0x7F8000 == 0 {
		return math.Float32frombits(sign)
	}
	return math.Float32frombits(v << (23 - f24SigBits))
}

// Float64ToFloat16 narrows v to float32 then converts it to the 16 bit wire format.
func Float64ToFloat16(v float64) uint16 {
	return Float32ToFloat16(narrow(v))
}

// Float64ToFloat24 narrows v to float32 then converts it to the 24 bit wire format.
func Float64ToFloat24(v float64) uint32 {
	return Float32ToFloat24(narrow(v))
}

// narrow converts v to float32, saturating instead of overflowing to infinity.
func narrow(v float64) float32 {
	switch {
	case v > math.MaxFloat32:
		return math.MaxFloat32
	case v < -math.MaxFloat32:
		return -math.MaxFloat32
	}
	return float32(v)
}
