// Package scaling maps floating point values onto fixed width wire integers with a linear
// transform, and back again.
//
// Unsigned fields encode round((v-Min)*Scaler) and decode Min + raw*InvScaler. Signed fields
// are symmetric around zero: they encode round(v*Scaler) and decode raw*InvScaler. Out of
// range values saturate to the wire range, they never wrap and never error. Rounding is half
// away from zero.
//
// Nothing here writes bytes. Callers hand the raw value to internal/bits or internal/binary.
package scaling

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Spec is a resolved linear scaling. Scaler is authoritative; Max is informational when the
// scaling was built with FromScaler.
type Spec struct {
	// Min is the value that encodes to 0 for unsigned fields. It is -Max for signed fields.
	Min float64
	// Max is the value that encodes to the largest wire value.
	Max float64
	// Scaler multiplies a value to get the wire value.
	Scaler float64
	// InvScaler is 1/Scaler, used for decoding.
	InvScaler float64
	// Bits is the wire width the scaling was computed for.
	Bits int
	// Signed indicates the wire value is signed.
	Signed bool
}

// String implements fmt.Stringer.
func (s Spec) String() string {
	return fmt.Sprintf("scale[%g..%g]*%g/%d", s.Min, s.Max, s.Scaler, s.Bits)
}

// FromMax computes a Spec from a user supplied range. For signed fields min is ignored and
// the range is [-max, max]. ok is false if the range is empty or not finite, in which case the
// caller should drop the scaling.
func FromMax(min, max float64, bits int, signed bool) (spec Spec, ok bool) {
	if bits < 1 || bits > 64 {
		return Spec{}, false
	}
	if signed {
		min = -max
	}
	if !(max > min) || math.IsInf(max-min, 0) || math.IsNaN(max-min) {
		return Spec{}, false
	}

	var scaler float64
	if signed {
		scaler = MaxSigned(bits) / max
	} else {
		scaler = MaxUnsigned(bits) / (max - min)
	}
	return Spec{Min: min, Max: max, Scaler: scaler, InvScaler: 1 / scaler, Bits: bits, Signed: signed}, true
}

// FromScaler computes a Spec from a user supplied scaler. Max is back computed from it.
// ok is false if scaler is not a positive finite number.
func FromScaler(min, scaler float64, bits int, signed bool) (spec Spec, ok bool) {
	if bits < 1 || bits > 64 {
		return Spec{}, false
	}
	if !(scaler > 0) || math.IsInf(scaler, 0) {
		return Spec{}, false
	}

	s := Spec{Scaler: scaler, InvScaler: 1 / scaler, Bits: bits, Signed: signed}
	if signed {
		s.Max = MaxSigned(bits) / scaler
		s.Min = -s.Max
	} else {
		s.Min = min
		s.Max = min + MaxUnsigned(bits)/scaler
	}
	return s, true
}

// Identity is the scaling used by a float stored as an integer when no valid scaling was
// given: scaler 1, min 0.
func Identity(bits int, signed bool) Spec {
	s, _ := FromScaler(0, 1, bits, signed)
	return s
}

// MaxUnsigned returns 2^bits-1 as a float64.
func MaxUnsigned(bits int) float64 {
	return math.Ldexp(1, bits) - 1
}

// MaxSigned returns 2^(bits-1)-1 as a float64.
func MaxSigned(bits int) float64 {
	return math.Ldexp(1, bits-1) - 1
}

// EncodeUnsigned scales value into an unsigned wire value of the given width.
func EncodeUnsigned[F constraints.Float](value, min, scaler F, bits int) uint64 {
	top := uint64(math.MaxUint64) >> (64 - bits)

	scaled := (value - min) * scaler
	switch {
	case !(scaled > 0): // Also catches NaN.
		return 0
	case float64(scaled) >= float64(top):
		return top
	}
	return uint64(scaled + 0.5)
}

// EncodeSigned scales value into a signed wire value of the given width. The result is in
// [-(2^(bits-1)-1), 2^(bits-1)-1].
func EncodeSigned[F constraints.Float](value, scaler F, bits int) int64 {
	top := int64(uint64(math.MaxUint64) >> (65 - bits))

	scaled := value * scaler
	switch {
	case math.IsNaN(float64(scaled)):
		return 0
	case float64(scaled) >= float64(top):
		return top
	case float64(scaled) <= -float64(top):
		return -top
	case scaled >= 0:
		return int64(scaled + 0.5)
	}
	return int64(scaled - 0.5)
}

// DecodeUnsigned reverses EncodeUnsigned.
func DecodeUnsigned[F constraints.Float](raw uint64, min, invScaler F) F {
	return min + F(raw)*invScaler
}

// DecodeSigned reverses EncodeSigned.
func DecodeSigned[F constraints.Float](raw int64, invScaler F) F {
	return F(raw) * invScaler
}

// Round rounds v half away from zero.
func Round[F constraints.Float](v F) F {
	if v < 0 {
		return F(math.Ceil(float64(v - 0.5)))
	}
	return F(math.Floor(float64(v + 0.5)))
}
