package codec

import (
	"math"

	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/internal/floats"
	"github.com/bearlytools/protogen/internal/scaling"
	"github.com/bearlytools/protogen/schema"
)

// toWire converts a normalized in-memory number to the raw bits written for f. Signed wire
// values are in two's complement; writers truncate to the wire width.
func toWire(f *schema.Field, x any) uint64 {
	switch f.Wire.Category {
	case field.Float:
		return floatToWire(f, asFloat(x))
	case field.Integer, field.Bitfield:
		if f.Scaling != nil {
			return scaledToWire(f, asFloat(x))
		}
		switch n := x.(type) {
		case int64:
			return uint64(n)
		case uint64:
			return n
		case float64:
			// Only reachable for constants on fields without an in-memory side.
			if f.Wire.Signed {
				return uint64(int64(scaling.Round(n)))
			}
			if n <= 0 {
				return 0
			}
			return uint64(scaling.Round(n))
		}
	}
	return 0
}

func floatToWire(f *schema.Field, v float64) uint64 {
	single := f.Memory.Category != field.Float || f.Memory.Bits == 32

	switch f.Wire.Bits {
	case 16:
		if single {
			return uint64(floats.Float32ToFloat16(float32(v)))
		}
		return uint64(floats.Float64ToFloat16(v))
	case 24:
		if single {
			return uint64(floats.Float32ToFloat24(float32(v)))
		}
		return uint64(floats.Float64ToFloat24(v))
	case 32:
		return uint64(math.Float32bits(float32(v)))
	}
	return math.Float64bits(v)
}

func scaledToWire(f *schema.Field, v float64) uint64 {
	sc := f.Scaling
	bits := f.Wire.Bits

	// float32 fields compute in float32.
	if f.Memory.Category == field.Float && f.Memory.Bits == 32 {
		if sc.Signed {
			return uint64(scaling.EncodeSigned(float32(v), float32(sc.Scaler), bits))
		}
		return scaling.EncodeUnsigned(float32(v), float32(sc.Min), float32(sc.Scaler), bits)
	}
	if sc.Signed {
		return uint64(scaling.EncodeSigned(v, sc.Scaler, bits))
	}
	return scaling.EncodeUnsigned(v, sc.Min, sc.Scaler, bits)
}

// fromWire converts raw bits read for f to a normalized in-memory number. Signed aligned
// values arrive sign extended.
func fromWire(f *schema.Field, raw uint64) any {
	switch f.Wire.Category {
	case field.Float:
		return fromFloat(f, wireToFloat(f, raw))
	case field.Integer, field.Bitfield:
		if f.Scaling != nil {
			return fromFloat(f, scaledFromWire(f, raw))
		}
	}

	switch f.Memory.Category {
	case field.Float:
		if f.Wire.Signed {
			return memValue(f, float64(int64(raw)))
		}
		return memValue(f, float64(raw))
	case field.Integer:
		if f.Memory.Signed {
			return int64(raw)
		}
		if f.Wire.Signed && int64(raw) < 0 {
			return uint64(0)
		}
		return raw
	}
	return raw
}

// wireToFloat decodes float bits. Bits that are not a valid float decode as 0.
func wireToFloat(f *schema.Field, raw uint64) float64 {
	var v32 float32
	switch f.Wire.Bits {
	case 16:
		v32 = floats.Float16ToFloat32(uint16(raw))
	case 24:
		v32 = floats.Float24ToFloat32(uint32(raw))
	case 32:
		v32 = math.Float32frombits(uint32(raw))
	default:
		if !floats.IsValidFloat64(raw) {
			return 0
		}
		return math.Float64frombits(raw)
	}
	if !floats.IsValidFloat32(math.Float32bits(v32)) {
		return 0
	}
	return float64(v32)
}

func scaledFromWire(f *schema.Field, raw uint64) float64 {
	sc := f.Scaling
	if f.Memory.Category == field.Float && f.Memory.Bits == 32 {
		if sc.Signed {
			return float64(scaling.DecodeSigned(int64(raw), float32(sc.InvScaler)))
		}
		return float64(scaling.DecodeUnsigned(raw, float32(sc.Min), float32(sc.InvScaler)))
	}
	if sc.Signed {
		return scaling.DecodeSigned(int64(raw), sc.InvScaler)
	}
	return scaling.DecodeUnsigned(raw, sc.Min, sc.InvScaler)
}

// fromFloat stores a decoded float in f's in-memory type. Integers round half away from
// zero and saturate to their width.
func fromFloat(f *schema.Field, v float64) any {
	d := f.Memory
	if !f.InMemory() {
		d = f.Wire
	}
	switch d.Category {
	case field.Float:
		return memValue(f, v)
	case field.Integer:
		if d.Signed {
			lim := math.Ldexp(1, d.Bits-1)
			r := scaling.Round(v)
			switch {
			case r >= lim:
				return int64(uint64(1)<<(d.Bits-1) - 1)
			case r < -lim:
				return -int64(uint64(1) << (d.Bits - 1))
			}
			return int64(r)
		}
	}
	// Unsigned integers and enumerations.
	r := scaling.Round(v)
	lim := math.Ldexp(1, d.Bits)
	switch {
	case !(r > 0):
		return uint64(0)
	case d.Category == field.Integer && r >= lim:
		return uint64(math.MaxUint64) >> (64 - d.Bits)
	case r >= math.Ldexp(1, 64):
		return uint64(math.MaxUint64)
	}
	return uint64(r)
}

func asFloat(x any) float64 {
	switch n := x.(type) {
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// written returns raw as a decoder reads it back from f's wire: bitfields clamp to their
// width, byte aligned values truncate and signed integers are sign extended.
func written(f *schema.Field, raw uint64) uint64 {
	if f.IsBitfield() {
		return min(raw, mask(math.MaxUint64, f.Wire.Bits))
	}
	width := f.Wire.Bytes() * 8
	raw = mask(raw, width)
	if f.Wire.Category == field.Integer && f.Wire.Signed && width < 64 {
		m := uint64(1) << (width - 1)
		raw = (raw ^ m) - m
	}
	return raw
}

// wireNumber returns the number a decoder holds for scalar f after x is written.
func wireNumber(f *schema.Field, x any) float64 {
	if f.Constant != nil {
		return asFloat(memValue(f, *f.Constant))
	}
	if x == nil {
		return asFloat(zeroScalar(f.Memory))
	}
	return asFloat(fromWire(f, written(f, toWire(f, x))))
}

// mask keeps the low bits of v.
func mask(v uint64, bits int) uint64 {
	if bits >= 64 {
		return v
	}
	return v & (1<<bits - 1)
}
