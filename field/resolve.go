package field

import "fmt"

// Capabilities are the protocol wide limits applied when descriptors are resolved. They are
// read once while a schema is built and never consulted while encoding or decoding.
type Capabilities struct {
	// Support64 allows 64 bit integers.
	Support64 bool `yaml:"support64"`
	// SupportFloat64 allows 64 bit floats.
	SupportFloat64 bool `yaml:"supportFloat64"`
	// SupportSpecialFloat allows the 16 and 24 bit wire float formats.
	SupportSpecialFloat bool `yaml:"supportSpecialFloat"`
	// SupportBitfield allows bitfields. Without it bitfields become whole byte integers.
	SupportBitfield bool `yaml:"supportBitfield"`
	// SupportLongBitfield allows bitfields wider than 32 bits.
	SupportLongBitfield bool `yaml:"supportLongBitfield"`
}

// AllCapabilities returns Capabilities with everything enabled.
func AllCapabilities() Capabilities {
	return Capabilities{
		Support64:           true,
		SupportFloat64:      true,
		SupportSpecialFloat: true,
		SupportBitfield:     true,
		SupportLongBitfield: true,
	}
}

// Warning records a correction made to a schema while it was resolved.
type Warning struct {
	// Field is the path of the field the warning is about. It is empty when the warning came
	// from a descriptor resolved on its own.
	Field string
	// Message describes the correction.
	Message string
}

func (w Warning) String() string {
	if w.Field == "" {
		return w.Message
	}
	return w.Field + ": " + w.Message
}

func warnf(format string, a ...any) Warning {
	return Warning{Message: fmt.Sprintf(format, a...)}
}

// ResolveMemory corrects an in-memory descriptor to a width Go can hold. Integers become
// 8, 16, 32 or 64 bits and floats 32 or 64 bits. A bitfield is not an in-memory type and is
// held in the smallest integer that fits. It never fails, every correction is returned as a
// Warning.
func ResolveMemory(d Descriptor, caps Capabilities) (Descriptor, []Warning) {
	var warns []Warning

	switch d.Category {
	case Bitfield:
		warns = append(warns, warnf("bitfield is not an in-memory type, using an unsigned integer"))
		d = Descriptor{Category: Integer, Bits: d.Bits}
		d.Bits, warns = memInteger(d.Bits, caps, warns)
	case Integer:
		d.Bits, warns = memInteger(d.Bits, caps, warns)
	case Float:
		bits := 32
		if d.Bits > 32 {
			bits = 64
		}
		if bits == 64 && !caps.SupportFloat64 {
			bits = 32
			warns = append(warns, warnf("64 bit floats are not supported, using 32 bits"))
		} else if bits != d.Bits {
			warns = append(warns, warnf("in-memory float width %d is not native, using %d", d.Bits, bits))
		}
		d.Bits = bits
		d.Signed = true
	case Enum:
		if d.Bits < 1 {
			d.Bits = 1
		}
		d.Signed = false
	case String, FixedString:
		d.Bits = 8
		d.Signed = false
	case Struct, Null:
		d.Signed = false
	default:
		warns = append(warns, warnf("unknown in-memory type, using uint8"))
		d = Descriptor{Category: Integer, Bits: 8}
	}
	return d, warns
}

// ResolveWire corrects the wire descriptor for a field whose in-memory side is mem, which
// must already have been through ResolveMemory. A zero wire descriptor means the wire
// matches memory. The result is never wider than mem for numbers, except that an
// enumeration's wire side is widened to hold all of its values.
func ResolveWire(mem, wire Descriptor, caps Capabilities) (Descriptor, []Warning) {
	var warns []Warning

	if wire.Category == Unknown {
		wire = defaultWire(mem)
	}

	// Strings and structures are written as they are held.
	switch mem.Category {
	case String, FixedString, Struct:
		if wire.Category != mem.Category && wire.Category != Null {
			warns = append(warns, warnf("%s cannot be encoded as %s", mem.Category, wire.Category))
			wire = mem
		}
		if wire.Category != Null {
			return wire, warns
		}
	}

	switch wire.Category {
	case Enum:
		warns = append(warns, warnf("enum is not a wire type, using an unsigned integer"))
		wire = Descriptor{Category: Integer, Bits: wire.Bits}
	case String, FixedString, Struct:
		warns = append(warns, warnf("%s cannot be encoded as %s", mem.Category, wire.Category))
		wire = defaultWire(mem)
	}

	if wire.Category == Bitfield && !caps.SupportBitfield {
		warns = append(warns, warnf("bitfields are not supported, using a %d byte integer", (wire.Bits+7)/8))
		wire = Descriptor{Category: Integer, Bits: wire.Bits}
	}

	switch wire.Category {
	case Integer:
		wire.Bits, warns = wireInteger(wire.Bits, caps, warns)
	case Float:
		wire.Bits, warns = wireFloat(wire.Bits, caps, warns)
		wire.Signed = true
	case Bitfield:
		wire.Bits, warns = wireBitfield(wire.Bits, caps, warns)
		wire.Signed = false
	case Null:
		if wire.Bits < 8 || wire.Bits%8 != 0 {
			b := ((wire.Bits + 7) / 8) * 8
			if b < 8 {
				b = 8
			}
			warns = append(warns, warnf("null width %d is not whole bytes, using %d", wire.Bits, b))
			wire.Bits = b
		}
		return wire, warns
	}

	// Only compress, never expand. Enumerations are the exception in the other direction.
	switch mem.Category {
	case Integer, Float:
		if wire.Bits > mem.Bits {
			warns = append(warns, warnf("wire width %d is wider than in-memory width %d, narrowing", wire.Bits, mem.Bits))
			wire = narrow(mem, wire, caps)
		}
	case Enum:
		if wire.Bits < mem.Bits {
			warns = append(warns, warnf("wire width %d cannot hold every enumeration value, widening to %d", wire.Bits, mem.Bits))
			if wire.Category == Bitfield {
				wire.Bits = mem.Bits
			} else {
				wire.Bits = ((mem.Bits + 7) / 8) * 8
			}
		}
	}
	return wire, warns
}

// defaultWire is the wire descriptor used when none was given.
func defaultWire(mem Descriptor) Descriptor {
	switch mem.Category {
	case Enum:
		return Descriptor{Category: Integer, Bits: ((mem.Bits + 7) / 8) * 8}
	}
	return mem
}

// narrow reduces wire to the width of mem. A float that cannot be made narrow enough is
// written as mem.
func narrow(mem, wire Descriptor, caps Capabilities) Descriptor {
	if wire.Category != Float {
		wire.Bits = mem.Bits
		return wire
	}
	bits, _ := wireFloat(mem.Bits, caps, nil)
	if bits > mem.Bits {
		return mem
	}
	wire.Bits = bits
	return wire
}

func memInteger(bits int, caps Capabilities, warns []Warning) (int, []Warning) {
	n := native(bits)
	if n == 64 && !caps.Support64 {
		warns = append(warns, warnf("64 bit integers are not supported, using 32 bits"))
		return 32, warns
	}
	if n != bits {
		warns = append(warns, warnf("in-memory integer width %d is not native, using %d", bits, n))
	}
	return n, warns
}

func wireInteger(bits int, caps Capabilities, warns []Warning) (int, []Warning) {
	n := ((bits + 7) / 8) * 8
	switch {
	case n < 8:
		n = 8
	case n > 64:
		n = 64
	}
	if n > 32 && !caps.Support64 {
		warns = append(warns, warnf("64 bit integers are not supported, using 32 bits"))
		return 32, warns
	}
	if n != bits {
		warns = append(warns, warnf("wire integer width %d is not whole bytes, using %d", bits, n))
	}
	return n, warns
}

func wireFloat(bits int, caps Capabilities, warns []Warning) (int, []Warning) {
	var n int
	switch {
	case bits <= 16:
		n = 16
	case bits <= 24:
		n = 24
	case bits <= 32:
		n = 32
	default:
		n = 64
	}
	if n != bits {
		warns = append(warns, warnf("wire float width %d is not supported, using %d", bits, n))
	}
	switch {
	case n < 32 && !caps.SupportSpecialFloat:
		warns = append(warns, warnf("%d bit floats are not supported, using 32 bits", n))
		n = 32
	case n == 64 && !caps.SupportFloat64:
		warns = append(warns, warnf("64 bit floats are not supported, using 32 bits"))
		n = 32
	}
	return n, warns
}

func wireBitfield(bits int, caps Capabilities, warns []Warning) (int, []Warning) {
	max := 32
	if caps.SupportLongBitfield {
		max = 64
	}
	switch {
	case bits < 1:
		warns = append(warns, warnf("bitfield width %d is too small, using 1", bits))
		return 1, warns
	case bits > max:
		warns = append(warns, warnf("bitfield width %d is too large, using %d", bits, max))
		return max, warns
	}
	return bits, warns
}

// native rounds bits up to a Go integer width.
func native(bits int) int {
	switch {
	case bits <= 8:
		return 8
	case bits <= 16:
		return 16
	case bits <= 32:
		return 32
	}
	return 64
}
