// Package bits provides the MSB-first bitfield codec. Fields of 1 to 64 bits are packed into a
// byte buffer at an arbitrary bit offset, independent of the protocol's byte order.
// This is not a replacement for math/bits.
package bits

import (
	"fmt"
	"strings"

	"github.com/bearlytools/protogen/errors"
	"golang.org/x/exp/constraints"
)

const (
	// MaxBits is the widest field EncodeBits/DecodeBits handle.
	MaxBits = 32
	// MaxLongBits is the widest field the Long variants handle.
	MaxLongBits = 64
)

// Cursor is the position of the next bit to be read or written. Bit is the number of bits
// already consumed in buf[Byte], 0 to 7. A Cursor belongs to one encode or decode call.
type Cursor struct {
	Byte int
	Bit  int
}

// Aligned reports if the cursor sits on a byte boundary.
func (c Cursor) Aligned() bool {
	return c.Bit == 0
}

// Close byte-aligns the cursor, skipping the unused low bits of a partially filled byte.
// This ends a run of bitfields.
func Close(c *Cursor) {
	if c.Bit != 0 {
		c.Bit = 0
		c.Byte++
	}
}

// BytesFor returns the number of bytes a run of n bits starting at a byte boundary occupies.
func BytesFor(n int) int {
	return (n + 7) >> 3
}

// EncodeBits writes the low numBits of value at the cursor. value is clamped to 2^numBits-1
// before packing. numBits must be 1 to 32; use EncodeLongBits for wider fields.
func EncodeBits(value uint32, numBits int, buf []byte, c *Cursor) error {
	if numBits < 1 || numBits > MaxBits {
		return fmt.Errorf("%w: %d bits, want 1-%d", errors.ErrBitWidth, numBits, MaxBits)
	}
	max := Mask[uint32](0, uint64(numBits))
	if value > max {
		value = max
	}
	return encode(uint64(value), numBits, buf, c)
}

// EncodeBitsUnchecked is EncodeBits for values the caller has already range checked.
// Bits of value above numBits are discarded rather than clamped.
func EncodeBitsUnchecked(value uint32, numBits int, buf []byte, c *Cursor) error {
	if numBits < 1 || numBits > MaxBits {
		return fmt.Errorf("%w: %d bits, want 1-%d", errors.ErrBitWidth, numBits, MaxBits)
	}
	return encode(uint64(value), numBits, buf, c)
}

// EncodeLongBits is EncodeBits for fields of up to 64 bits. Protocols only use it when long
// bitfields are enabled.
func EncodeLongBits(value uint64, numBits int, buf []byte, c *Cursor) error {
	if numBits < 1 || numBits > MaxLongBits {
		return fmt.Errorf("%w: %d bits, want 1-%d", errors.ErrBitWidth, numBits, MaxLongBits)
	}
	max := Mask[uint64](0, uint64(numBits))
	if value > max {
		value = max
	}
	return encode(value, numBits, buf, c)
}

// EncodeLongBitsUnchecked is EncodeBitsUnchecked for fields of up to 64 bits.
func EncodeLongBitsUnchecked(value uint64, numBits int, buf []byte, c *Cursor) error {
	if numBits < 1 || numBits > MaxLongBits {
		return fmt.Errorf("%w: %d bits, want 1-%d", errors.ErrBitWidth, numBits, MaxLongBits)
	}
	return encode(value, numBits, buf, c)
}

// DecodeBits reads a numBits wide field at the cursor. numBits must be 1 to 32.
func DecodeBits(numBits int, buf []byte, c *Cursor) (uint32, error) {
	if numBits < 1 || numBits > MaxBits {
		return 0, fmt.Errorf("%w: %d bits, want 1-%d", errors.ErrBitWidth, numBits, MaxBits)
	}
	v, err := decode(numBits, buf, c)
	return uint32(v), err
}

// DecodeLongBits reads a field of up to 64 bits at the cursor.
func DecodeLongBits(numBits int, buf []byte, c *Cursor) (uint64, error) {
	if numBits < 1 || numBits > MaxLongBits {
		return 0, fmt.Errorf("%w: %d bits, want 1-%d", errors.ErrBitWidth, numBits, MaxLongBits)
	}
	return decode(numBits, buf, c)
}

// check validates the cursor and that the field fits in buf. It does not move the cursor.
func check(numBits int, buf []byte, c *Cursor) error {
	if c.Bit < 0 || c.Bit > 7 {
		return fmt.Errorf("%w: %d", errors.ErrCursor, c.Bit)
	}
	last := c.Byte + (c.Bit+numBits-1)>>3
	if c.Byte < 0 || last >= len(buf) {
		return fmt.Errorf("%w: %d bits at byte %d bit %d, buffer is %d bytes", errors.ErrBounds, numBits, c.Byte, c.Bit, len(buf))
	}
	return nil
}

// encode packs value MSB-first. The least significant bits have a fixed position at the end
// of the field, so bytes are filled from the last one backwards. No step shifts by more than 8.
func encode(value uint64, numBits int, buf []byte, c *Cursor) error {
	if err := check(numBits, buf, c); err != nil {
		return err
	}

	bitOffset := c.Bit + numBits
	idx := c.Byte + (bitOffset-1)>>3
	// Bits of the last byte in use up to and including the field's least significant bit.
	used := ((bitOffset - 1) & 7) + 1

	for remaining := numBits; remaining > 0; {
		n := used
		if n > remaining {
			n = remaining
		}
		shift := uint(8 - used)
		mask := byte(uint16(1)<<n-1) << shift
		buf[idx] = buf[idx]&^mask | (byte(value)<<shift)&mask

		value >>= uint(n)
		remaining -= n
		idx--
		used = 8
	}

	c.Byte += bitOffset >> 3
	c.Bit = bitOffset & 7
	return nil
}

// decode mirrors encode, reading from the most significant bit forward.
func decode(numBits int, buf []byte, c *Cursor) (uint64, error) {
	if err := check(numBits, buf, c); err != nil {
		return 0, err
	}

	var v uint64
	idx, bit := c.Byte, c.Bit
	for remaining := numBits; remaining > 0; {
		avail := 8 - bit
		n := avail
		if n > remaining {
			n = remaining
		}
		chunk := (buf[idx] >> uint(avail-n)) & byte(uint16(1)<<n-1)
		v = v<<uint(n) | uint64(chunk)

		remaining -= n
		bit += n
		if bit == 8 {
			bit = 0
			idx++
		}
	}

	c.Byte, c.Bit = idx, bit
	return v, nil
}

// Mask creates a mask for setting, getting and clearing a set of bits.
// start is the bit location you wish to start at and end is the bit you wish to end at (exclusive).
// Index starts at 0. So Mask(1, 4) will create a mask that includes bits at location 1 to 3.
// If start >= end, this will panic.
func Mask[U constraints.Unsigned](start, end uint64) U {
	return U(setBits(uint64(0), start, end))
}

// setBits sets all bits to 1 from start (inclusive) to end (exclusive).
func setBits(n uint64, start, end uint64) uint64 {
	if start >= end {
		panic("start cannot be >= end")
	}
	if end > 64 {
		panic(fmt.Sprintf("end cannot be %d, as that is the largest amount of bits in a 64 bit number", end))
	}

	width := end - start
	if width == 64 {
		return ^uint64(0)
	}
	return n | ((uint64(1)<<width)-1)<<start
}

// BytesInBinary renders bs as space separated binary octets. Used in test failures.
func BytesInBinary(bs []byte) string {
	buff := strings.Builder{}
	for i, n := range bs {
		if i > 0 {
			buff.WriteByte(' ')
		}
		buff.WriteString(fmt.Sprintf("%08b", n))
	}
	return buff.String()
}
