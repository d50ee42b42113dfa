// Package binary replaces the encoding/binary package in the standard library for the
// fixed-width integers protogen puts on the wire. Widths of 1 to 8 bytes are supported,
// including the non-native 3, 5, 6 and 7 byte widths, in either byte order.
package binary

import (
	"fmt"

	"github.com/bearlytools/protogen/errors"
	"github.com/bearlytools/protogen/internal/typedetect"
	"golang.org/x/exp/constraints"
)

// ByteOrder is the protocol-wide order of multi-byte fields.
type ByteOrder uint8

const (
	// BigEndian puts the most significant byte first. This is the default for protocols.
	BigEndian ByteOrder = 0
	// LittleEndian puts the least significant byte first.
	LittleEndian ByteOrder = 1
)

func (o ByteOrder) String() string {
	if o == LittleEndian {
		return "little"
	}
	return "big"
}

func check(width int, buf []byte, idx int) error {
	if width < 1 || width > 8 {
		return fmt.Errorf("%w: %d bytes, want 1-8", errors.ErrByteWidth, width)
	}
	if idx < 0 || idx+width > len(buf) {
		return fmt.Errorf("%w: %d bytes at index %d, buffer is %d bytes", errors.ErrBounds, width, idx, len(buf))
	}
	return nil
}

// EncodeUint writes the low width bytes of v at buf[*idx] and advances *idx.
// Bytes are produced by successive 8 bit shifts.
func EncodeUint(v uint64, width int, order ByteOrder, buf []byte, idx *int) error {
	if err := check(width, buf, *idx); err != nil {
		return err
	}
	b := buf[*idx : *idx+width]
	if order == BigEndian {
		for i := width - 1; i >= 0; i-- {
			b[i] = byte(v)
			v >>= 8
		}
	} else {
		for i := 0; i < width; i++ {
			b[i] = byte(v)
			v >>= 8
		}
	}
	*idx += width
	return nil
}

// DecodeUint reads width bytes at buf[*idx] as an unsigned integer and advances *idx.
func DecodeUint(width int, order ByteOrder, buf []byte, idx *int) (uint64, error) {
	if err := check(width, buf, *idx); err != nil {
		return 0, err
	}
	b := buf[*idx : *idx+width]
	var v uint64
	if order == BigEndian {
		for i := 0; i < width; i++ {
			v = v<<8 | uint64(b[i])
		}
	} else {
		for i := width - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
	}
	*idx += width
	return v, nil
}

// EncodeInt writes the two's complement low width bytes of v.
func EncodeInt(v int64, width int, order ByteOrder, buf []byte, idx *int) error {
	return EncodeUint(uint64(v), width, order, buf, idx)
}

// DecodeInt reads a signed integer of width bytes, sign extending non-native widths.
func DecodeInt(width int, order ByteOrder, buf []byte, idx *int) (int64, error) {
	return Get[int64](width, order, buf, idx)
}

// Put writes any integer type as width bytes. Signed values are written as two's complement.
func Put[T constraints.Integer](v T, width int, order ByteOrder, buf []byte, idx *int) error {
	if typedetect.IsSignedInteger[T]() {
		return EncodeUint(uint64(int64(v)), width, order, buf, idx)
	}
	return EncodeUint(uint64(v), width, order, buf, idx)
}

// Get reads width bytes into integer type T. If T is signed and narrower on the wire than
// in memory, the sign bit is extended in T's own width: m = 1 << (width*8 - 1), then
// (raw ^ m) - m. When width matches T, the conversion's two's complement truncation does it.
func Get[T constraints.Integer](width int, order ByteOrder, buf []byte, idx *int) (T, error) {
	raw, err := DecodeUint(width, order, buf, idx)
	if err != nil {
		return 0, err
	}
	if !typedetect.IsSignedInteger[T]() || width*8 >= typedetect.BitSize[T]() {
		return T(raw), nil
	}
	m := T(1) << (width*8 - 1)
	return (T(raw) ^ m) - m, nil
}
