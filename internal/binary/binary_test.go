package binary

import (
	"math"
	"testing"

	"github.com/bearlytools/protogen/errors"
	"github.com/kylelemons/godebug/pretty"
)

func TestEncodeLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		v     int64
		width int
		order ByteOrder
		want  []byte
	}{
		{name: "Success: 24 bit big endian", v: 0x123456, width: 3, order: BigEndian, want: []byte{0x12, 0x34, 0x56}},
		{name: "Success: 24 bit little endian", v: 0x123456, width: 3, order: LittleEndian, want: []byte{0x56, 0x34, 0x12}},
		{name: "Success: negative 40 bit big endian", v: -2, width: 5, order: BigEndian, want: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFE}},
		{name: "Success: 16 bit truncates", v: 0x10203, width: 2, order: BigEndian, want: []byte{0x02, 0x03}},
		{name: "Success: 64 bit little endian", v: 0x0102030405060708, width: 8, order: LittleEndian, want: []byte{8, 7, 6, 5, 4, 3, 2, 1}},
	}

	for _, test := range tests {
		buf := make([]byte, test.width)
		idx := 0
		if err := EncodeInt(test.v, test.width, test.order, buf, &idx); err != nil {
			t.Fatalf("TestEncodeLayout(%s): got err == %s", test.name, err)
		}
		if diff := pretty.Compare(test.want, buf); diff != "" {
			t.Errorf("TestEncodeLayout(%s): -want/+got:\n%s", test.name, diff)
		}
		if idx != test.width {
			t.Errorf("TestEncodeLayout(%s): index %d, want %d", test.name, idx, test.width)
		}
	}
}

// TestSignExtension checks every non-native width at its extremes and around zero.
func TestSignExtension(t *testing.T) {
	t.Parallel()

	for _, width := range []int{3, 5, 6, 7} {
		max := int64(1)<<(width*8-1) - 1
		min := -max - 1
		for _, order := range []ByteOrder{BigEndian, LittleEndian} {
			for _, v := range []int64{min, min + 1, -1, 0, 1, max - 1, max, -12345, 12345} {
				buf := make([]byte, width)
				idx := 0
				if err := EncodeInt(v, width, order, buf, &idx); err != nil {
					t.Fatal(err)
				}
				idx = 0
				got, err := DecodeInt(width, order, buf, &idx)
				if err != nil {
					t.Fatal(err)
				}
				if got != v {
					t.Errorf("TestSignExtension(width %d, %s): got %d, want %d", width, order, got, v)
				}
			}
		}
	}
}

func TestGetNarrowTargets(t *testing.T) {
	t.Parallel()

	buf := []byte{0xFF, 0xFF, 0x85}
	idx := 0
	got32, err := Get[int32](3, BigEndian, buf, &idx)
	if err != nil {
		t.Fatal(err)
	}
	if got32 != -123 {
		t.Errorf("TestGetNarrowTargets(int32): got %d, want -123", got32)
	}

	idx = 0
	gotU, err := Get[uint32](3, BigEndian, buf, &idx)
	if err != nil {
		t.Fatal(err)
	}
	if gotU != 0xFFFF85 {
		t.Errorf("TestGetNarrowTargets(uint32): got %#x, want 0xffff85", gotU)
	}

	buf = []byte{0x80, 0x00}
	idx = 0
	got16, err := Get[int16](2, BigEndian, buf, &idx)
	if err != nil {
		t.Fatal(err)
	}
	if got16 != math.MinInt16 {
		t.Errorf("TestGetNarrowTargets(int16): got %d, want %d", got16, math.MinInt16)
	}

	idx = 0
	buf = make([]byte, 2)
	if err := Put(int8(-3), 2, LittleEndian, buf, &idx); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Compare([]byte{0xFD, 0xFF}, buf); diff != "" {
		t.Errorf("TestGetNarrowTargets(Put int8): -want/+got:\n%s", diff)
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 4)
	idx := 2
	if err := EncodeUint(1, 3, BigEndian, buf, &idx); !errors.Is(err, errors.ErrBounds) {
		t.Errorf("TestErrors(bounds): got %v", err)
	}
	if idx != 2 {
		t.Errorf("TestErrors(bounds): index moved to %d", idx)
	}
	if _, err := DecodeUint(9, BigEndian, buf, &idx); !errors.Is(err, errors.ErrByteWidth) {
		t.Errorf("TestErrors(width): got %v", err)
	}
}
