package binary

import "testing"

// FuzzIntRoundTrip fuzzes EncodeInt/DecodeInt for every width and order.
func FuzzIntRoundTrip(f *testing.F) {
	f.Add(int64(0), uint8(1), false)
	f.Add(int64(-1), uint8(3), true)
	f.Add(int64(8388607), uint8(3), false)
	f.Add(int64(-8388608), uint8(3), true)
	f.Add(int64(1)<<39, uint8(6), false)

	f.Fuzz(func(t *testing.T, v int64, width uint8, little bool) {
		if width < 1 || width > 8 {
			return
		}
		if width < 8 {
			// Reduce v into the representable range of the width.
			shift := 64 - uint(width)*8
			v = v << shift >> shift
		}
		order := BigEndian
		if little {
			order = LittleEndian
		}

		buf := make([]byte, width)
		idx := 0
		if err := EncodeInt(v, int(width), order, buf, &idx); err != nil {
			t.Fatal(err)
		}
		idx = 0
		got, err := DecodeInt(int(width), order, buf, &idx)
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Errorf("FuzzIntRoundTrip: got %d, want %d (width %d, %s)", got, v, width, order)
		}
	})
}
