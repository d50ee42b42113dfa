package typedetect

import "testing"

func TestIsSignedInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"int8", IsSignedInteger[int8](), true},
		{"int16", IsSignedInteger[int16](), true},
		{"int32", IsSignedInteger[int32](), true},
		{"int64", IsSignedInteger[int64](), true},
		{"uint8", IsSignedInteger[uint8](), false},
		{"uint16", IsSignedInteger[uint16](), false},
		{"uint32", IsSignedInteger[uint32](), false},
		{"uint64", IsSignedInteger[uint64](), false},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("TestIsSignedInteger(%s): got %v, want %v", test.name, test.got, test.want)
		}
	}
}

func TestBitSize(t *testing.T) {
	t.Parallel()

	if BitSize[int8]() != 8 || BitSize[uint32]() != 32 || BitSize[float64]() != 64 {
		t.Errorf("TestBitSize: got %d/%d/%d", BitSize[int8](), BitSize[uint32](), BitSize[float64]())
	}
}
