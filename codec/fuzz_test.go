package codec

import (
	"bytes"
	"testing"

	"github.com/bearlytools/protogen/schema"
	"github.com/gostdlib/base/context"
)

func fuzzStructure(tb testing.TB) *schema.Structure {
	s, err := schema.NewBuilder(testProtocol()).Struct(
		"Packet",
		schema.FieldSpec{Name: "kind", Type: "uint8", Encoded: "bitfield3"},
		schema.FieldSpec{Name: "flag", Type: "uint8", Encoded: "bitfield1"},
		schema.FieldSpec{Name: "level", Type: "uint16", Encoded: "bitfield12"},
		schema.FieldSpec{Name: "count", Type: "uint8"},
		schema.FieldSpec{Name: "v", Type: "int32", Encoded: "int24", Array: "N", VariableArray: "count"},
		schema.FieldSpec{Name: "opt", Type: "uint16", DependsOn: "flag"},
		schema.FieldSpec{Name: "name", Type: "string", Array: "6"},
		schema.FieldSpec{Name: "tail", Type: "int8", Default: schema.Ptr(-1.0)},
		schema.FieldSpec{Name: "tail2", Type: "uint16", Default: schema.Ptr(500.0)},
	).Build()
	if err != nil {
		tb.Fatalf("Build: got err == %s", err)
	}
	st, _ := s.Structure("Packet")
	return st
}

// FuzzDecode checks that decoding arbitrary bytes never panics, and that anything that
// decodes encodes to bytes that decode to the same encoding.
func FuzzDecode(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{0xFF, 0xFF, 0x02, 0xFF, 0xFF, 0xFE, 0x00, 0x00, 0x01, 0x12, 0x34, 'h', 'i', 0})
	f.Add([]byte{0x10, 0x01, 0x09, 0x01, 0x02, 0x03, 'a', 'b', 'c', 'd', 'e', 'f', 0x80, 0x01, 0xF4})
	f.Add(bytes.Repeat([]byte{0xAA}, 40))

	st := fuzzStructure(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		ctx := context.Background()

		v, err := Decode(ctx, st, data)
		if err != nil {
			return
		}
		w1, err := Encode(ctx, st, v)
		if err != nil {
			t.Fatalf("Encode of a decoded value: got err == %s", err)
		}
		v2, err := Decode(ctx, st, w1)
		if err != nil {
			t.Fatalf("Decode of % x: got err == %s", w1, err)
		}
		w2, err := Encode(ctx, st, v2)
		if err != nil {
			t.Fatalf("Encode of a re-decoded value: got err == %s", err)
		}
		if !bytes.Equal(w1, w2) {
			t.Fatalf("re-encoding changed the wire: % x != % x", w1, w2)
		}
	})
}
