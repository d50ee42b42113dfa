package config

import (
	"testing"

	"github.com/bearlytools/protogen/errors"
	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/schema"
	memfs "github.com/gopherfs/fs/io/mem/simple"
	"github.com/gostdlib/base/context"
	"github.com/kylelemons/godebug/pretty"
)

const telemetry = `
name: telemetry
byteOrder: little
capabilities:
  supportLongBitfield: false
constants:
  N: 4
enums:
  - name: Mode
    values:
      - {name: MODE_OFF, value: 0}
      - {name: MODE_ON, value: 1}
structures:
  - name: Sample
    fields:
      - {name: seq, type: uint16}
      - {name: mode, enum: Mode, encoded: bitfield2}
      - {name: flags, type: uint8, encoded: bitfield6}
      - {name: temp, type: float32, encoded: uint8, min: -40, max: 80}
      - {name: v, type: int16, array: N}
      - {name: extra, type: uint8, default: 3}
`

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    *Protocol
		wantErr bool
	}{
		{
			name: "Success: empty file is the default",
			data: ``,
			want: Default(),
		},
		{
			name: "Success: settings only",
			data: "name: p\nbyteOrder: Little\ncapabilities:\n  support64: false\n",
			want: &Protocol{
				Name:      "p",
				ByteOrder: "Little",
				Capabilities: field.Capabilities{
					SupportFloat64:      true,
					SupportSpecialFloat: true,
					SupportBitfield:     true,
					SupportLongBitfield: true,
				},
			},
		},
		{
			name:    "Error: unknown key",
			data:    "name: p\nendian: big\n",
			wantErr: true,
		},
		{
			name:    "Error: bad byte order",
			data:    "byteOrder: middle\n",
			wantErr: true,
		},
		{
			name:    "Error: duplicate enumeration",
			data:    "enums:\n  - name: E\n  - name: E\n",
			wantErr: true,
		},
		{
			name:    "Error: unnamed structure",
			data:    "structures:\n  - fields: []\n",
			wantErr: true,
		},
	}

	for _, test := range tests {
		got, err := Parse([]byte(test.data))
		switch {
		case err == nil && test.wantErr:
			t.Errorf("TestParse(%s): got err == nil, want err != nil", test.name)
			continue
		case err != nil && !test.wantErr:
			t.Errorf("TestParse(%s): got err == %s, want err == nil", test.name, err)
			continue
		case err != nil:
			if !errors.Is(err, errors.ErrConfig) {
				t.Errorf("TestParse(%s): got err == %s, want ErrConfig", test.name, err)
			}
			continue
		}

		if diff := pretty.Compare(test.want, got); diff != "" {
			t.Errorf("TestParse(%s): -want/+got:\n%s", test.name, diff)
		}
	}
}

func TestLoadFSAndBuild(t *testing.T) {
	t.Parallel()

	fsys := memfs.New()
	if err := fsys.WriteFile("/protocols/telemetry.yaml", []byte(telemetry), 0600); err != nil {
		panic(err)
	}

	if _, err := LoadFS(context.Background(), fsys, "/protocols/missing.yaml"); err == nil {
		t.Errorf("TestLoadFSAndBuild(missing file): got err == nil, want err != nil")
	}

	p, err := LoadFS(context.Background(), fsys, "/protocols/telemetry.yaml")
	if err != nil {
		t.Fatalf("TestLoadFSAndBuild: LoadFS: got err == %s", err)
	}
	if p.Capabilities.SupportLongBitfield || !p.Capabilities.Support64 {
		t.Errorf("TestLoadFSAndBuild: got capabilities %+v", p.Capabilities)
	}

	proto, err := p.Schema()
	if err != nil {
		t.Fatalf("TestLoadFSAndBuild: Schema: got err == %s", err)
	}
	if proto.Order != schema.LittleEndian {
		t.Errorf("TestLoadFSAndBuild: got order %s, want little endian", proto.Order)
	}

	s, err := p.Build()
	if err != nil {
		t.Fatalf("TestLoadFSAndBuild: Build: got err == %s", err)
	}
	st, ok := s.Structure("Sample")
	if !ok {
		t.Fatalf("TestLoadFSAndBuild: structure Sample is missing")
	}

	// seq 2, mode+flags 1, temp 1, v 8, extra 0..1
	if st.Length.MinBytes != 12 || st.Length.MaxBytes != 13 {
		t.Errorf("TestLoadFSAndBuild: got length %d..%d, want 12..13", st.Length.MinBytes, st.Length.MaxBytes)
	}
	temp, _ := st.Field("temp")
	if temp.Scaling == nil || temp.Scaling.Min != -40 || temp.Scaling.Max != 80 {
		t.Errorf("TestLoadFSAndBuild: got temp scaling %v", temp.Scaling)
	}
	extra, _ := st.Field("extra")
	if extra.Default == nil || *extra.Default != 3 {
		t.Errorf("TestLoadFSAndBuild: extra lost its default")
	}
}
