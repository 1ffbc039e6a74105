package psylib

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/ttkb-oss/psyx/psyqtime"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	ar, err := txtar.ParseFile("testdata/fixtures.txtar")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	for _, f := range ar.Files {
		if f.Name != name {
			continue
		}
		clean := strings.Join(strings.Fields(string(f.Data)), "")
		b, err := hex.DecodeString(clean)
		if err != nil {
			t.Fatalf("decode fixture %s: %v", name, err)
		}
		return b
	}
	t.Fatalf("no fixture named %s", name)
	return nil
}

func TestReadLIBSingleModuleRoundTrip(t *testing.T) {
	data := loadFixture(t, "single.lib.hex")

	a, err := ReadLIB(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadLIB: %v", err)
	}
	if len(a.Modules) != 1 {
		t.Fatalf("got %d modules, want 1", len(a.Modules))
	}
	m := a.Modules[0]
	if m.Metadata.Name != "CRT0    " {
		t.Fatalf("name = %q, want %q", m.Metadata.Name, "CRT0    ")
	}
	if m.Metadata.Size-m.Metadata.Offset != uint32(len(m.Data)) {
		t.Fatalf("size-offset %d does not match data length %d", m.Metadata.Size-m.Metadata.Offset, len(m.Data))
	}
	if len(m.Metadata.Exports) != 1 || len(m.Metadata.Exports[0].Name) != 0 {
		t.Fatalf("exports = %+v, want a single terminator entry", m.Metadata.Exports)
	}
	want := [6]int{1996, 5, 15, 16, 9, 38}
	got := [6]int{m.Metadata.Timestamp.Year, m.Metadata.Timestamp.Month, m.Metadata.Timestamp.Day,
		m.Metadata.Timestamp.Hour, m.Metadata.Timestamp.Minute, m.Metadata.Timestamp.Second}
	if got != want {
		t.Fatalf("timestamp = %+v, want %+v", got, want)
	}

	var buf bytes.Buffer
	if _, err := a.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Fatalf("round trip mismatch:\n got  %x\n want %x", buf.Bytes(), data)
	}
}

func TestArchiveExports(t *testing.T) {
	data := loadFixture(t, "exports.lib.hex")

	a, err := ReadLIB(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadLIB: %v", err)
	}
	exports := a.Exports()
	if len(exports) != 1 {
		t.Fatalf("got %d exports, want 1", len(exports))
	}
	if exports[0].Module != "MAIN    " || exports[0].Name != "ENTRY" {
		t.Fatalf("got %+v, want Module=%q Name=ENTRY", exports[0], "MAIN    ")
	}

	want := []Export{{Module: "MAIN    ", Name: "ENTRY"}}
	if diff := cmp.Diff(want, exports); diff != "" {
		t.Fatalf("Exports mismatch (-want +got):\n%s", diff)
	}
}

func TestReadLIBBadMagic(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x01}
	if _, err := ReadLIB(bytes.NewReader(data)); err != ErrMagicMismatch {
		t.Fatalf("got err %v, want ErrMagicMismatch", err)
	}
}

func TestReadLIBTruncatedModule(t *testing.T) {
	data := loadFixture(t, "single.lib.hex")
	truncated := data[:len(data)-10]
	if _, err := ReadLIB(bytes.NewReader(truncated)); err != ErrTruncated {
		t.Fatalf("got err %v, want ErrTruncated", err)
	}
}

func TestNewModuleFromPath(t *testing.T) {
	m := NewModuleFromPath("src/crt0.obj", []byte{1, 2, 3}, psyqtime.Timestamp{Year: 1980, Month: 1, Day: 1})
	if m.Metadata.Name != "CRT0    " {
		t.Fatalf("name = %q, want %q", m.Metadata.Name, "CRT0    ")
	}
	if m.Metadata.Offset != 21 {
		t.Fatalf("offset = %d, want 21 (20 + single terminator entry)", m.Metadata.Offset)
	}
	if m.Metadata.Size != 24 {
		t.Fatalf("size = %d, want 24 (offset 21 + 3 data bytes)", m.Metadata.Size)
	}
}

func TestNewModuleFromPathWithExports(t *testing.T) {
	data := loadFixture(t, "exports.lib.hex")
	a, err := ReadLIB(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadLIB: %v", err)
	}
	obj := a.Modules[0].Data

	m := NewModuleFromPath("src/main.obj", obj, psyqtime.Timestamp{Year: 1996, Month: 5, Day: 15, Hour: 16, Minute: 9, Second: 38})
	if len(m.Metadata.Exports) != 2 {
		t.Fatalf("got %d export entries, want 2 (ENTRY + terminator)", len(m.Metadata.Exports))
	}
	if string(m.Metadata.Exports[0].Name) != "ENTRY" {
		t.Fatalf("export[0] = %q, want ENTRY", m.Metadata.Exports[0].Name)
	}
	if !m.Metadata.Exports[1].terminator() {
		t.Fatalf("export[1] is not a terminator: %+v", m.Metadata.Exports[1])
	}
	if m.Metadata.Offset != a.Modules[0].Metadata.Offset {
		t.Fatalf("offset = %d, want %d (matches the fixture it was derived from)", m.Metadata.Offset, a.Modules[0].Metadata.Offset)
	}
	if m.Metadata.Size != a.Modules[0].Metadata.Size {
		t.Fatalf("size = %d, want %d", m.Metadata.Size, a.Modules[0].Metadata.Size)
	}
}
