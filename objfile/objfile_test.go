package objfile

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
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

func TestReadOBJEmpty(t *testing.T) {
	data := loadFixture(t, "empty.obj.hex")

	obj, err := ReadOBJ(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(obj.Sections) != 1 {
		t.Fatalf("got %d sections, want 1 (just NOP)", len(obj.Sections))
	}
	if obj.Sections[0].Tag() != STagNOP {
		t.Fatalf("got tag %#x, want NOP", obj.Sections[0].Tag())
	}
}

func TestReadOBJSimpleRoundTrip(t *testing.T) {
	data := loadFixture(t, "simple.obj.hex")

	obj, err := ReadOBJ(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}

	if len(obj.Sections) != 3 {
		t.Fatalf("got %d sections, want 3 (CODE, XDEF, NOP)", len(obj.Sections))
	}
	code, ok := obj.Sections[0].(SecCode)
	if !ok {
		t.Fatalf("section 0 is %T, want SecCode", obj.Sections[0])
	}
	if !bytes.Equal(code.Code, []byte{0x00, 0x01, 0x02, 0x03}) {
		t.Fatalf("code = %x, want 00010203", code.Code)
	}
	xdef, ok := obj.Sections[1].(SecXDEF)
	if !ok {
		t.Fatalf("section 1 is %T, want SecXDEF", obj.Sections[1])
	}
	if string(xdef.Name) != "MAIN" {
		t.Fatalf("xdef name = %q, want MAIN", xdef.Name)
	}

	want := []Section{
		SecCode{Code: []byte{0x00, 0x01, 0x02, 0x03}},
		SecXDEF{Number: 1, Section: 1, Offset: 0, Name: []byte("MAIN")},
		SecNOP{},
	}
	if diff := cmp.Diff(want, obj.Sections); diff != "" {
		t.Fatalf("Sections mismatch (-want +got):\n%s", diff)
	}

	exports := obj.Exports()
	if len(exports) != 1 || exports[0] != "MAIN" {
		t.Fatalf("Exports() = %v, want [MAIN]", exports)
	}

	var buf bytes.Buffer
	if _, err := obj.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Fatalf("round trip mismatch:\n got  %x\n want %x", buf.Bytes(), data)
	}
}

// TestObjTruncatesOnEarlyEOF mirrors the real-world CDSFILE.OBJ case: a
// stream that ends mid-section, before its final XDEF is fully formed.
// ReadOBJ has no notion of "expected length" — it reads sections until it
// can't, so the dangling XDEF is silently dropped rather than rejected.
func TestObjTruncatesOnEarlyEOF(t *testing.T) {
	data := loadFixture(t, "truncated.obj.hex")

	obj, err := ReadOBJ(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(obj.Sections) != 1 {
		t.Fatalf("got %d sections, want 1 (only the CODE section survives)", len(obj.Sections))
	}
	if _, ok := obj.Sections[0].(SecCode); !ok {
		t.Fatalf("section 0 is %T, want SecCode", obj.Sections[0])
	}
	if exports := obj.Exports(); len(exports) != 0 {
		t.Fatalf("Exports() = %v, want none (truncated XDEF dropped)", exports)
	}
}

func TestReadOBJBadMagic(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x02, 0x00}
	if _, err := ReadOBJ(bytes.NewReader(data)); err == nil {
		t.Fatal("ReadOBJ with bad magic: got nil error")
	}
}

func TestReadOBJBadVersion(t *testing.T) {
	data := []byte{0x4c, 0x4e, 0x4b, 0x09, 0x00}
	if _, err := ReadOBJ(bytes.NewReader(data)); err == nil {
		t.Fatal("ReadOBJ with bad version: got nil error")
	}
}

func TestExpressionRoundTrip(t *testing.T) {
	// (SymbolIndex[3] + $10)
	expr := ExprAdd{branch{
		tag: TagAdd,
		op:  "+",
		L:   ExprSymbolIndex{leaf16{tag: TagSymbolIndex, index: 3}},
		R:   ExprConstant{Value: 0x10},
	}}

	var buf bytes.Buffer
	if _, err := expr.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadExpression(newCountingReader(bytes.NewReader(buf.Bytes())))
	if err != nil {
		t.Fatalf("ReadExpression: %v", err)
	}
	if got.String() != expr.String() {
		t.Fatalf("got %s, want %s", got, expr)
	}

	var buf2 bytes.Buffer
	if _, err := got.WriteTo(&buf2); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), buf2.Bytes()) {
		t.Fatalf("re-encoded bytes differ: %x vs %x", buf.Bytes(), buf2.Bytes())
	}
}

func TestExpressionTooDeep(t *testing.T) {
	var buf bytes.Buffer
	// maxExprDepth+2 nested Add tags, each missing its operands: the depth
	// check must fire before the reader runs out of bytes.
	for i := 0; i < maxExprDepth+2; i++ {
		buf.WriteByte(TagAdd)
	}
	_, err := ReadExpression(newCountingReader(bytes.NewReader(buf.Bytes())))
	if err != ErrExprTooDeep {
		t.Fatalf("got err %v, want ErrExprTooDeep", err)
	}
}

func TestUnknownSectionTag(t *testing.T) {
	data := []byte{0x01} // tag 1 is not assigned to any section
	_, err := ReadSection(newCountingReader(bytes.NewReader(data)))
	if err == nil {
		t.Fatal("ReadSection with unknown tag: got nil error")
	}
	var unk *ErrUnknownTag
	if !asErrUnknownTag(err, &unk) {
		t.Fatalf("got err %v (%T), want *ErrUnknownTag", err, err)
	}
	if unk.Kind != "section" || unk.Tag != 1 {
		t.Fatalf("got %+v, want Kind=section Tag=1", unk)
	}
}

func asErrUnknownTag(err error, target **ErrUnknownTag) bool {
	e, ok := err.(*ErrUnknownTag)
	if !ok {
		return false
	}
	*target = e
	return true
}
