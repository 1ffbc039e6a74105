package objfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Section tags, per the authoritative section tag table in the
// object-file format specification. Unlisted tags are unrecognized and
// reject the file.
const (
	STagNOP                  byte = 0
	STagCode                 byte = 2
	STagRunAtOffset          byte = 4
	STagSectionSwitch        byte = 6
	STagBSS                  byte = 8
	STagPatch                byte = 10
	STagXDEF                 byte = 12
	STagXREF                 byte = 14
	STagLNKHeader            byte = 16
	STagLocalSymbol          byte = 18
	STagGroupSymbol          byte = 20
	STagFilename             byte = 28
	STagSetMXInfo            byte = 44
	STagCPU                  byte = 46
	STagXBSS                 byte = 48
	STagIncSLDLineNum        byte = 50
	STagIncSLDLineNumByte    byte = 52
	STagSetSLDLineNum        byte = 56
	STagSetSLDLineNumFile    byte = 58
	STagEndSLDInfo           byte = 60
	STagFunctionStart        byte = 74
	STagFunctionEnd          byte = 76
	STagBlockStart           byte = 78
	STagBlockEnd             byte = 80
	STagDef                  byte = 82
	STagDef2                 byte = 84
)

// CPUType identifies the target instruction set of the Code sections that
// follow a CPU section in an OBJ stream.
type CPUType uint8

const (
	CPUMotorola68000 CPUType = 0
	CPUMIPSR3000GTE  CPUType = 7
	CPUHitachiSH2    CPUType = 8
)

var cpuNames = []struct {
	v CPUType
	s string
}{
	{CPUMotorola68000, "Motorola 68000"},
	{CPUMIPSR3000GTE, "MIPS R3000 (GTE)"},
	{CPUHitachiSH2, "Hitachi SH-2"},
}

func (c CPUType) String() string {
	for _, n := range cpuNames {
		if n.v == c {
			return n.s
		}
	}
	return fmt.Sprintf("0x%02x", uint8(c))
}

// Dim is the dimension record embedded in a Def2 section: either absent
// or a single 32-bit bound.
type Dim interface {
	isDim()
	String() string
}

type DimNone struct{}

func (DimNone) isDim()        {}
func (DimNone) String() string { return "0" }

type DimValue struct{ Value uint32 }

func (DimValue) isDim()          {}
func (d DimValue) String() string { return fmt.Sprintf("1 %d", d.Value) }

func readDim(r *countingReader) (Dim, error) {
	var tag uint16
	if err := r.readUint16(&tag); err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return DimNone{}, nil
	case 1:
		var v uint32
		if err := r.readUint32(&v); err != nil {
			return nil, err
		}
		return DimValue{Value: v}, nil
	default:
		return nil, &FormatError{Off: r.off - 2, Msg: "unknown dimension tag", Val: tag}
	}
}

func writeDim(w io.Writer, d Dim) (int64, error) {
	var total int64
	switch v := d.(type) {
	case DimNone:
		n, err := writeUint16(w, 0)
		return int64(n), err
	case DimValue:
		n, err := writeUint16(w, 1)
		total += int64(n)
		if err != nil {
			return total, err
		}
		n2, err := writeUint32(w, v.Value)
		total += int64(n2)
		return total, err
	default:
		return total, fmt.Errorf("objfile: unknown Dim type %T", d)
	}
}

// Section is a tagged record in an OBJ's section stream. It is a closed
// set of concrete types defined in this file; no other package may
// implement it.
type Section interface {
	Tag() byte
	WriteTo(w io.Writer) (int64, error)
	String() string
	sealedSection()
}

func readName(r *countingReader) ([]byte, error) {
	lenByte, err := r.readByte()
	if err != nil {
		return nil, err
	}
	return r.readN(int(lenByte))
}

func writeName(w io.Writer, name []byte) (int64, error) {
	if len(name) > 255 {
		return 0, fmt.Errorf("objfile: name too long: %d bytes", len(name))
	}
	var total int64
	n, err := w.Write([]byte{byte(len(name))})
	total += int64(n)
	if err != nil {
		return total, err
	}
	n2, err := w.Write(name)
	total += int64(n2)
	return total, err
}

func writeByte(w io.Writer, b byte) (int, error) { return w.Write([]byte{b}) }

func writeUint16(w io.Writer, v uint16) (int, error) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return w.Write(buf[:])
}

func writeUint32(w io.Writer, v uint32) (int, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.Write(buf[:])
}

func writeInt32(w io.Writer, v int32) (int, error) { return writeUint32(w, uint32(v)) }

// --- concrete section types -------------------------------------------------

type SecNOP struct{}

func (SecNOP) Tag() byte          { return STagNOP }
func (SecNOP) sealedSection()     {}
func (SecNOP) String() string     { return "0 : End of file" }
func (SecNOP) WriteTo(w io.Writer) (int64, error) {
	n, err := writeByte(w, STagNOP)
	return int64(n), err
}

type SecCode struct{ Code []byte }

func (SecCode) Tag() byte      { return STagCode }
func (SecCode) sealedSection() {}
func (s SecCode) String() string {
	return fmt.Sprintf("2 : Code %d bytes", len(s.Code))
}
func (s SecCode) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := writeByte(w, STagCode)
	total += int64(n)
	if err != nil {
		return total, err
	}
	n2, err := writeUint16(w, uint16(len(s.Code)))
	total += int64(n2)
	if err != nil {
		return total, err
	}
	n3, err := w.Write(s.Code)
	total += int64(n3)
	return total, err
}

type SecRunAtOffset struct{ A, B uint16 }

func (SecRunAtOffset) Tag() byte      { return STagRunAtOffset }
func (SecRunAtOffset) sealedSection() {}
func (s SecRunAtOffset) String() string {
	return fmt.Sprintf("4 : Run at offset %x, %x", s.A, s.B)
}
func (s SecRunAtOffset) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagRunAtOffset)
	total += int64(n)
	n2, _ := writeUint16(w, s.A)
	total += int64(n2)
	n3, err := writeUint16(w, s.B)
	total += int64(n3)
	return total, err
}

type SecSectionSwitch struct{ ID uint16 }

func (SecSectionSwitch) Tag() byte      { return STagSectionSwitch }
func (SecSectionSwitch) sealedSection() {}
func (s SecSectionSwitch) String() string {
	return fmt.Sprintf("6 : Switch to section %x", s.ID)
}
func (s SecSectionSwitch) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagSectionSwitch)
	total += int64(n)
	n2, err := writeUint16(w, s.ID)
	total += int64(n2)
	return total, err
}

type SecBSS struct{ Size uint32 }

func (SecBSS) Tag() byte      { return STagBSS }
func (SecBSS) sealedSection() {}
func (s SecBSS) String() string {
	return fmt.Sprintf("8 : Uninitialized data, %d bytes", s.Size)
}
func (s SecBSS) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagBSS)
	total += int64(n)
	n2, err := writeUint32(w, s.Size)
	total += int64(n2)
	return total, err
}

type SecPatch struct {
	PatchType byte
	Offset    uint16
	Expr      Expression
}

func (SecPatch) Tag() byte      { return STagPatch }
func (SecPatch) sealedSection() {}
func (s SecPatch) String() string {
	return fmt.Sprintf("10 : Patch type %d at offset %x with %s", s.PatchType, s.Offset, s.Expr)
}
func (s SecPatch) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagPatch)
	total += int64(n)
	n2, _ := writeByte(w, s.PatchType)
	total += int64(n2)
	n3, err := writeUint16(w, s.Offset)
	total += int64(n3)
	if err != nil {
		return total, err
	}
	n4, err := s.Expr.WriteTo(w)
	total += n4
	return total, err
}

type SecXDEF struct {
	Number  uint16
	Section uint16
	Offset  uint32
	Name    []byte
}

func (SecXDEF) Tag() byte      { return STagXDEF }
func (SecXDEF) sealedSection() {}
func (s SecXDEF) String() string {
	return fmt.Sprintf("12 : XDEF symbol number %x '%s' at offset %x in section %x", s.Number, s.Name, s.Offset, s.Section)
}
func (s SecXDEF) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagXDEF)
	total += int64(n)
	n2, _ := writeUint16(w, s.Number)
	total += int64(n2)
	n3, _ := writeUint16(w, s.Section)
	total += int64(n3)
	n4, err := writeUint32(w, s.Offset)
	total += int64(n4)
	if err != nil {
		return total, err
	}
	n5, err := writeName(w, s.Name)
	total += n5
	return total, err
}

type SecXREF struct {
	Number uint16
	Name   []byte
}

func (SecXREF) Tag() byte      { return STagXREF }
func (SecXREF) sealedSection() {}
func (s SecXREF) String() string {
	return fmt.Sprintf("14 : XREF symbol number %x '%s'", s.Number, s.Name)
}
func (s SecXREF) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagXREF)
	total += int64(n)
	n2, err := writeUint16(w, s.Number)
	total += int64(n2)
	if err != nil {
		return total, err
	}
	n3, err := writeName(w, s.Name)
	total += n3
	return total, err
}

type SecLNKHeader struct {
	Section  uint16
	Group    uint16
	Align    byte
	TypeName []byte
}

func (SecLNKHeader) Tag() byte      { return STagLNKHeader }
func (SecLNKHeader) sealedSection() {}
func (s SecLNKHeader) String() string {
	return fmt.Sprintf("16 : Section symbol number %x '%s' in group %d alignment %d", s.Section, s.TypeName, s.Group, s.Align)
}
func (s SecLNKHeader) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagLNKHeader)
	total += int64(n)
	n2, _ := writeUint16(w, s.Section)
	total += int64(n2)
	n3, _ := writeUint16(w, s.Group)
	total += int64(n3)
	n4, err := writeByte(w, s.Align)
	total += int64(n4)
	if err != nil {
		return total, err
	}
	n5, err := writeName(w, s.TypeName)
	total += n5
	return total, err
}

type SecLocalSymbol struct {
	Section uint16
	Offset  uint32
	Name    []byte
}

func (SecLocalSymbol) Tag() byte      { return STagLocalSymbol }
func (SecLocalSymbol) sealedSection() {}
func (s SecLocalSymbol) String() string {
	return fmt.Sprintf("18 : Local symbol '%s' at offset %x in section %x", s.Name, s.Offset, s.Section)
}
func (s SecLocalSymbol) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagLocalSymbol)
	total += int64(n)
	n2, _ := writeUint16(w, s.Section)
	total += int64(n2)
	n3, err := writeUint32(w, s.Offset)
	total += int64(n3)
	if err != nil {
		return total, err
	}
	n4, err := writeName(w, s.Name)
	total += n4
	return total, err
}

type SecGroupSymbol struct {
	Number uint16
	Type   byte
	Name   []byte
}

func (SecGroupSymbol) Tag() byte      { return STagGroupSymbol }
func (SecGroupSymbol) sealedSection() {}
func (s SecGroupSymbol) String() string {
	return fmt.Sprintf("20 : Group symbol number %x '%s' type %d", s.Number, s.Name, s.Type)
}
func (s SecGroupSymbol) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagGroupSymbol)
	total += int64(n)
	n2, _ := writeUint16(w, s.Number)
	total += int64(n2)
	n3, err := writeByte(w, s.Type)
	total += int64(n3)
	if err != nil {
		return total, err
	}
	n4, err := writeName(w, s.Name)
	total += n4
	return total, err
}

type SecFilename struct {
	Number uint16
	Name   []byte
}

func (SecFilename) Tag() byte      { return STagFilename }
func (SecFilename) sealedSection() {}
func (s SecFilename) String() string {
	return fmt.Sprintf("28 : Define file number %x as \"%s\"", s.Number, s.Name)
}
func (s SecFilename) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagFilename)
	total += int64(n)
	n2, err := writeUint16(w, s.Number)
	total += int64(n2)
	if err != nil {
		return total, err
	}
	n3, err := writeName(w, s.Name)
	total += n3
	return total, err
}

type SecSetMXInfo struct {
	Offset uint16
	Value  byte
}

func (SecSetMXInfo) Tag() byte      { return STagSetMXInfo }
func (SecSetMXInfo) sealedSection() {}
func (s SecSetMXInfo) String() string {
	return fmt.Sprintf("44 : Set MX info at offset %x to %x", s.Offset, s.Value)
}
func (s SecSetMXInfo) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagSetMXInfo)
	total += int64(n)
	n2, _ := writeUint16(w, s.Offset)
	total += int64(n2)
	n3, err := writeByte(w, s.Value)
	total += int64(n3)
	return total, err
}

type SecCPU struct{ Type CPUType }

func (SecCPU) Tag() byte      { return STagCPU }
func (SecCPU) sealedSection() {}
func (s SecCPU) String() string {
	return fmt.Sprintf("46 : Processor type %s", s.Type)
}
func (s SecCPU) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagCPU)
	total += int64(n)
	n2, err := writeByte(w, byte(s.Type))
	total += int64(n2)
	return total, err
}

type SecXBSS struct {
	Number  uint16
	Section uint16
	Size    uint32
	Name    []byte
}

func (SecXBSS) Tag() byte      { return STagXBSS }
func (SecXBSS) sealedSection() {}
func (s SecXBSS) String() string {
	return fmt.Sprintf("48 : XBSS symbol number %x '%s' size %x in section %x", s.Number, s.Name, s.Size, s.Section)
}
func (s SecXBSS) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagXBSS)
	total += int64(n)
	n2, _ := writeUint16(w, s.Number)
	total += int64(n2)
	n3, _ := writeUint16(w, s.Section)
	total += int64(n3)
	n4, err := writeUint32(w, s.Size)
	total += int64(n4)
	if err != nil {
		return total, err
	}
	n5, err := writeName(w, s.Name)
	total += n5
	return total, err
}

type SecIncSLDLineNum struct{ Offset uint16 }

func (SecIncSLDLineNum) Tag() byte      { return STagIncSLDLineNum }
func (SecIncSLDLineNum) sealedSection() {}
func (s SecIncSLDLineNum) String() string {
	return fmt.Sprintf("50 : Inc SLD linenum at offset %x", s.Offset)
}
func (s SecIncSLDLineNum) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagIncSLDLineNum)
	total += int64(n)
	n2, err := writeUint16(w, s.Offset)
	total += int64(n2)
	return total, err
}

type SecIncSLDLineNumByte struct {
	Offset uint16
	Delta  byte
}

func (SecIncSLDLineNumByte) Tag() byte      { return STagIncSLDLineNumByte }
func (SecIncSLDLineNumByte) sealedSection() {}
func (s SecIncSLDLineNumByte) String() string {
	return fmt.Sprintf("52 : Inc SLD linenum by byte %d at offset %x", s.Delta, s.Offset)
}
func (s SecIncSLDLineNumByte) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagIncSLDLineNumByte)
	total += int64(n)
	n2, _ := writeUint16(w, s.Offset)
	total += int64(n2)
	n3, err := writeByte(w, s.Delta)
	total += int64(n3)
	return total, err
}

type SecSetSLDLineNum struct {
	Offset  uint16
	LineNum uint32
}

func (SecSetSLDLineNum) Tag() byte      { return STagSetSLDLineNum }
func (SecSetSLDLineNum) sealedSection() {}
func (s SecSetSLDLineNum) String() string {
	return fmt.Sprintf("56 : Set SLD linenum to %d at offset %x", s.LineNum, s.Offset)
}
func (s SecSetSLDLineNum) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagSetSLDLineNum)
	total += int64(n)
	n2, _ := writeUint16(w, s.Offset)
	total += int64(n2)
	n3, err := writeUint32(w, s.LineNum)
	total += int64(n3)
	return total, err
}

type SecSetSLDLineNumFile struct {
	Offset  uint16
	LineNum uint32
	File    uint16
}

func (SecSetSLDLineNumFile) Tag() byte      { return STagSetSLDLineNumFile }
func (SecSetSLDLineNumFile) sealedSection() {}
func (s SecSetSLDLineNumFile) String() string {
	return fmt.Sprintf("58 : Set SLD linenum to %d at offset %x in file %x", s.LineNum, s.Offset, s.File)
}
func (s SecSetSLDLineNumFile) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagSetSLDLineNumFile)
	total += int64(n)
	n2, _ := writeUint16(w, s.Offset)
	total += int64(n2)
	n3, _ := writeUint32(w, s.LineNum)
	total += int64(n3)
	n4, err := writeUint16(w, s.File)
	total += int64(n4)
	return total, err
}

type SecEndSLDInfo struct{ Offset uint16 }

func (SecEndSLDInfo) Tag() byte      { return STagEndSLDInfo }
func (SecEndSLDInfo) sealedSection() {}
func (s SecEndSLDInfo) String() string {
	return fmt.Sprintf("60 : End SLD info at offset %x", s.Offset)
}
func (s SecEndSLDInfo) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagEndSLDInfo)
	total += int64(n)
	n2, err := writeUint16(w, s.Offset)
	total += int64(n2)
	return total, err
}

type SecFunctionStart struct {
	Section     uint16
	Offset      uint32
	File        uint16
	Line        uint32
	FrameReg    uint16
	FrameSize   uint32
	ReturnPCReg uint16
	Mask        uint32
	MaskOffset  int32
	Name        []byte
}

func (SecFunctionStart) Tag() byte      { return STagFunctionStart }
func (SecFunctionStart) sealedSection() {}
func (s SecFunctionStart) String() string {
	return fmt.Sprintf("74 : Function start :\n"+
		"  section %04x\n"+
		"  offset $%08x\n"+
		"  file %04x\n"+
		"  start line %d\n"+
		"  frame reg %d\n"+
		"  frame size %d\n"+
		"  return pc reg %d\n"+
		"  mask $%08x\n"+
		"  mask offset %d\n"+
		"  name %s",
		s.Section, s.Offset, s.File, s.Line, s.FrameReg, s.FrameSize,
		s.ReturnPCReg, s.Mask, s.MaskOffset, s.Name)
}
func (s SecFunctionStart) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagFunctionStart)
	total += int64(n)
	n2, _ := writeUint16(w, s.Section)
	total += int64(n2)
	n3, _ := writeUint32(w, s.Offset)
	total += int64(n3)
	n4, _ := writeUint16(w, s.File)
	total += int64(n4)
	n5, _ := writeUint32(w, s.Line)
	total += int64(n5)
	n6, _ := writeUint16(w, s.FrameReg)
	total += int64(n6)
	n7, _ := writeUint32(w, s.FrameSize)
	total += int64(n7)
	n8, _ := writeUint16(w, s.ReturnPCReg)
	total += int64(n8)
	n9, _ := writeUint32(w, s.Mask)
	total += int64(n9)
	n10, _ := writeInt32(w, s.MaskOffset)
	total += int64(n10)
	n11, err := writeName(w, s.Name)
	total += n11
	return total, err
}

type SecFunctionEnd struct {
	Section uint16
	Offset  uint32
	Line    uint32
}

func (SecFunctionEnd) Tag() byte      { return STagFunctionEnd }
func (SecFunctionEnd) sealedSection() {}
func (s SecFunctionEnd) String() string {
	return fmt.Sprintf("76 : Function end :\n  section %04x\n  offset $%08x\n  end line %d", s.Section, s.Offset, s.Line)
}
func (s SecFunctionEnd) WriteTo(w io.Writer) (int64, error) {
	return writeThreeFieldRecord(w, STagFunctionEnd, s.Section, s.Offset, s.Line)
}

type SecBlockStart struct {
	Section uint16
	Offset  uint32
	Line    uint32
}

func (SecBlockStart) Tag() byte      { return STagBlockStart }
func (SecBlockStart) sealedSection() {}
func (s SecBlockStart) String() string {
	return fmt.Sprintf("78 : Block start : section %04x\n  offset $%08x\n  start line %d", s.Section, s.Offset, s.Line)
}
func (s SecBlockStart) WriteTo(w io.Writer) (int64, error) {
	return writeThreeFieldRecord(w, STagBlockStart, s.Section, s.Offset, s.Line)
}

type SecBlockEnd struct {
	Section uint16
	Offset  uint32
	Line    uint32
}

func (SecBlockEnd) Tag() byte      { return STagBlockEnd }
func (SecBlockEnd) sealedSection() {}
func (s SecBlockEnd) String() string {
	return fmt.Sprintf("80 : Block end\n  section %04x\n  offset $%08x\n  end line %d", s.Section, s.Offset, s.Line)
}
func (s SecBlockEnd) WriteTo(w io.Writer) (int64, error) {
	return writeThreeFieldRecord(w, STagBlockEnd, s.Section, s.Offset, s.Line)
}

func writeThreeFieldRecord(w io.Writer, tag byte, section uint16, offset, line uint32) (int64, error) {
	var total int64
	n, _ := writeByte(w, tag)
	total += int64(n)
	n2, _ := writeUint16(w, section)
	total += int64(n2)
	n3, _ := writeUint32(w, offset)
	total += int64(n3)
	n4, err := writeUint32(w, line)
	total += int64(n4)
	return total, err
}

type SecDef struct {
	Section uint16
	Value   uint32
	Class   uint16
	Type    uint16
	Size    uint32
	Name    []byte
}

func (SecDef) Tag() byte      { return STagDef }
func (SecDef) sealedSection() {}
func (s SecDef) String() string {
	return fmt.Sprintf("82 : Def :\n  section %04x\n  value $%08x\n  class %d\n  type %d\n  size %d\n  name : %s",
		s.Section, s.Value, s.Class, s.Type, s.Size, s.Name)
}
func (s SecDef) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagDef)
	total += int64(n)
	n2, _ := writeUint16(w, s.Section)
	total += int64(n2)
	n3, _ := writeUint32(w, s.Value)
	total += int64(n3)
	n4, _ := writeUint16(w, s.Class)
	total += int64(n4)
	n5, _ := writeUint16(w, s.Type)
	total += int64(n5)
	n6, err := writeUint32(w, s.Size)
	total += int64(n6)
	if err != nil {
		return total, err
	}
	n7, err := writeName(w, s.Name)
	total += n7
	return total, err
}

type SecDef2 struct {
	Section uint16
	Value   uint32
	Class   uint16
	Type    uint16
	Size    uint32
	Dims    Dim
	TagName []byte
	Name    []byte
}

func (SecDef2) Tag() byte      { return STagDef2 }
func (SecDef2) sealedSection() {}
func (s SecDef2) String() string {
	return fmt.Sprintf("84 : Def2 :\n  section %04x\n  value $%08x\n  class %d\n  type %d\n  size %d\n  dims %s\n  tag %s\n%s",
		s.Section, s.Value, s.Class, s.Type, s.Size, s.Dims, s.TagName, s.Name)
}
func (s SecDef2) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, _ := writeByte(w, STagDef2)
	total += int64(n)
	n2, _ := writeUint16(w, s.Section)
	total += int64(n2)
	n3, _ := writeUint32(w, s.Value)
	total += int64(n3)
	n4, _ := writeUint16(w, s.Class)
	total += int64(n4)
	n5, _ := writeUint16(w, s.Type)
	total += int64(n5)
	n6, err := writeUint32(w, s.Size)
	total += int64(n6)
	if err != nil {
		return total, err
	}
	n7, err := writeDim(w, s.Dims)
	total += n7
	if err != nil {
		return total, err
	}
	n8, err := writeName(w, s.TagName)
	total += n8
	if err != nil {
		return total, err
	}
	n9, err := writeName(w, s.Name)
	total += n9
	return total, err
}

// ReadSection reads one tag-dispatched section record from r.
func ReadSection(r *countingReader) (Section, error) {
	tagOff := r.off
	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}

	switch tag {
	case STagNOP:
		return SecNOP{}, nil

	case STagCode:
		var length uint16
		if err := r.readUint16(&length); err != nil {
			return nil, err
		}
		code, err := r.readN(int(length))
		if err != nil {
			return nil, err
		}
		return SecCode{Code: code}, nil

	case STagRunAtOffset:
		var a, b uint16
		if err := r.readUint16(&a); err != nil {
			return nil, err
		}
		if err := r.readUint16(&b); err != nil {
			return nil, err
		}
		return SecRunAtOffset{A: a, B: b}, nil

	case STagSectionSwitch:
		var id uint16
		if err := r.readUint16(&id); err != nil {
			return nil, err
		}
		return SecSectionSwitch{ID: id}, nil

	case STagBSS:
		var size uint32
		if err := r.readUint32(&size); err != nil {
			return nil, err
		}
		return SecBSS{Size: size}, nil

	case STagPatch:
		patchType, err := r.readByte()
		if err != nil {
			return nil, err
		}
		var offset uint16
		if err := r.readUint16(&offset); err != nil {
			return nil, err
		}
		expr, err := readExpression(r, 0)
		if err != nil {
			return nil, err
		}
		return SecPatch{PatchType: patchType, Offset: offset, Expr: expr}, nil

	case STagXDEF:
		var number, section uint16
		var offset uint32
		if err := r.readUint16(&number); err != nil {
			return nil, err
		}
		if err := r.readUint16(&section); err != nil {
			return nil, err
		}
		if err := r.readUint32(&offset); err != nil {
			return nil, err
		}
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		return SecXDEF{Number: number, Section: section, Offset: offset, Name: name}, nil

	case STagXREF:
		var number uint16
		if err := r.readUint16(&number); err != nil {
			return nil, err
		}
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		return SecXREF{Number: number, Name: name}, nil

	case STagLNKHeader:
		var section, group uint16
		if err := r.readUint16(&section); err != nil {
			return nil, err
		}
		if err := r.readUint16(&group); err != nil {
			return nil, err
		}
		align, err := r.readByte()
		if err != nil {
			return nil, err
		}
		typeName, err := readName(r)
		if err != nil {
			return nil, err
		}
		return SecLNKHeader{Section: section, Group: group, Align: align, TypeName: typeName}, nil

	case STagLocalSymbol:
		var section uint16
		var offset uint32
		if err := r.readUint16(&section); err != nil {
			return nil, err
		}
		if err := r.readUint32(&offset); err != nil {
			return nil, err
		}
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		return SecLocalSymbol{Section: section, Offset: offset, Name: name}, nil

	case STagGroupSymbol:
		var number uint16
		if err := r.readUint16(&number); err != nil {
			return nil, err
		}
		symType, err := r.readByte()
		if err != nil {
			return nil, err
		}
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		return SecGroupSymbol{Number: number, Type: symType, Name: name}, nil

	case STagFilename:
		var number uint16
		if err := r.readUint16(&number); err != nil {
			return nil, err
		}
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		return SecFilename{Number: number, Name: name}, nil

	case STagSetMXInfo:
		var offset uint16
		if err := r.readUint16(&offset); err != nil {
			return nil, err
		}
		value, err := r.readByte()
		if err != nil {
			return nil, err
		}
		return SecSetMXInfo{Offset: offset, Value: value}, nil

	case STagCPU:
		cpu, err := r.readByte()
		if err != nil {
			return nil, err
		}
		return SecCPU{Type: CPUType(cpu)}, nil

	case STagXBSS:
		var number, section uint16
		var size uint32
		if err := r.readUint16(&number); err != nil {
			return nil, err
		}
		if err := r.readUint16(&section); err != nil {
			return nil, err
		}
		if err := r.readUint32(&size); err != nil {
			return nil, err
		}
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		return SecXBSS{Number: number, Section: section, Size: size, Name: name}, nil

	case STagIncSLDLineNum:
		var offset uint16
		if err := r.readUint16(&offset); err != nil {
			return nil, err
		}
		return SecIncSLDLineNum{Offset: offset}, nil

	case STagIncSLDLineNumByte:
		var offset uint16
		if err := r.readUint16(&offset); err != nil {
			return nil, err
		}
		delta, err := r.readByte()
		if err != nil {
			return nil, err
		}
		return SecIncSLDLineNumByte{Offset: offset, Delta: delta}, nil

	case STagSetSLDLineNum:
		var offset uint16
		var linenum uint32
		if err := r.readUint16(&offset); err != nil {
			return nil, err
		}
		if err := r.readUint32(&linenum); err != nil {
			return nil, err
		}
		return SecSetSLDLineNum{Offset: offset, LineNum: linenum}, nil

	case STagSetSLDLineNumFile:
		var offset uint16
		var linenum uint32
		var file uint16
		if err := r.readUint16(&offset); err != nil {
			return nil, err
		}
		if err := r.readUint32(&linenum); err != nil {
			return nil, err
		}
		if err := r.readUint16(&file); err != nil {
			return nil, err
		}
		return SecSetSLDLineNumFile{Offset: offset, LineNum: linenum, File: file}, nil

	case STagEndSLDInfo:
		var offset uint16
		if err := r.readUint16(&offset); err != nil {
			return nil, err
		}
		return SecEndSLDInfo{Offset: offset}, nil

	case STagFunctionStart:
		var s SecFunctionStart
		if err := r.readUint16(&s.Section); err != nil {
			return nil, err
		}
		if err := r.readUint32(&s.Offset); err != nil {
			return nil, err
		}
		if err := r.readUint16(&s.File); err != nil {
			return nil, err
		}
		if err := r.readUint32(&s.Line); err != nil {
			return nil, err
		}
		if err := r.readUint16(&s.FrameReg); err != nil {
			return nil, err
		}
		if err := r.readUint32(&s.FrameSize); err != nil {
			return nil, err
		}
		if err := r.readUint16(&s.ReturnPCReg); err != nil {
			return nil, err
		}
		if err := r.readUint32(&s.Mask); err != nil {
			return nil, err
		}
		if err := r.readInt32(&s.MaskOffset); err != nil {
			return nil, err
		}
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		s.Name = name
		return s, nil

	case STagFunctionEnd:
		s, err := readThreeFieldRecord(r)
		if err != nil {
			return nil, err
		}
		return SecFunctionEnd(s), nil

	case STagBlockStart:
		s, err := readThreeFieldRecord(r)
		if err != nil {
			return nil, err
		}
		return SecBlockStart(s), nil

	case STagBlockEnd:
		s, err := readThreeFieldRecord(r)
		if err != nil {
			return nil, err
		}
		return SecBlockEnd(s), nil

	case STagDef:
		var s SecDef
		if err := r.readUint16(&s.Section); err != nil {
			return nil, err
		}
		if err := r.readUint32(&s.Value); err != nil {
			return nil, err
		}
		if err := r.readUint16(&s.Class); err != nil {
			return nil, err
		}
		if err := r.readUint16(&s.Type); err != nil {
			return nil, err
		}
		if err := r.readUint32(&s.Size); err != nil {
			return nil, err
		}
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		s.Name = name
		return s, nil

	case STagDef2:
		var s SecDef2
		if err := r.readUint16(&s.Section); err != nil {
			return nil, err
		}
		if err := r.readUint32(&s.Value); err != nil {
			return nil, err
		}
		if err := r.readUint16(&s.Class); err != nil {
			return nil, err
		}
		if err := r.readUint16(&s.Type); err != nil {
			return nil, err
		}
		if err := r.readUint32(&s.Size); err != nil {
			return nil, err
		}
		dim, err := readDim(r)
		if err != nil {
			return nil, err
		}
		s.Dims = dim
		tagName, err := readName(r)
		if err != nil {
			return nil, err
		}
		s.TagName = tagName
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		s.Name = name
		return s, nil

	default:
		return nil, &ErrUnknownTag{Kind: "section", Tag: tag, Off: tagOff}
	}
}

type threeFieldRecord struct {
	Section uint16
	Offset  uint32
	Line    uint32
}

func readThreeFieldRecord(r *countingReader) (threeFieldRecord, error) {
	var s threeFieldRecord
	if err := r.readUint16(&s.Section); err != nil {
		return s, err
	}
	if err := r.readUint32(&s.Offset); err != nil {
		return s, err
	}
	if err := r.readUint32(&s.Line); err != nil {
		return s, err
	}
	return s, nil
}
