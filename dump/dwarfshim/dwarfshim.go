// Package dwarfshim adapts github.com/blacktop/go-dwarf's type-name
// rendering to PSY-Q's Def/Def2 debug records. PSY-Q's SLD symbol table
// is not DWARF -- there is no abbrev/info section to decode -- but its
// per-symbol type codes describe the same small set of C base types
// DWARF's BasicType already knows how to print, so a Def record's type
// field is rendered by building the matching *dwarf.BasicType and
// calling its String method instead of hand-rolling a second name table.
package dwarfshim

import "github.com/blacktop/go-dwarf"

// PSY-Q class/type nibble layout, psylink's own encoding of the C base
// types a Def2 record's Type field can name. The low byte is the base
// type; pointer/array derivation bits live above it but are not handled
// by this shim (nothing in the pack formats them, so a bare suffix is
// appended instead of modeling dwarf.PtrType/ArrayType).
const (
	TypeVoid   = 0
	TypeChar   = 2
	TypeShort  = 3
	TypeInt    = 4
	TypeLong   = 5
	TypeUChar  = 8
	TypeUShort = 9
	TypeUInt   = 10
	TypeULong  = 11
	TypeFloat  = 12
	TypeDouble = 13
)

var baseTypes = map[uint16]*dwarf.BasicType{
	TypeVoid:   {CommonType: dwarf.CommonType{Name: "void"}},
	TypeChar:   {CommonType: dwarf.CommonType{Name: "char", ByteSize: 1}},
	TypeShort:  {CommonType: dwarf.CommonType{Name: "short", ByteSize: 2}},
	TypeInt:    {CommonType: dwarf.CommonType{Name: "int", ByteSize: 4}},
	TypeLong:   {CommonType: dwarf.CommonType{Name: "long", ByteSize: 4}},
	TypeUChar:  {CommonType: dwarf.CommonType{Name: "unsigned char", ByteSize: 1}},
	TypeUShort: {CommonType: dwarf.CommonType{Name: "unsigned short", ByteSize: 2}},
	TypeUInt:   {CommonType: dwarf.CommonType{Name: "unsigned int", ByteSize: 4}},
	TypeULong:  {CommonType: dwarf.CommonType{Name: "unsigned long", ByteSize: 4}},
	TypeFloat:  {CommonType: dwarf.CommonType{Name: "float", ByteSize: 4}},
	TypeDouble: {CommonType: dwarf.CommonType{Name: "double", ByteSize: 8}},
}

// pointerBit marks a Def2 type code as "pointer to" the base type in
// the low byte, mirroring psylink's own bit, not a DWARF convention.
const pointerBit = 0x0400

// TypeName renders a Def/Def2 type code the way psylink's own -s dump
// would: the C base type name, with a trailing "*" if the pointer bit
// is set. Unknown base type codes fall back to the fixed placeholder
// "<unknown type>" rather than guessing.
func TypeName(code uint16) string {
	base := code &^ pointerBit
	t, ok := baseTypes[base]
	name := "<unknown type>"
	if ok {
		name = t.String()
	}
	if code&pointerBit != 0 {
		return name + " *"
	}
	return name
}
