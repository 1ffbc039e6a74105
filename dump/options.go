package dump

// CodeFormat selects how a Code section's instruction bytes are
// rendered.
type CodeFormat int

const (
	// CodeNone omits Code section bodies entirely, printing only the tag
	// line and byte count.
	CodeNone CodeFormat = iota
	// CodeHex renders raw instruction bytes as a hex dump. It needs no
	// target-specific decoder, and cmd/dumpobj selects it by default.
	CodeHex
	// CodeDisassembly renders instruction bytes through the configured
	// Disassembler.
	CodeDisassembly
)

// Options controls how Archive and Object render their output. The zero
// value is a usable default: Code section bodies omitted, archive
// modules listed by header line only, American spelling.
type Options struct {
	Code CodeFormat

	// Recurse formats an archive module's OBJ contents in full instead
	// of just its librarian header line.
	Recurse bool

	// Disassembler decodes Code section bytes when Code is
	// CodeDisassembly. If nil, NopDisassembler is used, which fails with
	// ErrNoDisassembler rather than silently printing nothing.
	Disassembler Disassembler

	// BritishSpelling selects "Uninitialised" over "Uninitialized" in
	// BSS section labels, mirroring the psydump.exe behavior that
	// read LC_ALL/LANG at startup. This package never inspects the
	// environment itself -- the caller decides, the way any other
	// option field here is decided by the caller.
	BritishSpelling bool
}

func (o Options) uninitializedLabel() string {
	if o.BritishSpelling {
		return "Uninitialised data"
	}
	return "Uninitialized data"
}

func (o Options) disassembler() Disassembler {
	if o.Disassembler != nil {
		return o.Disassembler
	}
	return NopDisassembler{}
}
