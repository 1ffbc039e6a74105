package dump

import (
	"errors"
	"fmt"

	"github.com/ttkb-oss/psyx/objfile"
)

// ErrNoDisassembler is returned by NopDisassembler so a caller that asks
// for CodeDisassembly without wiring in a real decoder fails loudly
// instead of silently printing nothing.
var ErrNoDisassembler = errors.New("dump: no disassembler configured")

// Disassembler decodes a Code section's raw instruction bytes into
// listing lines. addr is the load address of the code, used to label
// each decoded instruction; cpu names the target instruction set most
// recently declared by a CPU section.
type Disassembler interface {
	Disassemble(cpu objfile.CPUType, code []byte, addr uint64) (string, error)
}

// NopDisassembler ships with this package as the default: it has no CPU
// backend of its own -- MIPS/SH-2/68000 decoding is a caller concern, the
// way the teacher leaves Swift-demangling backends pluggable rather than
// bundling every possible one.
type NopDisassembler struct{}

func (NopDisassembler) Disassemble(cpu objfile.CPUType, code []byte, addr uint64) (string, error) {
	return "", fmt.Errorf("%w (target %s, %d bytes at %#x)", ErrNoDisassembler, cpu, len(code), addr)
}
