// Package dump renders parsed PSY-Q OBJ files and LIB archives as the
// text listings psydump.exe produced, the way cmds.go's String methods
// render Mach-O load commands for otool-style output.
package dump

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ttkb-oss/psyx/objfile"
	"github.com/ttkb-oss/psyx/psylib"
)

// Object writes a listing of every section in obj to w, in file order.
func Object(w io.Writer, obj *objfile.OBJ, opts Options) error {
	fmt.Fprintf(w, "Version %d\n", obj.Version)
	cpu, haveCPU := obj.CPU()

	for i, sec := range obj.Sections {
		if code, ok := sec.(objfile.SecCode); ok {
			switch opts.Code {
			case CodeNone:
				fmt.Fprintf(w, "%3d: 2 : Code %d bytes\n", i, len(code.Code))
			case CodeDisassembly:
				fmt.Fprintf(w, "%3d: 2 : Code %d bytes\n", i, len(code.Code))
				line, err := opts.disassembler().Disassemble(cpu, code.Code, 0)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, line)
			default: // CodeHex
				fmt.Fprintf(w, "%3d: %s\n", i, sec)
				fmt.Fprint(w, hex.Dump(code.Code))
			}
			continue
		}
		if bss, ok := sec.(objfile.SecBSS); ok {
			fmt.Fprintf(w, "%3d: 8 : %s, %d bytes\n", i, opts.uninitializedLabel(), bss.Size)
			continue
		}
		fmt.Fprintf(w, "%3d: %s\n", i, sec)
	}
	if haveCPU {
		fmt.Fprintf(w, "\nTarget: %s\n", cpu)
	}
	if exports := obj.Exports(); len(exports) > 0 {
		fmt.Fprintf(w, "\nExports:\n")
		for _, name := range exports {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	return nil
}

// Archive writes a listing of every module in a to w: its librarian
// header line, and -- when opts.Recurse is set -- the full object-file
// listing for each module's contents.
func Archive(w io.Writer, a *psylib.Archive, opts Options) error {
	fmt.Fprintf(w, "LIB version %d, %d modules\n", a.Version, len(a.Modules))
	for i, m := range a.Modules {
		fmt.Fprintf(w, "%3d: %-8s %s  %d bytes\n", i, m.Metadata.Name, m.Metadata.Timestamp, m.Metadata.Size)
		if !opts.Recurse {
			continue
		}
		obj, err := m.OBJ()
		if err != nil {
			fmt.Fprintf(w, "  (not a valid object file: %v)\n", err)
			continue
		}
		if err := Object(w, obj, opts); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}
