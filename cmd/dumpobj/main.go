// Command dumpobj lists the sections of a PSY-Q OBJ or LIB file, the way
// psydump.exe listed a linker object or archive.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ttkb-oss/psyx/dump"
	"github.com/ttkb-oss/psyx/objfile"
	"github.com/ttkb-oss/psyx/psylib"
)

func main() {
	code := flag.String("code", "hex", "Code section rendering: none, hex, or disasm")
	recurse := flag.Bool("recurse", false, "for a LIB archive, also list each module's object contents")
	enGB := flag.Bool("en-gb", false, "label BSS sections \"Uninitialised\" instead of \"Uninitialized\"")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: dumpobj requires an input file\n")
		os.Exit(1)
	}

	opts, err := optionsFor(*code, *recurse, *enGB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(flag.Arg(0), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func optionsFor(code string, recurse, enGB bool) (dump.Options, error) {
	opts := dump.Options{Recurse: recurse, BritishSpelling: enGB}
	switch code {
	case "none":
		opts.Code = dump.CodeNone
	case "hex":
		opts.Code = dump.CodeHex
	case "disasm":
		opts.Code = dump.CodeDisassembly
	default:
		return opts, fmt.Errorf("unknown -code value %q (want none, hex, or disasm)", code)
	}
	return opts, nil
}

func run(path string, opts dump.Options) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: no such file", path)
		}
		return err
	}
	defer f.Close()

	a, err := psylib.ReadLIB(f)
	if err == nil {
		return dump.Archive(os.Stdout, a, opts)
	}

	if _, serr := f.Seek(0, os.SEEK_SET); serr != nil {
		return serr
	}
	obj, err := objfile.ReadOBJ(f)
	if err != nil {
		return err
	}
	return dump.Object(os.Stdout, obj, opts)
}
