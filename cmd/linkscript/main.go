// Command linkscript parses a PSY-Q linker command file, either dumping
// its parsed command list or re-printing it with normalized whitespace
// and expression grouping -- a lint/format pass over the same command
// set psylink.exe reads.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ttkb-oss/psyx/linkscript"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "parse":
		err = runParse(os.Args[2:])
	case "fmt":
		err = runFmt(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: linkscript parse|fmt FILE.LNK\n")
}

func openScript(args []string) (*os.File, error) {
	fs := flag.NewFlagSet("linkscript", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("requires a .LNK file")
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: no such file", fs.Arg(0))
		}
		return nil, err
	}
	return f, nil
}

func runParse(args []string) error {
	f, err := openScript(args)
	if err != nil {
		return err
	}
	defer f.Close()

	cmds, err := linkscript.ParseScript(f)
	if err != nil {
		return err
	}
	for i, cmd := range cmds {
		fmt.Printf("%3d: %T %s\n", i, cmd, cmd)
	}
	return nil
}

func runFmt(args []string) error {
	f, err := openScript(args)
	if err != nil {
		return err
	}
	defer f.Close()

	cmds, err := linkscript.ParseScript(f)
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		fmt.Println(cmd)
	}
	return nil
}
