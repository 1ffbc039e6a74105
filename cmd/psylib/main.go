// Command psylib inspects and builds PSY-Q LIB archives: list a
// library's modules and exports, split one into its constituent OBJ
// files, or build one up from OBJ files with add/join.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ttkb-oss/psyx/psylib"
	"github.com/ttkb-oss/psyx/psyqtime"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(os.Args[2:])
	case "split":
		err = runSplit(os.Args[2:])
	case "add":
		err = runAdd(os.Args[2:])
	case "join":
		err = runJoin(os.Args[2:])
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
	fmt.Fprintf(os.Stderr, "usage: psylib list|split|add|join ARCHIVE [...]\n")
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	exportsOnly := fs.Bool("s", false, "list exported symbols only")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("list requires an archive path")
	}

	a, err := psylib.Read(fs.Arg(0))
	if err != nil {
		return err
	}

	if *exportsOnly {
		for _, e := range a.Exports() {
			fmt.Printf("%s: %s\n", e.Module, e.Name)
		}
		return nil
	}
	for i, m := range a.Modules {
		fmt.Printf("%3d: %-8s %s  %d bytes\n", i, m.Metadata.Name, m.Metadata.Timestamp, m.Metadata.Size)
	}
	return nil
}

func runSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	outDir := fs.String("o", ".", "directory to write split OBJ files into")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("split requires an archive path")
	}

	a, err := psylib.Read(fs.Arg(0))
	if err != nil {
		return err
	}

	for _, m := range a.Modules {
		name := trimModuleName(m.Metadata.Name) + ".obj"
		if err := os.WriteFile(filepath.Join(*outDir, name), m.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("add requires an archive path and at least one OBJ file")
	}

	archivePath := fs.Arg(0)
	a, err := psylib.Read(archivePath)
	if err != nil {
		return err
	}

	for _, objPath := range fs.Args()[1:] {
		data, err := os.ReadFile(objPath)
		if err != nil {
			return err
		}
		fi, err := os.Stat(objPath)
		if err != nil {
			return err
		}
		ts := psyqtime.Timestamp{
			Year: fi.ModTime().Year(), Month: int(fi.ModTime().Month()), Day: fi.ModTime().Day(),
			Hour: fi.ModTime().Hour(), Minute: fi.ModTime().Minute(), Second: fi.ModTime().Second() &^ 1,
		}
		a.Modules = append(a.Modules, psylib.NewModuleFromPath(objPath, data, ts))
	}

	return writeArchive(archivePath, a)
}

func runJoin(args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	out := fs.String("o", "out.lib", "path of the joined archive")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("join requires at least one archive path")
	}

	joined := &psylib.Archive{Version: psylib.Version}
	for _, path := range fs.Args() {
		a, err := psylib.Read(path)
		if err != nil {
			return err
		}
		joined.Modules = append(joined.Modules, a.Modules...)
	}

	return writeArchive(*out, joined)
}

func writeArchive(path string, a *psylib.Archive) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = a.WriteTo(f)
	return err
}

func trimModuleName(name string) string {
	i := len(name)
	for i > 0 && name[i-1] == ' ' {
		i--
	}
	return name[:i]
}
