// Package psylib reads and writes PSY-Q LIB archives: a flat sequence of
// named, timestamped object-file modules, each carrying its own on-disk
// export table.
package psylib

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/ttkb-oss/psyx/objfile"
	"github.com/ttkb-oss/psyx/psyqtime"
	"github.com/ttkb-oss/psyx/psylib/modname"
)

// Magic is the three-byte signature that opens every LIB archive.
var Magic = [3]byte{'L', 'I', 'B'}

// Version is the only archive header version this package understands.
const Version = 1

// metadataHeaderSize is the fixed-width portion of a module record that
// precedes its export table: 8-byte name, 4-byte timestamp, 4-byte
// offset, 4-byte size.
const metadataHeaderSize = 20

// ExportEntry is one entry in a module's on-disk export table: a
// length-prefixed name. The table is terminated by a zero-length entry,
// which is retained in ModuleMetadata.Exports rather than inferred, so
// that write-back can reproduce it verbatim.
type ExportEntry struct {
	Name []byte
}

func (e ExportEntry) terminator() bool { return len(e.Name) == 0 }

// ModuleMetadata is the header a librarian stamps before each module's
// object data: an 8-byte space-padded name, a packed PSY-Q timestamp,
// the byte offset of the embedded OBJ from the start of this record, the
// record's total byte size, and the module's export table.
type ModuleMetadata struct {
	Name      string
	Timestamp psyqtime.Timestamp
	Offset    uint32
	Size      uint32
	Exports   []ExportEntry // always includes the trailing zero-length sentinel
}

// Module is one archive member: its header and the raw OBJ bytes that
// follow it, preserved verbatim rather than re-parsed eagerly.
type Module struct {
	Metadata ModuleMetadata
	Data     []byte
}

// OBJ parses this module's data as an object file.
func (m Module) OBJ() (*objfile.OBJ, error) {
	return objfile.ReadOBJ(bytes.NewReader(m.Data))
}

// Archive is a parsed LIB file: a version and its modules, in file
// order.
type Archive struct {
	Version byte
	Modules []Module
}

// Export names one symbol exported by one module of an archive.
type Export struct {
	Module string
	Name   string
}

// ReadLIB reads an archive from r: magic, version, then module records
// until EOF. Each module record is a fixed 20-byte header (name,
// timestamp, offset, size) followed by an export table read entry by
// entry until a zero-length name terminates it, followed by the
// embedded OBJ — size-offset bytes long, per the offset/size relation
// the librarian maintains. An archive with no module records is rejected.
func ReadLIB(r io.Reader) (*Archive, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, ErrMagicMismatch
	}
	if hdr[0] != Magic[0] || hdr[1] != Magic[1] || hdr[2] != Magic[2] {
		return nil, ErrMagicMismatch
	}
	version := hdr[3]
	if version != Version {
		return nil, &ErrUnsupportedVersion{Version: version}
	}

	a := &Archive{Version: version}
	var off int64 = 4
	for {
		var fixed [metadataHeaderSize]byte
		n, err := io.ReadFull(r, fixed[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			if n == 0 {
				break
			}
			return nil, ErrTruncated
		}
		off += metadataHeaderSize

		name := string(fixed[0:8])
		word := binary.LittleEndian.Uint32(fixed[8:12])
		offset := binary.LittleEndian.Uint32(fixed[12:16])
		size := binary.LittleEndian.Uint32(fixed[16:20])

		ts, err := psyqtime.Decode(word)
		if err != nil {
			return nil, &FormatError{Off: off - 12, Msg: "invalid module timestamp", Val: err}
		}

		var exports []ExportEntry
		for {
			var nbuf [1]byte
			if _, err := io.ReadFull(r, nbuf[:]); err != nil {
				return nil, ErrTruncated
			}
			off++

			nlen := nbuf[0]
			if nlen == 0 {
				exports = append(exports, ExportEntry{})
				break
			}
			name := make([]byte, nlen)
			if _, err := io.ReadFull(r, name); err != nil {
				return nil, ErrTruncated
			}
			off += int64(nlen)
			exports = append(exports, ExportEntry{Name: name})
		}

		if size < offset {
			return nil, &FormatError{Off: off, Msg: "module size smaller than offset", Val: size}
		}
		data := make([]byte, size-offset)
		if len(data) > 0 {
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, ErrTruncated
			}
		}
		off += int64(len(data))

		a.Modules = append(a.Modules, Module{
			Metadata: ModuleMetadata{Name: name, Timestamp: ts, Offset: offset, Size: size, Exports: exports},
			Data:     data,
		})
	}
	if len(a.Modules) == 0 {
		return nil, &FormatError{Off: off, Msg: "archive has no modules"}
	}
	return a, nil
}

// Read opens the archive at path and parses it.
func Read(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLIB(f)
}

// WriteTo writes the archive back out: magic, version, then every
// module's header, export table, and data in original order.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	var total int64

	n, err := w.Write(Magic[:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	n2, err := w.Write([]byte{a.Version})
	total += int64(n2)
	if err != nil {
		return total, err
	}

	for _, m := range a.Modules {
		var fixed [metadataHeaderSize]byte
		copy(fixed[0:8], []byte(m.Metadata.Name))
		binary.LittleEndian.PutUint32(fixed[8:12], m.Metadata.Timestamp.Encode())
		binary.LittleEndian.PutUint32(fixed[12:16], m.Metadata.Offset)
		binary.LittleEndian.PutUint32(fixed[16:20], m.Metadata.Size)

		n3, err := w.Write(fixed[:])
		total += int64(n3)
		if err != nil {
			return total, err
		}

		for _, e := range m.Metadata.Exports {
			n4, err := w.Write([]byte{byte(len(e.Name))})
			total += int64(n4)
			if err != nil {
				return total, err
			}
			if len(e.Name) == 0 {
				continue
			}
			n5, err := w.Write(e.Name)
			total += int64(n5)
			if err != nil {
				return total, err
			}
		}

		n6, err := w.Write(m.Data)
		total += int64(n6)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// NewModuleFromPath builds a Module from a source file path, object
// data, and timestamp, deriving the archive name the way the librarian
// does and computing the export table and offset/size fields from the
// object's own exports: offset = 20 + sum(1+len) over the export table
// including its terminator, size = offset + len(data).
func NewModuleFromPath(path string, data []byte, ts psyqtime.Timestamp) Module {
	var names []string
	if obj, err := objfile.ReadOBJ(bytes.NewReader(data)); err == nil {
		names = obj.Exports()
	}

	exports := make([]ExportEntry, 0, len(names)+1)
	for _, name := range names {
		exports = append(exports, ExportEntry{Name: []byte(name)})
	}
	exports = append(exports, ExportEntry{}) // terminator

	var exportBytes int
	for _, e := range exports {
		exportBytes += 1 + len(e.Name)
	}
	offset := uint32(metadataHeaderSize + exportBytes)
	size := offset + uint32(len(data))

	return Module{
		Metadata: ModuleMetadata{
			Name:      modname.Derive(path),
			Timestamp: ts,
			Offset:    offset,
			Size:      size,
			Exports:   exports,
		},
		Data: data,
	}
}

// Exports returns every symbol exported by every module in the archive,
// in module and then file order. A module whose data does not parse as
// an object file contributes no exports and is otherwise ignored.
func (a *Archive) Exports() []Export {
	var exports []Export
	for _, m := range a.Modules {
		obj, err := m.OBJ()
		if err != nil {
			continue
		}
		for _, name := range obj.Exports() {
			exports = append(exports, Export{Module: m.Metadata.Name, Name: name})
		}
	}
	return exports
}
