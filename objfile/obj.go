package objfile

import (
	"io"
)

// OBJMagic is the three-byte magic that opens every PSY-Q object file.
var OBJMagic = [3]byte{'L', 'N', 'K'}

// OBJVersion is the only version this package understands.
const OBJVersion = 2

// OBJ is a parsed PSY-Q object file: a magic-and-version header followed
// by a tag-dispatched stream of sections terminated by a NOP.
type OBJ struct {
	Version  byte
	Sections []Section // includes the trailing NOP
}

// ReadOBJ reads an object file from r: magic, version, then sections
// until (and including) a NOP. A NOP section is not special beyond being
// the loop's stop condition — it is preserved in Sections so WriteTo can
// reproduce the file byte for byte.
func ReadOBJ(r io.Reader) (*OBJ, error) {
	cr := newCountingReader(r)

	magic, err := cr.readN(3)
	if err != nil {
		return nil, err
	}
	if magic[0] != OBJMagic[0] || magic[1] != OBJMagic[1] || magic[2] != OBJMagic[2] {
		return nil, &FormatError{Off: 0, Msg: "bad OBJ magic", Val: magic}
	}

	version, err := cr.readByte()
	if err != nil {
		return nil, err
	}
	if version != OBJVersion {
		return nil, &FormatError{Off: cr.off - 1, Msg: "unsupported OBJ version", Val: version}
	}

	obj := &OBJ{Version: version}
	for {
		sec, err := ReadSection(cr)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				// A truncated stream with no closing NOP: what was read so
				// far stands, matching the naive read-until-you-can't
				// behavior that lets a file like CDSFILE.OBJ — whose final
				// byte is a stray NUL rather than a well-formed section —
				// parse as "ended early" instead of failing outright.
				return obj, nil
			}
			return nil, err
		}
		obj.Sections = append(obj.Sections, sec)
		if sec.Tag() == STagNOP {
			return obj, nil
		}
	}
}

// WriteTo writes the object file back out exactly as parsed: magic,
// version, then every section in original order, NOP included.
func (o *OBJ) WriteTo(w io.Writer) (int64, error) {
	var total int64

	n, err := w.Write(OBJMagic[:])
	total += int64(n)
	if err != nil {
		return total, err
	}

	n2, err := w.Write([]byte{o.Version})
	total += int64(n2)
	if err != nil {
		return total, err
	}

	for _, sec := range o.Sections {
		n3, err := sec.WriteTo(w)
		total += n3
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Exports returns the names declared by every XDEF and XBSS section in
// the file, in file order. A section with a zero-length name is not an
// observable export and is skipped.
func (o *OBJ) Exports() []string {
	var names []string
	for _, sec := range o.Sections {
		switch s := sec.(type) {
		case SecXDEF:
			if len(s.Name) > 0 {
				names = append(names, string(s.Name))
			}
		case SecXBSS:
			if len(s.Name) > 0 {
				names = append(names, string(s.Name))
			}
		}
	}
	return names
}

// CPU returns the processor type named by the most recent CPU section
// before the end of the stream, or false if none was present.
func (o *OBJ) CPU() (CPUType, bool) {
	var (
		cpu   CPUType
		found bool
	)
	for _, sec := range o.Sections {
		if c, ok := sec.(SecCPU); ok {
			cpu = c.Type
			found = true
		}
	}
	return cpu, found
}
