package objfile

import (
	"encoding/binary"
	"io"
)

// countingReader wraps an io.Reader and tracks the number of bytes
// consumed so FormatError/ErrUnknownTag can report a byte offset, the way
// the teacher library's FormatError reports an offset into the Mach-O
// file it was decoding.
type countingReader struct {
	r   io.Reader
	off int64
}

func newCountingReader(r io.Reader) *countingReader {
	return &countingReader{r: r}
}

func (c *countingReader) readByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(c.r, buf[:]); err != nil {
		return 0, err
	}
	c.off++
	return buf[0], nil
}

func (c *countingReader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, err
	}
	c.off += int64(n)
	return buf, nil
}

func (c *countingReader) readUint16(v *uint16) error {
	b, err := c.readN(2)
	if err != nil {
		return err
	}
	*v = binary.LittleEndian.Uint16(b)
	return nil
}

func (c *countingReader) readUint32(v *uint32) error {
	b, err := c.readN(4)
	if err != nil {
		return err
	}
	*v = binary.LittleEndian.Uint32(b)
	return nil
}

func (c *countingReader) readInt32(v *int32) error {
	var u uint32
	if err := c.readUint32(&u); err != nil {
		return err
	}
	*v = int32(u)
	return nil
}
