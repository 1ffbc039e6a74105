package psylib

import "fmt"

// FormatError is returned when an archive byte stream does not have the
// shape required at the point the error was raised.
type FormatError struct {
	Off int64
	Msg string
	Val interface{}
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Val != nil {
		msg += fmt.Sprintf(" %v", e.Val)
	}
	return fmt.Sprintf("psylib: %s (at byte %#x)", msg, e.Off)
}

// ErrMagicMismatch is returned when a stream does not open with the
// archive magic "LIB".
var ErrMagicMismatch = fmt.Errorf("psylib: not a LIB archive")

// ErrUnsupportedVersion is returned for an archive header version this
// package does not understand.
type ErrUnsupportedVersion struct{ Version byte }

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("psylib: unsupported archive version %d", e.Version)
}

// ErrTruncated is returned when a module record's declared size runs
// past the end of the stream.
var ErrTruncated = fmt.Errorf("psylib: archive truncated before a module's declared size")
