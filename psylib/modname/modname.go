// Package modname derives the 8-byte, space-padded, uppercase module
// name a PSY-Q librarian stamps into an archive's module header from the
// member file's path.
package modname

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Length is the fixed width of a module name field in an archive header.
const Length = 8

// Derive returns the archive module name for the file at path: its stem
// (no directory, and nothing from the first '.' on), uppercased,
// truncated to Length bytes on a rune boundary, and right-padded with
// spaces.
//
// Truncation is rune-boundary-safe rather than grapheme-cluster-safe: a
// PSY-Q source tree predates combining-mark filenames, so cutting on a
// UTF-8 boundary is enough to avoid splitting a multi-byte rune, and
// pulling in full grapheme segmentation for this would be solving a
// problem the format never poses.
func Derive(path string) string {
	stem := filepath.Base(path)
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	stem = strings.ToUpper(stem)
	stem = truncateRuneSafe(stem, Length)
	return stem + strings.Repeat(" ", Length-len(stem))
}

func truncateRuneSafe(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
