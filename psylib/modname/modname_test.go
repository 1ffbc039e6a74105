package modname

import "testing"

func TestDerive(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"main.obj", "MAIN    "},
		{"/src/foo/crt0.obj", "CRT0    "},
		{"LongModuleName.obj", "LONGMODU"},
		{"eight123.obj", "EIGHT123"},
	}
	for _, c := range cases {
		if got := Derive(c.path); got != c.want {
			t.Errorf("Derive(%q) = %q, want %q", c.path, got, c.want)
		}
		if len(Derive(c.path)) != Length {
			t.Errorf("Derive(%q) has length %d, want %d", c.path, len(Derive(c.path)), Length)
		}
	}
}

func TestDeriveRuneSafeTruncation(t *testing.T) {
	// "CAFÉÉÉÉÉÉ" -- 'É' is two bytes in UTF-8, so a naive byte-8 cut could
	// land inside the final rune. Derive must back off to a rune boundary
	// instead of producing invalid UTF-8.
	got := Derive("caféééééé.obj")
	if !isValidPadded(got) {
		t.Fatalf("Derive produced invalid result: %q", got)
	}
	if len(got) > Length {
		t.Fatalf("Derive(%q) too long: %q", "caféééééé.obj", got)
	}
}

func isValidPadded(s string) bool {
	for _, r := range s {
		if r == 0xFFFD {
			return false
		}
	}
	return true
}
