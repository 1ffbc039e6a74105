package lex

import "testing"

func TestLexIntegerRadices(t *testing.T) {
	cases := []struct {
		line string
		want uint64
	}{
		{"1234", 1234},
		{"$1234", 0x1234},
		{"%1010", 0b1010},
	}
	for _, c := range cases {
		toks := Lex(c.line)
		if len(toks) < 1 || toks[0].Kind != Number {
			t.Fatalf("Lex(%q) = %v, want a leading Number token", c.line, toks)
		}
		if toks[0].IntVal != c.want {
			t.Fatalf("Lex(%q) IntVal = %d, want %d", c.line, toks[0].IntVal, c.want)
		}
	}
}

func TestLexCommandLine(t *testing.T) {
	toks := Lex(`include "main.obj"  ; pull in the entry module`)
	want := []Kind{Ident, String, Comment, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d kind = %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[0].Text != "include" {
		t.Fatalf("ident text = %q, want include", toks[0].Text)
	}
	if toks[1].Text != "main.obj" {
		t.Fatalf("string text = %q, want main.obj", toks[1].Text)
	}
	if toks[2].Text != "pull in the entry module" {
		t.Fatalf("comment text = %q", toks[2].Text)
	}
}

func TestLexOperators(t *testing.T) {
	toks := Lex("a == b != c <= d >= e << f >> g && h || i")
	var kinds []Kind
	for _, tok := range toks {
		if tok.Kind != Ident {
			kinds = append(kinds, tok.Kind)
		}
	}
	want := []Kind{EqEq, Ne, Le, Ge, Shl, Shr, AmpAmp, PipePipe, EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got kinds %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kind %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestLexBinaryVsModulo(t *testing.T) {
	// "%101" with no surrounding space is the binary literal 5.
	toks := Lex("%101")
	if toks[0].Kind != Number || toks[0].IntVal != 0b101 {
		t.Fatalf("Lex(%%101) = %v, want Number(5)", toks)
	}

	// "a % b" with spaces is the modulo operator between two symbols.
	toks = Lex("a % b")
	if len(toks) != 4 || toks[1].Kind != Percent {
		t.Fatalf("Lex(a %% b) = %v, want [Ident Percent Ident EOF]", toks)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	toks := Lex(`include "oops`)
	found := false
	for _, tok := range toks {
		if tok.Kind == Illegal {
			found = true
		}
	}
	if !found {
		t.Fatalf("Lex with unterminated string = %v, want an Illegal token", toks)
	}
}
