// Package linkscript parses PSY-Q linker script ('.LNK') files: one
// command per line, each built from the tokens the lex package produces.
package linkscript

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ttkb-oss/psyx/linkscript/lex"
)

// ParseError reports a parse failure at a specific column of the
// offending line.
type ParseError struct {
	Col int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("linkscript: %s (at column %d)", e.Msg, e.Col)
}

type parser struct {
	toks []lex.Token
	pos  int
}

func (p *parser) peek() lex.Token {
	return p.toks[p.pos]
}

func (p *parser) next() lex.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k lex.Kind, what string) (lex.Token, error) {
	if p.peek().Kind != k {
		return lex.Token{}, &ParseError{Col: p.peek().Col, Msg: fmt.Sprintf("expected %s, got %q", what, p.peek().Text)}
	}
	return p.next(), nil
}

func (p *parser) atIdentCI(text string) bool {
	t := p.peek()
	return t.Kind == lex.Ident && strings.EqualFold(t.Text, text)
}

// ParseLine parses one line of a linker script: an optional Command
// followed by an optional trailing Comment. A blank or comment-only line
// returns a nil Command and no error.
func ParseLine(line string) (Command, *Comment, error) {
	toks := lex.Lex(line)

	var comment *Comment
	body := toks
	for i, t := range toks {
		if t.Kind == lex.Comment {
			comment = &Comment{Text: t.Text}
			body = toks[:i]
			break
		}
	}
	// strip the trailing EOF token lex always appends, if present and we
	// didn't already cut at a Comment
	if len(body) > 0 && body[len(body)-1].Kind == lex.EOF {
		body = body[:len(body)-1]
	}

	if len(body) == 0 {
		return nil, comment, nil
	}

	p := &parser{toks: append(append([]lex.Token{}, body...), lex.Token{Kind: lex.EOF, Col: len(line)})}

	cmd, err := p.parseCommand()
	if err != nil {
		return nil, comment, err
	}
	if t := p.peek(); t.Kind != lex.EOF {
		return nil, comment, &ParseError{Col: t.Col, Msg: fmt.Sprintf("unexpected %q after command", t.Text)}
	}
	return cmd, comment, nil
}

// ParseScript reads a whole linker-command file, one command per line,
// stopping at the first hard parse error with its line number attached.
// Blank and comment-only lines contribute no Command and are skipped.
func ParseScript(r io.Reader) ([]Command, error) {
	var cmds []Command
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		cmd, _, err := ParseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}

func (p *parser) parseCommand() (Command, error) {
	first := p.peek()
	if first.Kind != lex.Ident {
		return nil, &ParseError{Col: first.Col, Msg: fmt.Sprintf("expected a command, got %q", first.Text)}
	}

	switch strings.ToLower(first.Text) {
	case "include":
		return p.parseFilenameCommand("include", func(name string) Command { return Include{Filename: name} })
	case "inclib":
		return p.parseFilenameCommand("inclib", func(name string) Command { return IncLib{Filename: name} })
	case "org":
		p.next()
		addr, err := p.parseIntegerOperand()
		if err != nil {
			return nil, err
		}
		return Origin{Address: addr}, nil
	case "workspace":
		p.next()
		addr, err := p.parseIntegerOperand()
		if err != nil {
			return nil, err
		}
		return Workspace{Address: addr}, nil
	case "unit":
		p.next()
		n, err := p.parseIntegerOperand()
		if err != nil {
			return nil, err
		}
		return Unit{UnitNum: n}, nil
	case "regs":
		return p.parseRegs()
	case "global":
		syms, err := p.parseSymbolListCommand("global")
		if err != nil {
			return nil, err
		}
		return Global{Symbols: syms}, nil
	case "xdef":
		syms, err := p.parseSymbolListCommand("xdef")
		if err != nil {
			return nil, err
		}
		return XDef{Symbols: syms}, nil
	case "xref":
		syms, err := p.parseSymbolListCommand("xref")
		if err != nil {
			return nil, err
		}
		return XRef{Symbols: syms}, nil
	case "public":
		return p.parsePublic()
	case "section":
		return p.parseSectionWithName()
	case "dc.b":
		return p.parseDC(SizeByte)
	case "dc.w":
		return p.parseDC(SizeWord)
	case "dc.l":
		return p.parseDC(SizeLong)
	}

	// Every remaining form starts with a bare symbol: SYM = EXPR,
	// SYM EQU EXPR, SYM group ..., SYM section ..., SYM alias SYM.
	if p.pos+1 < len(p.toks) {
		second := p.toks[p.pos+1]
		switch {
		case second.Kind == lex.Equals:
			return p.parseEquals()
		case second.Kind == lex.Ident && strings.EqualFold(second.Text, "equ"):
			return p.parseEquals()
		case second.Kind == lex.Ident && strings.EqualFold(second.Text, "group"):
			return p.parseGroup()
		case second.Kind == lex.Ident && strings.EqualFold(second.Text, "alias"):
			return p.parseAlias()
		case second.Kind == lex.Ident && strings.EqualFold(second.Text, "section"):
			return p.parseSectionWithAttributes()
		}
	}
	return nil, &ParseError{Col: first.Col, Msg: fmt.Sprintf("unrecognized command %q", first.Text)}
}

func (p *parser) parseFilenameCommand(keyword string, build func(string) Command) (Command, error) {
	p.next() // keyword
	tok, err := p.expect(lex.String, "a quoted filename")
	if err != nil {
		return nil, err
	}
	return build(tok.Text), nil
}

func (p *parser) parseIntegerOperand() (uint64, error) {
	tok, err := p.expect(lex.Number, "an integer constant")
	if err != nil {
		return 0, err
	}
	return tok.IntVal, nil
}

func (p *parser) parseSymbolOperand() (string, error) {
	tok, err := p.expect(lex.Ident, "a symbol")
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

func (p *parser) parseSymbolListCommand(keyword string) ([]string, error) {
	p.next() // keyword
	var syms []string
	for {
		sym, err := p.parseSymbolOperand()
		if err != nil {
			return nil, err
		}
		syms = append(syms, sym)
		if p.peek().Kind != lex.Comma {
			break
		}
		p.next()
	}
	return syms, nil
}

func (p *parser) parseEquals() (Command, error) {
	left, err := p.parseSymbolOperand()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == lex.Equals {
		p.next()
	} else if p.atIdentCI("equ") {
		p.next()
	} else {
		return nil, &ParseError{Col: p.peek().Col, Msg: "expected = or EQU"}
	}
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return Equals{Left: left, Right: right}, nil
}

func (p *parser) parseRegs() (Command, error) {
	p.next() // "regs"
	reg, err := p.parseSymbolOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Equals, "="); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return Regs{Register: reg, Expression: expr}, nil
}

func (p *parser) parseAttribute() (Attribute, error) {
	tok := p.peek()
	if tok.Kind != lex.Ident {
		return nil, &ParseError{Col: tok.Col, Msg: fmt.Sprintf("expected an attribute, got %q", tok.Text)}
	}
	kw := strings.ToLower(tok.Text)
	switch kw {
	case "bss":
		p.next()
		return AttrBSS{}, nil
	case "word":
		p.next()
		return AttrWord{}, nil
	case "org":
		p.next()
		if _, err := p.expect(lex.LParen, "("); err != nil {
			return nil, err
		}
		addr, err := p.parseIntegerOperand()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.RParen, ")"); err != nil {
			return nil, err
		}
		return AttrOrigin{Address: addr}, nil
	case "obj":
		p.next()
		if _, err := p.expect(lex.LParen, "("); err != nil {
			return nil, err
		}
		var addr *uint64
		if p.peek().Kind == lex.Number {
			v, err := p.parseIntegerOperand()
			if err != nil {
				return nil, err
			}
			addr = &v
		}
		if _, err := p.expect(lex.RParen, ")"); err != nil {
			return nil, err
		}
		return AttrObj{Address: addr}, nil
	case "over":
		p.next()
		if _, err := p.expect(lex.LParen, "("); err != nil {
			return nil, err
		}
		group, err := p.parseSymbolOperand()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.RParen, ")"); err != nil {
			return nil, err
		}
		return AttrOver{Group: group}, nil
	case "file":
		p.next()
		if _, err := p.expect(lex.LParen, "("); err != nil {
			return nil, err
		}
		name, err := p.expect(lex.String, "a quoted filename")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.RParen, ")"); err != nil {
			return nil, err
		}
		return AttrFile{Filename: name.Text}, nil
	case "size":
		p.next()
		if _, err := p.expect(lex.LParen, "("); err != nil {
			return nil, err
		}
		max, err := p.parseIntegerOperand()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.RParen, ")"); err != nil {
			return nil, err
		}
		return AttrSize{MaxSize: max}, nil
	default:
		return nil, &ParseError{Col: tok.Col, Msg: fmt.Sprintf("unknown attribute %q", tok.Text)}
	}
}

func (p *parser) parseAttributeList() ([]Attribute, error) {
	var attrs []Attribute
	if p.peek().Kind != lex.Ident {
		return attrs, nil
	}
	for {
		a, err := p.parseAttribute()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
		if p.peek().Kind != lex.Comma {
			break
		}
		p.next()
	}
	return attrs, nil
}

func (p *parser) parseGroup() (Command, error) {
	name, err := p.parseSymbolOperand()
	if err != nil {
		return nil, err
	}
	p.next() // "group"
	attrs, err := p.parseAttributeList()
	if err != nil {
		return nil, err
	}
	return Group{Name: name, Attributes: attrs}, nil
}

func (p *parser) parseSectionWithAttributes() (Command, error) {
	name, err := p.parseSymbolOperand()
	if err != nil {
		return nil, err
	}
	p.next() // "section"
	attrs, err := p.parseAttributeList()
	if err != nil {
		return nil, err
	}
	return Section{Name: name, Group: nil, Attributes: attrs}, nil
}

func (p *parser) parseSectionWithName() (Command, error) {
	p.next() // "section"
	name, err := p.parseSymbolOperand()
	if err != nil {
		return nil, err
	}
	var group *string
	if p.peek().Kind == lex.Comma {
		p.next()
		g, err := p.parseSymbolOperand()
		if err != nil {
			return nil, err
		}
		group = &g
	}
	return Section{Name: name, Group: group, Attributes: nil}, nil
}

func (p *parser) parseAlias() (Command, error) {
	name, err := p.parseSymbolOperand()
	if err != nil {
		return nil, err
	}
	p.next() // "alias"
	target, err := p.parseSymbolOperand()
	if err != nil {
		return nil, err
	}
	return Alias{Name: name, Target: target}, nil
}

func (p *parser) parsePublic() (Command, error) {
	p.next() // "public"
	tok, err := p.expect(lex.Ident, "on or off")
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(tok.Text) {
	case "on":
		return Public{Public: true}, nil
	case "off":
		return Public{Public: false}, nil
	default:
		return nil, &ParseError{Col: tok.Col, Msg: fmt.Sprintf("expected on or off, got %q", tok.Text)}
	}
}

func (p *parser) parseDC(size Size) (Command, error) {
	p.next() // "dc.b"/"dc.w"/"dc.l"
	var exprs []Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.peek().Kind != lex.Comma {
			break
		}
		p.next()
	}
	return DC{Size: size, Expressions: exprs}, nil
}

// --- expressions -------------------------------------------------------

func binaryOpFromKind(k lex.Kind) (BinaryOp, bool) {
	switch k {
	case lex.Plus:
		return OpAdd, true
	case lex.Minus:
		return OpSub, true
	case lex.Star:
		return OpMul, true
	case lex.Slash:
		return OpDiv, true
	case lex.Percent:
		return OpMod, true
	case lex.Amp:
		return OpAnd, true
	case lex.Pipe:
		return OpOr, true
	case lex.Caret:
		return OpXor, true
	case lex.Shl:
		return OpShl, true
	case lex.Shr:
		return OpShr, true
	case lex.EqEq:
		return OpEq, true
	case lex.Ne:
		return OpNe, true
	case lex.Lt:
		return OpLt, true
	case lex.Le:
		return OpLe, true
	case lex.Gt:
		return OpGt, true
	case lex.Ge:
		return OpGe, true
	case lex.AmpAmp:
		return OpLogAnd, true
	case lex.PipePipe:
		return OpLogOr, true
	default:
		return 0, false
	}
}

func (p *parser) parseExpr() (Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinaryRHS(0, lhs)
}

// parseBinaryRHS implements precedence climbing: it consumes operators
// whose precedence is at least minPrec, recursing to absorb a
// higher-precedence run on the right before folding in the current
// operator. Every operator here is left-associative, so an operator of
// precedence equal to the current one ends the recursive absorption
// rather than continuing it.
func (p *parser) parseBinaryRHS(minPrec int, lhs Expr) (Expr, error) {
	for {
		op, ok := binaryOpFromKind(p.peek().Kind)
		if !ok || op.precedence() < minPrec {
			return lhs, nil
		}
		p.next()

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		for {
			nextOp, ok := binaryOpFromKind(p.peek().Kind)
			if !ok || nextOp.precedence() <= op.precedence() {
				break
			}
			rhs, err = p.parseBinaryRHS(op.precedence()+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = Binary{Left: lhs, Op: op, Right: rhs}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.peek().Kind {
	case lex.Minus:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: OpNeg, Operand: operand}, nil
	case lex.Tilde:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: OpNot, Operand: operand}, nil
	case lex.Bang:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: OpLogNot, Operand: operand}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case lex.Ident:
		if FunctionNames[strings.ToLower(tok.Text)] && p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == lex.LParen {
			name := strings.ToLower(tok.Text)
			p.next()
			p.next() // "("
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lex.RParen, ")"); err != nil {
				return nil, err
			}
			return Function{Name: name, Arg: arg}, nil
		}
		p.next()
		return Symbol{Name: tok.Text}, nil
	case lex.Number:
		p.next()
		return Constant{Value: tok.IntVal}, nil
	case lex.LParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.RParen, ")"); err != nil {
			return nil, err
		}
		return Parens{Inner: inner}, nil
	default:
		return nil, &ParseError{Col: tok.Col, Msg: fmt.Sprintf("expected an expression, got %q", tok.Text)}
	}
}
