package ast

import (
	"fmt"

	"github.com/zylang/zyc/internal/span"
	"github.com/zylang/zyc/internal/token"
)

// ExpectedError is raised when a production has already committed (it
// matched its leading token) and a required token subsequently fails to
// appear. Unlike an Ok(None) "not my construct" result, this is fatal for
// the production (spec.md §4.4, §4.7/§7).
type ExpectedError struct {
	What string
	Sp   span.Span
}

func (e *ExpectedError) Error() string     { return fmt.Sprintf("expected %s at %s", e.What, e.Sp) }
func (e *ExpectedError) GetSpan() span.Span { return e.Sp }

// Parser drives recursive-descent construction of one module's AST from
// its token stream (spec.md §4.4).
type Parser struct {
	h  span.Handle
	s  *token.Stream
	// noStructInit suppresses StructInitializer parsing while collecting a
	// control-flow condition, so `if x { }` parses x as a bare Variable
	// with the brace starting the Block body rather than misreading it as
	// `x { }` — a struct initializer. Real-world recursive descent parsers
	// for brace-delimited languages all need this same carve-out.
	noStructInit bool
}

// NewParser wraps toks (as produced by token.Tokenize) for module h.
func NewParser(h span.Handle, toks []token.Token) *Parser {
	return &Parser{h: h, s: token.NewStream(toks)}
}

// ParseModule runs the top-level loop: repeatedly skip trivia and attempt
// a TopLevelStructure; a single ';' between structures is consumed; EOF
// outside any structure is success (spec.md §4.4).
func (p *Parser) ParseModule() (*GlobalNamespace, error) {
	p.skip()
	startSp := p.curSpan()
	endSp := startSp
	var children []TopLevel
	for {
		p.skip()
		if p.s.PeekVariant(token.KindEOF) {
			break
		}
		if tk, ok := p.tryPunctTok(token.PunctSemicolon); ok {
			endSp = tk.Span
			continue
		}
		child, err := p.parseTopLevelStructure()
		if err != nil {
			return nil, err
		}
		children = append(children, child...)
		endSp = child[len(child)-1].Span()
	}
	return &GlobalNamespace{Children: children, Sp: startSp.Cover(endSp)}, nil
}

// --- low-level helpers ---------------------------------------------------

func (p *Parser) skip() { p.s.SkipWhitespaceAndComments() }

func (p *Parser) curSpan() span.Span {
	return p.s.Peek().Span
}

func (p *Parser) tryKeyword(k token.KeywordTag) (token.Token, bool) {
	p.skip()
	tk := p.s.Peek()
	if tk.Kind != token.KindKeyword || tk.Keyword != k {
		return token.Token{}, false
	}
	return p.s.Next(), true
}

func (p *Parser) tryOperatorTok(o token.OperatorTag) (token.Token, bool) {
	p.skip()
	tk := p.s.Peek()
	if tk.Kind != token.KindOperator || tk.Operator != o {
		return token.Token{}, false
	}
	return p.s.Next(), true
}

func (p *Parser) tryPunctTok(pt token.PunctuationTag) (token.Token, bool) {
	p.skip()
	tk := p.s.Peek()
	if tk.Kind != token.KindPunctuation || tk.Punct != pt {
		return token.Token{}, false
	}
	return p.s.Next(), true
}

func (p *Parser) tryGroup(side token.GroupingSide, kind token.GroupingKind) (token.Token, bool) {
	p.skip()
	tk := p.s.Peek()
	if tk.Kind != token.KindGrouping || tk.GroupSide != side || tk.GroupKind != kind {
		return token.Token{}, false
	}
	return p.s.Next(), true
}

func (p *Parser) tryIdentifier() (string, span.Span, bool) {
	p.skip()
	tk := p.s.Peek()
	if tk.Kind != token.KindIdentifier {
		return "", span.Span{}, false
	}
	p.s.Next()
	return tk.Text, tk.Span, true
}

func (p *Parser) expectIdentifier(what string) (string, span.Span, error) {
	name, sp, ok := p.tryIdentifier()
	if !ok {
		return "", span.Span{}, &ExpectedError{What: what, Sp: p.curSpan()}
	}
	return name, sp, nil
}

func (p *Parser) expectGroup(side token.GroupingSide, kind token.GroupingKind, what string) (token.Token, error) {
	tk, ok := p.tryGroup(side, kind)
	if !ok {
		return token.Token{}, &ExpectedError{What: what, Sp: p.curSpan()}
	}
	return tk, nil
}

func (p *Parser) expectPunct(pt token.PunctuationTag, what string) (token.Token, error) {
	tk, ok := p.tryPunctTok(pt)
	if !ok {
		return token.Token{}, &ExpectedError{What: what, Sp: p.curSpan()}
	}
	return tk, nil
}

func (p *Parser) expectKeyword(k token.KeywordTag, what string) (token.Token, error) {
	tk, ok := p.tryKeyword(k)
	if !ok {
		return token.Token{}, &ExpectedError{What: what, Sp: p.curSpan()}
	}
	return tk, nil
}

// --- QualifiedName --------------------------------------------------------

func (p *Parser) tryQualified() (*Qualified, error) {
	startIdx := p.s.Pos()
	p.skip()
	startSp := p.curSpan()
	implied := false
	if _, ok := p.tryPunctTok(token.PunctDoubleColon); ok {
		implied = true
	}
	first, _, ok := p.tryIdentifier()
	if !ok {
		p.s.Seek(startIdx)
		return nil, nil
	}
	parts := []string{first}
	lastSp := startSp
	for {
		mark := p.s.Pos()
		if _, ok := p.tryPunctTok(token.PunctDoubleColon); ok {
			name, sp, err := p.expectIdentifier("identifier after '::'")
			if err != nil {
				return nil, err
			}
			parts = append(parts, name)
			lastSp = sp
			continue
		}
		p.s.Seek(mark)
		break
	}
	var args []TypeExpr
	if _, ok := p.tryOperatorTok(token.OpLt); ok {
		for {
			ty, err := p.parseType("template argument")
			if err != nil {
				return nil, err
			}
			args = append(args, ty)
			if _, ok := p.tryPunctTok(token.PunctComma); ok {
				continue
			}
			break
		}
		gt, err := p.expectOperator(token.OpGt, "'>' to close template arguments")
		if err != nil {
			return nil, err
		}
		lastSp = gt.Span
	}
	return &Qualified{Implied: implied, Parts: parts, Args: args, Sp: startSp.Cover(lastSp)}, nil
}

func (p *Parser) expectOperator(o token.OperatorTag, what string) (token.Token, error) {
	tk, ok := p.tryOperatorTok(o)
	if !ok {
		return token.Token{}, &ExpectedError{What: what, Sp: p.curSpan()}
	}
	return tk, nil
}

// --- Type ------------------------------------------------------------------

func (p *Parser) tryType() (TypeExpr, bool, error) {
	p.skip()

	if open, ok := p.tryGroup(token.Open, token.Bracket); ok {
		if _, ok := p.tryGroup(token.Close, token.Bracket); ok {
			elem, err := p.parseType("array element type")
			if err != nil {
				return nil, false, err
			}
			return &UnsizedArrayOf{Elem: elem, Sp: open.Span.Cover(elem.Span())}, true, nil
		}
		count, err := p.parseExpression()
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expectGroup(token.Close, token.Bracket, "']'"); err != nil {
			return nil, false, err
		}
		elem, err := p.parseType("array element type")
		if err != nil {
			return nil, false, err
		}
		return &SizedArrayOf{Count: count, Elem: elem, Sp: open.Span.Cover(elem.Span())}, true, nil
	}

	if amp, ok := p.tryOperatorTok(token.OpAnd); ok {
		if _, ok := p.tryKeyword(token.KwMut); ok {
			elem, err := p.parseType("mutable reference target type")
			if err != nil {
				return nil, false, err
			}
			return &MutReferenceTo{Elem: elem, Sp: amp.Span.Cover(elem.Span())}, true, nil
		}
		elem, err := p.parseType("reference target type")
		if err != nil {
			return nil, false, err
		}
		return &ImmutableReferenceTo{Elem: elem, Sp: amp.Span.Cover(elem.Span())}, true, nil
	}

	q, err := p.tryQualified()
	if err != nil {
		return nil, false, err
	}
	if q == nil {
		return nil, false, nil
	}
	return q, true, nil
}

func (p *Parser) parseType(what string) (TypeExpr, error) {
	ty, ok, err := p.tryType()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ExpectedError{What: what, Sp: p.curSpan()}
	}
	return ty, nil
}

// --- Expression --------------------------------------------------------

// binaryOperatorLevel reports whether op participates in the flat-sequence
// resolver, i.e. whether any BinaryPrecedence level contains it.
func binaryOperatorLevel(op token.OperatorTag) bool {
	for _, lvl := range BinaryPrecedence {
		if lvl.Ops[op] {
			return true
		}
	}
	return false
}

func (p *Parser) parseExpression() (Expr, error) {
	first, err := p.collectOperand()
	if err != nil {
		return nil, err
	}
	parts := []Part{operand(first)}
	for {
		p.skip()
		tk := p.s.Peek()
		if tk.Kind != token.KindOperator || !binaryOperatorLevel(tk.Operator) {
			break
		}
		p.s.Next()
		rhs, err := p.collectOperand()
		if err != nil {
			return nil, err
		}
		parts = append(parts, operator(tk.Operator), operand(rhs))
	}
	return ResolvePEMDAS(parts, BinaryPrecedence)
}

// collectOperand parses one unary-prefix-dressed, unary-suffix-dressed
// operand: the hardest part of spec.md §4.4's Expression production.
func (p *Parser) collectOperand() (Expr, error) {
	p.skip()

	type prefixOp struct {
		op  token.OperatorTag
		mut bool
		sp  span.Span
	}
	var prefixes []prefixOp
	for {
		p.skip()
		tk := p.s.Peek()
		if tk.Kind != token.KindOperator {
			break
		}
		switch tk.Operator {
		case token.OpNot, token.OpTilde, token.OpSub, token.OpInc, token.OpDec:
			p.s.Next()
			prefixes = append(prefixes, prefixOp{op: tk.Operator, sp: tk.Span})
			continue
		case token.OpAnd:
			p.s.Next()
			mut := false
			if _, ok := p.tryKeyword(token.KwMut); ok {
				mut = true
			}
			prefixes = append(prefixes, prefixOp{op: token.OpAnd, mut: mut, sp: tk.Span})
			continue
		}
		break
	}

	base, err := p.parseBaseOperand()
	if err != nil {
		return nil, err
	}

	for i := len(prefixes) - 1; i >= 0; i-- {
		pr := prefixes[i]
		base = &Unary{Op: pr.op, Mut: pr.mut, Operand: base, Sp: pr.sp.Cover(base.Span())}
	}

	for {
		p.skip()
		if _, ok := p.tryOperatorTok(token.OpDot); ok {
			name, sp, err := p.expectIdentifier("member name after '.'")
			if err != nil {
				return nil, err
			}
			base = &Dot{Base: base, Member: name, Sp: base.Span().Cover(sp)}
			continue
		}
		if _, ok := p.tryGroup(token.Open, token.Paren); ok {
			args, closeTk, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			base = &Call{Callee: base, Args: args, Sp: base.Span().Cover(closeTk.Span)}
			continue
		}
		if _, ok := p.tryGroup(token.Open, token.Bracket); ok {
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			closeTk, err := p.expectGroup(token.Close, token.Bracket, "']'")
			if err != nil {
				return nil, err
			}
			base = &Index{Base: base, Index: idx, Sp: base.Span().Cover(closeTk.Span)}
			continue
		}
		if _, ok := p.tryKeyword(token.KwAs); ok {
			ty, err := p.parseType("type after 'as'")
			if err != nil {
				return nil, err
			}
			base = &Cast{Operand: base, Ty: ty, Sp: base.Span().Cover(ty.Span())}
			continue
		}
		if tk := p.s.Peek(); tk.Kind == token.KindOperator && (tk.Operator == token.OpInc || tk.Operator == token.OpDec) {
			p.s.Next()
			base = &PostfixOp{Op: tk.Operator, Operand: base, Sp: base.Span().Cover(tk.Span)}
			continue
		}
		break
	}
	return base, nil
}

func (p *Parser) parseCallArgs() ([]Expr, token.Token, error) {
	if closeTk, ok := p.tryGroup(token.Close, token.Paren); ok {
		return nil, closeTk, nil
	}
	var args []Expr
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, token.Token{}, err
		}
		args = append(args, arg)
		if _, ok := p.tryPunctTok(token.PunctComma); ok {
			continue
		}
		break
	}
	closeTk, err := p.expectGroup(token.Close, token.Paren, "')'")
	if err != nil {
		return nil, token.Token{}, err
	}
	return args, closeTk, nil
}

func (p *Parser) parseBaseOperand() (Expr, error) {
	p.skip()
	tk := p.s.Peek()

	switch {
	case tk.Kind == token.KindLiteral:
		p.s.Next()
		return &Literal{Kind: tk.LiteralKind, IntValue: tk.IntValue, FloatValue: tk.FloatValue, StringValue: tk.StringValue, Sp: tk.Span}, nil

	case tk.Kind == token.KindGrouping && tk.GroupSide == token.Open && tk.GroupKind == token.Paren:
		p.s.Next()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		closeTk, err := p.expectGroup(token.Close, token.Paren, "')'")
		if err != nil {
			return nil, err
		}
		return &SubExpression{Inner: inner, Sp: tk.Span.Cover(closeTk.Span)}, nil

	case tk.Kind == token.KindGrouping && tk.GroupSide == token.Open && tk.GroupKind == token.Brace:
		return p.parseBlock()

	case tk.Kind == token.KindKeyword:
		switch tk.Keyword {
		case token.KwIf, token.KwWhile, token.KwDo, token.KwUntil, token.KwFor, token.KwLoop:
			return p.parseControlFlow()
		case token.KwReturn:
			p.s.Next()
			if p.atExpressionEnd() {
				return &Return{Sp: tk.Span}, nil
			}
			val, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &Return{Value: val, Sp: tk.Span.Cover(val.Span())}, nil
		case token.KwBreak:
			p.s.Next()
			return &Break{Sp: tk.Span}, nil
		}
		return nil, &ExpectedError{What: "expression", Sp: tk.Span}

	case tk.Kind == token.KindIdentifier || (tk.Kind == token.KindPunctuation && tk.Punct == token.PunctDoubleColon):
		q, err := p.tryQualified()
		if err != nil {
			return nil, err
		}
		if q == nil {
			return nil, &ExpectedError{What: "expression", Sp: tk.Span}
		}
		if !p.noStructInit {
			if _, ok := p.tryGroup(token.Open, token.Brace); ok {
				return p.parseStructInitializerBody(q)
			}
		}
		return &Variable{Name: q, Sp: q.Sp}, nil

	default:
		return nil, &ExpectedError{What: "expression", Sp: tk.Span}
	}
}

// atExpressionEnd reports whether the cursor sits at a token that can
// never start an expression, used to detect a valueless `return`.
func (p *Parser) atExpressionEnd() bool {
	p.skip()
	tk := p.s.Peek()
	if tk.Kind == token.KindPunctuation && tk.Punct == token.PunctSemicolon {
		return true
	}
	if tk.Kind == token.KindGrouping && tk.GroupSide == token.Close {
		return true
	}
	return tk.Kind == token.KindEOF
}

func (p *Parser) parseStructInitializerBody(ty *Qualified) (Expr, error) {
	start := ty.Sp
	var fields []StructFieldInit
	if closeTk, ok := p.tryGroup(token.Close, token.Brace); ok {
		return &StructInitializer{Ty: ty, Sp: start.Cover(closeTk.Span)}, nil
	}
	for {
		name, sp, err := p.expectIdentifier("field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(token.PunctColon, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		fields = append(fields, StructFieldInit{Name: name, Value: val, Sp: sp.Cover(val.Span())})
		if _, ok := p.tryPunctTok(token.PunctComma); ok {
			continue
		}
		break
	}
	closeTk, err := p.expectGroup(token.Close, token.Brace, "'}'")
	if err != nil {
		return nil, err
	}
	return &StructInitializer{Ty: ty, Fields: fields, Sp: start.Cover(closeTk.Span)}, nil
}

// --- Block & Binding --------------------------------------------------

func (p *Parser) parseBlock() (*Block, error) {
	open, err := p.expectGroup(token.Open, token.Brace, "'{'")
	if err != nil {
		return nil, err
	}
	var children []BlockChild
	returnsLast := false
	for {
		p.skip()
		if closeTk, ok := p.tryGroup(token.Close, token.Brace); ok {
			return &Block{Children: children, ReturnsLast: returnsLast, Sp: open.Span.Cover(closeTk.Span)}, nil
		}
		returnsLast = false
		child, err := p.parseBlockChild()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		if _, ok := p.tryPunctTok(token.PunctSemicolon); ok {
			continue
		}
		returnsLast = true
	}
}

func (p *Parser) parseBlockChild() (BlockChild, error) {
	p.skip()
	tk := p.s.Peek()
	if tk.Kind == token.KindKeyword && (tk.Keyword == token.KwIf || tk.Keyword == token.KwWhile ||
		tk.Keyword == token.KwDo || tk.Keyword == token.KwUntil || tk.Keyword == token.KwFor || tk.Keyword == token.KwLoop) {
		return p.parseControlFlow()
	}
	if binding, ok, err := p.tryBinding(); err != nil {
		return nil, err
	} else if ok {
		return binding, nil
	}
	return p.parseExpression()
}

// tryBinding distinguishes `[mut] [Type] Ident [:= Expr]` from a bare
// expression statement by attempting a type-then-identifier read and
// reinterpreting a lone leading identifier as the binding name with an
// inferred type when no second identifier follows it (spec.md §4.4).
func (p *Parser) tryBinding() (*Binding, bool, error) {
	mark := p.s.Pos()
	p.skip()
	start := p.curSpan()
	mut := false
	if _, ok := p.tryKeyword(token.KwMut); ok {
		mut = true
	}

	ty, tyOk, err := p.tryType()
	if err != nil {
		return nil, false, err
	}
	if !tyOk {
		if mut {
			return nil, false, &ExpectedError{What: "binding after 'mut'", Sp: p.curSpan()}
		}
		p.s.Seek(mark)
		return nil, false, nil
	}

	if q, isBareName := ty.(*Qualified); isBareName && !q.Implied && len(q.Parts) == 1 && len(q.Args) == 0 {
		if _, ok := p.tryPunctTok(token.PunctColon); ok {
			// `name : Type [:= Expr]`: the type follows the binding name.
			annTy, err := p.parseType("binding type after ':'")
			if err != nil {
				return nil, false, err
			}
			b := &Binding{Mut: mut, Ty: annTy, Name: q.Parts[0], Sp: start.Cover(annTy.Span())}
			if b.Init, _, err = p.tryBindingInit(); err != nil {
				return nil, false, err
			}
			if b.Init != nil {
				b.Sp = start.Cover(b.Init.Span())
			}
			return b, true, nil
		}
		// Could be "Type Ident" or just a bare identifier used as an
		// expression/name — decide by whether another identifier follows.
		if _, _, ok := p.tryIdentifierLookahead(); !ok {
			p.skip()
			if tk := p.s.Peek(); !mut && (tk.Kind != token.KindOperator || tk.Operator != token.OpDefine) {
				p.s.Seek(mark)
				return nil, false, nil
			}
			// `[mut] <ident> :=` with no second identifier: the identifier
			// IS the binding name, with an inferred type.
			name := q.Parts[0]
			init, hasInit, err := p.tryBindingInit()
			if err != nil {
				return nil, false, err
			}
			if !hasInit {
				return nil, false, &ExpectedError{What: "':=' initializer (binding has no type)", Sp: p.curSpan()}
			}
			return &Binding{Mut: mut, Name: name, Init: init, Sp: start.Cover(init.Span())}, true, nil
		}
	}

	name, nameSp, err := p.expectIdentifier("binding name")
	if err != nil {
		return nil, false, err
	}
	init, hasInit, err := p.tryBindingInit()
	if err != nil {
		return nil, false, err
	}
	end := nameSp
	if hasInit {
		end = init.Span()
	}
	return &Binding{Mut: mut, Ty: ty, Name: name, Init: init, Sp: start.Cover(end)}, true, nil
}

func (p *Parser) tryIdentifierLookahead() (string, span.Span, bool) {
	mark := p.s.Pos()
	name, sp, ok := p.tryIdentifier()
	p.s.Seek(mark)
	return name, sp, ok
}

func (p *Parser) tryBindingInit() (Expr, bool, error) {
	if _, ok := p.tryOperatorTok(token.OpDefine); !ok {
		return nil, false, nil
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// --- Control flow --------------------------------------------------------

func (p *Parser) parseControlFlow() (*ControlFlow, error) {
	tk := p.s.Peek()
	switch tk.Keyword {
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		p.s.Next()
		cond, body, err := p.condThenBlock()
		if err != nil {
			return nil, err
		}
		return &ControlFlow{Kind: CFWhile, Cond: cond, Body: body, Sp: tk.Span.Cover(body.Sp)}, nil
	case token.KwUntil:
		p.s.Next()
		cond, body, err := p.condThenBlock()
		if err != nil {
			return nil, err
		}
		return &ControlFlow{Kind: CFUntil, Cond: cond, Body: body, Sp: tk.Span.Cover(body.Sp)}, nil
	case token.KwFor:
		p.s.Next()
		cond, body, err := p.condThenBlock()
		if err != nil {
			return nil, err
		}
		return &ControlFlow{Kind: CFFor, Cond: cond, Body: body, Sp: tk.Span.Cover(body.Sp)}, nil
	case token.KwLoop:
		p.s.Next()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ControlFlow{Kind: CFLoop, Body: body, Sp: tk.Span.Cover(body.Sp)}, nil
	case token.KwDo:
		p.s.Next()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		kind := CFDoWhile
		if _, ok := p.tryKeyword(token.KwWhile); ok {
			kind = CFDoWhile
		} else if _, ok := p.tryKeyword(token.KwUntil); ok {
			kind = CFDoUntil
		} else {
			return nil, &ExpectedError{What: "'while' or 'until' after do-block", Sp: p.curSpan()}
		}
		cond, err := p.parseCondExpr()
		if err != nil {
			return nil, err
		}
		return &ControlFlow{Kind: kind, Cond: cond, Body: body, Sp: tk.Span.Cover(cond.Span())}, nil
	}
	return nil, &ExpectedError{What: "control flow", Sp: tk.Span}
}

func (p *Parser) condThenBlock() (Expr, *Block, error) {
	cond, err := p.parseCondExpr()
	if err != nil {
		return nil, nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}
	return cond, body, nil
}

// parseCondExpr parses an Expression with struct-initializer suppressed,
// since a bare `T { ... }` in condition position is the block, not a
// struct literal.
func (p *Parser) parseCondExpr() (Expr, error) {
	prev := p.noStructInit
	p.noStructInit = true
	defer func() { p.noStructInit = prev }()
	return p.parseExpression()
}

func (p *Parser) parseIf() (*ControlFlow, error) {
	kw, _ := p.tryKeyword(token.KwIf)
	cond, body, err := p.condThenBlock()
	if err != nil {
		return nil, err
	}
	cf := &ControlFlow{Kind: CFIf, Cond: cond, Body: body, Sp: kw.Span.Cover(body.Sp)}
	if _, ok := p.tryKeyword(token.KwElse); ok {
		p.skip()
		beforeIf := p.s.Pos()
		if _, ok := p.tryKeyword(token.KwIf); ok {
			p.s.Seek(beforeIf) // un-consume 'if' so parseIf sees it
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			cf.Else = elseIf
			cf.Sp = cf.Sp.Cover(elseIf.Sp)
			return cf, nil
		}
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		cf.Else = elseBlock
		cf.Sp = cf.Sp.Cover(elseBlock.Sp)
	}
	return cf, nil
}

// --- Function declarations & functions ------------------------------------

func (p *Parser) parseFunctionDecl() (FunctionDecl, error) {
	name, nameSp, err := p.expectIdentifier("function name")
	if err != nil {
		return FunctionDecl{}, err
	}
	end := nameSp
	var returnTy TypeExpr
	if _, ok := p.tryPunctTok(token.PunctArrow); ok {
		returnTy, err = p.parseType("return type after '->'")
		if err != nil {
			return FunctionDecl{}, err
		}
		end = returnTy.Span()
	}
	var args []Arg
	if _, ok := p.tryPunctTok(token.PunctColon); ok {
		for {
			argName, argSp, err := p.expectIdentifier("argument name")
			if err != nil {
				return FunctionDecl{}, err
			}
			if _, err := p.expectPunct(token.PunctColon, "':' before argument type"); err != nil {
				return FunctionDecl{}, err
			}
			argTy, err := p.parseType("argument type")
			if err != nil {
				return FunctionDecl{}, err
			}
			args = append(args, Arg{Name: argName, Ty: argTy, Sp: argSp.Cover(argTy.Span())})
			end = argTy.Span()
			if _, ok := p.tryPunctTok(token.PunctComma); ok {
				continue
			}
			break
		}
	}
	return FunctionDecl{Name: name, ReturnTy: returnTy, Args: args, Sp: nameSp.Cover(end)}, nil
}

func (p *Parser) parseTemplateScope() (*TemplateScope, error) {
	kw, _ := p.tryKeyword(token.KwTemplate)
	if _, err := p.expectOperator(token.OpLt, "'<' to open template parameters"); err != nil {
		return nil, err
	}
	var params []string
	for {
		name, _, err := p.expectIdentifier("template parameter")
		if err != nil {
			return nil, err
		}
		params = append(params, name)
		if _, ok := p.tryPunctTok(token.PunctComma); ok {
			continue
		}
		break
	}
	gt, err := p.expectOperator(token.OpGt, "'>' to close template parameters")
	if err != nil {
		return nil, err
	}
	return &TemplateScope{Params: params, Sp: kw.Span.Cover(gt.Span)}, nil
}

func (p *Parser) parseFunction() (*Function, error) {
	kw, _ := p.tryKeyword(token.KwFn)
	decl, err := p.parseFunctionDecl()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Function{Decl: decl, Body: body, Sp: kw.Span.Cover(body.Sp)}, nil
}

// --- Struct / Interface / Class / Impl ------------------------------------

func (p *Parser) parseStruct() (*Struct, error) {
	kw, _ := p.tryKeyword(token.KwStruct)
	name, _, err := p.expectIdentifier("struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectGroup(token.Open, token.Brace, "'{'"); err != nil {
		return nil, err
	}
	var fields []StructField
	for {
		if closeTk, ok := p.tryGroup(token.Close, token.Brace); ok {
			return &Struct{Name: name, Fields: fields, Sp: kw.Span.Cover(closeTk.Span)}, nil
		}
		fname, fsp, err := p.expectIdentifier("field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(token.PunctColon, "':' before field type"); err != nil {
			return nil, err
		}
		fty, err := p.parseType("field type")
		if err != nil {
			return nil, err
		}
		fields = append(fields, StructField{Name: fname, Ty: fty, Sp: fsp.Cover(fty.Span())})
		if _, err := p.expectPunct(token.PunctSemicolon, "';' after field"); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseInterface() (*Interface, error) {
	kw, _ := p.tryKeyword(token.KwInterface)
	name, _, err := p.expectIdentifier("interface name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectGroup(token.Open, token.Brace, "'{'"); err != nil {
		return nil, err
	}
	var methods []InterfaceMethod
	for {
		if closeTk, ok := p.tryGroup(token.Close, token.Brace); ok {
			return &Interface{Name: name, Methods: methods, Sp: kw.Span.Cover(closeTk.Span)}, nil
		}
		decl, err := p.parseFunctionDecl()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(token.PunctSemicolon, "';' after method signature"); err != nil {
			return nil, err
		}
		methods = append(methods, InterfaceMethod{Decl: decl, Sp: decl.Sp})
	}
}

func (p *Parser) tryVisibility() Visibility {
	if _, ok := p.tryKeyword(token.KwPublic); ok {
		return VisPublic
	}
	if _, ok := p.tryKeyword(token.KwProtected); ok {
		return VisProtected
	}
	if _, ok := p.tryKeyword(token.KwPrivate); ok {
		return VisPrivate
	}
	return VisPrivate
}

func (p *Parser) parseClassBody() ([]ClassField, []ClassMethod, span.Span, error) {
	var fields []ClassField
	var methods []ClassMethod
	for {
		if closeTk, ok := p.tryGroup(token.Close, token.Brace); ok {
			return fields, methods, closeTk.Span, nil
		}
		start := p.curSpan()
		vis := p.tryVisibility()
		static := false
		abstract := false
		mut := false
		for {
			if _, ok := p.tryKeyword(token.KwStatic); ok {
				static = true
				continue
			}
			if _, ok := p.tryKeyword(token.KwAbstract); ok {
				abstract = true
				continue
			}
			if _, ok := p.tryKeyword(token.KwMut); ok {
				mut = true
				continue
			}
			break
		}
		if _, ok := p.tryKeyword(token.KwFn); ok {
			decl, err := p.parseFunctionDecl()
			if err != nil {
				return nil, nil, span.Span{}, err
			}
			var body *Block
			if !abstract {
				body, err = p.parseBlock()
				if err != nil {
					return nil, nil, span.Span{}, err
				}
			} else if _, err := p.expectPunct(token.PunctSemicolon, "';' after abstract method signature"); err != nil {
				return nil, nil, span.Span{}, err
			}
			end := decl.Sp
			if body != nil {
				end = body.Sp
			}
			methods = append(methods, ClassMethod{Vis: vis, Static: static, Abstract: abstract, Mut: mut,
				Fn: Function{Decl: decl, Body: body, Sp: start.Cover(end)}, Sp: start.Cover(end)})
			continue
		}
		fname, fsp, err := p.expectIdentifier("field or method name")
		if err != nil {
			return nil, nil, span.Span{}, err
		}
		if _, err := p.expectPunct(token.PunctColon, "':' before field type"); err != nil {
			return nil, nil, span.Span{}, err
		}
		fty, err := p.parseType("field type")
		if err != nil {
			return nil, nil, span.Span{}, err
		}
		if _, err := p.expectPunct(token.PunctSemicolon, "';' after field"); err != nil {
			return nil, nil, span.Span{}, err
		}
		fields = append(fields, ClassField{Vis: vis, Ty: fty, Name: fname, Sp: fsp.Cover(fty.Span())})
	}
}

func (p *Parser) parseClass() (*Class, error) {
	kw, _ := p.tryKeyword(token.KwClass)
	name, _, err := p.expectIdentifier("class name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectGroup(token.Open, token.Brace, "'{'"); err != nil {
		return nil, err
	}
	fields, methods, end, err := p.parseClassBody()
	if err != nil {
		return nil, err
	}
	return &Class{Name: name, Fields: fields, Methods: methods, Sp: kw.Span.Cover(end)}, nil
}

func (p *Parser) parseImpl() (*Impl, error) {
	kw, _ := p.tryKeyword(token.KwImpl)
	typeName, err := p.tryQualified()
	if err != nil {
		return nil, err
	}
	if typeName == nil {
		return nil, &ExpectedError{What: "type name after 'impl'", Sp: p.curSpan()}
	}
	var traitName *Qualified
	if _, ok := p.tryPunctTok(token.PunctColon); ok {
		traitName, err = p.tryQualified()
		if err != nil {
			return nil, err
		}
		if traitName == nil {
			return nil, &ExpectedError{What: "trait name after ':'", Sp: p.curSpan()}
		}
	}
	if _, err := p.expectGroup(token.Open, token.Brace, "'{'"); err != nil {
		return nil, err
	}
	_, methods, end, err := p.parseClassBody()
	if err != nil {
		return nil, err
	}
	return &Impl{TypeName: typeName, TraitName: traitName, Methods: methods, Sp: kw.Span.Cover(end)}, nil
}

// --- Extern & Import -------------------------------------------------------

func (p *Parser) parseExtern() (*Extern, error) {
	kw, _ := p.tryKeyword(token.KwExtern)
	name, nameSp, err := p.expectIdentifier("extern function name")
	if err != nil {
		return nil, err
	}
	end := nameSp
	var returnTy TypeExpr
	if _, ok := p.tryPunctTok(token.PunctArrow); ok {
		returnTy, err = p.parseType("return type after '->'")
		if err != nil {
			return nil, err
		}
		end = returnTy.Span()
	}
	var args []Arg
	variadic := false
	if _, ok := p.tryPunctTok(token.PunctColon); ok {
		for {
			if ell, ok := p.tryPunctTok(token.PunctEllipsis); ok {
				variadic = true
				end = ell.Span
				break
			}
			argName, argSp, err := p.expectIdentifier("argument name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(token.PunctColon, "':' before argument type"); err != nil {
				return nil, err
			}
			argTy, err := p.parseType("argument type")
			if err != nil {
				return nil, err
			}
			args = append(args, Arg{Name: argName, Ty: argTy, Sp: argSp.Cover(argTy.Span())})
			end = argTy.Span()
			if _, ok := p.tryPunctTok(token.PunctComma); ok {
				continue
			}
			break
		}
	}
	decl := FunctionDecl{Name: name, ReturnTy: returnTy, Args: args, Sp: nameSp.Cover(end)}
	return &Extern{Decl: decl, Variadic: variadic, Sp: kw.Span.Cover(end)}, nil
}

func (p *Parser) parseImportPattern() (ImportPattern, error) {
	p.skip()
	if open, ok := p.tryGroup(token.Open, token.Brace); ok {
		var group []ImportPattern
		for {
			sub, err := p.parseImportPattern()
			if err != nil {
				return ImportPattern{}, err
			}
			group = append(group, sub)
			if _, ok := p.tryPunctTok(token.PunctComma); ok {
				continue
			}
			break
		}
		closeTk, err := p.expectGroup(token.Close, token.Brace, "'}'")
		if err != nil {
			return ImportPattern{}, err
		}
		return ImportPattern{Kind: ImportGroup, Group: group, Sp: open.Span.Cover(closeTk.Span)}, nil
	}
	name, nameSp, err := p.expectIdentifier("import name")
	if err != nil {
		return ImportPattern{}, err
	}
	if _, ok := p.tryPunctTok(token.PunctDoubleColon); ok {
		inner, err := p.parseImportPattern()
		if err != nil {
			return ImportPattern{}, err
		}
		return ImportPattern{Kind: ImportQualified, Qualifier: name, Inner: &inner, Sp: nameSp.Cover(inner.Sp)}, nil
	}
	alias := ""
	end := nameSp
	if _, ok := p.tryKeyword(token.KwAs); ok {
		aliasName, aliasSp, err := p.expectIdentifier("alias after 'as'")
		if err != nil {
			return ImportPattern{}, err
		}
		alias = aliasName
		end = aliasSp
	}
	return ImportPattern{Kind: ImportSingle, Name: name, Alias: alias, Sp: nameSp.Cover(end)}, nil
}

func (p *Parser) parseImport() (*Import, error) {
	kw, _ := p.tryKeyword(token.KwImport)
	pattern, err := p.parseImportPattern()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(token.KwFrom, "'from' after import pattern"); err != nil {
		return nil, err
	}
	p.skip()
	tk := p.s.Peek()
	if tk.Kind != token.KindLiteral || tk.LiteralKind != token.LiteralUnicodeString {
		return nil, &ExpectedError{What: "string path after 'from'", Sp: p.curSpan()}
	}
	p.s.Next()
	return &Import{Pattern: pattern, Path: tk.StringValue, Sp: kw.Span.Cover(tk.Span)}, nil
}

// --- Top-level structures --------------------------------------------------

// parseTopLevelStructure dispatches on the leading keyword. It returns a
// slice because a `template<...>` prefix on a non-Function structure
// yields two sibling children: the TemplateScope marker and the wrapped
// structure (spec.md §3 lists TemplateScope as its own GlobalNamespace
// variant, distinct from Function's own optional Template field used when
// the wrapped structure is itself a Function).
func (p *Parser) parseTopLevelStructure() ([]TopLevel, error) {
	p.skip()
	tk := p.s.Peek()

	if tk.Kind == token.KindKeyword && tk.Keyword == token.KwExport {
		p.s.Next()
		inner, err := p.parseTopLevelStructure()
		if err != nil {
			return nil, err
		}
		if len(inner) == 0 {
			return nil, &ExpectedError{What: "structure after 'export'", Sp: p.curSpan()}
		}
		last := inner[len(inner)-1]
		inner[len(inner)-1] = &Exported{Inner: last, Sp: tk.Span.Cover(last.Span())}
		return inner, nil
	}

	if tk.Kind == token.KindKeyword && tk.Keyword == token.KwTemplate {
		ts, err := p.parseTemplateScope()
		if err != nil {
			return nil, err
		}
		wrapped, err := p.parseTopLevelStructure()
		if err != nil {
			return nil, err
		}
		if len(wrapped) == 1 {
			if fn, ok := wrapped[0].(*Function); ok {
				fn.Template = ts
				fn.Sp = ts.Sp.Cover(fn.Sp)
				return []TopLevel{fn}, nil
			}
		}
		return append([]TopLevel{ts}, wrapped...), nil
	}

	if tk.Kind != token.KindKeyword {
		return nil, &ExpectedError{What: "top-level structure", Sp: tk.Span}
	}

	switch tk.Keyword {
	case token.KwNamespace:
		p.s.Next()
		name, _, err := p.expectIdentifier("namespace name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expectGroup(token.Open, token.Brace, "'{'"); err != nil {
			return nil, err
		}
		var children []TopLevel
		for {
			if closeTk, ok := p.tryGroup(token.Close, token.Brace); ok {
				return []TopLevel{&Namespace{Name: name, Children: children, Sp: tk.Span.Cover(closeTk.Span)}}, nil
			}
			p.skip()
			if _, ok := p.tryPunctTok(token.PunctSemicolon); ok {
				continue
			}
			kids, err := p.parseTopLevelStructure()
			if err != nil {
				return nil, err
			}
			children = append(children, kids...)
		}
	case token.KwFn:
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		return []TopLevel{fn}, nil
	case token.KwType:
		p.s.Next()
		name, _, err := p.expectIdentifier("type alias name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOperator(token.OpAssign, "'=' in type alias"); err != nil {
			return nil, err
		}
		target, err := p.parseType("type alias target")
		if err != nil {
			return nil, err
		}
		return []TopLevel{&TypeAlias{Name: name, Target: target, Sp: tk.Span.Cover(target.Span())}}, nil
	case token.KwInterface:
		iface, err := p.parseInterface()
		if err != nil {
			return nil, err
		}
		return []TopLevel{iface}, nil
	case token.KwStruct:
		st, err := p.parseStruct()
		if err != nil {
			return nil, err
		}
		return []TopLevel{st}, nil
	case token.KwClass:
		cl, err := p.parseClass()
		if err != nil {
			return nil, err
		}
		return []TopLevel{cl}, nil
	case token.KwImpl:
		impl, err := p.parseImpl()
		if err != nil {
			return nil, err
		}
		return []TopLevel{impl}, nil
	case token.KwExtern:
		ext, err := p.parseExtern()
		if err != nil {
			return nil, err
		}
		return []TopLevel{ext}, nil
	case token.KwImport:
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}
		return []TopLevel{imp}, nil
	}
	return nil, &ExpectedError{What: "top-level structure", Sp: tk.Span}
}
