package token

// KeywordTag is the closed set of reserved words (spec.md §6).
type KeywordTag uint8

const (
	KwFn KeywordTag = iota
	KwType
	KwImport
	KwExport
	KwFrom
	KwAs
	KwStruct
	KwClass
	KwPrivate
	KwProtected
	KwPublic
	KwAbstract
	KwStatic
	KwInterface
	KwNamespace
	KwImplements
	KwImpl
	KwExtern
	KwExtends
	KwTemplate
	KwWhile
	KwFor
	KwIf
	KwElse
	KwDo
	KwLoop
	KwUntil
	KwBreak
	KwContinue
	KwReturn
	KwConst
	KwMut
	KwSatisfies
	KwInfer
	KwSwitch
	KwMatch
	KwUnless
)

var keywordNames = map[KeywordTag]string{
	KwFn:   "fn",
	KwType: "type", KwImport: "import", KwExport: "export", KwFrom: "from",
	KwAs: "as", KwStruct: "struct", KwClass: "class", KwPrivate: "private",
	KwProtected: "protected", KwPublic: "public", KwAbstract: "abstract",
	KwStatic: "static", KwInterface: "interface", KwNamespace: "namespace",
	KwImplements: "implements", KwImpl: "impl", KwExtern: "extern",
	KwExtends: "extends", KwTemplate: "template", KwWhile: "while",
	KwFor: "for", KwIf: "if", KwElse: "else", KwDo: "do", KwLoop: "loop",
	KwUntil: "until", KwBreak: "break", KwContinue: "continue",
	KwReturn: "return", KwConst: "const", KwMut: "mut",
	KwSatisfies: "satisfies", KwInfer: "infer", KwSwitch: "switch",
	KwMatch: "match", KwUnless: "unless",
}

// keywords maps source spelling to its tag; built once from keywordNames so
// the two tables can never drift.
var keywords = func() map[string]KeywordTag {
	m := make(map[string]KeywordTag, len(keywordNames))
	for tag, name := range keywordNames {
		m[name] = tag
	}
	return m
}()

func (k KeywordTag) String() string { return keywordNames[k] }

// LookupKeyword reports whether ident is a reserved word.
func LookupKeyword(ident string) (KeywordTag, bool) {
	tag, ok := keywords[ident]
	return tag, ok
}

// OperatorTag is the closed set of operator spellings (spec.md §6). Order
// within groups of shared prefixes matters only for documentation; the
// tokenizer resolves ambiguity by longest match, not by this ordering.
type OperatorTag uint8

const (
	OpTilde OperatorTag = iota
	OpNot   // !
	OpMod
	OpModAssign
	OpXor // ^
	OpXorAssign
	OpLogXor // ^^
	OpLogXorAssign
	OpAnd // &
	OpAndAssign
	OpLogAnd // &&
	OpLogAndAssign
	OpMul
	OpMulAssign
	OpPow // **
	OpPowAssign
	OpSub
	OpSubAssign
	OpDec // --
	OpAdd
	OpAddAssign
	OpInc // ++
	OpAssign    // =
	OpEq        // ==
	OpOr        // |
	OpOrAssign  // |=
	OpLogOr     // ||
	OpLogOrAssign
	OpLt
	OpLe
	OpShl // <<
	OpShlAssign
	OpGt
	OpGe
	OpShr // >>
	OpShrAssign
	OpUShr // >>>
	OpUShrAssign
	OpDot
	OpDiv
	OpDivAssign
	OpQuestion
	OpNe   // !=
	OpDefine // :=
)

var operatorNames = map[OperatorTag]string{
	OpTilde: "~", OpNot: "!", OpMod: "%", OpModAssign: "%=",
	OpXor: "^", OpXorAssign: "^=", OpLogXor: "^^", OpLogXorAssign: "^^=",
	OpAnd: "&", OpAndAssign: "&=", OpLogAnd: "&&", OpLogAndAssign: "&&=",
	OpMul: "*", OpMulAssign: "*=", OpPow: "**", OpPowAssign: "**=",
	OpSub: "-", OpSubAssign: "-=", OpDec: "--",
	OpAdd: "+", OpAddAssign: "+=", OpInc: "++",
	OpAssign: "=", OpEq: "==",
	OpOr: "|", OpOrAssign: "|=", OpLogOr: "||", OpLogOrAssign: "||=",
	OpLt: "<", OpLe: "<=", OpShl: "<<", OpShlAssign: "<<=",
	OpGt: ">", OpGe: ">=", OpShr: ">>", OpShrAssign: ">>=",
	OpUShr: ">>>", OpUShrAssign: ">>>=",
	OpDot: ".", OpDiv: "/", OpDivAssign: "/=",
	OpQuestion: "?", OpNe: "!=", OpDefine: ":=",
}

func (o OperatorTag) String() string { return operatorNames[o] }

// operatorsByLength lists every operator spelling grouped so the tokenizer
// can try longest-match first without allocating per call.
var operatorsByLength [][]struct {
	text string
	tag  OperatorTag
}

func init() {
	byLen := map[int][]struct {
		text string
		tag  OperatorTag
	}{}
	maxLen := 0
	for tag, text := range operatorNames {
		byLen[len(text)] = append(byLen[len(text)], struct {
			text string
			tag  OperatorTag
		}{text, tag})
		if len(text) > maxLen {
			maxLen = len(text)
		}
	}
	for l := maxLen; l >= 1; l-- {
		operatorsByLength = append(operatorsByLength, byLen[l])
	}
}

// PunctuationTag is the closed set of punctuation spellings (spec.md §6).
// Note ":=" is classified as OpDefine above, not here, even though spec.md
// lists it among "Punctuation" prose — it participates in the assignment
// precedence level (§4.5) like an operator, so giving it a single
// OperatorTag identity avoids a duplicate representation for the same
// lexeme.
type PunctuationTag uint8

const (
	PunctColon PunctuationTag = iota
	PunctSemicolon
	PunctComma
	PunctEllipsis
	PunctArrow
	PunctDoubleColon
)

var punctuationNames = map[PunctuationTag]string{
	PunctColon: ":", PunctSemicolon: ";", PunctComma: ",",
	PunctEllipsis: "...", PunctArrow: "->", PunctDoubleColon: "::",
}

func (p PunctuationTag) String() string { return punctuationNames[p] }

var punctuationByLength [][]struct {
	text string
	tag  PunctuationTag
}

func init() {
	byLen := map[int][]struct {
		text string
		tag  PunctuationTag
	}{}
	maxLen := 0
	for tag, text := range punctuationNames {
		byLen[len(text)] = append(byLen[len(text)], struct {
			text string
			tag  PunctuationTag
		}{text, tag})
		if len(text) > maxLen {
			maxLen = len(text)
		}
	}
	for l := maxLen; l >= 1; l-- {
		punctuationByLength = append(punctuationByLength, byLen[l])
	}
}

// groupingChars maps a single grouping byte to its side and kind.
var groupingChars = map[byte]struct {
	side GroupingSide
	kind GroupingKind
}{
	'(': {Open, Paren}, ')': {Close, Paren},
	'[': {Open, Bracket}, ']': {Close, Bracket},
	'{': {Open, Brace}, '}': {Close, Brace},
}
