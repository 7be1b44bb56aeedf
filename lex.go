package mathexpr

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is an integer or real token.
	tokenNum
	// tokenIdent is a variable, function, or node name.
	tokenIdent
	// tokenStr is a quoted string literal. Strings are lexed only so that
	// they can be reported as unsupported rather than as garbage.
	tokenStr
	// tokenOp is an operator, including the keyword operators.
	tokenOp
	// tokenOpen is an open parenthesis or square bracket.
	tokenOpen
	// tokenClose is a close parenthesis or square bracket.
	tokenClose
	// tokenSep is an argument or element separator.
	tokenSep
	// tokenDot is the dot of an attribute reference.
	tokenDot
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenEOF:
		return "EOF"
	case tokenNum:
		return "Num"
	case tokenIdent:
		return "Ident"
	case tokenStr:
		return "Str"
	case tokenOp:
		return "Op"
	case tokenOpen:
		return "Open"
	case tokenClose:
		return "Close"
	case tokenSep:
		return "Sep"
	case tokenDot:
		return "Dot"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Operators contains the runes which begin operators.
const Operators = "+-*/%^&|~<>=!@"

// isOp2 reports whether s is a two-rune operator.
func isOp2(s string) bool {
	switch s {
	case "**", "//", "<<", ">>", "<=", ">=", "==", "!=":
		return true
	}
	return false
}

// keywordOps are the words that lex as operators.
var keywordOps = map[string]bool{
	"and":  true,
	"or":   true,
	"not":  true,
	"in":   true,
	"is":   true,
	"if":   true,
	"else": true,
}

// reserved are the words that cannot be names and begin no expression.
var reserved = map[string]bool{
	"as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true,
	"del": true, "elif": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "import": true,
	"lambda": true, "nonlocal": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true,
	"yield": true,
}

// isStrPrefix reports whether s can prefix a string literal, as in r"x".
func isStrPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	p    lexToken
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("mathexpr: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("mathexpr: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. The first time EOF is encountered
// before any non-whitespace characters, the result is an EOF token with a nil
// error. Subsequent times, if the EOF token is not pushed, the result is an
// empty token with io.EOF.
func (l *lexer) next() (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	defer l.buf.Reset()
	tok := lexToken{pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			tok.pos++
			continue
		case '0' <= r && r <= '9':
			l.unreadRune()
			if err := l.scanNum(false); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenNum
			return tok, nil
		case r == '.':
			// A dot begins a number like .5 or separates an attribute.
			s, err := l.readRune()
			if err != nil && !errors.Is(err, io.EOF) {
				return tok, err
			}
			if err == nil {
				l.unreadRune()
				if '0' <= s && s <= '9' {
					l.buf.WriteRune(r)
					if err := l.scanNum(true); err != nil {
						return tok, err
					}
					tok.text = l.buf.String()
					tok.kind = tokenNum
					return tok, nil
				}
			}
			tok.text = "."
			tok.kind = tokenDot
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			text := l.buf.String()
			switch {
			case keywordOps[text]:
				tok.text = text
				tok.kind = tokenOp
				return tok, nil
			case reserved[text]:
				return tok, l.error("keyword")
			case isStrPrefix(text):
				q, err := l.readRune()
				if err != nil && !errors.Is(err, io.EOF) {
					return tok, err
				}
				if err == nil && (q == '\'' || q == '"') {
					l.buf.WriteRune(q)
					if err := l.scanStr(q); err != nil {
						return tok, err
					}
					tok.text = l.buf.String()
					tok.kind = tokenStr
					return tok, nil
				}
				if err == nil {
					l.unreadRune()
				}
			}
			tok.text = text
			tok.kind = tokenIdent
			return tok, nil
		case r == '\'', r == '"':
			l.buf.WriteRune(r)
			if err := l.scanStr(r); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenStr
			return tok, nil
		case r == ',':
			tok.text = ","
			tok.kind = tokenSep
			return tok, nil
		case r == '(', r == '[':
			tok.text = string(r)
			tok.kind = tokenOpen
			return tok, nil
		case r == ')', r == ']':
			tok.text = string(r)
			tok.kind = tokenClose
			return tok, nil
		case strings.ContainsRune(Operators, r):
			l.buf.WriteRune(r)
			s, err := l.readRune()
			switch {
			case err == nil && isOp2(string(r)+string(s)):
				l.buf.WriteRune(s)
			case err == nil:
				l.unreadRune()
			case !errors.Is(err, io.EOF):
				return tok, err
			}
			if t := l.buf.String(); t == "=" || t == "!" {
				// Assignment is a statement, and ! is only part of !=.
				return tok, l.error("operator")
			}
			tok.text = l.buf.String()
			tok.kind = tokenOp
			return tok, nil
		default:
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

// scanNum scans a number. If dot is true, the number's leading dot is already
// in the buffer.
func (l *lexer) scanNum(dot bool) error {
	var dig, e, le, ed bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if unicode.IsSpace(r) {
			l.unreadRune()
			break
		}
		if r == '+' || r == '-' {
			// + or - anywhere other than immediately following an exponent
			// marker means a new token, as it is an operator.
			if !le {
				l.unreadRune()
				break
			}
			le = false
			l.buf.WriteRune(r)
			continue
		}
		if strings.ContainsRune(Operators+"()[],", r) {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
		switch r {
		case '.':
			if dot || e {
				return l.error("number")
			}
			dot = true
			le = false
		case 'e', 'E':
			if !dig || e {
				return l.error("number")
			}
			e = true
			le = true
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if e {
				ed = true
			} else {
				dig = true
			}
			le = false
		default:
			return l.error("number")
		}
	}
	if (!dig && !ed) || (e && !ed) {
		return l.error("number")
	}
	return nil
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				break
			}
			return err
		}
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			l.buf.WriteRune(r)
			continue
		}
		l.unreadRune()
		break
	}
	return nil
}

// scanStr scans the remainder of a string literal opened with quote.
func (l *lexer) scanStr(quote rune) error {
	esc := false
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return l.error("string")
			}
			return err
		}
		l.buf.WriteRune(r)
		switch {
		case esc:
			esc = false
		case r == '\\':
			esc = true
		case r == quote:
			return nil
		}
	}
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "string", "operator", "keyword", or the empty string (if a token kind
	// hadn't been decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}

func (err *LexError) ErrorKind() Kind {
	return KindSyntax
}
