package mathexpr

import (
	"io"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t  ", nil, 0},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenNum, pos: 1}}, 0},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1}}, 0},
		{"1 0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1.0", []lexToken{{text: "1.0", kind: tokenNum, pos: 1}}, 0},
		{"1.", []lexToken{{text: "1.", kind: tokenNum, pos: 1}}, 0},
		{"-1", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, 0},
		{"1e3", []lexToken{{text: "1e3", kind: tokenNum, pos: 1}}, 0},
		{"2.5E-3", []lexToken{{text: "2.5E-3", kind: tokenNum, pos: 1}}, 0},
		{"1e", []lexToken{{pos: 1}}, 1},
		{"1e+1", []lexToken{{text: "1e+1", kind: tokenNum, pos: 1}}, 0},
		{"1.1.1", []lexToken{{pos: 1}, {text: "1", kind: tokenNum, pos: 5}}, 1},
		{".", []lexToken{{text: ".", kind: tokenDot, pos: 1}}, 0},
		{".5", []lexToken{{text: ".5", kind: tokenNum, pos: 1}}, 0},
		{"1+0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"(1)", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: ")", kind: tokenClose, pos: 3}}, 0},
		{"1a", []lexToken{{pos: 1}}, 1},
		// identifiers
		{"a", []lexToken{{text: "a", kind: tokenIdent, pos: 1}}, 0},
		{"e1", []lexToken{{text: "e1", kind: tokenIdent, pos: 1}}, 0},
		{"_1234_", []lexToken{{text: "_1234_", kind: tokenIdent, pos: 1}}, 0},
		{"a.width", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: ".", kind: tokenDot, pos: 2}, {text: "width", kind: tokenIdent, pos: 3}}, 0},
		{"KSampler.steps", []lexToken{{text: "KSampler", kind: tokenIdent, pos: 1}, {text: ".", kind: tokenDot, pos: 9}, {text: "steps", kind: tokenIdent, pos: 10}}, 0},
		{"a . b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: ".", kind: tokenDot, pos: 3}, {text: "b", kind: tokenIdent, pos: 5}}, 0},
		{"round(", []lexToken{{text: "round", kind: tokenIdent, pos: 1}, {text: "(", kind: tokenOpen, pos: 6}}, 0},
		{"a.", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: ".", kind: tokenDot, pos: 2}}, 0},
		{"a..b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: ".", kind: tokenDot, pos: 2}, {text: ".", kind: tokenDot, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"a.1", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: ".1", kind: tokenNum, pos: 2}}, 0},
		// keywords
		{"not", []lexToken{{text: "not", kind: tokenOp, pos: 1}}, 0},
		{"x if y else z", []lexToken{{text: "x", kind: tokenIdent, pos: 1}, {text: "if", kind: tokenOp, pos: 3}, {text: "y", kind: tokenIdent, pos: 6}, {text: "else", kind: tokenOp, pos: 8}, {text: "z", kind: tokenIdent, pos: 13}}, 0},
		{"True", []lexToken{{text: "True", kind: tokenIdent, pos: 1}}, 0},
		{"notx", []lexToken{{text: "notx", kind: tokenIdent, pos: 1}}, 0},
		{"lambda", []lexToken{{pos: 1}}, 1},
		// strings
		{`"x"`, []lexToken{{text: `"x"`, kind: tokenStr, pos: 1}}, 0},
		{`'a\'b'`, []lexToken{{text: `'a\'b'`, kind: tokenStr, pos: 1}}, 0},
		{`"x`, []lexToken{{pos: 1}}, 1},
		{`r"x"`, []lexToken{{text: `r"x"`, kind: tokenStr, pos: 1}}, 0},
		{`Rb'x'`, []lexToken{{text: `Rb'x'`, kind: tokenStr, pos: 1}}, 0},
		{"r", []lexToken{{text: "r", kind: tokenIdent, pos: 1}}, 0},
		{`x"y"`, []lexToken{{text: "x", kind: tokenIdent, pos: 1}, {text: `"y"`, kind: tokenStr, pos: 2}}, 0},
		// operators
		{"+", []lexToken{{text: "+", kind: tokenOp, pos: 1}}, 0},
		{"++", []lexToken{{text: "+", kind: tokenOp, pos: 1}, {text: "+", kind: tokenOp, pos: 2}}, 0},
		{"**", []lexToken{{text: "**", kind: tokenOp, pos: 1}}, 0},
		{"***", []lexToken{{text: "**", kind: tokenOp, pos: 1}, {text: "*", kind: tokenOp, pos: 3}}, 0},
		{"//", []lexToken{{text: "//", kind: tokenOp, pos: 1}}, 0},
		{"<<>>", []lexToken{{text: "<<", kind: tokenOp, pos: 1}, {text: ">>", kind: tokenOp, pos: 3}}, 0},
		{"a^b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "^", kind: tokenOp, pos: 2}, {text: "b", kind: tokenIdent, pos: 3}}, 0},
		{"<", []lexToken{{text: "<", kind: tokenOp, pos: 1}}, 0},
		{"<=>=", []lexToken{{text: "<=", kind: tokenOp, pos: 1}, {text: ">=", kind: tokenOp, pos: 3}}, 0},
		{"==!=", []lexToken{{text: "==", kind: tokenOp, pos: 1}, {text: "!=", kind: tokenOp, pos: 3}}, 0},
		{"<>", []lexToken{{text: "<", kind: tokenOp, pos: 1}, {text: ">", kind: tokenOp, pos: 2}}, 0},
		{"@", []lexToken{{text: "@", kind: tokenOp, pos: 1}}, 0},
		{"!", []lexToken{{pos: 1}}, 1},
		// brackets
		{"a[0]", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "[", kind: tokenOpen, pos: 2}, {text: "0", kind: tokenNum, pos: 3}, {text: "]", kind: tokenClose, pos: 4}}, 0},
		{"[1]", []lexToken{{text: "[", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: "]", kind: tokenClose, pos: 3}}, 0},
		// separators
		{"a,b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: ",", kind: tokenSep, pos: 2}, {text: "b", kind: tokenIdent, pos: 3}}, 0},
		// erroneous symbols
		{"$", []lexToken{{pos: 1}}, 1},
		{"=", []lexToken{{pos: 1}}, 1},
		{"a$", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {pos: 2}}, 1},
		{"$a", []lexToken{{pos: 1}, {text: "a", kind: tokenIdent, pos: 2}}, 1},
		{"$$", []lexToken{{pos: 1}, {pos: 2}}, 2},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		for _, want := range c.tokens {
			got, err := scan.next()
			if err == io.EOF {
				t.Errorf("scanning %q: expected token %v but got EOF", c.src, want)
				continue
			}
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
			if err != nil {
				if c.errs > 0 {
					c.errs--
					continue
				}
				t.Errorf("scanning %q: unexpected error %v", c.src, err)
			}
		}
		for got, err := scan.next(); err != io.EOF; got, err = scan.next() {
			if got.kind == tokenEOF {
				continue
			}
			if c.errs > 0 {
				c.errs--
			}
			t.Errorf("scanning %q: extra token %v with error: %v", c.src, got, err)
		}
		if c.errs > 0 {
			t.Errorf("scanning %q: not enough errors", c.src)
		}
	}
}

func TestLexErrorKind(t *testing.T) {
	cases := []struct {
		src  string
		kind string
	}{
		{"1e", "number"},
		{"1a", "number"},
		{"lambda: 1", "keyword"},
		{"[x for x in a]", "keyword"},
		{`"x`, "string"},
		{"a ! b", "operator"},
		{"a = 1", "operator"},
		{"a $ 1", ""},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			_, err := ParseString(c.src)
			lerr, ok := err.(*LexError)
			if !ok {
				t.Fatalf("%q gave %#v, not *LexError", c.src, err)
			}
			if lerr.Kind != c.kind {
				t.Errorf("%q gave kind %q, want %q", c.src, lerr.Kind, c.kind)
			}
			if KindOf(err) != KindSyntax {
				t.Errorf("%q classified as %v", c.src, KindOf(err))
			}
		})
	}
}
