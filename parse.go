package mathexpr

import (
	"io"
	"strings"
)

// Expr = num | name | name '.' name | Call | Neg | Binary | '(' Expr ')'
// Call = name '(' [ Expr { ',' Expr } [ ',' ] ] ')'
// Neg = '-' Expr
// Binary = Expr op Expr
//
// Binary operators from loosest to tightest binding:
//	x if c else y
//	or
//	and
//	(unary) not
//	< > <= >= == != in, not in, is, is not
//	|
//	^
//	&
//	<< >>
//	+ -
//	* / // % @
//	(unary) - + ~
//	**
// Only ** and the conditional are right-associative.
//
// Everything else that reads as a single Python expression also parses but
// fails to evaluate: the operators other than + - * / // % ** ^ and unary -,
// string literals, True, False, None, tuples, lists, subscripts, attributes of
// anything but a name, and calls of anything but a name.

// Expr is a parsed expression that can be evaluated with a context.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the list of variable names used in the expression.
	names []string
}

// Parse parses an expression so it can be evaluated with a context. The
// entire input must be a single expression.
func Parse(src io.RuneScanner) (*Expr, error) {
	scan := lex(src)
	n, err := parseterm(scan, exprprec)
	if err != nil {
		return nil, err
	}
	tok := scan.must()
	if tok.kind == tokenSep && n != nil {
		// 1, 2 is a tuple even without brackets.
		if n, err = parsetuple(scan, n); err != nil {
			return nil, err
		}
		tok = scan.must()
	}
	switch tok.kind {
	case tokenEOF:
		if n == nil {
			// parselhs returns no node only at a close bracket.
			return nil, &EmptyExpressionError{Col: tok.pos}
		}
	default:
		return nil, itShouldNotHaveEndedThisWay(tok)
	}
	names := make(map[string]bool)
	n.vars(names)
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(names)),
	}
	for k := range names {
		ex.names = append(ex.names, k)
	}
	sortstrs(ex.names)
	return &ex, nil
}

// ParseString parses an expression from a string. Line breaks in src are
// treated as spaces, so multi-line input is one expression.
func ParseString(src string) (*Expr, error) {
	return Parse(strings.NewReader(normalize(src)))
}

var lineBreaks = strings.NewReplacer("\n", " ", "\r", " ")

// normalize collapses newline and carriage return characters to spaces.
func normalize(src string) string {
	return lineBreaks.Replace(src)
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// vars adds the variable names and attribute bases under n to names.
func (n *node) vars(names map[string]bool) {
	if n == nil {
		return
	}
	switch n.kind {
	case nodeName, nodeAttr:
		names[n.name] = true
	}
	n.left.vars(names)
	n.right.vars(names)
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, until operator) (*node, error) {
	n, err := parselhs(scan, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenStr, tokenOpen, tokenDot:
			// Juxtaposition is not multiplication.
			return nil, &MissingOperatorError{Col: tok.pos, Text: tok.text}
		case tokenOp:
			if tok.text == "else" {
				// End of the body or condition of a conditional.
				scan.push(tok)
				return n, nil
			}
			if tok, err = opword(scan, tok); err != nil {
				return nil, err
			}
			if tok.text == "if" {
				if !condprec.moreBinding(until) {
					scan.push(tok)
					return n, nil
				}
				if n, err = parsecond(scan, n); err != nil {
					return nil, err
				}
				continue
			}
			// Binary operator.
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.must()
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			n = &node{kind: prec.op, left: n, right: rhs}
			if prec.op == nodeUnsupported {
				n.name = tok.text
			}
		case tokenClose, tokenSep, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("mathexpr: unknown token: " + tok.String())
		}
	}
}

// opword joins the two-word operators not in and is not.
func opword(scan *lexer, tok lexToken) (lexToken, error) {
	if tok.text != "not" && tok.text != "is" {
		return tok, nil
	}
	next, err := scan.next()
	if err != nil {
		return tok, err
	}
	switch {
	case next.kind != tokenOp:
		scan.push(next)
	case tok.text == "not" && next.text == "in", tok.text == "is" && next.text == "not":
		tok.text += " " + next.text
	default:
		scan.push(next)
	}
	return tok, nil
}

// parsecond parses the remainder of a conditional expression with the given
// body, following the if.
func parsecond(scan *lexer, body *node) (*node, error) {
	cond, err := parseterm(scan, condprec)
	if err != nil {
		return nil, err
	}
	end := scan.must()
	if cond == nil {
		return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
	}
	if end.kind != tokenOp || end.text != "else" {
		return nil, &ConditionalError{Col: end.pos, Text: end.text}
	}
	orelse, err := parseterm(scan, elseprec)
	if err != nil {
		return nil, err
	}
	if orelse == nil {
		end := scan.must()
		return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
	}
	n := &node{
		kind: nodeUnsupported,
		name: condText,
		left: body,
		right: &node{
			kind:  nodeArg,
			left:  cond,
			right: &node{kind: nodeArg, left: orelse},
		},
	}
	return n, nil
}

// parselhs parses the first component of a term. I.e., operators are unary
// and any encountered token must be valid as the start of a subexpression.
func parselhs(scan *lexer, until operator) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	var n *node
	switch tok.kind {
	case tokenNum:
		n = &node{kind: nodeNum, name: tok.text}
	case tokenStr:
		// Adjacent string literals are one literal.
		text := tok.text
		for {
			next, err := scan.next()
			if err != nil {
				return nil, err
			}
			if next.kind != tokenStr {
				scan.push(next)
				break
			}
			text += " " + next.text
		}
		n = &node{kind: nodeUnsupported, name: text}
	case tokenIdent:
		n = parseident(tok.text)
	case tokenOp:
		// unary operator
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			if prec.prec < 0 {
				// not cannot be the operand of a tighter operator.
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
			}
			// x**-y -> x**(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			end := scan.must()
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		n = &node{kind: prec.op, left: rhs}
		if prec.op == nodeUnsupported {
			n.name = tok.text
		}
		return n, nil
	case tokenOpen:
		if tok.text == "[" {
			elems, err := parsearglist(scan, tok)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeUnsupported, name: listText, right: elems}
			break
		}
		if n, _, err = parsegroup(scan, tok); err != nil {
			return nil, err
		}
		if n == nil {
			n = &node{kind: nodeUnsupported, name: tupleText}
		}
	case tokenClose:
		// This might be part of niladic func(), so just let the caller decide
		// what to do.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenDot:
		return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("mathexpr: unknown token: " + tok.String())
	}
	return parsetrailers(scan, n)
}

// parsetrailers parses the attribute references, calls, and subscripts that
// follow a primary term, as in a.width, f(x)(y), or (x)[0]. Only an attribute
// or call of a name is supported.
func parsetrailers(scan *lexer, n *node) (*node, error) {
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.kind == tokenDot:
			attr, err := scan.next()
			if err != nil {
				return nil, err
			}
			if attr.kind != tokenIdent || constants[attr.text] {
				return nil, &DotError{Col: attr.pos, Text: attr.text}
			}
			if n.kind == nodeName {
				n = &node{kind: nodeAttr, name: n.name, attr: attr.text}
			} else {
				n = &node{kind: nodeUnsupported, name: attrText, attr: attr.text, left: n}
			}
		case tok.kind == tokenOpen && tok.text == "(":
			args, err := parsearglist(scan, tok)
			if err != nil {
				return nil, err
			}
			if n.kind == nodeName {
				n = &node{kind: nodeCall, name: n.name, right: args}
			} else {
				n = &node{kind: nodeUnsupported, name: callText, left: n, right: args}
			}
		case tok.kind == tokenOpen:
			index, end, err := parsegroup(scan, tok)
			if err != nil {
				return nil, err
			}
			if index == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			n = &node{kind: nodeUnsupported, name: indexText, left: n, right: index}
		default:
			scan.push(tok)
			return n, nil
		}
	}
}

// constants are the names that are literals rather than variables.
var constants = map[string]bool{
	"True":  true,
	"False": true,
	"None":  true,
}

// parseident creates the node for an identifier token.
func parseident(text string) *node {
	if constants[text] {
		return &node{kind: nodeUnsupported, name: text}
	}
	return &node{kind: nodeName, name: text}
}

// parsegroup parses the contents of brackets following open: an expression,
// a tuple, or nothing. If the brackets are empty, the result is nil with no
// error. On success, the closing bracket has been consumed. If the contents
// are not a tuple, it is also returned.
func parsegroup(scan *lexer, open lexToken) (*node, lexToken, error) {
	rhs, err := parseterm(scan, exprprec)
	if err != nil {
		return nil, lexToken{}, unclosed(err, open)
	}
	end := scan.must()
	switch end.kind {
	case tokenSep:
		rest, err := parsearglist(scan, open)
		if err != nil {
			return nil, lexToken{}, err
		}
		n := &node{
			kind:  nodeUnsupported,
			name:  tupleText,
			right: &node{kind: nodeArg, left: rhs, right: rest},
		}
		return n, lexToken{}, nil
	case tokenClose:
		if end.text != closer(open.text) {
			return nil, lexToken{}, &BracketError{Col: end.pos, Left: open.text, Right: end.text}
		}
		return rhs, end, nil
	case tokenEOF:
		return nil, lexToken{}, &BracketError{Col: end.pos, Left: open.text, Right: ""}
	default:
		return nil, lexToken{}, itShouldNotHaveEndedThisWay(end)
	}
}

// parsetuple parses the remainder of a tuple without brackets after its first
// element and separator. It pushes the token that ends the tuple.
func parsetuple(scan *lexer, first *node) (*node, error) {
	head := &node{kind: nodeArg, left: first}
	l := head
	for {
		// A single trailing separator is allowed.
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		scan.push(tok)
		if tok.kind == tokenEOF {
			break
		}
		rhs, err := parseterm(scan, exprprec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			break
		}
		l.right = &node{kind: nodeArg, left: rhs}
		l = l.right
		end := scan.must()
		if end.kind != tokenSep {
			scan.push(end)
			break
		}
	}
	return &node{kind: nodeUnsupported, name: tupleText, right: head}, nil
}

// parsearglist parses a bracketed list of zero or more args following the
// open token. On success, the closing bracket has been consumed.
func parsearglist(scan *lexer, open lexToken) (*node, error) {
	var n node
	l := &n
	for {
		rhs, err := parseterm(scan, exprprec)
		if err != nil {
			return nil, unclosed(err, open)
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			if end.text != closer(open.text) {
				return nil, &BracketError{Col: end.pos, Left: open.text, Right: end.text}
			}
			// func() and func(a,) are allowed.
			if rhs != nil {
				l.right = &node{kind: nodeArg, left: rhs}
			}
			return n.right, nil
		case tokenSep:
			if rhs == nil {
				return nil, &SeparatorError{Col: end.pos, Sep: end.text}
			}
			l.right = &node{kind: nodeArg, left: rhs}
			l = l.right
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: open.text, Right: ""}
		default:
			return nil, itShouldNotHaveEndedThisWay(end)
		}
	}
}

// unclosed reports an empty expression at the end of input inside brackets as
// the mismatched brackets it implies.
func unclosed(err error, open lexToken) error {
	if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
		return &BracketError{Col: ee.Col, Left: open.text}
	}
	return err
}

// closer returns the closing bracket matching an open bracket.
func closer(open string) string {
	if open == "[" {
		return "]"
	}
	return ")"
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression.
func itShouldNotHaveEndedThisWay(tok lexToken) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: "(", Right: ""}
	case tokenClose:
		// A close bracket at top level has no open bracket.
		return &BracketError{Col: tok.pos, Left: "", Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenOp:
		// else with no if.
		return &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
	default:
		panic("mathexpr: it really should not have ended this way: " + tok.String())
	}
}

// Vars returns the names used as variables or as the bases of dotted
// references in the expression, sorted.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression with every
// term in parentheses.
func (e *Expr) String() string {
	return e.n.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "or":
		return operator{-3, false, nodeUnsupported}
	case "and":
		return operator{-2, false, nodeUnsupported}
	case "<", ">", "<=", ">=", "==", "!=", "in", "not in", "is", "is not":
		return operator{0, false, nodeUnsupported}
	case "|":
		return operator{1, false, nodeUnsupported}
	case "^":
		return operator{2, false, nodeXor}
	case "&":
		return operator{3, false, nodeUnsupported}
	case "<<", ">>":
		return operator{4, false, nodeUnsupported}
	case "+":
		return operator{5, false, nodeAdd}
	case "-":
		return operator{5, false, nodeSub}
	case "*":
		return operator{6, false, nodeMul}
	case "/":
		return operator{6, false, nodeDiv}
	case "//":
		return operator{6, false, nodeFloorDiv}
	case "%":
		return operator{6, false, nodeMod}
	case "@":
		return operator{6, false, nodeUnsupported}
	case "**":
		return operator{8, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "not":
		return operator{-1, true, nodeUnsupported}
	case "-":
		return operator{7, true, nodeNeg}
	case "+", "~":
		return operator{7, true, nodeUnsupported}
	default:
		return operator{}
	}
}

var (
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, nodeNone}
	// condprec is the precedence of x if c else y, and the precedence to which
	// its condition is parsed.
	condprec = operator{-4, false, nodeNone}
	// elseprec is the precedence to which the else branch of a conditional is
	// parsed, which may itself be a conditional.
	elseprec = operator{-5, false, nodeNone}
)
