package mathexpr

import "strconv"

// OperatorError is an error indicating an operator token that is not
// understood by the parser. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched brackets in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position of the operator.
	Col int
	// Left is the opening bracket.
	Left string
	// Right is the mismatched closing bracket.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError is an error indicating an illegal use of a comma. It
// implements InputError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "invalid occurrence of separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// MissingOperatorError is an error indicating two terms with no operator
// between them, as in "2 x". It implements InputError.
type MissingOperatorError struct {
	// Col is the position of the second term.
	Col int
	// Text is the token that begins the second term.
	Text string
}

func (err *MissingOperatorError) Error() string {
	return errpos(err.Col, "missing operator before "+strconv.Quote(err.Text))
}

func (err *MissingOperatorError) Pos() int {
	return err.Col
}

// DotError is an error indicating a dot that is not followed by an attribute
// name, as in "a." or "a.if". It implements InputError.
type DotError struct {
	// Col is the position of the token after the dot.
	Col int
	// Text is the token after the dot.
	Text string
}

func (err *DotError) Error() string {
	return errpos(err.Col, "expected attribute name after \".\" but found "+found(err.Text))
}

func (err *DotError) Pos() int {
	return err.Col
}

// ConditionalError is an error indicating a conditional expression with no
// else, as in "x if c". It implements InputError.
type ConditionalError struct {
	// Col is the position of the token that ended the condition.
	Col int
	// Text is the token that ended the condition.
	Text string
}

func (err *ConditionalError) Error() string {
	return errpos(err.Col, "expected else in conditional expression but found "+found(err.Text))
}

func (err *ConditionalError) Pos() int {
	return err.Col
}

// found describes a token in an error message.
func found(text string) string {
	if text == "" {
		return "end of input"
	}
	return strconv.Quote(text)
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input text implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*MissingOperatorError)(nil)
	_ InputError = (*DotError)(nil)
	_ InputError = (*ConditionalError)(nil)
	_ InputError = (*LexError)(nil)
)

func (err *OperatorError) ErrorKind() Kind        { return KindSyntax }
func (err *BracketError) ErrorKind() Kind         { return KindSyntax }
func (err *SeparatorError) ErrorKind() Kind       { return KindSyntax }
func (err *EmptyExpressionError) ErrorKind() Kind { return KindSyntax }
func (err *MissingOperatorError) ErrorKind() Kind { return KindSyntax }
func (err *DotError) ErrorKind() Kind             { return KindSyntax }
func (err *ConditionalError) ErrorKind() Kind     { return KindSyntax }
