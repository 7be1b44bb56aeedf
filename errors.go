package mathexpr

import (
	"errors"
	"math/big"
	"strconv"
)

// Kind classifies evaluation errors.
type Kind int8

const (
	// KindNone is the kind of nil and of errors not produced by this package,
	// e.g. I/O errors from a WidgetResolver.
	KindNone Kind = iota
	// KindSyntax is malformed expression text or a function call with the
	// wrong number of arguments.
	KindSyntax
	// KindName is an unresolved variable, node, widget, or function name.
	KindName
	// KindType is an unsupported construct or a value used in a way its type
	// does not allow, e.g. an image without .width or .height.
	KindType
	// KindArithmetic is division by zero, an argument outside a function's
	// domain, or a result too large to represent.
	KindArithmetic
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "Error"
	case KindSyntax:
		return "SyntaxError"
	case KindName:
		return "NameError"
	case KindType:
		return "TypeError"
	case KindArithmetic:
		return "ArithmeticError"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// KindOf returns the kind of err. Wrapped errors are classified by the first
// error in their chain that has a kind.
func KindOf(err error) Kind {
	var k interface{ ErrorKind() Kind }
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindNone
}

// NameScope is the namespace in which a NameError's name was missing.
type NameScope int8

const (
	// ScopeVariable is the a, b, c slots of the evaluation context.
	ScopeVariable NameScope = iota
	// ScopeFunction is the function registry.
	ScopeFunction
	// ScopeNode is the host's node names and titles.
	ScopeNode
	// ScopeWidget is the widgets of a node that was found.
	ScopeWidget
)

// NameError is an error from a lookup for a name that does not exist.
type NameError struct {
	// Name is the name that was missing. For nodes and widgets, it is the
	// full dotted reference.
	Name string
	// Scope is where the name was looked up.
	Scope NameScope
}

func (err *NameError) Error() string {
	switch err.Scope {
	case ScopeFunction:
		return "invalid function call: " + err.Name
	case ScopeNode:
		return "node not found: " + err.Name
	case ScopeWidget:
		return "widget not found: " + err.Name
	default:
		return "name not found: " + err.Name
	}
}

func (err *NameError) ErrorKind() Kind {
	return KindName
}

// TypeError is an error from evaluating a construct the evaluator does not
// support or a value of the wrong type.
type TypeError struct {
	// Expr is the offending subexpression.
	Expr string
	// Reason describes the problem.
	Reason string
}

func (err *TypeError) Error() string {
	return err.Reason
}

func (err *TypeError) ErrorKind() Kind {
	return KindType
}

// CallError is an error indicating a function call with the wrong number of
// arguments.
type CallError struct {
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments in the call.
	Len int
	// Min and Max are the function's arity bounds. Max is negative if the
	// function is variadic.
	Min, Max int
}

func (err *CallError) Error() string {
	r := "invalid function call: " + err.Func + " requires " + strconv.Itoa(err.Min)
	if err.Max < 0 {
		r += " or more"
	} else {
		r += " to " + strconv.Itoa(err.Max)
	}
	return r + " arguments"
}

func (err *CallError) ErrorKind() Kind {
	return KindSyntax
}

// DivisionByZeroError is an error from dividing by zero with / // or %, or
// from raising zero to a negative power.
type DivisionByZeroError struct {
	// Op is the operator.
	Op string
}

func (err *DivisionByZeroError) Error() string {
	return "division by zero in " + strconv.Quote(err.Op)
}

func (err *DivisionByZeroError) ErrorKind() Kind {
	return KindArithmetic
}

// DomainError is an error returned when a function or operator is applied to
// arguments outside its domain.
type DomainError struct {
	// X is a copy of the out-of-domain argument, if there is a single one.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := "argument outside domain"
	if err.X != nil {
		r = err.X.String() + " outside domain"
	}
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err *DomainError) ErrorKind() Kind {
	return KindArithmetic
}

// OverflowError is an error indicating a result that does not fit in the
// output representation.
type OverflowError struct {
	// X is a copy of the result.
	X *big.Float
	// To is the representation, "int" or "float".
	To string
}

func (err *OverflowError) Error() string {
	return "result " + err.X.Text('g', 10) + " out of range for " + err.To
}

func (err *OverflowError) ErrorKind() Kind {
	return KindArithmetic
}
