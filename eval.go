package mathexpr

import (
	"io"
	"math/big"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// DefaultPrec is the precision of a context created without Prec, the
// precision of a float64.
const DefaultPrec = 53

// Context is a context for evaluating expressions. It is not safe to use a
// Context concurrently.
type Context struct {
	stack   []*big.Float
	nums    map[string]*big.Float
	vars    map[string]Var
	widgets WidgetResolver
	rng     *rand.Rand
	prec    uint
	err     error
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  Var
	}
	varsopt    map[string]Var
	widgetsopt struct{ r WidgetResolver }
	randopt    struct{ r *rand.Rand }
	precopt    uint
)

func (varopt) ctxOption()     {}
func (varsopt) ctxOption()    {}
func (widgetsopt) ctxOption() {}
func (randopt) ctxOption()    {}
func (precopt) ctxOption()    {}

// SetVar binds one of the slots a, b, or c in the context. Panics if name is
// not a slot or val is the zero Var.
func SetVar(name string, val Var) ContextOption {
	checkVar(name, val)
	return varopt{name, val}
}

// SetVars binds any number of slots in the context.
func SetVars(vars map[string]Var) ContextOption {
	for name, val := range vars {
		checkVar(name, val)
	}
	return varsopt(vars)
}

func checkVar(name string, val Var) {
	if !isSlot(name) {
		panic("mathexpr: cannot bind " + strconv.Quote(name) + ": only a, b, and c are variables")
	}
	if val.num == nil && val.obj == nil {
		panic("mathexpr: zero Var bound to " + name)
	}
}

// Widgets sets the resolver for dotted references to host widgets. A nil
// resolver means every such reference is a missing node.
func Widgets(r WidgetResolver) ContextOption {
	return widgetsopt{r}
}

// Rand sets the random source used by randomint and randomchoice. The context
// takes ownership of r.
func Rand(r *rand.Rand) ContextOption {
	return randopt{r}
}

// Prec sets the precision of calculations.
func Prec(prec uint) ContextOption {
	if prec == 0 {
		panic("mathexpr: zero precision")
	}
	return precopt(prec)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is DefaultPrec. If no random source is given, one is seeded from
// the current time.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{nums: make(map[string]*big.Float), prec: DefaultPrec}
	return ctx.Clone(opts...)
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. a missing variable or an argument to a function outside the
// function's domain, then the result is nil and ctx.Err returns the error.
func (ctx *Context) Eval(e *Expr) *big.Float {
	switch len(ctx.stack) {
	case 0: // do nothing
	case 1:
		ctx.stack[0] = new(big.Float)
		ctx.stack = ctx.stack[:0]
	default:
		panic("mathexpr: Eval during Eval")
	}
	err := e.n.eval(ctx)
	ctx.err = err
	if err != nil {
		ctx.stack = ctx.stack[:0]
		return nil
	}
	return ctx.Result()
}

// Result returns the result obtained after evaluating an expression. Panics if
// ctx has not been used to evaluate an expression. Returns nil if an error
// occurred during evaluation.
func (ctx *Context) Result() *big.Float {
	if ctx.err != nil {
		return nil
	}
	switch len(ctx.stack) {
	case 0:
		panic("mathexpr: Context.Result called before evaluating any expression")
	case 1:
		return ctx.stack[0]
	default:
		panic("mathexpr: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
}

// Err returns the error that occurred while evaluating the last expression
// with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Lookup returns the value bound to a slot and whether it is bound.
func (ctx *Context) Lookup(name string) (Var, bool) {
	v, ok := ctx.vars[name]
	return v, ok
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Clone creates a copy of a context and applies options to it. The returned
// context has no Result and is safe to use to evaluate an expression. Unless
// opts includes Rand, the clone gets a new random source seeded from the
// original's.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		stack:   make([]*big.Float, 0, cap(ctx.stack)),
		nums:    make(map[string]*big.Float, len(ctx.nums)),
		vars:    make(map[string]Var, len(ctx.vars)),
		widgets: ctx.widgets,
		prec:    ctx.prec,
	}
	// First, check for a precision setting. Loop backward so we apply the last
	// precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = uint(p)
			break
		}
	}
	// Literals that needed rounding were parsed at the old precision.
	if n.prec == ctx.prec {
		for k, v := range ctx.nums {
			n.nums[k] = v
		}
	}
	// Vars are never modified, so sharing them is fine.
	for name, val := range ctx.vars {
		n.vars[name] = val
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.vars[opt.name] = opt.val
		case varsopt:
			for k, v := range opt {
				n.vars[k] = v
			}
		case widgetsopt:
			n.widgets = opt.r
		case randopt:
			n.rng = opt.r
		case precopt:
			// Already done. Do nothing.
		default:
			panic("mathexpr: unknown option type")
		}
	}
	if n.rng == nil {
		seed := time.Now().UnixNano()
		if ctx.rng != nil {
			seed = ctx.rng.Int63()
		}
		n.rng = rand.New(rand.NewSource(seed))
	}
	return &n
}

// push ensures a settable value on the stack. The value has the context
// precision.
func (ctx *Context) push() *big.Float {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
		if ctx.stack[len(ctx.stack)-1] == nil {
			ctx.stack[len(ctx.stack)-1] = new(big.Float)
		}
	} else {
		ctx.stack = append(ctx.stack, new(big.Float))
	}
	return ctx.stack[len(ctx.stack)-1].SetPrec(ctx.prec)
}

// pushExact pushes a copy of x without rounding.
func (ctx *Context) pushExact(x *big.Float) {
	ctx.push().SetPrec(0).Set(x)
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (ctx *Context) pop() *big.Float {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *big.Float {
	return ctx.stack[len(ctx.stack)-1]
}

// num gets a possibly cached number from its text. Integer literals are exact.
// Others are rounded to the context precision.
func (ctx *Context) num(s string) *big.Float {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	var r *big.Float
	if i, ok := new(big.Int).SetString(s, 10); ok {
		r = new(big.Float).SetInt(i)
	} else {
		var err error
		r, _, err = new(big.Float).SetPrec(ctx.prec).Parse(s, 10)
		switch {
		case err == nil: // do nothing
		case err.Error() == "exponent overflow",
			strings.HasSuffix(err.Error(), ": value out of range"):
			// There isn't realistically any better way to detect this error.
			r = new(big.Float).SetInf(false)
		default:
			panic("mathexpr: invalid number: " + s + " (" + err.Error() + ")")
		}
	}
	ctx.nums[s] = r
	return r
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		ctx.pushExact(ctx.num(n.name))
	case nodeName:
		v, ok := ctx.vars[n.name]
		switch {
		case !ok:
			return &NameError{Name: n.name, Scope: ScopeVariable}
		case v.obj != nil:
			return &TypeError{
				Expr:   n.name,
				Reason: "complex types (latent/image) need to reference their width/height, e.g. " + n.name + ".width",
			}
		}
		ctx.pushExact(v.num)
	case nodeAttr:
		return n.attribute(ctx)
	case nodeCall:
		f, ok := globalfuncs[n.name]
		if !ok {
			return &NameError{Name: n.name, Scope: ScopeFunction}
		}
		k := n.args()
		if k < f.Min || f.Max >= 0 && k > f.Max {
			return &CallError{Func: n.name, Len: k, Min: f.Min, Max: f.Max}
		}
		r := ctx.push()
		base := len(ctx.stack)
		for l := n.right; l != nil; l = l.right {
			if err := l.left.eval(ctx); err != nil {
				return err
			}
		}
		invoc := ctx.stack[base:len(ctx.stack):len(ctx.stack)]
		if err := f.invoke(ctx, n.name, invoc, r); err != nil {
			return err
		}
		ctx.stack = ctx.stack[:base]
	case nodeArg:
		panic("mathexpr: eval on nodeArg")
	case nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.top()
		v.Neg(v)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeFloorDiv, nodeMod, nodePow, nodeXor:
		return n.arith(ctx)
	case nodeUnsupported:
		s := n.String()
		return &TypeError{Expr: s, Reason: "unsupported expression node: " + s}
	default:
		panic("mathexpr: invalid AST node " + n.kind.String())
	}
	return nil
}

// attribute evaluates a dotted reference. References to the width or height of
// a slot query its sized object. Anything else is a widget on a host node.
func (n *node) attribute(ctx *Context) error {
	ref := n.name + "." + n.attr
	if d, ok := dimension(n.attr); ok && isSlot(n.name) {
		v, ok := ctx.vars[n.name]
		switch {
		case !ok:
			return &NameError{Name: n.name, Scope: ScopeVariable}
		case v.obj == nil:
			return &TypeError{Expr: ref, Reason: "number " + n.name + " has no " + n.attr}
		}
		ctx.push().SetInt64(int64(Dimension(v.obj, d)))
		return nil
	}
	if ctx.widgets == nil {
		return &NameError{Name: ref, Scope: ScopeNode}
	}
	x, err := ctx.widgets.Widget(n.name, n.attr)
	if err != nil {
		return err
	}
	ctx.pushExact(x)
	return nil
}

// Eval is a shortcut to parse an expression and return its result.
func Eval(src io.RuneScanner, opts ...ContextOption) (*big.Float, error) {
	a, err := Parse(src)
	if err != nil {
		return nil, err
	}
	ctx := NewContext(opts...)
	ctx.Eval(a)
	return ctx.Result(), ctx.Err()
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (*big.Float, error) {
	return Eval(strings.NewReader(normalize(src)), opts...)
}

// Evaluate parses and evaluates an expression and converts the result to its
// integer and floating-point forms.
func Evaluate(expression string, opts ...ContextOption) (Result, error) {
	x, err := EvalString(expression, opts...)
	if err != nil {
		return Result{}, err
	}
	return Format(x)
}

// Eval evaluates the expression in ctx. It is equivalent to ctx.Eval(e).
func (e *Expr) Eval(ctx *Context) *big.Float {
	return ctx.Eval(e)
}
