package mathexpr

import (
	"math/big"
	"math/bits"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// binaryOp computes l = l op r. Both operands have already been rounded to the
// context precision, and both may be modified.
type binaryOp func(ctx *Context, l, r *big.Float) error

// binops is the operator table for binary node kinds.
var binops = [...]binaryOp{
	nodeAdd:      opAdd,
	nodeSub:      opSub,
	nodeMul:      opMul,
	nodeDiv:      opDiv,
	nodeFloorDiv: opFloorDiv,
	nodeMod:      opMod,
	nodePow:      opPow,
	nodeXor:      opXor,
}

// opText is the operator spelling of a binary node kind, for errors.
func opText(k nodeKind) string {
	return strings.TrimSpace(binopText[k])
}

func opAdd(ctx *Context, l, r *big.Float) error {
	l.Add(l, r)
	return nil
}

func opSub(ctx *Context, l, r *big.Float) error {
	l.Sub(l, r)
	return nil
}

func opMul(ctx *Context, l, r *big.Float) error {
	l.Mul(l, r)
	return nil
}

func opDiv(ctx *Context, l, r *big.Float) error {
	if r.Sign() == 0 {
		return &DivisionByZeroError{Op: "/"}
	}
	if l.IsInf() && r.IsInf() {
		return &DomainError{X: new(big.Float).Copy(r), Arg: 2, Func: "/"}
	}
	l.Quo(l, r)
	return nil
}

func opFloorDiv(ctx *Context, l, r *big.Float) error {
	x, y, err := rats("//", l, r)
	if err != nil {
		return err
	}
	l.SetInt(floorQuo(x, y))
	return nil
}

func opMod(ctx *Context, l, r *big.Float) error {
	x, y, err := rats("%", l, r)
	if err != nil {
		return err
	}
	// x - y*floor(x/y) has the sign of y.
	q := new(big.Rat).SetInt(floorQuo(x, y))
	q.Mul(q, y)
	l.SetRat(q.Sub(x, q))
	return nil
}

// rats converts the operands of a flooring operator to exact rationals.
func rats(op string, l, r *big.Float) (x, y *big.Rat, err error) {
	if r.Sign() == 0 {
		return nil, nil, &DivisionByZeroError{Op: op}
	}
	if l.IsInf() {
		return nil, nil, &DomainError{X: new(big.Float).Copy(l), Arg: 1, Func: op}
	}
	if r.IsInf() {
		return nil, nil, &DomainError{X: new(big.Float).Copy(r), Arg: 2, Func: op}
	}
	x, _ = l.Rat(nil)
	y, _ = r.Rat(nil)
	return x, y, nil
}

// floorQuo returns floor(x/y).
func floorQuo(x, y *big.Rat) *big.Int {
	q := new(big.Rat).Quo(x, y)
	// Denominators are positive, so Euclidean division floors.
	n, m := new(big.Int), new(big.Int)
	n.DivMod(q.Num(), q.Denom(), m)
	return n
}

func opPow(ctx *Context, l, r *big.Float) error {
	switch {
	case r.Sign() == 0:
		l.SetInt64(1)
		return nil
	case l.Sign() == 0:
		if r.Sign() < 0 {
			return &DivisionByZeroError{Op: "**"}
		}
		l.SetInt64(0)
		return nil
	}
	if r.IsInt() {
		if n, acc := r.Int64(); acc == big.Exact {
			// Each squaring can lose an ulp, so work with enough guard bits
			// that the single rounding to l's precision is correct.
			u := uint64(n)
			if n < 0 {
				u = -u
			}
			x := new(big.Float).SetPrec(l.Prec() + 64 + uint(bits.Len64(u))).Set(l)
			powInt(x, n)
			l.Set(x)
			return nil
		}
		if l.Signbit() {
			n, _ := r.Int(nil)
			l.Neg(l)
			bigfloat.Pow(l, l, r)
			if n.Bit(0) != 0 {
				l.Neg(l)
			}
			return nil
		}
	}
	if l.Signbit() {
		// A fractional power of a negative number is complex.
		return &DomainError{X: new(big.Float).Copy(l), Arg: 1, Func: "**"}
	}
	bigfloat.Pow(l, l, r)
	return nil
}

// powInt sets x to x**n by repeated squaring, rounding to x's precision.
func powInt(x *big.Float, n int64) {
	u := uint64(n)
	if n < 0 {
		u = -u
	}
	b := new(big.Float).Copy(x)
	x.SetInt64(1)
	for u != 0 {
		if u&1 != 0 {
			x.Mul(x, b)
		}
		u >>= 1
		if u != 0 {
			b.Mul(b, b)
		}
	}
	if n < 0 {
		x.Quo(b.SetInt64(1), x)
	}
}

func opXor(ctx *Context, l, r *big.Float) error {
	x, err := integral(l, "^")
	if err != nil {
		return err
	}
	y, err := integral(r, "^")
	if err != nil {
		return err
	}
	l.SetInt(x.Xor(x, y))
	return nil
}

// integral converts x to an integer for a bitwise operator.
func integral(x *big.Float, op string) (*big.Int, error) {
	if x.IsInf() || !x.IsInt() {
		return nil, &TypeError{
			Expr:   x.Text('g', 10),
			Reason: "unsupported operand for " + op + ": " + x.Text('g', 10) + " is not an integer",
		}
	}
	n, _ := x.Int(nil)
	return n, nil
}

// arith evaluates a binary node. Both operands are rounded to the context
// precision before the operator applies.
func (n *node) arith(ctx *Context) (err error) {
	if err := n.left.eval(ctx); err != nil {
		return err
	}
	if err := n.right.eval(ctx); err != nil {
		return err
	}
	r := ctx.pop()
	l := ctx.top()
	l.SetPrec(ctx.prec)
	r.SetPrec(ctx.prec)
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if _, ok := p.(big.ErrNaN); !ok {
			panic(p)
		}
		err = &DomainError{Func: opText(n.kind)}
	}()
	return binops[n.kind](ctx, l, r)
}
