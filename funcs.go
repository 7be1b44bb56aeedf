package mathexpr

import (
	"math/big"
)

// Func is a built-in function. The set of functions is fixed.
type Func struct {
	// Min and Max are the bounds on the number of arguments. Max is negative
	// if the function is variadic.
	Min, Max int
	// Hint describes the arguments for autocomplete, e.g. "min, max".
	Hint string

	// call evaluates the function. The arguments are in invoc, which has a
	// length within the arity bounds and may be modified. call must set r to
	// its result and should not use the value of r otherwise.
	call func(ctx *Context, invoc []*big.Float, r *big.Float) error
}

var globalfuncs = map[string]Func{
	"round":        {Min: 1, Max: 2, Hint: "number, dp? = 0", call: fnRound},
	"ceil":         {Min: 1, Max: 1, Hint: "number", call: fnCeil},
	"floor":        {Min: 1, Max: 1, Hint: "number", call: fnFloor},
	"min":          {Min: 2, Max: -1, Hint: "...numbers", call: fnMin},
	"max":          {Min: 2, Max: -1, Hint: "...numbers", call: fnMax},
	"randomint":    {Min: 2, Max: 2, Hint: "min, max", call: fnRandomInt},
	"randomchoice": {Min: 2, Max: -1, Hint: "...numbers", call: fnRandomChoice},
}

// invoke calls f, converting NaN panics into domain errors.
func (f Func) invoke(ctx *Context, name string, invoc []*big.Float, r *big.Float) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if _, ok := p.(big.ErrNaN); !ok {
			panic(p)
		}
		err = &DomainError{Func: name}
	}()
	return f.call(ctx, invoc, r)
}

// FuncInfo describes a built-in function for autocomplete consumers.
type FuncInfo struct {
	// Name is the function name.
	Name string `json:"name"`
	// Min and Max are the arity bounds. Max is negative if the function is
	// variadic.
	Min int `json:"min"`
	Max int `json:"max"`
	// Hint describes the arguments.
	Hint string `json:"hint"`
	// Snippet is the text to insert, and CaretOffset is where to place the
	// cursor relative to the end of the snippet.
	Snippet     string `json:"snippet"`
	CaretOffset int    `json:"caretOffset"`
}

// Funcs lists the built-in functions, sorted by name.
func Funcs() []FuncInfo {
	names := make([]string, 0, len(globalfuncs))
	for name := range globalfuncs {
		names = append(names, name)
	}
	sortstrs(names)
	r := make([]FuncInfo, len(names))
	for i, name := range names {
		f := globalfuncs[name]
		r[i] = FuncInfo{
			Name:        name,
			Min:         f.Min,
			Max:         f.Max,
			Hint:        f.Hint,
			Snippet:     name + "()",
			CaretOffset: -1,
		}
	}
	return r
}

// LookupFunc returns the built-in function with the given name.
func LookupFunc(name string) (Func, bool) {
	f, ok := globalfuncs[name]
	return f, ok
}

func fnRound(ctx *Context, invoc []*big.Float, r *big.Float) error {
	x := invoc[0]
	if x.IsInf() {
		return &DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: "round"}
	}
	if len(invoc) == 1 {
		q, _ := x.Rat(nil)
		r.SetPrec(0).SetInt(roundHalfEven(q))
		return nil
	}
	if !invoc[1].IsInt() || invoc[1].IsInf() {
		return &TypeError{
			Expr:   invoc[1].Text('g', 10),
			Reason: "round: decimal places must be an integer, not " + invoc[1].Text('g', 10),
		}
	}
	dp, _ := invoc[1].Int64()
	if dp < -maxPlaces {
		dp = -maxPlaces
	}
	r.SetPrec(ctx.prec)
	if x.Sign() == 0 {
		r.SetInt64(0)
		return nil
	}
	// A value with k fractional bits has exactly k fractional decimal digits,
	// and one with exponent e has at most e+1 integer digits.
	e := int64(x.MantExp(nil))
	if frac := int64(x.MinPrec()) - e; dp >= frac {
		r.Set(x)
		return nil
	}
	if e >= 0 && -dp > e+1 || e < 0 && dp < 0 {
		r.SetInt64(0)
		return nil
	}
	scale := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(abs(dp)), nil))
	q, _ := x.Rat(nil)
	if dp >= 0 {
		q.Mul(q, scale)
	} else {
		q.Quo(q, scale)
	}
	q.SetInt(roundHalfEven(q))
	if dp >= 0 {
		q.Quo(q, scale)
	} else {
		q.Mul(q, scale)
	}
	r.SetRat(q)
	return nil
}

// roundHalfEven rounds q to the nearest integer, with ties to even.
func roundHalfEven(q *big.Rat) *big.Int {
	n, m := new(big.Int), new(big.Int)
	n.DivMod(q.Num(), q.Denom(), m)
	// n is floor(q) and 0 <= m < denom. Compare 2m with denom.
	switch m.Lsh(m, 1).Cmp(q.Denom()) {
	case 1:
		n.Add(n, big.NewInt(1))
	case 0:
		if n.Bit(0) != 0 {
			n.Add(n, big.NewInt(1))
		}
	}
	return n
}

// maxPlaces bounds the magnitude of a negative decimal place count.
const maxPlaces = 1 << 40

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

func fnCeil(ctx *Context, invoc []*big.Float, r *big.Float) error {
	return toInt(invoc[0], r, "ceil", big.Below)
}

func fnFloor(ctx *Context, invoc []*big.Float, r *big.Float) error {
	return toInt(invoc[0], r, "floor", big.Above)
}

// toInt sets r to the integer nearest x in the direction of x. When truncation
// of x toward zero gives an integer on the wrong side, as indicated by acc,
// the result moves one away from zero.
func toInt(x, r *big.Float, name string, wrong big.Accuracy) error {
	if x.IsInf() {
		return &DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: name}
	}
	i, acc := x.Int(nil)
	if acc == wrong {
		if x.Sign() > 0 {
			i.Add(i, big.NewInt(1))
		} else {
			i.Sub(i, big.NewInt(1))
		}
	}
	r.SetPrec(0).SetInt(i)
	return nil
}

func fnMin(ctx *Context, invoc []*big.Float, r *big.Float) error {
	m := invoc[0]
	for _, x := range invoc[1:] {
		if x.Cmp(m) < 0 {
			m = x
		}
	}
	r.SetPrec(0).Set(m)
	return nil
}

func fnMax(ctx *Context, invoc []*big.Float, r *big.Float) error {
	m := invoc[0]
	for _, x := range invoc[1:] {
		if x.Cmp(m) > 0 {
			m = x
		}
	}
	r.SetPrec(0).Set(m)
	return nil
}

func fnRandomInt(ctx *Context, invoc []*big.Float, r *big.Float) error {
	var bounds [2]*big.Int
	for i, x := range invoc {
		if x.IsInf() || !x.IsInt() {
			return &TypeError{
				Expr:   x.Text('g', 10),
				Reason: "randomint: bounds must be integers, not " + x.Text('g', 10),
			}
		}
		bounds[i], _ = x.Int(nil)
	}
	lo, hi := bounds[0], bounds[1]
	if lo.Cmp(hi) > 0 {
		return &DomainError{X: new(big.Float).Copy(invoc[1]), Arg: 2, Func: "randomint"}
	}
	n := new(big.Int).Sub(hi, lo)
	n.Add(n, big.NewInt(1))
	k := new(big.Int).Rand(ctx.rng, n)
	r.SetPrec(0).SetInt(k.Add(k, lo))
	return nil
}

func fnRandomChoice(ctx *Context, invoc []*big.Float, r *big.Float) error {
	r.SetPrec(0).Set(invoc[ctx.rng.Intn(len(invoc))])
	return nil
}
