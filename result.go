package mathexpr

import (
	"math"
	"math/big"
	"strconv"
)

// Result is the value of an expression in the two forms hosts consume.
type Result struct {
	// Int is the value truncated toward zero.
	Int int64 `json:"int"`
	// Float is the nearest float64 to the value.
	Float float64 `json:"float"`
}

func (r Result) String() string {
	return strconv.FormatInt(r.Int, 10) + " " + strconv.FormatFloat(r.Float, 'g', -1, 64)
}

// Format converts an evaluated value to a Result. If the value does not fit
// in an int64 or a float64, the error is an *OverflowError and the Result is
// the zero value.
func Format(x *big.Float) (Result, error) {
	if x.IsInf() {
		return Result{}, &OverflowError{X: new(big.Float).Copy(x), To: "int"}
	}
	i, _ := x.Int(nil)
	if !i.IsInt64() {
		return Result{}, &OverflowError{X: new(big.Float).Copy(x), To: "int"}
	}
	f, _ := x.Float64()
	if math.IsInf(f, 0) {
		return Result{}, &OverflowError{X: new(big.Float).Copy(x), To: "float"}
	}
	return Result{Int: i.Int64(), Float: f}, nil
}
