package mathexpr

import "math/big"

// SizedObject is a host value with two-dimensional geometry, such as an image
// or a latent. Expressions reference it as a.width or a.height.
type SizedObject interface {
	// IsLatent reports whether the object stores its geometry at 1/8 scale.
	IsLatent() bool
	// RawSize returns the stored width and height, before scaling.
	RawSize() (width, height int)
}

// Dim selects a dimension of a SizedObject.
type Dim int8

const (
	Width Dim = iota
	Height
)

func (d Dim) String() string {
	if d == Height {
		return "height"
	}
	return "width"
}

// latentScale is the factor between a latent's stored size and its size in
// pixels.
const latentScale = 8

// Dimension returns the width or height of obj in pixels.
func Dimension(obj SizedObject, d Dim) int {
	w, h := obj.RawSize()
	r := w
	if d == Height {
		r = h
	}
	if obj.IsLatent() {
		r *= latentScale
	}
	return r
}

// dimension parses an attribute name as a Dim.
func dimension(attr string) (Dim, bool) {
	switch attr {
	case "width":
		return Width, true
	case "height":
		return Height, true
	default:
		return 0, false
	}
}

// WidgetResolver resolves dotted references like KSampler.steps to the value
// of a widget on a node in the host's graph. If the node or widget does not
// exist, the error should be a *NameError with scope ScopeNode or ScopeWidget,
// respectively.
type WidgetResolver interface {
	Widget(node, widget string) (*big.Float, error)
}

// WidgetFunc adapts a function to a WidgetResolver.
type WidgetFunc func(node, widget string) (*big.Float, error)

// Widget calls f.
func (f WidgetFunc) Widget(node, widget string) (*big.Float, error) {
	return f(node, widget)
}

// Var is the value of a context slot: either a number or a sized object. The
// zero Var is not valid; an unbound slot is one never set.
type Var struct {
	num *big.Float
	obj SizedObject
}

// Number creates a numeric Var. Panics if x is NaN.
func Number(x float64) Var {
	return Var{num: new(big.Float).SetFloat64(x)}
}

// Int creates an integer Var.
func Int(x int64) Var {
	return Var{num: new(big.Float).SetInt64(x)}
}

// BigNumber creates a numeric Var from a copy of x.
func BigNumber(x *big.Float) Var {
	return Var{num: new(big.Float).Copy(x)}
}

// Sized creates a Var holding a sized object.
func Sized(obj SizedObject) Var {
	if obj == nil {
		panic("mathexpr: nil SizedObject")
	}
	return Var{obj: obj}
}

// Num returns the value of a numeric Var.
func (v Var) Num() (*big.Float, bool) {
	return v.num, v.num != nil
}

// Object returns the object of a sized Var.
func (v Var) Object() (SizedObject, bool) {
	return v.obj, v.obj != nil
}

// Slots is the list of names that can be bound in a context.
var Slots = [...]string{"a", "b", "c"}

// isSlot returns whether name is one of Slots.
func isSlot(name string) bool {
	for _, s := range Slots {
		if s == name {
			return true
		}
	}
	return false
}
