package mathexpr

import "strings"

// ChangeKey identifies an expression for change detection. A host caches the
// result of an evaluation and reuses it while the key is unchanged.
type ChangeKey struct {
	text   string
	always bool
}

// Always is the key of expressions that must be evaluated every time. It is
// not Equal to any key, including itself.
var Always = ChangeKey{always: true}

// IsChanged returns the change key for an expression. Expressions whose text
// mentions random are Always; others are keyed by their literal text. The
// check is on the raw text, so a name like myrandomvalue also disables reuse.
func IsChanged(expression string) ChangeKey {
	if strings.Contains(expression, "random") {
		return Always
	}
	return ChangeKey{text: expression}
}

// Equal reports whether a cached result for k is valid for o.
func (k ChangeKey) Equal(o ChangeKey) bool {
	return !k.always && !o.always && k.text == o.text
}

// IsAlways reports whether k is Always.
func (k ChangeKey) IsAlways() bool {
	return k.always
}

// Text returns the expression text of the key. It is empty for Always.
func (k ChangeKey) Text() string {
	return k.text
}

func (k ChangeKey) String() string {
	if k.always {
		return "NaN"
	}
	return k.text
}
