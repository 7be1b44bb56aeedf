//go:build go1.18
// +build go1.18

package mathexpr_test

import (
	"testing"

	"github.com/zephyrtronium/mathexpr"
)

func FuzzParse(f *testing.F) {
	f.Add("a")
	f.Add("a.width // 8")
	f.Add("round(3.14159, 2)")
	f.Add("2 ** -1 ^ 3")
	f.Add("x if (a).width < 1 else [y, z][0]")
	f.Add("not a is not None, ()")
	f.Fuzz(func(t *testing.T, s string) {
		e, err := mathexpr.ParseString(s)
		if err != nil {
			if mathexpr.KindOf(err) != mathexpr.KindSyntax {
				t.Errorf("%q: parse error %v classified as %v", s, err, mathexpr.KindOf(err))
			}
			return
		}
		// The printed form must parse again.
		if _, err := mathexpr.ParseString(e.String()); err != nil {
			t.Errorf("%q printed as %q which does not parse: %v", s, e, err)
		}
	})
}

func FuzzEval(f *testing.F) {
	f.Add("a")
	f.Add("b.height")
	f.Add("max(a, 1) % 0")
	f.Add("KSampler.steps")
	f.Fuzz(func(t *testing.T, s string) {
		mathexpr.Evaluate(s,
			mathexpr.SetVar("a", mathexpr.Int(3)),
			mathexpr.SetVar("b", mathexpr.Sized(sized{w: 8, h: 8, latent: true})),
		)
	})
}
