package memo_test

import (
	"errors"
	"testing"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/internal/memo"
)

type counter struct {
	calls int
	r     mathexpr.Result
	err   error
}

func (c *counter) compute() (mathexpr.Result, error) {
	c.calls++
	return c.r, c.err
}

func TestKey(t *testing.T) {
	k1, ok := memo.Key(mathexpr.IsChanged("a + 1"), "3")
	if !ok {
		t.Fatal("deterministic expression not cacheable")
	}
	k2, _ := memo.Key(mathexpr.IsChanged("a + 1"), "4")
	k3, _ := memo.Key(mathexpr.IsChanged("a + 1"), "3")
	if k1 == k2 {
		t.Errorf("different inputs gave the same key %q", k1)
	}
	if k1 != k3 {
		t.Errorf("same inputs gave keys %q and %q", k1, k3)
	}
	// Inputs must not run together.
	k4, _ := memo.Key(mathexpr.IsChanged("x"), "ab", "c")
	k5, _ := memo.Key(mathexpr.IsChanged("x"), "a", "bc")
	if k4 == k5 {
		t.Errorf("ambiguous key %q", k4)
	}
	if _, ok := memo.Key(mathexpr.IsChanged("randomint(1, 6)")); ok {
		t.Error("random expression is cacheable")
	}
}

func TestLoadOrStore(t *testing.T) {
	c := memo.New(8)
	ck := mathexpr.IsChanged("a * 2")
	f := counter{r: mathexpr.Result{Int: 6, Float: 6}}
	for i := 0; i < 3; i++ {
		r, cached, err := c.LoadOrStore(ck, []string{"3"}, f.compute)
		if err != nil {
			t.Fatal(err)
		}
		if r != f.r {
			t.Errorf("got %v, want %v", r, f.r)
		}
		if cached != (i > 0) {
			t.Errorf("call %d: cached is %t", i, cached)
		}
	}
	if f.calls != 1 {
		t.Errorf("computed %d times", f.calls)
	}
	if c.Len() != 1 {
		t.Errorf("cache has %d results", c.Len())
	}
}

func TestLoadOrStoreAlways(t *testing.T) {
	c := memo.New(8)
	ck := mathexpr.IsChanged("randomchoice(1, 2)")
	var f counter
	for i := 0; i < 3; i++ {
		if _, cached, _ := c.LoadOrStore(ck, nil, f.compute); cached {
			t.Error("random result came from cache")
		}
	}
	if f.calls != 3 {
		t.Errorf("computed %d times", f.calls)
	}
}

func TestLoadOrStoreError(t *testing.T) {
	c := memo.New(8)
	ck := mathexpr.IsChanged("1 / a")
	f := counter{err: errors.New("division by zero")}
	for i := 0; i < 2; i++ {
		if _, _, err := c.LoadOrStore(ck, []string{"0"}, f.compute); err != f.err {
			t.Errorf("wrong error %v", err)
		}
	}
	if f.calls != 2 {
		t.Errorf("error was cached")
	}
}

func TestDisabled(t *testing.T) {
	c := memo.New(0)
	var f counter
	c.LoadOrStore(mathexpr.IsChanged("1"), nil, f.compute)
	c.LoadOrStore(mathexpr.IsChanged("1"), nil, f.compute)
	if f.calls != 2 {
		t.Errorf("disabled cache computed %d times", f.calls)
	}
}

func TestFull(t *testing.T) {
	c := memo.New(2)
	var f counter
	for _, in := range []string{"1", "2", "3"} {
		c.LoadOrStore(mathexpr.IsChanged("a"), []string{in}, f.compute)
	}
	if c.Len() != 1 {
		t.Errorf("full cache has %d results", c.Len())
	}
	key, _ := memo.Key(mathexpr.IsChanged("a"), "3")
	if _, ok := c.Load(key); !ok {
		t.Error("latest result was dropped")
	}
	key, _ = memo.Key(mathexpr.IsChanged("a"), "1")
	if _, ok := c.Load(key); ok {
		t.Error("oldest result was kept")
	}
}
