// Package memo caches evaluation results by the change key of the expression
// and the inputs it was evaluated with.
package memo

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/zephyrtronium/mathexpr"
)

// Cache holds evaluation results. It is safe for concurrent use. Results of
// expressions whose change key is Always are never cached, nor are errors.
type Cache struct {
	max  int64
	n    atomic.Int64
	data sync.Map
}

// New creates a cache holding at most max results. If max is zero, the cache
// holds nothing.
func New(max int) *Cache {
	return &Cache{max: int64(max)}
}

// Key computes the cache key for an expression's change key and inputs. The
// second result is false if results with the change key must not be cached.
func Key(ck mathexpr.ChangeKey, inputs ...string) (string, bool) {
	if ck.IsAlways() {
		return "", false
	}
	b, err := json.Marshal(append([]string{ck.Text()}, inputs...))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Load returns the result cached for key.
func (c *Cache) Load(key string) (mathexpr.Result, bool) {
	v, ok := c.data.Load(key)
	if !ok {
		return mathexpr.Result{}, false
	}
	return v.(mathexpr.Result), true
}

// LoadOrStore returns the result cached for the change key and inputs, or
// computes and caches it. The second result reports whether the result came
// from the cache.
func (c *Cache) LoadOrStore(ck mathexpr.ChangeKey, inputs []string, compute func() (mathexpr.Result, error)) (mathexpr.Result, bool, error) {
	key, ok := Key(ck, inputs...)
	if !ok || c.max <= 0 {
		r, err := compute()
		return r, false, err
	}
	if r, ok := c.Load(key); ok {
		return r, true, nil
	}
	r, err := compute()
	if err != nil {
		return r, false, err
	}
	c.store(key, r)
	return r, false, nil
}

func (c *Cache) store(key string, r mathexpr.Result) {
	if c.n.Add(1) > c.max {
		// Full. Drop everything.
		c.Clear()
		c.n.Add(1)
	}
	if _, loaded := c.data.LoadOrStore(key, r); loaded {
		c.n.Add(-1)
	}
}

// Len returns the approximate number of cached results.
func (c *Cache) Len() int {
	return int(c.n.Load())
}

// Clear removes all cached results.
func (c *Cache) Clear() {
	c.data.Range(func(k, v any) bool {
		c.data.Delete(k)
		return true
	})
	c.n.Store(0)
}
