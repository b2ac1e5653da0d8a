package dcr

import "sync/atomic"

// Reloadable holds the active Calculator and lets it be replaced while
// other goroutines are computing, e.g. after a config file change.
type Reloadable struct {
	cur atomic.Pointer[Calculator]
}

// NewReloadable returns a Reloadable starting with c.
func NewReloadable(c *Calculator) *Reloadable {
	r := &Reloadable{}
	r.cur.Store(c)
	return r
}

// Compute delegates to the current Calculator.
func (r *Reloadable) Compute(in Input) Result {
	return r.cur.Load().Compute(in)
}

// Params returns the params of the current Calculator.
func (r *Reloadable) Params() Params {
	return r.cur.Load().Params
}

// SetParams swaps in a Calculator with p, keeping the current observer.
func (r *Reloadable) SetParams(p Params) {
	old := r.cur.Load()
	r.cur.Store(&Calculator{Params: p, Observer: old.Observer})
}
