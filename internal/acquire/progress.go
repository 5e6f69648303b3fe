package acquire

import "sync"

// progressGuard forwards progress to a callback while keeping the delivered
// sequence inside [0,1] and non-decreasing.
type progressGuard struct {
	mu   sync.Mutex
	last float64
	sent bool
	fn   func(float64)
}

func newProgressGuard(fn func(float64)) *progressGuard {
	return &progressGuard{fn: fn}
}

func (g *progressGuard) report(fraction float64) {
	if fraction != fraction { // NaN
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	g.mu.Lock()
	if g.sent && fraction <= g.last {
		g.mu.Unlock()
		return
	}
	g.last = fraction
	g.sent = true
	g.mu.Unlock()

	if g.fn != nil {
		g.fn(fraction)
	}
}

// complete reports 1.0 unless it was already delivered
func (g *progressGuard) complete() {
	g.report(1)
}
