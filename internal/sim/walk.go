package sim

import (
	"math"
	"math/rand"
	"sync"
)

// Walk is a geometric random walk used as the bots' reference midprice.
// Each Step multiplies the current price by exp(drift + vol*N(0,1)).
// Safe for concurrent use; the bots share one walk.
type Walk struct {
	mu    sync.Mutex
	price float64
	drift float64
	vol   float64
	rand  *rand.Rand
}

func NewWalk(start, drift, vol float64, seed int64) *Walk {
	return &Walk{
		price: start,
		drift: drift,
		vol:   vol,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (w *Walk) Price() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.price
}

func (w *Walk) Step() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.price *= math.Exp(w.drift + w.vol*w.rand.NormFloat64())
	return w.price
}
