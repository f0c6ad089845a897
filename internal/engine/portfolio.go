package engine

import "lob/internal/book"

// DefaultLeg is the cash leg positions are settled against when none is
// configured.
const DefaultLeg = "USD"

// Fill is a single execution oriented from one client's point of view:
// Side is the direction of that client's position change.
type Fill struct {
	Instrument string
	Side       book.Side
	Price      float64
	Quantity   int64
}

// Amount is the signed position delta of the fill.
func (f Fill) Amount() int64 {
	return f.Side.Sign() * f.Quantity
}

// Value is the signed cash value of the fill.
func (f Fill) Value() float64 {
	return float64(f.Amount()) * f.Price
}

// FillsFor orients a batch of transactions from the submitting order's point
// of view, ready for settlement into that client's portfolio.
func FillsFor(o *book.Order, txs []book.Transaction) []Fill {
	fills := make([]Fill, 0, len(txs))
	for _, tx := range txs {
		fills = append(fills, Fill{
			Instrument: o.Instrument,
			Side:       o.Side,
			Price:      tx.Price,
			Quantity:   tx.Quantity,
		})
	}
	return fills
}

// Portfolio is a collection of signed positions keyed by instrument,
// including the cash leg.
type Portfolio struct {
	positions map[string]float64
}

func NewPortfolio() *Portfolio {
	return &Portfolio{positions: make(map[string]float64)}
}

// Add accumulates a signed position delta for an instrument.
func (p *Portfolio) Add(instrument string, amount float64) {
	p.positions[instrument] += amount
}

// Position returns the current signed position in an instrument.
func (p *Portfolio) Position(instrument string) float64 {
	return p.positions[instrument]
}

// DropZero removes fully flattened positions.
func (p *Portfolio) DropZero() {
	for instrument, amount := range p.positions {
		if amount == 0 {
			delete(p.positions, instrument)
		}
	}
}

// Positions returns a copy of the position map.
func (p *Portfolio) Positions() map[string]float64 {
	out := make(map[string]float64, len(p.positions))
	for instrument, amount := range p.positions {
		out[instrument] = amount
	}
	return out
}

// Settler converts executed fills into portfolio deltas: each fill adds its
// signed amount to the instrument position and debits the cash leg by the
// fill's value.
type Settler struct {
	leg string
}

func NewSettler(leg string) *Settler {
	if leg == "" {
		leg = DefaultLeg
	}
	return &Settler{leg: leg}
}

// Apply settles fills into an existing portfolio and returns it.
func (s *Settler) Apply(p *Portfolio, fills []Fill) *Portfolio {
	for _, f := range fills {
		p.Add(f.Instrument, float64(f.Amount()))
		p.Add(s.leg, -f.Value())
	}
	p.DropZero()
	return p
}

// ToPortfolio settles fills into a fresh portfolio.
func (s *Settler) ToPortfolio(fills []Fill) *Portfolio {
	return s.Apply(NewPortfolio(), fills)
}
