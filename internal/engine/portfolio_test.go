package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lob/internal/book"
)

func TestFillsFor_Orientation(t *testing.T) {
	o := book.NewOrder("MSFT", book.Buy, 1.02, 12, "D")
	txs := []book.Transaction{
		{Buyer: "D", Seller: "B", Price: 1.02, Quantity: 5},
		{Buyer: "D", Seller: "A", Price: 1.01, Quantity: 7},
	}

	fills := FillsFor(o, txs)
	require.Len(t, fills, 2)
	assert.Equal(t, book.Buy, fills[0].Side)
	assert.Equal(t, "MSFT", fills[0].Instrument)
	assert.Equal(t, int64(5), fills[0].Amount())
	assert.InDelta(t, 5*1.02, fills[0].Value(), 1e-9)
	assert.Equal(t, int64(7), fills[1].Amount())
}

func TestSettler_Apply(t *testing.T) {
	settler := NewSettler("")

	p := settler.ToPortfolio([]Fill{
		{Instrument: "MSFT", Side: book.Buy, Price: 1.02, Quantity: 5},
	})
	assert.Equal(t, 5.0, p.Position("MSFT"))
	assert.InDelta(t, -5.1, p.Position(DefaultLeg), 1e-9)

	// A sell unwinds the position and credits the cash leg.
	settler.Apply(p, []Fill{
		{Instrument: "MSFT", Side: book.Sell, Price: 1.04, Quantity: 5},
	})
	assert.InDelta(t, 5*1.04-5*1.02, p.Position(DefaultLeg), 1e-9)

	// The flattened position was dropped, not kept at zero.
	_, ok := p.Positions()["MSFT"]
	assert.False(t, ok)
}

func TestSettler_CustomLeg(t *testing.T) {
	settler := NewSettler("EUR")
	p := settler.ToPortfolio([]Fill{
		{Instrument: "DAX", Side: book.Sell, Price: 2.0, Quantity: 3},
	})
	assert.Equal(t, -3.0, p.Position("DAX"))
	assert.InDelta(t, 6.0, p.Position("EUR"), 1e-9)
	assert.Equal(t, 0.0, p.Position(DefaultLeg))
}

func TestPortfolio_Accumulates(t *testing.T) {
	p := NewPortfolio()
	p.Add("MSFT", 3)
	p.Add("MSFT", 2)
	assert.Equal(t, 5.0, p.Position("MSFT"))

	p.Add("MSFT", -5)
	p.DropZero()
	assert.Empty(t, p.Positions())
}
