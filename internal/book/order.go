package book

import (
	"fmt"

	"github.com/google/uuid"
)

// Side is the direction of an order. The sign of the numeric value is used
// directly when converting fills into position deltas.
type Side int8

const (
	// SideNone is the neutral sentinel, representing "no order".
	SideNone Side = 0
	Buy      Side = 1
	Sell     Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case SideNone:
		return "NONE"
	}
	return fmt.Sprintf("Side(%d)", int8(s))
}

// Sign returns +1 for Buy, -1 for Sell and 0 for the sentinel.
func (s Side) Sign() int64 {
	return int64(s)
}

// Opposite returns the side an aggressor matches against.
func (s Side) Opposite() Side {
	return -s
}

// Crosses reports whether a resting level at restingPrice is at least as
// aggressive as the given limit from this side's point of view. The
// comparison is inclusive: an incoming limit equal to the opposite best
// price trades rather than rests.
func (s Side) Crosses(restingPrice, limit float64) bool {
	switch s {
	case Buy:
		return restingPrice <= limit
	case Sell:
		return restingPrice >= limit
	}
	return false
}

// MoreAggressive reports whether price a outranks price b on this side.
func (s Side) MoreAggressive(a, b float64) bool {
	switch s {
	case Buy:
		return a > b
	case Sell:
		return a < b
	}
	return false
}

// Order is a request to trade. Identity is immutable; Quantity is the only
// field the matching loop mutates, strictly decreasing toward zero as fills
// occur. An order with zero quantity is never resident in the book.
type Order struct {
	ID         uuid.UUID
	Instrument string
	Side       Side
	Price      float64 // limit price, ignored for market orders
	Quantity   int64   // remaining quantity
	Client     string
}

// NewOrder allocates an order with a fresh random identity.
func NewOrder(instrument string, side Side, price float64, quantity int64, client string) *Order {
	return &Order{
		ID:         uuid.New(),
		Instrument: instrument,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
		Client:     client,
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(%s %s %d@%f client=%s)", o.Side, o.Instrument, o.Quantity, o.Price, o.Client)
}

// Transaction records a single match. Price is always the resting order's
// price, never the aggressor's limit. Immutable once created.
type Transaction struct {
	Buyer    string
	Seller   string
	Price    float64
	Quantity int64
}

func newTransaction(aggressor, resting *Order, price float64, quantity int64) Transaction {
	if aggressor.Side == Buy {
		return Transaction{Buyer: aggressor.Client, Seller: resting.Client, Price: price, Quantity: quantity}
	}
	return Transaction{Buyer: resting.Client, Seller: aggressor.Client, Price: price, Quantity: quantity}
}
