package book

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

var (
	// ErrInvalidOrder rejects orders with a non-positive price or quantity,
	// or an undefined side. Raised before any book state is touched.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrOrderNotFound rejects cancellation of an unknown or already
	// removed order id.
	ErrOrderNotFound = errors.New("order not found")
)

// DefaultTickSize is used when a Book is constructed with a non-positive
// tick.
const DefaultTickSize = 0.01

// orderRef locates a resting order: the level it sits in plus the order
// itself. The level retains the O(1) removal handle keyed by order id.
type orderRef struct {
	order *Order
	level *PriceLevel
}

// Book is a single instrument's limit order book: a bid ladder, an ask
// ladder and an id index over every resting order. All prices are rounded
// to the configured tick size before they touch either ladder.
//
// The book is not internally synchronized. All calls against one Book must
// be serialized by the owner; matching is inherently sequential since an
// aggressor's fill path depends on every prior resting order it touches.
// Independent instruments run independent books concurrently.
type Book struct {
	instrument string
	tick       float64
	bids       *Ladder
	asks       *Ladder
	orders     map[uuid.UUID]orderRef
}

// Level is one rung of a depth snapshot.
type Level struct {
	Price    float64
	Quantity int64
}

func New(instrument string, tick float64) *Book {
	if tick <= 0 {
		tick = DefaultTickSize
	}
	return &Book{
		instrument: instrument,
		tick:       tick,
		bids:       NewLadder(Buy),
		asks:       NewLadder(Sell),
		orders:     make(map[uuid.UUID]orderRef),
	}
}

func (b *Book) Instrument() string {
	return b.instrument
}

func (b *Book) TickSize() float64 {
	return b.tick
}

// Round snaps a raw price to the nearest tick, so orders intended for the
// same economic price always land in the same level. Idempotent.
func (b *Book) Round(price float64) float64 {
	return math.Round(price/b.tick) * b.tick
}

// Clear drops every resting order and level on both sides.
func (b *Book) Clear() {
	b.bids = NewLadder(Buy)
	b.asks = NewLadder(Sell)
	b.orders = make(map[uuid.UUID]orderRef)
}

// ladder returns the resting ladder for a side.
func (b *Book) ladder(s Side) *Ladder {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

func (b *Book) validate(o *Order, limit bool) error {
	if o.Side != Buy && o.Side != Sell {
		return fmt.Errorf("%w: side must be BUY or SELL, got %s", ErrInvalidOrder, o.Side)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidOrder, o.Quantity)
	}
	if limit && o.Price <= 0 {
		return fmt.Errorf("%w: price must be positive, got %f", ErrInvalidOrder, o.Price)
	}
	return nil
}

// SubmitLimit matches the order against the opposite ladder while the
// opposite best price is at least as aggressive as the limit, then rests
// any remainder at its rounded price on its own side. The order is indexed
// for cancellation only if it rests.
func (b *Book) SubmitLimit(o *Order) ([]Transaction, error) {
	if err := b.validate(o, true); err != nil {
		return nil, err
	}
	o.Price = b.Round(o.Price)

	txs := b.match(o, o.Price, true)

	if o.Quantity > 0 {
		level := b.ladder(o.Side).GetOrCreate(o.Price)
		level.Add(o)
		b.orders[o.ID] = orderRef{order: o, level: level}
	}
	return txs, nil
}

// SubmitMarket sweeps the opposite ladder from the best price outward until
// the order fills or the ladder is exhausted. Market orders never rest; any
// unfilled remainder stays on the order so the caller sees how much went
// unexecuted. An empty opposite ladder simply yields zero transactions.
func (b *Book) SubmitMarket(o *Order) ([]Transaction, error) {
	if err := b.validate(o, false); err != nil {
		return nil, err
	}
	return b.match(o, 0, false), nil
}

// match is the crossing procedure shared by limit and market submission.
// It walks the opposite ladder best first, consuming resting orders under
// price-time priority. When bounded, it stops once the opposite best is no
// longer as aggressive as limit (inclusive tie-break: equal prices trade).
//
// The current best level is cached across the inner fill loop; the ladder is
// only re-queried when a level empties.
func (b *Book) match(o *Order, limit float64, bounded bool) []Transaction {
	opposite := b.ladder(o.Side.Opposite())
	var txs []Transaction

	level, ok := opposite.Best()
	for ok && o.Quantity > 0 {
		if bounded && !o.Side.Crosses(level.Price(), limit) {
			break
		}

		for o.Quantity > 0 && !level.Empty() {
			resting := level.Front()
			fill := min(o.Quantity, resting.Quantity)

			txs = append(txs, newTransaction(o, resting, level.Price(), fill))
			o.Quantity -= fill
			resting.Quantity -= fill

			if resting.Quantity == 0 {
				level.Remove(resting.ID)
				delete(b.orders, resting.ID)
			}
		}

		if !level.Empty() {
			break // aggressor exhausted mid-level
		}
		opposite.Remove(level.Price())
		level, ok = opposite.Best()
	}
	return txs
}

// Cancel removes a resting order. The empty level left behind, if any, is
// pruned from its ladder. No transactions are produced.
func (b *Book) Cancel(id uuid.UUID) error {
	ref, ok := b.orders[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	ref.level.Remove(id)
	if ref.level.Empty() {
		b.ladder(ref.order.Side).Remove(ref.level.Price())
	}
	delete(b.orders, id)
	return nil
}

// QuantityAt sums the resident quantity at a rounded price on one side, or
// 0 if no level rests there.
func (b *Book) QuantityAt(price float64, side Side) int64 {
	if side != Buy && side != Sell {
		return 0
	}
	level, ok := b.ladder(side).Get(b.Round(price))
	if !ok {
		return 0
	}
	return level.Quantity()
}

// QueueAhead totals the quantity resting at levels strictly more aggressive
// than price on the given side: the queue a hypothetical order at price
// would wait behind.
func (b *Book) QueueAhead(price float64, side Side) int64 {
	if side != Buy && side != Sell {
		return 0
	}
	price = b.Round(price)
	var total int64
	b.ladder(side).Walk(func(level *PriceLevel) bool {
		if !side.MoreAggressive(level.Price(), price) {
			return false
		}
		total += level.Quantity()
		return true
	})
	return total
}

// Depth returns up to n levels on one side as (price, aggregate quantity)
// pairs, most aggressive first. Non-positive n yields no levels.
func (b *Book) Depth(n int, side Side) []Level {
	if side != Buy && side != Sell {
		return nil
	}
	out := make([]Level, 0, max(n, 0))
	b.ladder(side).Walk(func(level *PriceLevel) bool {
		if len(out) >= n {
			return false
		}
		out = append(out, Level{Price: level.Price(), Quantity: level.Quantity()})
		return true
	})
	return out
}

// Shape reports the number of resting bid and ask levels.
func (b *Book) Shape() (bids, asks int) {
	return b.bids.Len(), b.asks.Len()
}

// Order returns the resting order with the given id, if present.
func (b *Book) Order(id uuid.UUID) (*Order, bool) {
	ref, ok := b.orders[id]
	if !ok {
		return nil, false
	}
	return ref.order, true
}
