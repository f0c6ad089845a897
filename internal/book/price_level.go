package book

import (
	"container/list"

	"github.com/google/uuid"
)

// PriceLevel is the FIFO queue of orders resting at a single price.
// Insertion order is time priority. A doubly linked list plus a per-order
// element handle gives O(1) append, front and arbitrary removal, so
// cancellation never scans the queue.
//
// A level knows nothing about the ladder that owns it; pruning empty levels
// is the ladder owner's job.
type PriceLevel struct {
	price   float64
	orders  *list.List
	handles map[uuid.UUID]*list.Element
}

func NewPriceLevel(price float64) *PriceLevel {
	return &PriceLevel{
		price:   price,
		orders:  list.New(),
		handles: make(map[uuid.UUID]*list.Element),
	}
}

func (l *PriceLevel) Price() float64 {
	return l.price
}

// Add appends the order at the back of the queue.
func (l *PriceLevel) Add(o *Order) {
	l.handles[o.ID] = l.orders.PushBack(o)
}

// Front returns the oldest resting order without removing it, or nil if the
// level is empty.
func (l *PriceLevel) Front() *Order {
	front := l.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*Order)
}

// Remove deletes the order with the given id from the queue. Reports whether
// the order was present.
func (l *PriceLevel) Remove(id uuid.UUID) bool {
	elem, ok := l.handles[id]
	if !ok {
		return false
	}
	l.orders.Remove(elem)
	delete(l.handles, id)
	return true
}

func (l *PriceLevel) Empty() bool {
	return l.orders.Len() == 0
}

func (l *PriceLevel) Len() int {
	return l.orders.Len()
}

// Quantity sums the remaining quantity resident at this level.
func (l *PriceLevel) Quantity() int64 {
	var total int64
	for e := l.orders.Front(); e != nil; e = e.Next() {
		total += e.Value.(*Order).Quantity
	}
	return total
}

// Orders returns the resting orders in time priority order.
func (l *PriceLevel) Orders() []*Order {
	out := make([]*Order, 0, l.orders.Len())
	for e := l.orders.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Order))
	}
	return out
}
