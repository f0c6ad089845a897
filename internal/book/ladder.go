package book

import "github.com/tidwall/btree"

// Ladder is one side of the book: an ordered map from price to PriceLevel.
// The btree comparator is side specific, so the tree minimum is always the
// most aggressive level (highest bid, lowest ask) and an ascending walk
// visits levels best first on either side.
type Ladder struct {
	side   Side
	levels *btree.BTreeG[*PriceLevel]
}

func NewLadder(side Side) *Ladder {
	less := func(a, b *PriceLevel) bool { return a.price < b.price }
	if side == Buy {
		less = func(a, b *PriceLevel) bool { return a.price > b.price }
	}
	return &Ladder{
		side:   side,
		levels: btree.NewBTreeG(less),
	}
}

func (ld *Ladder) Side() Side {
	return ld.side
}

// Best returns the most aggressive level, or false if the ladder is empty.
func (ld *Ladder) Best() (*PriceLevel, bool) {
	return ld.levels.MinMut()
}

// Get returns the level resting at price, if any.
func (ld *Ladder) Get(price float64) (*PriceLevel, bool) {
	return ld.levels.GetMut(&PriceLevel{price: price})
}

// GetOrCreate returns the level at price, creating and inserting it first if
// absent.
func (ld *Ladder) GetOrCreate(price float64) *PriceLevel {
	if level, ok := ld.levels.GetMut(&PriceLevel{price: price}); ok {
		return level
	}
	level := NewPriceLevel(price)
	ld.levels.Set(level)
	return level
}

// Remove deletes the level at price. Reports whether a level was present.
func (ld *Ladder) Remove(price float64) bool {
	_, ok := ld.levels.Delete(&PriceLevel{price: price})
	return ok
}

// NextAfter returns the best level strictly worse than price, used to keep
// walking the book when a level empties mid-match.
func (ld *Ladder) NextAfter(price float64) (*PriceLevel, bool) {
	var next *PriceLevel
	ld.levels.Ascend(&PriceLevel{price: price}, func(level *PriceLevel) bool {
		if level.price == price {
			return true
		}
		next = level
		return false
	})
	return next, next != nil
}

// Walk visits levels best first until fn returns false.
func (ld *Ladder) Walk(fn func(*PriceLevel) bool) {
	ld.levels.Scan(fn)
}

func (ld *Ladder) Len() int {
	return ld.levels.Len()
}
