package sim

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lob/internal/book"
)

// Client is the minimal engine surface the bots trade through.
type Client interface {
	Instrument() string
	TickSize() float64
	SubmitLimit(ctx context.Context, o *book.Order) ([]book.Transaction, error)
	SubmitMarket(ctx context.Context, o *book.Order) ([]book.Transaction, error)
	Cancel(ctx context.Context, id uuid.UUID) error
}

// Bot is a trading agent run against a Client until its context is
// cancelled.
type Bot interface {
	Run(ctx context.Context, client Client) error
}

// MakerBot rests short-lived limit orders on one side, a random number of
// ticks away from the walk's midprice, and cancels them after Lifetime.
type MakerBot struct {
	Name       string
	Side       book.Side
	Interval   time.Duration
	Lifetime   time.Duration
	Quantity   int64
	RangeTicks int64
	Walk       *Walk

	rand *rand.Rand
}

func NewMakerBot(name string, side book.Side, walk *Walk) *MakerBot {
	return &MakerBot{
		Name:       name,
		Side:       side,
		Interval:   200 * time.Millisecond,
		Lifetime:   2 * time.Second,
		Quantity:   1,
		RangeTicks: 5,
		Walk:       walk,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MakerBot) Run(ctx context.Context, client Client) error {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.place(ctx, client)
		}
	}
}

func (m *MakerBot) place(ctx context.Context, client Client) {
	tick := client.TickSize()
	// Bids quote below mid, asks above.
	delta := float64(m.rand.Int63n(m.RangeTicks+1)) * tick
	price := m.Walk.Price() - float64(m.Side.Sign())*delta
	if price < tick {
		price = tick
	}

	order := book.NewOrder(client.Instrument(), m.Side, price, m.Quantity, m.Name)
	if _, err := client.SubmitLimit(ctx, order); err != nil {
		log.Warn().Err(err).Str("bot", m.Name).Msg("limit rejected")
		return
	}

	id := order.ID
	time.AfterFunc(m.Lifetime, func() {
		// Already-filled orders come back as not found; that is fine.
		_ = client.Cancel(context.Background(), id)
	})
}

// TakerBot fires small market orders on a random side, consuming whatever
// the makers rested.
type TakerBot struct {
	Name     string
	Interval time.Duration
	MaxQty   int64

	rand *rand.Rand
}

func NewTakerBot(name string) *TakerBot {
	return &TakerBot{
		Name:     name,
		Interval: 500 * time.Millisecond,
		MaxQty:   3,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (t *TakerBot) Run(ctx context.Context, client Client) error {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			side := book.Buy
			if t.rand.Intn(2) == 0 {
				side = book.Sell
			}
			qty := 1 + t.rand.Int63n(t.MaxQty)
			order := book.NewOrder(client.Instrument(), side, 0, qty, t.Name)
			if _, err := client.SubmitMarket(ctx, order); err != nil {
				log.Warn().Err(err).Str("bot", t.Name).Msg("market rejected")
			}
		}
	}
}

// WalkBot advances the shared midprice walk on a fixed cadence.
type WalkBot struct {
	Interval time.Duration
	Walk     *Walk
}

func NewWalkBot(walk *Walk) *WalkBot {
	return &WalkBot{Interval: time.Second, Walk: walk}
}

func (w *WalkBot) Run(ctx context.Context, _ Client) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Walk.Step()
		}
	}
}
