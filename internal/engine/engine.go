package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"lob/internal/book"
)

const taskBacklog = 100

var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrStopped           = errors.New("engine stopped")
)

// Reporter receives every executed trade. SetReporter installs one; the
// default logs trades.
type Reporter interface {
	ReportTrade(instrument string, tx book.Transaction)
}

type logReporter struct{}

func (logReporter) ReportTrade(instrument string, tx book.Transaction) {
	log.Info().
		Str("instrument", instrument).
		Str("buyer", tx.Buyer).
		Str("seller", tx.Seller).
		Float64("price", tx.Price).
		Int64("quantity", tx.Quantity).
		Msg("trade")
}

// Engine owns one Book per instrument. Matching is inherently sequential,
// so each book is guarded by a single exclusive-owner goroutine draining a
// task channel; calls against one instrument execute to completion in
// arrival order while distinct instruments run fully concurrently.
type Engine struct {
	t        *tomb.Tomb
	reporter Reporter
	books    map[string]*Handle
}

// Handle is the per-instrument surface callers submit through.
type Handle struct {
	eng   *Engine
	book  *book.Book
	tasks chan func(*book.Book)
}

func New(tick float64, instruments ...string) *Engine {
	eng := &Engine{
		t:        new(tomb.Tomb),
		reporter: logReporter{},
		books:    make(map[string]*Handle, len(instruments)),
	}
	for _, instrument := range instruments {
		h := &Handle{
			eng:   eng,
			book:  book.New(instrument, tick),
			tasks: make(chan func(*book.Book), taskBacklog),
		}
		eng.books[instrument] = h
		eng.t.Go(func() error {
			return eng.serve(h)
		})
	}
	return eng
}

func (e *Engine) SetReporter(r Reporter) {
	e.reporter = r
}

// Book returns the handle for an instrument.
func (e *Engine) Book(instrument string) (*Handle, error) {
	h, ok := e.books[instrument]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstrument, instrument)
	}
	return h, nil
}

// Stop kills every book owner and waits for them to drain.
func (e *Engine) Stop() error {
	e.t.Kill(nil)
	return e.t.Wait()
}

func (e *Engine) serve(h *Handle) error {
	for {
		select {
		case <-e.t.Dying():
			return nil
		case task := <-h.tasks:
			task(h.book)
		}
	}
}

// do runs fn on the instrument's owner goroutine and waits for it.
func (h *Handle) do(ctx context.Context, fn func(*book.Book) error) error {
	done := make(chan error, 1)
	select {
	case h.tasks <- func(b *book.Book) { done <- fn(b) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.eng.t.Dying():
		return ErrStopped
	}
	select {
	case err := <-done:
		return err
	case <-h.eng.t.Dying():
		return ErrStopped
	}
}

func (h *Handle) Instrument() string {
	return h.book.Instrument()
}

func (h *Handle) TickSize() float64 {
	return h.book.TickSize()
}

func (h *Handle) SubmitLimit(ctx context.Context, o *book.Order) ([]book.Transaction, error) {
	var txs []book.Transaction
	err := h.do(ctx, func(b *book.Book) error {
		var err error
		txs, err = b.SubmitLimit(o)
		h.report(txs)
		return err
	})
	return txs, err
}

func (h *Handle) SubmitMarket(ctx context.Context, o *book.Order) ([]book.Transaction, error) {
	var txs []book.Transaction
	err := h.do(ctx, func(b *book.Book) error {
		var err error
		txs, err = b.SubmitMarket(o)
		h.report(txs)
		return err
	})
	return txs, err
}

func (h *Handle) Cancel(ctx context.Context, id uuid.UUID) error {
	return h.do(ctx, func(b *book.Book) error {
		return b.Cancel(id)
	})
}

func (h *Handle) QuantityAt(ctx context.Context, price float64, side book.Side) (int64, error) {
	var qty int64
	err := h.do(ctx, func(b *book.Book) error {
		qty = b.QuantityAt(price, side)
		return nil
	})
	return qty, err
}

func (h *Handle) QueueAhead(ctx context.Context, price float64, side book.Side) (int64, error) {
	var qty int64
	err := h.do(ctx, func(b *book.Book) error {
		qty = b.QueueAhead(price, side)
		return nil
	})
	return qty, err
}

func (h *Handle) Depth(ctx context.Context, n int, side book.Side) ([]book.Level, error) {
	var levels []book.Level
	err := h.do(ctx, func(b *book.Book) error {
		levels = b.Depth(n, side)
		return nil
	})
	return levels, err
}

func (h *Handle) Shape(ctx context.Context) (bids, asks int, err error) {
	err = h.do(ctx, func(b *book.Book) error {
		bids, asks = b.Shape()
		return nil
	})
	return bids, asks, err
}

func (h *Handle) report(txs []book.Transaction) {
	for _, tx := range txs {
		h.eng.reporter.ReportTrade(h.book.Instrument(), tx)
	}
}
