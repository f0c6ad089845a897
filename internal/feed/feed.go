// Package feed serves a read-only websocket stream of depth snapshots and
// trade prints. It is presentation only: order entry never goes through it.
package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"lob/internal/book"
	"lob/internal/sim"
)

const (
	writeWait       = 10 * time.Second
	subscriberSlack = 16
)

// Message is a single feed event, either a depth snapshot or a trade print.
type Message struct {
	Type       string       `json:"type"` // "depth" or "trade"
	Instrument string       `json:"instrument"`
	Bids       []book.Level `json:"bids,omitempty"`
	Asks       []book.Level `json:"asks,omitempty"`
	Trade      *Trade       `json:"trade,omitempty"`
}

type Trade struct {
	Buyer    string  `json:"buyer"`
	Seller   string  `json:"seller"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// Reporter bridges engine trade reports onto the feed hub.
type Reporter struct {
	hub *sim.Hub[Message]
}

func NewReporter(hub *sim.Hub[Message]) *Reporter {
	return &Reporter{hub: hub}
}

func (r *Reporter) ReportTrade(instrument string, tx book.Transaction) {
	r.hub.Broadcast(Message{
		Type:       "trade",
		Instrument: instrument,
		Trade: &Trade{
			Buyer:    tx.Buyer,
			Seller:   tx.Seller,
			Price:    tx.Price,
			Quantity: tx.Quantity,
		},
	})
}

// DepthSource is the query surface the publisher snapshots from.
type DepthSource interface {
	Instrument() string
	Depth(ctx context.Context, n int, side book.Side) ([]book.Level, error)
}

// Publisher periodically snapshots depth from its sources and broadcasts
// the result.
type Publisher struct {
	hub      *sim.Hub[Message]
	sources  []DepthSource
	levels   int
	interval time.Duration
}

func NewPublisher(hub *sim.Hub[Message], levels int, interval time.Duration, sources ...DepthSource) *Publisher {
	return &Publisher{
		hub:      hub,
		sources:  sources,
		levels:   levels,
		interval: interval,
	}
}

func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, src := range p.sources {
				bids, err := src.Depth(ctx, p.levels, book.Buy)
				if err != nil {
					return err
				}
				asks, err := src.Depth(ctx, p.levels, book.Sell)
				if err != nil {
					return err
				}
				p.hub.Broadcast(Message{
					Type:       "depth",
					Instrument: src.Instrument(),
					Bids:       bids,
					Asks:       asks,
				})
			}
		}
	}
}

// Server upgrades websocket clients and replays every hub message to them.
type Server struct {
	addr     string
	hub      *sim.Hub[Message]
	upgrader websocket.Upgrader
}

func NewServer(addr string, hub *sim.Hub[Message]) *Server {
	return &Server{
		addr: addr,
		hub:  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	srv := &http.Server{Addr: s.addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", s.addr).Msg("feed server running")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(subscriberSlack)
	defer s.hub.Unsubscribe(sub)

	// Drain the client's read side so connection close is noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
