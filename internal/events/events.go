// Package events publishes round lifecycle events to NATS
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

// Event subjects, relative to the configured prefix
const (
	SubjectDrawRecorded = "draw.recorded"
	SubjectRoundSettled = "round.settled"
	SubjectRoundClosed  = "round.closed"
)

// Event is the payload published for every subject
type Event struct {
	Subject        string             `json:"subject"`
	RoundID        string             `json:"roundId"`
	Status         models.RoundStatus `json:"status,omitempty"`
	DrawID         string             `json:"drawId,omitempty"`
	ChampionFound  bool               `json:"championFound,omitempty"`
	TotalCollected *decimal.Decimal   `json:"totalCollected,omitempty"`
	PlanDigest     string             `json:"planDigest,omitempty"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// Publisher sends events. Publishing is best effort: settlement and draw
// recording never fail because an event could not be delivered.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// NATSPublisher publishes JSON events on <prefix>.<subject>
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// Connect dials NATS with an optional token
func Connect(url, token, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("poolgame-settlement"),
		nats.MaxReconnects(-1),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

// Publish encodes and sends an event
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject(p.prefix, e.Subject), data)
}

// Close drains the connection
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

func subject(prefix, s string) string {
	if prefix == "" {
		return s
	}
	return prefix + "." + s
}

// NoopPublisher drops events
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close does nothing
func (NoopPublisher) Close() {}

// Recorder keeps published events in memory, for tests
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish records e
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Close does nothing
func (r *Recorder) Close() {}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
