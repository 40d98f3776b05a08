package websocket

import (
	"context"
	"edusmarthub/contract"
	"edusmarthub/domain/event"
	"edusmarthub/errors"
	"sync"
)

var _ contract.EventSink = (*Sink)(nil)

// Sink buffers the outbound events of one connection until its write pump sends them.
// Consume never blocks: a full buffer drops the event and reports ErrSinkFull.
type Sink struct {
	mu     sync.Mutex
	closed bool
	send   chan event.Outbound
}

func NewSink(bufferSize int) *Sink {
	return &Sink{send: make(chan event.Outbound, bufferSize)}
}

func (s *Sink) Consume(ctx context.Context, e event.Outbound) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSinkClosed
	}
	select {
	case s.send <- e:
		return nil
	default:
		return errors.ErrSinkFull
	}
}

// Events is drained by the write pump and closed by Close.
func (s *Sink) Events() <-chan event.Outbound { return s.send }

// Close is idempotent.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}
