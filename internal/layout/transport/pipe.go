package transport

import (
	"context"
	"sync"

	"github.com/Faultbox/netviz/internal/layout/protocol"
)

// pipe is the state shared by both ends of an in-process pair.
type pipe struct {
	mu     sync.RWMutex
	once   sync.Once
	done   chan struct{}
	closed bool
	a, b   chan protocol.Message
}

// endpoint is one side of a pipe.
type endpoint struct {
	p   *pipe
	in  chan protocol.Message
	out chan protocol.Message
}

// NewPipe returns two connected in-process transports. Each direction holds
// up to buffer messages; Send blocks when it is full. Closing either end
// closes both.
func NewPipe(buffer int) (Transport, Transport) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	p := &pipe{
		done: make(chan struct{}),
		a:    make(chan protocol.Message, buffer),
		b:    make(chan protocol.Message, buffer),
	}
	return &endpoint{p: p, in: p.a, out: p.b}, &endpoint{p: p, in: p.b, out: p.a}
}

func (e *endpoint) Send(ctx context.Context, m protocol.Message) error {
	e.p.mu.RLock()
	defer e.p.mu.RUnlock()
	if e.p.closed {
		return ErrClosed
	}
	select {
	case e.out <- m:
		return nil
	case <-e.p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *endpoint) Inbound() <-chan protocol.Message {
	return e.in
}

func (e *endpoint) Close() error {
	e.p.once.Do(func() {
		close(e.p.done)
		e.p.mu.Lock()
		e.p.closed = true
		close(e.p.a)
		close(e.p.b)
		e.p.mu.Unlock()
	})
	return nil
}
