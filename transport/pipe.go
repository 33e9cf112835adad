package transport

import (
	"sync"

	"github.com/skylink-gcs/groundlink/wire"
)

// Pipe is an in-memory Adapter whose Send delivers synchronously to its
// peer's listener. Messages sent before the peer registers a listener are
// queued and flushed on registration, so wiring order does not matter.
type Pipe struct {
	peer *Pipe

	mu       sync.Mutex
	listener func(*wire.Message)
	queue    []*wire.Message
	closed   bool
}

// NewPipe returns two connected adapters; frames sent on one arrive on the
// other.
func NewPipe() (*Pipe, *Pipe) {
	a := &Pipe{}
	b := &Pipe{}
	a.peer = b
	b.peer = a
	return a, b
}

func (p *Pipe) Send(msg *wire.Message) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return ErrNotConnected
	}
	p.peer.deliver(msg)
	return nil
}

func (p *Pipe) SetListener(fn func(*wire.Message)) {
	p.mu.Lock()
	if p.listener != nil {
		p.mu.Unlock()
		return
	}
	p.listener = fn
	backlog := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, msg := range backlog {
		fn(msg)
	}
}

// Close breaks both directions.
func (p *Pipe) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.peer.mu.Lock()
	p.peer.closed = true
	p.peer.mu.Unlock()
	return nil
}

func (p *Pipe) deliver(msg *wire.Message) {
	p.mu.Lock()
	if p.listener == nil {
		p.queue = append(p.queue, msg)
		p.mu.Unlock()
		return
	}
	fn := p.listener
	p.mu.Unlock()

	fn(msg)
}
