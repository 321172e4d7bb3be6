package state

import "sync"

// Sender is the producer side of a Mailbox. Send reports false once the
// consumer has gone away; producers should stop when that happens.
type Sender interface {
	Send(Message) bool
}

// Mailbox is an unbounded FIFO of Messages with many senders and one
// receiver. Send never blocks.
type Mailbox struct {
	mu     sync.Mutex
	queue  []Message
	closed bool
	wake   chan struct{}
}

// NewMailbox creates an empty mailbox
func NewMailbox() *Mailbox {
	return &Mailbox{wake: make(chan struct{}, 1)}
}

// Send enqueues msg. It returns false, dropping msg, if the mailbox is closed.
func (m *Mailbox) Send(msg Message) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	m.signal()
	return true
}

// Recv blocks until a message is available and returns it. It returns false
// when the mailbox is closed and empty.
func (m *Mailbox) Recv() (Message, bool) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			msg := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return msg, true
		}
		if m.closed {
			m.mu.Unlock()
			return nil, false
		}
		m.mu.Unlock()
		<-m.wake
	}
}

// Close rejects further sends. Messages already queued can still be received.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.signal()
}

// Len returns the number of queued messages
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Mailbox) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
