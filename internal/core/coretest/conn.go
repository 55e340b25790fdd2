// Package coretest provides in-memory SignalConnection fakes for tests.
package coretest

import (
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/protocol"
)

// Conn records every frame it accepts. With Capacity > 0 it refuses frames
// beyond that many, mimicking a full outbound queue.
type Conn struct {
	Capacity int

	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func NewConn() *Conn { return &Conn{} }

func (c *Conn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if c.Capacity > 0 && len(c.frames) >= c.Capacity {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Envelopes decodes everything received so far.
func (c *Conn) Envelopes() []protocol.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		env, err := protocol.Decode(f)
		if err != nil {
			continue
		}
		out = append(out, env)
	}
	return out
}

// Of returns the received envelopes of one type, in arrival order.
func (c *Conn) Of(t protocol.Event) []protocol.Envelope {
	var out []protocol.Envelope
	for _, env := range c.Envelopes() {
		if env.Type == t {
			out = append(out, env)
		}
	}
	return out
}

func (c *Conn) Types() []protocol.Event {
	envs := c.Envelopes()
	out := make([]protocol.Event, len(envs))
	for i, env := range envs {
		out[i] = env.Type
	}
	return out
}

func (c *Conn) Reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

// Session is a MemberSession over a fresh Conn.
func Session(id core.SessionID, name string) (core.MemberSession, *Conn) {
	conn := NewConn()
	return core.NewMemberSession(id, name, conn), conn
}
