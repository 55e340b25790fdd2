// Package client is a small Go peer for the signaling socket, used by the
// probe and by end-to-end tests.
package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/protocol"
)

type Options struct {
	HandshakeTimeout time.Duration
	WriteWait        time.Duration
	// Buffer is the size of the Events channel.
	Buffer int
	Header http.Header
}

func DefaultOptions() Options {
	return Options{
		HandshakeTimeout: 10 * time.Second,
		WriteWait:        10 * time.Second,
		Buffer:           256,
	}
}

// Client owns one websocket. Inbound frames arrive decoded on Events, which
// is closed when the connection ends.
type Client struct {
	conn *websocket.Conn
	opts Options

	events  chan protocol.Envelope
	done    chan struct{}
	closing chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	err       error
}

func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		conn:    conn,
		opts:    opts,
		events:  make(chan protocol.Envelope, max(opts.Buffer, 1)),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) Events() <-chan protocol.Envelope { return c.events }

// Done is closed once the read loop has stopped.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err is the error that stopped the read loop, valid after Done.
func (c *Client) Err() error {
	<-c.done
	return c.err
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.err = err
			}
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			log.Warn().Err(err).Str("module", "client").Msg("bad frame from server")
			continue
		}
		select {
		case c.events <- env:
		case <-c.closing:
			return
		}
	}
}

// Send encodes v as the data of a t frame. A nil v sends no data.
func (c *Client) Send(t protocol.Event, v any) error {
	b, err := protocol.Encode(t, v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.opts.WriteWait > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("send %s: %w", t, err)
	}
	return nil
}

// Await returns the next event of type t, skipping others.
func (c *Client) Await(ctx context.Context, t protocol.Event) (protocol.Envelope, error) {
	for {
		select {
		case <-ctx.Done():
			return protocol.Envelope{}, ctx.Err()
		case env, ok := <-c.events:
			if !ok {
				return protocol.Envelope{}, fmt.Errorf("await %s: connection closed", t)
			}
			if env.Type == t {
				return env, nil
			}
		}
	}
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closing)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
