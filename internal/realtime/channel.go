package realtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/sundowners/taskhub/internal/model"
)

// ErrDisconnected is returned by Publish while the channel has no live
// connection. Nothing is queued for later delivery.
var ErrDisconnected = errors.New("realtime: not connected")

// Channel is one application instance's connection to the relay. It
// reconnects on its own after transport loss.
type Channel struct {
	url        string
	logf       func(format string, args ...any)
	minBackoff time.Duration
	maxBackoff time.Duration
	onState    func(connected bool)

	bus    Bus
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	conn    *websocket.Conn
	closing bool
}

type Option func(*Channel)

func WithLogf(fn func(format string, args ...any)) Option {
	return func(c *Channel) { c.logf = fn }
}

func WithBackoff(first, limit time.Duration) Option {
	return func(c *Channel) {
		c.minBackoff = first
		c.maxBackoff = limit
	}
}

// WithStateFunc is called whenever the connection comes up or goes down.
func WithStateFunc(fn func(connected bool)) Option {
	return func(c *Channel) { c.onState = fn }
}

// Open starts connecting to url in the background and returns immediately,
// so an unreachable relay never blocks the caller.
func Open(ctx context.Context, url string, opts ...Option) *Channel {
	c := &Channel{
		url:        url,
		logf:       log.Printf,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)
	return c
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)

	backoff := c.minBackoff
	for {
		conn, _, err := websocket.Dial(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logf("realtime: dial %s: %v (retry in %s)", c.url, err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, c.maxBackoff)
			continue
		}

		backoff = c.minBackoff
		c.setConn(conn)
		err = c.readLoop(ctx, conn)
		c.setConn(nil)
		conn.CloseNow()

		if ctx.Err() != nil || c.isClosing() {
			return
		}
		c.logf("realtime: connection lost: %v", err)
	}
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		var env Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return err
		}
		if err := c.bus.DeliverEnvelope(env); err != nil {
			c.logf("realtime: %v", err)
		}
	}
}

func (c *Channel) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	if c.onState != nil {
		c.onState(conn != nil)
	}
}

func (c *Channel) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Publish sends t's post-mutation representation to every connected client.
func (c *Channel) Publish(ctx context.Context, t model.Task) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrDisconnected
	}

	env, err := TaskEnvelope(t)
	if err != nil {
		return err
	}
	if err := wsjson.Write(ctx, conn, env); err != nil {
		return fmt.Errorf("realtime: publish: %w", err)
	}
	return nil
}

// Subscribe registers h for every received task mutation.
func (c *Channel) Subscribe(h Handler) *Subscription {
	return c.bus.Subscribe(h)
}

// Close stops reconnecting and closes the live connection, if any.
func (c *Channel) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.closing = true
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close(websocket.StatusNormalClosure, "")
	}
	c.cancel()
	<-c.done
	return err
}
