package server

import (
	"encoding/json"
	"sync"
	"time"
)

// Client is one connected player session. The socket layer owns the out
// channel; the game server only ever queues onto it and never blocks: a
// slow client loses broadcasts rather than stalling the turn loop.
type Client struct {
	ClientID     string
	PersistentID string
	Username     string
	IP           string

	out chan []byte

	mu       sync.Mutex
	closed   bool
	lastPing time.Time

	// Lockstep bookkeeping, guarded by the owning GameServer's lock.
	firstBadTurn int
	desyncNotice bool
	markedAway   bool
}

func NewClient(clientID, persistentID, username, ip string) *Client {
	return &Client{
		ClientID:     clientID,
		PersistentID: persistentID,
		Username:     username,
		IP:           ip,
		out:          make(chan []byte, 64),
		lastPing:     time.Now(),
		firstBadTurn: -1,
	}
}

// Out is the socket writer's feed. It is closed exactly once when the
// client is dropped.
func (c *Client) Out() <-chan []byte { return c.out }

func (c *Client) CloseOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// Send queues a marshaled message, dropping it if the client is backed up
// or already gone.
func (c *Client) Send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- b:
	default:
	}
}

func (c *Client) Touch() {
	c.mu.Lock()
	c.lastPing = time.Now()
	c.mu.Unlock()
}

func (c *Client) LastPing() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPing
}
