package client

import (
	"log/slog"
	"sync"

	"github.com/danyQe/codedash/pkg/bus"
)

// Connectivity tracks last-known reachability of the control plane. It is
// edge-triggered: the flag flips to false only on the transition into a
// connectivity-class failure and back to true only on the first success
// afterwards, and the bus is signaled exactly once per transition.
type Connectivity struct {
	mu     sync.Mutex
	online bool
	bus    *bus.Bus
	log    *slog.Logger
}

// NewConnectivity creates a tracker that starts online.
func NewConnectivity(b *bus.Bus, log *slog.Logger) *Connectivity {
	return &Connectivity{online: true, bus: b, log: log}
}

// SetLogger replaces the tracker's logger.
func (c *Connectivity) SetLogger(log *slog.Logger) {
	if log == nil {
		return
	}
	c.mu.Lock()
	c.log = log
	c.mu.Unlock()
}

// Online returns the current connectivity flag.
func (c *Connectivity) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Observe folds one pipeline result into the flag.
func (c *Connectivity) Observe(r Result) {
	if r.Success {
		c.transition(true)
		return
	}
	if r.Status == 0 {
		// Transport-level failure: the backend is unreachable.
		c.transition(false)
	}
	// Non-2xx responses prove the backend is reachable but are not
	// successes; they neither set nor clear the flag.
}

// transition flips the flag if needed and signals only on an actual change.
func (c *Connectivity) transition(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	b := c.bus
	log := c.log
	c.mu.Unlock()

	if online {
		log.Info("connectivity restored")
	} else {
		log.Warn("connectivity lost")
	}
	if b != nil {
		b.Emit(bus.EventConnectivityChanged, online)
	}
}
