package state

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/danyQe/codedash/pkg/logging"
	"github.com/danyQe/codedash/pkg/store"
)

// ValueFunc receives the new value written to the subscribed path.
type ValueFunc func(value gjson.Result)

// PathValueFunc receives every write along with the path it targeted.
type PathValueFunc func(path string, value gjson.Result)

type pathSub struct {
	id int
	fn ValueFunc
}

type wildcardSub struct {
	id int
	fn PathValueFunc
}

// Container holds the dashboard state as one JSON document.
type Container struct {
	mu        sync.Mutex
	doc       []byte
	nextID    int
	pathSubs  map[string][]pathSub
	wildcards []wildcardSub
	log       *slog.Logger
}

// New creates an empty container.
func New() *Container {
	return &Container{
		doc:      []byte(`{}`),
		pathSubs: make(map[string][]pathSub),
		log:      logging.Nop(),
	}
}

// SetLogger sets the logger used for reporting subscriber faults.
func (c *Container) SetLogger(log *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if log != nil {
		c.log = log
	} else {
		c.log = logging.Nop()
	}
}

// Get returns the value at a dotted path. A path whose ancestor does not
// exist yields a result with Exists() == false; it never fails.
func (c *Container) Get(path string) gjson.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gjson.GetBytes(c.doc, path)
}

// Set writes value at a dotted path, creating any missing intermediate
// objects, then notifies exact-path subscribers followed by wildcard
// subscribers, each in subscription order.
func (c *Container) Set(path string, value any) error {
	c.mu.Lock()
	doc, err := sjson.SetBytes(c.doc, path, value)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.doc = doc

	written := gjson.GetBytes(c.doc, path)
	exact := make([]pathSub, len(c.pathSubs[path]))
	copy(exact, c.pathSubs[path])
	wild := make([]wildcardSub, len(c.wildcards))
	copy(wild, c.wildcards)
	log := c.log
	c.mu.Unlock()

	for _, sub := range exact {
		notifyValue(log, path, sub.fn, written)
	}
	for _, sub := range wild {
		notifyPathValue(log, path, sub.fn, written)
	}
	return nil
}

// Update applies multiple writes, one Set per key. Keys are applied in
// sorted order so repeated calls behave deterministically.
func (c *Container) Update(values map[string]any) error {
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := c.Set(p, values[p]); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers fn for writes to exactly path and returns its
// unsubscribe function.
func (c *Container) Subscribe(path string, fn ValueFunc) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.pathSubs[path] = append(c.pathSubs[path], pathSub{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		subs := c.pathSubs[path]
		for i, s := range subs {
			if s.id == id {
				c.pathSubs[path] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers fn for every write and returns its unsubscribe
// function. Wildcard subscribers run after the written path's exact
// subscribers.
func (c *Container) SubscribeAll(fn PathValueFunc) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.wildcards = append(c.wildcards, wildcardSub{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.wildcards {
			if s.id == id {
				c.wildcards = append(c.wildcards[:i:i], c.wildcards[i+1:]...)
				return
			}
		}
	}
}

// Reset discards the entire document. Subscriptions survive a reset.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = []byte(`{}`)
}

// Document returns a copy of the raw JSON document.
func (c *Container) Document() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, len(c.doc))
	copy(out, c.doc)
	return out
}

// Save persists the document snapshot through the store adapter.
// Failures are logged and swallowed.
func (c *Container) Save(kv store.KV) {
	c.mu.Lock()
	doc := make([]byte, len(c.doc))
	copy(doc, c.doc)
	log := c.log
	c.mu.Unlock()

	if err := kv.Set(store.KeyAppState, doc); err != nil {
		log.Warn("state snapshot save failed", "error", err)
	}
}

// Load restores the document snapshot from the store adapter. A missing or
// malformed snapshot leaves the container empty.
func (c *Container) Load(kv store.KV) {
	data, ok := kv.Get(store.KeyAppState)
	if !ok || !gjson.ValidBytes(data) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = data
}

// notifyValue runs one exact-path subscriber with panic isolation.
func notifyValue(log *slog.Logger, path string, fn ValueFunc, value gjson.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("state subscriber panicked", "path", path, "panic", r)
		}
	}()
	fn(value)
}

// notifyPathValue runs one wildcard subscriber with panic isolation.
func notifyPathValue(log *slog.Logger, path string, fn PathValueFunc, value gjson.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("state subscriber panicked", "path", path, "panic", r)
		}
	}()
	fn(path, value)
}
