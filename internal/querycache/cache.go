// Package querycache is a read-through cache for server state, keyed by
// canonical query identity. It de-duplicates concurrent fetches for the same
// key, tracks per-entry staleness, and invalidates entries by key prefix
// after mutations. Fetch and parse failures are captured per entry rather
// than propagated as panics; callers inspect the result status.
package querycache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// Status describes the fetch state of a cache entry.
type Status int

const (
	// StatusIdle means no fetch has been attempted (e.g. a disabled read).
	StatusIdle Status = iota
	// StatusLoading means the first fetch for the entry is in flight.
	StatusLoading
	// StatusSuccess means the entry holds a fetched value.
	StatusSuccess
	// StatusError means the last fetch failed and the error is recorded.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Options controls a single Read.
type Options struct {
	// Disabled skips the read entirely: no cache lookup, no fetch. Used to
	// gate authenticated queries (notes, current user) on login state.
	Disabled bool

	// StaleTime is how long a fetched value stays fresh. Zero means a value
	// is stale as soon as it lands and every Read triggers a refetch.
	StaleTime time.Duration

	// KeepPrevious makes Read non-blocking when the entry already holds a
	// value: the cached value is returned immediately (marked Stale) while
	// the refetch proceeds in the background. Used by paging/filtering views
	// to avoid flicker.
	KeepPrevious bool
}

// Result is the outcome of a Read.
type Result struct {
	Value     any
	Status    Status
	Err       error
	UpdatedAt time.Time

	// Stale is set when Value was served from cache while a newer fetch is
	// still in flight.
	Stale bool
}

// inflight is one shared fetch. Waiters block on done; value and err are
// written before done is closed.
type inflight struct {
	done  chan struct{}
	value any
	err   error
}

type entry struct {
	key       Key
	value     any
	err       error
	status    Status
	updatedAt time.Time

	// gen is bumped on invalidation. A fetch started under an older gen has
	// been superseded and must not overwrite the entry when it lands.
	gen uint64

	inflight *inflight
}

const (
	// Entries untouched for this long are garbage collected.
	defaultEntryTTL   = 30 * time.Minute
	defaultGCInterval = 5 * time.Minute
)

// Cache is the server-state cache engine. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries *gocache.Cache
	ttl     time.Duration
	log     zerolog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// WithEntryTTL overrides how long unused entries linger before collection.
func WithEntryTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl: defaultEntryTTL,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = gocache.New(c.ttl, defaultGCInterval)
	return c
}

// Read returns the entry for key, fetching it with fetch when missing or
// stale. Concurrent Reads for the same key share a single fetch invocation
// and observe the same outcome. The fetch runs detached from the caller's
// context so one impatient caller cannot fail the shared operation; the
// waiting itself is cancellable.
func (c *Cache) Read(ctx context.Context, key Key, opts Options, fetch func(context.Context) (any, error)) Result {
	if opts.Disabled {
		return Result{Status: StatusIdle}
	}

	c.mu.Lock()
	e := c.entryLocked(key)

	if e.status == StatusSuccess && opts.StaleTime > 0 && time.Since(e.updatedAt) < opts.StaleTime {
		res := resultLocked(e)
		c.mu.Unlock()
		return res
	}

	fl := e.inflight
	if fl == nil {
		fl = &inflight{done: make(chan struct{})}
		e.inflight = fl
		if e.status == StatusIdle {
			e.status = StatusLoading
		}
		go c.runFetch(context.WithoutCancel(ctx), key, fl, e.gen, fetch)
	}

	if opts.KeepPrevious && e.status == StatusSuccess {
		res := resultLocked(e)
		res.Stale = true
		c.mu.Unlock()
		return res
	}
	c.mu.Unlock()

	select {
	case <-fl.done:
		if fl.err != nil {
			return Result{Status: StatusError, Err: fl.err}
		}
		return Result{Value: fl.value, Status: StatusSuccess, UpdatedAt: time.Now()}
	case <-ctx.Done():
		return Result{Status: StatusError, Err: ctx.Err()}
	}
}

// Peek returns the current state of an entry without triggering a fetch.
func (c *Cache) Peek(key Key) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lookupLocked(key)
	if !ok {
		return Result{Status: StatusIdle}, false
	}
	res := resultLocked(e)
	res.Stale = e.inflight != nil
	return res, true
}

// Mutate runs a mutating call and, on success, invalidates the given key
// prefixes so the next Read of any matching entry refetches.
func (c *Cache) Mutate(ctx context.Context, fn func(context.Context) (any, error), invalidate ...Key) (any, error) {
	v, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	for _, prefix := range invalidate {
		c.Invalidate(prefix)
	}
	return v, nil
}

// Invalidate marks every entry whose key starts with prefix as stale. The
// cached values are kept for KeepPrevious reads, but any staleness window is
// voided and results from fetches already in flight are discarded.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, item := range c.entries.Items() {
		e := item.Object.(*entry)
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.gen++
		e.updatedAt = time.Time{}
		n++
	}

	if n > 0 {
		c.log.Debug().Str("prefix", prefix.String()).Int("entries", n).Msg("cache invalidated")
	}
}

// Clear drops every entry. Called on logout and login so no data cached for
// one user can leak into the next session.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Bump generations first so in-flight fetches from the old session
	// cannot repopulate the flushed cache.
	for _, item := range c.entries.Items() {
		item.Object.(*entry).gen++
	}
	c.entries.Flush()
	c.log.Debug().Msg("cache cleared")
}

func (c *Cache) runFetch(ctx context.Context, key Key, fl *inflight, gen uint64, fetch func(context.Context) (any, error)) {
	value, err := fetch(ctx)

	c.mu.Lock()
	fl.value, fl.err = value, err
	if e, ok := c.lookupLocked(key); ok && e.inflight == fl {
		e.inflight = nil
		if e.gen == gen {
			if err != nil {
				e.err = err
				e.status = StatusError
			} else {
				e.value = value
				e.err = nil
				e.status = StatusSuccess
				e.updatedAt = time.Now()
			}
		}
	}
	c.mu.Unlock()

	close(fl.done)
}

// entryLocked returns the entry for key, creating it if needed. Access
// refreshes the GC deadline so live entries are not collected mid-use.
func (c *Cache) entryLocked(key Key) *entry {
	if e, ok := c.lookupLocked(key); ok {
		c.entries.SetDefault(key.String(), e)
		return e
	}
	e := &entry{key: key, status: StatusIdle}
	c.entries.SetDefault(key.String(), e)
	return e
}

func (c *Cache) lookupLocked(key Key) (*entry, bool) {
	v, ok := c.entries.Get(key.String())
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

func resultLocked(e *entry) Result {
	return Result{
		Value:     e.value,
		Status:    e.status,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}
