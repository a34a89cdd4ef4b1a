// Package query caches the results of reads against the ledger service.
//
// Each key holds at most one entry. Reads return the current entry
// synchronously and kick off at most one background fetch when the entry is
// missing, stale, or older than the freshness window. Entries are only ever
// replaced whole, never patched, and are never evicted.
package query

import (
	"context"
	"sync"
	"time"
)

// Status describes an entry's fetch lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Fetcher loads the value for a key from the ledger service.
type Fetcher func(ctx context.Context) (any, error)

// Result is a point-in-time snapshot of one entry. On StatusError, Value
// still carries the last good value if one was ever fetched, so a view can
// keep showing it alongside the error.
type Result struct {
	Value      any
	Status     Status
	Err        error
	Refreshing bool
	FetchedAt  time.Time
}

// Options tunes a Cache. Zero values take the defaults noted per field.
type Options struct {
	FreshFor   time.Duration // freshness window, default 5m
	Retries    int           // extra attempts after a failed fetch, default 2, negative for none
	RetryDelay time.Duration // pause between attempts, default 200ms
	OnChange   func(Key)     // called after any entry transition
	Now        func() time.Time
}

const (
	defaultFreshFor   = 5 * time.Minute
	defaultRetries    = 2
	defaultRetryDelay = 200 * time.Millisecond
)

type entry struct {
	key         Key
	fetcher     Fetcher
	value       any
	status      Status
	err         error
	fetchedAt   time.Time // last successful fetch
	attemptedAt time.Time // last completed fetch, success or not
	stale       bool
	gen         uint64 // latest issued fetch generation
	inFlight    bool
	observers   int
}

// Cache is the query cache. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry

	freshFor   time.Duration
	retries    int
	retryDelay time.Duration
	onChange   func(Key)
	now        func() time.Time
}

// New builds a cache from opts.
func New(opts Options) *Cache {
	c := &Cache{
		entries:    make(map[string]*entry),
		freshFor:   opts.FreshFor,
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		onChange:   opts.OnChange,
		now:        opts.Now,
	}
	if c.freshFor <= 0 {
		c.freshFor = defaultFreshFor
	}
	if opts.Retries == 0 {
		c.retries = defaultRetries
	}
	if c.retries < 0 {
		c.retries = 0
	}
	if c.retryDelay == 0 {
		c.retryDelay = defaultRetryDelay
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key.String()]
	if !ok {
		e = &entry{key: key}
		c.entries[key.String()] = e
	}
	return e
}

// Read returns the current entry for key and, when it is missing, stale, or
// past the freshness window, starts a background refresh with fetch. At most
// one fetch per key is in flight; callers during a refresh keep seeing the
// previous value until the new one lands whole.
func (c *Cache) Read(ctx context.Context, key Key, fetch Fetcher) Result {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetcher = fetch
	if c.needsFetchLocked(e) && !e.inFlight {
		c.startFetchLocked(ctx, e)
	}
	res := snapshot(e)
	c.mu.Unlock()
	return res
}

// Peek returns the current entry without triggering a fetch.
func (c *Cache) Peek(key Key) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return Result{Status: StatusIdle}
	}
	return snapshot(e)
}

func (c *Cache) needsFetchLocked(e *entry) bool {
	switch {
	case e.status == StatusIdle:
		return true
	case e.stale:
		return true
	case e.status == StatusSuccess:
		return c.now().Sub(e.fetchedAt) >= c.freshFor
	case e.status == StatusError:
		// don't hammer a failing fetcher on every render; retry once the
		// window has passed (or sooner via Invalidate / RefreshFocused)
		return c.now().Sub(e.attemptedAt) >= c.freshFor
	}
	return false
}

// startFetchLocked issues a new fetch generation for e. Any fetch already in
// flight keeps running but its result will be discarded as superseded.
func (c *Cache) startFetchLocked(ctx context.Context, e *entry) {
	if e.fetcher == nil {
		return
	}
	e.gen++
	e.inFlight = true
	e.stale = false
	if e.status == StatusIdle {
		e.status = StatusLoading
	}
	go c.fetch(ctx, e.key, e.fetcher, e.gen)
}

func (c *Cache) fetch(ctx context.Context, key Key, fetch Fetcher, gen uint64) {
	var (
		val any
		err error
	)
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				c.complete(key, gen, nil, ctx.Err())
				return
			case <-time.After(c.retryDelay):
			}
		}
		val, err = fetch(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	c.complete(key, gen, val, err)
}

func (c *Cache) complete(key Key, gen uint64, val any, err error) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok || gen != e.gen {
		// a newer fetch for this key was issued after ours started;
		// this result is stale, drop it
		c.mu.Unlock()
		return
	}
	e.inFlight = false
	e.attemptedAt = c.now()
	if err != nil {
		e.status = StatusError
		e.err = err
		// keep e.value: last good value stays displayable
	} else {
		e.value = val
		e.status = StatusSuccess
		e.err = nil
		e.fetchedAt = e.attemptedAt
	}
	notify := c.onChange
	c.mu.Unlock()
	if notify != nil {
		notify(key)
	}
}

// Invalidate marks every entry whose key starts with prefix as stale.
// Observed entries refetch immediately, superseding any fetch in flight;
// the rest refresh on their next read.
func (c *Cache) Invalidate(ctx context.Context, prefix Key) {
	c.mu.Lock()
	var touched []Key
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.stale = true
		if e.observers > 0 {
			c.startFetchLocked(ctx, e)
		}
		touched = append(touched, e.key)
	}
	notify := c.onChange
	c.mu.Unlock()
	if notify != nil {
		for _, k := range touched {
			notify(k)
		}
	}
}

// Observe registers an active reader for key. Observed entries are refreshed
// eagerly on invalidation and on focus.
func (c *Cache) Observe(key Key) {
	c.mu.Lock()
	c.entryLocked(key).observers++
	c.mu.Unlock()
}

// Release drops one observer registration for key.
func (c *Cache) Release(key Key) {
	c.mu.Lock()
	if e, ok := c.entries[key.String()]; ok && e.observers > 0 {
		e.observers--
	}
	c.mu.Unlock()
}

// RefreshFocused re-fetches observed entries that are stale, errored, or past
// the freshness window. Call it when the host view regains focus.
func (c *Cache) RefreshFocused(ctx context.Context) {
	c.mu.Lock()
	for _, e := range c.entries {
		if e.observers == 0 || e.inFlight {
			continue
		}
		if c.needsFetchLocked(e) {
			c.startFetchLocked(ctx, e)
		}
	}
	c.mu.Unlock()
}

func snapshot(e *entry) Result {
	return Result{
		Value:      e.value,
		Status:     e.status,
		Err:        e.err,
		Refreshing: e.inFlight,
		FetchedAt:  e.fetchedAt,
	}
}
