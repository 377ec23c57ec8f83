// Package cache maps SKUs to resolved folder records while avoiding
// redundant remote lookups. Concurrent resolutions of the same SKU
// coalesce onto a single in-flight remote call.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mgodinho/skunav/internal/domain"
)

// Options tune the cache. Zero values select the defaults.
type Options struct {
	// TTL bounds how long a positive entry stays fresh. Zero means
	// entries are fresh indefinitely (refresh only on ForceRefresh or
	// invalidation).
	TTL time.Duration

	// NegativeTTL bounds how long a not-found result is remembered
	// before the remote is asked again.
	NegativeTTL time.Duration

	// RetryCap is the maximum number of attempts for transient
	// failures, backoff included.
	RetryCap int

	// RetryBase is the first backoff delay; it doubles per attempt.
	RetryBase time.Duration

	// Offline marks the resolver as a local stub. Lookups run
	// synchronously with no coalescing machinery and no retries, since
	// stub resolution is deterministic and cannot fail transiently.
	Offline bool
}

const (
	defaultNegativeTTL = 30 * time.Second
	defaultRetryCap    = 3
	defaultRetryBase   = 200 * time.Millisecond
)

// ResolveOptions modify a single Resolve call.
type ResolveOptions struct {
	// ForceRefresh always issues a new remote call. On success the
	// entry is replaced; on failure the previous entry stays in place.
	ForceRefresh bool
}

type entryState int

const (
	statePending entryState = iota
	stateReady
	stateFailed
)

// outcome is what a waiter receives when an in-flight resolution settles.
type outcome struct {
	record *domain.FolderRecord
	err    error
}

// entry is the single cache slot for a SKU. Replaced, never mutated in
// place once settled; the previous record is retained across a refresh so
// failures can fall back to it.
type entry struct {
	state   entryState
	record  *domain.FolderRecord // settled result (stateReady)
	err     error                // settled failure (stateFailed, negative cache)
	settled time.Time
	prev    *domain.FolderRecord // last good record, kept during refresh

	// waiters attached while statePending, in attach order.
	waiters []chan outcome
}

// FolderCache resolves SKUs through a remote resolver with coalescing,
// staleness control, and bounded retry. Safe for concurrent use.
type FolderCache struct {
	resolver domain.Resolver
	store    domain.Store // optional snapshot persistence
	opts     Options
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry

	now func() time.Time
}

// New creates a FolderCache over resolver. store may be nil to disable
// snapshot persistence; when present, previously resolved records are
// preloaded so Peek works across restarts.
func New(resolver domain.Resolver, store domain.Store, opts Options, logger *slog.Logger) *FolderCache {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NegativeTTL <= 0 {
		opts.NegativeTTL = defaultNegativeTTL
	}
	if opts.RetryCap <= 0 {
		opts.RetryCap = defaultRetryCap
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = defaultRetryBase
	}

	c := &FolderCache{
		resolver: resolver,
		store:    store,
		opts:     opts,
		logger:   logger,
		entries:  make(map[string]*entry),
		now:      time.Now,
	}
	c.preload()
	return c
}

func (c *FolderCache) preload() {
	if c.store == nil {
		return
	}
	recs, err := c.store.LoadFolderRecords()
	if err != nil {
		c.logger.Warn("failed to load folder snapshot", "error", err)
		return
	}
	for _, rec := range recs {
		cached := *rec
		cached.Source = domain.SourceCache
		c.entries[rec.SKU] = &entry{
			state:   stateReady,
			record:  &cached,
			settled: rec.ResolvedAt,
		}
	}
	if len(recs) > 0 {
		c.logger.Debug("preloaded folder snapshot", "count", len(recs))
	}
}

// Resolve returns the folder record for sku, consulting the cache first.
// Concurrent calls for the same SKU share one remote lookup and all
// receive the same result. Blocks until the resolution settles or ctx is
// done.
func (c *FolderCache) Resolve(ctx context.Context, sku string, opts ResolveOptions) (*domain.FolderRecord, error) {
	if c.opts.Offline {
		return c.resolveOffline(ctx, sku)
	}

	c.mu.Lock()

	if e, ok := c.entries[sku]; ok {
		switch e.state {
		case statePending:
			// Attach to the in-flight resolution.
			ch := make(chan outcome, 1)
			e.waiters = append(e.waiters, ch)
			c.mu.Unlock()
			return c.await(ctx, ch)

		case stateReady:
			if !opts.ForceRefresh && c.freshLocked(e) {
				rec := e.record
				c.mu.Unlock()
				return rec, nil
			}
			// Stale or forced: refresh, keeping the old record for
			// fallback.
			e.state = statePending
			e.prev = e.record
			e.record = nil
			ch := make(chan outcome, 1)
			e.waiters = append(e.waiters, ch)
			go c.resolveRemote(sku, e)
			c.mu.Unlock()
			return c.await(ctx, ch)

		case stateFailed:
			if !opts.ForceRefresh && c.negativeFreshLocked(e) {
				err := e.err
				c.mu.Unlock()
				return nil, err
			}
			// Negative entry expired; fall through to a new lookup.
		}
	}

	e := &entry{state: statePending}
	c.entries[sku] = e
	ch := make(chan outcome, 1)
	e.waiters = append(e.waiters, ch)
	go c.resolveRemote(sku, e)
	c.mu.Unlock()
	return c.await(ctx, ch)
}

// resolveOffline serves a lookup from the deterministic stub resolver,
// caching the result so Peek behaves the same as online.
func (c *FolderCache) resolveOffline(ctx context.Context, sku string) (*domain.FolderRecord, error) {
	c.mu.Lock()
	if e, ok := c.entries[sku]; ok && e.state == stateReady {
		rec := e.record
		c.mu.Unlock()
		return rec, nil
	}
	c.mu.Unlock()

	rec, err := c.resolver.Lookup(ctx, sku)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[sku] = &entry{state: stateReady, record: rec, settled: c.now()}
	c.mu.Unlock()
	return rec, nil
}

// Peek returns the cached record for sku without any remote call, or nil
// when no settled positive entry exists.
func (c *FolderCache) Peek(sku string) *domain.FolderRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[sku]; ok && e.state == stateReady {
		return e.record
	}
	return nil
}

// Invalidate removes any entry for sku. Outstanding waiters of a pending
// resolution are released with domain.ErrCancelled; the in-flight remote
// call itself is left to finish and its result is discarded.
func (c *FolderCache) Invalidate(sku string) {
	c.mu.Lock()
	e, ok := c.entries[sku]
	if ok {
		delete(c.entries, sku)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	for _, ch := range e.waiters {
		ch <- outcome{err: domain.ErrCancelled}
	}
	if c.store != nil {
		if err := c.store.DeleteFolderRecord(sku); err != nil {
			c.logger.Warn("failed to delete folder snapshot", "sku", sku, "error", err)
		}
	}
	c.logger.Debug("invalidated", "sku", sku)
}

func (c *FolderCache) await(ctx context.Context, ch chan outcome) (*domain.FolderRecord, error) {
	select {
	case out := <-ch:
		return out.record, out.err
	case <-ctx.Done():
		// The resolution continues for remaining waiters; this caller
		// just stops listening.
		return nil, ctx.Err()
	}
}

// resolveRemote performs the single remote lookup for a pending entry,
// retrying transient failures with exponential backoff, then settles the
// entry and releases waiters in attach order.
func (c *FolderCache) resolveRemote(sku string, e *entry) {
	rec, err := c.lookupWithRetry(sku)

	c.mu.Lock()
	// The entry may have been invalidated (and possibly re-created)
	// while we were out; if so, this result is nobody's business.
	if current, ok := c.entries[sku]; !ok || current != e {
		c.mu.Unlock()
		return
	}

	waiters := e.waiters
	e.waiters = nil

	switch {
	case err == nil:
		e.state = stateReady
		e.record = rec
		e.prev = nil
		e.settled = c.now()

	case errors.Is(err, domain.ErrFolderNotFound):
		if e.prev != nil {
			// Refresh failed but we still hold the old record.
			e.state = stateReady
			e.record = e.prev
			e.prev = nil
			rec = e.record
			err = nil
		} else {
			// Negative result, cached briefly.
			e.state = stateFailed
			e.err = err
			e.settled = c.now()
		}

	default:
		// AuthRequired and exhausted transient failures are never
		// cached. Fall back to the previous record slot if a refresh
		// was underway, otherwise drop the entry.
		if e.prev != nil {
			e.state = stateReady
			e.record = e.prev
			e.prev = nil
		} else {
			delete(c.entries, sku)
		}
	}
	c.mu.Unlock()

	if err == nil && rec != nil && rec.Source == domain.SourceRemote && c.store != nil {
		if serr := c.store.SaveFolderRecord(rec); serr != nil {
			c.logger.Warn("failed to persist folder record", "sku", sku, "error", serr)
		}
	}

	for _, ch := range waiters {
		ch <- outcome{record: rec, err: err}
	}
}

// lookupWithRetry calls the resolver, retrying transient failures up to
// the attempt cap with doubling backoff.
func (c *FolderCache) lookupWithRetry(sku string) (*domain.FolderRecord, error) {
	var lastErr error
	wait := c.opts.RetryBase

	for attempt := 1; attempt <= c.opts.RetryCap; attempt++ {
		rec, err := c.resolver.Lookup(context.Background(), sku)
		if err == nil {
			return rec, nil
		}
		lastErr = err
		if !domain.IsTransient(err) {
			return nil, err
		}
		if attempt < c.opts.RetryCap {
			c.logger.Debug("transient lookup failure, retrying",
				"sku", sku, "attempt", attempt, "wait", wait, "error", err)
			time.Sleep(wait)
			wait *= 2
		}
	}
	c.logger.Warn("lookup retries exhausted", "sku", sku, "error", lastErr)
	return nil, lastErr
}

func (c *FolderCache) freshLocked(e *entry) bool {
	if c.opts.TTL <= 0 {
		return true
	}
	return c.now().Sub(e.settled) < c.opts.TTL
}

func (c *FolderCache) negativeFreshLocked(e *entry) bool {
	return c.now().Sub(e.settled) < c.opts.NegativeTTL
}
