package fetch

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rshade/budgettree/internal/budget"
	"github.com/rshade/budgettree/internal/cache"
	"github.com/rshade/budgettree/internal/logging"
)

// Fetcher decodes resources from a Source, optionally through a response cache.
// Every failure degrades to "absent": callers never see transport errors.
type Fetcher struct {
	src   Source
	store *cache.FileStore

	requests atomic.Int64
	hits     atomic.Int64
}

// Stats counts source requests and cache hits since creation.
type Stats struct {
	Requests  int64
	CacheHits int64
}

// NewFetcher wraps src. store may be nil or disabled.
func NewFetcher(src Source, store *cache.FileStore) *Fetcher {
	return &Fetcher{src: src, store: store}
}

// Source returns the underlying source.
func (f *Fetcher) Source() Source {
	return f.src
}

// Stats returns a snapshot of the request counters.
func (f *Fetcher) Stats() Stats {
	return Stats{Requests: f.requests.Load(), CacheHits: f.hits.Load()}
}

// Listing fetches and decodes "<dir>directory.json".
func (f *Fetcher) Listing(ctx context.Context, dir string) (*budget.Listing, bool) {
	name := JoinPath(dir, budget.ListingFile)
	data, ok := f.Bytes(ctx, name)
	if !ok {
		return nil, false
	}

	l, err := budget.ParseListing(data)
	if err != nil {
		logging.FromContext(ctx).Debug().
			Str("component", "fetch").
			Str("resource", f.src.Location(name)).
			Err(err).
			Msg("listing unreadable, treating as absent")
		return nil, false
	}
	return l, true
}

// Record fetches and decodes a record file.
func (f *Fetcher) Record(ctx context.Context, name string) (budget.Record, bool) {
	data, ok := f.Bytes(ctx, name)
	if !ok {
		return nil, false
	}

	r, err := budget.ParseRecord(data)
	if err != nil {
		logging.FromContext(ctx).Debug().
			Str("component", "fetch").
			Str("resource", f.src.Location(name)).
			Err(err).
			Msg("record unreadable, skipping")
		return nil, false
	}
	return r, true
}

// Bytes returns the raw body of name, consulting the cache first.
func (f *Fetcher) Bytes(ctx context.Context, name string) ([]byte, bool) {
	log := logging.FromContext(ctx)
	loc := f.src.Location(name)

	if f.store != nil && f.store.IsEnabled() {
		data, err := f.store.Get(loc)
		if err == nil {
			f.hits.Add(1)
			return data, true
		}
		if !errors.Is(err, cache.ErrCacheNotFound) && !errors.Is(err, cache.ErrCacheExpired) {
			log.Debug().Str("component", "fetch").Str("resource", loc).Err(err).Msg("cache read failed")
		}
	}

	f.requests.Add(1)
	data, err := f.src.Open(ctx, name)
	if err != nil {
		log.Debug().
			Str("component", "fetch").
			Str("resource", loc).
			Bool("not_found", errors.Is(err, ErrNotFound)).
			Err(err).
			Msg("fetch failed, treating as absent")
		return nil, false
	}

	if f.store != nil && f.store.IsEnabled() {
		if setErr := f.store.Set(loc, data); setErr != nil {
			log.Debug().Str("component", "fetch").Str("resource", loc).Err(setErr).Msg("cache write failed")
		}
	}
	return data, true
}
