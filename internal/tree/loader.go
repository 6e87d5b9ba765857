// Package tree discovers a budget data tree lazily. A Loader fetches each
// folder at most once, keeps siblings ordered by value and tracks the
// expand/collapse state that presentation layers render.
package tree

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rshade/budgettree/internal/budget"
	"github.com/rshade/budgettree/internal/fetch"
	"github.com/rshade/budgettree/internal/logging"
)

// DefaultConcurrency bounds parallel record fetches within one folder.
const DefaultConcurrency = 8

// ErrStale is returned by Expand when the loader was reset while the
// children were being fetched. The result is dropped.
var ErrStale = errors.New("tree was reset during load")

type listingResult struct {
	listing *budget.Listing
	ok      bool
}

// Loader owns one tree and the per-path caches backing it.
type Loader struct {
	fetcher     *fetch.Fetcher
	concurrency int

	mu       sync.Mutex
	root     *Node
	gen      uint64
	entries  map[string][]*Node
	listings map[string]listingResult

	flight singleflight.Group
}

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds parallel fetches per folder.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// NewLoader creates a loader with an unexpanded root.
func NewLoader(f *fetch.Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher:     f,
		concurrency: DefaultConcurrency,
		root:        newRoot(),
		entries:     make(map[string][]*Node),
		listings:    make(map[string]listingResult),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the current root node.
func (l *Loader) Root() *Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.root
}

// Generation increments on every Reset.
func (l *Loader) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Reset discards the tree and every cached listing. Loads in flight finish
// but their results are not applied.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.root = newRoot()
	l.entries = make(map[string][]*Node)
	l.listings = make(map[string]listingResult)
}

// ListEntries fetches the folder at path and returns its valid entries,
// sorted by value descending. It bypasses the loader caches. Any failure
// yields an empty result.
func (l *Loader) ListEntries(ctx context.Context, path string) []*Node {
	return l.collect(ctx, fetch.NormalizeDir(path), l.fetcher.Listing)
}

// Entries is ListEntries memoized per path. Concurrent callers for the same
// path share one load.
func (l *Loader) Entries(ctx context.Context, path string) []*Node {
	nodes, err := l.cachedEntries(ctx, fetch.NormalizeDir(path))
	if err != nil {
		return []*Node{}
	}
	return nodes
}

// Expand loads the children of n once and marks it expanded. It is a no-op
// for nodes without children. Only context and ErrStale errors are returned.
func (l *Loader) Expand(ctx context.Context, n *Node) error {
	if n == nil || !n.HasChildren {
		return nil
	}
	if n.Loaded() {
		n.setExpanded(true)
		return nil
	}

	gen := l.Generation()
	children, err := l.cachedEntries(ctx, n.FullPath)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		return ErrStale
	}
	n.expand(children)
	return nil
}

// Collapse hides the children of n. They stay cached.
func (l *Loader) Collapse(n *Node) {
	if n != nil {
		n.setExpanded(false)
	}
}

// Toggle collapses an expanded node and expands a collapsed one.
func (l *Loader) Toggle(ctx context.Context, n *Node) error {
	if n == nil {
		return nil
	}
	if n.Expanded() {
		l.Collapse(n)
		return nil
	}
	return l.Expand(ctx, n)
}

// ExpandPath expands root and every ancestor named by path, then returns the
// node at path.
func (l *Loader) ExpandPath(ctx context.Context, path string) (*Node, error) {
	cur := l.Root()
	if err := l.Expand(ctx, cur); err != nil {
		return nil, err
	}
	for _, seg := range fetch.Segments(path) {
		next, ok := cur.Child(seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if err := l.Expand(ctx, next); err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (l *Loader) cachedEntries(ctx context.Context, path string) ([]*Node, error) {
	l.mu.Lock()
	if nodes, ok := l.entries[path]; ok {
		l.mu.Unlock()
		return nodes, nil
	}
	gen := l.gen
	l.mu.Unlock()

	v, err := l.shared(ctx, fmt.Sprintf("entries|%d|%s", gen, path), func(fctx context.Context) any {
		nodes := l.collect(fctx, path, l.cachedListing)

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.gen == gen {
			l.entries[path] = nodes
		}
		return nodes
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Node), nil
}

func (l *Loader) cachedListing(ctx context.Context, dir string) (*budget.Listing, bool) {
	l.mu.Lock()
	if r, ok := l.listings[dir]; ok {
		l.mu.Unlock()
		return r.listing, r.ok
	}
	gen := l.gen
	l.mu.Unlock()

	v, err := l.shared(ctx, fmt.Sprintf("listing|%d|%s", gen, dir), func(fctx context.Context) any {
		listing, ok := l.fetcher.Listing(fctx, dir)
		r := listingResult{listing: listing, ok: ok}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.gen == gen {
			l.listings[dir] = r
		}
		return r
	})
	if err != nil {
		return nil, false
	}
	r := v.(listingResult)
	return r.listing, r.ok
}

// shared runs fn once per key for all concurrent callers. fn gets a context
// detached from the caller's cancellation, so one caller giving up never
// hands a truncated result to the others or to the memo. Each caller waits
// only as long as its own ctx allows.
func (l *Loader) shared(ctx context.Context, key string, fn func(context.Context) any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fctx := context.WithoutCancel(ctx)
	ch := l.flight.DoChan(key, func() (any, error) {
		return fn(fctx), nil
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type listingFunc func(ctx context.Context, dir string) (*budget.Listing, bool)

func (l *Loader) collect(ctx context.Context, path string, listingOf listingFunc) []*Node {
	log := logging.FromContext(ctx)

	listing, ok := listingOf(ctx, path)
	if !ok {
		return []*Node{}
	}
	files := listing.DataFiles()
	found := make([]*Node, len(files))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, file := range files {
		g.Go(func() error {
			rec, ok := l.fetcher.Record(ctx, fetch.JoinPath(path, file))
			if !ok {
				return nil
			}
			amount, err := rec.Amount()
			if err != nil {
				log.Debug().
					Str("component", "tree").
					Str("file", fetch.JoinPath(path, file)).
					Err(err).
					Msg("skipping entry")
				return nil
			}

			folder := budget.FolderName(file)
			full := fetch.JoinPath(path, folder) + "/"
			sub, ok := listingOf(ctx, full)

			found[i] = &Node{
				Name:        rec.Label(),
				Value:       amount,
				FolderName:  folder,
				FullPath:    full,
				HasChildren: ok && sub.HasDataFiles(),
				Attributes:  rec,
			}
			return nil
		})
	}
	_ = g.Wait()

	nodes := make([]*Node, 0, len(found))
	for _, n := range found {
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return cmp.Compare(b.Value, a.Value)
	})

	log.Debug().
		Str("component", "tree").
		Str("path", path).
		Int("listed", len(files)).
		Int("entries", len(nodes)).
		Msg("folder loaded")
	return nodes
}
