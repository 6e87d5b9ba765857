package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rshade/budgettree/internal/batch"
	"github.com/rshade/budgettree/internal/logging"
)

// CrawlOptions configures a Crawler.
type CrawlOptions struct {
	// MaxDepth is the number of levels loaded below the start node; 0 means unlimited.
	MaxDepth int

	// Include limits the reported nodes to paths matching one of the patterns.
	Include []string

	// Exclude prunes matching subtrees; they are neither reported nor expanded.
	Exclude []string

	BatchSize   int
	Concurrency int

	// OnProgress receives a snapshot after each batch of a level.
	OnProgress func(CrawlProgress)
}

// CrawlProgress reports the state of one level.
type CrawlProgress struct {
	Depth int
	batch.Snapshot
}

// CrawlResult lists the reported nodes in breadth-first order.
type CrawlResult struct {
	Nodes    []*Node
	Levels   int
	Expanded int
}

// Crawler eagerly expands a tree level by level.
type Crawler struct {
	loader *Loader
	opts   CrawlOptions
}

// NewCrawler validates the glob patterns and returns a crawler.
func NewCrawler(l *Loader, opts CrawlOptions) (*Crawler, error) {
	for _, p := range append(append([]string(nil), opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = batch.DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = l.concurrency
	}
	return &Crawler{loader: l, opts: opts}, nil
}

// Crawl expands start and its descendants breadth first.
func (c *Crawler) Crawl(ctx context.Context, start *Node) (*CrawlResult, error) {
	log := logging.FromContext(ctx)

	proc, err := batch.NewProcessor[*Node](c.opts.BatchSize)
	if err != nil {
		return nil, err
	}

	res := &CrawlResult{}
	level := []*Node{start}
	for depth := 1; len(level) > 0; depth++ {
		if c.opts.MaxDepth > 0 && depth > c.opts.MaxDepth {
			break
		}

		expandable := make([]*Node, 0, len(level))
		for _, n := range level {
			if n.HasChildren {
				expandable = append(expandable, n)
			}
		}
		if len(expandable) == 0 {
			break
		}

		proc.WithProgressCallback(func(s batch.Snapshot) {
			if c.opts.OnProgress != nil {
				c.opts.OnProgress(CrawlProgress{Depth: depth, Snapshot: s})
			}
		})
		err := proc.ProcessConcurrent(ctx, expandable, func(ctx context.Context, nodes []*Node, _ int) error {
			for _, n := range nodes {
				if err := c.loader.Expand(ctx, n); err != nil {
					return err
				}
			}
			return nil
		}, c.opts.Concurrency)
		if err != nil {
			return res, fmt.Errorf("crawling level %d: %w", depth, err)
		}

		res.Levels = depth
		res.Expanded += len(expandable)

		var next []*Node
		for _, n := range expandable {
			for _, child := range n.Children() {
				if c.excluded(child) {
					continue
				}
				if c.included(child) {
					res.Nodes = append(res.Nodes, child)
				}
				next = append(next, child)
			}
		}
		log.Debug().
			Str("component", "crawler").
			Int("depth", depth).
			Int("expanded", len(expandable)).
			Int("discovered", len(next)).
			Msg("level crawled")
		level = next
	}
	return res, nil
}

func (c *Crawler) included(n *Node) bool {
	if len(c.opts.Include) == 0 {
		return true
	}
	return matchAny(c.opts.Include, n.FullPath)
}

func (c *Crawler) excluded(n *Node) bool {
	return matchAny(c.opts.Exclude, n.FullPath)
}

func matchAny(patterns []string, path string) bool {
	p := strings.TrimSuffix(path, "/")
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}
