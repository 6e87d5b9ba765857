package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/rshade/budgettree/internal/tree"
)

// crawlReporter receives crawl progress snapshots. Snapshots of one level may
// arrive from several goroutines.
type crawlReporter interface {
	Update(p tree.CrawlProgress)
	Finish()
}

// newCrawlReporter picks a progress bar for terminals and one line per level
// otherwise. quiet disables reporting.
func newCrawlReporter(w io.Writer, terminal, quiet bool) crawlReporter {
	switch {
	case quiet:
		return nopReporter{}
	case terminal:
		return &barReporter{w: w}
	default:
		return &lineReporter{w: w}
	}
}

type nopReporter struct{}

func (nopReporter) Update(tree.CrawlProgress) {}
func (nopReporter) Finish()                   {}

// barReporter renders one progress bar per level.
type barReporter struct {
	mu    sync.Mutex
	w     io.Writer
	bar   *progressbar.ProgressBar
	depth int
}

func (r *barReporter) Update(p tree.CrawlProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil || p.Depth != r.depth {
		if r.bar != nil {
			_ = r.bar.Finish()
		}
		r.depth = p.Depth
		r.bar = progressbar.NewOptions(p.TotalItems,
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetDescription(fmt.Sprintf("Level %d", p.Depth)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = r.bar.Set(p.ProcessedItems)
}

func (r *barReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// lineReporter prints a line when a level completes, suitable for CI logs.
type lineReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *lineReporter) Update(p tree.CrawlProgress) {
	if !p.IsComplete() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "[level %d] expanded %d folders in %s\n",
		p.Depth, p.ProcessedItems, p.Elapsed.Round(time.Millisecond))
}

func (r *lineReporter) Finish() {}
