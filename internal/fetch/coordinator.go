package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/catalog"
	"storefront/catalogsync/internal/domain"
)

const (
	// DefaultMaxBackgroundChunks caps how many extra pages a fill schedules.
	DefaultMaxBackgroundChunks = 5
	// DefaultStaggerInterval separates consecutive chunk requests.
	DefaultStaggerInterval = 500 * time.Millisecond
)

// ErrPartialFirstPage is reported to the failure sink when page 1 was served
// by the degraded retry and the rest of its window was never fetched.
var ErrPartialFirstPage = errors.New("first page served partially by the degraded retry")

// ChunkFailureSink receives background chunks that could not be loaded.
type ChunkFailureSink interface {
	ChunkFailed(ctx context.Context, filters domain.FilterState, err error)
}

// ChunkListener is called after a background chunk has been merged.
type ChunkListener func(chunk int, page *domain.CatalogPage)

// Coordinator loads the first page of a query right away and the following
// pages in the background, one chunk every interval, merging each into the
// caller's catalog as it arrives.
type Coordinator struct {
	fetcher   Fetcher
	clock     clock.Clock
	interval  time.Duration
	maxChunks int
	sink      ChunkFailureSink
}

func NewCoordinator(fetcher Fetcher, clk clock.Clock, interval time.Duration, maxChunks int) *Coordinator {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultStaggerInterval
	}
	if maxChunks < 0 {
		maxChunks = DefaultMaxBackgroundChunks
	}
	return &Coordinator{
		fetcher:   fetcher,
		clock:     clk,
		interval:  interval,
		maxChunks: maxChunks,
	}
}

// WithFailureSink records failed chunks in sink in addition to logging them.
func (c *Coordinator) WithFailureSink(sink ChunkFailureSink) *Coordinator {
	c.sink = sink
	return c
}

// ChunkCount returns how many background chunks follow a first page of
// pageSize items when total items match, capped at maxChunks.
func ChunkCount(total, pageSize, maxChunks int) int {
	if pageSize <= 0 || total <= pageSize {
		return 0
	}
	n := (total - pageSize + pageSize - 1) / pageSize
	if n > maxChunks {
		n = maxChunks
	}
	return n
}

// Fill fetches page 1 of filters synchronously, merges it into merged and
// returns. Remaining chunks run in the background until done or until ctx
// or Fill.Cancel stops them. A failure of page 1 is returned; chunk failures
// are logged and skipped.
func (c *Coordinator) Fill(ctx context.Context, filters domain.FilterState, merged *catalog.Merged, onChunk ChunkListener) (*Fill, error) {
	first := filters.WithPage(1)

	page, err := c.fetcher.Fetch(ctx, first)
	if err != nil {
		return nil, err
	}
	merged.MergePage(page)

	if page.Degraded {
		log.Warnf("⚠️ First page was served degraded (%d of %d items)", len(page.Items), first.PageSize)
		if c.sink != nil {
			c.sink.ChunkFailed(ctx, first, ErrPartialFirstPage)
		}
	}

	fillCtx, cancel := context.WithCancel(ctx)
	fill := &Fill{
		First:  page,
		Chunks: ChunkCount(page.TotalCount, first.PageSize, c.maxChunks),
		cancel: cancel,
	}

	if fill.Chunks == 0 {
		cancel()
		return fill, nil
	}

	log.Infof("🔄 Scheduling %d background chunks for %d items", fill.Chunks, page.TotalCount)

	fill.mu.Lock()
	for k := 1; k <= fill.Chunks; k++ {
		chunk := k
		request := first.WithPage(chunk + 1)

		fill.wg.Add(1)
		timer := c.clock.AfterFunc(time.Duration(chunk)*c.interval, func() {
			defer fill.wg.Done()
			c.loadChunk(fillCtx, fill, chunk, request, merged, onChunk)
		})
		fill.timers = append(fill.timers, timer)
	}
	fill.mu.Unlock()

	return fill, nil
}

func (c *Coordinator) loadChunk(
	ctx context.Context,
	fill *Fill,
	chunk int,
	request domain.FilterState,
	merged *catalog.Merged,
	onChunk ChunkListener,
) {
	if ctx.Err() != nil {
		return
	}

	page, err := c.fetcher.Fetch(ctx, request)
	if err != nil {
		fill.recordFailure()
		log.Warnf("⚠️ Background chunk %d (page %d) failed, skipping: %v", chunk, request.Page, err)
		if c.sink != nil && ctx.Err() == nil {
			c.sink.ChunkFailed(ctx, request, err)
		}
		return
	}

	added := merged.MergePage(page)
	fill.recordLoaded()
	log.Debugf("Merged chunk %d (page %d): %d items, %d new", chunk, request.Page, len(page.Items), added)

	if onChunk != nil {
		onChunk(chunk, page)
	}
}

// Fill tracks the background part of a Coordinator.Fill call.
type Fill struct {
	First  *domain.CatalogPage
	Chunks int // background chunks scheduled

	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu     sync.Mutex
	timers []*clock.Timer
	loaded int
	failed int
}

// Wait blocks until every scheduled chunk has finished or been cancelled.
func (f *Fill) Wait() {
	f.wg.Wait()
}

// Cancel stops chunks that have not started and tells running ones to give up.
func (f *Fill) Cancel() {
	f.cancel()

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, timer := range f.timers {
		if timer.Stop() {
			f.wg.Done()
		}
	}
	f.timers = nil
}

// Stats returns how many chunks were merged and how many failed so far.
func (f *Fill) Stats() (loaded, failed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded, f.failed
}

func (f *Fill) recordLoaded() {
	f.mu.Lock()
	f.loaded++
	f.mu.Unlock()
}

func (f *Fill) recordFailure() {
	f.mu.Lock()
	f.failed++
	f.mu.Unlock()
}
