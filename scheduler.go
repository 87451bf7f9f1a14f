package driftfield

import (
	"image"
	"log/slog"
)

// Fetcher fetches and decodes one image, calling deliver exactly once when the work
// finishes. Fetch must not block the caller: the default fetcher runs the work in a
// goroutine, which is the only place driftfield leaves the frame tick. deliver is
// safe to call from any goroutine.
type Fetcher interface {
	Fetch(url string, deliver func(image.Image, error))
}

// asyncFetcher is the default Fetcher: fetchImage on a goroutine per request.
type asyncFetcher struct{}

func (asyncFetcher) Fetch(url string, deliver func(image.Image, error)) {
	go func() {
		deliver(fetchImage(url))
	}()
}

// loadRequest is one queued texture load, pinned to the slot assignment (slot +
// generation) that asked for it.
type loadRequest struct {
	slot       *Slot
	generation uint64
	imageID    int
	tier       Tier
	url        string
	dropped    bool
}

// loadResult is a completed fetch, homed back to the tick over the results channel.
type loadResult struct {
	req loadRequest
	img image.Image
	err error
}

// SchedulerStats carries the LoadScheduler's running counters.
type SchedulerStats struct {
	Requested int64 // loads enqueued
	Started   int64 // fetches actually started
	Completed int64 // results applied to a slot
	Discarded int64 // stale results or requests dropped after a supersede
	Failed    int64 // loads that fell back to the placeholder
}

// LoadScheduler queues texture loads and drains them under a per-frame budget, so
// texture uploads never spike a frame. Requests are FIFO, except that a request
// whose slot has been reassigned since (superseded) is discarded instead of
// applied; superseding is the engine's only cancellation primitive. Results arrive
// over a channel and are applied on the tick, keeping all slot and cache mutation
// single-threaded.
type LoadScheduler struct {
	fetcher  Fetcher
	queue    []loadRequest
	results  chan loadResult
	inflight int
	stats    SchedulerStats
	logger   *slog.Logger
}

// NewLoadScheduler creates a LoadScheduler. A nil fetcher gets the default
// goroutine-per-request fetcher; a nil logger falls back to slog.Default().
func NewLoadScheduler(fetcher Fetcher, logger *slog.Logger) *LoadScheduler {
	if fetcher == nil {
		fetcher = asyncFetcher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadScheduler{
		fetcher: fetcher,
		results: make(chan loadResult, 256),
		logger:  logger,
	}
}

// Pending returns the number of queued, not-yet-started requests.
func (sched *LoadScheduler) Pending() int {
	return len(sched.queue)
}

// InFlight returns the number of started fetches that have not come home yet.
func (sched *LoadScheduler) InFlight() int {
	return sched.inflight
}

// Stats returns the scheduler's running counters.
func (sched *LoadScheduler) Stats() SchedulerStats {
	return sched.stats
}

// Request enqueues a texture load for the slot's current assignment.
func (sched *LoadScheduler) Request(slot *Slot, imageID int, tier Tier, url string, dropped bool) {
	sched.queue = append(sched.queue, loadRequest{
		slot:       slot,
		generation: slot.generation,
		imageID:    imageID,
		tier:       tier,
		url:        url,
		dropped:    dropped,
	})
	sched.stats.Requested++
}

// Flush starts at most budget queued fetches. Queued requests whose slot has been
// reassigned since are dropped without costing budget.
func (sched *LoadScheduler) Flush(budget int) {

	started := 0

	for len(sched.queue) > 0 && started < budget {

		req := sched.queue[0]
		sched.queue = sched.queue[1:]

		if req.slot.generation != req.generation {
			sched.stats.Discarded++
			continue
		}

		sched.inflight++
		sched.stats.Started++
		started++

		sched.fetcher.Fetch(req.url, func(img image.Image, err error) {
			sched.results <- loadResult{req: req, img: img, err: err}
		})

	}

}

// Drain applies every completed fetch that has come home since the last tick. Stale
// results (the slot was reassigned while the load was in flight) are discarded so
// an old texture can never bind to the slot's new assignment. apply runs on the
// caller's (tick) goroutine.
func (sched *LoadScheduler) Drain(apply func(loadResult)) {

	for {
		select {
		case result := <-sched.results:
			sched.inflight--
			if result.req.slot.generation != result.req.generation {
				sched.stats.Discarded++
				continue
			}
			if result.err != nil {
				sched.stats.Failed++
			} else {
				sched.stats.Completed++
			}
			apply(result)
		default:
			return
		}
	}

}

// Reset drops every queued request. In-flight fetches still come home and are
// discarded by the generation guard if their slots are gone.
func (sched *LoadScheduler) Reset() {
	sched.stats.Discarded += int64(len(sched.queue))
	sched.queue = sched.queue[:0]
}
