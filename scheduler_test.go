package driftfield

import (
	"errors"
	"testing"
)

func TestSchedulerFlushHonorsBudget(t *testing.T) {

	fetcher := &manualFetcher{}
	sched := NewLoadScheduler(fetcher, nil)

	slots := make([]*Slot, 5)
	for i := range slots {
		slots[i] = &Slot{index: i}
		sched.Request(slots[i], i+1, TierHalf, "assets/halfres/x.webp", false)
	}

	sched.Flush(2)

	if len(fetcher.urls) != 2 {
		t.Fatalf("started %d fetches, want 2", len(fetcher.urls))
	}
	if sched.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", sched.Pending())
	}
	if sched.InFlight() != 2 {
		t.Fatalf("InFlight() = %d, want 2", sched.InFlight())
	}

	// The remainder drains over later flushes.
	sched.Flush(2)
	sched.Flush(2)
	if len(fetcher.urls) != 5 || sched.Pending() != 0 {
		t.Fatalf("started %d fetches with %d pending, want 5 and 0", len(fetcher.urls), sched.Pending())
	}

}

func TestSchedulerSupersededRequestsCostNoBudget(t *testing.T) {

	fetcher := &manualFetcher{}
	sched := NewLoadScheduler(fetcher, nil)

	superseded := &Slot{}
	live := &Slot{}

	sched.Request(superseded, 1, TierHalf, "assets/halfres/1.webp", false)
	sched.Request(live, 2, TierHalf, "assets/halfres/2.webp", false)

	// Reassigning the slot bumps its generation, orphaning the queued request.
	superseded.generation++

	sched.Flush(1)

	if len(fetcher.urls) != 1 || fetcher.urls[0] != "assets/halfres/2.webp" {
		t.Fatalf("started %v, want only the live slot's request", fetcher.urls)
	}
	if sched.Stats().Discarded != 1 {
		t.Fatalf("Discarded = %d, want 1", sched.Stats().Discarded)
	}

}

func TestSchedulerStaleResultsDiscarded(t *testing.T) {

	fetcher := &manualFetcher{}
	sched := NewLoadScheduler(fetcher, nil)

	slot := &Slot{}
	sched.Request(slot, 1, TierHalf, "assets/halfres/1.webp", false)
	sched.Flush(1)

	// The slot is reassigned while the fetch is in flight.
	slot.generation++
	fetcher.complete(0, testImage(4, 4), nil)

	applied := 0
	sched.Drain(func(loadResult) { applied++ })

	if applied != 0 {
		t.Fatal("a stale result was applied after its slot was reassigned")
	}
	if sched.Stats().Discarded != 1 {
		t.Fatalf("Discarded = %d, want 1", sched.Stats().Discarded)
	}
	if sched.InFlight() != 0 {
		t.Fatalf("InFlight() = %d, want 0", sched.InFlight())
	}

}

func TestSchedulerDrainAppliesResults(t *testing.T) {

	fetcher := &manualFetcher{}
	sched := NewLoadScheduler(fetcher, nil)

	slot := &Slot{}
	sched.Request(slot, 3, TierQuarter, "assets/quarterres/3.webp", false)
	sched.Flush(1)
	fetcher.complete(0, testImage(6, 3), nil)

	var got loadResult
	applied := 0
	sched.Drain(func(result loadResult) {
		got = result
		applied++
	})

	if applied != 1 {
		t.Fatalf("applied %d results, want 1", applied)
	}
	if got.req.imageID != 3 || got.req.tier != TierQuarter || got.err != nil {
		t.Fatalf("unexpected result: %+v", got)
	}
	if sched.Stats().Completed != 1 {
		t.Fatalf("Completed = %d, want 1", sched.Stats().Completed)
	}

}

func TestSchedulerCountsFailures(t *testing.T) {

	fetcher := &manualFetcher{}
	sched := NewLoadScheduler(fetcher, nil)

	slot := &Slot{}
	sched.Request(slot, 1, TierHalf, "assets/halfres/1.webp", false)
	sched.Flush(1)
	fetcher.complete(0, nil, errors.New("404"))

	failed := 0
	sched.Drain(func(result loadResult) {
		if result.err != nil {
			failed++
		}
	})

	if failed != 1 || sched.Stats().Failed != 1 {
		t.Fatalf("failed = %d, Stats().Failed = %d, want 1 and 1", failed, sched.Stats().Failed)
	}

}

func TestSchedulerReset(t *testing.T) {

	fetcher := &manualFetcher{}
	sched := NewLoadScheduler(fetcher, nil)

	for i := 0; i < 4; i++ {
		sched.Request(&Slot{}, i+1, TierHalf, "assets/halfres/x.webp", false)
	}
	sched.Reset()

	if sched.Pending() != 0 {
		t.Fatalf("Pending() = %d after Reset, want 0", sched.Pending())
	}
	if sched.Stats().Discarded != 4 {
		t.Fatalf("Discarded = %d, want 4", sched.Stats().Discarded)
	}

	sched.Flush(8)
	if len(fetcher.urls) != 0 {
		t.Fatal("Reset left requests that later flushed")
	}

}
