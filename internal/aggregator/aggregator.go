package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/arengifoc/logsort/internal/model"
)

// Stats holds a point-in-time snapshot of pipeline activity.
type Stats struct {
	Uptime        string           `json:"uptime"`
	TotalEvents   int64            `json:"total_events"`
	EPS           float64          `json:"eps"`
	OutcomeCounts map[string]int64 `json:"outcome_counts"`
	ErrorMatches  int64            `json:"error_matches"`
	DroppedEvents int64            `json:"dropped_events"`
}

// Aggregator subscribes to the event hub and computes running totals for the
// dashboard: files moved/skipped/failed, audit matches, and event throughput.
type Aggregator struct {
	mu            sync.RWMutex
	startTime     time.Time
	totalEvents   int64
	outcomeCounts map[string]int64
	errorMatches  int64
	window        []time.Time // timestamps for EPS calculation (last 5 seconds)
	dropped       func() int64
	events        <-chan model.Event
}

// New creates an Aggregator reading from the given hub subscriber channel.
// droppedFn provides the hub's live drop counter.
func New(events <-chan model.Event, droppedFn func() int64) *Aggregator {
	return &Aggregator{
		startTime:     time.Now(),
		outcomeCounts: make(map[string]int64),
		dropped:       droppedFn,
		events:        events,
	}
}

// Snapshot returns the current stats.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	counts := make(map[string]int64)
	for k, v := range a.outcomeCounts {
		counts[k] = v
	}

	// Calculate EPS from the sliding window.
	now := time.Now()
	cutoff := now.Add(-5 * time.Second)
	var recent int
	for _, t := range a.window {
		if t.After(cutoff) {
			recent++
		}
	}
	eps := float64(recent) / 5.0

	return Stats{
		Uptime:        time.Since(a.startTime).Truncate(time.Second).String(),
		TotalEvents:   a.totalEvents,
		EPS:           eps,
		OutcomeCounts: counts,
		ErrorMatches:  a.errorMatches,
		DroppedEvents: a.dropped(),
	}
}

// Start begins consuming events and updating totals. Blocks until the
// context is cancelled or the event channel is closed.
func (a *Aggregator) Start(ctx context.Context) {
	// Periodically prune the sliding window.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-a.events:
			if !ok {
				return
			}
			a.record(ev)
		case <-ticker.C:
			a.prune()
		}
	}
}

// record adds an event to the totals.
func (a *Aggregator) record(ev model.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalEvents++
	a.outcomeCounts[string(ev.Outcome)]++
	if ev.Outcome == model.OutcomeAudited {
		a.errorMatches += int64(ev.Count)
	}
	a.window = append(a.window, time.Now())
}

// prune removes timestamps older than 5 seconds from the sliding window.
func (a *Aggregator) prune() {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := time.Now().Add(-5 * time.Second)
	i := 0
	for _, t := range a.window {
		if t.After(cutoff) {
			a.window[i] = t
			i++
		}
	}
	a.window = a.window[:i]
}
